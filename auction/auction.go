package auction

import (
	"sort"
)

// Auction is a sealed-bid second-price auction for one transaction. Bids
// are append-only until settlement. An Auction always holds at least one
// bid; it is created on the first valid bid for its transaction. Not safe
// for concurrent use: the house auction lock serializes access.
type Auction struct {
	tx   *Transaction
	bids []*Bid
}

// NewAuction creates an auction for tx seeded with the opening bid.
func NewAuction(tx *Transaction, bid *Bid) (*Auction, error) {
	a := &Auction{tx: tx}
	if err := a.Submit(bid); err != nil {
		return nil, err
	}
	return a, nil
}

// Tx returns the auctioned transaction.
func (a *Auction) Tx() *Transaction { return a.tx }

// Bids returns the number of submitted bids.
func (a *Auction) Bids() int { return len(a.bids) }

// Submit validates and appends a bid. The bid must target this auction's
// transaction and meet its reserve price. Repeated bids by the same builder
// are allowed; each counts on its own in settlement ordering.
func (a *Auction) Submit(bid *Bid) error {
	if bid.TxHash != a.tx.Hash {
		return ErrBidMismatch
	}
	if bid.Value.Lt(a.tx.Reserve) {
		return ErrBelowReserve
	}
	a.bids = append(a.bids, bid)
	return nil
}

// Settle computes the auction outcome. A sole bidder wins at the reserve
// price. With two or more bids the highest value wins, value ties broken by
// earliest submission, and the winner pays the second-highest value
// (Vickrey). Every bid already cleared the reserve at submission, so the
// payment can never fall below it.
func (a *Auction) Settle() *Result {
	if len(a.bids) == 1 {
		return &Result{
			Winner:  a.bids[0].Builder,
			TxHash:  a.tx.Hash,
			Payment: a.tx.Reserve.Clone(),
		}
	}

	sorted := make([]*Bid, len(a.bids))
	copy(sorted, a.bids)
	sort.Slice(sorted, func(i, j int) bool {
		switch sorted[i].Value.Cmp(sorted[j].Value) {
		case 1:
			return true
		case -1:
			return false
		}
		return sorted[i].Submitted.Before(sorted[j].Submitted)
	})

	return &Result{
		Winner:  sorted[0].Builder,
		TxHash:  a.tx.Hash,
		Payment: sorted[1].Value.Clone(),
	}
}
