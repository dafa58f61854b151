package auction

import (
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

func auctionTx(reserve uint64) *Transaction {
	return &Transaction{
		Hash:      common.HexToHash("0x0101"),
		Reserve:   uint256.NewInt(reserve),
		Submitted: time.Unix(1000, 0),
	}
}

func bidAt(builder []byte, tx *Transaction, value uint64, at int64) *Bid {
	return &Bid{
		Builder:   builder,
		TxHash:    tx.Hash,
		Value:     uint256.NewInt(value),
		Submitted: time.Unix(at, 0),
	}
}

func TestAuctionSubmitValidation(t *testing.T) {
	tx := auctionTx(100)

	// Below reserve rejects the opening bid.
	if _, err := NewAuction(tx, bidAt(builderA, tx, 50, 1)); !errors.Is(err, ErrBelowReserve) {
		t.Fatalf("expected ErrBelowReserve, got %v", err)
	}

	a, err := NewAuction(tx, bidAt(builderA, tx, 150, 1))
	if err != nil {
		t.Fatalf("NewAuction: %v", err)
	}

	// Wrong transaction hash.
	wrong := bidAt(builderB, tx, 200, 2)
	wrong.TxHash = common.HexToHash("0x0202")
	if err := a.Submit(wrong); !errors.Is(err, ErrBidMismatch) {
		t.Fatalf("expected ErrBidMismatch, got %v", err)
	}

	// Below reserve on an open auction.
	if err := a.Submit(bidAt(builderB, tx, 99, 2)); !errors.Is(err, ErrBelowReserve) {
		t.Fatalf("expected ErrBelowReserve, got %v", err)
	}
	if a.Bids() != 1 {
		t.Fatalf("bids = %d, want 1", a.Bids())
	}
}

func TestSettleSingleBid(t *testing.T) {
	tx := auctionTx(100)
	a, err := NewAuction(tx, bidAt(builderA, tx, 300, 1))
	if err != nil {
		t.Fatalf("NewAuction: %v", err)
	}

	res := a.Settle()
	if string(res.Winner) != string(builderA) {
		t.Fatalf("winner = %x, want %x", res.Winner, builderA)
	}
	// A sole bidder pays the reserve, not its own bid.
	if res.Payment.Uint64() != 100 {
		t.Fatalf("payment = %s, want 100", res.Payment)
	}
	if res.TxHash != tx.Hash {
		t.Fatalf("result tx hash = %s", res.TxHash)
	}
}

func TestSettleSecondPrice(t *testing.T) {
	tx := auctionTx(100)
	a, err := NewAuction(tx, bidAt(builderA, tx, 150, 1))
	if err != nil {
		t.Fatalf("NewAuction: %v", err)
	}
	if err := a.Submit(bidAt(builderB, tx, 200, 2)); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	res := a.Settle()
	if string(res.Winner) != string(builderB) {
		t.Fatalf("winner = %x, want %x", res.Winner, builderB)
	}
	if res.Payment.Uint64() != 150 {
		t.Fatalf("payment = %s, want 150 (second price)", res.Payment)
	}
}

func TestSettleThreeBids(t *testing.T) {
	tx := auctionTx(100)
	a, _ := NewAuction(tx, bidAt(builderA, tx, 500, 3))
	if err := a.Submit(bidAt(builderB, tx, 700, 1)); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := a.Submit(bidAt([]byte{0xcc}, tx, 600, 2)); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	res := a.Settle()
	if string(res.Winner) != string(builderB) {
		t.Fatalf("winner = %x, want %x", res.Winner, builderB)
	}
	if res.Payment.Uint64() != 600 {
		t.Fatalf("payment = %s, want 600", res.Payment)
	}
}

func TestSettleTieEarliestWins(t *testing.T) {
	tx := auctionTx(100)
	// Same value, later builder first in insertion order: the earlier
	// submission must still win.
	a, _ := NewAuction(tx, bidAt(builderA, tx, 400, 9))
	if err := a.Submit(bidAt(builderB, tx, 400, 2)); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	res := a.Settle()
	if string(res.Winner) != string(builderB) {
		t.Fatalf("tie winner = %x, want earliest bidder %x", res.Winner, builderB)
	}
	if res.Payment.Uint64() != 400 {
		t.Fatalf("payment = %s, want 400", res.Payment)
	}
}

func TestSettleRepeatedBidder(t *testing.T) {
	tx := auctionTx(100)
	// The same builder may bid repeatedly; both bids rank independently,
	// so the builder's own lower bid sets the price.
	a, _ := NewAuction(tx, bidAt(builderA, tx, 200, 1))
	if err := a.Submit(bidAt(builderA, tx, 350, 2)); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	res := a.Settle()
	if string(res.Winner) != string(builderA) {
		t.Fatalf("winner = %x, want %x", res.Winner, builderA)
	}
	if res.Payment.Uint64() != 200 {
		t.Fatalf("payment = %s, want 200", res.Payment)
	}
}

func TestSettlePaymentIsCopy(t *testing.T) {
	tx := auctionTx(100)
	a, _ := NewAuction(tx, bidAt(builderA, tx, 300, 1))

	res := a.Settle()
	res.Payment.SetUint64(7)
	if tx.Reserve.Uint64() != 100 {
		t.Fatal("settle payment must not alias the reserve")
	}
}
