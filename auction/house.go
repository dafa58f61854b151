package auction

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/holiman/uint256"

	"github.com/eth2030/txauction/log"
	"github.com/eth2030/txauction/txcodec"
)

// House is the auction house: the shared builder/txpool/auction state, the
// synchronous request operations, and the two background loops (settlement,
// cleanup).
//
// Lock discipline: three per-instance mutexes guard the three mutable maps.
// Any path taking more than one must acquire them in the canonical order
// auctions -> builders -> txpool. Results are written only by the
// settlement pass while all three are held, so reads go straight to the
// (internally synchronized) LRU. No lock is ever held across a chain RPC.
type House struct {
	cfg   Config
	chain ChainClient
	clock *SlotClock
	lg    *log.Logger

	// now is the wall clock, injectable for tests.
	now func() time.Time

	auctionMu sync.Mutex
	builderMu sync.Mutex
	txpoolMu  sync.Mutex

	builders map[string]*Builder
	txpool   map[common.Hash]*Transaction
	auctions map[common.Hash]*Auction

	// results holds per-slot settlement outcomes with a bounded
	// retention horizon. Each slot's list is written exactly once and
	// never mutated afterwards.
	results *lru.Cache[uint64, []*SettledResult]

	// lastSettled and lastBlock are loop cursors, touched only by their
	// respective loops.
	lastSettled uint64
	lastBlock   uint64
}

// NewHouse creates an auction house over the given chain client.
func NewHouse(cfg Config, chain ChainClient) (*House, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	results, err := lru.New[uint64, []*SettledResult](cfg.ResultRetention)
	if err != nil {
		return nil, err
	}
	return &House{
		cfg:      cfg,
		chain:    chain,
		clock:    NewSlotClock(cfg.GenesisTime, cfg.SecondsPerSlot),
		lg:       log.Default().Module("auction"),
		now:      time.Now,
		builders: make(map[string]*Builder),
		txpool:   make(map[common.Hash]*Transaction),
		auctions: make(map[common.Hash]*Auction),
		results:  results,
	}, nil
}

// Register admits a new builder. Access starts true; relay-side key
// validation is out of scope, though strict builds verify the BLS key
// format.
func (h *House) Register(pubkey []byte) error {
	if err := validatePubkey(pubkey, h.cfg.StrictPubkeys); err != nil {
		return err
	}

	h.builderMu.Lock()
	defer h.builderMu.Unlock()

	if _, ok := h.builders[string(pubkey)]; ok {
		return ErrAlreadyRegistered
	}
	h.builders[string(pubkey)] = &Builder{
		Pubkey:         append([]byte(nil), pubkey...),
		Access:         true,
		PendingPayment: uint256.NewInt(0),
	}
	h.lg.Info("builder registered", "pubkey", fmt.Sprintf("%#x", pubkey))
	return nil
}

// Status returns the builder's access flag and a snapshot of its pending
// payment. The snapshot may be stale by the time the caller reads it.
func (h *House) Status(pubkey []byte) (*Status, error) {
	h.builderMu.Lock()
	defer h.builderMu.Unlock()

	b, ok := h.builders[string(pubkey)]
	if !ok {
		return nil, ErrNotRegistered
	}
	return &Status{
		Access:         b.Access,
		PendingPayment: b.PendingPayment.Clone(),
	}, nil
}

// SubmitTx decodes a raw signed transaction, prices its reserve off an
// eth_estimateGas call, and admits it to the pool. The submitter is not
// authenticated; the transaction carries its own signature.
func (h *House) SubmitTx(ctx context.Context, raw []byte) error {
	submitted := h.now()

	data, err := txcodec.Decode(raw)
	if err != nil {
		return err
	}

	h.txpoolMu.Lock()
	_, dup := h.txpool[data.Hash]
	h.txpoolMu.Unlock()
	if dup {
		return ErrDuplicate
	}

	rpcCtx, cancel := context.WithTimeout(ctx, h.cfg.RPCTimeout)
	gas, err := h.chain.EstimateGas(rpcCtx, data.CallMsg())
	cancel()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTx, err)
	}

	// The reserve is the transaction's own fee budget: priority fee for
	// dynamic-fee transactions, gas price for the legacy kinds.
	fee := data.GasTipCap
	if fee == nil {
		fee = data.GasPrice
	}
	if fee == nil {
		return fmt.Errorf("%w: no fee field", ErrInvalidTx)
	}
	reserve := new(uint256.Int).Mul(fee, uint256.NewInt(gas))

	h.txpoolMu.Lock()
	defer h.txpoolMu.Unlock()
	if _, ok := h.txpool[data.Hash]; ok {
		return ErrDuplicate
	}
	h.txpool[data.Hash] = &Transaction{
		Hash:      data.Hash,
		Data:      data,
		Reserve:   reserve,
		Submitted: submitted,
	}
	txSubmittedCounter.Inc()
	poolSizeGauge.Set(int64(len(h.txpool)))
	h.lg.Debug("tx admitted", "hash", data.Hash, "reserve", reserve)
	return nil
}

// TxPool returns every unsold, unexecuted transaction with the signature
// redacted and the reserve attached. Order is unspecified.
func (h *House) TxPool(pubkey []byte) ([]*PoolTx, error) {
	if err := h.checkAccess(pubkey); err != nil {
		return nil, err
	}

	h.txpoolMu.Lock()
	defer h.txpoolMu.Unlock()

	out := make([]*PoolTx, 0, len(h.txpool))
	for _, tx := range h.txpool {
		if tx.Sold || tx.Executed {
			continue
		}
		out = append(out, &PoolTx{
			Data:    tx.Data.Redacted(),
			Reserve: tx.Reserve.Clone(),
		})
	}
	return out, nil
}

// SubmitBid places a sealed bid on a pooled transaction, opening its
// auction if this is the first bid. The returned slot is the one the bid is
// projected to settle in; it is advisory, correctness rests on the
// settlement loop.
func (h *House) SubmitBid(pubkey []byte, txHash common.Hash, value *uint256.Int) (uint64, error) {
	now := h.now()

	if err := h.checkAccess(pubkey); err != nil {
		return 0, err
	}

	bid := &Bid{
		Builder:   append([]byte(nil), pubkey...),
		TxHash:    txHash,
		Value:     value.Clone(),
		Submitted: now,
	}

	// The auction lock is held across the biddability check and the
	// insert. Settlement and cleanup take it before touching the pool, so
	// a bid can never recreate an auction for a tx they just sold or
	// removed.
	h.auctionMu.Lock()
	defer h.auctionMu.Unlock()

	h.txpoolMu.Lock()
	tx, ok := h.txpool[txHash]
	biddable := ok && !tx.Sold && !tx.Executed
	h.txpoolMu.Unlock()
	if !ok {
		return 0, ErrTxNotFound
	}
	if !biddable {
		return 0, ErrSoldAlready
	}

	if a, ok := h.auctions[txHash]; ok {
		if err := a.Submit(bid); err != nil {
			return 0, err
		}
	} else {
		a, err := NewAuction(tx, bid)
		if err != nil {
			return 0, err
		}
		h.auctions[txHash] = a
		auctionsGauge.Set(int64(len(h.auctions)))
	}

	bidsCounter.Inc()
	return h.projectedSlot(tx, now), nil
}

// projectedSlot estimates which slot a bid placed now will settle in: the
// current slot, unless the transaction is still inside the dwell floor or
// the current slot has already been settled.
func (h *House) projectedSlot(tx *Transaction, now time.Time) uint64 {
	slot := h.clock.Current(now)
	if now.Sub(tx.Submitted) < h.cfg.MinTimeInPool {
		return slot + 1
	}
	if h.results.Contains(slot) {
		return slot + 1
	}
	return slot
}

// Results returns the caller's settled auctions for a slot plus the total
// payment. A slot with no recorded results yields an empty list and zero.
func (h *House) Results(pubkey []byte, slot uint64) ([]*BuilderResult, *uint256.Int, error) {
	if err := h.checkAccess(pubkey); err != nil {
		return nil, nil, err
	}

	total := uint256.NewInt(0)
	list, ok := h.results.Get(slot)
	if !ok {
		return []*BuilderResult{}, total, nil
	}

	out := make([]*BuilderResult, 0, len(list))
	for _, sr := range list {
		if string(sr.Result.Winner) != string(pubkey) {
			continue
		}
		total.Add(total, sr.Result.Payment)
		out = append(out, &BuilderResult{
			TxHash:  sr.Result.TxHash,
			Payment: sr.Result.Payment.Clone(),
			Data:    sr.Data,
		})
	}
	return out, total, nil
}

// checkAccess verifies the caller is a registered builder with access.
func (h *House) checkAccess(pubkey []byte) error {
	h.builderMu.Lock()
	defer h.builderMu.Unlock()

	b, ok := h.builders[string(pubkey)]
	if !ok {
		return ErrNotRegistered
	}
	if !b.Access {
		return ErrAccessRestricted
	}
	return nil
}

// SetAccess flips a builder's access flag. Placeholder policy hook until
// relay-side authorization lands.
func (h *House) SetAccess(pubkey []byte, access bool) error {
	h.builderMu.Lock()
	defer h.builderMu.Unlock()

	b, ok := h.builders[string(pubkey)]
	if !ok {
		return ErrNotRegistered
	}
	b.Access = access
	return nil
}
