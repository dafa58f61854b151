package auction

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// RunSettlement drives the per-slot settlement loop until ctx is cancelled.
// Instead of busy-polling the slot clock it sleeps to the next slot
// boundary, then a further SettleDelay into the slot to accumulate bids,
// and runs one settlement pass.
func (h *House) RunSettlement(ctx context.Context) {
	lg := h.lg.Module("settle")
	lg.Info("settlement loop started", "genesis", h.cfg.GenesisTime, "delay", h.cfg.SettleDelay)

	for {
		now := h.now()
		slot := h.clock.Current(now)
		if slot <= h.lastSettled {
			if !sleepCtx(ctx, h.clock.UntilSlot(slot+1, now)) {
				lg.Info("settlement loop stopped")
				return
			}
			continue
		}
		h.lastSettled = slot

		// Let bids accumulate before freezing the slot's auctions.
		target := h.clock.SlotStart(slot).Add(h.cfg.SettleDelay)
		if d := target.Sub(now); d > 0 {
			if !sleepCtx(ctx, d) {
				lg.Info("settlement loop stopped")
				return
			}
		}

		settled, postponed := h.settleSlot(slot, h.now())
		if settled > 0 || postponed > 0 {
			lg.Info("slot settled", "slot", slot, "settled", settled, "postponed", postponed)
		}
	}
}

// settleSlot runs one settlement pass for the given slot and reports how
// many auctions were settled and how many carried over. started is captured
// once so the dwell comparison is consistent across all auctions in the
// pass.
//
// The pass holds all three locks: it replaces the auctions map, flips sold
// flags, and credits pending payments. The slot's result list is written
// exactly once, after which it is immutable.
func (h *House) settleSlot(slot uint64, started time.Time) (settled, postponed int) {
	begin := h.now()

	h.auctionMu.Lock()
	h.builderMu.Lock()
	h.txpoolMu.Lock()
	defer func() {
		h.txpoolMu.Unlock()
		h.builderMu.Unlock()
		h.auctionMu.Unlock()
	}()

	dwellCutoff := started.Add(-h.cfg.MinTimeInPool)
	carry := make(map[common.Hash]*Auction)
	results := []*SettledResult{}

	for hash, a := range h.auctions {
		tx := a.Tx()
		// A tx sold in an earlier pass or removed by cleanup has nothing
		// left to sell; its auction is dropped without a result.
		if pooled, ok := h.txpool[hash]; !ok || pooled.Sold || pooled.Executed {
			continue
		}
		// Inside the dwell floor: give late bidders the next slot.
		if !tx.Submitted.Before(dwellCutoff) {
			carry[hash] = a
			continue
		}

		res := a.Settle()
		results = append(results, &SettledResult{Result: res, Data: tx.Data})
		tx.Sold = true

		winner, ok := h.builders[string(res.Winner)]
		if !ok {
			// Bids only enter through registered builders and builders
			// are never deleted; a miss here means corrupted state.
			panic("auction: settlement winner not registered")
		}
		winner.PendingPayment.Add(winner.PendingPayment, res.Payment)
	}

	h.auctions = carry
	h.results.Add(slot, results)

	settled, postponed = len(results), len(carry)
	settledCounter.Add(int64(settled))
	auctionsGauge.Set(int64(len(h.auctions)))
	settleDurationHist.Observe(h.now().Sub(begin).Seconds())
	return settled, postponed
}

// sleepCtx sleeps for d or until ctx is cancelled. Returns false on
// cancellation.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
