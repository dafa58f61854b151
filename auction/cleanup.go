package auction

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"github.com/eth2030/txauction/txcodec"
)

// RunCleanup drives the pool cleanup loop until ctx is cancelled. Each time
// the chain head advances it removes executed transactions and flushes
// expired ones to the public mempool. Executed runs first so a transaction
// that is both executed and expired is never re-broadcast.
func (h *House) RunCleanup(ctx context.Context) {
	lg := h.lg.Module("cleanup")
	lg.Info("cleanup loop started", "poll", h.cfg.PollInterval)

	ticker := time.NewTicker(h.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			lg.Info("cleanup loop stopped")
			return
		case <-ticker.C:
		}

		rpcCtx, cancel := context.WithTimeout(ctx, h.cfg.RPCTimeout)
		head, err := h.chain.BlockNumber(rpcCtx)
		cancel()
		if err != nil {
			lg.Warn("head poll failed", "err", err)
			continue
		}
		if head == h.lastBlock {
			continue
		}
		h.lastBlock = head

		h.processExecuted(ctx)
		h.processExpired(ctx)
	}
}

// processExecuted removes every pooled transaction for which the chain
// reports a receipt. Receipt queries run without any lock held; removal
// happens afterwards under the auction and txpool locks.
func (h *House) processExecuted(ctx context.Context) {
	lg := h.lg.Module("cleanup")

	h.txpoolMu.Lock()
	hashes := make([]common.Hash, 0, len(h.txpool))
	for hash := range h.txpool {
		hashes = append(hashes, hash)
	}
	h.txpoolMu.Unlock()

	var executed []common.Hash
	for _, hash := range hashes {
		rpcCtx, cancel := context.WithTimeout(ctx, h.cfg.RPCTimeout)
		receipt, err := h.chain.TransactionReceipt(rpcCtx, hash)
		cancel()
		if err != nil {
			if !errors.Is(err, ethereum.NotFound) {
				lg.Warn("receipt query failed", "hash", hash, "err", err)
			}
			continue // still pending, or transient failure
		}
		if receipt != nil {
			executed = append(executed, hash)
		}
	}
	if len(executed) == 0 {
		return
	}

	h.removeTxs(executed, true)
	lg.Info("executed txs removed", "count", len(executed))
}

// processExpired flushes transactions older than the slot horizon to the
// public mempool and drops them from the pool. Broadcast failures
// (already-known, nonce gaps) do not block removal; keeping a stale
// transaction serves no purpose.
func (h *House) processExpired(ctx context.Context) {
	lg := h.lg.Module("cleanup")
	now := h.now()
	slotLen := time.Duration(h.cfg.SecondsPerSlot) * time.Second

	h.txpoolMu.Lock()
	var stale []*Transaction
	for _, tx := range h.txpool {
		if uint64(now.Sub(tx.Submitted)/slotLen) > h.cfg.MaxSlotsInPool {
			stale = append(stale, tx)
		}
	}
	h.txpoolMu.Unlock()

	if len(stale) == 0 {
		return
	}

	expired := make([]common.Hash, 0, len(stale))
	for _, tx := range stale {
		expired = append(expired, tx.Hash)

		raw, err := txcodec.Encode(tx.Data)
		if err != nil {
			lg.Error("re-encode failed, dropping tx", "hash", tx.Hash, "err", err)
			continue
		}
		rpcCtx, cancel := context.WithTimeout(ctx, h.cfg.RPCTimeout)
		err = h.chain.SendRawTransaction(rpcCtx, raw)
		cancel()
		if err != nil {
			lg.Warn("public mempool broadcast failed", "hash", tx.Hash, "err", err)
		}
	}

	h.removeTxs(expired, false)
	txExpiredCounter.Add(int64(len(expired)))
	lg.Info("expired txs flushed", "count", len(expired))
}

// removeTxs drops the given hashes from the txpool and auctions maps under
// the canonical lock order.
func (h *House) removeTxs(hashes []common.Hash, executed bool) {
	h.auctionMu.Lock()
	h.txpoolMu.Lock()
	defer func() {
		h.txpoolMu.Unlock()
		h.auctionMu.Unlock()
	}()

	for _, hash := range hashes {
		if tx, ok := h.txpool[hash]; ok && executed {
			tx.Executed = true
			txExecutedCounter.Inc()
		}
		delete(h.txpool, hash)
		delete(h.auctions, hash)
	}
	poolSizeGauge.Set(int64(len(h.txpool)))
	auctionsGauge.Set(int64(len(h.auctions)))
}
