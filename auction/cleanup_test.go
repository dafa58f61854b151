package auction

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

func TestProcessExecuted(t *testing.T) {
	h, fc, clk := newTestHouse(t)
	fc.gas = 1
	mustRegister(t, h, builderA)
	key := testKey(t)

	executed := submitTx(t, h, key, 0, 100)
	pending := submitTx(t, h, key, 1, 100)

	clk.advance(2 * time.Second)
	if _, err := h.SubmitBid(builderA, executed, uint256.NewInt(150)); err != nil {
		t.Fatalf("SubmitBid: %v", err)
	}

	fc.confirm(executed)
	h.processExecuted(context.Background())

	h.txpoolMu.Lock()
	_, haveExecuted := h.txpool[executed]
	_, havePending := h.txpool[pending]
	h.txpoolMu.Unlock()
	if haveExecuted {
		t.Fatal("executed tx must leave the pool")
	}
	if !havePending {
		t.Fatal("pending tx must stay in the pool")
	}

	// Its auction disappears with it; the slot's results never mention it.
	h.auctionMu.Lock()
	_, haveAuction := h.auctions[executed]
	h.auctionMu.Unlock()
	if haveAuction {
		t.Fatal("executed tx's auction must be removed")
	}

	slot := h.clock.Current(clk.now())
	h.settleSlot(slot, clk.now())
	results, _ := h.results.Get(slot)
	for _, sr := range results {
		if sr.Result.TxHash == executed {
			t.Fatal("executed tx must not produce a result")
		}
	}
}

func TestProcessExpired(t *testing.T) {
	h, fc, clk := newTestHouse(t)
	fc.gas = 1
	mustRegister(t, h, builderA)
	key := testKey(t)

	raw := newRawTx(t, key, 0, 100)
	if err := h.SubmitTx(context.Background(), raw); err != nil {
		t.Fatalf("SubmitTx: %v", err)
	}
	hash := crypto.Keccak256Hash(raw)

	clk.advance(2 * time.Second)
	if _, err := h.SubmitBid(builderA, hash, uint256.NewInt(150)); err != nil {
		t.Fatalf("SubmitBid: %v", err)
	}

	// Not yet past the horizon: 10 slots exactly is still fine.
	clk.advance(118 * time.Second) // total age 120s = 10 slots
	h.processExpired(context.Background())
	if fc.sentCount() != 0 {
		t.Fatal("tx at the horizon boundary must not be flushed yet")
	}

	// One slot later it expires.
	clk.advance(12 * time.Second)
	h.processExpired(context.Background())
	if fc.sentCount() != 1 {
		t.Fatalf("broadcasts = %d, want 1", fc.sentCount())
	}
	fc.mu.Lock()
	sent := fc.sent[0]
	fc.mu.Unlock()
	if !bytes.Equal(sent, raw) {
		t.Fatal("flushed bytes must round-trip to the original raw tx")
	}

	h.txpoolMu.Lock()
	_, inPool := h.txpool[hash]
	h.txpoolMu.Unlock()
	h.auctionMu.Lock()
	_, inAuctions := h.auctions[hash]
	h.auctionMu.Unlock()
	if inPool || inAuctions {
		t.Fatal("expired tx must leave both maps")
	}

	// Nothing left: a second pass is a no-op.
	h.processExpired(context.Background())
	if fc.sentCount() != 1 {
		t.Fatal("expired tx was flushed twice")
	}
}

func TestProcessExpiredBroadcastFailureStillRemoves(t *testing.T) {
	h, fc, clk := newTestHouse(t)
	fc.gas = 1
	fc.sendErr = errors.New("already known")
	key := testKey(t)

	hash := submitTx(t, h, key, 0, 100)
	clk.advance(150 * time.Second)
	h.processExpired(context.Background())

	h.txpoolMu.Lock()
	_, inPool := h.txpool[hash]
	h.txpoolMu.Unlock()
	if inPool {
		t.Fatal("broadcast failure must not keep the tx in the pool")
	}
}

// A transaction that is both executed and expired is handled by the
// executed phase first and never re-broadcast.
func TestExecutedBeatsExpired(t *testing.T) {
	h, fc, clk := newTestHouse(t)
	fc.gas = 1
	key := testKey(t)

	hash := submitTx(t, h, key, 0, 100)
	clk.advance(200 * time.Second) // well past the horizon
	fc.confirm(hash)

	// Same order as RunCleanup.
	h.processExecuted(context.Background())
	h.processExpired(context.Background())

	if fc.sentCount() != 0 {
		t.Fatal("executed tx must not be flushed to the public mempool")
	}
	h.txpoolMu.Lock()
	if len(h.txpool) != 0 {
		t.Fatal("pool must be empty")
	}
	h.txpoolMu.Unlock()
}

func TestRunCleanup(t *testing.T) {
	h, fc, _ := newTestHouse(t)
	h.cfg.PollInterval = 5 * time.Millisecond
	fc.gas = 1
	fc.head = 7
	key := testKey(t)

	hash := submitTx(t, h, key, 0, 100)
	fc.confirm(hash)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.RunCleanup(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		h.txpoolMu.Lock()
		n := len(h.txpool)
		h.txpoolMu.Unlock()
		if n == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("cleanup loop never removed the executed tx")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup loop did not stop on cancel")
	}
}
