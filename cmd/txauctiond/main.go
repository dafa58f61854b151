// Command txauctiond runs the private order-flow auction service.
//
// Searchers POST signed raw transactions to /submitTx; registered builders
// read /txPool, bid via /submitBid, and collect won transactions from
// /results. Unsold transactions are flushed to the public mempool before
// they go stale.
//
// The execution-layer endpoint is read from the PROVIDER environment
// variable (a .env file in the working directory is honored) or the
// -provider flag.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/eth2030/txauction/auction"
	"github.com/eth2030/txauction/chain"
	"github.com/eth2030/txauction/log"
	"github.com/eth2030/txauction/server"
)

// Build-time version info, overridable with ldflags:
//
//	go build -ldflags "-X main.version=v0.2.0"
var version = "v0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is the actual entry point, returning an exit code. Accepts CLI
// arguments (without the program name) so it can be tested in isolation.
func run(args []string) int {
	// Optional .env in the working directory; absence is fine.
	_ = godotenv.Load()

	cfg, err := parseFlags(args)
	if err != nil {
		return 2
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Error("invalid configuration", "err", err)
		return 1
	}
	log.SetDefault(log.New(level))
	lg := log.Default().Module("txauctiond")

	if err := cfg.validate(); err != nil {
		lg.Error("invalid configuration", "err", err)
		return 1
	}

	lg.Info("txauctiond starting",
		"version", version,
		"http", cfg.HTTPAddr,
		"provider", cfg.Provider,
		"genesis", cfg.Auction.GenesisTime,
		"settle_delay", cfg.Auction.SettleDelay,
		"max_slots_in_pool", cfg.Auction.MaxSlotsInPool,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	client, err := chain.Dial(dialCtx, cfg.Provider)
	cancel()
	if err != nil {
		lg.Error("provider dial failed", "err", err)
		return 1
	}
	defer client.Close()

	house, err := auction.NewHouse(cfg.Auction, client)
	if err != nil {
		lg.Error("auction house init failed", "err", err)
		return 1
	}

	go house.RunSettlement(ctx)
	go house.RunCleanup(ctx)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.New(house).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	lg.Info("http server listening", "addr", cfg.HTTPAddr)

	select {
	case <-ctx.Done():
		lg.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("http server failed", "err", err)
			return 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Warn("http shutdown incomplete", "err", err)
	}
	lg.Info("txauctiond stopped")
	return 0
}
