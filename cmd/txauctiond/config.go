package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/eth2030/txauction/auction"
)

// config holds the resolved process configuration.
type config struct {
	Provider string // execution-layer JSON-RPC endpoint
	HTTPAddr string // listen address for the auction HTTP surface
	LogLevel string

	Auction auction.Config
}

// defaultConfig returns the built-in defaults. Provider has no default; it
// must come from the PROVIDER environment variable or the -provider flag.
func defaultConfig() config {
	return config{
		HTTPAddr: ":8080",
		LogLevel: "info",
		Auction:  auction.DefaultConfig(),
	}
}

// parseFlags resolves configuration from flags and environment. The
// PROVIDER environment variable seeds -provider so deployments can keep the
// endpoint out of the command line.
func parseFlags(args []string) (config, error) {
	cfg := defaultConfig()

	fs := flag.NewFlagSet("txauctiond", flag.ContinueOnError)
	fs.StringVar(&cfg.Provider, "provider", os.Getenv("PROVIDER"), "execution JSON-RPC endpoint URL (env PROVIDER)")
	fs.StringVar(&cfg.HTTPAddr, "http.addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.LogLevel, "verbosity", cfg.LogLevel, "log level: debug, info, warn, error")

	fs.Uint64Var(&cfg.Auction.GenesisTime, "genesis", cfg.Auction.GenesisTime, "beacon genesis unix timestamp")
	fs.DurationVar(&cfg.Auction.SettleDelay, "settle.delay", cfg.Auction.SettleDelay, "delay into each slot before settlement")
	fs.DurationVar(&cfg.Auction.MinTimeInPool, "pool.dwell", cfg.Auction.MinTimeInPool, "minimum time a tx dwells before its auction settles")
	fs.Uint64Var(&cfg.Auction.MaxSlotsInPool, "pool.maxslots", cfg.Auction.MaxSlotsInPool, "slots before an unsold tx is flushed to the public mempool")
	fs.IntVar(&cfg.Auction.ResultRetention, "results.retention", cfg.Auction.ResultRetention, "slots of settlement results kept in memory")
	fs.DurationVar(&cfg.Auction.RPCTimeout, "rpc.timeout", cfg.Auction.RPCTimeout, "per-call chain RPC timeout")
	fs.BoolVar(&cfg.Auction.StrictPubkeys, "strict-pubkeys", false, "require valid BLS builder pubkeys (blst build only)")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// validate checks the resolved configuration.
func (c *config) validate() error {
	if c.Provider == "" {
		return errors.New("config: provider endpoint required (set PROVIDER or -provider)")
	}
	if c.HTTPAddr == "" {
		return errors.New("config: http.addr must not be empty")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.LogLevel)
	}
	if c.Auction.RPCTimeout <= 0 || c.Auction.RPCTimeout > time.Minute {
		return fmt.Errorf("config: unreasonable rpc timeout %s", c.Auction.RPCTimeout)
	}
	return c.Auction.Validate()
}
