package auction

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.GenesisTime != MainnetGenesisTime {
		t.Fatalf("genesis = %d, want mainnet", cfg.GenesisTime)
	}
	if cfg.SecondsPerSlot != 12 || cfg.SettleDelay != 10*time.Second {
		t.Fatalf("slot timing defaults wrong: %d / %s", cfg.SecondsPerSlot, cfg.SettleDelay)
	}
	if cfg.MinTimeInPool != time.Second || cfg.MaxSlotsInPool != 10 {
		t.Fatalf("pool defaults wrong: %s / %d", cfg.MinTimeInPool, cfg.MaxSlotsInPool)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		frag   string
	}{
		{"zero slot", func(c *Config) { c.SecondsPerSlot = 0 }, "SecondsPerSlot"},
		{"delay too long", func(c *Config) { c.SettleDelay = 12 * time.Second }, "SettleDelay"},
		{"negative dwell", func(c *Config) { c.MinTimeInPool = -time.Second }, "MinTimeInPool"},
		{"zero horizon", func(c *Config) { c.MaxSlotsInPool = 0 }, "MaxSlotsInPool"},
		{"zero retention", func(c *Config) { c.ResultRetention = 0 }, "ResultRetention"},
		{"zero poll", func(c *Config) { c.PollInterval = 0 }, "PollInterval"},
		{"zero timeout", func(c *Config) { c.RPCTimeout = 0 }, "RPCTimeout"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.frag) {
				t.Fatalf("error %q does not mention %q", err, tc.frag)
			}
		})
	}
}

func TestConfigStrictPubkeysRequiresBlst(t *testing.T) {
	if blsAvailable {
		t.Skip("built with blst")
	}
	cfg := DefaultConfig()
	cfg.StrictPubkeys = true
	if err := cfg.Validate(); err == nil {
		t.Fatal("StrictPubkeys must be rejected without the blst build tag")
	}
}
