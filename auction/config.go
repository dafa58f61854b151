package auction

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the auction house timing and policy parameters.
type Config struct {
	// GenesisTime anchors the slot clock (unix seconds).
	GenesisTime uint64

	// SecondsPerSlot is the beacon slot length.
	SecondsPerSlot uint64

	// SettleDelay is how far into a slot settlement waits to accumulate
	// bids.
	SettleDelay time.Duration

	// MinTimeInPool is the dwell floor: an auction whose transaction has
	// been pooled for less than this is carried to the next slot.
	MinTimeInPool time.Duration

	// MaxSlotsInPool is the expiry horizon. Transactions older than this
	// many slots are flushed to the public mempool.
	MaxSlotsInPool uint64

	// ResultRetention bounds the number of slots of settlement results
	// kept in memory.
	ResultRetention int

	// PollInterval is the cleanup loop's head-poll cadence.
	PollInterval time.Duration

	// RPCTimeout bounds every chain RPC call issued by handlers and
	// background loops.
	RPCTimeout time.Duration

	// StrictPubkeys enforces BLS public key validation at registration.
	// Requires the blst build tag.
	StrictPubkeys bool
}

// DefaultConfig returns mainnet-flavored defaults.
func DefaultConfig() Config {
	return Config{
		GenesisTime:     MainnetGenesisTime,
		SecondsPerSlot:  12,
		SettleDelay:     10 * time.Second,
		MinTimeInPool:   time.Second,
		MaxSlotsInPool:  10,
		ResultRetention: 256,
		PollInterval:    time.Second,
		RPCTimeout:      5 * time.Second,
	}
}

// Validate checks configuration values for correctness.
func (c *Config) Validate() error {
	if c.SecondsPerSlot == 0 {
		return errors.New("auction: SecondsPerSlot must be > 0")
	}
	if c.SettleDelay < 0 || c.SettleDelay >= time.Duration(c.SecondsPerSlot)*time.Second {
		return fmt.Errorf("auction: SettleDelay %s must fit inside a %ds slot", c.SettleDelay, c.SecondsPerSlot)
	}
	if c.MinTimeInPool < 0 {
		return errors.New("auction: MinTimeInPool must not be negative")
	}
	if c.MaxSlotsInPool == 0 {
		return errors.New("auction: MaxSlotsInPool must be > 0")
	}
	if c.ResultRetention <= 0 {
		return errors.New("auction: ResultRetention must be > 0")
	}
	if c.PollInterval <= 0 {
		return errors.New("auction: PollInterval must be > 0")
	}
	if c.RPCTimeout <= 0 {
		return errors.New("auction: RPCTimeout must be > 0")
	}
	if c.StrictPubkeys && !blsAvailable {
		return errors.New("auction: StrictPubkeys requires a build with the blst tag")
	}
	return nil
}
