package auction

import "time"

// MainnetGenesisTime is the unix timestamp of Ethereum beacon chain genesis.
const MainnetGenesisTime uint64 = 1606824023

// SlotClock converts wall-clock time to beacon slot numbers. All methods
// are pure computations over the configured genesis and slot length.
type SlotClock struct {
	genesis time.Time
	slot    time.Duration
}

// NewSlotClock creates a clock anchored at the given genesis timestamp.
// Panics if secondsPerSlot is zero.
func NewSlotClock(genesisUnix uint64, secondsPerSlot uint64) *SlotClock {
	if secondsPerSlot == 0 {
		panic("auction: secondsPerSlot must be > 0")
	}
	return &SlotClock{
		genesis: time.Unix(int64(genesisUnix), 0),
		slot:    time.Duration(secondsPerSlot) * time.Second,
	}
}

// Current returns the slot containing now. Returns 0 before genesis.
func (c *SlotClock) Current(now time.Time) uint64 {
	if now.Before(c.genesis) {
		return 0
	}
	return uint64(now.Sub(c.genesis) / c.slot)
}

// SlotStart returns the time at which the given slot begins.
func (c *SlotClock) SlotStart(slot uint64) time.Time {
	return c.genesis.Add(time.Duration(slot) * c.slot)
}

// UntilSlot returns the duration from now until the given slot starts.
// Negative if the slot already began.
func (c *SlotClock) UntilSlot(slot uint64, now time.Time) time.Duration {
	return c.SlotStart(slot).Sub(now)
}
