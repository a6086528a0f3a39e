package save

import (
	"fmt"
	"sync"

	"github.com/richardwooding/gbcart/internal/cartridge"
)

// Store moves state between a cartridge and snapshots. The zero value is
// ready to use. The host must not step the CPU while a Snapshot or Restore
// is running.
type Store struct {
	mu sync.Mutex
}

// Snapshot captures the cartridge RAM and, if present, its clock.
func (s *Store) Snapshot(c cartridge.Cartridge) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{RAM: c.GetRAM()}
	if rtc := c.RTC(); rtc != nil {
		live, latched, anchor := rtc.Checkpoint()
		snap.Clock = &Clock{Live: live, Latched: latched, Anchor: anchor}
	}
	return snap
}

// Restore loads a snapshot into the cartridge. A saved clock catches up
// with the wall time that passed since it was taken, unless it was halted.
func (s *Store) Restore(c cartridge.Cartridge, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if want := c.Info().RAMBytes; len(snap.RAM) != want {
		return fmt.Errorf("%w: %d bytes of RAM, cartridge has %d", ErrSizeMismatch, len(snap.RAM), want)
	}

	rtc := c.RTC()
	if snap.Clock != nil && rtc == nil {
		return fmt.Errorf("%w: clock state for a cartridge without a clock", ErrSizeMismatch)
	}

	if len(snap.RAM) > 0 {
		if err := c.SetRAM(snap.RAM); err != nil {
			return fmt.Errorf("%w: %w", ErrSizeMismatch, err)
		}
	}
	if snap.Clock != nil {
		rtc.Restore(snap.Clock.Live, snap.Clock.Latched, snap.Clock.Anchor)
	}
	return nil
}
