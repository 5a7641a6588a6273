package host

import (
	"fmt"
	"time"
)

// Config sets the cadences at which a Runner drives a machine.
type Config struct {
	ClockHz int    // instructions per second
	TimerHz int    // delay and sound timer ticks per second
	FrameHz int    // frontend repaints and debugger refreshes per second
	Seed    uint64 // random number generator seed

	// Dev keeps the Runner alive when the program halts,
	// so that it can be reset with a new program.
	Dev bool
}

// DefaultConfig returns the conventional CHIP-8 cadences.
func DefaultConfig() Config {
	return Config{
		ClockHz: 500,
		TimerHz: 60,
		FrameHz: 60,
	}
}

// Validate reports whether c can drive a machine.
func (c Config) Validate() error {
	switch {
	case c.ClockHz <= 0:
		return fmt.Errorf("clock rate %d Hz must be positive", c.ClockHz)
	case c.TimerHz <= 0:
		return fmt.Errorf("timer rate %d Hz must be positive", c.TimerHz)
	case c.FrameHz <= 0:
		return fmt.Errorf("frame rate %d Hz must be positive", c.FrameHz)
	}
	return nil
}

func period(hz int) time.Duration {
	return time.Second / time.Duration(hz)
}
