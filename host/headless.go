package host

import (
	"github.com/golang/glog"

	"github.com/nf/nip/chip8"
)

// RunHeadless executes up to steps instructions on m as fast as possible,
// ticking the timers cfg.TimerHz times for every cfg.ClockHz instructions.
// It returns early with the halt error if the program halts.
func RunHeadless(m *chip8.Machine, cfg Config, steps int) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	acc := 0
	for i := 0; i < steps; i++ {
		if err := m.Step(); err != nil {
			glog.Errorf("halted after %d steps: %v", i, err)
			return err
		}
		for acc += cfg.TimerHz; acc >= cfg.ClockHz; acc -= cfg.ClockHz {
			m.TickTimers()
		}
	}
	glog.V(1).Infof("ran %d steps", steps)
	return nil
}
