package core

import "picoblink/regs"

// Timer reads the RP2040 64-bit microsecond TIMER.
// It counts correctly only once the watchdog tick divides clk_ref down to 1MHz.
type Timer struct {
	h *regs.Handle
}

// NewTimer returns a Timer over h
func NewTimer(h *regs.Handle) *Timer {
	return &Timer{h: h}
}

// Now returns the low 32 bits of the microsecond counter
func (t *Timer) Now() uint32 {
	return t.h.Read(regs.TimerRawL)
}

// Uptime reads the full 64-bit counter
func (t *Timer) Uptime() uint64 {
	// Must read high first, then low, then high again to detect rollover
	for {
		high1 := t.h.Read(regs.TimerRawH)
		low := t.h.Read(regs.TimerRawL)
		high2 := t.h.Read(regs.TimerRawH)

		// If high didn't change, we got a consistent reading
		if high1 == high2 {
			return (uint64(high1) << 32) | uint64(low)
		}
		// Otherwise retry (rollover happened during read)
	}
}

// DelayUS busy-waits for at least us microseconds.
// Wrapping subtraction keeps it correct across a low-word rollover.
func (t *Timer) DelayUS(us uint32) {
	start := t.Now()
	for t.Now()-start < us {
	}
}
