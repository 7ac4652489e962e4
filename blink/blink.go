// Package blink is the steady state after bring-up: one SIO output toggled
// at a fixed cadence, forever.
package blink

import (
	"picoblink/bringup"
	"picoblink/core"
	"picoblink/regs"
)

// DefaultPeriodUS is one full on/off cycle.
const DefaultPeriodUS = 1_000_000

// Blinker drives one pin high and low through the SIO SET/CLR registers,
// so other pins' output bits are never rewritten.
type Blinker struct {
	h      *regs.Handle
	mask   uint32
	half   uint32
	delay  func(us uint32)
	cycles uint32
}

// New returns a Blinker for pin with a full period of periodUS
// microseconds. The pin must already be a SIO output (bringup.Run).
func New(h *regs.Handle, pin, periodUS uint32) (*Blinker, error) {
	if pin >= bringup.NumPins {
		return nil, bringup.ErrPinOutOfRange
	}
	return &Blinker{
		h:     h,
		mask:  1 << pin,
		half:  periodUS / 2,
		delay: core.NewTimer(h).DelayUS,
	}, nil
}

// SetDelay replaces the TIMER busy-wait used between transitions.
func (b *Blinker) SetDelay(fn func(us uint32)) {
	b.delay = fn
}

// On drives the pin high.
func (b *Blinker) On() {
	b.h.SetBits(regs.SIOGPIOOut, b.mask)
	core.DebugPrintln("LED on " + core.Utoa(b.cycles))
}

// Off drives the pin low.
func (b *Blinker) Off() {
	b.h.ClearBits(regs.SIOGPIOOut, b.mask)
	core.DebugPrintln("LED off")
}

// Cycle is one period: high, wait, low, wait.
func (b *Blinker) Cycle() {
	b.On()
	b.delay(b.half)
	b.Off()
	b.delay(b.half)
	b.cycles++
}

// Cycles returns the number of completed periods.
func (b *Blinker) Cycles() uint32 {
	return b.cycles
}

// Run blinks until power is removed.
func (b *Blinker) Run() {
	for {
		b.Cycle()
	}
}
