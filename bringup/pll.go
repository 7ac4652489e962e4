package bringup

import (
	"errors"

	"picoblink/regs"
)

var (
	ErrFBDivRange    = errors.New("feedback divider out of range 16..320")
	ErrPostDivRange  = errors.New("post divider out of range 1..7")
	ErrPostDivOrder  = errors.New("post divider 1 must be >= post divider 2")
	ErrVCORange      = errors.New("VCO frequency out of range 750..1600 MHz")
	ErrFreqMismatch  = errors.New("PLL output does not equal target frequency")
	ErrRefFrequency  = errors.New("crystal frequency must be a whole number of MHz")
	ErrPinOutOfRange = errors.New("pin out of range")
)

// VCO limits from the RP2040 datasheet, section 2.18.2.
const (
	vcoMinHz = 750_000_000
	vcoMaxHz = 1_600_000_000
)

// PLLConfig holds the divider settings of one PLL. REFDIV is left at its
// reset value of 1, so the output is
//
//	ref × FBDiv / (PostDiv1 × PostDiv2)
type PLLConfig struct {
	FBDiv    uint32
	PostDiv1 uint32
	PostDiv2 uint32
}

var (
	// SysPLL: 12 MHz × 125 = 1500 MHz VCO, 1500 / (6 × 2) = 125 MHz.
	SysPLL = PLLConfig{FBDiv: 125, PostDiv1: 6, PostDiv2: 2}

	// USBPLL: 12 MHz × 100 = 1200 MHz VCO, 1200 / (5 × 5) = 48 MHz.
	USBPLL = PLLConfig{FBDiv: 100, PostDiv1: 5, PostDiv2: 5}
)

// VCO returns the VCO frequency for a reference of refHz.
func (c PLLConfig) VCO(refHz uint32) uint64 {
	return uint64(refHz) * uint64(c.FBDiv)
}

// Output returns the post-divided frequency and whether the division is exact.
func (c PLLConfig) Output(refHz uint32) (hz uint64, exact bool) {
	div := uint64(c.PostDiv1) * uint64(c.PostDiv2)
	if div == 0 {
		return 0, false
	}
	vco := c.VCO(refHz)
	return vco / div, vco%div == 0
}

// Validate checks the dividers against the hardware limits and that they
// produce exactly targetHz from refHz.
func (c PLLConfig) Validate(refHz, targetHz uint32) error {
	if c.FBDiv < 16 || c.FBDiv > 320 {
		return ErrFBDivRange
	}
	if c.PostDiv1 < 1 || c.PostDiv1 > 7 || c.PostDiv2 < 1 || c.PostDiv2 > 7 {
		return ErrPostDivRange
	}
	if c.PostDiv1 < c.PostDiv2 {
		return ErrPostDivOrder
	}
	if vco := c.VCO(refHz); vco < vcoMinHz || vco > vcoMaxHz {
		return ErrVCORange
	}
	if hz, exact := c.Output(refHz); !exact || hz != uint64(targetHz) {
		return ErrFreqMismatch
	}
	return nil
}

// prim encodes the post dividers for the PLL PRIM register.
func (c PLLConfig) prim() uint32 {
	return c.PostDiv1<<regs.PLLPrimPostDiv1Pos | c.PostDiv2<<regs.PLLPrimPostDiv2Pos
}
