package bringup

import "picoblink/regs"

// ResetIOBanks pulses the IO_BANK0 and PADS_BANK0 resets and waits for
// RESET_DONE on each. Every pin's pad and function select returns to its
// reset value. It returns the number of RESET_DONE reads.
func ResetIOBanks(h *regs.Handle, limit int) (int, error) {
	polls := 0
	for _, b := range [...]uint32{regs.ResetIOBank0, regs.ResetPadsBank0} {
		h.SetBits(regs.ResetsReset, b)
		h.ClearBits(regs.ResetsReset, b)
		n, err := h.Wait(regs.ResetsResetDone, b, b, limit)
		polls += n
		if err != nil {
			return polls, err
		}
	}
	return polls, nil
}

// ConfigurePin makes pin a SIO-driven output: pad output driver on and
// input buffer off, FUNCSEL = SIO, and its GPIO_OE bit set. Other pins'
// registers are left alone, so it can be called for further pins after
// ResetIOBanks without disturbing earlier ones.
func ConfigurePin(h *regs.Handle, pin uint32) error {
	if pin >= NumPins {
		return ErrPinOutOfRange
	}
	// OD=0 enables the output driver, IE=0 disables the input buffer.
	h.Write(regs.PadCtrl(pin), 0)
	h.Write(regs.GPIOCtrl(pin), regs.GPIOCtrlFuncSelSIO)
	h.SetBits(regs.SIOGPIOOE, 1<<pin)
	return nil
}
