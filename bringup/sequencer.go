// Package bringup takes an RP2040 from power-on to a 125 MHz clk_sys and one
// SIO-driven output pin. Each step relies on the hardware state left by the
// one before it, so the order in Run is the contract.
package bringup

import (
	"errors"

	"picoblink/core"
	"picoblink/regs"
)

// ErrAlreadyRun is returned by a second call to Run.
var ErrAlreadyRun = errors.New("bringup: sequence already run")

// StepError reports a bounded wait that gave up while entering State.
type StepError struct {
	State State
	Err   error
}

func (e *StepError) Error() string {
	return "bringup: stalled entering " + e.State.String() + ": " + e.Err.Error()
}

func (e *StepError) Unwrap() error { return e.Err }

// Sequencer runs the bring-up sequence once over a register handle.
type Sequencer struct {
	h     *regs.Handle
	cfg   Config
	state State
	ran   bool
	timer *core.Timer
}

// New returns a Sequencer in the Unconfigured state.
func New(h *regs.Handle, cfg Config) *Sequencer {
	return &Sequencer{
		h:     h,
		cfg:   cfg,
		timer: core.NewTimer(h),
	}
}

// State returns the last state the sequence reached.
func (s *Sequencer) State() State {
	return s.state
}

// Run executes the whole sequence. With Config.PollLimit == 0 it either
// returns nil in the Ready state or never returns. With a limit, a wait
// that runs out aborts with a *StepError and State stays at the last state
// completed.
func (s *Sequencer) Run() error {
	if s.ran {
		return ErrAlreadyRun
	}
	s.ran = true
	if err := s.cfg.Validate(); err != nil {
		return err
	}

	steps := [...]func() error{
		s.startXOSC,
		s.selectRefXOSC,
		s.parkSysOnRef,
		s.resetPLLs,
		s.programPLLs,
		s.lockPLLs,
		s.switchSysToPLL,
		s.restartPeriClock,
		s.startTick,
		s.bringUpPin,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sequencer) enter(st State, polls int) {
	s.state = st
	var clock uint32
	if st >= WatchdogTickConfigured {
		clock = s.timer.Now()
	}
	core.RecordStep(uint8(st), polls, clock)
	core.DebugPrintln("[BRINGUP] " + st.String() + " polls=" + core.Itoa(polls))
}

func (s *Sequencer) wait(next State, addr, mask, want uint32) (int, error) {
	n, err := s.h.Wait(addr, mask, want, s.cfg.PollLimit)
	if err != nil {
		return n, &StepError{State: next, Err: err}
	}
	return n, nil
}

// startXOSC enables the crystal and waits for STABLE.
func (s *Sequencer) startXOSC() error {
	s.h.Write(regs.XOSCStartup, s.cfg.xoscStartup())
	s.h.Write(regs.XOSCCtrl, regs.XOSCCtrlFreqRange1_15MHz|regs.XOSCCtrlEnable)
	n, err := s.wait(XOSCReady, regs.XOSCStatus, regs.XOSCStatusStable, regs.XOSCStatusStable)
	if err != nil {
		return err
	}
	s.enter(XOSCReady, n)
	return nil
}

// selectRefXOSC moves clk_ref's glitchless mux to the crystal.
func (s *Sequencer) selectRefXOSC() error {
	s.h.Write(regs.ClkRefCtrl, regs.ClkRefSrcXOSC)
	n, err := s.wait(RefClkSelected, regs.ClkRefSelected, 0xffffffff, 1<<regs.ClkRefSrcXOSC)
	if err != nil {
		return err
	}
	s.enter(RefClkSelected, n)
	return nil
}

// parkSysOnRef runs clk_sys from clk_ref while the PLLs are rebuilt.
func (s *Sequencer) parkSysOnRef() error {
	s.h.ClearBits(regs.ClkSysCtrl, regs.ClkSysSrc)
	n, err := s.wait(SysClkOnRef, regs.ClkSysSelected, 0xffffffff, 1<<0)
	if err != nil {
		return err
	}
	s.enter(SysClkOnRef, n)
	return nil
}

// resetPLLs pulses the reset of both PLLs. Release takes effect at once;
// lock is checked later.
func (s *Sequencer) resetPLLs() error {
	for _, b := range [...]uint32{regs.ResetPLLSys, regs.ResetPLLUSB} {
		s.h.SetBits(regs.ResetsReset, b)
		s.h.ClearBits(regs.ResetsReset, b)
	}
	s.enter(PLLsReset, 0)
	return nil
}

type pllBlock struct {
	base uint32
	cfg  PLLConfig
}

func (s *Sequencer) pllBlocks() [2]pllBlock {
	return [2]pllBlock{
		{regs.PLLSysBase, s.cfg.SysPLL},
		{regs.PLLUSBBase, s.cfg.USBPLL},
	}
}

// programPLLs powers each PLL down and loads its dividers.
func (s *Sequencer) programPLLs() error {
	for _, p := range s.pllBlocks() {
		s.h.Write(p.base+regs.PLLPwr, regs.PLLPwrPD|regs.PLLPwrVCOPD)
		s.h.Write(p.base+regs.PLLFBDivInt, p.cfg.FBDiv)
		s.h.Write(p.base+regs.PLLPrim, p.cfg.prim())
	}
	s.enter(PLLsProgrammed, 0)
	return nil
}

// lockPLLs powers each PLL up and waits for LOCK.
func (s *Sequencer) lockPLLs() error {
	polls := 0
	for _, p := range s.pllBlocks() {
		s.h.ClearBits(p.base+regs.PLLPwr, regs.PLLPwrPD|regs.PLLPwrVCOPD)
		n, err := s.wait(PLLsLocked, p.base+regs.PLLCS, regs.PLLCSLock, regs.PLLCSLock)
		polls += n
		if err != nil {
			return err
		}
	}
	s.enter(PLLsLocked, polls)
	return nil
}

// switchSysToPLL points the aux mux at pll_sys, then the glitchless mux at
// the aux path. The aux mux must settle first or clk_sys glitches.
func (s *Sequencer) switchSysToPLL() error {
	// AUXSRC 0 is pll_sys, so clearing the field selects it.
	s.h.ClearBits(regs.ClkSysCtrl, regs.ClkSysAuxSrcMsk)
	s.h.SetBits(regs.ClkSysCtrl, regs.ClkSysSrc)
	n, err := s.wait(SysClkOnPLL, regs.ClkSysSelected, 0xffffffff, 1<<1)
	if err != nil {
		return err
	}
	s.enter(SysClkOnPLL, n)
	return nil
}

// restartPeriClock re-derives clk_peri from the new clk_sys.
func (s *Sequencer) restartPeriClock() error {
	s.h.Write(regs.ClkPeriCtrl, 0)
	// A bus read takes a few cycles, enough for ENABLE to propagate.
	s.h.Read(regs.ClocksBase)
	s.h.Write(regs.ClkPeriCtrl, regs.ClkPeriEnable|regs.ClkPeriAuxSrcClkSys<<regs.ClkPeriAuxSrcPos)
	s.enter(PeriClkStable, 1)
	return nil
}

// startTick divides the crystal down to one TIMER tick per microsecond and
// keeps the TIMER running while a debugger halts the cores. The TIMER is
// released from reset but not pulsed, so a running count is preserved.
func (s *Sequencer) startTick() error {
	s.h.Write(regs.WatchdogTick, s.cfg.tickCycles()|regs.WatchdogTickEnable)
	s.h.ClearBits(regs.ResetsReset, regs.ResetTimer)
	n, err := s.wait(WatchdogTickConfigured, regs.ResetsResetDone, regs.ResetTimer, regs.ResetTimer)
	if err != nil {
		return err
	}
	s.h.Write(regs.TimerDbgPause, 0)
	s.enter(WatchdogTickConfigured, n)
	return nil
}

func (s *Sequencer) bringUpPin() error {
	n, err := ResetIOBanks(s.h, s.cfg.PollLimit)
	if err != nil {
		return &StepError{State: PinReady, Err: err}
	}
	if err := ConfigurePin(s.h, s.cfg.Pin); err != nil {
		return err
	}
	s.enter(PinReady, n)
	return nil
}
