package bringup

import (
	"errors"
	"testing"

	"picoblink/core"
	"picoblink/regs"
	"picoblink/sim"
)

func newChip(opts sim.Options) (*sim.Chip, *regs.Handle) {
	c := sim.New(opts)
	return c, regs.New(c)
}

func TestRunReachesReady(t *testing.T) {
	core.ResetTrace()
	c, h := newChip(sim.DefaultOptions())
	seq := New(h, DefaultConfig())

	if err := seq.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if seq.State() != Ready {
		t.Errorf("Expected state %s, got %s", Ready, seq.State())
	}
	if got := c.SysClockHz(XOSCHz); got != SysHz {
		t.Errorf("Expected clk_sys %d Hz, got %d", SysHz, got)
	}
	if !c.Locked(regs.PLLUSBBase) {
		t.Errorf("USB PLL not locked")
	}
	if f := c.Faults(); len(f) != 0 {
		t.Errorf("Unexpected bus faults: %v", f)
	}

	want := []State{
		XOSCReady, RefClkSelected, SysClkOnRef, PLLsReset, PLLsProgrammed,
		PLLsLocked, SysClkOnPLL, PeriClkStable, WatchdogTickConfigured, PinReady,
	}
	trace := core.Trace()
	if len(trace) != len(want) {
		t.Fatalf("Expected %d trace events, got %d", len(want), len(trace))
	}
	for i, st := range want {
		if State(trace[i].State) != st {
			t.Errorf("trace[%d]: expected %s, got %s", i, st, State(trace[i].State))
		}
	}
}

func TestRunTwiceFails(t *testing.T) {
	_, h := newChip(sim.DefaultOptions())
	seq := New(h, DefaultConfig())
	if err := seq.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if err := seq.Run(); !errors.Is(err, ErrAlreadyRun) {
		t.Errorf("Expected ErrAlreadyRun, got %v", err)
	}
}

func TestResetsLeaveUnrelatedBits(t *testing.T) {
	c, h := newChip(sim.DefaultOptions())
	// ADC (bit 0) and UART0 (bit 22) stay in reset; nothing else may touch them.
	c.Poke(regs.ResetsReset, 1<<0|1<<22|regs.ResetPLLSys|regs.ResetPLLUSB|regs.ResetIOBank0|regs.ResetPadsBank0)

	if err := New(h, DefaultConfig()).Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := c.Peek(regs.ResetsReset); got != 1<<0|1<<22 {
		t.Errorf("RESET: expected only unrelated bits set, got %s", regs.Hex(got))
	}
	done := c.Load(regs.ResetsResetDone)
	for _, b := range []uint32{regs.ResetPLLSys, regs.ResetPLLUSB, regs.ResetIOBank0, regs.ResetPadsBank0} {
		if done&b == 0 {
			t.Errorf("block %s still in reset", regs.Hex(b))
		}
	}
	if c.Reads(regs.ResetsReset) != 0 {
		t.Errorf("RESET must only be changed through the alias windows, saw %d reads", c.Reads(regs.ResetsReset))
	}
	for _, s := range c.StoresTo(regs.ResetsReset) {
		if s.Op != regs.OpSet && s.Op != regs.OpClear {
			t.Errorf("plain %s store to RESET at %s", s.Op, regs.Hex(s.Addr))
		}
	}
}

func TestXOSCWaitPollsUntilStable(t *testing.T) {
	for _, n := range []int{0, 1, 7, 250} {
		core.ResetTrace()
		opts := sim.DefaultOptions()
		opts.XOSCStartupReads = n
		c, h := newChip(opts)

		if err := New(h, DefaultConfig()).Run(); err != nil {
			t.Fatalf("N=%d: Run failed: %v", n, err)
		}
		if got := c.Reads(regs.XOSCStatus); got != n+1 {
			t.Errorf("N=%d: expected %d XOSC_STATUS reads, got %d", n, n+1, got)
		}
		if ev := core.Trace()[0]; State(ev.State) != XOSCReady || ev.Polls != uint32(n+1) {
			t.Errorf("N=%d: unexpected first trace event %+v", n, ev)
		}
	}
}

func TestPLLLocksOnlyOnTargetDividers(t *testing.T) {
	cases := []struct {
		name   string
		target sim.PLLTarget
		cfg    PLLConfig
		locked bool
	}{
		{"default", sim.PLLTarget{FBDiv: 125, PostDiv1: 6, PostDiv2: 2}, SysPLL, true},
		{"alternate dividers", sim.PLLTarget{FBDiv: 125, PostDiv1: 4, PostDiv2: 3}, PLLConfig{125, 4, 3}, true},
		{"mismatch", sim.PLLTarget{FBDiv: 125, PostDiv1: 6, PostDiv2: 2}, PLLConfig{125, 4, 3}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := sim.DefaultOptions()
			opts.SysPLL = tc.target
			c, h := newChip(opts)
			cfg := DefaultConfig()
			cfg.SysPLL = tc.cfg
			cfg.PollLimit = 1000

			seq := New(h, cfg)
			err := seq.Run()
			if tc.locked {
				if err != nil {
					t.Fatalf("Run failed: %v", err)
				}
				if !c.Locked(regs.PLLSysBase) {
					t.Errorf("Expected PLL_SYS locked")
				}
				return
			}
			var se *StepError
			if !errors.As(err, &se) || se.State != PLLsLocked {
				t.Fatalf("Expected stall entering %s, got %v", PLLsLocked, err)
			}
			if !errors.Is(err, regs.ErrPollTimeout) {
				t.Errorf("Expected ErrPollTimeout in chain, got %v", err)
			}
			if seq.State() != PLLsProgrammed {
				t.Errorf("Expected state %s after stall, got %s", PLLsProgrammed, seq.State())
			}
			if got := c.SysClockHz(XOSCHz); got != XOSCHz {
				t.Errorf("clk_sys must stay on the crystal, got %d", got)
			}
		})
	}
}

func TestPLLRegistersProgrammed(t *testing.T) {
	c, h := newChip(sim.DefaultOptions())
	if err := New(h, DefaultConfig()).Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := c.Peek(regs.PLLSysBase + regs.PLLPrim); got != 0x00062000 {
		t.Errorf("PLL_SYS PRIM: expected 0x00062000, got %s", regs.Hex(got))
	}
	if got := c.Peek(regs.PLLUSBBase + regs.PLLPrim); got != 0x00055000 {
		t.Errorf("PLL_USB PRIM: expected 0x00055000, got %s", regs.Hex(got))
	}
	for _, base := range []uint32{regs.PLLSysBase, regs.PLLUSBBase} {
		if pwr := c.Peek(base + regs.PLLPwr); pwr&(regs.PLLPwrPD|regs.PLLPwrVCOPD) != 0 {
			t.Errorf("PLL at %s still powered down: PWR=%s", regs.Hex(base), regs.Hex(pwr))
		}
	}
}

func TestClockSwitchOrdering(t *testing.T) {
	c, h := newChip(sim.DefaultOptions())
	if err := New(h, DefaultConfig()).Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	first := func(match func(sim.Store) bool) int {
		for i, s := range c.Stores() {
			if match(s) {
				return i
			}
		}
		return -1
	}
	last := func(match func(sim.Store) bool) int {
		idx := -1
		for i, s := range c.Stores() {
			if match(s) {
				idx = i
			}
		}
		return idx
	}
	isPLL := func(s sim.Store) bool {
		b, _ := regs.Lookup(s.Reg)
		return b.Base == regs.PLLSysBase || b.Base == regs.PLLUSBBase
	}

	xoscOn := first(func(s sim.Store) bool { return s.Reg == regs.XOSCCtrl })
	refOnXOSC := first(func(s sim.Store) bool { return s.Reg == regs.ClkRefCtrl })
	parkSys := first(func(s sim.Store) bool {
		return s.Reg == regs.ClkSysCtrl && s.Op == regs.OpClear && s.Value == regs.ClkSysSrc
	})
	firstPLL := first(isPLL)
	lastPLL := last(isPLL)
	auxSel := first(func(s sim.Store) bool {
		return s.Reg == regs.ClkSysCtrl && s.Op == regs.OpClear && s.Value == regs.ClkSysAuxSrcMsk
	})
	glitchless := first(func(s sim.Store) bool {
		return s.Reg == regs.ClkSysCtrl && s.Op == regs.OpSet && s.Value == regs.ClkSysSrc
	})
	peri := first(func(s sim.Store) bool { return s.Reg == regs.ClkPeriCtrl })

	order := []struct {
		name string
		idx  int
	}{
		{"xosc enable", xoscOn},
		{"clk_ref -> xosc", refOnXOSC},
		{"clk_sys -> clk_ref", parkSys},
		{"first PLL store", firstPLL},
		{"last PLL store", lastPLL},
		{"aux mux -> pll_sys", auxSel},
		{"glitchless mux -> aux", glitchless},
		{"clk_peri restart", peri},
	}
	for i := 1; i < len(order); i++ {
		if order[i-1].idx < 0 || order[i].idx < 0 || order[i-1].idx >= order[i].idx {
			t.Errorf("%s (store %d) must come before %s (store %d)",
				order[i-1].name, order[i-1].idx, order[i].name, order[i].idx)
		}
	}

	periStores := c.StoresTo(regs.ClkPeriCtrl)
	if len(periStores) != 2 || periStores[0].Result != 0 || periStores[1].Result != regs.ClkPeriEnable {
		t.Errorf("clk_peri must be disabled then enabled, got %+v", periStores)
	}
}

func TestWatchdogTickConfigured(t *testing.T) {
	c, h := newChip(sim.DefaultOptions())
	if err := New(h, DefaultConfig()).Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	tick := c.Peek(regs.WatchdogTick)
	if tick&regs.WatchdogTickCyclesMsk != 12 || tick&regs.WatchdogTickEnable == 0 {
		t.Errorf("WATCHDOG_TICK: expected 12|ENABLE, got %s", regs.Hex(tick))
	}
	if got := c.Peek(regs.TimerDbgPause); got != 0 {
		t.Errorf("TIMER_DBGPAUSE: expected 0, got %s", regs.Hex(got))
	}

	before := c.Micros()
	c.Advance(12_000_000)
	if got := c.Micros() - before; got != 1_000_000 {
		t.Errorf("Expected one tick per microsecond, got %d ticks per second", got)
	}
}

func TestPinBringUp(t *testing.T) {
	c, h := newChip(sim.DefaultOptions())
	const others = 0x0000f0f1
	c.Poke(regs.SIOGPIOOE, others)

	if err := New(h, DefaultConfig()).Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	pad := c.Peek(regs.PadCtrl(LEDPin))
	if pad&regs.PadIE != 0 || pad&regs.PadOD != 0 {
		t.Errorf("pad: expected input disabled and output enabled, got %s", regs.Hex(pad))
	}
	if got := c.Peek(regs.GPIOCtrl(LEDPin)) & regs.GPIOCtrlFuncSelMsk; got != regs.GPIOCtrlFuncSelSIO {
		t.Errorf("FUNCSEL: expected SIO (5), got %d", got)
	}
	if got := c.Peek(regs.SIOGPIOOE); got != others|1<<LEDPin {
		t.Errorf("GPIO_OE: expected %s, got %s", regs.Hex(others|1<<LEDPin), regs.Hex(got))
	}
	if c.Reads(regs.SIOGPIOOE) != 0 {
		t.Errorf("GPIO_OE must be set atomically, saw %d reads", c.Reads(regs.SIOGPIOOE))
	}
}

func TestConfigurePinLeavesOtherPins(t *testing.T) {
	c, h := newChip(sim.DefaultOptions())
	if _, err := ResetIOBanks(h, 10); err != nil {
		t.Fatalf("ResetIOBanks failed: %v", err)
	}
	if err := ConfigurePin(h, 25); err != nil {
		t.Fatalf("ConfigurePin(25) failed: %v", err)
	}
	if err := ConfigurePin(h, 15); err != nil {
		t.Fatalf("ConfigurePin(15) failed: %v", err)
	}
	for _, pin := range []uint32{15, 25} {
		if c.Peek(regs.GPIOCtrl(pin)) != regs.GPIOCtrlFuncSelSIO {
			t.Errorf("pin %d: FUNCSEL not SIO", pin)
		}
	}
	if got := c.Peek(regs.SIOGPIOOE); got != 1<<15|1<<25 {
		t.Errorf("GPIO_OE: got %s", regs.Hex(got))
	}
	if got := c.Peek(regs.PadCtrl(0)); got != regs.PadResetValue {
		t.Errorf("untouched pad changed: %s", regs.Hex(got))
	}
	if err := ConfigurePin(h, NumPins); !errors.Is(err, ErrPinOutOfRange) {
		t.Errorf("Expected ErrPinOutOfRange, got %v", err)
	}
}

func TestBoundedXOSCStall(t *testing.T) {
	opts := sim.DefaultOptions()
	opts.XOSCStartupReads = 1000
	c, h := newChip(opts)
	cfg := DefaultConfig()
	cfg.PollLimit = 10

	seq := New(h, cfg)
	err := seq.Run()
	var se *StepError
	if !errors.As(err, &se) || se.State != XOSCReady {
		t.Fatalf("Expected stall entering XOSC_READY, got %v", err)
	}
	if seq.State() != Unconfigured {
		t.Errorf("Expected state UNCONFIGURED, got %s", seq.State())
	}
	if got := c.Reads(regs.XOSCStatus); got != 10 {
		t.Errorf("Expected 10 XOSC_STATUS reads, got %d", got)
	}
	if len(c.StoresTo(regs.ClkRefCtrl)) != 0 {
		t.Errorf("clk_ref must not be touched after a stalled XOSC")
	}
}

func TestBoundedMuxStall(t *testing.T) {
	opts := sim.DefaultOptions()
	opts.MuxSettleReads = 50
	_, h := newChip(opts)
	cfg := DefaultConfig()
	cfg.PollLimit = 20

	seq := New(h, cfg)
	var se *StepError
	if err := seq.Run(); !errors.As(err, &se) || se.State != RefClkSelected {
		t.Fatalf("Expected stall entering REF_CLK_SELECTED, got %v", err)
	}
	if seq.State() != XOSCReady {
		t.Errorf("Expected state XOSC_READY, got %s", seq.State())
	}
}

func TestStateString(t *testing.T) {
	cases := map[State]string{
		Unconfigured: "UNCONFIGURED",
		PLLsLocked:   "PLLS_LOCKED",
		Ready:        "PIN_READY",
		State(42):    "STATE(42)",
	}
	for st, want := range cases {
		if got := st.String(); got != want {
			t.Errorf("State(%d).String() = %q, expected %q", uint8(st), got, want)
		}
	}
}
