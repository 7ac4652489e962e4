// Package sim is a register-level model of the RP2040 blocks the bring-up
// sequence touches. A *Chip implements regs.Bus, decoding alias windows and
// SIO SET/CLR companions the way the hardware does, and models the status
// bits the sequence waits on.
package sim

import "picoblink/regs"

// PLLTarget is the divider triple a simulated PLL will lock to.
type PLLTarget struct {
	FBDiv    uint32
	PostDiv1 uint32
	PostDiv2 uint32
}

// Options tunes the timing of the model. Counts are in reads of the
// relevant status register.
type Options struct {
	XOSCStartupReads int // XOSC_STATUS reads that see STABLE clear after enable
	MuxSettleReads   int // *_SELECTED reads that still show the old source
	PLLLockReads     int // CS reads before LOCK once powered and programmed
	SysPLL           PLLTarget
	USBPLL           PLLTarget
	CyclesPerRead    uint32 // clk_ref cycles consumed by each TIMERAWL read
}

// DefaultOptions locks to 125 MHz / 48 MHz from a 12 MHz crystal and
// charges one microsecond of clk_ref per timer read.
func DefaultOptions() Options {
	return Options{
		XOSCStartupReads: 3,
		MuxSettleReads:   2,
		PLLLockReads:     4,
		SysPLL:           PLLTarget{125, 6, 2},
		USBPLL:           PLLTarget{100, 5, 5},
		CyclesPerRead:    12,
	}
}

// Store is one bus write as the chip saw it.
type Store struct {
	Addr   uint32 // Address on the bus, possibly an alias
	Reg    uint32 // Register it resolved to
	Op     regs.Op
	Value  uint32 // Value on the bus
	Result uint32 // Register contents afterwards
}

type mux struct {
	ctrl     uint32
	selected uint32
	pending  int
}

type pll struct {
	base   uint32
	resetB uint32
	target PLLTarget
	reads  int
}

// Chip is a simulated RP2040. The zero value is not usable; call New.
type Chip struct {
	opts Options

	mem    map[uint32]uint32
	reads  map[uint32]int
	stores []Store
	faults []uint32

	xoscReads int
	ref, sys  mux
	plls      [2]*pll

	tickAcc uint32
	timer   uint64
}

// New returns a chip in its power-on state.
func New(opts Options) *Chip {
	c := &Chip{
		opts:  opts,
		mem:   make(map[uint32]uint32),
		reads: make(map[uint32]int),
		plls: [2]*pll{
			{base: regs.PLLSysBase, resetB: regs.ResetPLLSys, target: opts.SysPLL},
			{base: regs.PLLUSBBase, resetB: regs.ResetPLLUSB, target: opts.USBPLL},
		},
	}
	c.mem[regs.ResetsReset] = regs.ResetAll
	c.ref = mux{ctrl: regs.ClkRefSrcROSC, selected: 1 << regs.ClkRefSrcROSC}
	c.sys = mux{ctrl: 0, selected: 1}
	c.mem[regs.ClkRefCtrl] = c.ref.ctrl
	c.mem[regs.ClkSysCtrl] = c.sys.ctrl
	c.mem[regs.WatchdogTick] = regs.WatchdogTickEnable
	c.mem[regs.TimerDbgPause] = regs.TimerDbgPauseDbg0 | regs.TimerDbgPauseDbg1
	for _, p := range c.plls {
		c.resetPLL(p)
	}
	c.resetPads()
	c.resetIOBank()
	return c
}

func (c *Chip) resetPLL(p *pll) {
	c.mem[p.base+regs.PLLCS] = 1
	c.mem[p.base+regs.PLLPwr] = regs.PLLPwrPD | regs.PLLPwrDSMPD | regs.PLLPwrPostDivPD | regs.PLLPwrVCOPD
	c.mem[p.base+regs.PLLFBDivInt] = 0
	c.mem[p.base+regs.PLLPrim] = 7<<regs.PLLPrimPostDiv1Pos | 7<<regs.PLLPrimPostDiv2Pos
	p.reads = 0
}

func (c *Chip) resetPads() {
	for pin := uint32(0); pin < regs.NumGPIO; pin++ {
		c.mem[regs.PadCtrl(pin)] = regs.PadResetValue
	}
}

func (c *Chip) resetIOBank() {
	for pin := uint32(0); pin < regs.NumGPIO; pin++ {
		c.mem[regs.GPIOCtrl(pin)] = regs.GPIOCtrlFuncSelNull
	}
}

// Load implements regs.Bus.
func (c *Chip) Load(addr uint32) uint32 {
	c.reads[addr]++
	switch addr {
	case regs.XOSCStatus:
		return c.xoscStatus()
	case regs.ClkRefSelected:
		return c.ref.read()
	case regs.ClkSysSelected:
		return c.sys.read()
	case regs.ResetsResetDone:
		return ^c.mem[regs.ResetsReset] & regs.ResetAll
	case regs.PLLSysBase + regs.PLLCS:
		return c.pllCS(c.plls[0])
	case regs.PLLUSBBase + regs.PLLCS:
		return c.pllCS(c.plls[1])
	case regs.WatchdogTick:
		v := c.mem[addr]
		if v&regs.WatchdogTickEnable != 0 {
			v |= regs.WatchdogTickRunning
		}
		return v
	case regs.TimerRawL:
		c.Advance(c.opts.CyclesPerRead)
		return uint32(c.timer)
	case regs.TimerRawH:
		return uint32(c.timer >> 32)
	}
	if _, ok := regs.Lookup(addr); !ok {
		c.faults = append(c.faults, addr)
	}
	return c.mem[addr]
}

// Store implements regs.Bus.
func (c *Chip) Store(addr, value uint32) {
	reg, op, ok := regs.Decode(addr)
	if !ok {
		c.faults = append(c.faults, addr)
		return
	}
	old := c.mem[reg]
	v := op.Apply(old, value)
	c.mem[reg] = v
	c.stores = append(c.stores, Store{Addr: addr, Reg: reg, Op: op, Value: value, Result: v})
	c.effect(reg, old, v)
}

// effect applies the hardware side effects of reg changing from old to v.
func (c *Chip) effect(reg, old, v uint32) {
	switch reg {
	case regs.XOSCCtrl:
		if v&regs.XOSCCtrlEnableMsk != old&regs.XOSCCtrlEnableMsk {
			c.xoscReads = 0
		}
	case regs.ClkRefCtrl:
		c.ref.write(v&regs.ClkRefSrcMsk, c.opts.MuxSettleReads)
	case regs.ClkSysCtrl:
		c.sys.write(v&regs.ClkSysSrc, c.opts.MuxSettleReads)
	case regs.ResetsReset:
		asserted := v &^ old
		for _, p := range c.plls {
			if asserted&p.resetB != 0 {
				c.resetPLL(p)
			}
		}
		if asserted&regs.ResetPadsBank0 != 0 {
			c.resetPads()
		}
		if asserted&regs.ResetIOBank0 != 0 {
			c.resetIOBank()
		}
		if asserted&regs.ResetTimer != 0 {
			c.timer, c.tickAcc = 0, 0
		}
	}
	for _, p := range c.plls {
		switch reg {
		case p.base + regs.PLLPwr, p.base + regs.PLLFBDivInt, p.base + regs.PLLPrim:
			p.reads = 0
		}
	}
}

func (m *mux) write(src uint32, settle int) {
	if src == m.ctrl {
		return
	}
	m.ctrl = src
	m.pending = settle
}

func (m *mux) read() uint32 {
	want := uint32(1) << m.ctrl
	if m.selected != want {
		if m.pending > 0 {
			m.pending--
			return m.selected
		}
		m.selected = want
	}
	return m.selected
}

func (c *Chip) xoscStatus() uint32 {
	if c.mem[regs.XOSCCtrl]&regs.XOSCCtrlEnableMsk != regs.XOSCCtrlEnable {
		return 0
	}
	if c.xoscReads < c.opts.XOSCStartupReads {
		c.xoscReads++
		return 0
	}
	return regs.XOSCStatusStable
}

func (c *Chip) xoscStable() bool {
	return c.mem[regs.XOSCCtrl]&regs.XOSCCtrlEnableMsk == regs.XOSCCtrlEnable &&
		c.xoscReads >= c.opts.XOSCStartupReads
}

func (c *Chip) pllCS(p *pll) uint32 {
	cs := c.mem[p.base+regs.PLLCS] &^ regs.PLLCSLock
	if c.mem[regs.ResetsReset]&p.resetB != 0 || !c.pllProgrammed(p) {
		return cs
	}
	if p.reads < c.opts.PLLLockReads {
		p.reads++
		return cs
	}
	return cs | regs.PLLCSLock
}

// pllProgrammed reports whether p is powered and holds its target dividers.
func (c *Chip) pllProgrammed(p *pll) bool {
	if c.mem[p.base+regs.PLLPwr]&(regs.PLLPwrPD|regs.PLLPwrVCOPD) != 0 {
		return false
	}
	got := c.PLL(p.base)
	return got == p.target
}

// PLL returns the divider triple currently programmed into the PLL at base.
func (c *Chip) PLL(base uint32) PLLTarget {
	prim := c.mem[base+regs.PLLPrim]
	return PLLTarget{
		FBDiv:    c.mem[base+regs.PLLFBDivInt] & regs.PLLFBDivMsk,
		PostDiv1: (prim & regs.PLLPrimPostDiv1Msk) >> regs.PLLPrimPostDiv1Pos,
		PostDiv2: (prim & regs.PLLPrimPostDiv2Msk) >> regs.PLLPrimPostDiv2Pos,
	}
}

// Locked reports whether the PLL at base currently shows LOCK, without
// counting as a status read.
func (c *Chip) Locked(base uint32) bool {
	for _, p := range c.plls {
		if p.base == base {
			return c.mem[regs.ResetsReset]&p.resetB == 0 && c.pllProgrammed(p) &&
				p.reads >= c.opts.PLLLockReads
		}
	}
	return false
}

// Advance runs clk_ref for cycles cycles. The TIMER ticks once per
// WATCHDOG_TICK.CYCLES cycles while the tick generator is enabled and the
// TIMER is out of reset.
func (c *Chip) Advance(cycles uint32) {
	tick := c.mem[regs.WatchdogTick]
	div := tick & regs.WatchdogTickCyclesMsk
	if tick&regs.WatchdogTickEnable == 0 || div == 0 || c.mem[regs.ResetsReset]&regs.ResetTimer != 0 {
		return
	}
	total := uint64(c.tickAcc) + uint64(cycles)
	c.timer += total / uint64(div)
	c.tickAcc = uint32(total % uint64(div))
}

// Peek returns a register's stored value without side effects.
func (c *Chip) Peek(addr uint32) uint32 { return c.mem[addr] }

// Poke sets a register's stored value without side effects or logging.
func (c *Chip) Poke(addr, value uint32) {
	c.mem[addr] = value
	switch addr {
	case regs.ClkRefCtrl:
		c.ref = mux{ctrl: value & regs.ClkRefSrcMsk, selected: 1 << (value & regs.ClkRefSrcMsk)}
	case regs.ClkSysCtrl:
		c.sys = mux{ctrl: value & regs.ClkSysSrc, selected: 1 << (value & regs.ClkSysSrc)}
	}
}

// Reads returns how many times addr has been loaded.
func (c *Chip) Reads(addr uint32) int { return c.reads[addr] }

// Stores returns every store seen so far, in order.
func (c *Chip) Stores() []Store { return c.stores }

// StoresTo returns the stores that resolved to register reg.
func (c *Chip) StoresTo(reg uint32) []Store {
	var out []Store
	for _, s := range c.stores {
		if s.Reg == reg {
			out = append(out, s)
		}
	}
	return out
}

// Faults returns addresses that were accessed but belong to no block.
func (c *Chip) Faults() []uint32 { return c.faults }

// Micros returns the TIMER count.
func (c *Chip) Micros() uint64 { return c.timer }

// SysClockHz derives clk_sys from the current mux and PLL state, given the
// crystal frequency. It returns 0 when clk_sys is not on a known source.
func (c *Chip) SysClockHz(xoscHz uint32) uint64 {
	if c.sys.selected == 1 {
		if c.ref.selected == 1<<regs.ClkRefSrcXOSC && c.xoscStable() {
			return uint64(xoscHz)
		}
		return 0
	}
	if c.mem[regs.ClkSysCtrl]&regs.ClkSysAuxSrcMsk != regs.ClkSysAuxSrcPLLSys<<regs.ClkSysAuxSrcPos {
		return 0
	}
	if !c.Locked(regs.PLLSysBase) {
		return 0
	}
	d := c.PLL(regs.PLLSysBase)
	if d.PostDiv1 == 0 || d.PostDiv2 == 0 {
		return 0
	}
	return uint64(xoscHz) * uint64(d.FBDiv) / uint64(d.PostDiv1*d.PostDiv2)
}
