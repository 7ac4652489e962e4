package regs

// RP2040 peripheral base addresses (datasheet section 2.2).
const (
	ResetsBase    = 0x4000c000
	ClocksBase    = 0x40008000
	IOBank0Base   = 0x40014000
	PadsBank0Base = 0x4001c000
	XOSCBase      = 0x40024000
	PLLSysBase    = 0x40028000
	PLLUSBBase    = 0x4002c000
	TimerBase     = 0x40054000
	WatchdogBase  = 0x40058000
	SIOBase       = 0xd0000000
)

// RESETS
const (
	ResetsReset     = ResetsBase + 0x00
	ResetsWDSel     = ResetsBase + 0x04
	ResetsResetDone = ResetsBase + 0x08

	ResetIOBank0   = 1 << 5
	ResetPadsBank0 = 1 << 8
	ResetPLLSys    = 1 << 12
	ResetPLLUSB    = 1 << 13
	ResetTimer     = 1 << 21

	// ResetAll covers every block bit in RESET (bits 0-24).
	ResetAll = 0x01ffffff
)

// XOSC
const (
	XOSCCtrl    = XOSCBase + 0x00
	XOSCStatus  = XOSCBase + 0x04
	XOSCDormant = XOSCBase + 0x08
	XOSCStartup = XOSCBase + 0x0c
	XOSCCount   = XOSCBase + 0x1c

	XOSCCtrlFreqRange1_15MHz = 0xaa0
	XOSCCtrlFreqRangeMsk     = 0xfff
	XOSCCtrlEnablePos        = 12
	XOSCCtrlEnableMsk        = 0xfff << XOSCCtrlEnablePos
	XOSCCtrlEnable           = 0xfab << XOSCCtrlEnablePos
	XOSCCtrlDisable          = 0xd1e << XOSCCtrlEnablePos

	XOSCStatusStable = 1 << 31

	XOSCStartupDelayMsk = 0x3fff
)

// CLOCKS
const (
	ClkRefCtrl     = ClocksBase + 0x30
	ClkRefDiv      = ClocksBase + 0x34
	ClkRefSelected = ClocksBase + 0x38
	ClkSysCtrl     = ClocksBase + 0x3c
	ClkSysDiv      = ClocksBase + 0x40
	ClkSysSelected = ClocksBase + 0x44
	ClkPeriCtrl    = ClocksBase + 0x48
	ClkPeriSel     = ClocksBase + 0x50
	ClkSysResusCtl = ClocksBase + 0x78

	// CLK_REF_CTRL.SRC
	ClkRefSrcMsk  = 0x3
	ClkRefSrcROSC = 0
	ClkRefSrcAux  = 1
	ClkRefSrcXOSC = 2

	// CLK_SYS_CTRL
	ClkSysSrc          = 1 << 0 // 0 = clk_ref, 1 = aux mux
	ClkSysAuxSrcPos    = 5
	ClkSysAuxSrcMsk    = 0x7 << ClkSysAuxSrcPos
	ClkSysAuxSrcPLLSys = 0
	ClkSysAuxSrcPLLUSB = 1

	// CLK_PERI_CTRL
	ClkPeriEnable       = 1 << 11
	ClkPeriAuxSrcPos    = 5
	ClkPeriAuxSrcMsk    = 0x7 << ClkPeriAuxSrcPos
	ClkPeriAuxSrcClkSys = 0
)

// PLL register offsets, relative to PLLSysBase or PLLUSBBase.
const (
	PLLCS       = 0x00
	PLLPwr      = 0x04
	PLLFBDivInt = 0x08
	PLLPrim     = 0x0c

	PLLCSLock      = 1 << 31
	PLLCSRefDivMsk = 0x3f

	PLLPwrPD        = 1 << 0
	PLLPwrDSMPD     = 1 << 2
	PLLPwrPostDivPD = 1 << 3
	PLLPwrVCOPD     = 1 << 5

	PLLFBDivMsk = 0xfff

	PLLPrimPostDiv1Pos = 16
	PLLPrimPostDiv1Msk = 0x7 << PLLPrimPostDiv1Pos
	PLLPrimPostDiv2Pos = 12
	PLLPrimPostDiv2Msk = 0x7 << PLLPrimPostDiv2Pos
)

// WATCHDOG
const (
	WatchdogCtrl = WatchdogBase + 0x00
	WatchdogTick = WatchdogBase + 0x2c

	WatchdogTickCyclesMsk = 0x1ff
	WatchdogTickEnable    = 1 << 9
	WatchdogTickRunning   = 1 << 10
)

// TIMER
const (
	TimerRawH     = TimerBase + 0x24
	TimerRawL     = TimerBase + 0x28
	TimerDbgPause = TimerBase + 0x2c

	TimerDbgPauseDbg0 = 1 << 1
	TimerDbgPauseDbg1 = 1 << 2
)

// PADS_BANK0
const (
	PadsVoltageSelect = PadsBank0Base + 0x00

	PadSlewFast = 1 << 0
	PadSchmitt  = 1 << 1
	PadPDE      = 1 << 2
	PadPUE      = 1 << 3
	PadDriveMsk = 0x3 << 4
	PadIE       = 1 << 6
	PadOD       = 1 << 7

	// PadResetValue is GPIOn after a pads_bank0 reset: IE, 4mA, PDE, SCHMITT.
	PadResetValue = 0x56
)

// IO_BANK0
const (
	GPIOCtrlFuncSelMsk  = 0x1f
	GPIOCtrlFuncSelSIO  = 5
	GPIOCtrlFuncSelNull = 0x1f
)

// SIO
const (
	SIOGPIOIn     = SIOBase + 0x004
	SIOGPIOOut    = SIOBase + 0x010
	SIOGPIOOutSet = SIOBase + 0x014
	SIOGPIOOutClr = SIOBase + 0x018
	SIOGPIOOutXor = SIOBase + 0x01c
	SIOGPIOOE     = SIOBase + 0x020
	SIOGPIOOESet  = SIOBase + 0x024
	SIOGPIOOEClr  = SIOBase + 0x028
	SIOGPIOOEXor  = SIOBase + 0x02c
)

// NumGPIO is the number of user GPIOs in bank 0.
const NumGPIO = 30

// PadCtrl returns the PADS_BANK0 GPIOn register address.
func PadCtrl(pin uint32) uint32 {
	return PadsBank0Base + 4 + pin*4
}

// GPIOStatus returns the IO_BANK0 GPIOn_STATUS register address.
func GPIOStatus(pin uint32) uint32 {
	return IOBank0Base + pin*8
}

// GPIOCtrl returns the IO_BANK0 GPIOn_CTRL register address.
func GPIOCtrl(pin uint32) uint32 {
	return IOBank0Base + pin*8 + 4
}
