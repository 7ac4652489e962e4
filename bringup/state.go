package bringup

import "picoblink/core"

// State is the hardware state the sequence has established so far.
type State uint8

const (
	Unconfigured State = iota
	XOSCReady
	RefClkSelected
	SysClkOnRef
	PLLsReset
	PLLsProgrammed
	PLLsLocked
	SysClkOnPLL
	PeriClkStable
	WatchdogTickConfigured
	PinReady

	// Ready is the terminal state.
	Ready = PinReady
)

var stateNames = [...]string{
	Unconfigured:           "UNCONFIGURED",
	XOSCReady:              "XOSC_READY",
	RefClkSelected:         "REF_CLK_SELECTED",
	SysClkOnRef:            "SYS_CLK_ON_REF",
	PLLsReset:              "PLLS_RESET",
	PLLsProgrammed:         "PLLS_PROGRAMMED",
	PLLsLocked:             "PLLS_LOCKED",
	SysClkOnPLL:            "SYS_CLK_ON_PLL",
	PeriClkStable:          "PERIPH_CLK_STABLE",
	WatchdogTickConfigured: "WATCHDOG_TICK_CONFIGURED",
	PinReady:               "PIN_READY",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "STATE(" + core.Utoa(uint32(s)) + ")"
}

// StateName is State.String for a raw trace byte.
func StateName(s uint8) string {
	return State(s).String()
}
