//go:build rp2040

package main

import (
	"machine"

	"picoblink/blink"
	"picoblink/bringup"
	"picoblink/core"
	"picoblink/regs"
)

func main() {
	// Disable watchdog on boot to clear any previous state
	if err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0}); err != nil {
		halt()
	}

	h := regs.Hardware()

	// Nothing can be printed yet: the steps are kept in the trace ring and
	// dumped once the console exists.
	seq := bringup.New(h, bringup.DefaultConfig())
	err := seq.Run()

	// The bank resets in the last step clear any pin mux set before it, so
	// the console comes up only now.
	InitConsole()
	core.DumpTrace(bringup.StateName)
	if err != nil {
		core.DebugPrintln("[BRINGUP] FAILED in " + seq.State().String() + ": " + err.Error())
		halt()
	}

	led, err := blink.New(h, bringup.LEDPin, blink.DefaultPeriodUS)
	if err != nil {
		core.DebugPrintln("[BLINK] " + err.Error())
		halt()
	}
	led.Run()
}

func halt() {
	for {
	}
}
