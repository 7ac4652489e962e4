//go:build rp2040

package main

import (
	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"

	"picoblink/core"
)

var consoleUART *uartx.UART

// InitConsole initializes UART0 on GPIO0 (TX) and GPIO1 (RX) and routes
// core debug output to it. Baud rate: 115200
func InitConsole() {
	consoleUART = uartx.UART0

	err := consoleUART.Configure(uartx.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GPIO0,
		RX:       machine.GPIO1,
	})
	if err != nil {
		core.SetDebugEnabled(false)
		return
	}

	core.SetDebugWriter(consolePrintln)
	core.SetDebugEnabled(true)

	consolePrintln("=== picoblink console ===")
	consolePrintln("Baud: 115200, TX=GPIO0, RX=GPIO1")
}

func consolePrintln(s string) {
	consoleUART.Write([]byte(s))
	consoleUART.Write([]byte("\r\n"))
}
