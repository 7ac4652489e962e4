package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"picoblink/host/monitor"
	"picoblink/host/serial"
)

var monitorOpts struct {
	device string
	baud   int
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Follow a board's console and check the LED alternates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMonitor(monitorOpts.device, monitorOpts.baud, cmd.OutOrStdout())
	},
}

func init() {
	monitorCmd.Flags().StringVarP(&monitorOpts.device, "device", "d", "/dev/ttyUSB0", "serial device wired to UART0")
	monitorCmd.Flags().IntVar(&monitorOpts.baud, "baud", 115200, "console baud rate")
}

// runMonitor follows the console on device until interrupted or the LED
// sequence breaks.
func runMonitor(device string, baud int, w io.Writer) error {
	cfg := serial.DefaultConfig(device)
	cfg.Baud = baud
	port, err := serial.Open(cfg)
	if err != nil {
		return err
	}
	defer port.Close()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	defer signal.Stop(stop)
	go func() {
		<-stop
		port.Close()
	}()

	fmt.Fprintf(w, "Monitoring %s at %d baud...\n", device, baud)
	return monitor.Watch(port, func(ev monitor.Event) {
		fmt.Fprintf(w, "%-6s %s\n", ev.Kind, ev.Line)
	})
}
