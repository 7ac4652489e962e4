package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"picoblink/blink"
	"picoblink/bringup"
	"picoblink/core"
	"picoblink/host/config"
	"picoblink/host/monitor"
	"picoblink/regs"
	"picoblink/sim"
)

var simOpts struct {
	cycles    int
	pollLimit int
}

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Run bring-up and the blink loop against the register simulator",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		board, err := loadBoard()
		if err != nil {
			return err
		}
		if board.PollLimit == 0 {
			board.PollLimit = simOpts.pollLimit
		}
		return runSim(board, simOpts.cycles, verbose, cmd.OutOrStdout())
	},
}

func init() {
	simCmd.Flags().IntVarP(&simOpts.cycles, "cycles", "n", 2, "blink cycles to simulate")
	simCmd.Flags().IntVar(&simOpts.pollLimit, "poll-limit", 1000000, "bound on every wait when the profile sets none")
}

// runSim brings up a simulated chip, dumps the trace, then blinks for n
// cycles, checking the console output with the same checker the monitor uses.
func runSim(board *config.Board, n int, verbose bool, w io.Writer) error {
	chip := sim.New(board.SimOptions())
	h := regs.New(chip)

	var checker monitor.Checker
	var checkErr error
	core.SetDebugWriter(func(s string) {
		fmt.Fprintln(w, s)
		if _, err := checker.Feed(s); err != nil && checkErr == nil {
			checkErr = err
		}
	})
	core.ResetTrace()
	core.SetDebugEnabled(verbose)
	defer func() {
		core.SetDebugEnabled(false)
		core.SetDebugWriter(func(string) {})
	}()

	fmt.Fprintf(w, "Board %s: xosc %d Hz -> clk_sys %d Hz, LED on GPIO%d\n",
		board.Name, board.XOSCHz, board.SysHz, *board.Pin)

	seq := bringup.New(h, board.Bringup())
	err := seq.Run()
	core.DumpTrace(bringup.StateName)
	if err != nil {
		return fmt.Errorf("bring-up stopped in %s: %w", seq.State(), err)
	}
	fmt.Fprintf(w, "clk_sys = %d Hz\n", chip.SysClockHz(board.XOSCHz))

	b, err := blink.New(h, *board.Pin, board.BlinkPeriodUS)
	if err != nil {
		return err
	}
	core.SetDebugEnabled(true)
	for i := 0; i < n; i++ {
		b.Cycle()
	}
	if checkErr != nil {
		return fmt.Errorf("console check: %w", checkErr)
	}
	fmt.Fprintf(w, "%d cycles, %d us simulated, %d faults\n", b.Cycles(), chip.Micros(), len(chip.Faults()))
	if f := chip.Faults(); len(f) != 0 {
		return fmt.Errorf("%d accesses to unmapped addresses, first %s", len(f), regs.Hex(f[0]))
	}
	return nil
}
