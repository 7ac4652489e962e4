package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"picoblink/host/config"
)

var (
	boardFile string
	verbose   bool

	rootCmd = &cobra.Command{
		Use:           "picoblink-host",
		Short:         "Host tooling for the picoblink RP2040 firmware",
		Long:          "Run the bring-up sequence against the register simulator, or follow a board's console and check the LED alternates.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&boardFile, "board", "b", "", "board profile (JSON); default is the Raspberry Pi Pico")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print each bring-up step as it happens")
	rootCmd.AddCommand(simCmd, monitorCmd)
}

// loadBoard returns the profile named by --board, or the Pico defaults.
func loadBoard() (*config.Board, error) {
	if boardFile == "" {
		return config.Default(), nil
	}
	return config.LoadFile(boardFile)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
