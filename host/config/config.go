// Package config loads JSON board profiles for the host tools.
// The firmware itself uses the compile-time constants in bringup.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"picoblink/blink"
	"picoblink/bringup"
	"picoblink/sim"
)

// PLL is one PLL's divider triple.
type PLL struct {
	FBDiv    uint32 `json:"fbdiv"`
	PostDiv1 uint32 `json:"postdiv1"`
	PostDiv2 uint32 `json:"postdiv2"`
}

// Sim holds simulator timing knobs. Nil fields take the simulator defaults.
type Sim struct {
	XOSCStartupReads *int   `json:"xosc_startup_reads,omitempty"`
	MuxSettleReads   *int   `json:"mux_settle_reads,omitempty"`
	PLLLockReads     *int   `json:"pll_lock_reads,omitempty"`
	CyclesPerRead    uint32 `json:"cycles_per_read,omitempty"`

	// Dividers the simulated PLLs lock to. Default: the board's own.
	SysPLL *PLL `json:"sys_pll,omitempty"`
	USBPLL *PLL `json:"usb_pll,omitempty"`
}

// Board is a board profile.
type Board struct {
	Name          string  `json:"name"`
	XOSCHz        uint32  `json:"xosc_hz"`
	SysHz         uint32  `json:"sys_hz"`
	USBHz         uint32  `json:"usb_hz"`
	SysPLL        *PLL    `json:"sys_pll,omitempty"`
	USBPLL        *PLL    `json:"usb_pll,omitempty"`
	Pin           *uint32 `json:"pin,omitempty"`
	PollLimit     int     `json:"poll_limit"`
	BlinkPeriodUS uint32  `json:"blink_period_us"`
	Sim           Sim     `json:"sim"`
}

// Load parses a JSON board profile, fills in defaults and validates the
// clock arithmetic.
func Load(jsonData []byte) (*Board, error) {
	var board Board

	if err := json.Unmarshal(jsonData, &board); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	// Apply defaults
	applyDefaults(&board)

	if err := board.Bringup().Validate(); err != nil {
		return nil, fmt.Errorf("config %q: %w", board.Name, err)
	}
	return &board, nil
}

// LoadFile reads and parses the board profile at path.
func LoadFile(path string) (*Board, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return Load(data)
}

// Default returns the Raspberry Pi Pico profile.
func Default() *Board {
	var board Board
	applyDefaults(&board)
	return &board
}

// applyDefaults fills in missing configuration values with the Pico's
func applyDefaults(board *Board) {
	if board.Name == "" {
		board.Name = "pico"
	}
	if board.XOSCHz == 0 {
		board.XOSCHz = bringup.XOSCHz
	}
	if board.SysHz == 0 {
		board.SysHz = bringup.SysHz
	}
	if board.USBHz == 0 {
		board.USBHz = bringup.USBHz
	}
	if board.SysPLL == nil {
		board.SysPLL = fromPLLConfig(bringup.SysPLL)
	}
	if board.USBPLL == nil {
		board.USBPLL = fromPLLConfig(bringup.USBPLL)
	}
	if board.Pin == nil {
		pin := uint32(bringup.LEDPin)
		board.Pin = &pin
	}
	if board.BlinkPeriodUS == 0 {
		board.BlinkPeriodUS = blink.DefaultPeriodUS
	}
	if board.Sim.SysPLL == nil {
		board.Sim.SysPLL = board.SysPLL
	}
	if board.Sim.USBPLL == nil {
		board.Sim.USBPLL = board.USBPLL
	}
}

func fromPLLConfig(c bringup.PLLConfig) *PLL {
	return &PLL{FBDiv: c.FBDiv, PostDiv1: c.PostDiv1, PostDiv2: c.PostDiv2}
}

func (p *PLL) pllConfig() bringup.PLLConfig {
	return bringup.PLLConfig{FBDiv: p.FBDiv, PostDiv1: p.PostDiv1, PostDiv2: p.PostDiv2}
}

func (p *PLL) simTarget() sim.PLLTarget {
	return sim.PLLTarget{FBDiv: p.FBDiv, PostDiv1: p.PostDiv1, PostDiv2: p.PostDiv2}
}

// Bringup returns the sequencer configuration for the board.
func (b *Board) Bringup() bringup.Config {
	return bringup.Config{
		XOSCHz:    b.XOSCHz,
		SysHz:     b.SysHz,
		USBHz:     b.USBHz,
		SysPLL:    b.SysPLL.pllConfig(),
		USBPLL:    b.USBPLL.pllConfig(),
		Pin:       *b.Pin,
		PollLimit: b.PollLimit,
	}
}

// SimOptions returns simulator options for the board.
func (b *Board) SimOptions() sim.Options {
	opts := sim.DefaultOptions()
	if v := b.Sim.XOSCStartupReads; v != nil {
		opts.XOSCStartupReads = *v
	}
	if v := b.Sim.MuxSettleReads; v != nil {
		opts.MuxSettleReads = *v
	}
	if v := b.Sim.PLLLockReads; v != nil {
		opts.PLLLockReads = *v
	}
	if b.Sim.CyclesPerRead != 0 {
		opts.CyclesPerRead = b.Sim.CyclesPerRead
	} else {
		// One microsecond of clk_ref per timer read.
		opts.CyclesPerRead = b.XOSCHz / 1_000_000
	}
	opts.SysPLL = b.Sim.SysPLL.simTarget()
	opts.USBPLL = b.Sim.USBPLL.simTarget()
	return opts
}
