package config

import (
	"errors"
	"testing"

	"picoblink/bringup"
)

func TestLoadAppliesDefaults(t *testing.T) {
	board, err := Load([]byte(`{}`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if board.Name != "pico" {
		t.Errorf("Expected name pico, got %q", board.Name)
	}
	if got := board.Bringup(); got != bringup.DefaultConfig() {
		t.Errorf("Expected default bring-up config, got %+v", got)
	}
	if board.BlinkPeriodUS != 1_000_000 {
		t.Errorf("Expected 1s blink period, got %d", board.BlinkPeriodUS)
	}
	opts := board.SimOptions()
	if opts.SysPLL.FBDiv != 125 || opts.CyclesPerRead != 12 {
		t.Errorf("Unexpected sim options: %+v", opts)
	}
}

func TestLoadOverrides(t *testing.T) {
	board, err := Load([]byte(`{
		"name": "custom",
		"sys_pll": {"fbdiv": 125, "postdiv1": 4, "postdiv2": 3},
		"pin": 0,
		"poll_limit": 5000,
		"sim": {"xosc_startup_reads": 0, "sys_pll": {"fbdiv": 125, "postdiv1": 6, "postdiv2": 2}}
	}`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cfg := board.Bringup()
	if cfg.Pin != 0 || cfg.PollLimit != 5000 || cfg.SysPLL != (bringup.PLLConfig{FBDiv: 125, PostDiv1: 4, PostDiv2: 3}) {
		t.Errorf("Unexpected bring-up config: %+v", cfg)
	}
	opts := board.SimOptions()
	if opts.XOSCStartupReads != 0 {
		t.Errorf("Expected explicit zero startup reads, got %d", opts.XOSCStartupReads)
	}
	if opts.SysPLL.PostDiv1 != 6 || opts.USBPLL.FBDiv != 100 {
		t.Errorf("Unexpected sim PLL targets: %+v / %+v", opts.SysPLL, opts.USBPLL)
	}
}

func TestLoadRejectsBadDividers(t *testing.T) {
	_, err := Load([]byte(`{"sys_hz": 133000000}`))
	if !errors.Is(err, bringup.ErrFreqMismatch) {
		t.Errorf("Expected ErrFreqMismatch, got %v", err)
	}
	if _, err := Load([]byte(`{"pin": 40}`)); !errors.Is(err, bringup.ErrPinOutOfRange) {
		t.Errorf("Expected ErrPinOutOfRange, got %v", err)
	}
	if _, err := Load([]byte(`{`)); err == nil {
		t.Errorf("Expected a JSON error")
	}
}
