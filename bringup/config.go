package bringup

import "picoblink/regs"

// Board constants for a Raspberry Pi Pico.
const (
	XOSCHz = 12_000_000
	SysHz  = 125_000_000
	USBHz  = 48_000_000

	// LEDPin is the Pico's on-board LED.
	LEDPin = 25

	NumPins = regs.NumGPIO
)

// Config is the fixed target of the bring-up sequence.
type Config struct {
	XOSCHz uint32
	SysHz  uint32
	USBHz  uint32
	SysPLL PLLConfig
	USBPLL PLLConfig
	Pin    uint32

	// PollLimit bounds every wait in the sequence, in register reads.
	// Zero waits forever.
	PollLimit int
}

// DefaultConfig is 125 MHz clk_sys and 48 MHz USB PLL from a 12 MHz
// crystal, driving the LED pin, with unbounded waits.
func DefaultConfig() Config {
	return Config{
		XOSCHz: XOSCHz,
		SysHz:  SysHz,
		USBHz:  USBHz,
		SysPLL: SysPLL,
		USBPLL: USBPLL,
		Pin:    LEDPin,
	}
}

// Validate checks the divider arithmetic and the pin number.
func (c Config) Validate() error {
	if c.XOSCHz == 0 || c.XOSCHz%1_000_000 != 0 || c.tickCycles() > 0x1ff {
		return ErrRefFrequency
	}
	if err := c.SysPLL.Validate(c.XOSCHz, c.SysHz); err != nil {
		return &ConfigError{Field: "sys_pll", Err: err}
	}
	if err := c.USBPLL.Validate(c.XOSCHz, c.USBHz); err != nil {
		return &ConfigError{Field: "usb_pll", Err: err}
	}
	if c.Pin >= NumPins {
		return ErrPinOutOfRange
	}
	return nil
}

// tickCycles is the watchdog tick divider giving one tick per microsecond.
func (c Config) tickCycles() uint32 {
	return c.XOSCHz / 1_000_000
}

// xoscStartup is the XOSC_STARTUP delay for about 1ms, in units of 256
// crystal cycles, rounded up.
func (c Config) xoscStartup() uint32 {
	return (c.XOSCHz/1000 + 255) / 256
}

// ConfigError names the configuration field that failed validation.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string { return "bringup: " + e.Field + ": " + e.Err.Error() }

func (e *ConfigError) Unwrap() error { return e.Err }
