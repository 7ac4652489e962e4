package regs

// Op is the operation a store performs on its target register.
type Op uint8

const (
	OpWrite Op = iota
	OpXor
	OpSet
	OpClear
)

func (op Op) String() string {
	switch op {
	case OpWrite:
		return "write"
	case OpXor:
		return "xor"
	case OpSet:
		return "set"
	case OpClear:
		return "clear"
	}
	return "op?"
}

// Apply returns the register value produced by storing v with op over old.
func (op Op) Apply(old, v uint32) uint32 {
	switch op {
	case OpXor:
		return old ^ v
	case OpSet:
		return old | v
	case OpClear:
		return old &^ v
	}
	return v
}

type aliasKind uint8

const (
	// APB and AHB-lite peripherals mirror their registers at +0x1000 (XOR),
	// +0x2000 (SET) and +0x3000 (CLR).
	aliasWindow aliasKind = iota
	// SIO has no alias windows; GPIO_OUT and GPIO_OE have SET/CLR/XOR
	// companions at +0x4/+0x8/+0xc instead.
	aliasCompanion
)

// Block describes one peripheral in the address map.
type Block struct {
	Name string
	Base uint32
	kind aliasKind
}

const (
	windowSpan    = 0x4000
	windowRegSpan = 0x1000
	sioSpan       = 0x180
)

var blocks = [...]Block{
	{"clocks", ClocksBase, aliasWindow},
	{"resets", ResetsBase, aliasWindow},
	{"io_bank0", IOBank0Base, aliasWindow},
	{"pads_bank0", PadsBank0Base, aliasWindow},
	{"xosc", XOSCBase, aliasWindow},
	{"pll_sys", PLLSysBase, aliasWindow},
	{"pll_usb", PLLUSBBase, aliasWindow},
	{"timer", TimerBase, aliasWindow},
	{"watchdog", WatchdogBase, aliasWindow},
	{"sio", SIOBase, aliasCompanion},
}

// Lookup returns the peripheral block containing addr, including its
// alias windows.
func Lookup(addr uint32) (Block, bool) {
	for _, b := range blocks {
		span := uint32(windowSpan)
		if b.kind == aliasCompanion {
			span = sioSpan
		}
		if addr >= b.Base && addr-b.Base < span {
			return b, true
		}
	}
	return Block{}, false
}

// sioCompanionBase reports whether off is inside the GPIO_OUT or GPIO_OE
// group and returns the group's base offset.
func sioCompanionBase(off uint32) (uint32, bool) {
	switch {
	case off >= 0x10 && off < 0x20:
		return 0x10, true
	case off >= 0x20 && off < 0x30:
		return 0x20, true
	}
	return 0, false
}

// Decode resolves a bus address to the register it targets and the
// operation a store to it performs. ok is false for unmapped addresses.
func Decode(addr uint32) (reg uint32, op Op, ok bool) {
	b, ok := Lookup(addr)
	if !ok {
		return 0, OpWrite, false
	}
	off := addr - b.Base
	if b.kind == aliasCompanion {
		if base, ok := sioCompanionBase(off); ok {
			switch off - base {
			case 0x4:
				return b.Base + base, OpSet, true
			case 0x8:
				return b.Base + base, OpClear, true
			case 0xc:
				return b.Base + base, OpXor, true
			}
			return b.Base + base, OpWrite, true
		}
		return addr, OpWrite, true
	}
	switch off / windowRegSpan {
	case 1:
		op = OpXor
	case 2:
		op = OpSet
	case 3:
		op = OpClear
	}
	return b.Base + off%windowRegSpan, op, true
}

// AliasFor returns the address that performs op on the register at addr.
// addr must be a plain register address; ok is false when the register has
// no hardware atomic for op.
func AliasFor(addr uint32, op Op) (uint32, bool) {
	reg, cur, ok := Decode(addr)
	if !ok || cur != OpWrite || reg != addr {
		return 0, false
	}
	if op == OpWrite {
		return addr, true
	}
	b, _ := Lookup(addr)
	if b.kind == aliasCompanion {
		if base, ok := sioCompanionBase(addr - b.Base); !ok || addr-b.Base != base {
			return 0, false
		}
		switch op {
		case OpSet:
			return addr + 0x4, true
		case OpClear:
			return addr + 0x8, true
		case OpXor:
			return addr + 0xc, true
		}
		return 0, false
	}
	switch op {
	case OpXor:
		return addr + 0x1000, true
	case OpSet:
		return addr + 0x2000, true
	case OpClear:
		return addr + 0x3000, true
	}
	return 0, false
}
