// Package regs is the only place that touches RP2040 memory-mapped
// registers. Everything above it goes through a *Handle.
package regs

// Bus is a flat 32-bit register address space.
//
// Implementations must perform every Load and Store in program order and
// must never cache or merge them: reads can have side effects and values
// change underneath the program.
type Bus interface {
	Load(addr uint32) uint32
	Store(addr, value uint32)
}

// Handle is the register capability handed to the bring-up sequencer and
// the blink loop. Only one exists per program on real hardware (see
// Hardware); tests create as many as they like over simulated buses.
type Handle struct {
	bus Bus
}

// New wraps bus in a Handle.
func New(bus Bus) *Handle {
	if bus == nil {
		panic("regs: nil bus")
	}
	return &Handle{bus: bus}
}

// Read returns the current value of the register at addr.
func (h *Handle) Read(addr uint32) uint32 {
	return h.bus.Load(addr)
}

// Write replaces the register at addr with value.
func (h *Handle) Write(addr, value uint32) {
	h.bus.Store(addr, value)
}

// SetBits performs *addr |= mask without reading the register.
func (h *Handle) SetBits(addr, mask uint32) {
	a, ok := AliasFor(addr, OpSet)
	if !ok {
		panic("regs: no atomic set for " + Hex(addr))
	}
	h.bus.Store(a, mask)
}

// ClearBits performs *addr &^= mask without reading the register.
func (h *Handle) ClearBits(addr, mask uint32) {
	a, ok := AliasFor(addr, OpClear)
	if !ok {
		panic("regs: no atomic clear for " + Hex(addr))
	}
	h.bus.Store(a, mask)
}

// Hex formats v as 0x%08x.
func Hex(v uint32) string {
	const digits = "0123456789abcdef"
	var buf [10]byte
	buf[0] = '0'
	buf[1] = 'x'
	for i := 9; i >= 2; i-- {
		buf[i] = digits[v&0xf]
		v >>= 4
	}
	return string(buf[:])
}
