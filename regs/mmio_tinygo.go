//go:build tinygo

package regs

import (
	"runtime/volatile"
	"unsafe"
)

// MMIO is the chip's own address space. Every access is a volatile load or
// store of the 32-bit word at the given address.
type MMIO struct{}

func (MMIO) Load(addr uint32) uint32 {
	return (*volatile.Register32)(unsafe.Pointer(uintptr(addr))).Get()
}

func (MMIO) Store(addr, value uint32) {
	(*volatile.Register32)(unsafe.Pointer(uintptr(addr))).Set(value)
}

var claimed bool

// Hardware returns the register handle for the running chip. It may be
// called once; a second call panics so that two owners of the peripherals
// cannot coexist unnoticed.
func Hardware() *Handle {
	if claimed {
		panic("regs: register handle already claimed")
	}
	claimed = true
	return New(MMIO{})
}
