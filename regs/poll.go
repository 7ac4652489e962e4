package regs

import "errors"

// ErrPollTimeout is returned by bounded waits that run out of reads.
var ErrPollTimeout = errors.New("poll limit exceeded")

// PollError reports which register a bounded wait gave up on.
type PollError struct {
	Addr  uint32
	Mask  uint32
	Want  uint32
	Last  uint32
	Reads int
}

func (e *PollError) Error() string {
	return "regs: " + Hex(e.Addr) + "&" + Hex(e.Mask) + " != " + Hex(e.Want) +
		" (last " + Hex(e.Last) + "): " + ErrPollTimeout.Error()
}

func (e *PollError) Unwrap() error { return ErrPollTimeout }

// WaitEqual spins until Read(addr)&mask == want and returns the number of
// reads it took. There is no timeout: a register that never matches hangs
// the caller.
func (h *Handle) WaitEqual(addr, mask, want uint32) int {
	n := 0
	for {
		n++
		if h.bus.Load(addr)&mask == want {
			return n
		}
	}
}

// WaitSet spins until every bit of mask is set in the register at addr.
func (h *Handle) WaitSet(addr, mask uint32) int {
	return h.WaitEqual(addr, mask, mask)
}

// WaitEqualBounded is WaitEqual with at most limit reads. On timeout it
// returns a *PollError wrapping ErrPollTimeout.
func (h *Handle) WaitEqualBounded(addr, mask, want uint32, limit int) (int, error) {
	var v uint32
	for n := 1; n <= limit; n++ {
		v = h.bus.Load(addr)
		if v&mask == want {
			return n, nil
		}
	}
	return limit, &PollError{Addr: addr, Mask: mask, Want: want, Last: v, Reads: limit}
}

// Wait picks WaitEqual when limit <= 0 and WaitEqualBounded otherwise.
func (h *Handle) Wait(addr, mask, want uint32, limit int) (int, error) {
	if limit <= 0 {
		return h.WaitEqual(addr, mask, want), nil
	}
	return h.WaitEqualBounded(addr, mask, want, limit)
}
