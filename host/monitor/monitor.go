// Package monitor follows the firmware console and checks that the LED
// alternates on and off with a counter that never skips.
package monitor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Kind classifies one console line.
type Kind int

const (
	KindOther Kind = iota
	KindOn
	KindOff
	KindTrace
	KindReady
)

func (k Kind) String() string {
	switch k {
	case KindOn:
		return "on"
	case KindOff:
		return "off"
	case KindTrace:
		return "trace"
	case KindReady:
		return "ready"
	}
	return "other"
}

// Event is a parsed console line.
type Event struct {
	Kind  Kind
	Count uint32 // cycle number of an "LED on" line
	Line  string
}

var (
	ErrRepeatedOn   = errors.New("LED on twice without off")
	ErrRepeatedOff  = errors.New("LED off twice without on")
	ErrCountSkipped = errors.New("LED cycle counter skipped")
)

const (
	onPrefix    = "LED on "
	offLine     = "LED off"
	tracePrefix = "[BRINGUP] "
	readyMarker = "[BRINGUP] PIN_READY"
)

// Parse classifies a single line. Trailing CR/LF is ignored.
func Parse(line string) Event {
	line = strings.TrimRight(line, "\r\n")
	ev := Event{Line: line}
	switch {
	case strings.HasPrefix(line, onPrefix):
		n, err := strconv.ParseUint(line[len(onPrefix):], 10, 32)
		if err != nil {
			return ev
		}
		ev.Kind = KindOn
		ev.Count = uint32(n)
	case line == offLine:
		ev.Kind = KindOff
	case strings.HasPrefix(line, readyMarker):
		ev.Kind = KindReady
	case strings.HasPrefix(line, tracePrefix):
		ev.Kind = KindTrace
	}
	return ev
}

// Checker validates a stream of events. The zero value is ready to use and
// accepts attaching in the middle of a run: offs before the first on are
// ignored and the first on sets the counter.
type Checker struct {
	started bool
	last    Kind
	next    uint32

	Ons  int
	Offs int
}

// Feed parses line, checks it against the stream so far and returns the
// parsed event.
func (c *Checker) Feed(line string) (Event, error) {
	ev := Parse(line)
	switch ev.Kind {
	case KindReady:
		// A reset restarts the counter.
		c.started = false
	case KindOn:
		if c.started {
			if c.last == KindOn {
				return ev, ErrRepeatedOn
			}
			if ev.Count != c.next {
				return ev, fmt.Errorf("%w: expected %d, got %d", ErrCountSkipped, c.next, ev.Count)
			}
		}
		c.started = true
		c.last = KindOn
		c.next = ev.Count + 1
		c.Ons++
	case KindOff:
		if !c.started {
			break
		}
		if c.last == KindOff {
			return ev, ErrRepeatedOff
		}
		c.last = KindOff
		c.Offs++
	}
	return ev, nil
}

// Watch reads lines from r until EOF or the first violation, calling fn
// (if not nil) for every line.
func Watch(r io.Reader, fn func(Event)) error {
	var c Checker
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		ev, err := c.Feed(scanner.Text())
		if fn != nil {
			fn(ev)
		}
		if err != nil {
			return fmt.Errorf("line %d %q: %w", lineNo, ev.Line, err)
		}
	}
	return scanner.Err()
}
