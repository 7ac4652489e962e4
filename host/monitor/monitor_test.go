package monitor

import (
	"errors"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	cases := []struct {
		line  string
		kind  Kind
		count uint32
	}{
		{"LED on 0", KindOn, 0},
		{"LED on 41\r", KindOn, 41},
		{"LED off", KindOff, 0},
		{"LED off\r\n", KindOff, 0},
		{"LED on x", KindOther, 0},
		{"[BRINGUP] XOSC_READY polls=4", KindTrace, 0},
		{"[BRINGUP] PIN_READY polls=2", KindReady, 0},
		{"hello", KindOther, 0},
	}
	for _, tc := range cases {
		ev := Parse(tc.line)
		if ev.Kind != tc.kind || ev.Count != tc.count {
			t.Errorf("Parse(%q) = %s/%d, expected %s/%d", tc.line, ev.Kind, ev.Count, tc.kind, tc.count)
		}
	}
}

func TestWatchAcceptsAlternation(t *testing.T) {
	input := strings.Join([]string{
		"[BRINGUP] XOSC_READY polls=4",
		"[BRINGUP] PIN_READY polls=2",
		"LED on 0", "LED off",
		"LED on 1", "LED off",
		"LED on 2",
	}, "\r\n")

	var kinds []Kind
	if err := Watch(strings.NewReader(input), func(ev Event) { kinds = append(kinds, ev.Kind) }); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	if len(kinds) != 7 || kinds[0] != KindTrace || kinds[1] != KindReady || kinds[6] != KindOn {
		t.Errorf("Unexpected events: %v", kinds)
	}
}

func TestCheckerAttachMidRun(t *testing.T) {
	var c Checker
	for _, line := range []string{"LED off", "LED on 17", "LED off", "LED on 18"} {
		if _, err := c.Feed(line); err != nil {
			t.Fatalf("Feed(%q): %v", line, err)
		}
	}
	if c.Ons != 2 || c.Offs != 1 {
		t.Errorf("Expected 2 ons and 1 off, got %d/%d", c.Ons, c.Offs)
	}
}

func TestCheckerViolations(t *testing.T) {
	cases := []struct {
		name  string
		lines []string
		err   error
	}{
		{"double on", []string{"LED on 0", "LED on 1"}, ErrRepeatedOn},
		{"double off", []string{"LED on 0", "LED off", "LED off"}, ErrRepeatedOff},
		{"skipped", []string{"LED on 0", "LED off", "LED on 2"}, ErrCountSkipped},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Watch(strings.NewReader(strings.Join(tc.lines, "\n")), nil)
			if !errors.Is(err, tc.err) {
				t.Errorf("Expected %v, got %v", tc.err, err)
			}
		})
	}
}

func TestCheckerRestartsAfterReset(t *testing.T) {
	var c Checker
	lines := []string{"LED on 5", "[BRINGUP] PIN_READY polls=2", "LED on 0", "LED off"}
	for _, line := range lines {
		if _, err := c.Feed(line); err != nil {
			t.Fatalf("Feed(%q): %v", line, err)
		}
	}
}
