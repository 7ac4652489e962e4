package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// StepEvent captures one bring-up transition for post-mortem analysis
type StepEvent struct {
	State uint8  // State entered
	Polls uint32 // Register reads spent waiting for the state's condition
	Clock uint32 // TIMER low word when recorded (0 before the tick runs)
}

const (
	TraceRingSize = 16 // Enough for one full bring-up
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	// Bring-up trace ring buffer, filled before any output device exists
	traceRing     [TraceRingSize]StepEvent
	traceRingHead uint8
	traceCount    uint8
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, stdout, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// RecordStep captures a bring-up transition in the ring buffer.
// It never blocks and never touches an output device.
func RecordStep(state uint8, polls int, clock uint32) {
	idx := traceRingHead
	traceRing[idx] = StepEvent{
		State: state,
		Polls: uint32(polls),
		Clock: clock,
	}
	traceRingHead = (idx + 1) % TraceRingSize
	if traceCount < TraceRingSize {
		traceCount++
	}
}

// ResetTrace empties the trace ring
func ResetTrace() {
	traceRing = [TraceRingSize]StepEvent{}
	traceRingHead = 0
	traceCount = 0
}

// Trace returns the recorded events, oldest first
func Trace() []StepEvent {
	out := make([]StepEvent, 0, traceCount)
	start := (traceRingHead + TraceRingSize - traceCount) % TraceRingSize
	for i := uint8(0); i < traceCount; i++ {
		out = append(out, traceRing[(start+i)%TraceRingSize])
	}
	return out
}

// DumpTrace outputs the trace ring through the debug writer.
// name maps a recorded state to a printable name.
func DumpTrace(name func(uint8) string) {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[BRINGUP] === Bring-up Trace ===")
	for _, evt := range Trace() {
		debugPrintln("[BRINGUP] " + name(evt.State) +
			" polls=" + Utoa(evt.Polls) +
			" clock=" + Utoa(evt.Clock))
	}
	debugPrintln("[BRINGUP] === End Trace ===")
}
