package check

import "github.com/optimode/emailprobe/types"

// TraceKind identifies what happened during resolution or probing.
type TraceKind string

const (
	TraceLookup  TraceKind = "lookup"
	TraceSkip    TraceKind = "skip"
	TraceDial    TraceKind = "dial"
	TraceRecv    TraceKind = "recv"
	TraceSend    TraceKind = "send"
	TraceVerdict TraceKind = "verdict"
)

// TraceEvent is a single observation. Only the fields relevant to Kind are set.
type TraceEvent struct {
	Kind    TraceKind
	Host    string
	Line    string
	Verdict types.Tristate
	Reason  string
	Err     error
}

// Tracer receives events from the resolver and the probe. Implementations
// must be safe for concurrent use when shared between probes.
type Tracer interface {
	Trace(TraceEvent)
}

// TracerFunc adapts a function to the Tracer interface.
type TracerFunc func(TraceEvent)

func (f TracerFunc) Trace(e TraceEvent) { f(e) }

type nopTracer struct{}

func (nopTracer) Trace(TraceEvent) {}

func orNop(t Tracer) Tracer {
	if t == nil {
		return nopTracer{}
	}
	return t
}
