// Package tracing provides the estimator's trace sink: a level-gated
// writer in the teacher's Trace/Tracet shape, reworked from a
// package-level global into a value owned by the caller, and tagged
// with a per-run session UUID so ground support can correlate trace
// lines with the matching telemetry stream.
package tracing

import (
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"
)

// Sink is a level-gated trace writer. Level 0 is always printed;
// higher levels are gated by the configured verbosity, mirroring the
// teacher's Trace(level, format, args...) convention.
type Sink struct {
	logger    *log.Logger
	level     int
	sessionID uuid.UUID
}

// NewSink opens a sink writing to w at the given verbosity level.
// --trace, --trace-physics, --trace-ltp in cmd/ each map to a Sink at
// an increasing numeric level.
func NewSink(w io.Writer, level int) *Sink {
	return &Sink{
		logger:    log.New(w, "", log.Ltime|log.Lmicroseconds),
		level:     level,
		sessionID: uuid.New(),
	}
}

// SessionID is the UUID tagging every trace line and telemetry point
// for this run.
func (s *Sink) SessionID() uuid.UUID { return s.sessionID }

// Trace writes a formatted line if level is within the sink's
// configured verbosity.
func (s *Sink) Trace(level int, format string, v ...interface{}) {
	if level > s.level {
		return
	}
	s.logger.Printf("[%s] %d %s", s.sessionID, level, fmt.Sprintf(format, v...))
}

// Vec3Like is the minimal shape TraceLine needs from a centroid
// vector, avoiding a dependency on internal/geo from this package.
type Vec3Like struct {
	X, Y, Z float64
}

// TraceLine emits the compact one-line-per-tick textual summary
// grounded on the original flight computer's print_rocket: position,
// velocity, phase, and ESS.
func (s *Sink) TraceLine(pos, vel Vec3Like, phaseName string, ess float64) {
	s.Trace(1, "pos=(%.2f,%.2f,%.2f) vel=(%.2f,%.2f,%.2f) phase=%s ess=%.1f\n",
		pos.X, pos.Y, pos.Z, vel.X, vel.Y, vel.Z, phaseName, ess)
}
