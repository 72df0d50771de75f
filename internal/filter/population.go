// Package filter implements the bootstrap particle filter: a
// fixed-size, log-space-weighted population of rocket_state
// hypotheses, predicted through the rigid-body propagator and
// weighted against sensor likelihoods.
package filter

import (
	"math"

	"github.com/psas/rocketnav/internal/dynamics"
	"github.com/psas/rocketnav/internal/geo"
)

// Particle is one weighted hypothesis. Weight is stored in log-space
// (log-posterior up to a shift absorbed during Normalize) to avoid
// underflow across many sensor fusions between resamplings.
type Particle struct {
	Weight float64
	State  dynamics.RocketState
}

// RNG is the process-wide pseudo-random source the filter draws
// process noise and resampling offsets from. Its lifecycle (seeding,
// teardown) belongs to the harness; the filter assumes an
// already-initialized source.
type RNG interface {
	// Uniform returns a sample in [0, 1).
	Uniform() float64
	// Gaussian returns a sample from N(0, sigma^2).
	Gaussian(sigma float64) float64
}

// Population is a fixed-size ordered sequence of N particles, held in
// two owned ping-pong buffers so resampling never allocates. The
// designation of which buffer is "current" flips after each resample.
type Population struct {
	buf      [2][]Particle
	which    int
	n        int
	sinceResample float64
}

// New allocates a population of n particles. Both buffers are
// process-lifetime allocations; nothing in the steady-state loop
// allocates again.
func New(n int) *Population {
	return &Population{
		buf: [2][]Particle{make([]Particle, n), make([]Particle, n)},
		n:   n,
	}
}

// N is the (constant) particle count.
func (p *Population) N() int { return p.n }

// Current returns the live particle slice. Callers may read and
// write particle fields in place but must not change its length.
func (p *Population) Current() []Particle { return p.buf[p.which] }

func (p *Population) scratch() []Particle { return p.buf[1-p.which] }

// Init seeds all N particles with identical position = ECEF(origin),
// an ECEF->body rotation equal to the LTP rotation at origin, zero
// velocity/acceleration/angular-velocity, and a uniform log-weight of
// -log(N).
func (p *Population) Init(origin geo.Geodetic) {
	pos := geo.GeodeticToECEF(origin)
	rot := geo.MakeLTPRotation(origin)
	logW := -math.Log(float64(p.n))

	cur := p.Current()
	for i := range cur {
		cur[i] = Particle{
			Weight: logW,
			State: dynamics.RocketState{
				Pos:    pos,
				RotPos: rot,
			},
		}
	}
	p.sinceResample = 0
}

// SinceResample reports elapsed seconds since the last resample.
func (p *Population) SinceResample() float64 { return p.sinceResample }

// AdvanceClock accumulates the resample-interval clock. The estimator
// calls this once per tick with the tick's delta before deciding
// whether to resample.
func (p *Population) AdvanceClock(delta float64) {
	p.sinceResample += delta
}
