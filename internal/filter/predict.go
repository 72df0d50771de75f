package filter

import (
	"github.com/psas/rocketnav/internal/dynamics"
	"github.com/psas/rocketnav/internal/geo"
)

// ProcessNoise holds the per-axis process noise standard deviations
// injected during Predict. Values are the spec's open-question
// defaults (section 9): the smallest of the values observed across
// source revisions. They are exposed as tuning constants rather than
// hardcoded so internal/config can override them.
type ProcessNoise struct {
	PosSigma float64 // m
	VelSigma float64 // m/s
	AccSigma float64 // m/s^2
}

// DefaultProcessNoise is the spec's shipped default.
var DefaultProcessNoise = ProcessNoise{PosSigma: 0.2, VelSigma: 0.2, AccSigma: 1.0}

// Predict advances every particle by delta seconds through the
// rigid-body propagator's semi-implicit Euler step, then perturbs
// pos/vel/acc with independent per-axis Gaussian process noise. No
// latent discrete booleans are carried in particle state; engine/
// chute state belongs entirely to the phase state machine (spec.md
// section 9's resolved open question).
func (p *Population) Predict(delta float64, rng RNG, noise ProcessNoise) {
	cur := p.Current()
	for i := range cur {
		s := dynamics.PredictEuler(cur[i].State, delta)
		s.Pos = perturb(s.Pos, rng, noise.PosSigma)
		s.Vel = perturb(s.Vel, rng, noise.VelSigma)
		s.Acc = perturb(s.Acc, rng, noise.AccSigma)
		cur[i].State = s
	}
}

func perturb(v geo.Vec3, rng RNG, sigma float64) geo.Vec3 {
	if sigma == 0 {
		return v
	}
	return geo.Vec3{
		X: v.X + rng.Gaussian(sigma),
		Y: v.Y + rng.Gaussian(sigma),
		Z: v.Z + rng.Gaussian(sigma),
	}
}
