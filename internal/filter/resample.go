package filter

import "math"

// ResampleESSFraction and ResampleInterval implement the trigger
// policy from spec.md section 4.G: resample when ESS falls below
// ResampleESSFraction*N, or when ResampleInterval seconds have
// elapsed since the last resample, whichever comes first.
const (
	ResampleESSFraction = 0.05
	ResampleInterval    = 1.0 // s
)

// NeedsResample applies the trigger policy given the ESS just
// produced by Normalize.
func (p *Population) NeedsResample(ess float64) bool {
	return ess < ResampleESSFraction*float64(p.n) || p.sinceResample > ResampleInterval
}

// Resample performs low-variance systematic resampling: draw a single
// u0 in [0, 1/(N+1)), walk the cumulative weight ladder, and emit a
// particle whenever the ladder crosses u0 + k/(N+1) for k=0..N-1.
// Weights must already be normalized (sum(exp(w_i)) = 1). After
// resampling all weights are reset to log(1/N) and the ping-pong
// buffer flips. Expected cost is O(N).
func (p *Population) Resample(rng RNG) {
	cur := p.Current()
	dst := p.scratch()
	n := len(cur)

	step := 1.0 / float64(n+1)
	u0 := rng.Uniform() * step

	var t float64
	j := 0
	logW := -math.Log(float64(n))
	for i := 0; i < n; i++ {
		target := u0 + float64(i)*step
		for j < n-1 && t+math.Exp(cur[j].Weight) < target {
			t += math.Exp(cur[j].Weight)
			j++
		}
		dst[i] = Particle{Weight: logW, State: cur[j].State}
	}

	p.which = 1 - p.which
	p.sinceResample = 0
}

// polynomial is the low-discrepancy quasi-random offset sequence used
// by ResampleOptimal in place of a single uniform draw: the
// base-2 Van der Corput sequence, which fills [0,1) evenly as k
// increases and is fully deterministic given k.
func polynomial(k int) float64 {
	var result float64
	var f float64 = 0.5
	for k > 0 {
		if k&1 == 1 {
			result += f
		}
		k >>= 1
		f *= 0.5
	}
	return result
}

// ResampleOptimal is a deterministic resampling variant using the
// polynomial low-discrepancy series rather than a single uniform
// draw. totalWeight is the (linear) sum of weights the caller is
// resampling against; since Normalize leaves sum(exp(w_i)) = 1, the
// normal case is totalWeight = 1. It returns the index of the
// maximum-weight input (source) particle, i.e. the argmax of the
// weights before resampling, as a point estimate.
//
// At most one rebuild happens per call; the caller is responsible for
// calling this at most once per tick.
func (p *Population) ResampleOptimal(totalWeight float64) int {
	cur := p.Current()
	dst := p.scratch()
	n := len(cur)

	sourceBest := 0
	for i := 1; i < n; i++ {
		if cur[i].Weight > cur[sourceBest].Weight {
			sourceBest = i
		}
	}

	u0 := polynomial(n-1) * totalWeight
	logW := -math.Log(float64(n))

	var t float64
	j := 0
	for i := 0; i < n; i++ {
		w := math.Exp(cur[j].Weight)
		for t+w < u0 && j < n-1 {
			t += w
			j++
			w = math.Exp(cur[j].Weight)
		}
		dst[i] = Particle{Weight: logW, State: cur[j].State}
		u0 = u0 + (totalWeight-u0)*polynomial(n-i-1)
	}

	p.which = 1 - p.which
	p.sinceResample = 0
	return sourceBest
}
