package filter

import "math"

// Normalize is the two-pass normalization pass: (1) subtract the
// maximum weight so exponentials cannot overflow, (2) compute the log
// of the sum of exponentials to produce a total, (3) subtract the
// log-total from every weight so that sum(exp(w_i)) = 1, (4) return
// the effective sample size ESS = 1 / sum(exp(2*w_i)).
//
// degenerate reports the numerical-degeneracy case from spec.md
// section 7: every particle's weight underflowed to log = -Inf. In
// that case weights are left untouched (there is no finite maximum to
// shift by) and the caller must force a uniform-weight recovery via
// ResetWeightsUniform.
func (p *Population) Normalize() (ess float64, degenerate bool) {
	cur := p.Current()

	max := math.Inf(-1)
	for i := range cur {
		if cur[i].Weight > max {
			max = cur[i].Weight
		}
	}
	if math.IsInf(max, -1) {
		return 0, true
	}

	var sumExp float64
	for i := range cur {
		sumExp += math.Exp(cur[i].Weight - max)
	}
	logTotal := max + math.Log(sumExp)

	var sumExp2 float64
	for i := range cur {
		cur[i].Weight -= logTotal
		sumExp2 += math.Exp(2 * cur[i].Weight)
	}

	return 1 / sumExp2, false
}

// ResetWeightsUniform redistributes mass uniformly across the
// existing particle states without resampling them, for the
// numerical-degeneracy recovery path.
func (p *Population) ResetWeightsUniform() {
	cur := p.Current()
	logW := -math.Log(float64(p.n))
	for i := range cur {
		cur[i].Weight = logW
	}
}
