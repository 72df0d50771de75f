package filter

import "github.com/psas/rocketnav/internal/dynamics"

// Likelihood computes log P(observation | state) for one sensor
// event against one particle's state.
type Likelihood func(s dynamics.RocketState) float64

// Update multiplies each particle's weight by the sensor's likelihood
// of the observation given that particle's state; in log-space this
// is addition.
func (p *Population) Update(logLikelihood Likelihood) {
	cur := p.Current()
	for i := range cur {
		cur[i].Weight += logLikelihood(cur[i].State)
	}
}
