package dynamics

import "math"

// phi is the standard normal CDF.
func phi(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// QuantizedLogLikelihood is the log of the quantization-aware
// Gaussian likelihood from spec.md section 4.F: the 12-bit quantized
// measurement m is compared against the real-valued expected value h
// by integrating the Gaussian density over the bin [m-1/2, m+1/2].
// The end bins are clamped (m=0 has no lower tail, m=0xFFF has no
// upper tail). The per-m normalizer that makes the distribution sum
// to one over the full 12-bit domain is independent of state and so
// cancels in relative particle weighting; it is omitted here.
func QuantizedLogLikelihood(m uint16, h, sigma float64) float64 {
	s := sigma * math.Sqrt2

	upper := 1.0
	if m != 0xFFF {
		upper = phi((float64(m) + 0.5 - h) / s)
	}
	lower := 0.0
	if m != 0 {
		lower = phi((float64(m) - 0.5 - h) / s)
	}

	p := upper - lower
	if p <= 0 {
		return math.Inf(-1)
	}
	return math.Log(p)
}

// GaussianLogLikelihood is the unquantized Gaussian log-likelihood
// log_gprob(delta, variance) = -delta^2 / (2*variance), used for GPS
// observations which are not quantized.
func GaussianLogLikelihood(delta, variance float64) float64 {
	return -delta * delta / (2 * variance)
}
