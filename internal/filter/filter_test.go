package filter

import (
	"math"
	"testing"

	"github.com/psas/rocketnav/internal/geo"
)

// fixedRNG is a deterministic stand-in for the process RNG, suitable
// for tests that need reproducible draws without depending on the
// (external, black-box) production ziggurat engine.
type fixedRNG struct {
	u float64
	g float64
}

func (f fixedRNG) Uniform() float64           { return f.u }
func (f fixedRNG) Gaussian(sigma float64) float64 { return f.g * sigma }

func TestInitUniformWeights(t *testing.T) {
	p := New(100)
	p.Init(geo.Geodetic{Lat: 0.5, Lon: 0.2, Alt: 10})
	want := -math.Log(100)
	for i, part := range p.Current() {
		if part.Weight != want {
			t.Fatalf("particle %d weight = %v, want %v", i, part.Weight, want)
		}
	}
}

// Testable property 4 (conservation), first half: after Normalize,
// sum(exp(w_i)) = 1 +- 1e-9.
func TestNormalizeConservesTotalMass(t *testing.T) {
	p := New(1000)
	p.Init(geo.Geodetic{})
	cur := p.Current()
	for i := range cur {
		cur[i].Weight = float64(i) * 0.01 // arbitrary unnormalized spread
	}

	ess, degenerate := p.Normalize()
	if degenerate {
		t.Fatal("unexpected degeneracy")
	}
	if ess <= 0 || ess > 1000 {
		t.Errorf("ESS out of range: %v", ess)
	}

	var sum float64
	for _, part := range p.Current() {
		sum += math.Exp(part.Weight)
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("sum(exp(w)) = %v, want 1 +- 1e-9", sum)
	}
}

func TestNormalizeDegenerateAllNegInf(t *testing.T) {
	p := New(10)
	p.Init(geo.Geodetic{})
	cur := p.Current()
	for i := range cur {
		cur[i].Weight = math.Inf(-1)
	}
	_, degenerate := p.Normalize()
	if !degenerate {
		t.Fatal("expected degenerate=true when all weights are -Inf")
	}
	p.ResetWeightsUniform()
	want := -math.Log(10)
	for _, part := range p.Current() {
		if part.Weight != want {
			t.Errorf("weight after uniform reset = %v, want %v", part.Weight, want)
		}
	}
}

// Testable property 4, second half: after Resample, all weights equal
// -log(N) exactly.
func TestResampleWeightsEqual(t *testing.T) {
	n := 200
	p := New(n)
	p.Init(geo.Geodetic{})
	cur := p.Current()
	for i := range cur {
		cur[i].Weight = float64(i)
	}
	p.Normalize()

	p.Resample(fixedRNG{u: 0.37})

	want := -math.Log(float64(n))
	for i, part := range p.Current() {
		if part.Weight != want {
			t.Fatalf("particle %d weight after resample = %v, want %v", i, part.Weight, want)
		}
	}
}

// Testable property 5: the index returned by the deterministic
// resample equals argmax of the input weights.
func TestResampleOptimalPointEstimate(t *testing.T) {
	n := 50
	p := New(n)
	p.Init(geo.Geodetic{})
	cur := p.Current()

	// Give particle 17 an unmistakably dominant weight.
	total := 0.0
	for i := range cur {
		w := 1.0 + float64(i%3)
		if i == 17 {
			w = 1000.0
		}
		cur[i].Weight = math.Log(w)
		total += w
	}

	bestIdx := p.ResampleOptimal(total)
	if bestIdx != 17 {
		t.Errorf("ResampleOptimal best index = %d, want 17 (argmax of the input weights)", bestIdx)
	}
}

func TestNeedsResampleTriggersOnLowESS(t *testing.T) {
	p := New(1000)
	if !p.NeedsResample(0.01 * 1000) {
		t.Error("expected resample trigger when ESS < 0.05N")
	}
	if p.NeedsResample(0.5 * 1000) {
		t.Error("did not expect resample trigger at ESS=0.5N with no elapsed time")
	}
}

func TestNeedsResampleTriggersOnElapsedTime(t *testing.T) {
	p := New(1000)
	p.AdvanceClock(1.5)
	if !p.NeedsResample(0.5 * 1000) {
		t.Error("expected resample trigger after resample interval elapsed")
	}
}

func TestPredictMovesParticlesWithProcessNoise(t *testing.T) {
	p := New(500)
	p.Init(geo.Geodetic{Lat: 0.1, Lon: 0.1, Alt: 0})
	before := p.Current()[0].State.Pos

	p.Predict(0.01, fixedRNG{g: 1}, DefaultProcessNoise)

	after := p.Current()[0].State.Pos
	if after == before {
		t.Error("Predict did not perturb particle position")
	}
}
