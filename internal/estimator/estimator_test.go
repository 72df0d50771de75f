package estimator

import (
	"testing"

	"github.com/psas/rocketnav/internal/atmo"
	"github.com/psas/rocketnav/internal/dynamics"
	"github.com/psas/rocketnav/internal/filter"
	"github.com/psas/rocketnav/internal/geo"
	"github.com/psas/rocketnav/internal/phase"
)

type stubRNG struct{}

func (stubRNG) Uniform() float64            { return 0.5 }
func (stubRNG) Gaussian(sigma float64) float64 { return 0 }

type stubCallbacks struct {
	states  []phase.Phase
	ignites []bool
	drogues []bool
	mains   []bool
	errs    []error
	traces  int
}

func (s *stubCallbacks) ReportState(p phase.Phase)  { s.states = append(s.states, p) }
func (s *stubCallbacks) Ignite(on bool)             { s.ignites = append(s.ignites, on) }
func (s *stubCallbacks) DrogueChute(on bool)        { s.drogues = append(s.drogues, on) }
func (s *stubCallbacks) MainChute(on bool)          { s.mains = append(s.mains, on) }
func (s *stubCallbacks) EnqueueError(err error)      { s.errs = append(s.errs, err) }
func (s *stubCallbacks) TraceState(c Centroid, p phase.Phase, ess float64) { s.traces++ }

func newTestEstimator(n int) (*Estimator, *stubCallbacks) {
	cb := &stubCallbacks{}
	cfg := Config{
		Particles:    n,
		Atmosphere:   atmo.New(101325, 288.15),
		ProcessNoise: filter.DefaultProcessNoise,
		SensorNoise:  DefaultSensorNoise,
	}
	e := New(cfg, stubRNG{}, cb)
	return e, cb
}

func TestInitSeedsPopulationAtOrigin(t *testing.T) {
	e, _ := newTestEstimator(50)
	origin := geo.Geodetic{Lat: 0.5, Lon: 0.1, Alt: 0}
	e.Init(origin)

	want := geo.GeodeticToECEF(origin)
	got := e.Centroid().Pos
	if got.Sub(want).Abs() > 1e-6 {
		t.Errorf("centroid pos after init = %+v, want %+v", got, want)
	}
}

func TestTickDoesNotPanicAndTraces(t *testing.T) {
	e, cb := newTestEstimator(100)
	e.Init(geo.Geodetic{Lat: 0.2, Lon: 0, Alt: 0})

	for i := 0; i < 10; i++ {
		e.Tick(0.1)
	}
	if cb.traces != 10 {
		t.Errorf("expected 10 TraceState calls, got %d", cb.traces)
	}
}

// S3: preflight idle. At rest, zero-motion consensus should let
// can_arm go true and arm() succeed with no actuator commands fired.
func TestPreflightIdleCanArm(t *testing.T) {
	e, cb := newTestEstimator(200)
	e.Init(geo.Geodetic{Lat: 0.3, Lon: 0, Alt: 0})

	for total := 0.0; total < 1.0; total += 0.1 {
		e.Tick(0.1)
	}
	e.Arm()

	if e.Phase() != phase.Armed {
		t.Fatalf("phase = %v, want ARMED", e.Phase())
	}
	if len(cb.ignites) != 0 || len(cb.drogues) != 0 || len(cb.mains) != 0 {
		t.Error("no actuator commands expected during preflight idle")
	}
}

// S5: ESS collapse. A run of contradictory accelerometer readings
// should collapse ESS below 0.05*N and force a resample, without
// corrupting the phase (it should not spuriously jump to FLIGHT from
// a stationary origin).
func TestESSCollapseForcesResampleWithoutSpuriousPhaseChange(t *testing.T) {
	e, _ := newTestEstimator(500)
	e.Init(geo.Geodetic{Lat: 0, Lon: 0, Alt: 0})

	contradictory := dynamics.AccelerometerReading{X: 4095, Y: 0, Z: 0, Q: 0}
	for i := 0; i < 50; i++ {
		e.AccelerometerSensor(contradictory)
		e.Tick(0.01)
	}

	if e.ResampleCount() == 0 {
		t.Error("expected at least one forced resample under contradictory-sensor ESS collapse")
	}
	if e.Phase() == phase.Flight || e.Phase() == phase.Recovery {
		t.Errorf("phase spuriously advanced to %v under contradictory-sensor ESS collapse", e.Phase())
	}
}

func TestGPSSensorFavorsNearbyParticles(t *testing.T) {
	e, _ := newTestEstimator(10)
	origin := geo.Geodetic{Lat: 0.3, Lon: 0.2, Alt: 0}
	e.Init(origin)

	cur := e.Particles()
	truePos := geo.GeodeticToECEF(origin)
	farPos := truePos.Add(geo.Vec3{X: 10000})
	cur[0].State.Pos = farPos

	e.GPSSensor(truePos, geo.Vec3{})

	if cur[0].Weight >= cur[1].Weight {
		t.Errorf("far particle weight %v should be lower than a particle at the true position %v", cur[0].Weight, cur[1].Weight)
	}
}
