// Package estimator is the top-level glue: it owns the particle
// population, the phase state machine, and the tick loop described in
// spec.md section 4.I, and exposes the sensor/operator-facing API the
// harness drives.
package estimator

import (
	"math"

	"github.com/pkg/errors"

	"github.com/psas/rocketnav/internal/atmo"
	"github.com/psas/rocketnav/internal/calib"
	"github.com/psas/rocketnav/internal/dynamics"
	"github.com/psas/rocketnav/internal/filter"
	"github.com/psas/rocketnav/internal/geo"
	"github.com/psas/rocketnav/internal/phase"
)

// Callbacks is the full harness-facing surface: the phase machine's
// actuator/notification calls, plus a tracing hook for per-tick
// observability. The core never holds a logger directly — every
// outward effect flows through this interface, passed once at
// construction (per the "global mutable state" re-architecture: no
// module-level singletons).
type Callbacks interface {
	phase.Callbacks
	// TraceState is called once per tick with the weighted centroid,
	// current phase, and ESS, for the harness to log/export as it sees
	// fit.
	TraceState(c Centroid, ph phase.Phase, ess float64)
}

// SensorNoise holds the per-sensor noise standard deviations used by
// the likelihood computations. Values are design constants (spec.md
// section 4.F/5); internal/config may override them per board.
type SensorNoise struct {
	AccelerometerSigma float64 // ADC counts
	GyroscopeSigma     float64 // ADC counts
	MagnetometerSigma  float64 // ADC counts
	PressureSigma      float64 // ADC counts
	GPSPosSigma        float64 // m
	GPSVelSigma        float64 // m/s
}

// DefaultSensorNoise matches the noise figures carried in the original
// flight computer's single-axis demo (z_accelerometer_sd, pressure_sd),
// extended across all axes and sensors in the same ADC-count domain
// the full multi-sensor model operates in.
var DefaultSensorNoise = SensorNoise{
	AccelerometerSigma: 50,
	GyroscopeSigma:     50,
	MagnetometerSigma:  100,
	PressureSigma:      10,
	GPSPosSigma:        5,
	GPSVelSigma:        0.5,
}

// Centroid is the weighted mean state computed once per tick for
// observability, per spec.md section 4.I step 3.
type Centroid struct {
	Pos, Vel, Acc, RotVel geo.Vec3
}

// Estimator is the single owning value replacing the original's
// module-level singletons: every piece of mutable state the core
// touches lives here, mutated only through its methods.
type Estimator struct {
	pop   *filter.Population
	ph    *phase.Machine
	atm   *atmo.Model
	rng   filter.RNG
	noise filter.ProcessNoise
	snoise SensorNoise
	cb    Callbacks

	originAlt     float64 // initial geodetic altitude, for deploy_main's 500m-AGL test
	nparticles    int     // configured particle count, for the invariant check
	resampleCount int     // total resamples performed, for telemetry export
}

// Config bundles the construction-time parameters that aren't part of
// the runtime callback surface.
type Config struct {
	Particles    int
	Atmosphere   *atmo.Model
	ProcessNoise filter.ProcessNoise
	SensorNoise  SensorNoise
}

// New constructs an Estimator. It is not usable until Init is called.
func New(cfg Config, rng filter.RNG, cb Callbacks) *Estimator {
	return &Estimator{
		pop:        filter.New(cfg.Particles),
		ph:         phase.New(cb),
		atm:        cfg.Atmosphere,
		rng:        rng,
		noise:      cfg.ProcessNoise,
		snoise:     cfg.SensorNoise,
		cb:         cb,
		nparticles: cfg.Particles,
	}
}

// Init is the one-shot initialization: seed every particle at the
// given geodetic origin.
func (e *Estimator) Init(origin geo.Geodetic) {
	e.pop.Init(origin)
	e.originAlt = origin.Alt
}

// LoadCalibration reads every stored bias/gain row from store and
// applies it to the sensor forward models' package-level constants,
// overriding the spec-default calibration in internal/dynamics with
// the board-specific values read at init. Accelerometer and
// magnetometer rows apply per axis; gyroscope and pressure hold a
// single bias/gain, so each of their rows overwrites it and the
// highest-axis row wins.
func (e *Estimator) LoadCalibration(store *calib.Store) error {
	for _, sensor := range []string{"accelerometer", "gyroscope", "magnetometer", "pressure"} {
		rows, err := store.Load(sensor)
		if err != nil {
			return errors.Wrapf(err, "estimator: load calibration for %s", sensor)
		}
		for _, r := range rows {
			applyCalibrationRow(sensor, r)
		}
	}
	return nil
}

func applyCalibrationRow(sensor string, r calib.Row) {
	switch sensor {
	case "accelerometer":
		if r.Axis >= 0 && r.Axis < len(dynamics.AccelerometerBias) {
			dynamics.AccelerometerBias[r.Axis] = r.Bias
			dynamics.AccelerometerGain[r.Axis] = r.Gain
		}
	case "gyroscope":
		dynamics.GyroscopeBias = r.Bias
		dynamics.GyroscopeGain = r.Gain
	case "magnetometer":
		if r.Axis >= 0 && r.Axis < len(dynamics.MagnetometerBias) {
			dynamics.MagnetometerBias[r.Axis] = r.Bias
			dynamics.MagnetometerGain[r.Axis] = r.Gain
		}
	case "pressure":
		dynamics.PressureBias = r.Bias
		dynamics.PressureGain = r.Gain
	}
}

// Arm and Launch forward the operator commands to the phase machine.
func (e *Estimator) Arm()    { e.ph.Arm() }
func (e *Estimator) Launch() { e.ph.Launch() }

// Phase reports the current flight phase.
func (e *Estimator) Phase() phase.Phase { return e.ph.State() }

// Particles exposes the live particle slice for diagnostics and
// testing. Callers may read and write particle fields in place but
// must not change its length.
func (e *Estimator) Particles() []filter.Particle { return e.pop.Current() }

// ResampleCount reports the total number of resample operations
// performed since construction, for telemetry export.
func (e *Estimator) ResampleCount() int { return e.resampleCount }

const groundConsensusSpeedLimit = 2.0   // m/s, |vel| for on_ground
const groundConsensusAccelLimit = 2.0   // m/s^2, |acc| for on_ground
const freefallTolerance = 2.0           // m/s^2, |gravity-acc| for deploy_drogue
const mainDeployAltitudeAGL = 500.0     // m above launch altitude
const mainDeploySpeedFloor = 10.0       // m/s

// consensus aggregates the three normalized masses the phase machine
// decides on, over the current (possibly unnormalized) weight
// distribution. Per spec.md section 4.H.
func (e *Estimator) consensus(inFlight bool) phase.Consensus {
	cur := e.pop.Current()

	var total, onGround, drogue, main float64
	for i := range cur {
		w := expWeight(cur[i].Weight)
		total += w

		s := cur[i].State
		speed := s.Vel.Abs()
		accel := s.Acc.Abs()

		if speed <= groundConsensusSpeedLimit && accel <= groundConsensusAccelLimit {
			onGround += w
		}

		if !inFlight {
			continue
		}

		descending := s.Pos.Dot(s.Vel) < 0
		if descending {
			gAccel := dynamics.GravityAcceleration(s)
			freefallDelta := gAccel.Sub(s.Acc).Abs()
			if freefallDelta <= freefallTolerance {
				drogue += w
			}

			alt := geo.ECEFToGeodetic(s.Pos).Alt
			if alt-e.originAlt <= mainDeployAltitudeAGL && speed >= mainDeploySpeedFloor {
				main += w
			}
		}
	}

	if total == 0 {
		return phase.Consensus{}
	}
	return phase.Consensus{
		OnGround:     onGround / total,
		DeployDrogue: drogue / total,
		DeployMain:   main / total,
	}
}

func expWeight(logW float64) float64 {
	if logW < -700 {
		return 0
	}
	return math.Exp(logW)
}

// invariantTolerance bounds the orthonormality/determinant slack
// IsRotation allows each particle's RotPos before it is treated as a
// corrupted rotation rather than accumulated floating-point drift.
const invariantTolerance = 1e-6

// checkInvariants panics with ErrInvariantViolation if the population
// has drifted in particle count or any particle's RotPos is no longer
// a proper rotation (spec.md section 7). cmd/ is expected to recover
// this on a distinct path from ordinary sensor/phase errors.
func (e *Estimator) checkInvariants(wantParticles int) {
	cur := e.pop.Current()
	if len(cur) != wantParticles {
		panic(errors.Wrapf(ErrInvariantViolation, "particle count drifted to %d, want %d", len(cur), wantParticles))
	}
	for i := range cur {
		if !cur[i].State.RotPos.IsRotation(invariantTolerance) {
			panic(errors.Wrapf(ErrInvariantViolation, "particle %d RotPos is not a proper rotation", i))
		}
	}
}

// Tick advances the estimator by delta seconds, per spec.md section
// 4.I: phase decisions against the post-sensor-update weight
// distribution, then normalize/resample, then the observability
// centroid, then predict.
func (e *Estimator) Tick(delta float64) {
	e.checkInvariants(e.nparticles)

	c := e.consensus(e.ph.State() == phase.Flight)
	e.ph.Update(delta, c)

	ess, degenerate := e.pop.Normalize()
	if degenerate {
		e.pop.ResetWeightsUniform()
	}
	e.pop.AdvanceClock(delta)
	if e.pop.NeedsResample(ess) {
		e.pop.ResampleOptimal(1.0) // weights are already normalized to sum 1
		e.resampleCount++
	}

	e.cb.TraceState(e.Centroid(), e.ph.State(), ess)

	e.pop.Predict(delta, e.rng, e.noise)
}

// Centroid computes the weighted mean of (pos, vel, acc, rotvel) over
// the current population.
func (e *Estimator) Centroid() Centroid {
	cur := e.pop.Current()
	var total float64
	var c Centroid
	for i := range cur {
		w := expWeight(cur[i].Weight)
		total += w
		s := cur[i].State
		c.Pos = c.Pos.Add(s.Pos.Scale(w))
		c.Vel = c.Vel.Add(s.Vel.Scale(w))
		c.Acc = c.Acc.Add(s.Acc.Scale(w))
		c.RotVel = c.RotVel.Add(s.RotVel.Scale(w))
	}
	if total == 0 {
		return Centroid{}
	}
	return Centroid{
		Pos:    c.Pos.Scale(1 / total),
		Vel:    c.Vel.Scale(1 / total),
		Acc:    c.Acc.Scale(1 / total),
		RotVel: c.RotVel.Scale(1 / total),
	}
}

// AccelerometerSensor applies the quantization-aware likelihood of the
// four-axis reading against every particle.
func (e *Estimator) AccelerometerSensor(r dynamics.AccelerometerReading) {
	sigma := e.snoise.AccelerometerSigma
	e.pop.Update(func(s dynamics.RocketState) float64 {
		hx, hy, hz, hq := dynamics.AccelerometerExpectedCounts(s)
		return dynamics.QuantizedLogLikelihood(r.X, hx, sigma) +
			dynamics.QuantizedLogLikelihood(r.Y, hy, sigma) +
			dynamics.QuantizedLogLikelihood(r.Z, hz, sigma) +
			dynamics.QuantizedLogLikelihood(r.Q, hq, sigma)
	})
}

// GyroscopeSensor applies the three-axis angular rate likelihood.
func (e *Estimator) GyroscopeSensor(r dynamics.GyroscopeReading) {
	sigma := e.snoise.GyroscopeSigma
	e.pop.Update(func(s dynamics.RocketState) float64 {
		hx, hy, hz := dynamics.GyroscopeExpectedCounts(s)
		return dynamics.QuantizedLogLikelihood(r.X, hx, sigma) +
			dynamics.QuantizedLogLikelihood(r.Y, hy, sigma) +
			dynamics.QuantizedLogLikelihood(r.Z, hz, sigma)
	})
}

// MagnetometerSensor applies the three-axis field likelihood.
func (e *Estimator) MagnetometerSensor(r dynamics.MagnetometerReading) {
	sigma := e.snoise.MagnetometerSigma
	e.pop.Update(func(s dynamics.RocketState) float64 {
		hx, hy, hz := dynamics.MagnetometerExpectedCounts(s)
		return dynamics.QuantizedLogLikelihood(r.X, hx, sigma) +
			dynamics.QuantizedLogLikelihood(r.Y, hy, sigma) +
			dynamics.QuantizedLogLikelihood(r.Z, hz, sigma)
	})
}

// PressureSensor applies the pressure likelihood.
func (e *Estimator) PressureSensor(p uint16) {
	sigma := e.snoise.PressureSigma
	atm := e.atm
	e.pop.Update(func(s dynamics.RocketState) float64 {
		h := dynamics.PressureExpectedCounts(atm, s)
		return dynamics.QuantizedLogLikelihood(p, h, sigma)
	})
}

// GPSSensor applies the unquantized position/velocity likelihood: GPS
// is identity on ECEF components with separate noise sigma per axis,
// not quantized (spec.md section 4.F).
func (e *Estimator) GPSSensor(pos, vel geo.Vec3) {
	posVar := e.snoise.GPSPosSigma * e.snoise.GPSPosSigma
	velVar := e.snoise.GPSVelSigma * e.snoise.GPSVelSigma
	e.pop.Update(func(s dynamics.RocketState) float64 {
		r := dynamics.GPS(s)
		dp := r.Pos.Sub(pos)
		dv := r.Vel.Sub(vel)
		return dynamics.GaussianLogLikelihood(dp.X, posVar) +
			dynamics.GaussianLogLikelihood(dp.Y, posVar) +
			dynamics.GaussianLogLikelihood(dp.Z, posVar) +
			dynamics.GaussianLogLikelihood(dv.X, velVar) +
			dynamics.GaussianLogLikelihood(dv.Y, velVar) +
			dynamics.GaussianLogLikelihood(dv.Z, velVar)
	})
}

// ErrInvariantViolation is the distinct panic path for invariant
// violations (spec.md section 7): particle count drift or a
// non-rotation rotpos. The harness recovers these separately from
// ordinary sensor/phase errors.
var ErrInvariantViolation = errors.New("rocketnav: invariant violation")
