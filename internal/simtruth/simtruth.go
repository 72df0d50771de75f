// Package simtruth implements the simulator ground-truth generator: a
// standalone rigid-body simulation the spec treats as an external
// collaborator to the core, needed here to exercise the estimator
// end-to-end and to drive cmd/flightsim. Grounded on the original
// flight computer's update_rocket_state_sim/numerical_integration
// (physics.c): RK4 integration, thrust ramp, ground clip applied only
// to this truth state, never inside the filter.
package simtruth

import (
	"github.com/psas/rocketnav/internal/atmo"
	"github.com/psas/rocketnav/internal/dynamics"
	"github.com/psas/rocketnav/internal/geo"
)

// Simulator advances a single truth RocketState under thrust, drag,
// and gravity, clipping it to the launch surface on touchdown.
type Simulator struct {
	State       dynamics.RocketState
	origin      geo.Geodetic
	atm         *atmo.Model
	t           float64
	ignitionTime float64
	burning     bool
	chute       dynamics.ChuteStage
}

// New constructs a simulator at rest at the given geodetic origin,
// with the recovery system unarmed (no chute) and the engine unlit.
func New(origin geo.Geodetic, atm *atmo.Model) *Simulator {
	return &Simulator{
		State: dynamics.RocketState{
			Pos:    geo.GeodeticToECEF(origin),
			RotPos: geo.MakeLTPRotation(origin),
		},
		origin: origin,
		atm:    atm,
	}
}

// Ignite starts the burn at the simulator's current time. Idempotent:
// a second call while already burning has no effect.
func (s *Simulator) Ignite() {
	if s.burning {
		return
	}
	s.burning = true
	s.ignitionTime = s.t
}

// ReleaseDrogue and ReleaseMain switch the active recovery drag term.
// Main supersedes drogue; there is no path back to NoChute.
func (s *Simulator) ReleaseDrogue() {
	if s.chute == dynamics.NoChute {
		s.chute = dynamics.DrogueChute
	}
}

func (s *Simulator) ReleaseMain() {
	s.chute = dynamics.MainChute
}

// T reports simulation time elapsed since construction.
func (s *Simulator) T() float64 { return s.t }

// Tick advances the truth state by delta seconds via RK4, then applies
// ground clip. The engine automatically stops burning once
// EngineBurnTime has elapsed since ignition.
func (s *Simulator) Tick(delta float64) {
	if s.burning && s.t-s.ignitionTime >= dynamics.EngineBurnTime {
		s.burning = false
	}
	accel := dynamics.BuildAccelFunc(s.atm, s.ignitionTime, s.burning, s.chute)
	s.State = dynamics.PropagateRK4(s.State, s.t, delta, accel)
	s.State = dynamics.GroundClip(s.State, s.origin)
	s.t += delta
}

// Readings is the full set of quantized sensor observations rendered
// from the current truth state.
type Readings struct {
	Accel    dynamics.AccelerometerReading
	Gyro     dynamics.GyroscopeReading
	Mag      dynamics.MagnetometerReading
	Pressure uint16
	GPSPos   geo.Vec3
	GPSVel   geo.Vec3
}

// Sense renders the current truth state through every sensor's
// quantized forward model, for feeding directly into the estimator's
// sensor callbacks during a simulated run.
func (s *Simulator) Sense() Readings {
	return Readings{
		Accel:    dynamics.Accelerometer(s.State),
		Gyro:     dynamics.Gyroscope(s.State),
		Mag:      dynamics.Magnetometer(s.State),
		Pressure: dynamics.Pressure(s.atm, s.State),
		GPSPos:   s.State.Pos,
		GPSVel:   s.State.Vel,
	}
}
