package dynamics

import (
	"github.com/psas/rocketnav/internal/atmo"
	"github.com/psas/rocketnav/internal/geo"
)

// Engine and recovery-system constants, per spec.md section 4.E.
const (
	EngineThrust    = 3094.65 // N
	RocketEmptyMass = 21.54   // kg
	FuelMass        = 5.9     // kg
	EngineBurnTime  = 4.3     // s
	thrustRampTime  = 0.2     // s, ramp-up/ramp-down at burn start/end

	RocketCrossSection = 0.0182 // m^2, ~152mm dia body tube
	RocketDragCoeff    = 0.45

	DrogueCrossSection = 0.3318 // m^2
	DrogueDragCoeff    = 1.16

	MainCrossSection = 4.787 // m^2
	MainDragCoeff    = 1.0
)

// ChuteStage selects which recovery drag term, if any, applies in
// addition to the rocket body's own drag.
type ChuteStage int

const (
	NoChute ChuteStage = iota
	DrogueChute
	MainChute
)

// thrustFraction returns the fraction of nominal thrust delivered at
// tBurn seconds since ignition, ramping linearly over thrustRampTime
// at both the start and the end of the burn.
func thrustFraction(tBurn float64) float64 {
	if tBurn < 0 || tBurn > EngineBurnTime {
		return 0
	}
	if tBurn < thrustRampTime {
		return tBurn / thrustRampTime
	}
	if tBurn > EngineBurnTime-thrustRampTime {
		return (EngineBurnTime - tBurn) / thrustRampTime
	}
	return 1
}

// airDensity derives density from the ISA model's own calibrated
// pressure and temperature, so a mission's ground-calibration override
// (internal/config) reaches the truth simulator's drag term the same
// way it reaches the barometric sensor's forward model.
func airDensity(m *atmo.Model, altitude float64) float64 {
	return m.Density(altitude)
}

// BuildAccelFunc returns the acceleration functional the simulator's
// RK4 propagation uses: gravity plus altitude-dependent drag plus a
// ramped thrust term, applied along the body axis, while burning.
// Drag opposes velocity with a fixed cross-section per chute stage;
// the body's orientation does not enter the drag term.
//
//   - ignitionTime: simulation time (s) thrust begins
//   - chute: which recovery drag term is active
//   - atm: calibrated ISA model for density lookup
func BuildAccelFunc(atm *atmo.Model, ignitionTime float64, burning bool, chute ChuteStage) AccelFunc {
	return func(t float64, s RocketState) geo.Vec3 {
		mass := RocketEmptyMass + remainingFuel(t, ignitionTime, burning)

		acc := GravityAcceleration(s)

		speed := s.Vel.Abs()
		if speed > 1e-9 {
			alt := geo.ECEFToGeodetic(s.Pos).Alt
			rho := airDensity(atm, alt)
			dragDir := s.Vel.Scale(-1 / speed)

			dragMag := 0.5 * rho * speed * speed * RocketDragCoeff * RocketCrossSection / mass
			switch chute {
			case DrogueChute:
				dragMag += 0.5 * rho * speed * speed * DrogueDragCoeff * DrogueCrossSection / mass
			case MainChute:
				dragMag += 0.5 * rho * speed * speed * MainDragCoeff * MainCrossSection / mass
			}
			acc = acc.Add(dragDir.Scale(dragMag))
		}

		if burning {
			tBurn := t - ignitionTime
			frac := thrustFraction(tBurn)
			if frac > 0 {
				thrustBody := geo.Vec3{Z: EngineThrust * frac / mass}
				acc = acc.Add(s.ToECEF(thrustBody))
			}
		}

		return acc
	}
}

func remainingFuel(t, ignitionTime float64, burning bool) float64 {
	if !burning {
		return 0
	}
	tBurn := t - ignitionTime
	if tBurn <= 0 {
		return FuelMass
	}
	if tBurn >= EngineBurnTime {
		return 0
	}
	return FuelMass * (1 - tBurn/EngineBurnTime)
}
