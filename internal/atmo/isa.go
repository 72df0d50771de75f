// Package atmo implements the International Standard Atmosphere
// layered altitude<->pressure model used by the barometric sensor
// forward model and the simulator's drag term.
package atmo

import "math"

const (
	// MinimumPressure is the pressure floor below which altitude is
	// clamped to MaximumAltitude.
	MinimumPressure = 0.3734 // Pa
	MaximumAltitude = 84852.0 // m

	gasConstant = 8.314472 / 0.028964 // R/M, J/(kg*K)
	gravity     = -9.80665            // m/s^2
)

var layerBase = [7]float64{0, 11000, 20000, 32000, 47000, 51000, 71000}
var lapseRate = [7]float64{-0.0065, 0, 0.001, 0.0028, 0, -0.0028, -0.002}

// Model is a calibrated instance of the seven-layer ISA model. The
// zero value is not usable; construct with New.
type Model struct {
	basePressure    [7]float64
	baseTemperature [7]float64
}

// New derives base pressures and temperatures for every layer from a
// layer-0 ground measurement. Defaults of 101325 Pa / 288.15 K are
// used when groundPressure/groundTemperature are zero.
func New(groundPressure, groundTemperature float64) *Model {
	if groundPressure == 0 {
		groundPressure = 101325.0
	}
	if groundTemperature == 0 {
		groundTemperature = 288.15
	}
	m := &Model{}
	m.basePressure[0] = groundPressure
	m.baseTemperature[0] = groundTemperature
	for i := 1; i < 7; i++ {
		dh := layerBase[i] - layerBase[i-1]
		l := lapseRate[i-1]
		t0 := m.baseTemperature[i-1]
		if l == 0 {
			m.baseTemperature[i] = t0
			m.basePressure[i] = m.basePressure[i-1] * math.Exp(gravity*dh/(gasConstant*t0))
		} else {
			t1 := t0 + l*dh
			m.baseTemperature[i] = t1
			m.basePressure[i] = m.basePressure[i-1] * math.Pow(t1/t0, gravity/(gasConstant*l))
		}
	}
	return m
}

func (m *Model) layerFor(h float64) int {
	layer := 0
	for i := 0; i < 7; i++ {
		if h >= layerBase[i] {
			layer = i
		}
	}
	return layer
}

// AltitudeToPressure returns the pressure at altitude h (m), strictly
// decreasing on [0, MaximumAltitude].
func (m *Model) AltitudeToPressure(h float64) float64 {
	layer := m.layerFor(h)
	dh := h - layerBase[layer]
	l := lapseRate[layer]
	t0 := m.baseTemperature[layer]
	p0 := m.basePressure[layer]
	if l == 0 {
		return p0 * math.Exp(gravity*dh/(gasConstant*t0))
	}
	t := t0 + l*dh
	return p0 * math.Pow(t/t0, gravity/(gasConstant*l))
}

// Temperature returns the calibrated layer temperature at altitude h
// (K), using the same ground calibration as AltitudeToPressure rather
// than a fixed sea-level lapse.
func (m *Model) Temperature(h float64) float64 {
	layer := m.layerFor(h)
	dh := h - layerBase[layer]
	return m.baseTemperature[layer] + lapseRate[layer]*dh
}

// Density returns air density (kg/m^3) at altitude h via the ideal gas
// law, from this model's own calibrated pressure and temperature.
func (m *Model) Density(h float64) float64 {
	return m.AltitudeToPressure(h) / (gasConstant * m.Temperature(h))
}

// PressureToAltitude is the inverse of AltitudeToPressure.
func (m *Model) PressureToAltitude(p float64) (float64, error) {
	if p < 0 {
		return 0, errNegativePressure
	}
	if p >= m.basePressure[0] {
		return layerBase[0], nil
	}
	if p < MinimumPressure {
		return MaximumAltitude, nil
	}
	layer := 0
	for i := 0; i < 7; i++ {
		if p <= m.basePressure[i] {
			layer = i
		}
	}
	l := lapseRate[layer]
	t0 := m.baseTemperature[layer]
	p0 := m.basePressure[layer]
	if l == 0 {
		return layerBase[layer] + gasConstant*t0*math.Log(p/p0)/gravity, nil
	}
	t := t0 * math.Pow(p/p0, gasConstant*l/gravity)
	return layerBase[layer] + (t-t0)/l, nil
}
