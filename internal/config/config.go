// Package config loads the YAML mission file that tunes a flight
// computer run: particle count, process- and sensor-noise sigmas, ISA
// ground calibration, and launch origin. Resample thresholds and
// rate-limit delays are not read from it; they are constants in
// internal/filter and internal/phase.
package config

import (
	"os"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"

	"github.com/psas/rocketnav/internal/estimator"
	"github.com/psas/rocketnav/internal/filter"
)

// Mission is the top-level YAML document shape. Every field has a
// default matching the spec's literal constants; a mission file only
// needs to override what differs for that flight.
type Mission struct {
	Particles int `yaml:"particles"`

	ProcessNoise struct {
		PosSigma float64 `yaml:"pos_sigma"`
		VelSigma float64 `yaml:"vel_sigma"`
		AccSigma float64 `yaml:"acc_sigma"`
	} `yaml:"process_noise"`

	SensorNoise struct {
		AccelerometerSigma float64 `yaml:"accelerometer_sigma"`
		GyroscopeSigma     float64 `yaml:"gyroscope_sigma"`
		MagnetometerSigma  float64 `yaml:"magnetometer_sigma"`
		PressureSigma      float64 `yaml:"pressure_sigma"`
		GPSPosSigma        float64 `yaml:"gps_pos_sigma"`
		GPSVelSigma        float64 `yaml:"gps_vel_sigma"`
	} `yaml:"sensor_noise"`

	Atmosphere struct {
		GroundPressure    float64 `yaml:"ground_pressure"`
		GroundTemperature float64 `yaml:"ground_temperature"`
	} `yaml:"atmosphere"`

	Origin struct {
		LatRad float64 `yaml:"lat_rad"`
		LonRad float64 `yaml:"lon_rad"`
		AltM   float64 `yaml:"alt_m"`
	} `yaml:"origin"`
}

// Default returns the spec's literal defaults. Load starts from this
// and overrides whatever the mission file sets.
func Default() Mission {
	var m Mission
	m.Particles = 1000
	m.ProcessNoise.PosSigma = filter.DefaultProcessNoise.PosSigma
	m.ProcessNoise.VelSigma = filter.DefaultProcessNoise.VelSigma
	m.ProcessNoise.AccSigma = filter.DefaultProcessNoise.AccSigma
	m.SensorNoise.AccelerometerSigma = estimator.DefaultSensorNoise.AccelerometerSigma
	m.SensorNoise.GyroscopeSigma = estimator.DefaultSensorNoise.GyroscopeSigma
	m.SensorNoise.MagnetometerSigma = estimator.DefaultSensorNoise.MagnetometerSigma
	m.SensorNoise.PressureSigma = estimator.DefaultSensorNoise.PressureSigma
	m.SensorNoise.GPSPosSigma = estimator.DefaultSensorNoise.GPSPosSigma
	m.SensorNoise.GPSVelSigma = estimator.DefaultSensorNoise.GPSVelSigma
	m.Atmosphere.GroundPressure = 101325
	m.Atmosphere.GroundTemperature = 288.15
	return m
}

// Load reads a mission file at path, merging it onto Default(). A
// missing or empty field in the file keeps the default's value only
// for fields absent from the YAML document; yaml.Unmarshal already
// does this by unmarshaling into the pre-populated default struct.
func Load(path string) (Mission, error) {
	m := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return m, errors.Wrapf(err, "config: read %s", path)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, errors.Wrapf(err, "config: parse %s", path)
	}
	return m, nil
}

// FilterProcessNoise converts the mission's process-noise block into the
// filter package's type.
func (m Mission) FilterProcessNoise() filter.ProcessNoise {
	return filter.ProcessNoise{
		PosSigma: m.ProcessNoise.PosSigma,
		VelSigma: m.ProcessNoise.VelSigma,
		AccSigma: m.ProcessNoise.AccSigma,
	}
}

// EstimatorSensorNoise converts the mission's sensor-noise block into
// the estimator package's type.
func (m Mission) EstimatorSensorNoise() estimator.SensorNoise {
	return estimator.SensorNoise{
		AccelerometerSigma: m.SensorNoise.AccelerometerSigma,
		GyroscopeSigma:     m.SensorNoise.GyroscopeSigma,
		MagnetometerSigma:  m.SensorNoise.MagnetometerSigma,
		PressureSigma:      m.SensorNoise.PressureSigma,
		GPSPosSigma:        m.SensorNoise.GPSPosSigma,
		GPSVelSigma:        m.SensorNoise.GPSVelSigma,
	}
}
