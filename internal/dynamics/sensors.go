package dynamics

import (
	"math"

	"github.com/psas/rocketnav/internal/atmo"
	"github.com/psas/rocketnav/internal/geo"
)

// Quantize12 clamps and truncates a real value into the 12-bit ADC
// domain the hardware uses, masked to 0xFFF.
func Quantize12(v float64) uint16 {
	if v < 0 {
		v = 0
	}
	if v > 0xFFF {
		v = 0xFFF
	}
	return uint16(v) & 0xFFF
}

// AccelerometerBias/Gain and GyroscopeBias/Gain are the forward-model
// calibration constants from spec.md section 4.F. They are the
// defaults; estimator.LoadCalibration overwrites them with any rows
// stored in internal/calib.
var (
	AccelerometerBias = [4]float64{2048, 2048, 2048, 2048}
	AccelerometerGain = [4]float64{131.0, 131.0, 131.0, 131.0} // counts per m/s^2, nominal

	GyroscopeBias = 2048.0
	GyroscopeGain = 5.0 * 1.1628 * 180.0 / math.Pi

	PressureBias = -470.734
	PressureGain = 44.5497 / 1000.0
)

// AccelerometerReading is the four-axis (x, y, z, and the 45-degree Q
// axis) quantized accelerometer observation.
type AccelerometerReading struct {
	X, Y, Z, Q uint16
}

// Accelerometer evaluates the forward model: body-frame specific
// force (acceleration minus gravity, rotated into body frame), biased,
// gained, and quantized to 12 bits. Q is the 45-degree axis
// (x+y)*sqrt(1/2).
func Accelerometer(s RocketState) AccelerometerReading {
	specificForce := s.Acc.Sub(GravityAcceleration(s))
	body := s.ToBody(specificForce)
	q := (body.X + body.Y) * math.Sqrt(0.5)

	return AccelerometerReading{
		X: Quantize12(body.X*AccelerometerGain[0] + AccelerometerBias[0]),
		Y: Quantize12(body.Y*AccelerometerGain[1] + AccelerometerBias[1]),
		Z: Quantize12(body.Z*AccelerometerGain[2] + AccelerometerBias[2]),
		Q: Quantize12(q*AccelerometerGain[3] + AccelerometerBias[3]),
	}
}

// AccelerometerExpected returns the unquantized (x, y, z, q) forward
// model, used by the filter's likelihood computation.
func AccelerometerExpected(s RocketState) (x, y, z, q float64) {
	specificForce := s.Acc.Sub(GravityAcceleration(s))
	body := s.ToBody(specificForce)
	return body.X, body.Y, body.Z, (body.X + body.Y) * math.Sqrt(0.5)
}

// AccelerometerExpectedCounts returns the pre-quantization (but
// gained/biased) forward model in the same ADC-count domain as a real
// reading, for use in the quantization-aware likelihood where the
// comparison must happen in counts, not physical units.
func AccelerometerExpectedCounts(s RocketState) (x, y, z, q float64) {
	bx, by, bz, bq := AccelerometerExpected(s)
	return bx*AccelerometerGain[0] + AccelerometerBias[0],
		by*AccelerometerGain[1] + AccelerometerBias[1],
		bz*AccelerometerGain[2] + AccelerometerBias[2],
		bq*AccelerometerGain[3] + AccelerometerBias[3]
}

// GyroscopeExpectedCounts is the counts-domain counterpart of
// GyroscopeExpected.
func GyroscopeExpectedCounts(s RocketState) (x, y, z float64) {
	v := GyroscopeExpected(s)
	return v.X*GyroscopeGain + GyroscopeBias,
		v.Y*GyroscopeGain + GyroscopeBias,
		v.Z*GyroscopeGain + GyroscopeBias
}

// MagnetometerExpectedCounts is the counts-domain counterpart of
// MagnetometerExpected.
func MagnetometerExpectedCounts(s RocketState) (x, y, z float64) {
	v := MagnetometerExpected(s)
	return v.X*MagnetometerGain[0] + MagnetometerBias[0],
		v.Y*MagnetometerGain[1] + MagnetometerBias[1],
		v.Z*MagnetometerGain[2] + MagnetometerBias[2]
}

// PressureExpectedCounts is the counts-domain counterpart of
// PressureExpected.
func PressureExpectedCounts(atm *atmo.Model, s RocketState) float64 {
	return PressureExpected(atm, s)*PressureGain + PressureBias
}

// GyroscopeReading is the three-axis quantized angular rate.
type GyroscopeReading struct {
	X, Y, Z uint16
}

// Gyroscope evaluates the forward model on body-frame angular
// velocity.
func Gyroscope(s RocketState) GyroscopeReading {
	return GyroscopeReading{
		X: Quantize12(s.RotVel.X*GyroscopeGain + GyroscopeBias),
		Y: Quantize12(s.RotVel.Y*GyroscopeGain + GyroscopeBias),
		Z: Quantize12(s.RotVel.Z*GyroscopeGain + GyroscopeBias),
	}
}

// GyroscopeExpected returns the unquantized forward model.
func GyroscopeExpected(s RocketState) geo.Vec3 {
	return s.RotVel
}

// MagnetometerReading is the three-axis quantized magnetic field
// observation.
type MagnetometerReading struct {
	X, Y, Z uint16
}

var (
	MagnetometerBias = [3]float64{2048, 2048, 2048}
	MagnetometerGain = [3]float64{1.0, 1.0, 1.0}
)

// geomagneticField evaluates a reduced first-order (dipole)
// approximation of the WMM spherical-harmonic field at a geodetic
// position. The full WMM Gauss coefficient table (degree/order 12) is
// a large static data set outside the scope of the flight core; this
// dipole term captures the field's dominant north/down structure,
// which is all the forward model needs to be weighed against a noisy
// three-axis magnetometer.
func geomagneticField(g geo.Geodetic) geo.Vec3 {
	const dipoleMomentNT = 30000.0 // approximate equatorial surface field, nT
	sinLat := math.Sin(g.Lat)
	cosLat := math.Cos(g.Lat)

	north := dipoleMomentNT * cosLat
	down := 2 * dipoleMomentNT * sinLat
	return geo.Vec3{X: 0, Y: north, Z: -down} // LTP (east, north, up) with east=0 for an axial dipole
}

// Magnetometer evaluates the field at the state's geodetic position,
// rotates it into body frame via the local tangent plane, and applies
// bias/gain/quantization.
func Magnetometer(s RocketState) MagnetometerReading {
	v := MagnetometerExpected(s)
	return MagnetometerReading{
		X: Quantize12(v.X*MagnetometerGain[0] + MagnetometerBias[0]),
		Y: Quantize12(v.Y*MagnetometerGain[1] + MagnetometerBias[1]),
		Z: Quantize12(v.Z*MagnetometerGain[2] + MagnetometerBias[2]),
	}
}

// MagnetometerExpected returns the unquantized forward model in body
// frame.
func MagnetometerExpected(s RocketState) geo.Vec3 {
	g := geo.ECEFToGeodetic(s.Pos)
	fieldLTP := geomagneticField(g)
	ltpRot := geo.MakeLTPRotation(g)
	fieldECEF := ltpRot.Transpose().MulVec(fieldLTP)
	return s.ToBody(fieldECEF)
}

// Pressure evaluates altitude_to_pressure at the state's geodetic
// altitude, applies bias/gain, and quantizes.
func Pressure(atm *atmo.Model, s RocketState) uint16 {
	return Quantize12(PressureExpected(atm, s)*PressureGain + PressureBias)
}

// PressureExpected returns the unquantized pressure reading in Pa.
func PressureExpected(atm *atmo.Model, s RocketState) float64 {
	g := geo.ECEFToGeodetic(s.Pos)
	return atm.AltitudeToPressure(g.Alt)
}

// GPSReading is identity on ECEF position and velocity components.
type GPSReading struct {
	Pos, Vel geo.Vec3
}

// GPS returns the (noiseless) forward model: identity on ECEF
// components.
func GPS(s RocketState) GPSReading {
	return GPSReading{Pos: s.Pos, Vel: s.Vel}
}
