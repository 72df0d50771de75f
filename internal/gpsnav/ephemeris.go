// Package gpsnav implements GPS ephemeris subframe reassembly and the
// Keplerian satellite position/velocity computation.
package gpsnav

// Ephemeris holds the sixteen IS-GPS-200D Keplerian and perturbation
// parameters plus the issue-of-ephemeris counter, in SI units after
// parsing (radians, meters, seconds).
type Ephemeris struct {
	PRN  int
	IODE int

	Crs, DeltaN, M0   float64
	Cuc, E, Cus       float64
	SqrtA, Toe        float64
	Cic, Omega0, Cis  float64
	I0, Crc, Omega    float64
	OmegaDot, IDot    float64
}

const (
	muGPS      = 3.986005e14     // m^3/s^2
	earthRotRate = 7.2921151467e-5 // rad/s
	gpsPi      = 3.1415926535898
	gpsWeekSeconds = 604800.0
)

// signExtend interprets the low `bits` bits of v as a two's-complement
// signed integer.
func signExtend(v uint32, bits int) int64 {
	x := int64(v & ((1 << uint(bits)) - 1))
	signBit := int64(1) << uint(bits-1)
	if x&signBit != 0 {
		x -= signBit << 1
	}
	return x
}

func scaleSigned(v uint32, bits, e int) float64 {
	return float64(signExtend(v, bits)) / float64(int64(1)<<uint(e))
}

func scaleUnsigned(v uint32, bits, e int) float64 {
	mask := uint32((uint64(1) << uint(bits)) - 1)
	return float64(v&mask) / float64(int64(1)<<uint(e))
}

// Subframe2Words and Subframe3Words are the ten-word subframes with
// parity already removed, holding words 3 through 10 (index 0..7) in
// the order they arrive over the air.
type Subframe2Words [8]uint32
type Subframe3Words [8]uint32

func subframe2IODE(w Subframe2Words) int {
	return int((w[0] >> 16) & 0xFF)
}

// subframe3IODE extracts the IODE echoed in word 10 of subframe 3
// (bits above IDOT), used to confirm subframes 2 and 3 describe the
// same upload.
func subframe3IODE(w Subframe3Words) int {
	return int((w[7] >> 16) & 0xFF)
}

// ParseEphemeris decodes matching subframe 2 and 3 words into SI
// units per IS-GPS-200D scaled two's-complement fields. ok is false
// if the subframes disagree on IODE.
func ParseEphemeris(prn int, sf2 Subframe2Words, sf3 Subframe3Words) (eph Ephemeris, ok bool) {
	iode2 := subframe2IODE(sf2)
	iode3 := subframe3IODE(sf3)
	if iode2 != iode3 {
		return Ephemeris{}, false
	}

	eph.PRN = prn
	eph.IODE = iode2

	eph.Crs = scaleSigned(sf2[0], 16, 5)
	eph.DeltaN = scaleSigned(sf2[1]>>8, 16, 43) * gpsPi
	eph.M0 = scaleSigned((sf2[1]&0xFF)<<24|sf2[2], 32, 31) * gpsPi
	eph.Cuc = scaleSigned(sf2[3]>>8, 16, 29)
	eph.E = scaleUnsigned((sf2[3]&0xFF)<<24|sf2[4], 32, 33)
	eph.Cus = scaleSigned(sf2[5]>>8, 16, 29)
	eph.SqrtA = scaleUnsigned((sf2[5]&0xFF)<<24|sf2[6], 32, 19)
	eph.Toe = scaleUnsigned(sf2[7]>>8, 16, 0) * 16

	eph.Cic = scaleSigned(sf3[0]>>8, 16, 29)
	eph.Omega0 = scaleSigned((sf3[0]&0xFF)<<24|sf3[1], 32, 31) * gpsPi
	eph.Cis = scaleSigned(sf3[2]>>8, 16, 29)
	eph.I0 = scaleSigned((sf3[2]&0xFF)<<24|sf3[3], 32, 31) * gpsPi
	eph.Crc = scaleSigned(sf3[4]>>8, 16, 5)
	eph.Omega = scaleSigned((sf3[4]&0xFF)<<24|sf3[5], 32, 31) * gpsPi
	eph.OmegaDot = scaleSigned(sf3[6], 24, 43) * gpsPi
	eph.IDot = scaleSigned(sf3[7]>>2, 14, 43) * gpsPi

	return eph, true
}
