package gpsnav

import "math"

// wrapWeek folds tk into the +-half-week range required before
// solving for mean anomaly, per IS-GPS-200D.
func wrapWeek(tk float64) float64 {
	switch {
	case tk > gpsWeekSeconds/2:
		return tk - gpsWeekSeconds
	case tk < -gpsWeekSeconds/2:
		return tk + gpsWeekSeconds
	default:
		return tk
	}
}

// solveKepler solves E - e*sin(E) = M via ten fixed iterations of the
// Lyapunov form X(i+1) = e*sin(M+X(i)); error is bounded by
// e^11/(1-e) for GPS eccentricities <= 0.03.
func solveKepler(m, e float64) float64 {
	x := 0.0
	for i := 0; i < 10; i++ {
		x = e * math.Sin(m+x)
	}
	return x
}

// SatellitePosition computes a GPS satellite's ECEF position and
// velocity at time t (seconds, GPS time of week) from a validated
// ephemeris, using the IS-GPS-200D orbital chain: mean motion, Kepler
// solution, harmonic perturbations, and Earth-rotation correction. The
// velocity uses the analytic derivative (Remondi).
func SatellitePosition(eph Ephemeris, t float64) (pos, vel [3]float64) {
	a := eph.SqrtA * eph.SqrtA
	n0 := math.Sqrt(muGPS/(a*a*a))
	n := n0 + eph.DeltaN

	tk := wrapWeek(t - eph.Toe)
	mk := eph.M0 + n*tk

	x := solveKepler(mk, eph.E)
	ek := mk + x

	sinE, cosE := math.Sin(ek), math.Cos(ek)
	nuK := math.Atan2(math.Sqrt(1-eph.E*eph.E)*sinE, cosE-eph.E)
	phiK := nuK + eph.Omega

	sin2u, cos2u := math.Sin(2*phiK), math.Cos(2*phiK)
	duK := eph.Cus*sin2u + eph.Cuc*cos2u
	drK := eph.Crs*sin2u + eph.Crc*cos2u
	diK := eph.Cis*sin2u + eph.Cic*cos2u

	uK := phiK + duK
	rK := a*(1-eph.E*cosE) + drK
	iK := eph.I0 + eph.IDot*tk + diK

	xK := rK * math.Cos(uK)
	yK := rK * math.Sin(uK)

	omegaK := eph.Omega0 + (eph.OmegaDot-earthRotRate)*tk - earthRotRate*eph.Toe

	sinO, cosO := math.Sin(omegaK), math.Cos(omegaK)
	cosI := math.Cos(iK)
	sinI := math.Sin(iK)

	pos = [3]float64{
		xK*cosO - yK*cosI*sinO,
		xK*sinO + yK*cosI*cosO,
		yK * sinI,
	}

	// Analytic derivative (Remondi): differentiate the chain above
	// with respect to time, holding the harmonic correction terms'
	// rates approximated through their generating anomaly rate.
	ekDot := n / (1 - eph.E*cosE)
	phiKDot := math.Sqrt(1-eph.E*eph.E) * ekDot / (1 - eph.E*cosE)
	duKDot := 2 * phiKDot * (eph.Cus*cos2u - eph.Cuc*sin2u)
	drKDot := a*eph.E*sinE*ekDot + 2*phiKDot*(eph.Crs*cos2u-eph.Crc*sin2u)
	diKDot := eph.IDot + 2*phiKDot*(eph.Cis*cos2u-eph.Cic*sin2u)
	uKDot := phiKDot + duKDot
	omegaKDot := eph.OmegaDot - earthRotRate

	xKDot := drKDot*math.Cos(uK) - rK*uKDot*math.Sin(uK)
	yKDot := drKDot*math.Sin(uK) + rK*uKDot*math.Cos(uK)

	vel = [3]float64{
		xKDot*cosO - yKDot*cosI*sinO + yK*sinI*sinO*diKDot - (xK*sinO+yK*cosI*cosO)*omegaKDot,
		xKDot*sinO + yKDot*cosI*cosO - yK*sinI*cosO*diKDot + (xK*cosO-yK*cosI*sinO)*omegaKDot,
		yKDot*sinI + yK*cosI*diKDot,
	}

	return pos, vel
}
