package geo

import "math"

// WGS-84 ellipsoid constants.
const (
	WGS84A = 6378137.0    // semi-major axis (m)
	WGS84B = 6356752.3142 // semi-minor axis (m)
)

// Geodetic is a WGS-84 geodetic position.
type Geodetic struct {
	Lat float64 // radians
	Lon float64 // radians
	Alt float64 // meters above the ellipsoid
}

func eccSq() float64 {
	return (WGS84A*WGS84A - WGS84B*WGS84B) / (WGS84A * WGS84A)
}

// GeodeticToECEF is the canonical WGS-84 forward transform,
// Nphi = A / sqrt(1 - e^2 sin^2(phi)).
func GeodeticToECEF(g Geodetic) Vec3 {
	e2 := eccSq()
	sinLat, cosLat := math.Sin(g.Lat), math.Cos(g.Lat)
	sinLon, cosLon := math.Sin(g.Lon), math.Cos(g.Lon)
	n := WGS84A / math.Sqrt(1-e2*sinLat*sinLat)

	return Vec3{
		X: (n + g.Alt) * cosLat * cosLon,
		Y: (n + g.Alt) * cosLat * sinLon,
		Z: (n*(1-e2) + g.Alt) * sinLat,
	}
}

// ECEFToGeodetic is Bowring's closed-form approximation, accurate to
// centimeters for altitudes under 1000 km. It handles the polar
// singularity explicitly: when the equatorial radius collapses to
// zero, latitude is returned as +-pi/2 (matching the sign of z),
// longitude as zero, and altitude as |z| - B.
func ECEFToGeodetic(r Vec3) Geodetic {
	p := math.Hypot(r.X, r.Y)
	if p < 1e-9 {
		lat := math.Pi / 2
		if r.Z < 0 {
			lat = -math.Pi / 2
		}
		return Geodetic{Lat: lat, Lon: 0, Alt: math.Abs(r.Z) - WGS84B}
	}

	e2 := eccSq()
	ep2 := (WGS84A*WGS84A - WGS84B*WGS84B) / (WGS84B * WGS84B)

	theta := math.Atan2(r.Z*WGS84A, p*WGS84B)
	sinT, cosT := math.Sin(theta), math.Cos(theta)

	lat := math.Atan2(r.Z+ep2*WGS84B*sinT*sinT*sinT, p-e2*WGS84A*cosT*cosT*cosT)
	lon := math.Atan2(r.Y, r.X)

	sinLat := math.Sin(lat)
	n := WGS84A / math.Sqrt(1-e2*sinLat*sinLat)
	alt := p/math.Cos(lat) - n

	return Geodetic{Lat: lat, Lon: lon, Alt: alt}
}

// MakeLTPRotation returns the ECEF -> local-east-north-up rotation
// matrix at the given surface point.
func MakeLTPRotation(g Geodetic) Mat3 {
	sinLat, cosLat := math.Sin(g.Lat), math.Cos(g.Lat)
	sinLon, cosLon := math.Sin(g.Lon), math.Cos(g.Lon)

	var m Mat3
	// east
	m.M[0][0] = -sinLon
	m.M[0][1] = cosLon
	m.M[0][2] = 0
	// north
	m.M[1][0] = -sinLat * cosLon
	m.M[1][1] = -sinLat * sinLon
	m.M[1][2] = cosLat
	// up
	m.M[2][0] = cosLat * cosLon
	m.M[2][1] = cosLat * sinLon
	m.M[2][2] = sinLat
	return m
}

// ECEFToLTP transforms an ECEF vector into the local tangent plane
// frame centered at origin with rotation R = MakeLTPRotation(origin).
func ECEFToLTP(origin Geodetic, r Mat3, v Vec3) Vec3 {
	originECEF := GeodeticToECEF(origin)
	return r.MulVec(v.Sub(originECEF))
}

// LTPToECEF is the inverse of ECEFToLTP.
func LTPToECEF(origin Geodetic, r Mat3, v Vec3) Vec3 {
	originECEF := GeodeticToECEF(origin)
	return r.Transpose().MulVec(v).Add(originECEF)
}
