package dynamics

import "github.com/psas/rocketnav/internal/geo"

// EarthGravity is the constant-magnitude radial gravity used by the
// propagator, per spec.md section 4.E.
const EarthGravity = 9.8 // m/s^2

// PredictEuler advances state by delta (seconds) using basic
// semi-implicit Euler integration: pos += vel*dt; vel += acc*dt. This
// is the particle filter's predict step; particles already carry an
// externally-assigned acceleration (physics plus process noise), so
// this function never computes forces itself.
func PredictEuler(s RocketState, delta float64) RocketState {
	s.Vel = s.Vel.Add(s.Acc.Scale(delta))
	s.Pos = s.Pos.Add(s.Vel.Scale(delta))
	s.RotPos = s.RotPos.Mul(geo.AxisAngle(s.RotVel.Scale(delta)))
	return s
}

// AccelFunc computes the acceleration of a state at time t (seconds
// since some epoch fixed by the caller), for use with PropagateRK4.
type AccelFunc func(t float64, s RocketState) geo.Vec3

// PropagateRK4 advances state by delta seconds with classical
// fourth-order Runge-Kutta, given an acceleration functional that
// depends on time and state (thrust ramps, mass-dependent drag,
// gravity). Orientation always advances by the same
// rotpos <- rotpos * axis_angle(rotvel*dt) rule as PredictEuler,
// independent of the translational integration order.
func PropagateRK4(s RocketState, t, delta float64, f AccelFunc) RocketState {
	k1v := f(t, s)
	k1p := s.Vel

	s1 := s
	s1.Pos = s.Pos.Add(k1p.Scale(delta / 2))
	s1.Vel = s.Vel.Add(k1v.Scale(delta / 2))
	k2v := f(t+delta/2, s1)
	k2p := s1.Vel

	s2 := s
	s2.Pos = s.Pos.Add(k2p.Scale(delta / 2))
	s2.Vel = s.Vel.Add(k2v.Scale(delta / 2))
	k3v := f(t+delta/2, s2)
	k3p := s2.Vel

	s3 := s
	s3.Pos = s.Pos.Add(k3p.Scale(delta))
	s3.Vel = s.Vel.Add(k3v.Scale(delta))
	k4v := f(t+delta, s3)
	k4p := s3.Vel

	s.Pos = s.Pos.Add(k1p.Add(k2p.Scale(2)).Add(k3p.Scale(2)).Add(k4p).Scale(delta / 6))
	s.Vel = s.Vel.Add(k1v.Add(k2v.Scale(2)).Add(k3v.Scale(2)).Add(k4v).Scale(delta / 6))
	s.Acc = f(t+delta, s)
	s.RotPos = s.RotPos.Mul(geo.AxisAngle(s.RotVel.Scale(delta)))
	return s
}

// GravityAcceleration returns the radial-toward-center gravity
// acceleration at s.Pos, magnitude EarthGravity.
func GravityAcceleration(s RocketState) geo.Vec3 {
	r := s.Pos.Abs()
	if r == 0 {
		return geo.Zero
	}
	return s.Pos.Scale(-EarthGravity / r)
}

// GroundClip snaps a state back onto the initial surface if it has
// fallen below the initial geodetic altitude, zeroing the downward
// component of velocity and acceleration. Per spec.md section 9's
// resolved open question, this is applied only by the simulator's
// truth generator, never inside the filter's predict step.
func GroundClip(s RocketState, initial geo.Geodetic) RocketState {
	g := geo.ECEFToGeodetic(s.Pos)
	if g.Alt >= initial.Alt {
		return s
	}
	g.Alt = initial.Alt
	s.Pos = geo.GeodeticToECEF(g)

	up := s.Pos.Scale(1 / s.Pos.Abs())
	s.Vel = tangentProject(s.Vel, up)
	s.Acc = tangentProject(s.Acc, up)
	return s
}

// tangentProject removes the component of v along up, zeroing any
// downward (into-ground) component.
func tangentProject(v, up geo.Vec3) geo.Vec3 {
	radial := v.Dot(up)
	if radial < 0 {
		return v.Sub(up.Scale(radial))
	}
	return v
}
