// Package dynamics implements the rigid-body propagator and the
// deterministic sensor forward models the particle filter weighs
// observations against.
package dynamics

import "github.com/psas/rocketnav/internal/geo"

// RocketState is the complete dynamical state of a single hypothesis
// (or the simulator's truth state): ECEF position/velocity/
// acceleration, body orientation as an ECEF->body rotation, and
// body-frame angular velocity.
type RocketState struct {
	Pos, Vel, Acc geo.Vec3
	RotPos        geo.Mat3 // ECEF -> body
	RotVel        geo.Vec3 // body-frame angular velocity, rad/s
}

// ToBody rotates an ECEF vector into the body frame.
func (s RocketState) ToBody(v geo.Vec3) geo.Vec3 {
	return s.RotPos.MulVec(v)
}

// ToECEF rotates a body-frame vector into ECEF.
func (s RocketState) ToECEF(v geo.Vec3) geo.Vec3 {
	return s.RotPos.Transpose().MulVec(v)
}
