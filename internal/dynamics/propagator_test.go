package dynamics

import (
	"testing"

	"github.com/psas/rocketnav/internal/geo"
)

// Invariant 8: a particle at rest on the surface, with zero
// acc/vel/rotvel and no process noise or thrust, must not move more
// than 1mm per 1ms step.
func TestGravityRestFixedPoint(t *testing.T) {
	origin := geo.Geodetic{Lat: 0.5, Lon: 1.0, Alt: 0}
	pos := geo.GeodeticToECEF(origin)
	s := RocketState{
		Pos:    pos,
		RotPos: geo.MakeLTPRotation(origin),
	}

	next := PredictEuler(s, 0.001)
	if moved := next.Pos.Sub(s.Pos).Abs(); moved > 1e-3 {
		t.Errorf("moved %v m in one 1ms step at rest with zero acc, want <= 1mm", moved)
	}
}

func TestPredictEulerRotationStaysProper(t *testing.T) {
	s := RocketState{
		RotPos: geo.Identity(),
		RotVel: geo.Vec3{X: 0.1, Y: 0.2, Z: -0.3},
	}
	for i := 0; i < 1000; i++ {
		s = PredictEuler(s, 0.001)
	}
	if !s.RotPos.IsRotation(1e-6) {
		t.Error("rotpos drifted away from a proper rotation after 1000 steps")
	}
}

func TestGroundClipSnapsToSurface(t *testing.T) {
	origin := geo.Geodetic{Lat: 0.3, Lon: -0.2, Alt: 100}
	below := origin
	below.Alt = 50
	s := RocketState{
		Pos: geo.GeodeticToECEF(below),
		Vel: geo.Vec3{X: 1, Y: 1, Z: -5},
	}
	clipped := GroundClip(s, origin)
	g := geo.ECEFToGeodetic(clipped.Pos)
	if g.Alt < origin.Alt-1e-3 {
		t.Errorf("clipped altitude = %v, want >= %v", g.Alt, origin.Alt)
	}
}

func TestGroundClipNoOpAboveSurface(t *testing.T) {
	origin := geo.Geodetic{Lat: 0.1, Lon: 0.1, Alt: 0}
	above := origin
	above.Alt = 5000
	s := RocketState{Pos: geo.GeodeticToECEF(above), Vel: geo.Vec3{X: 10, Y: 0, Z: 5}}
	clipped := GroundClip(s, origin)
	if clipped.Pos != s.Pos || clipped.Vel != s.Vel {
		t.Error("GroundClip modified a state above the initial surface")
	}
}
