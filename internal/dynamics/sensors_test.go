package dynamics

import (
	"math"
	"testing"

	"github.com/psas/rocketnav/internal/atmo"
	"github.com/psas/rocketnav/internal/geo"
)

func TestQuantize12ClampsToMask(t *testing.T) {
	if Quantize12(-5) != 0 {
		t.Errorf("Quantize12(-5) = %d, want 0", Quantize12(-5))
	}
	if Quantize12(1e9) != 0xFFF {
		t.Errorf("Quantize12(huge) = %d, want 0xFFF", Quantize12(1e9))
	}
}

func TestAccelerometerAtRestReadsGravityOnly(t *testing.T) {
	origin := geo.Geodetic{Lat: 0.4, Lon: 0.1, Alt: 0}
	s := RocketState{Pos: geo.GeodeticToECEF(origin), RotPos: geo.MakeLTPRotation(origin)}
	x, y, z, _ := AccelerometerExpected(s)
	// Acc is zero and gravity is subtracted, so the specific force is
	// gravity's reaction alone: EarthGravity pointing up in the
	// east-north-up body frame. Gravity is radial while the LTP up axis
	// is the ellipsoid normal, so a few hundredths of m/s^2 land on the
	// north axis.
	if math.Abs(x) > 1e-9 || math.Abs(y) > 0.05 || math.Abs(z-EarthGravity) > 1e-3 {
		t.Errorf("expected (0, ~0, %v) specific force at rest, got (%v,%v,%v)", EarthGravity, x, y, z)
	}
}

func TestPressureExpectedMatchesAtmosphere(t *testing.T) {
	m := atmo.New(0, 0)
	origin := geo.Geodetic{Lat: 0, Lon: 0, Alt: 1000}
	s := RocketState{Pos: geo.GeodeticToECEF(origin)}
	got := PressureExpected(m, s)
	want := m.AltitudeToPressure(1000)
	if got != want {
		t.Errorf("PressureExpected = %v, want %v", got, want)
	}
}

func TestQuantizedLogLikelihoodPeaksAtExpected(t *testing.T) {
	atExpected := QuantizedLogLikelihood(2048, 2048, 50)
	offExpected := QuantizedLogLikelihood(2048, 2548, 50)
	if atExpected <= offExpected {
		t.Errorf("likelihood at expected (%v) should exceed likelihood 500 counts off (%v)", atExpected, offExpected)
	}
}
