package atmo

import (
	"math"
	"testing"
)

func TestAltitudePressureRoundTrip(t *testing.T) {
	m := New(0, 0)
	for h := 0.0; h < MaximumAltitude; h += 1000 {
		p := m.AltitudeToPressure(h)
		back, err := m.PressureToAltitude(p)
		if err != nil {
			t.Fatalf("PressureToAltitude(%v): %v", p, err)
		}
		if math.Abs(back-h) > 1.0 {
			t.Errorf("h=%v: round trip = %v, want within 1 m", h, back)
		}
	}
}

func TestPressureMonotonicallyDecreasing(t *testing.T) {
	m := New(0, 0)
	prev := m.AltitudeToPressure(0)
	for h := 100.0; h <= MaximumAltitude; h += 100 {
		p := m.AltitudeToPressure(h)
		if p >= prev {
			t.Fatalf("pressure not strictly decreasing at h=%v: prev=%v cur=%v", h, prev, p)
		}
		prev = p
	}
}

func TestPressureToAltitudeEdgeCases(t *testing.T) {
	m := New(0, 0)

	if _, err := m.PressureToAltitude(-1); err == nil {
		t.Error("expected error for negative pressure")
	}

	h, err := m.PressureToAltitude(m.basePressure[0] + 1000)
	if err != nil {
		t.Fatal(err)
	}
	if h != 0 {
		t.Errorf("pressure above ground base: altitude = %v, want 0", h)
	}

	h, err = m.PressureToAltitude(MinimumPressure / 2)
	if err != nil {
		t.Fatal(err)
	}
	if h != MaximumAltitude {
		t.Errorf("pressure below minimum: altitude = %v, want %v", h, MaximumAltitude)
	}
}

func TestGroundCalibration(t *testing.T) {
	m := New(99000, 290)
	if m.AltitudeToPressure(0) != 99000 {
		t.Errorf("calibrated ground pressure = %v, want 99000", m.AltitudeToPressure(0))
	}
}
