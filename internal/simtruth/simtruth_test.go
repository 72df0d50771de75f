package simtruth

import (
	"testing"

	"github.com/psas/rocketnav/internal/atmo"
	"github.com/psas/rocketnav/internal/geo"
)

func TestAtRestStaysAtRest(t *testing.T) {
	origin := geo.Geodetic{Lat: 0.3, Lon: 0.1, Alt: 0}
	sim := New(origin, atmo.New(101325, 288.15))

	for i := 0; i < 100; i++ {
		sim.Tick(0.01)
	}

	alt := geo.ECEFToGeodetic(sim.State.Pos).Alt
	if alt < -1 || alt > 1 {
		t.Errorf("altitude drifted to %v at rest with no thrust", alt)
	}
}

func TestIgniteProducesAscent(t *testing.T) {
	origin := geo.Geodetic{Lat: 0.3, Lon: 0.1, Alt: 0}
	sim := New(origin, atmo.New(101325, 288.15))
	sim.Ignite()

	for i := 0; i < 200; i++ {
		sim.Tick(0.01)
	}

	alt := geo.ECEFToGeodetic(sim.State.Pos).Alt
	if alt <= 0 {
		t.Errorf("expected positive altitude gain after 2s of burn, got %v", alt)
	}
}

func TestIgniteIsIdempotent(t *testing.T) {
	origin := geo.Geodetic{Lat: 0, Lon: 0, Alt: 0}
	sim := New(origin, atmo.New(101325, 288.15))
	sim.Ignite()
	firstIgnition := sim.ignitionTime
	sim.Tick(0.1)
	sim.Ignite()
	if sim.ignitionTime != firstIgnition {
		t.Error("a second Ignite() while burning must not reset ignition time")
	}
}

func TestGroundClipPreventsFallingThroughLaunchSurface(t *testing.T) {
	origin := geo.Geodetic{Lat: 0, Lon: 0, Alt: 0}
	sim := New(origin, atmo.New(101325, 288.15))

	for i := 0; i < 500; i++ {
		sim.Tick(0.01)
	}

	alt := geo.ECEFToGeodetic(sim.State.Pos).Alt
	if alt < -1 {
		t.Errorf("ground clip failed to hold altitude near the launch surface, got %v", alt)
	}
}
