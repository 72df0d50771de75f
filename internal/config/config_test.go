package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOverridesOnlyGivenFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mission.yaml")
	body := "particles: 2500\nprocess_noise:\n  pos_sigma: 0.5\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if m.Particles != 2500 {
		t.Errorf("Particles = %d, want 2500", m.Particles)
	}
	if m.ProcessNoise.PosSigma != 0.5 {
		t.Errorf("PosSigma = %v, want 0.5", m.ProcessNoise.PosSigma)
	}
	// Fields absent from the file should keep Default()'s values.
	want := Default()
	if m.ProcessNoise.VelSigma != want.ProcessNoise.VelSigma {
		t.Errorf("VelSigma = %v, want default %v", m.ProcessNoise.VelSigma, want.ProcessNoise.VelSigma)
	}
	if m.Atmosphere.GroundPressure != want.Atmosphere.GroundPressure {
		t.Errorf("GroundPressure = %v, want default %v", m.Atmosphere.GroundPressure, want.Atmosphere.GroundPressure)
	}
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing mission file")
	}
}
