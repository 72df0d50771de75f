package harness

import "testing"

func TestSubframeIDFromHOW(t *testing.T) {
	cases := []struct {
		how  uint32
		want int
	}{
		{0x200, 2},
		{0x300, 3},
		{0x100, 1},
	}
	for _, c := range cases {
		if got := subframeIDFromHOW(c.how); got != c.want {
			t.Errorf("subframeIDFromHOW(0x%x) = %d, want %d", c.how, got, c.want)
		}
	}
}

func TestIngestProducesValidatedEphemerisOnMatchingIODE(t *testing.T) {
	d := NewSubframeDecoder()

	sf2 := [8]uint32{0xc40d92, 0x2b475f, 0x772e13, 0x0bee01, 0x63fdf3, 0x0d5ca1, 0x0d6475, 0x00007f}
	sf3 := [8]uint32{0xfffb2e, 0xd811cd, 0xffe128, 0x4a5fe4, 0x21d82d, 0x42f0d9, 0xffa8f3, 0xc4198b}

	if _, ok := d.Ingest(13, 0, 0x200, sf2); ok {
		t.Fatal("expected no validated ephemeris after subframe 2 alone")
	}
	eph, ok := d.Ingest(13, 0, 0x300, sf3)
	if !ok {
		t.Fatal("expected a validated ephemeris once subframe 3 completes the matching pair")
	}
	if eph.PRN != 13 {
		t.Errorf("PRN = %d, want 13", eph.PRN)
	}
	if eph.IODE != 0xc4 {
		t.Errorf("IODE = %#x, want 0xc4", eph.IODE)
	}

	got, ok := d.Ephemeris(13)
	if !ok || got != eph {
		t.Error("Ephemeris(13) did not return the just-validated ephemeris")
	}
}

func TestIngestIgnoresNonNavigationSubframes(t *testing.T) {
	d := NewSubframeDecoder()
	if _, ok := d.Ingest(5, 0, 0x100, [8]uint32{}); ok {
		t.Fatal("subframe 1 carries no ephemeris fields and must never validate")
	}
}
