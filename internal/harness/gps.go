package harness

import (
	"github.com/psas/rocketnav/internal/gpsnav"
)

// subframeIDFromHOW extracts the 3-bit subframe ID from the
// Hand-Over Word per IS-GPS-200D: bits 20-22 of the 30-bit word,
// counting from the MSB, equivalently bits 8-10 counting from the LSB
// when the full 30-bit word, parity bits included, occupies the low
// 30 bits of how.
func subframeIDFromHOW(how uint32) int {
	return int((how >> 8) & 0x7)
}

// SubframeDecoder reassembles raw GPS navigation words for every
// tracked satellite into validated ephemerides, sitting between the
// GPS receiver's raw subframe stream and gpsnav.NavBuffer. The core
// never sees this layer; only the validated Ephemeris reaches it, via
// whatever satellite-position computation the harness performs before
// calling the core's gps_sensor.
type SubframeDecoder struct {
	buf gpsnav.NavBuffer
}

// NewSubframeDecoder returns a decoder with an empty navigation
// buffer.
func NewSubframeDecoder() *SubframeDecoder { return &SubframeDecoder{} }

// Ingest feeds one complete 10-word subframe (TLM word, HOW word, then
// eight data words) for the given satellite PRN. It returns a newly
// validated ephemeris if this subframe completed a matching (IODE)
// pair of subframes 2 and 3.
func (d *SubframeDecoder) Ingest(prn int, tlm, how uint32, data [8]uint32) (gpsnav.Ephemeris, bool) {
	switch subframeIDFromHOW(how) {
	case 2:
		var words gpsnav.Subframe2Words
		copy(words[:], data[:])
		return d.buf.Subframe2(prn, words)
	case 3:
		var words gpsnav.Subframe3Words
		copy(words[:], data[:])
		return d.buf.Subframe3(prn, words)
	default:
		return gpsnav.Ephemeris{}, false
	}
}

// Ephemeris returns the last validated ephemeris for prn, if any.
func (d *SubframeDecoder) Ephemeris(prn int) (gpsnav.Ephemeris, bool) {
	return d.buf.Ephemeris(prn)
}
