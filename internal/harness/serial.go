// Package harness implements the wire-level ingestion the core never
// touches: reading fixed-length frames off a serial port and routing
// raw GPS navigation subframes into validated ephemerides. It does not
// decode CAN log frames or GPS binary packets. The core only ever sees
// decoded sensor readings and aggregated ephemerides; this package
// sits entirely on the hardware side of the core/harness boundary.
package harness

import (
	"encoding/binary"
	"io"

	serial "github.com/tarm/goserial"
)

// FrameSize is the fixed-length binary frame this flight computer's
// sensor bus uses: a one-byte frame type tag followed by up to eight
// payload bytes.
const FrameSize = 9

// Frame is one decoded wire frame: a type tag and its raw payload.
type Frame struct {
	Type    byte
	Payload [8]byte
}

// SerialReader reads fixed-length frames off a serial port and returns
// them to the caller one at a time, cooperatively (it never spawns a
// goroutine of its own — the caller's read loop is the only thread
// touching the core).
type SerialReader struct {
	port io.ReadWriteCloser
}

// OpenSerial opens the named serial device at baud using goserial,
// mirroring the teacher's direct dependency on the same package for
// raw I/O.
func OpenSerial(name string, baud int) (*SerialReader, error) {
	port, err := serial.OpenPort(&serial.Config{Name: name, Baud: baud})
	if err != nil {
		return nil, err
	}
	return &SerialReader{port: port}, nil
}

// Close releases the underlying port.
func (r *SerialReader) Close() error { return r.port.Close() }

// ReadFrame blocks until one fixed-length frame has been read.
func (r *SerialReader) ReadFrame() (Frame, error) {
	var buf [FrameSize]byte
	if _, err := io.ReadFull(r.port, buf[:]); err != nil {
		return Frame{}, err
	}
	var f Frame
	f.Type = buf[0]
	copy(f.Payload[:], buf[1:])
	return f, nil
}

// PayloadUint16 decodes the first two payload bytes as a big-endian
// 12-bit ADC reading, the wire format every quantized sensor frame
// uses.
func (f Frame) PayloadUint16() uint16 {
	return binary.BigEndian.Uint16(f.Payload[:2]) & 0xFFF
}
