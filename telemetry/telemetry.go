// Package telemetry defines the wire record the Application FSM
// emits for each processed ADC reading, and the Sink it hands records
// to. It does not implement transmission: spec.md scopes UART/DMA
// transport to board integration, outside the core. Grounded on
// _examples/original_source/inc/uart.h's packed BufItem struct.
package telemetry

import (
	"encoding/binary"
	"errors"
)

// Record is one timestamped (instantaneous, windowed-average) ADC
// reading pair, matching uart.h's BufItem layout: a 4-byte timestamp
// followed by two 2-byte signed ADC values, big-endian on the wire.
type Record struct {
	Timestamp     uint32
	Instantaneous int16
	Averaged      int16
}

const wireSize = 4 + 2 + 2

// MarshalBinary encodes r as an 8-byte big-endian record. Unlike
// BufItem's raw in-memory layout, the wire encoding is explicit and
// endianness-fixed so it round-trips across host/target byte order.
func (r Record) MarshalBinary() ([]byte, error) {
	b := make([]byte, wireSize)
	binary.BigEndian.PutUint32(b[0:4], r.Timestamp)
	binary.BigEndian.PutUint16(b[4:6], uint16(r.Instantaneous))
	binary.BigEndian.PutUint16(b[6:8], uint16(r.Averaged))
	return b, nil
}

// UnmarshalBinary decodes an 8-byte big-endian record produced by
// MarshalBinary.
func (r *Record) UnmarshalBinary(b []byte) error {
	if len(b) < wireSize {
		return ErrShortRecord
	}
	r.Timestamp = binary.BigEndian.Uint32(b[0:4])
	r.Instantaneous = int16(binary.BigEndian.Uint16(b[4:6]))
	r.Averaged = int16(binary.BigEndian.Uint16(b[6:8]))
	return nil
}

// ErrShortRecord is returned by UnmarshalBinary when given fewer than
// 8 bytes.
var ErrShortRecord = errors.New("telemetry: record shorter than 8 bytes")

// Sink accepts Records for eventual transmission. The concrete
// implementation (UART/DMA, a log file, a test spy) is board
// integration, not part of the core.
type Sink interface {
	Enqueue(Record) error
}
