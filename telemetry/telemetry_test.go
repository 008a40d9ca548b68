package telemetry

import "testing"

func TestRecordRoundTrip(t *testing.T) {
	r := Record{Timestamp: 0xDEADBEEF, Instantaneous: -123, Averaged: 456}
	b, err := r.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	if len(b) != wireSize {
		t.Fatalf("encoded length = %d, want %d", len(b), wireSize)
	}
	var got Record
	if err := got.UnmarshalBinary(b); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}
	if got != r {
		t.Fatalf("round trip = %+v, want %+v", got, r)
	}
}

func TestUnmarshalShortRecord(t *testing.T) {
	var r Record
	if err := r.UnmarshalBinary([]byte{1, 2, 3}); err != ErrShortRecord {
		t.Fatalf("UnmarshalBinary on short input = %v, want ErrShortRecord", err)
	}
}
