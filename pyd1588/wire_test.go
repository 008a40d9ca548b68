package pyd1588

import (
	"testing"

	"github.com/rpiskun/pyro/hal"
	"github.com/rpiskun/pyro/internal/halsim"
)

func newTestEngine() (*Engine, *halsim.Pin, *halsim.Pin, *halsim.Timer) {
	si := &halsim.Pin{}
	dl := &halsim.Pin{}
	tim := &halsim.Timer{}
	e := New(si, dl, tim, ProfileA)
	return e, si, dl, tim
}

// bitsFromOutHistory extracts the third entry of every group of three
// consecutive Out calls (the low/high/value triplet driveSerialInBit
// emits per bit) and reassembles them MSB-first into a word.
func bitsFromOutHistory(t *testing.T, hist []hal.Level, n int) uint32 {
	t.Helper()
	if len(hist) < 3*n {
		t.Fatalf("history too short: got %d entries, want at least %d", len(hist), 3*n)
	}
	var w uint32
	for i := 0; i < n; i++ {
		w <<= 1
		if hist[3*i+2] == hal.High {
			w |= 1
		}
	}
	return w
}

func TestBeginWriteBusyWhileInFlight(t *testing.T) {
	e, _, _, _ := newTestEngine()
	if err := e.BeginWrite(Pack(DefaultConfig)); err != nil {
		t.Fatalf("first BeginWrite: %v", err)
	}
	if err := e.BeginWrite(Pack(DefaultConfig)); err != ErrBusy {
		t.Fatalf("second BeginWrite = %v, want ErrBusy", err)
	}
	if err := e.BeginRead(FrameADC); err != ErrBusy {
		t.Fatalf("BeginRead while writing = %v, want ErrBusy", err)
	}
	if e.IsReady() {
		t.Fatalf("IsReady true while mid-write")
	}
}

func TestBeginReadBadFrameType(t *testing.T) {
	e, _, _, _ := newTestEngine()
	if err := e.BeginRead(FrameUnknown); err != ErrBadArg {
		t.Fatalf("BeginRead(FrameUnknown) = %v, want ErrBadArg", err)
	}
	if !e.IsReady() {
		t.Fatalf("engine left non-idle after rejected BeginRead")
	}
}

func TestWriteDrivesExactBitCount(t *testing.T) {
	e, si, dl, tim := newTestEngine()
	word := Pack(Config{Threshold: 0xAA, BlindTime: 0x5, SignalSource: SignalSourceLPF})

	if err := e.BeginWrite(word); err != nil {
		t.Fatalf("BeginWrite: %v", err)
	}
	if dl.IsOutput() == false || dl.OutHistory[0] != hal.Low {
		t.Fatalf("DL not held low during config upload")
	}
	if tim.Period != ProfileA.TxNormal {
		t.Fatalf("period = %d, want TxNormal %d", tim.Period, ProfileA.TxNormal)
	}

	// One bit is driven by BeginWrite itself; 25 more ticks (24 more
	// bits, then the transition into the end sequence) are needed to
	// drive the remaining 24 bits of the 25-bit word.
	for i := 0; i < 25; i++ {
		tim.Fire()
	}
	if e.IsReady() {
		t.Fatalf("engine went idle before end sequence")
	}
	if tim.Period != ProfileA.TxEndSeq {
		t.Fatalf("period after last bit = %d, want TxEndSeq %d", tim.Period, ProfileA.TxEndSeq)
	}

	tim.Fire() // end sequence expiry
	if !e.IsReady() {
		t.Fatalf("engine not idle after end sequence")
	}
	if tim.Running {
		t.Fatalf("timer still running after write completed")
	}

	got := bitsFromOutHistory(t, si.OutHistory, configBits)
	if Word(got) != word {
		t.Fatalf("SI bit stream = %#x, want %#x", got, word)
	}
}

func TestBeginWriteRollsBackOnTimerStartFailure(t *testing.T) {
	e, _, _, tim := newTestEngine()
	tim.StartErr = hal.ErrInit
	if err := e.BeginWrite(Pack(DefaultConfig)); err != ErrBusy {
		t.Fatalf("BeginWrite with failing timer = %v, want ErrBusy", err)
	}
	if !e.IsReady() {
		t.Fatalf("engine stuck non-idle after rolled-back BeginWrite")
	}
	// A retried BeginWrite must now succeed since the engine rolled back.
	tim.StartErr = nil
	if err := e.BeginWrite(Pack(DefaultConfig)); err != nil {
		t.Fatalf("BeginWrite after rollback: %v", err)
	}
}

// driveFrame returns a DL driver function that yields the bits of
// frame (width bits, MSB first) one per call, for the test to install
// on the simulated DL pin.
func driveFrame(frame uint64, width int) func() hal.Level {
	pos := width - 1
	return func() hal.Level {
		bit := (frame >> uint(pos)) & 1
		if pos > 0 {
			pos--
		}
		if bit != 0 {
			return hal.High
		}
		return hal.Low
	}
}

func TestReadFullFrameDecodesConfigAndADC(t *testing.T) {
	e, _, dl, tim := newTestEngine()

	// out_of_range=1, adc raw=0x3FFE (-2 two's complement), conf word=0x0014_0000.
	var want uint64 = (1 << fullOutOfRangeBit) | (uint64(0x3FFE) << fullADCShift) | 0x0014_0000

	if err := e.BeginRead(FrameFull); err != nil {
		t.Fatalf("BeginRead: %v", err)
	}
	dl.Driver = driveFrame(want, fullBits)

	tim.Fire() // start sequence -> first pulse armed
	for i := 0; i < fullBits; i++ {
		tim.Fire()
	}
	tim.Fire() // end sequence

	if !e.IsReady() {
		t.Fatalf("engine not idle after full read")
	}
	snap, err := e.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if !snap.OutOfRange {
		t.Fatalf("OutOfRange = false, want true")
	}
	if snap.ADC != -2 {
		t.Fatalf("ADC = %d, want -2", snap.ADC)
	}
	if snap.Conf.Threshold != 10 {
		t.Fatalf("Conf.Threshold = %d, want 10", snap.Conf.Threshold)
	}
}

func TestReadADCFrameShort(t *testing.T) {
	e, _, dl, tim := newTestEngine()

	var want uint64 = 0x5A5A & ((1 << adcBits) - 1)

	if err := e.BeginRead(FrameADC); err != nil {
		t.Fatalf("BeginRead: %v", err)
	}
	dl.Driver = driveFrame(want, adcBits)

	tim.Fire()
	for i := 0; i < adcBits; i++ {
		tim.Fire()
	}
	tim.Fire()

	if !e.IsReady() {
		t.Fatalf("engine not idle after ADC read")
	}
	snap, err := e.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.ADC != 6746 {
		t.Fatalf("ADC = %d, want 6746", snap.ADC)
	}
	if !snap.OutOfRange {
		t.Fatalf("OutOfRange = false, want true")
	}
}

func TestSignExtendADC(t *testing.T) {
	cases := []struct {
		raw  uint16
		want int16
	}{
		{0x0000, 0},
		{0x0001, 1},
		{0x1FFF, 8191},
		{0x2000, -8192},
		{0x3FFF, -1},
		{0x3FFE, -2},
	}
	for _, c := range cases {
		if got := signExtendADC(c.raw); got != c.want {
			t.Errorf("signExtendADC(%#x) = %d, want %d", c.raw, got, c.want)
		}
	}
}

func TestSnapshotBusyWhileInFlight(t *testing.T) {
	e, _, _, _ := newTestEngine()
	if err := e.BeginRead(FrameADC); err != nil {
		t.Fatalf("BeginRead: %v", err)
	}
	if _, err := e.Snapshot(); err != ErrBusy {
		t.Fatalf("Snapshot mid-read = %v, want ErrBusy", err)
	}
}

func TestReadReleasesDirectLinkToInputAtEnd(t *testing.T) {
	e, _, dl, tim := newTestEngine()
	if err := e.BeginRead(FrameADC); err != nil {
		t.Fatalf("BeginRead: %v", err)
	}
	dl.Driver = func() hal.Level { return hal.Low }
	tim.Fire()
	for i := 0; i < adcBits; i++ {
		tim.Fire()
	}
	tim.Fire()
	if dl.IsOutput() {
		t.Fatalf("DL left as output after read completed; sensor can no longer drive it")
	}
}
