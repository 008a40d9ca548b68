// Package pyd1588 implements the Wire Engine (spec.md §4.1, layer L0):
// a hard-real-time, interrupt-driven bit-banger for the PYD1588-class
// PIR sensor's single-wire write protocol and two-wire read protocol.
//
// The Engine owns the Transaction Control Block and drives SerialIn
// (SI) and DirectLink (DL) only from Tick, which must be invoked once
// per timer expiry — from the timer's update interrupt on real
// hardware (see halmcu), or directly by a test harness simulating the
// ISR. Everything else (BeginWrite, BeginRead, IsReady, Snapshot) may
// be called from the foreground super-loop at any time; Engine uses
// sync/atomic on its state field so a foreground IsReady/Snapshot read
// observes a Tick's publication of idle without a separate lock.
package pyd1588

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rpiskun/pyro/hal"
)

// ErrBusy is returned by BeginWrite, BeginRead and Snapshot when the
// engine is mid-transaction.
var ErrBusy = errors.New("pyd1588: engine busy")

// ErrBadArg is returned by BeginRead for an unrecognized frame type.
var ErrBadArg = errors.New("pyd1588: bad frame type")

type state uint32

const (
	stateIdle state = iota
	stateTxWriteBit
	stateTxEndSeq
	stateRxStartSeq
	stateRxReadBit
	stateRxEndSeq
)

// FrameType selects which readout frame BeginRead requests.
type FrameType uint8

const (
	FrameUnknown FrameType = iota
	FrameFull              // 40-bit frame: ADC + out-of-range + config echo
	FrameADC               // 15-bit frame: ADC + out-of-range only
)

const (
	configBits = 25
	adcBits    = 15
	fullBits   = 40

	// bitsShift positions a 25-bit word so its MSB lands on bit 31 of
	// the 32-bit TX shift register, matching
	// _examples/original_source's PYD_BITS_SHIFT.
	bitsShift = 7
	msbBit32  = uint32(1) << 31

	rawADCFieldMask = 0x3FFF
	adcSignBit      = 0x2000
	adcMagnitudeMask = 0x1FFF

	fullOutOfRangeBit = 39
	fullADCShift      = 25
	adcShortOORBit    = 14
)

// Snapshot is the decoded result of the most recently completed read,
// valid only while the engine is idle (spec.md §4.1 "snapshot").
type Snapshot struct {
	Conf       Config
	ADC        int16
	OutOfRange bool
}

// Engine is the Wire Engine. It must not be copied after first use.
type Engine struct {
	si, dl hal.Pin
	tim    hal.Timer
	timing Timing

	state atomic.Uint32

	// The remaining fields are touched only from inside Tick (i.e.
	// from the timer ISR) between a begin_* call publishing a non-idle
	// state and the matching Tick that publishes idle again. begin_*
	// writes them synchronously before starting the timer, which is
	// safe because its CompareAndSwap has already claimed the engine
	// (any other begin_* call now sees it busy), and no Tick can fire
	// before the timer starts.
	txFrame       uint32
	rxFrame       uint64
	bitsRemaining int32
	frameType     FrameType
}

// New returns an Engine driving si (SerialIn) and dl (DirectLink)
// through tim, paced by timing.
func New(si, dl hal.Pin, tim hal.Timer, timing Timing) *Engine {
	e := &Engine{si: si, dl: dl, tim: tim, timing: timing}
	tim.HandleTick(e.Tick)
	return e
}

// IsReady reports whether the engine is idle. Safe to call from the
// foreground at any time.
func (e *Engine) IsReady() bool {
	return state(e.state.Load()) == stateIdle
}

// BeginWrite uploads a 25-bit configuration word. Returns ErrBusy
// without side effects if a transaction is already in flight.
func (e *Engine) BeginWrite(word Word) error {
	if !e.state.CompareAndSwap(uint32(stateIdle), uint32(stateTxWriteBit)) {
		return ErrBusy
	}
	e.txFrame = uint32(word&wordMask) << bitsShift
	e.bitsRemaining = configBits
	e.frameType = FrameUnknown

	// During config upload DirectLink must be held low (spec.md §6).
	if err := e.dl.Out(hal.Low); err != nil {
		e.abortTx()
		return ErrBusy
	}
	e.driveSerialInBit()

	e.tim.SetPeriod(e.timing.TxNormal)
	if err := e.tim.Start(); err != nil {
		e.abortTx()
		return ErrBusy
	}
	return nil
}

func (e *Engine) abortTx() {
	e.si.Out(hal.Low)
	e.state.Store(uint32(stateIdle))
}

// BeginRead requests a readout frame. Returns ErrBusy without side
// effects if a transaction is already in flight, or ErrBadArg for an
// unrecognized frame type (also without side effects).
func (e *Engine) BeginRead(ft FrameType) error {
	var bits int32
	switch ft {
	case FrameADC:
		bits = adcBits
	case FrameFull:
		bits = fullBits
	default:
		return ErrBadArg
	}
	if !e.state.CompareAndSwap(uint32(stateIdle), uint32(stateRxStartSeq)) {
		return ErrBusy
	}
	e.bitsRemaining = bits
	e.frameType = ft
	e.rxFrame = 0

	e.tim.SetPeriod(e.timing.RxStartSeq)
	if err := e.dl.Out(hal.Low); err != nil {
		e.state.Store(uint32(stateIdle))
		return ErrBusy
	}
	if err := e.tim.Start(); err != nil {
		e.state.Store(uint32(stateIdle))
		return ErrBusy
	}
	return nil
}

// Snapshot decodes the most recently completed read. Returns ErrBusy
// if the engine is mid-transaction.
func (e *Engine) Snapshot() (Snapshot, error) {
	if state(e.state.Load()) != stateIdle {
		return Snapshot{}, ErrBusy
	}
	var snap Snapshot
	switch e.frameType {
	case FrameFull:
		snap.Conf = Unpack(Word(e.rxFrame) & wordMask)
		raw := uint16(e.rxFrame>>fullADCShift) & rawADCFieldMask
		snap.ADC = signExtendADC(raw)
		snap.OutOfRange = (e.rxFrame>>fullOutOfRangeBit)&1 != 0
	case FrameADC:
		raw := uint16(e.rxFrame) & rawADCFieldMask
		snap.ADC = signExtendADC(raw)
		snap.OutOfRange = (e.rxFrame>>adcShortOORBit)&1 != 0
	default:
		return Snapshot{}, fmt.Errorf("pyd1588: no frame captured yet")
	}
	return snap, nil
}

func signExtendADC(raw uint16) int16 {
	raw &= rawADCFieldMask
	if raw&adcSignBit != 0 {
		return -int16((^raw & adcMagnitudeMask) + 1)
	}
	return int16(raw & adcMagnitudeMask)
}

// Tick advances the transaction state machine by exactly one timer
// period. It is the engine's interrupt-service routine; it must never
// be invoked concurrently with itself, and is the only code that
// mutates SI/DL and the Transaction Control Block while a transaction
// is in flight.
func (e *Engine) Tick() {
	switch state(e.state.Load()) {
	case stateTxWriteBit:
		e.bitsRemaining--
		if e.bitsRemaining > 0 {
			e.txFrame <<= 1
			e.driveSerialInBit()
			return
		}
		e.tim.SetPeriod(e.timing.TxEndSeq)
		e.si.Out(hal.Low)
		e.state.Store(uint32(stateTxEndSeq))

	case stateTxEndSeq:
		e.tim.Stop()
		e.state.Store(uint32(stateIdle))

	case stateRxStartSeq:
		e.tim.SetPeriod(e.timing.RxPerBit)
		e.pulseDirectLink()
		e.state.Store(uint32(stateRxReadBit))

	case stateRxReadBit:
		if e.dl.Read() == hal.High {
			e.rxFrame |= 1
		}
		e.bitsRemaining--
		if e.bitsRemaining > 0 {
			e.rxFrame <<= 1
			e.pulseDirectLink()
			return
		}
		e.tim.SetPeriod(e.timing.RxEndSeq)
		e.dl.Out(hal.Low)
		e.state.Store(uint32(stateRxEndSeq))

	case stateRxEndSeq:
		e.dl.In(hal.PullNone)
		e.tim.Stop()
		e.state.Store(uint32(stateIdle))
	}
}

// driveSerialInBit emits the per-bit start-condition pulse on SI
// (low->high) and then the bit's value for the rest of the period,
// per spec.md §6's TX bit encoding.
func (e *Engine) driveSerialInBit() {
	e.si.Out(hal.Low)
	e.si.Out(hal.High)
	if e.txFrame&msbBit32 != 0 {
		e.si.Out(hal.High)
	} else {
		e.si.Out(hal.Low)
	}
}

// pulseDirectLink emits one RX clock pulse on DL (low->high while
// driven, then release to input so the sensor can drive its bit),
// per spec.md §6's RX bit encoding.
func (e *Engine) pulseDirectLink() {
	e.dl.Out(hal.Low)
	e.dl.Out(hal.High)
	e.dl.In(hal.PullNone)
}
