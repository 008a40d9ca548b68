package session

import (
	"github.com/rpiskun/pyro/hal"
	"github.com/rpiskun/pyro/pyd1588"
)

type basicState uint8

const (
	basicIdle basicState = iota
	basicUpdateConf
	basicReadADC
)

// Session is the top-level Session Orchestrator: it owns the Wire
// Engine and both sub-FSMs, and runs the Arbiter (L1c) that decides,
// every foreground tick, which sub-FSM gets to run. A configuration
// update request always preempts an in-flight ADC read; the ADC
// sub-FSM re-synchronizes once the configuration update completes.
// Grounded on
// _examples/original_source/src/pyro_fsm.c's Pyro_Fsm/Pyro_Init.
type Session struct {
	engine *pyd1588.Engine
	conf   *configFSM
	adc    *adcFSM

	state basicState
}

// New wires a Session around an already-constructed Wire Engine and a
// millisecond clock source.
func New(engine *pyd1588.Engine, clock hal.Clock) *Session {
	return &Session{
		engine: engine,
		conf:   newConfigFSM(engine, clock),
		adc:    newADCFSM(engine, clock),
		state:  basicIdle,
	}
}

// RequestConfigUpdate latches word for upload on the next Tick,
// preempting any in-flight ADC read. Equivalent to the original
// firmware's Pyro_UpdateConf.
func (s *Session) RequestConfigUpdate(word pyd1588.Word) {
	s.conf.requestUpdate(word)
}

// StartADC begins periodic ADC sample collection. Samples only begin
// accumulating once the most recent configuration update has
// completed; until a configuration has been requested and confirmed,
// the ADC sub-FSM does not run.
func (s *Session) StartADC() {
	s.adc.start()
}

// StopADC halts periodic ADC sample collection. Already-collected
// samples remain poppable.
func (s *Session) StopADC() {
	s.adc.stop()
}

// TryPopSample returns the oldest unread ADC sample, if any.
func (s *Session) TryPopSample() (Sample, bool) {
	return s.adc.ring.pop()
}

// IsConfigMirrored reports whether the last requested configuration
// has been written to and read back from the sensor and matched
// bit-for-bit. Equivalent to the original firmware's
// Pyro_IsConfUpdated.
func (s *Session) IsConfigMirrored() bool {
	return s.conf.isMirrored
}

// MirroredConfig returns the last read-back-confirmed configuration
// and the wire word it was packed from. Valid only once
// IsConfigMirrored reports true.
func (s *Session) MirroredConfig() (pyd1588.Config, pyd1588.Word) {
	return s.conf.mirrored, s.conf.mirroredWord
}

// Tick runs the Arbiter for one foreground super-loop iteration: it
// selects which sub-FSM is active, then advances it.
func (s *Session) Tick() {
	if s.conf.updateRequested {
		s.state = basicUpdateConf
		// An ongoing ADC read gets reset; it resumes from wait-ready
		// once the configuration update finishes.
		s.adc.reinit()
	} else if s.conf.isReady() {
		if s.adc.readEnabled {
			s.state = basicReadADC
		} else {
			s.state = basicIdle
		}
	}

	switch s.state {
	case basicIdle:
	case basicUpdateConf:
		s.conf.tick()
	case basicReadADC:
		s.adc.tick()
	}
}
