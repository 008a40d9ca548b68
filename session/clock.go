// Package session implements the Session Orchestrator (spec.md §4.2,
// layer L1): the Configuration Sub-FSM (L1a), the ADC Sub-FSM (L1b),
// and the combinational Arbiter (L1c) that selects between them on the
// foreground super-loop's cadence. Grounded on
// _examples/original_source/src/pyro_fsm.c, translated state-for-state
// from its enums and switch statements into Go.
package session

// elapsed reports whether more than timeout milliseconds have passed
// since start, as measured against now. Uses ordinary unsigned
// wraparound subtraction: since now and start are both hal.Clock
// ticks taken no more than one wrap apart in practice, now-start
// (mod 2^32) is the correct elapsed duration even across a wrap of the
// millisecond counter.
func elapsed(now, start, timeout uint32) bool {
	return now-start > timeout
}

// clockSource is the subset of hal.Clock the sub-FSMs need; defined
// locally so tests can supply a bare function.
type clockSource interface {
	Ticks() uint32
}
