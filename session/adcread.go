package session

import "github.com/rpiskun/pyro/pyd1588"

const adcReadDelay = 75 // ticks to idle between ADC frame requests

// adcRingCapacity is the ADC ring's fixed capacity, grounded on
// _examples/original_source/src/pyro_fsm.c's ADC_BUF_SIZE.
const adcRingCapacity = 4

type adcState uint8

const (
	adcWaitReady adcState = iota
	adcRequest
	adcWaitData
	adcDelay
)

// Sample is one timestamped ADC reading pushed to the ring.
type Sample struct {
	Timestamp uint32
	ADC       int16
}

// adcRing is a fixed-capacity circular buffer of Sample, override on
// full (spec.md §3, "ADC Ring"; P7). Single producer (adcFSM.tick),
// single consumer (TryPopSample), both foreground-only — no locking.
type adcRing struct {
	// One slot beyond adcRingCapacity: head == tail means empty, so the
	// spare slot lets a full ring hold adcRingCapacity samples.
	buf        [adcRingCapacity + 1]Sample
	head, tail uint8
}

func (r *adcRing) push(s Sample) {
	r.buf[r.tail] = s
	r.tail++
	if int(r.tail) >= len(r.buf) {
		r.tail = 0
	}
	if r.head == r.tail {
		r.head++
		if int(r.head) >= len(r.buf) {
			r.head = 0
		}
	}
}

func (r *adcRing) pop() (Sample, bool) {
	if r.head == r.tail {
		return Sample{}, false
	}
	s := r.buf[r.head]
	r.head++
	if int(r.head) >= len(r.buf) {
		r.head = 0
	}
	return s, true
}

// adcFSM is the ADC Sub-FSM (L1b): periodically requests ADC frames,
// timestamps the samples whose out-of-range flag is set, and pushes
// them to the ring; samples with the flag clear are not enqueued.
type adcFSM struct {
	engine *pyd1588.Engine
	clock  clockSource

	state adcState

	readEnabled     bool
	readRequested   bool

	firstTick uint32

	ring adcRing
}

func newADCFSM(e *pyd1588.Engine, clk clockSource) *adcFSM {
	return &adcFSM{engine: e, clock: clk}
}

func (a *adcFSM) isSensorReady() readiness {
	if a.engine.IsReady() {
		return readinessOK
	}
	if elapsed(a.clock.Ticks(), a.firstTick, readyTimeout) {
		return readinessTimeout
	}
	return readinessPending
}

// start begins periodic ADC collection; reinitializes the ring.
func (a *adcFSM) start() {
	a.ring = adcRing{}
	a.readEnabled = true
	a.readRequested = true
}

// stop halts periodic ADC collection. The ring keeps any unread samples.
func (a *adcFSM) stop() {
	a.readEnabled = false
	a.readRequested = false
}

// reinit is called by the Arbiter when a configuration update
// preempts an in-flight ADC read: the sub-FSM re-synchronizes from
// wait-ready the next time it becomes active, without losing
// readEnabled / the ring's contents.
func (a *adcFSM) reinit() {
	if a.readEnabled {
		a.readRequested = true
	}
}

func (a *adcFSM) tick() {
	if a.readRequested {
		a.state = adcWaitReady
		a.readRequested = false
		a.firstTick = a.clock.Ticks()
	}

	switch a.state {
	case adcWaitReady:
		r := a.isSensorReady()
		if r == readinessOK || r == readinessTimeout {
			a.state = adcRequest
		}

	case adcRequest:
		_ = a.engine.BeginRead(pyd1588.FrameADC)
		a.firstTick = a.clock.Ticks()
		a.state = adcWaitData

	case adcWaitData:
		r := a.isSensorReady()
		switch r {
		case readinessOK:
			snap, err := a.engine.Snapshot()
			if err == nil && snap.OutOfRange {
				a.ring.push(Sample{Timestamp: a.clock.Ticks(), ADC: snap.ADC})
			}
			a.firstTick = a.clock.Ticks()
			a.state = adcDelay
		case readinessTimeout:
			a.firstTick = a.clock.Ticks()
			a.state = adcDelay
		}

	case adcDelay:
		if elapsed(a.clock.Ticks(), a.firstTick, adcReadDelay) {
			a.state = adcWaitReady
		}
	}
}
