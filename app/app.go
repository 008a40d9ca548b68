// Package app implements the outer Application FSM (spec.md §4.5): it
// drains ADC samples from the Session Orchestrator, maintains a
// sliding-window average, and gates sleep entry / blind-time delay
// around motion events. It is specified only to the extent needed to
// define the contract the core owes it; its thresholds and timings
// are application policy, not part of the core's testable properties.
//
// Grounded on the outer while(1) loop of
// _examples/original_source/src/main.c and on the wake-up
// primitives (PYD_EnableWakeupEvent / PYD_DisableWakeupEvent) that
// spec.md §10 notes are referenced by the application layer but
// supplied externally by the platform integration.
package app

import (
	"github.com/rpiskun/pyro/pyd1588"
	"github.com/rpiskun/pyro/session"
	"github.com/rpiskun/pyro/telemetry"
)

// windowSize is the sliding-window length over which the instant ADC
// samples are averaged, matching spec.md §4.5's "N = 16 in the
// source".
const windowSize = 16

// Platform is the external collaborator supplying the wake-up and
// power-management primitives the original firmware leaves to board
// integration (PYD_EnableWakeupEvent, PYD_DisableWakeupEvent, and the
// MCU's own sleep entry). Controller never implements these itself.
type Platform interface {
	EnableWakeup() error
	DisableWakeup() error
	EnterSleep()
}

// Session is the subset of session.Session the Controller drives.
// Defined locally (rather than importing the concrete type) so
// Controller can be tested against a fake without pulling in the
// hardware-backed Wire Engine.
type Session interface {
	RequestConfigUpdate(word pyd1588.Word)
	StartADC()
	StopADC()
	TryPopSample() (Sample, bool)
	IsConfigMirrored() bool
}

// Sample is an alias of session.Sample so a *session.Session satisfies
// Session without an adapter.
type Sample = session.Sample

// Policy bundles the application-layer thresholds spec.md §4.5 leaves
// unspecified: the sliding-window average magnitude that counts as
// motion, and how long to hold off re-arming after one.
type Policy struct {
	Config        pyd1588.Config
	MotionThresh  int32 // average ADC magnitude that counts as motion
	BlindTimeTick uint32
}

type appState uint8

const (
	stateInit appState = iota
	stateUpdateConf
	stateForceRead
	stateSleep
	stateHandleInterrupt
	stateBlindDelay
)

// Controller is the Application FSM. It owns no hardware directly: all
// sensor access goes through Session, and all platform power
// management through Platform.
type Controller struct {
	session  Session
	platform Platform
	policy   Policy
	clock    func() uint32
	sink     telemetry.Sink

	state appState

	window    [windowSize]int32
	winFilled int
	winPos    int
	winSum    int32

	blindUntil uint32
}

// NewController builds a Controller that will request policy.Config on
// its first Tick. Every ADC sample drained from session is also handed
// to sink as a telemetry.Record (spec.md §4.5: "the core only enqueues
// records", transmission itself is board integration).
func NewController(session Session, platform Platform, policy Policy, clock func() uint32, sink telemetry.Sink) *Controller {
	return &Controller{session: session, platform: platform, policy: policy, clock: clock, sink: sink, state: stateInit}
}

// Average returns the current sliding-window mean ADC value; 0 until
// the first sample arrives.
func (c *Controller) Average() int32 {
	if c.winFilled == 0 {
		return 0
	}
	return c.winSum / int32(c.winFilled)
}

func (c *Controller) pushSample(v int16) {
	if c.winFilled == windowSize {
		c.winSum -= c.window[c.winPos]
	} else {
		c.winFilled++
	}
	c.window[c.winPos] = int32(v)
	c.winSum += int32(v)
	c.winPos++
	if c.winPos >= windowSize {
		c.winPos = 0
	}
}

// Tick advances the Application FSM by one foreground iteration. Must
// be called after session.Tick() so newly arrived samples and the
// mirrored-configuration flag are current.
func (c *Controller) Tick() {
	switch c.state {
	case stateInit:
		c.session.RequestConfigUpdate(pyd1588.Pack(c.policy.Config))
		c.state = stateUpdateConf

	case stateUpdateConf:
		if c.session.IsConfigMirrored() {
			c.session.StartADC()
			c.state = stateForceRead
		}

	case stateForceRead:
		c.drainSamples()
		if c.Average() > c.policy.MotionThresh || c.Average() < -c.policy.MotionThresh {
			c.state = stateHandleInterrupt
			return
		}
		_ = c.platform.EnableWakeup()
		c.platform.EnterSleep()
		c.state = stateSleep

	case stateSleep:
		c.drainSamples()
		if c.Average() > c.policy.MotionThresh || c.Average() < -c.policy.MotionThresh {
			_ = c.platform.DisableWakeup()
			c.state = stateHandleInterrupt
		}

	case stateHandleInterrupt:
		c.session.StopADC()
		c.blindUntil = c.clock() + c.policy.BlindTimeTick
		c.state = stateBlindDelay

	case stateBlindDelay:
		// int32 cast makes this wraparound-safe: (now - blindUntil)
		// is taken as a signed delta.
		if int32(c.clock()-c.blindUntil) >= 0 {
			c.session.StartADC()
			c.state = stateForceRead
		}
	}
}

func (c *Controller) drainSamples() {
	for {
		s, ok := c.session.TryPopSample()
		if !ok {
			return
		}
		c.pushSample(s.ADC)
		if c.sink != nil {
			rec := telemetry.Record{Timestamp: s.Timestamp, Instantaneous: s.ADC, Averaged: int16(c.Average())}
			_ = c.sink.Enqueue(rec)
		}
	}
}
