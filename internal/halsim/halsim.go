// Package halsim provides host-side fake implementations of the hal
// package's peripheral interfaces, so pyd1588 and session can be
// exercised by ordinary `go test` without tinygo or real hardware.
// Grounded on google-periph's conn/gpio/gpiotest fakes: a Pin that
// records its own direction/level and lets a test install a driver
// function standing in for whatever is wired to the other end.
package halsim

import "github.com/rpiskun/pyro/hal"

// Pin is a fake hal.Pin. The zero value reads Low until a Driver is
// installed.
type Pin struct {
	// Driver, if set, supplies the level Read returns whenever the pin
	// is configured as input — standing in for whatever external
	// circuit (sensor output, pull resistor) would drive the line.
	Driver func() hal.Level

	isOutput bool
	level    hal.Level
	pull     hal.Pull

	// OutHistory and InHistory record every Out/In call, in order, for
	// tests asserting on edge-safety ordering (spec.md §4.1 P6).
	OutHistory []hal.Level
	InHistory  []hal.Pull
}

func (p *Pin) Out(l hal.Level) error {
	p.level = l
	p.isOutput = true
	p.OutHistory = append(p.OutHistory, l)
	return nil
}

func (p *Pin) In(pull hal.Pull) error {
	p.isOutput = false
	p.pull = pull
	p.InHistory = append(p.InHistory, pull)
	return nil
}

func (p *Pin) Read() hal.Level {
	if !p.isOutput && p.Driver != nil {
		return p.Driver()
	}
	if !p.isOutput {
		switch p.pull {
		case hal.PullUp:
			return hal.High
		default:
			return hal.Low
		}
	}
	return p.level
}

// IsOutput reports the pin's current direction, for assertions.
func (p *Pin) IsOutput() bool { return p.isOutput }

// Timer is a fake hal.Timer. Tests drive it by calling Fire, which
// invokes the registered tick callback synchronously — standing in
// for the timer update interrupt.
type Timer struct {
	Period  uint32
	Running bool
	tick    func()

	// StartErr, if set, is returned by the next Start call instead of
	// succeeding (for testing BeginWrite/BeginRead's rollback paths).
	StartErr error
}

func (t *Timer) SetPeriod(ticks uint32) { t.Period = ticks }

func (t *Timer) Start() error {
	if t.StartErr != nil {
		err := t.StartErr
		t.StartErr = nil
		return err
	}
	t.Running = true
	return nil
}

func (t *Timer) Stop() { t.Running = false }

func (t *Timer) HandleTick(fn func()) { t.tick = fn }

// Fire invokes the registered tick callback once, as the real timer's
// interrupt would on expiry. It is a no-op if the timer isn't running.
func (t *Timer) Fire() {
	if t.Running && t.tick != nil {
		t.tick()
	}
}

// Clock is a fake hal.Clock: a manually advanceable millisecond counter.
type Clock struct {
	ms uint32
}

func (c *Clock) Ticks() uint32 { return c.ms }

// Advance moves the clock forward by delta milliseconds.
func (c *Clock) Advance(delta uint32) { c.ms += delta }

// Set pins the clock to an absolute tick value, useful for exercising
// wraparound near the uint32 boundary.
func (c *Clock) Set(ms uint32) { c.ms = ms }
