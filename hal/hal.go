// Package hal defines the peripheral boundary the Wire Engine drives:
// two GPIO lines, one reprogrammable hardware timer, and a free-running
// millisecond tick source. Concrete implementations live in halmcu
// (real hardware, tinygo-only) and internal/halsim (host simulation for
// tests). Shaped after periph.io/x/conn/v3/gpio's PinIO so a periph pin
// can satisfy Pin with a one-line adapter.
package hal

import "errors"

// Level is the level of a GPIO line.
type Level bool

const (
	Low  Level = false
	High Level = true
)

func (l Level) String() string {
	if l == High {
		return "High"
	}
	return "Low"
}

// Pull is the input pull resistor configuration for a pin switched to input.
type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

// Pin is a single GPIO line that can be switched between push-pull
// output and pulled input. Implementations must honor the edge-safety
// ordering in spec.md §4.1: Out must settle the output data register
// before (or atomically with) flipping the direction bit to output, and
// In must not touch the data register when flipping back to input —
// the line is left to the pull resistor / external driver.
type Pin interface {
	// Out drives the pin as an output at the given level.
	Out(l Level) error
	// In switches the pin to input with the given pull.
	In(pull Pull) error
	// Read returns the current level. Undefined unless In was called
	// more recently than Out.
	Read() Level
}

// Timer is a free-running hardware timer with a reprogrammable
// auto-reload period and one interrupt per expiry.
type Timer interface {
	// SetPeriod reprograms the auto-reload register, in timer ticks.
	// Takes effect on the next reload.
	SetPeriod(ticks uint32)
	// Start arms the timer and enables its update interrupt. The
	// interrupt must invoke the callback registered with HandleTick
	// for every expiry until Stop is called.
	Start() error
	// Stop disables the timer and its interrupt.
	Stop()
	// HandleTick registers the function to invoke on every timer
	// expiry. Implementations call it from interrupt context; it must
	// be registered once, before the first Start.
	HandleTick(fn func())
}

// Clock is a free-running millisecond tick source (the HAL_GetTick()
// of the original firmware).
type Clock interface {
	Ticks() uint32
}

// ErrInit is returned by hardware bring-up when a peripheral failed to
// initialize. It is fatal: callers should halt rather than retry.
var ErrInit = errors.New("hal: peripheral initialization failed")
