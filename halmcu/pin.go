// Package halmcu adapts raw MCU GPIO/timer registers to the hal
// package's interfaces. This file is platform-independent (no build
// tag) so the edge-safety ordering it implements is host-testable;
// mcu_tinygo.go supplies the concrete Registers wired to real hardware.
//
// The register access pattern follows
// _examples/seedhammer-seedhammer/driver/pio's direct volatile-register
// manipulation: small, single-purpose setters rather than a bitfield
// struct, so the ordering between them is explicit at the call site.
package halmcu

import "github.com/rpiskun/pyro/hal"

// Registers is the minimal raw register surface a GPIO pin needs.
// Implementations talk directly to hardware (mcu_tinygo.go) or record
// call order for testing (see pin_test.go).
type Registers interface {
	// SetData writes the output data register bit.
	SetData(high bool)
	// SetDir switches the pin direction. true = output.
	SetDir(output bool)
	// GetData reads the input data register bit.
	GetData() bool
}

// DirPin implements hal.Pin over Registers, enforcing the edge-safety
// ordering spec.md §4.1 requires: the data register must be settled
// before the direction register switches to output (so the line never
// glitches through the opposite level while becoming an output), and
// the data register must not be touched when switching to input (the
// external driver or pull resistor owns the level from that point).
type DirPin struct {
	r Registers
}

// NewDirPin returns a DirPin driving r.
func NewDirPin(r Registers) *DirPin {
	return &DirPin{r: r}
}

func (p *DirPin) Out(l hal.Level) error {
	p.r.SetData(bool(l))
	p.r.SetDir(true)
	return nil
}

func (p *DirPin) In(pull hal.Pull) error {
	p.r.SetDir(false)
	_ = pull // ignored: Registers has no pull-resistor setter, so the pad keeps its current pull
	return nil
}

func (p *DirPin) Read() hal.Level {
	return hal.Level(p.r.GetData())
}
