package hal

import "periph.io/x/conn/v3/gpio"

// PeriphPin adapts a periph.io/x/conn/v3/gpio.PinIO to Pin, so the Wire
// Engine can be bench-tested against real GPIO on a development host
// (e.g. a Raspberry Pi's sysfs-backed pins) without tinygo or real
// sensor hardware. hal.Level/hal.Pull are deliberately shaped to mirror
// gpio.Level/gpio.Pull so the conversions here are trivial.
type PeriphPin struct {
	pin gpio.PinIO
}

// NewPeriphPin wraps a periph pin as a Pin.
func NewPeriphPin(pin gpio.PinIO) *PeriphPin {
	return &PeriphPin{pin: pin}
}

func (p *PeriphPin) Out(l Level) error {
	return p.pin.Out(gpio.Level(l))
}

func (p *PeriphPin) In(pull Pull) error {
	var gp gpio.Pull
	switch pull {
	case PullUp:
		gp = gpio.PullUp
	case PullDown:
		gp = gpio.PullDown
	default:
		gp = gpio.Float
	}
	// Edge detection is never used by the Wire Engine: it always
	// polls Read() on its own timer tick rather than waiting on an
	// interrupt from the pin itself.
	return p.pin.In(gp, gpio.NoEdge)
}

func (p *PeriphPin) Read() Level {
	return Level(p.pin.Read())
}
