//go:build tinygo && rp

package halmcu

import (
	"device/rp"
	"errors"
	"machine"
	"runtime/interrupt"
	"runtime/volatile"

	"github.com/rpiskun/pyro/hal"
)

// gpioRegs adapts a machine.Pin's SIO/PADS/IO_BANK0 registers to
// Registers, following
// _examples/seedhammer-seedhammer/driver/pio's direct volatile-register
// access style rather than going through machine.Pin's own
// (goroutine-oriented) API.
type gpioRegs struct {
	pin machine.Pin
}

func (g gpioRegs) SetData(high bool) {
	mask := uint32(1) << uint(g.pin)
	if high {
		rp.SIO.GPIO_OUT_SET.Set(mask)
	} else {
		rp.SIO.GPIO_OUT_CLR.Set(mask)
	}
}

func (g gpioRegs) SetDir(output bool) {
	mask := uint32(1) << uint(g.pin)
	if output {
		rp.SIO.GPIO_OE_SET.Set(mask)
	} else {
		rp.SIO.GPIO_OE_CLR.Set(mask)
	}
}

func (g gpioRegs) GetData() bool {
	return rp.SIO.GPIO_IN.Get()&(uint32(1)<<uint(g.pin)) != 0
}

// NewPin returns a hal.Pin driving the given machine pin directly
// through SIO registers, routed through DirPin for edge-safe
// direction switching.
func NewPin(pin machine.Pin) hal.Pin {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return NewDirPin(gpioRegs{pin: pin})
}

// Timer adapts one of the RP2040's general-purpose hardware timer
// alarms to hal.Timer, following the interrupt.New registration
// pattern in
// _examples/seedhammer-seedhammer/driver/dma/dma_rp2.go.
type Timer struct {
	alarmNum uint
	period   volatile.Register32
	running  bool
	fn       func()
	intr     interrupt.Interrupt
}

// NewTimer returns a Timer driven by RP2040 timer alarm alarmNum
// (0-3), at the timer's native tick rate (1 tick = 1 microsecond).
func NewTimer(alarmNum uint) *Timer {
	if alarmNum > 3 {
		panic("halmcu: invalid alarm number")
	}
	t := &Timer{alarmNum: alarmNum}
	t.intr = interrupt.New(irqForAlarm(alarmNum), t.handleInterrupt)
	t.intr.SetPriority(0xc0)
	t.intr.Enable()
	return t
}

func irqForAlarm(n uint) interrupt.ID {
	switch n {
	case 0:
		return rp.IRQ_TIMER_IRQ_0
	case 1:
		return rp.IRQ_TIMER_IRQ_1
	case 2:
		return rp.IRQ_TIMER_IRQ_2
	default:
		return rp.IRQ_TIMER_IRQ_3
	}
}

func (t *Timer) SetPeriod(ticks uint32) { t.period.Set(ticks) }

// arm schedules the next expiry on this alarm's own compare register;
// each of the four alarms has its own ALARMn register, so this must
// index by alarmNum rather than always hitting ALARM0.
func (t *Timer) arm() {
	now := rp.TIMER.TIMELR.Get()
	next := now + t.period.Get()
	switch t.alarmNum {
	case 0:
		rp.TIMER.ALARM0.Set(next)
	case 1:
		rp.TIMER.ALARM1.Set(next)
	case 2:
		rp.TIMER.ALARM2.Set(next)
	default:
		rp.TIMER.ALARM3.Set(next)
	}
}

func (t *Timer) Start() error {
	if t.fn == nil {
		return errors.New("halmcu: Start called before HandleTick")
	}
	t.arm()
	rp.TIMER.INTE.SetBits(1 << t.alarmNum)
	t.running = true
	return nil
}

func (t *Timer) Stop() {
	rp.TIMER.INTE.ClearBits(1 << t.alarmNum)
	t.running = false
}

func (t *Timer) HandleTick(fn func()) { t.fn = fn }

func (t *Timer) handleInterrupt(interrupt.Interrupt) {
	rp.TIMER.INTR.Set(1 << t.alarmNum)
	if !t.running {
		return
	}
	t.arm()
	if t.fn != nil {
		t.fn()
	}
}

// Clock reads the RP2040's free-running microsecond timer, scaled to
// milliseconds, standing in for the original firmware's HAL_GetTick().
type Clock struct{}

func (Clock) Ticks() uint32 {
	// Reading TIMELR latches TIMEHR, so the pair is one consistent
	// 64-bit microsecond count. Dividing the full count keeps the
	// millisecond value wrapping at 2^32, like HAL_GetTick().
	lo := rp.TIMER.TIMELR.Get()
	hi := rp.TIMER.TIMEHR.Get()
	return uint32((uint64(hi)<<32 | uint64(lo)) / 1000)
}
