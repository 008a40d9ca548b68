//go:build tinygo && rp

// command pyronode runs the PIR motion sensor firmware core: Wire
// Engine, Session Orchestrator, and Application FSM wired to real
// RP2040 hardware. Grounded on
// _examples/seedhammer-seedhammer/cmd/controller/main.go's run()
// error-return split and log.SetFlags idiom, and on
// _examples/original_source/src/main.c's boot sequence (configure,
// start ADC, spin the super-loop forever).
package main

import (
	"log"
	"machine"
	"runtime/interrupt"

	"github.com/rpiskun/pyro/app"
	"github.com/rpiskun/pyro/halmcu"
	"github.com/rpiskun/pyro/pyd1588"
	"github.com/rpiskun/pyro/session"
	"github.com/rpiskun/pyro/telemetry"
)

const (
	// SI (SerialIn, config writes) and DL (DirectLink, motion IRQ /
	// readout) are the sensor's only two signal lines.
	pinSerialIn   = machine.GPIO2
	pinDirectLink = machine.GPIO3

	timerAlarm = 0
)

func main() {
	log.SetFlags(log.Flags() &^ (log.Ldate | log.Ltime))
	if err := run(); err != nil {
		log.Printf("pyronode: fatal: %v", err)
		errorHandler()
	}
}

func run() error {
	log.Println("pyronode: starting")

	si := halmcu.NewPin(pinSerialIn)
	dl := halmcu.NewPin(pinDirectLink)
	tim := halmcu.NewTimer(timerAlarm)
	clk := halmcu.Clock{}

	engine := pyd1588.New(si, dl, tim, pyd1588.ProfileA)
	sess := session.New(engine, clk)

	plat := boardPlatform{}
	policy := app.Policy{
		Config:        pyd1588.DefaultConfig,
		MotionThresh:  300,
		BlindTimeTick: 2000,
	}
	ctl := app.NewController(sess, plat, policy, clk.Ticks, logSink{})

	log.Println("pyronode: running")
	for {
		sess.Tick()
		ctl.Tick()
	}
}

// boardPlatform supplies the wake-up/sleep primitives spec.md leaves
// to board integration. This RP2040 target has no deep-sleep mode
// wired up yet; EnterSleep is a no-op placeholder for the board
// bring-up that follows.
type boardPlatform struct{}

func (boardPlatform) EnableWakeup() error  { return nil }
func (boardPlatform) DisableWakeup() error { return nil }
func (boardPlatform) EnterSleep()          {}

// logSink stands in for the UART/DMA telemetry transport (spec.md §9's
// named external collaborator, out of scope here): it just logs each
// record, until board integration supplies a real telemetry.Sink.
type logSink struct{}

func (logSink) Enqueue(r telemetry.Record) error {
	log.Printf("telemetry: t=%d instant=%d avg=%d", r.Timestamp, r.Instantaneous, r.Averaged)
	return nil
}

func errorHandler() {
	interrupt.Disable()
	for {
	}
}
