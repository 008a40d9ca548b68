package session

import "github.com/rpiskun/pyro/pyd1588"

// Timing constants for the Configuration Sub-FSM, in foreground ticks
// of the sub-FSM's clock (milliseconds on real hardware). Grounded on
// _examples/original_source/src/pyro_fsm.c's PYRO_* defines.
const (
	confApplyDelay  = 3 // ticks to wait after write before polling readiness
	readyTimeout    = 6 // ticks before giving up waiting for engine readiness
	readRetries     = 2 // extra forced reads before re-issuing the write
	confCheckRetries = 2 // extra re-reads before re-issuing the write on mismatch
)

type confState uint8

const (
	confWaitForWrite confState = iota
	confWrite
	confWaitForApplying
	confWaitForRead
	confRead
	confWaitForCheck
	confCheck
	confReady
)

type readiness uint8

const (
	readinessPending readiness = iota
	readinessOK
	readinessTimeout
)

// configFSM is the Configuration Sub-FSM (L1a): writes a pending
// configuration word to the engine, waits out the sensor's internal
// apply delay, reads it back, and retries on timeout or read-back
// mismatch up to a bounded number of times before re-issuing the
// write from scratch.
type configFSM struct {
	engine *pyd1588.Engine
	clock  clockSource

	state confState

	pendingWord     pyd1588.Word
	updateRequested bool

	firstTick      uint32
	readRetryCnt   uint32
	checkRetryCnt  uint32

	mirrored     pyd1588.Config
	mirroredWord pyd1588.Word
	isMirrored   bool
}

func newConfigFSM(e *pyd1588.Engine, clk clockSource) *configFSM {
	return &configFSM{engine: e, clock: clk, state: confWaitForWrite}
}

// requestUpdate latches a new word to write. Setting a new word
// atomically (from the Arbiter's point of view, since both run on the
// same foreground thread) arms update_requested; the next Tick clears
// it and restarts the sub-FSM from the top, preempting whatever it was
// doing.
func (c *configFSM) requestUpdate(word pyd1588.Word) {
	c.pendingWord = word
	c.updateRequested = true
	c.isMirrored = false
}

// isReady reports whether the last requested configuration has been
// written, read back, and confirmed to match.
func (c *configFSM) isReady() bool {
	return c.state == confReady
}

func (c *configFSM) isSensorReady() readiness {
	if c.engine.IsReady() {
		return readinessOK
	}
	if elapsed(c.clock.Ticks(), c.firstTick, readyTimeout) {
		return readinessTimeout
	}
	return readinessPending
}

// tick advances the sub-FSM by one foreground iteration. Called only
// while the Arbiter has selected update-conf as the active mode.
func (c *configFSM) tick() {
	if c.updateRequested {
		c.state = confWaitForWrite
		c.updateRequested = false
		c.firstTick = c.clock.Ticks()
	}

	switch c.state {
	case confWaitForWrite:
		r := c.isSensorReady()
		if r == readinessOK || r == readinessTimeout {
			c.state = confWrite
		}

	case confWrite:
		// Force the write regardless of engine state; BeginWrite
		// returning ErrBusy here just means a stale transaction is
		// still draining and this write attempt is dropped. The
		// sub-FSM still moves on to wait-for-applying; the read-back
		// compare then fails and the retry path re-issues the write.
		_ = c.engine.BeginWrite(c.pendingWord)
		c.checkRetryCnt = 0
		c.firstTick = c.clock.Ticks()
		c.state = confWaitForApplying

	case confWaitForApplying:
		if elapsed(c.clock.Ticks(), c.firstTick, confApplyDelay) {
			c.firstTick = c.clock.Ticks()
			c.readRetryCnt = 0
			c.state = confWaitForRead
		}

	case confWaitForRead:
		r := c.isSensorReady()
		if r == readinessOK || r == readinessTimeout {
			c.state = confRead
		}

	case confRead:
		_ = c.engine.BeginRead(pyd1588.FrameFull)
		c.firstTick = c.clock.Ticks()
		c.state = confWaitForCheck

	case confWaitForCheck:
		r := c.isSensorReady()
		switch r {
		case readinessOK:
			c.state = confCheck
		case readinessTimeout:
			if c.readRetryCnt < readRetries {
				c.state = confRead
			} else {
				c.state = confWrite
			}
			c.readRetryCnt++
		}

	case confCheck:
		// pendingWord is always produced by pyd1588.Pack, which fixes
		// the reserved fields, and the echoed frame is re-packed the
		// same way, so every configurable field is compared bit for
		// bit. The echoed reserved bits are not compared: Snapshot
		// surfaces only the unpacked Config, and Pack re-fixes them.
		snap, err := c.engine.Snapshot()
		if err == nil && pyd1588.Pack(snap.Conf) == c.pendingWord {
			c.mirrored = snap.Conf
			c.mirroredWord = c.pendingWord
			c.isMirrored = true
			c.state = confReady
		} else {
			if c.checkRetryCnt < confCheckRetries {
				c.state = confRead
			} else {
				c.state = confWrite
			}
			c.checkRetryCnt++
		}

	case confReady:
	}
}
