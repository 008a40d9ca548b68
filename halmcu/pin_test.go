package halmcu

import (
	"testing"

	"github.com/rpiskun/pyro/hal"
)

// callLog is a Registers fake that records every call, in order, so
// tests can assert on edge-safety ordering rather than just final
// state.
type callLog struct {
	calls []string
	data  bool
	dir   bool
}

func (c *callLog) SetData(high bool) {
	c.calls = append(c.calls, "SetData")
	c.data = high
}

func (c *callLog) SetDir(output bool) {
	c.calls = append(c.calls, "SetDir")
	c.dir = output
}

func (c *callLog) GetData() bool {
	c.calls = append(c.calls, "GetData")
	return c.data
}

func TestOutSetsDataBeforeDirection(t *testing.T) {
	r := &callLog{}
	p := NewDirPin(r)
	if err := p.Out(true); err != nil {
		t.Fatalf("Out: %v", err)
	}
	if len(r.calls) != 2 || r.calls[0] != "SetData" || r.calls[1] != "SetDir" {
		t.Fatalf("call order = %v, want [SetData SetDir]", r.calls)
	}
	if !r.dir {
		t.Fatalf("direction not switched to output")
	}
}

func TestInDoesNotTouchDataRegister(t *testing.T) {
	r := &callLog{}
	p := NewDirPin(r)
	if err := p.In(hal.PullNone); err != nil {
		t.Fatalf("In: %v", err)
	}
	for _, c := range r.calls {
		if c == "SetData" {
			t.Fatalf("In touched the data register; call log = %v", r.calls)
		}
	}
	if len(r.calls) != 1 || r.calls[0] != "SetDir" {
		t.Fatalf("call log = %v, want [SetDir]", r.calls)
	}
	if r.dir {
		t.Fatalf("direction not switched to input")
	}
}
