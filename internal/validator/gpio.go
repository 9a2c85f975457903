package validator

import (
	"fmt"

	"github.com/retroenv/rboardcheck/internal/diag"
	"github.com/retroenv/rboardcheck/internal/peripheral"
	"github.com/retroenv/rboardcheck/internal/pin"
)

// GPIO validates digital I/O pins. Every physical pin can be used, only pins
// outside of the physical range are rejected.
type GPIO struct {
	base
}

// NewGPIO returns the GPIO validator.
func NewGPIO() *GPIO {
	t := table{}
	for _, p := range pin.All() {
		t[p] = []Capability{{
			Function: "IO",
			Group:    "PORT" + p.Port.String(),
			Register: p.Register(),
		}}
	}
	return &GPIO{base: newBase(peripheral.GPIO, t, nil)}
}

// Validate checks that the pin exists.
func (v *GPIO) Validate(p pin.Pin, _ Request) (Result, error) {
	caps, ok := v.table[p]
	if !ok {
		return Result{}, fmt.Errorf("%w: invalid pin [%d,%d], valid ports: A(0-4), B(0-15)",
			diag.PinOutOfRange, p.Port, p.Number)
	}
	return Result{Capability: caps[0]}, nil
}
