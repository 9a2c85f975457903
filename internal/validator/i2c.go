package validator

import (
	"fmt"

	"github.com/retroenv/rboardcheck/internal/peripheral"
	"github.com/retroenv/rboardcheck/internal/pin"
)

// I2C validates I2C bus pins. The firmware only uses the I2C2 module with
// fixed pins at 100kHz.
type I2C struct {
	base
}

// NewI2C returns the I2C validator.
func NewI2C() *I2C {
	t := table{
		pin.MustParse("B2"): {{Function: "SDA", Units: []int{2}, Group: "I2C2", Register: "RB2"}},
		pin.MustParse("B3"): {{Function: "SCL", Units: []int{2}, Group: "I2C2", Register: "RB3"}},
	}
	return &I2C{base: newBase(peripheral.I2C, t, nil)}
}

// Validate checks that the pin is one of the fixed I2C2 pins.
func (v *I2C) Validate(p pin.Pin, req Request) (Result, error) {
	c, _, err := v.match(p, req)
	if err != nil {
		return Result{}, err
	}
	scl, _ := v.PinForFunction("SCL")
	sda, _ := v.PinForFunction("SDA")
	return Result{
		Capability: c,
		Info:       fmt.Sprintf("%s %s, %s", c.Group, c.Function, c.Register),
		Warnings: []string{
			fmt.Sprintf("I2C requires both SCL (%s) and SDA (%s) pins for proper operation", scl, sda),
			"I2C2 module operates at 100kHz only",
		},
	}, nil
}

// PinForFunction returns the pin of an I2C role like "SDA".
func (v *I2C) PinForFunction(function string) (pin.Pin, bool) {
	for _, p := range v.pins {
		if v.table[p][0].Function == function {
			return p, true
		}
	}
	return pin.Pin{}, false
}
