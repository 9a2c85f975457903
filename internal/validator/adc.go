package validator

import (
	"fmt"

	"github.com/retroenv/rboardcheck/internal/peripheral"
	"github.com/retroenv/rboardcheck/internal/pin"
)

// ADC validates analog input pins. Only the AN channels wired by the firmware
// are usable.
type ADC struct {
	base
}

// NewADC returns the ADC validator.
func NewADC() *ADC {
	t := table{}
	add := func(name string, channel int) {
		p := pin.MustParse(name)
		t[p] = []Capability{{
			Function: "AN",
			Channel:  channel,
			Group:    fmt.Sprintf("AN%d", channel),
			Register: p.Register(),
		}}
	}
	add("A0", 0)
	add("A1", 1)
	add("B0", 2)
	add("B1", 3)
	add("B2", 4)
	add("B3", 5)
	add("B15", 9)
	add("B14", 10)
	add("B13", 11)
	add("B12", 12)

	return &ADC{base: newBase(peripheral.ADC, t, nil)}
}

// Validate checks that the pin is an analog channel.
func (v *ADC) Validate(p pin.Pin, req Request) (Result, error) {
	c, _, err := v.match(p, req)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Capability: c,
		Info:       fmt.Sprintf("ADC channel %d, %s", c.Channel, c.Group),
	}, nil
}
