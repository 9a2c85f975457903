package validator

import (
	"fmt"

	"github.com/retroenv/rboardcheck/internal/peripheral"
	"github.com/retroenv/rboardcheck/internal/pin"
)

// PWM validates output compare pins. The 4 OC units can each drive one of a
// group of remappable pins.
type PWM struct {
	base
}

// NewPWM returns the PWM validator.
func NewPWM() *PWM {
	groups := []struct {
		unit int
		pins []string
	}{
		{1, []string{"A0", "B3", "B4", "B15", "B7"}},
		{2, []string{"A1", "B5", "B1", "B11", "B8"}},
		{3, []string{"A3", "B14", "B0", "B10", "B9"}},
		{4, []string{"A2", "B6", "A4", "B13", "B2"}},
	}

	t := table{}
	for _, g := range groups {
		for _, name := range g.pins {
			p := pin.MustParse(name)
			t[p] = []Capability{{
				Function:   "OC",
				Units:      []int{g.unit},
				Group:      fmt.Sprintf("OC%d", g.unit),
				Register:   "RP" + p.String(),
				Remappable: true,
			}}
		}
	}
	return &PWM{base: newBase(peripheral.PWM, t, nil)}
}

// Validate checks that the pin can be driven by an output compare unit.
func (v *PWM) Validate(p pin.Pin, req Request) (Result, error) {
	c, _, err := v.match(p, req)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Capability: c,
		Info:       fmt.Sprintf("%s unit %d", c.Group, c.Unit()),
	}
	if req.Unit != 0 && !c.HasUnit(req.Unit) {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("pin %s is driven by %s, not OC%d (OC%d pins: %s)",
				p, c.Group, req.Unit, req.Unit, pin.Join(v.PinsForUnit(req.Unit))))
	}
	return res, nil
}

// PinsForUnit returns the pins an output compare unit can drive.
func (v *PWM) PinsForUnit(unit int) []pin.Pin {
	var pins []pin.Pin
	for _, p := range v.pins {
		if v.table[p][0].HasUnit(unit) {
			pins = append(pins, p)
		}
	}
	return pins
}
