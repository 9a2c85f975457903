package validator

import (
	"fmt"

	"github.com/retroenv/rboardcheck/internal/peripheral"
	"github.com/retroenv/rboardcheck/internal/pin"
)

// UART validates pins of the 2 UART units. RX pins are selected from a fixed
// list per unit, TX pins are remappable and listed with their firmware
// defaults.
type UART struct {
	base
	defaults map[int]UARTPins
}

// UARTPins is the TX/RX pin pair of a unit.
type UARTPins struct {
	TX, RX pin.Pin
}

// NewUART returns the UART validator.
func NewUART() *UART {
	t := table{}
	add := func(unit int, function string, remappable bool, names ...string) {
		for _, name := range names {
			p := pin.MustParse(name)
			t[p] = append(t[p], Capability{
				Function:   function,
				Units:      []int{unit},
				Group:      fmt.Sprintf("UART%d", unit),
				Register:   p.Register(),
				Remappable: remappable,
			})
		}
	}
	add(1, "RX", false, "A2", "B6", "A4", "B13", "B2")
	add(2, "RX", false, "A1", "B5", "B1", "B11", "B8")
	add(1, "TX", true, "B4")
	add(2, "TX", true, "B9")

	aliases := map[string]string{
		"TXD": "TX",
		"RXD": "RX",
	}
	return &UART{
		base: newBase(peripheral.UART, t, aliases),
		defaults: map[int]UARTPins{
			1: {TX: pin.MustParse("B4"), RX: pin.MustParse("A4")},
			2: {TX: pin.MustParse("B9"), RX: pin.MustParse("B8")},
		},
	}
}

// Validate checks the pin against the UART roles and adds configuration
// advice for the unit.
func (v *UART) Validate(p pin.Pin, req Request) (Result, error) {
	c, _, err := v.match(p, req)
	if err != nil {
		return Result{}, err
	}

	unit := c.Unit()
	res := Result{
		Capability: c,
		Info:       fmt.Sprintf("UART%d %s, %s", unit, c.Function, c.Register),
	}

	switch c.Function {
	case "RX":
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("UART%d requires both TX and RX pins for full duplex communication", unit),
			fmt.Sprintf("UART%d RX pin - multiple options available", unit))
	case "TX":
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("UART%d TX pin - default assignment (remappable on PIC32)", unit))
	}
	if req.Unit != 0 && !c.HasUnit(req.Unit) {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("pin %s belongs to UART%d, not UART%d", p, unit, req.Unit))
	}
	res.Warnings = append(res.Warnings,
		"UART supports standard baud rates (9600, 19200, 38400, 57600, 115200)")
	if defaults, ok := v.defaults[unit]; ok {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("UART%d defaults: TX=%s, RX=%s", unit, defaults.TX, defaults.RX))
	}
	return res, nil
}

// Units returns the available UART units.
func (v *UART) Units() []int {
	return []int{1, 2}
}

// DefaultPins returns the firmware default TX/RX pins of a unit.
func (v *UART) DefaultPins(unit int) (UARTPins, bool) {
	pins, ok := v.defaults[unit]
	return pins, ok
}

// CompleteSetupWarnings checks per unit whether the claimed UART pins contain
// both a TX and an RX pin. The claimed map contains the pins allocated to UART.
func (v *UART) CompleteSetupWarnings(claimed []pin.Pin) []string {
	var warnings []string
	for _, unit := range v.Units() {
		var tx, rx bool
		for _, p := range claimed {
			for _, c := range v.Capabilities(p) {
				if !c.HasUnit(unit) {
					continue
				}
				switch c.Function {
				case "TX":
					tx = true
				case "RX":
					rx = true
				}
			}
		}
		switch {
		case tx && !rx:
			warnings = append(warnings, fmt.Sprintf("UART%d has TX pin but no RX pin - receive capability disabled", unit))
		case rx && !tx:
			warnings = append(warnings, fmt.Sprintf("UART%d has RX pin but no TX pin - transmit capability disabled", unit))
		}
	}
	return warnings
}
