package validator

import (
	"fmt"

	"github.com/retroenv/rboardcheck/internal/peripheral"
	"github.com/retroenv/rboardcheck/internal/pin"
)

// SPI validates SPI pins of the 2 SPI units. SCK pins are fixed per unit,
// data pins are partly shared between the units and some pins can serve
// either as SDI or as SDO.
type SPI struct {
	base
}

// SPIPins is a pin set for one SPI unit.
type SPIPins struct {
	SDI, SDO, SCK pin.Pin
}

// NewSPI returns the SPI validator.
func NewSPI() *SPI {
	t := table{}
	add := func(name string, c Capability) {
		p := pin.MustParse(name)
		c.Register = p.Register()
		c.Group = fmt.Sprintf("SPI%s", c.unitNames())
		t[p] = append(t[p], c)
	}

	for _, name := range []string{"A1", "B1", "B5", "B8", "B11"} {
		add(name, Capability{Function: "SDI", Units: []int{1}})
	}
	add("B14", Capability{Function: "SCK", Units: []int{1}})
	add("B15", Capability{Function: "SCK", Units: []int{2}})

	for _, name := range []string{"A2", "B2", "B6", "B13"} {
		add(name, Capability{Function: "SDI", Units: []int{2}})
		add(name, Capability{Function: "SDO", Units: []int{1, 2}, Remappable: true})
	}
	add("A4", Capability{Function: "SDO", Units: []int{1, 2}, Remappable: true})

	aliases := map[string]string{
		"MOSI": "SDO",
		"MISO": "SDI",
		"CLK":  "SCK",
	}
	return &SPI{base: newBase(peripheral.SPI, t, aliases)}
}

// Validate checks the pin against the SPI roles. A multi role pin used without
// a role is accepted with a warning asking to specify the intended use.
func (v *SPI) Validate(p pin.Pin, req Request) (Result, error) {
	c, ambiguous, err := v.match(p, req)
	if err != nil {
		return Result{}, err
	}

	res := Result{Capability: c}
	if ambiguous {
		res.Info = fmt.Sprintf("SPI multi-function: %s", roles(v.table[p]))
		res.Warnings = append(res.Warnings, "Multi-function pin - specify intended use (SDI/SDO)")
	} else {
		res.Info = fmt.Sprintf("SPI%s %s, %s", c.unitNames(), c.Function, c.Register)
		switch c.Function {
		case "SDI":
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("SPI%d requires SDI, SDO, and SCK pins for complete setup", c.Unit()))
		case "SCK":
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("SCK pin is fixed for SPI%d (cannot be changed)", c.Unit()))
		}
	}
	if req.Unit != 0 && !c.HasUnit(req.Unit) {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("pin %s is not available as %s for SPI%d", p, c.Function, req.Unit))
	}
	res.Warnings = append(res.Warnings, "SPI frequency range: 9.77kHz - 5MHz only")
	return res, nil
}

// Units returns the available SPI units.
func (v *SPI) Units() []int {
	return []int{1, 2}
}

// DefaultPins returns the firmware default pin set of a unit.
func (v *SPI) DefaultPins(unit int) (SPIPins, bool) {
	switch unit {
	case 1:
		return SPIPins{SDI: pin.MustParse("B5"), SDO: pin.MustParse("B6"), SCK: pin.MustParse("B14")}, true
	case 2:
		return SPIPins{SDI: pin.MustParse("A2"), SDO: pin.MustParse("B13"), SCK: pin.MustParse("B15")}, true
	default:
		return SPIPins{}, false
	}
}
