// Package validator contains the hardware capability tables of the
// PIC32MX170F256B as used by the RBoard firmware and one validator per
// peripheral kind wrapping them with a uniform validation contract.
package validator

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/retroenv/rboardcheck/internal/diag"
	"github.com/retroenv/rboardcheck/internal/peripheral"
	"github.com/retroenv/rboardcheck/internal/pin"
	"github.com/retroenv/retrogolib/set"
)

// Validator checks whether pins can be used by one peripheral kind.
type Validator interface {
	// Kind returns the peripheral kind the validator is responsible for.
	Kind() peripheral.Kind
	// Supports reports whether the pin has any capability for the peripheral.
	Supports(p pin.Pin) bool
	// Validate checks the pin for the request and returns the matching
	// capability together with advisory warnings. Warnings never block an
	// allocation.
	Validate(p pin.Pin, req Request) (Result, error)
	// Pins returns all pins of the capability table ordered by port and number.
	Pins() []pin.Pin
}

// Request describes the intended use of a pin.
type Request struct {
	Line     int
	Function string // requested role like "SDA" or "TXD", empty if not specified
	Unit     int    // requested peripheral unit, 0 if not specified
}

// Result of a successful validation.
type Result struct {
	Capability Capability
	Info       string
	Warnings   []string
}

// Capability describes what a pin can do for a peripheral.
type Capability struct {
	Function   string // hardware role, for example "AN", "OC", "SDA", "SDI", "TX"
	Units      []int  // peripheral units that can use the pin in this role
	Channel    int    // ADC channel number
	Group      string // hardware module name, for example "OC1" or "I2C2"
	Register   string
	Remappable bool // role can be moved to other pins by peripheral pin select
}

// HasUnit reports whether the capability is available for the unit.
func (c Capability) HasUnit(unit int) bool {
	for _, u := range c.Units {
		if u == unit {
			return true
		}
	}
	return false
}

// Unit returns the first unit of the capability or 0.
func (c Capability) Unit() int {
	if len(c.Units) == 0 {
		return 0
	}
	return c.Units[0]
}

func (c Capability) unitNames() string {
	parts := make([]string, len(c.Units))
	for i, u := range c.Units {
		parts[i] = strconv.Itoa(u)
	}
	return strings.Join(parts, "/")
}

type table map[pin.Pin][]Capability

// base implements the table lookup shared by all validators.
type base struct {
	kind    peripheral.Kind
	table   table
	pins    []pin.Pin
	aliases map[string]string // requested role -> hardware role
}

func newBase(kind peripheral.Kind, t table, aliases map[string]string) base {
	pins := make([]pin.Pin, 0, len(t))
	for p := range t {
		pins = append(pins, p)
	}
	pin.Sort(pins)

	return base{
		kind:    kind,
		table:   t,
		pins:    pins,
		aliases: aliases,
	}
}

// Kind returns the peripheral kind.
func (b *base) Kind() peripheral.Kind {
	return b.kind
}

// Supports reports whether the pin is part of the capability table.
func (b *base) Supports(p pin.Pin) bool {
	_, ok := b.table[p]
	return ok
}

// Pins returns a copy of the sorted table pins.
func (b *base) Pins() []pin.Pin {
	pins := make([]pin.Pin, len(b.pins))
	copy(pins, b.pins)
	return pins
}

// Capabilities returns all capability entries of a pin.
func (b *base) Capabilities(p pin.Pin) []Capability {
	return b.table[p]
}

// role converts a requested role to the hardware role name.
func (b *base) role(function string) string {
	fn := strings.ToUpper(function)
	if alias, ok := b.aliases[fn]; ok {
		return alias
	}
	return fn
}

// match returns the capability entry for the request. The returned flag is set
// if the pin has multiple roles and the request did not name one.
func (b *base) match(p pin.Pin, req Request) (Capability, bool, error) {
	caps, ok := b.table[p]
	if !ok {
		return Capability{}, false, fmt.Errorf("%w: pin %s cannot be used for %s, valid pins: %s",
			diag.UnsupportedPeripheralForPin, p, b.kind, pin.Join(b.pins))
	}

	if req.Function == "" {
		return preferUnit(caps, req.Unit), roleCount(caps) > 1, nil
	}

	role := b.role(req.Function)
	var matching []Capability
	for _, c := range caps {
		if c.Function == role {
			matching = append(matching, c)
		}
	}
	if len(matching) == 0 {
		return Capability{}, false, fmt.Errorf("%w: pin %s cannot be used as %s %s, available roles: %s",
			diag.UnsupportedPeripheralForPin, p, b.kind, req.Function, roles(caps))
	}
	return preferUnit(matching, req.Unit), false, nil
}

func preferUnit(caps []Capability, unit int) Capability {
	if unit != 0 {
		for _, c := range caps {
			if c.HasUnit(unit) {
				return c
			}
		}
	}
	return caps[0]
}

func roleCount(caps []Capability) int {
	return len(uniqueRoles(caps))
}

func roles(caps []Capability) string {
	names := uniqueRoles(caps)
	sort.Strings(names)
	return strings.Join(names, "/")
}

// uniqueRoles returns the role names of the capabilities in table order.
func uniqueRoles(caps []Capability) []string {
	var names []string
	seen := set.New[string]()
	for _, c := range caps {
		if seen.Contains(c.Function) {
			continue
		}
		seen.Add(c.Function)
		names = append(names, c.Function)
	}
	return names
}
