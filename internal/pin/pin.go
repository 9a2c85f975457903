// Package pin implements the canonical identity of a physical microcontroller
// pin and the conversion between its string, register and numeric forms.
package pin

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/retroenv/rboardcheck/internal/diag"
)

// Port identifies an I/O port of the microcontroller.
type Port uint8

// Physical ports. The numeric values match the firmware port numbering.
const (
	PortA Port = 1
	PortB Port = 2
)

// Physical pin counts per port.
const (
	portAPins = 5
	portBPins = 16

	// MaxNumber is the highest flattened pin number.
	MaxNumber = portAPins + portBPins - 1
)

func (p Port) String() string {
	switch p {
	case PortA:
		return "A"
	case PortB:
		return "B"
	default:
		return fmt.Sprintf("port(%d)", uint8(p))
	}
}

// Size returns the number of physical pins of the port, 0 for unknown ports.
func (p Port) Size() int {
	switch p {
	case PortA:
		return portAPins
	case PortB:
		return portBPins
	default:
		return 0
	}
}

// Pin is an immutable port and pin number pair.
type Pin struct {
	Port   Port
	Number uint8
}

// MustParse is like Parse but panics on invalid input. It is intended for
// hardware tables and tests.
func MustParse(s string) Pin {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Valid reports whether the pin exists on the hardware.
func (p Pin) Valid() bool {
	return int(p.Number) < p.Port.Size()
}

// String returns the display form, for example "A0" or "B15".
func (p Pin) String() string {
	return p.Port.String() + strconv.Itoa(int(p.Number))
}

// Register returns the register name, for example "RA0" or "RB15".
func (p Pin) Register() string {
	return "R" + p.String()
}

// Index returns the flattened pin number in the range 0-20.
func (p Pin) Index() int {
	if p.Port == PortB {
		return portAPins + int(p.Number)
	}
	return int(p.Number)
}

// Less orders pins by port and number.
func (p Pin) Less(other Pin) bool {
	if p.Port != other.Port {
		return p.Port < other.Port
	}
	return p.Number < other.Number
}

// MarshalText implements encoding.TextMarshaler.
func (p Pin) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Pin) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

var pinPattern = regexp.MustCompile(`(?i)^R?([AB])(\d+)$`)

// Parse converts the string forms "A0", "b3", "RA1" or "RB15" to a pin.
func Parse(s string) (Pin, error) {
	m := pinPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Pin{}, fmt.Errorf("%w: invalid pin string %q, use a format like 'A0', 'B3', 'RA1' or 'RB15'",
			diag.InvalidPinFormat, s)
	}

	port := PortA
	if strings.EqualFold(m[1], "B") {
		port = PortB
	}
	number, err := strconv.Atoi(m[2])
	if err != nil || number >= port.Size() {
		return Pin{}, fmt.Errorf("%w: invalid pin %q, port %s only has pins 0-%d",
			diag.PinOutOfRange, s, port, port.Size()-1)
	}
	return Pin{Port: port, Number: uint8(number)}, nil
}

// FromNumber converts a flattened pin number to a pin. Numbers 0-4 map to
// port A, numbers 5-20 map to port B pin n-5.
func FromNumber(n int) (Pin, error) {
	switch {
	case n >= 0 && n < portAPins:
		return Pin{Port: PortA, Number: uint8(n)}, nil
	case n >= portAPins && n <= MaxNumber:
		return Pin{Port: PortB, Number: uint8(n - portAPins)}, nil
	default:
		return Pin{}, fmt.Errorf("%w: invalid pin number %d, valid range: 0-%d",
			diag.PinOutOfRange, n, MaxNumber)
	}
}

// FromPair converts a (port, number) pair using the firmware port numbering
// where port 1 is A and port 2 is B.
func FromPair(port, number int) (Pin, error) {
	if port < 0 || number < 0 {
		return Pin{}, fmt.Errorf("%w: invalid pin [%d,%d], port and pin must be non-negative",
			diag.InvalidPinFormat, port, number)
	}
	prt := Port(port)
	size := prt.Size()
	if size == 0 {
		return Pin{}, fmt.Errorf("%w: invalid pin [%d,%d], valid ports: 1 (A), 2 (B)",
			diag.PinOutOfRange, port, number)
	}
	if number >= size {
		return Pin{}, fmt.Errorf("%w: invalid pin [%d,%d], port %s only has pins 0-%d",
			diag.PinOutOfRange, port, number, prt, size-1)
	}
	return Pin{Port: prt, Number: uint8(number)}, nil
}

// Normalize converts any supported pin representation to a pin: strings,
// integers using the flattened scheme, 2 element integer pairs and pins.
func Normalize(v any) (Pin, error) {
	switch val := v.(type) {
	case Pin:
		if !val.Valid() {
			return Pin{}, fmt.Errorf("%w: invalid pin %s", diag.PinOutOfRange, val)
		}
		return val, nil
	case string:
		return Parse(val)
	case int:
		return FromNumber(val)
	case int8:
		return FromNumber(int(val))
	case int16:
		return FromNumber(int(val))
	case int32:
		return FromNumber(int(val))
	case int64:
		return FromNumber(int(val))
	case uint:
		return FromNumber(int(val))
	case uint8:
		return FromNumber(int(val))
	case uint16:
		return FromNumber(int(val))
	case uint32:
		return FromNumber(int(val))
	case [2]int:
		return FromPair(val[0], val[1])
	case []int:
		if len(val) != 2 {
			return Pin{}, fmt.Errorf("%w: invalid pin %v, expected [port, pin]", diag.InvalidPinFormat, val)
		}
		return FromPair(val[0], val[1])
	default:
		return Pin{}, fmt.Errorf("%w: unsupported pin value %v (%T)", diag.InvalidPinFormat, v, v)
	}
}

// All returns every physical pin ordered by port and number.
func All() []Pin {
	pins := make([]Pin, 0, MaxNumber+1)
	for n := 0; n <= MaxNumber; n++ {
		p, _ := FromNumber(n)
		pins = append(pins, p)
	}
	return pins
}

// Sort sorts the pins in place by port and number.
func Sort(pins []Pin) {
	sort.Slice(pins, func(i, j int) bool {
		return pins[i].Less(pins[j])
	})
}

// Join returns the display forms of the pins separated by ", ".
func Join(pins []Pin) string {
	names := make([]string, len(pins))
	for i, p := range pins {
		names[i] = p.String()
	}
	return strings.Join(names, ", ")
}
