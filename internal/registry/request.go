package registry

import (
	"fmt"
	"strings"

	"github.com/retroenv/rboardcheck/internal/diag"
	"github.com/retroenv/rboardcheck/internal/peripheral"
	"github.com/retroenv/rboardcheck/internal/pin"
	"github.com/retroenv/rboardcheck/internal/usage"
	"github.com/retroenv/retrogolib/set"
)

// request is a single pin referenced by a usage event.
type request struct {
	value usage.Value
	pin   *pin.Pin // set for pins that are not given in the source
	role  string   // empty if the role is not specified
	unit  int
}

func (q request) key() string {
	return q.role + "=" + q.value.Text
}

func (q request) resolve() (pin.Pin, error) {
	if q.pin != nil {
		return *q.pin, nil
	}

	switch q.value.Type {
	case usage.Ident:
		return pin.Pin{}, fmt.Errorf("%w: unresolved pin variable '%s', assign a pin literal before use",
			diag.InvalidPinFormat, q.value.Str)
	case usage.List, usage.Float, usage.Raw:
		return pin.Pin{}, fmt.Errorf("%w: invalid pin value %s, use a format like 'A0', 5 or [1, 0]",
			diag.InvalidPinFormat, q.value)
	}
	return pin.Normalize(q.value.Native())
}

// pinArg is a pin argument of a multi pin peripheral.
type pinArg struct {
	role  string
	names []string // keyword names
}

var (
	i2cArgs = []pinArg{
		{role: "SDA", names: []string{"sda_pin", "sda"}},
		{role: "SCL", names: []string{"scl_pin", "scl"}},
	}
	spiArgs = []pinArg{
		{role: "SCK", names: []string{"sck_pin", "sck"}},
		{role: "MOSI", names: []string{"mosi_pin", "mosi", "sdo_pin"}},
		{role: "MISO", names: []string{"miso_pin", "miso", "sdi_pin"}},
	}
	uartArgs = []pinArg{
		{role: "TXD", names: []string{"txd_pin", "tx_pin", "txd"}},
		{role: "RXD", names: []string{"rxd_pin", "rx_pin", "rxd"}},
	}
)

// requests returns the pins referenced by the event. An error is returned
// if the peripheral can not be resolved at all.
func (r *Registry) requests(ev usage.Event) ([]request, error) {
	switch ev.Kind {
	case peripheral.ADC, peripheral.PWM, peripheral.GPIO:
		v, ok := ev.Arg(0, "pin")
		if !ok {
			return nil, nil
		}
		return []request{{value: v, unit: intArg(ev, "unit")}}, nil

	case peripheral.I2C:
		return multiPinRequests(ev, 0, i2cArgs, 2), nil

	case peripheral.SPI:
		return multiPinRequests(ev, 0, spiArgs, intArg(ev, "unit")), nil

	case peripheral.UART:
		return r.uartRequests(ev)

	default:
		return nil, fmt.Errorf("%w: %s", diag.UnknownPeripheralKind, ev.Kind)
	}
}

func (r *Registry) uartRequests(ev usage.Event) ([]request, error) {
	unit := 1
	offset := 0
	if v, ok := ev.NamedArg("unit"); ok && v.Type == usage.Int {
		unit = v.Int
	} else if len(ev.Positional) > 0 && ev.Positional[0].Type == usage.Int {
		unit = ev.Positional[0].Int
		offset = 1
	}

	if requests := multiPinRequests(ev, offset, uartArgs, unit); len(requests) > 0 {
		return requests, nil
	}

	uart := r.validators.UART()
	defaults, ok := uart.DefaultPins(unit)
	if !ok {
		return nil, fmt.Errorf("%w: UART unit %d is not available, valid units: %s",
			diag.UnsupportedPeripheralForPin, unit, joinInts(uart.Units()))
	}
	return []request{
		{pin: &defaults.TX, role: "TXD", unit: unit},
		{pin: &defaults.RX, role: "RXD", unit: unit},
	}, nil
}

// multiPinRequests resolves the pins of a multi pin peripheral starting at the
// positional offset. A single positional pin without keyword pins is
// validated without a role.
func multiPinRequests(ev usage.Event, offset int, args []pinArg, unit int) []request {
	var named bool
	for _, arg := range args {
		if _, ok := namedArg(ev, arg.names); ok {
			named = true
		}
	}
	if !named && len(ev.Positional)-offset == 1 {
		return []request{{value: ev.Positional[offset], unit: unit}}
	}

	var requests []request
	for i, arg := range args {
		v, ok := namedArg(ev, arg.names)
		if pos := offset + i; !ok && pos < len(ev.Positional) {
			v, ok = ev.Positional[pos], true
		}
		if ok {
			requests = append(requests, request{value: v, role: arg.role, unit: unit})
		}
	}
	return requests
}

func namedArg(ev usage.Event, names []string) (usage.Value, bool) {
	for _, name := range names {
		if v, ok := ev.NamedArg(name); ok {
			return v, true
		}
	}
	return usage.Value{}, false
}

func intArg(ev usage.Event, name string) int {
	if v, ok := ev.NamedArg(name); ok && v.Type == usage.Int {
		return v.Int
	}
	return 0
}

func missingRoles(requests, claimed []request) string {
	done := set.New[string]()
	for _, c := range claimed {
		done.Add(c.key())
	}

	var missing []string
	for _, req := range requests {
		if done.Contains(req.key()) {
			continue
		}
		name := req.role
		if name == "" {
			name = req.value.String()
		}
		missing = append(missing, name)
	}
	return strings.Join(missing, ", ")
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}
