package validator

import (
	"errors"
	"testing"

	"github.com/retroenv/rboardcheck/internal/diag"
	"github.com/retroenv/rboardcheck/internal/peripheral"
	"github.com/retroenv/rboardcheck/internal/pin"
	"github.com/retroenv/retrogolib/assert"
)

func TestSupportsMatchesValidate(t *testing.T) {
	set := NewSet()
	for _, kind := range peripheral.All() {
		v, err := set.For(kind)
		assert.NoError(t, err)

		t.Run(kind.String(), func(t *testing.T) {
			for _, p := range pin.All() {
				_, err := v.Validate(p, Request{Line: 1})
				assert.Equal(t, v.Supports(p), err == nil, p.String())
			}
		})
	}
}

func TestADC(t *testing.T) {
	v := NewADC()

	res, err := v.Validate(pin.MustParse("B15"), Request{Line: 3})
	assert.NoError(t, err)
	assert.Equal(t, 9, res.Capability.Channel)
	assert.Equal(t, "ADC channel 9, AN9", res.Info)
	assert.Empty(t, res.Warnings)

	_, err = v.Validate(pin.MustParse("B4"), Request{Line: 3})
	assert.True(t, errors.Is(err, diag.UnsupportedPeripheralForPin))
	assert.ErrorContains(t, err, "A0, A1, B0")

	res, err = v.Validate(pin.MustParse("B12"), Request{})
	assert.NoError(t, err)
	assert.Equal(t, 12, res.Capability.Channel)
	assert.Len(t, v.Capabilities(pin.MustParse("B12")), 1)
	assert.Empty(t, v.Capabilities(pin.MustParse("B4")))
}

func TestPWM(t *testing.T) {
	v := NewPWM()

	res, err := v.Validate(pin.MustParse("A0"), Request{})
	assert.NoError(t, err)
	assert.Equal(t, "OC1 unit 1", res.Info)
	assert.True(t, res.Capability.Remappable)

	res, err = v.Validate(pin.MustParse("B2"), Request{Unit: 1})
	assert.NoError(t, err)
	assert.Len(t, res.Warnings, 1)
	assert.Equal(t, "pin B2 is driven by OC4, not OC1 (OC1 pins: A0, B3, B4, B7, B15)", res.Warnings[0])

	_, err = v.Validate(pin.MustParse("B12"), Request{})
	assert.Error(t, err)

	assert.Len(t, v.PinsForUnit(3), 5)
	assert.Len(t, v.Pins(), 20)
}

func TestGPIO(t *testing.T) {
	v := NewGPIO()
	for _, p := range pin.All() {
		assert.True(t, v.Supports(p))
	}

	_, err := v.Validate(pin.Pin{Port: pin.PortA, Number: 5}, Request{})
	assert.True(t, errors.Is(err, diag.PinOutOfRange))
	assert.ErrorContains(t, err, "[1,5]")
}

func TestI2C(t *testing.T) {
	v := NewI2C()

	tests := []struct {
		name     string
		pin      string
		function string
		wantErr  bool
	}{
		{name: "SDA without role", pin: "B2"},
		{name: "SCL without role", pin: "B3"},
		{name: "SDA with role", pin: "B2", function: "sda"},
		{name: "role mismatch", pin: "B2", function: "SCL", wantErr: true},
		{name: "unsupported pin", pin: "A0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := v.Validate(pin.MustParse(tt.pin), Request{Function: tt.function})
			if tt.wantErr {
				assert.True(t, errors.Is(err, diag.UnsupportedPeripheralForPin))
				return
			}
			assert.NoError(t, err)
			assert.Len(t, res.Warnings, 2)
			assert.Equal(t, "I2C requires both SCL (B3) and SDA (B2) pins for proper operation", res.Warnings[0])
		})
	}

	p, ok := v.PinForFunction("SCL")
	assert.True(t, ok)
	assert.Equal(t, "B3", p.String())
}

func TestSPIMultiRole(t *testing.T) {
	v := NewSPI()

	res, err := v.Validate(pin.MustParse("B6"), Request{})
	assert.NoError(t, err)
	assert.Contains(t, res.Warnings[0], "specify intended use")
	assert.Equal(t, "SPI multi-function: SDI/SDO", res.Info)

	res, err = v.Validate(pin.MustParse("B6"), Request{Function: "MOSI"})
	assert.NoError(t, err)
	assert.Equal(t, "SDO", res.Capability.Function)

	res, err = v.Validate(pin.MustParse("B6"), Request{Function: "MISO"})
	assert.NoError(t, err)
	assert.Equal(t, "SDI", res.Capability.Function)
	assert.Equal(t, 2, res.Capability.Unit())

	_, err = v.Validate(pin.MustParse("B14"), Request{Function: "MOSI"})
	assert.True(t, errors.Is(err, diag.UnsupportedPeripheralForPin))

	res, err = v.Validate(pin.MustParse("B14"), Request{Function: "SCK"})
	assert.NoError(t, err)
	assert.Contains(t, res.Warnings[0], "fixed for SPI1")

	pins, ok := v.DefaultPins(2)
	assert.True(t, ok)
	assert.Equal(t, "B15", pins.SCK.String())
}

func TestUniqueRoles(t *testing.T) {
	caps := []Capability{
		{Function: "SDO", Units: []int{1}},
		{Function: "SDI", Units: []int{2}},
		{Function: "SDO", Units: []int{2}},
	}
	assert.Equal(t, []string{"SDO", "SDI"}, uniqueRoles(caps))
	assert.Equal(t, 2, roleCount(caps))
	assert.Equal(t, "SDI/SDO", roles(caps))
	assert.Empty(t, uniqueRoles(nil))
}

func TestUART(t *testing.T) {
	v := NewUART()

	defaults, ok := v.DefaultPins(1)
	assert.True(t, ok)
	assert.Equal(t, "B4", defaults.TX.String())
	assert.Equal(t, "A4", defaults.RX.String())

	_, ok = v.DefaultPins(3)
	assert.False(t, ok)

	res, err := v.Validate(defaults.TX, Request{Function: "txd", Unit: 1})
	assert.NoError(t, err)
	assert.Equal(t, "TX", res.Capability.Function)
	assert.Equal(t, "UART1 TX, RB4", res.Info)

	res, err = v.Validate(pin.MustParse("B8"), Request{Function: "rxd", Unit: 1})
	assert.NoError(t, err)
	var mismatch bool
	for _, w := range res.Warnings {
		if w == "pin B8 belongs to UART2, not UART1" {
			mismatch = true
		}
	}
	assert.True(t, mismatch)

	_, err = v.Validate(pin.MustParse("A4"), Request{Function: "txd"})
	assert.True(t, errors.Is(err, diag.UnsupportedPeripheralForPin))

	warnings := v.CompleteSetupWarnings([]pin.Pin{pin.MustParse("B9")})
	assert.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "UART2 has TX pin but no RX pin")

	assert.Empty(t, v.CompleteSetupWarnings([]pin.Pin{defaults.TX, defaults.RX}))
}

func TestSetFor(t *testing.T) {
	set := Default()
	assert.Equal(t, set, Default())

	v, err := set.For(peripheral.UART)
	assert.NoError(t, err)
	assert.Equal(t, peripheral.UART, v.Kind())

	_, err = set.For(peripheral.Kind(42))
	assert.True(t, errors.Is(err, diag.UnknownPeripheralKind))
}
