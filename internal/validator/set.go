package validator

import (
	"fmt"
	"sync"

	"github.com/retroenv/rboardcheck/internal/diag"
	"github.com/retroenv/rboardcheck/internal/peripheral"
)

// Set dispatches the fixed peripheral kinds to their validators. A set is
// read-only after construction and safe for concurrent use.
type Set struct {
	validators [peripheral.Count]Validator

	adc  *ADC
	pwm  *PWM
	gpio *GPIO
	i2c  *I2C
	spi  *SPI
	uart *UART
}

// NewSet builds all validators and their capability tables.
func NewSet() *Set {
	s := &Set{
		adc:  NewADC(),
		pwm:  NewPWM(),
		gpio: NewGPIO(),
		i2c:  NewI2C(),
		spi:  NewSPI(),
		uart: NewUART(),
	}
	s.validators[peripheral.ADC] = s.adc
	s.validators[peripheral.PWM] = s.pwm
	s.validators[peripheral.GPIO] = s.gpio
	s.validators[peripheral.I2C] = s.i2c
	s.validators[peripheral.SPI] = s.spi
	s.validators[peripheral.UART] = s.uart
	return s
}

// Default returns a shared set that is built on first use.
var Default = sync.OnceValue(NewSet)

// For returns the validator of a kind.
func (s *Set) For(kind peripheral.Kind) (Validator, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %s", diag.UnknownPeripheralKind, kind)
	}
	return s.validators[kind], nil
}

// ADC returns the ADC validator.
func (s *Set) ADC() *ADC { return s.adc }

// PWM returns the PWM validator.
func (s *Set) PWM() *PWM { return s.pwm }

// GPIO returns the GPIO validator.
func (s *Set) GPIO() *GPIO { return s.gpio }

// I2C returns the I2C validator.
func (s *Set) I2C() *I2C { return s.i2c }

// SPI returns the SPI validator.
func (s *Set) SPI() *SPI { return s.spi }

// UART returns the UART validator.
func (s *Set) UART() *UART { return s.uart }
