// Package peripheral defines the closed set of peripheral kinds a pin can be
// assigned to.
package peripheral

import (
	"fmt"
	"strings"

	"github.com/retroenv/rboardcheck/internal/diag"
)

// Kind is a category of hardware function.
type Kind uint8

// Supported peripheral kinds.
const (
	ADC Kind = iota
	PWM
	GPIO
	I2C
	SPI
	UART

	// Count is the number of peripheral kinds.
	Count = int(UART) + 1
)

var names = [Count]string{"ADC", "PWM", "GPIO", "I2C", "SPI", "UART"}

// All returns all kinds in declaration order.
func All() []Kind {
	return []Kind{ADC, PWM, GPIO, I2C, SPI, UART}
}

func (k Kind) String() string {
	if int(k) < Count {
		return names[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Valid reports whether the kind is one of the supported kinds.
func (k Kind) Valid() bool {
	return int(k) < Count
}

// Parse returns the kind for a case-insensitive name.
func Parse(name string) (Kind, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for i, n := range names {
		if n == upper {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown peripheral '%s', supported: %s",
		diag.UnknownPeripheralKind, name, strings.Join(names[:], ", "))
}

// MarshalText implements encoding.TextMarshaler, it allows kinds to be used as
// JSON object keys.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", diag.UnknownPeripheralKind, uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// MultiPin reports whether the kind needs more than one pin to operate.
func (k Kind) MultiPin() bool {
	return k == I2C || k == SPI || k == UART
}
