// Package profile contains the hardware profile of the analysis target and
// all cost constants and thresholds used by the resource estimation.
package profile

import (
	"errors"
	"fmt"

	"github.com/retroenv/rboardcheck/internal/peripheral"
	"github.com/retroenv/rboardcheck/internal/pin"
	"github.com/retroenv/retrogolib/set"
)

// Profile describes a target microcontroller. All estimation constants are
// part of the profile so that a different target only needs a new profile.
type Profile struct {
	Name string `json:"name"`

	FlashBytes int `json:"flash_bytes"`
	RAMBytes   int `json:"ram_bytes"`
	CPUMHz     int `json:"cpu_mhz"`

	ReservedTimer      int       `json:"reserved_timer"`      // timer used by the runtime scheduler
	ReservedPriorities []int     `json:"reserved_priorities"` // interrupt priority levels used by the runtime
	ConsolePins        []pin.Pin `json:"console_pins"`        // pins of the system console UART
	MaxVariables       int       `json:"max_variables"`       // VM register limit

	Memory      MemoryCosts                        `json:"memory"`
	Timing      TimingCosts                        `json:"timing"`
	Peripherals map[peripheral.Kind]PeripheralCost `json:"peripherals"`
	Limits      Limits                             `json:"limits"`
}

// MemoryCosts are the estimated RAM costs in bytes of value shapes.
type MemoryCosts struct {
	Integer       int `json:"integer"`
	Float         int `json:"float"`
	StringBase    int `json:"string_base"` // added to the string length
	ArrayBase     int `json:"array_base"`
	ArrayElement  int `json:"array_element"`
	HashBase      int `json:"hash_base"`
	HashEntry     int `json:"hash_entry"`
	Object        int `json:"object"`
	Default       int `json:"default"`
	ArrayLiteral  int `json:"array_literal"`
	HashLiteral   int `json:"hash_literal"`
	Instantiation int `json:"instantiation"`
}

// TimingCosts are the estimated execution costs in milliseconds.
type TimingCosts struct {
	BlockingIOMs float64 `json:"blocking_io_ms"`
	LoopMs       float64 `json:"loop_ms"`
}

// PeripheralCost is the estimated cost of one peripheral instance.
type PeripheralCost struct {
	CPUPercent float64 `json:"cpu_percent"`
	PowerMA    float64 `json:"power_ma"`
	ResponseMs float64 `json:"response_ms"`

	BottleneckAbove int `json:"bottleneck_above,omitempty"` // instance count, 0 disables the check
	HintAbove       int `json:"hint_above,omitempty"`       // instance count, 0 disables the check
}

// Limits are the thresholds that turn estimates into findings.
type Limits struct {
	RAMWarningPercent   float64 `json:"ram_warning_percent"`
	RAMErrorPercent     float64 `json:"ram_error_percent"`
	FlashWarningPercent float64 `json:"flash_warning_percent"`
	FlashErrorPercent   float64 `json:"flash_error_percent"`
	StringMemoryBytes   int     `json:"string_memory_bytes"`
	MaxDelayMs          float64 `json:"max_delay_ms"`
	MaxExecutionMs      float64 `json:"max_execution_ms"`
	CPUExcellentPercent float64 `json:"cpu_excellent_percent"`
	CPUGoodPercent      float64 `json:"cpu_good_percent"`
}

// Default returns the profile of the RBoard with a PIC32MX170F256B.
func Default() Profile {
	return Profile{
		Name:               "RBoard PIC32MX170F256B",
		FlashBytes:         256 * 1024,
		RAMBytes:           64 * 1024,
		CPUMHz:             48,
		ReservedTimer:      1,
		ReservedPriorities: []int{1, 2},
		ConsolePins:        []pin.Pin{pin.MustParse("B4"), pin.MustParse("A4")},
		MaxVariables:       110,

		Memory: MemoryCosts{
			Integer:       16,
			Float:         24,
			StringBase:    24,
			ArrayBase:     64,
			ArrayElement:  16,
			HashBase:      128,
			HashEntry:     32,
			Object:        48,
			Default:       16,
			ArrayLiteral:  64,
			HashLiteral:   128,
			Instantiation: 48,
		},

		Timing: TimingCosts{
			BlockingIOMs: 10,
			LoopMs:       5,
		},

		Peripherals: map[peripheral.Kind]PeripheralCost{
			peripheral.ADC:  {CPUPercent: 5, PowerMA: 2.5, ResponseMs: 0.1, BottleneckAbove: 5},
			peripheral.PWM:  {CPUPercent: 2, PowerMA: 1, BottleneckAbove: 4},
			peripheral.GPIO: {CPUPercent: 0.5, PowerMA: 0.1, HintAbove: 15},
			peripheral.I2C:  {CPUPercent: 15, PowerMA: 5, ResponseMs: 10, BottleneckAbove: 2},
			peripheral.SPI:  {CPUPercent: 8, PowerMA: 3, ResponseMs: 1},
			peripheral.UART: {CPUPercent: 10, PowerMA: 4, ResponseMs: 5},
		},

		Limits: Limits{
			RAMWarningPercent:   60,
			RAMErrorPercent:     80,
			FlashWarningPercent: 60,
			FlashErrorPercent:   80,
			StringMemoryBytes:   4096,
			MaxDelayMs:          1000,
			MaxExecutionMs:      10000,
			CPUExcellentPercent: 50,
			CPUGoodPercent:      75,
		},
	}
}

var errInvalidProfile = errors.New("invalid profile")

// Validate checks the profile for values that would make the estimation
// meaningless.
func (p Profile) Validate() error {
	switch {
	case p.FlashBytes <= 0:
		return fmt.Errorf("%w: flash size must be positive", errInvalidProfile)
	case p.RAMBytes <= 0:
		return fmt.Errorf("%w: RAM size must be positive", errInvalidProfile)
	case p.Limits.RAMWarningPercent > p.Limits.RAMErrorPercent:
		return fmt.Errorf("%w: RAM warning threshold %.0f%% exceeds error threshold %.0f%%",
			errInvalidProfile, p.Limits.RAMWarningPercent, p.Limits.RAMErrorPercent)
	case p.Limits.FlashWarningPercent > p.Limits.FlashErrorPercent:
		return fmt.Errorf("%w: flash warning threshold %.0f%% exceeds error threshold %.0f%%",
			errInvalidProfile, p.Limits.FlashWarningPercent, p.Limits.FlashErrorPercent)
	}
	for _, cp := range p.ConsolePins {
		if !cp.Valid() {
			return fmt.Errorf("%w: console pin %s does not exist", errInvalidProfile, cp)
		}
	}
	return nil
}

// ReservedPrioritySet returns the interrupt priority levels used by the
// runtime.
func (p Profile) ReservedPrioritySet() set.Set[int] {
	levels := set.New[int]()
	for _, l := range p.ReservedPriorities {
		levels.Add(l)
	}
	return levels
}

// ConsolePinSet returns the pins of the system console.
func (p Profile) ConsolePinSet() set.Set[pin.Pin] {
	pins := set.New[pin.Pin]()
	for _, c := range p.ConsolePins {
		pins.Add(c)
	}
	return pins
}

// Cost returns the per instance cost of a peripheral kind.
func (p Profile) Cost(kind peripheral.Kind) PeripheralCost {
	return p.Peripherals[kind]
}
