// Package estimate predicts the RAM, execution time, CPU load and power draw
// of a program from static source features. All estimates are heuristic, the
// constants come from the hardware profile.
package estimate

import (
	"github.com/retroenv/rboardcheck/internal/diag"
	"github.com/retroenv/rboardcheck/internal/pin"
	"github.com/retroenv/rboardcheck/internal/profile"
	"github.com/retroenv/rboardcheck/internal/registry"
	"github.com/retroenv/rboardcheck/internal/source"
	"github.com/retroenv/rboardcheck/internal/usage"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

// Input contains the extracted features of one source.
type Input struct {
	Source      string
	Lines       []source.Line
	Events      []usage.Event
	MethodCalls []usage.MethodCall
	Timers      []usage.TimerUse
	Pins        map[pin.Pin]registry.Record

	// MaxResponseMs is the maximum allowed single delay, 0 uses the profile
	// limit.
	MaxResponseMs float64
}

// Estimate is the combined resource estimate of a source or a project.
type Estimate struct {
	RAMBytes    int     `json:"ram_bytes"`
	ExecutionMs float64 `json:"execution_ms"`
	CPUPercent  float64 `json:"cpu_percent"`
	PowerMA     float64 `json:"power_ma"`
	ResponseMs  float64 `json:"response_ms"`

	Memory      MemoryReport      `json:"memory"`
	Timing      TimingReport      `json:"timing"`
	Performance PerformanceReport `json:"performance"`

	Findings []diag.Finding `json:"findings,omitempty"`
}

// Add sums the scalar estimates of another estimate, used for project totals.
func (e *Estimate) Add(other Estimate) {
	e.RAMBytes += other.RAMBytes
	e.ExecutionMs += other.ExecutionMs
	e.CPUPercent += other.CPUPercent
	e.PowerMA += other.PowerMA
	e.ResponseMs += other.ResponseMs
}

// Errors returns the error findings of the estimate.
func (e Estimate) Errors() []diag.Finding {
	return diag.Filter(e.Findings, diag.SeverityError)
}

// Warnings returns the warning findings of the estimate.
func (e Estimate) Warnings() []diag.Finding {
	return diag.Filter(e.Findings, diag.SeverityWarning)
}

// Estimator runs all estimations against a hardware profile.
type Estimator struct {
	logger  *log.Logger
	profile profile.Profile

	reservedPriorities set.Set[int]
	consolePins        set.Set[pin.Pin]
}

// New returns a new estimator.
func New(logger *log.Logger, prof profile.Profile) *Estimator {
	return &Estimator{
		logger:             logger,
		profile:            prof,
		reservedPriorities: prof.ReservedPrioritySet(),
		consolePins:        prof.ConsolePinSet(),
	}
}

// Estimate runs the memory, timing, firmware compatibility and performance
// estimations. The findings are ordered by estimation.
func (e *Estimator) Estimate(in Input) Estimate {
	memory, memFindings := e.Memory(in.Source, in.Lines)
	timing, timingFindings := e.Timing(in)
	compat := e.Compatibility(in)
	perf, perfFindings := e.Performance(in.Source, in.Events)

	est := Estimate{
		RAMBytes:    memory.Bytes,
		ExecutionMs: timing.ExecutionMs,
		CPUPercent:  perf.CPUPercent,
		PowerMA:     perf.PowerMA,
		ResponseMs:  perf.ResponseMs,
		Memory:      memory,
		Timing:      timing,
		Performance: perf,
	}
	est.Findings = append(est.Findings, memFindings...)
	est.Findings = append(est.Findings, timingFindings...)
	est.Findings = append(est.Findings, compat...)
	est.Findings = append(est.Findings, perfFindings...)

	e.logger.Debug("Estimated resources",
		log.String("source", in.Source),
		log.Int("ram_bytes", est.RAMBytes),
		log.Int("findings", len(est.Findings)))
	return est
}
