package estimate

import (
	"fmt"

	"github.com/retroenv/rboardcheck/internal/diag"
	"github.com/retroenv/rboardcheck/internal/peripheral"
	"github.com/retroenv/rboardcheck/internal/profile"
	"github.com/retroenv/rboardcheck/internal/usage"
)

// PerformanceReport is the CPU, power and response time estimate of the
// peripherals of a source.
type PerformanceReport struct {
	CPUPercent    float64                 `json:"cpu_percent"`
	PowerMA       float64                 `json:"power_ma"`
	ResponseMs    float64                 `json:"response_ms"`
	Counts        map[peripheral.Kind]int `json:"counts"`
	Bottlenecks   []string                `json:"bottlenecks,omitempty"`
	Optimizations []string                `json:"optimizations,omitempty"`
	Rating        profile.Rating          `json:"rating"`
}

type advice struct {
	bottleneck   string
	optimization string
}

var bottleneckAdvice = map[peripheral.Kind]advice{
	peripheral.ADC: {
		bottleneck:   "high ADC usage (%d instances) may impact performance",
		optimization: "consider using ADC interrupt mode for better performance",
	},
	peripheral.PWM: {
		bottleneck: "all PWM units in use (%d instances), no expansion possible",
	},
	peripheral.I2C: {
		bottleneck:   "multiple I2C instances (%d) may cause bus contention",
		optimization: "consider I2C transaction batching",
	},
}

var hintAdvice = map[peripheral.Kind]string{
	peripheral.GPIO: "consider port-based GPIO operations for better performance",
}

// Performance adds the per instance costs of every constructed peripheral.
func (e *Estimator) Performance(src string, events []usage.Event) (PerformanceReport, []diag.Finding) {
	r := PerformanceReport{
		Counts: make(map[peripheral.Kind]int),
	}
	for _, ev := range events {
		cost := e.profile.Cost(ev.Kind)
		r.Counts[ev.Kind]++
		r.CPUPercent += cost.CPUPercent
		r.PowerMA += cost.PowerMA
		r.ResponseMs += cost.ResponseMs
	}

	var findings []diag.Finding
	for _, kind := range peripheral.All() {
		count := r.Counts[kind]
		cost := e.profile.Cost(kind)

		if cost.BottleneckAbove > 0 && count > cost.BottleneckAbove {
			a := bottleneckAdvice[kind]
			msg := fmt.Sprintf("%s instances exceed %d", kind, cost.BottleneckAbove)
			if a.bottleneck != "" {
				msg = fmt.Sprintf(a.bottleneck, count)
			}
			r.Bottlenecks = append(r.Bottlenecks, msg)
			findings = append(findings, diag.Warnf(diag.Resource, src, 0, "%s", msg))
			if a.optimization != "" {
				r.Optimizations = append(r.Optimizations, a.optimization)
			}
		}

		if cost.HintAbove > 0 && count > cost.HintAbove {
			hint, ok := hintAdvice[kind]
			if !ok {
				hint = fmt.Sprintf("consider reducing the number of %s instances", kind)
			}
			r.Optimizations = append(r.Optimizations, hint)
		}
	}
	for _, o := range r.Optimizations {
		findings = append(findings, diag.Infof(diag.Resource, src, 0, "%s", o))
	}

	r.Rating = e.profile.Rate(r.CPUPercent)
	if r.Rating == profile.RatingPoor {
		findings = append(findings, diag.Warnf(diag.Resource, src, 0,
			"estimated CPU usage %.1f%% is rated %s, optimization needed", r.CPUPercent, r.Rating))
	}
	return r, findings
}
