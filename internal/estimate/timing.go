package estimate

import (
	"regexp"
	"strconv"

	"github.com/retroenv/rboardcheck/internal/diag"
	"github.com/retroenv/rboardcheck/internal/source"
	"github.com/retroenv/rboardcheck/internal/usage"
	"github.com/retroenv/retrogolib/set"
)

var (
	delayPattern    = regexp.MustCompile(`\b(sleep_ms|sleep|delay|wait)\b\s*\(?\s*(\d+(?:\.\d+)?)\s*\)?`)
	timerRefPattern = regexp.MustCompile(`\bTimer(\d+)\b`)
	loopPattern     = regexp.MustCompile(`\b(while|until|for|loop)\b|\.(times|each)\b`)
	mainLoopPattern = regexp.MustCompile(`\bwhile\b.*\btrue\b|\bloop\s+do\b`)
)

// Delay is a delay call found in the source.
type Delay struct {
	Call string  `json:"call"`
	Ms   float64 `json:"ms"`
	Line int     `json:"line"`
}

// TimerRef is a hardware timer referenced by name.
type TimerRef struct {
	Unit int `json:"unit"`
	Line int `json:"line"`
}

// TimingReport is the execution time estimate of a source.
type TimingReport struct {
	ExecutionMs float64            `json:"execution_ms"`
	Delays      []Delay            `json:"delays,omitempty"`
	Timers      []TimerRef         `json:"timers,omitempty"`
	Blocking    []usage.MethodCall `json:"blocking,omitempty"`
	Loops       int                `json:"loops"`
}

// Timing estimates the execution time by adding delays, blocking I/O calls
// and loop overhead. sleep takes seconds, all other delay calls milliseconds.
func (e *Estimator) Timing(in Input) (TimingReport, []diag.Finding) {
	costs := e.profile.Timing
	var r TimingReport
	var findings []diag.Finding

	for _, line := range in.Lines {
		if line.Text == "" {
			continue
		}
		text := source.MaskStrings(line.Text)

		for _, m := range delayPattern.FindAllStringSubmatch(text, -1) {
			ms, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			if m[1] == "sleep" {
				ms *= 1000
			}
			r.Delays = append(r.Delays, Delay{Call: m[1], Ms: ms, Line: line.Number})
			r.ExecutionMs += ms
		}

		for _, m := range timerRefPattern.FindAllStringSubmatch(text, -1) {
			unit, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			r.Timers = append(r.Timers, TimerRef{Unit: unit, Line: line.Number})
		}

		if loopPattern.MatchString(text) {
			r.Loops++
			r.ExecutionMs += costs.LoopMs
		}
	}

	for _, call := range in.MethodCalls {
		if !call.Blocking() {
			continue
		}
		r.Blocking = append(r.Blocking, call)
		r.ExecutionMs += costs.BlockingIOMs
	}

	findings = append(findings, e.timerFindings(in.Source, r.Timers)...)
	findings = append(findings, e.delayFindings(in, r)...)
	findings = append(findings, e.realtimeFindings(in)...)
	return r, findings
}

func (e *Estimator) timerFindings(src string, timers []TimerRef) []diag.Finding {
	var findings []diag.Finding
	for _, t := range timers {
		if t.Unit == e.profile.ReservedTimer {
			findings = append(findings, diag.Errorf(diag.Resource, src, t.Line,
				"Timer%d is reserved for the runtime system tick", t.Unit))
			continue
		}
		findings = append(findings, diag.Infof(diag.Resource, src, t.Line, "Timer%d is used", t.Unit))
	}
	return findings
}

func (e *Estimator) delayFindings(in Input, r TimingReport) []diag.Finding {
	limits := e.profile.Limits
	maxDelay := in.MaxResponseMs
	if maxDelay <= 0 {
		maxDelay = limits.MaxDelayMs
	}

	var findings []diag.Finding
	for _, d := range r.Delays {
		if d.Ms > maxDelay {
			findings = append(findings, diag.Warnf(diag.Resource, in.Source, d.Line,
				"long delay (%gms) may affect system responsiveness, limit is %gms", d.Ms, maxDelay))
		}
	}
	if r.ExecutionMs > limits.MaxExecutionMs {
		findings = append(findings, diag.Warnf(diag.Resource, in.Source, 0,
			"high estimated execution time: %gms", r.ExecutionMs))
	}
	return findings
}

// realtimeFindings warns about blocking reads on the line of a main loop
// header like `loop do adc.read end`.
func (e *Estimator) realtimeFindings(in Input) []diag.Finding {
	headers := set.New[int]()
	for _, line := range in.Lines {
		if mainLoopPattern.MatchString(source.MaskStrings(line.Text)) {
			headers.Add(line.Number)
		}
	}

	var findings []diag.Finding
	reported := set.New[int]()
	for _, call := range in.MethodCalls {
		if !call.Blocking() || !headers.Contains(call.Line) || reported.Contains(call.Line) {
			continue
		}
		reported.Add(call.Line)
		findings = append(findings, diag.Warnf(diag.Resource, in.Source, call.Line,
			"blocking I/O (%s.%s) in main loop may violate real-time constraints", call.Var, call.Method))
	}
	return findings
}
