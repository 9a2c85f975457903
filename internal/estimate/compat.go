package estimate

import (
	"github.com/retroenv/rboardcheck/internal/diag"
	"github.com/retroenv/rboardcheck/internal/pin"
	"github.com/retroenv/rboardcheck/internal/usage"
)

// Compatibility checks the used resources against the resources reserved by
// the firmware: the scheduler timer, system interrupt priority levels and the
// console UART pins.
func (e *Estimator) Compatibility(in Input) []diag.Finding {
	var findings []diag.Finding

	for _, t := range in.Timers {
		if t.Unit != 0 && t.Unit == e.profile.ReservedTimer {
			findings = append(findings, diag.Errorf(diag.Resource, t.Source, t.Line,
				"Timer%d is reserved for the runtime system tick and cannot be used, use another timer instead",
				t.Unit))
		}
		if t.Priority != 0 {
			findings = append(findings, e.priorityFindings(t.Priority, t.Source, t.Line)...)
		}
	}

	for _, ev := range in.Events {
		if v, ok := ev.NamedArg("priority"); ok && v.Type == usage.Int {
			findings = append(findings, e.priorityFindings(v.Int, ev.Source, ev.Line)...)
		}
	}

	pins := make([]pin.Pin, 0, len(in.Pins))
	for p := range in.Pins {
		pins = append(pins, p)
	}
	pin.Sort(pins)
	for _, p := range pins {
		if !e.consolePins.Contains(p) {
			continue
		}
		rec := in.Pins[p]
		findings = append(findings, diag.Warnf(diag.Resource, rec.Source, rec.Line,
			"pin %s (%s) may conflict with the console UART, avoid console pins unless needed", p, rec.Kind))
	}
	return findings
}

func (e *Estimator) priorityFindings(level int, src string, line int) []diag.Finding {
	if !e.reservedPriorities.Contains(level) {
		return nil
	}
	return []diag.Finding{diag.Warnf(diag.Resource, src, line,
		"interrupt priority %d may conflict with system interrupts, use higher priorities for application code",
		level)}
}
