// Package registry assigns physical pins to peripherals. Every pin can be
// claimed once per registry, each claim is checked against the capability
// tables of the peripheral.
package registry

import (
	"fmt"
	"sort"

	"github.com/retroenv/rboardcheck/internal/diag"
	"github.com/retroenv/rboardcheck/internal/peripheral"
	"github.com/retroenv/rboardcheck/internal/pin"
	"github.com/retroenv/rboardcheck/internal/usage"
	"github.com/retroenv/rboardcheck/internal/validator"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

// Record is an accepted pin allocation.
type Record struct {
	Pin      pin.Pin         `json:"pin"`
	Kind     peripheral.Kind `json:"kind"`
	Function string          `json:"function,omitempty"`
	Source   string          `json:"source"`
	Line     int             `json:"line"`
	Info     string          `json:"info,omitempty"`
}

// Result of all allocations of a registry in the order they were made.
type Result struct {
	Accepted []Record      `json:"accepted"`
	Errors   []diag.Finding `json:"errors,omitempty"`
	Warnings []diag.Finding `json:"warnings,omitempty"`
}

// Valid reports whether no allocation failed.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Registry owns the pin map of one analysis unit. It is not safe for
// concurrent use, every file pass creates its own registry.
type Registry struct {
	logger     *log.Logger
	validators *validator.Set

	pins   map[pin.Pin]Record
	result Result
}

// New returns a new empty registry.
func New(logger *log.Logger, validators *validator.Set) *Registry {
	return &Registry{
		logger:     logger,
		validators: validators,
		pins:       make(map[pin.Pin]Record),
	}
}

// AllocateAll allocates the pins of all events in order and returns the
// accumulated result.
func (r *Registry) AllocateAll(events []usage.Event) Result {
	for _, ev := range events {
		r.Allocate(ev)
	}
	return r.Result()
}

// Allocate resolves the pins referenced by the event and claims each of them.
// Pins of multi pin peripherals are committed independently, a failing pin
// does not roll back an already claimed sibling pin.
func (r *Registry) Allocate(ev usage.Event) {
	requests, err := r.requests(ev)
	if err != nil {
		r.addError(diag.FromError(diag.SeverityError, err, ev.Source, ev.Line))
		return
	}
	if len(requests) == 0 {
		r.logger.Debug("Peripheral without pin argument",
			log.Stringer("kind", ev.Kind),
			log.String("source", ev.Source),
			log.Int("line", ev.Line))
		return
	}

	warnings := set.New[string]()
	var claimed []request
	for _, req := range requests {
		p, err := req.resolve()
		if err != nil {
			r.addError(diag.FromError(diag.SeverityError, err, ev.Source, ev.Line))
			continue
		}

		res, err := r.claim(p, ev.Kind, validator.Request{
			Line:     ev.Line,
			Function: req.role,
			Unit:     req.unit,
		}, ev.Source, ev.Line)
		if err != nil {
			r.addError(diag.FromError(diag.SeverityError, err, ev.Source, ev.Line))
			continue
		}
		claimed = append(claimed, req)

		for _, w := range res.Warnings {
			if warnings.Contains(w) {
				continue
			}
			warnings.Add(w)
			r.result.Warnings = append(r.result.Warnings, diag.Warnf(diag.Advisory, ev.Source, ev.Line, "%s", w))
		}
	}

	if len(claimed) > 0 && len(claimed) < len(requests) {
		r.result.Warnings = append(r.result.Warnings, diag.Warnf(diag.Advisory, ev.Source, ev.Line,
			"%s is only partially allocated, missing: %s", ev.Kind, missingRoles(requests, claimed)))
	}
}

// Claim validates and registers a single pin for a peripheral.
func (r *Registry) Claim(p pin.Pin, kind peripheral.Kind, function, source string, line int) error {
	res, err := r.claim(p, kind, validator.Request{Line: line, Function: function}, source, line)
	if err != nil {
		f := diag.FromError(diag.SeverityError, err, source, line)
		r.addError(f)
		return f
	}
	for _, w := range res.Warnings {
		r.result.Warnings = append(r.result.Warnings, diag.Warnf(diag.Advisory, source, line, "%s", w))
	}
	return nil
}

func (r *Registry) claim(p pin.Pin, kind peripheral.Kind, req validator.Request,
	source string, line int) (validator.Result, error) {

	if existing, ok := r.pins[p]; ok {
		return validator.Result{}, fmt.Errorf("%w: pin %s is already used by %s at %s:%d",
			diag.DuplicatePinClaim, p, existing.Kind, existing.Source, existing.Line)
	}

	v, err := r.validators.For(kind)
	if err != nil {
		return validator.Result{}, err
	}
	res, err := v.Validate(p, req)
	if err != nil {
		return validator.Result{}, err
	}

	rec := Record{
		Pin:      p,
		Kind:     kind,
		Function: res.Capability.Function,
		Source:   source,
		Line:     line,
		Info:     res.Info,
	}
	r.pins[p] = rec
	r.result.Accepted = append(r.result.Accepted, rec)

	r.logger.Debug("Registered pin",
		log.Stringer("pin", p),
		log.Stringer("kind", kind),
		log.String("function", rec.Function),
		log.String("source", source),
		log.Int("line", line))
	return res, nil
}

func (r *Registry) addError(f diag.Finding) {
	r.result.Errors = append(r.result.Errors, f)
}

// Result returns the accumulated allocation result.
func (r *Registry) Result() Result {
	return r.result
}

// Valid reports whether no allocation failed.
func (r *Registry) Valid() bool {
	return r.result.Valid()
}

// Pins returns a copy of the pin map.
func (r *Registry) Pins() map[pin.Pin]Record {
	pins := make(map[pin.Pin]Record, len(r.pins))
	for p, rec := range r.pins {
		pins[p] = rec
	}
	return pins
}

// Lookup returns the record of a claimed pin.
func (r *Registry) Lookup(p pin.Pin) (Record, bool) {
	rec, ok := r.pins[p]
	return rec, ok
}

// Records returns the accepted records ordered by pin.
func (r *Registry) Records() []Record {
	records := make([]Record, 0, len(r.pins))
	for _, rec := range r.pins {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Pin.Less(records[j].Pin)
	})
	return records
}

// PinsOf returns the claimed pins of a peripheral kind ordered by pin.
func (r *Registry) PinsOf(kind peripheral.Kind) []pin.Pin {
	var pins []pin.Pin
	for _, rec := range r.Records() {
		if rec.Kind == kind {
			pins = append(pins, rec.Pin)
		}
	}
	return pins
}
