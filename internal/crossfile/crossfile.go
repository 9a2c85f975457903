// Package crossfile merges the pin maps of independently analysed files and
// reports pins that are claimed by more than one file.
package crossfile

import (
	"fmt"

	"github.com/retroenv/rboardcheck/internal/diag"
	"github.com/retroenv/rboardcheck/internal/peripheral"
	"github.com/retroenv/rboardcheck/internal/pin"
	"github.com/retroenv/rboardcheck/internal/registry"
	"github.com/retroenv/retrogolib/set"
)

// Unit is the finished result of a single file pass.
type Unit struct {
	Source string
	Pins   map[pin.Pin]registry.Record
	Valid  bool
}

// Conflict is a pin claimed by accepted allocations of 2 different sources.
type Conflict struct {
	Pin     pin.Pin            `json:"pin"`
	Sources [2]string          `json:"sources"`
	Kinds   [2]peripheral.Kind `json:"kinds"`
	Lines   [2]int             `json:"lines"`
	Code    diag.Code          `json:"code"`
}

// Finding returns the conflict as an error finding of the later source.
func (c Conflict) Finding() diag.Finding {
	return diag.Errorf(diag.CrossFileConflict, c.Sources[1], c.Lines[1],
		"pin %s is used by %s in %s:%d and by %s in %s:%d",
		c.Pin, c.Kinds[0], c.Sources[0], c.Lines[0], c.Kinds[1], c.Sources[1], c.Lines[1])
}

func (c Conflict) String() string {
	return fmt.Sprintf("pin %s: %s vs %s", c.Pin, c.Sources[0], c.Sources[1])
}

// Merge walks the units in order and returns a conflict for every pin that a
// unit claims after a unit with a different source claimed it first. Within a
// unit every pin appears once, duplicates inside a file were already
// rejected by its registry.
func Merge(units []Unit) []Conflict {
	first := make(map[pin.Pin]registry.Record)
	var conflicts []Conflict

	for _, u := range units {
		for _, p := range sortedPins(u.Pins) {
			rec := u.Pins[p]
			existing, ok := first[p]
			if !ok {
				first[p] = rec
				continue
			}
			if existing.Source == rec.Source {
				continue
			}
			conflicts = append(conflicts, Conflict{
				Pin:     p,
				Sources: [2]string{existing.Source, rec.Source},
				Kinds:   [2]peripheral.Kind{existing.Kind, rec.Kind},
				Lines:   [2]int{existing.Line, rec.Line},
				Code:    diag.CrossFileConflict,
			})
		}
	}
	return conflicts
}

// Valid reports whether every unit passed its local validation and no
// conflicts exist.
func Valid(units []Unit, conflicts []Conflict) bool {
	if len(conflicts) > 0 {
		return false
	}
	for _, u := range units {
		if !u.Valid {
			return false
		}
	}
	return true
}

// Sources returns the distinct sources involved in conflicts in order of
// their first appearance.
func Sources(conflicts []Conflict) []string {
	seen := set.New[string]()
	var sources []string
	for _, c := range conflicts {
		for _, s := range c.Sources {
			if seen.Contains(s) {
				continue
			}
			seen.Add(s)
			sources = append(sources, s)
		}
	}
	return sources
}

func sortedPins(pins map[pin.Pin]registry.Record) []pin.Pin {
	sorted := make([]pin.Pin, 0, len(pins))
	for p := range pins {
		sorted = append(sorted, p)
	}
	pin.Sort(sorted)
	return sorted
}
