// Package report writes analysis results as text or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/rboardcheck/internal/crossfile"
	"github.com/retroenv/rboardcheck/internal/diag"
	"github.com/retroenv/rboardcheck/internal/estimate"
	"github.com/retroenv/rboardcheck/internal/pin"
	"github.com/retroenv/rboardcheck/internal/pipeline"
	"github.com/retroenv/rboardcheck/internal/registry"
)

// Options of the writer.
type Options struct {
	JSON  bool
	Infos bool // include informational findings in text output
}

// Writer writes analysis results to an output.
type Writer struct {
	options Options
	writer  io.Writer
}

// New creates a new report writer.
func New(writer io.Writer, options Options) *Writer {
	return &Writer{
		options: options,
		writer:  writer,
	}
}

// WriteFile writes the result of a single file.
func (w Writer) WriteFile(r pipeline.FileResult) error {
	if w.options.JSON {
		return w.writeJSON(r)
	}
	return w.writeFile(r)
}

// WriteProject writes the result of a project with all its files.
func (w Writer) WriteProject(r pipeline.ProjectResult) error {
	if w.options.JSON {
		return w.writeJSON(r)
	}

	for _, f := range r.Files {
		if err := w.writeFile(f); err != nil {
			return err
		}
	}

	if len(r.Conflicts) > 0 {
		sources := strings.Join(crossfile.Sources(r.Conflicts), ", ")
		if err := w.printf("conflicts between %s:\n", sources); err != nil {
			return err
		}
		for _, c := range r.Conflicts {
			if err := w.printf("  %s\n", c); err != nil {
				return err
			}
		}
	}

	if err := w.printf("project: %s (%d files, %d conflicts)\n",
		validity(r.Valid), len(r.Files), len(r.Conflicts)); err != nil {
		return err
	}
	return w.writeEstimate("totals", r.Totals)
}

func (w Writer) writeJSON(v any) error {
	enc := json.NewEncoder(w.writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

func (w Writer) writeFile(r pipeline.FileResult) error {
	if err := w.printf("%s: %s\n", r.Source, validity(r.Valid)); err != nil {
		return err
	}
	if err := w.writeFindings(r.Errors()); err != nil {
		return err
	}
	if err := w.writeFindings(r.Warnings()); err != nil {
		return err
	}
	if w.options.Infos {
		if err := w.writeFindings(r.Infos()); err != nil {
			return err
		}
	}
	if r.Failed {
		return nil
	}

	if err := w.writePins(r.Pins); err != nil {
		return err
	}
	if err := w.writeEstimate("estimate", r.Estimate); err != nil {
		return err
	}

	if b := r.Bytecode; b != nil {
		if err := w.printf("  bytecode: %d bytes, version %s (%.1f%% of flash)\n",
			b.Header.Size, b.Header.Version, b.Percent); err != nil {
			return err
		}
	}
	return nil
}

func (w Writer) writeFindings(findings []diag.Finding) error {
	for _, f := range findings {
		if err := w.printf("  %-7s %s\n", f.Severity, f.Error()); err != nil {
			return err
		}
	}
	return nil
}

func (w Writer) writePins(pins map[pin.Pin]registry.Record) error {
	if len(pins) == 0 {
		return nil
	}

	sorted := make([]pin.Pin, 0, len(pins))
	for p := range pins {
		sorted = append(sorted, p)
	}
	pin.Sort(sorted)

	if err := w.printf("  pins:\n"); err != nil {
		return err
	}
	for _, p := range sorted {
		rec := pins[p]
		if err := w.printf("    %-4s %-5s %-6s line %-4d %s\n",
			p, rec.Kind, rec.Function, rec.Line, rec.Info); err != nil {
			return err
		}
	}
	return nil
}

func (w Writer) writeEstimate(name string, e estimate.Estimate) error {
	return w.printf("  %s: RAM %d bytes, execution %.1f ms, CPU %.1f%%, power %.1f mA, response %.1f ms\n",
		name, e.RAMBytes, e.ExecutionMs, e.CPUPercent, e.PowerMA, e.ResponseMs)
}

func (w Writer) printf(format string, args ...any) error {
	if _, err := fmt.Fprintf(w.writer, format, args...); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

func validity(valid bool) string {
	if valid {
		return "valid"
	}
	return "invalid"
}
