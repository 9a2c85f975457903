// Package pipeline orchestrates the analysis workflow stages.
package pipeline

import (
	"context"
	"fmt"
	"runtime"

	"github.com/retroenv/rboardcheck/internal/bytecode"
	"github.com/retroenv/rboardcheck/internal/crossfile"
	"github.com/retroenv/rboardcheck/internal/detector"
	"github.com/retroenv/rboardcheck/internal/diag"
	"github.com/retroenv/rboardcheck/internal/estimate"
	"github.com/retroenv/rboardcheck/internal/extractor"
	"github.com/retroenv/rboardcheck/internal/loader"
	"github.com/retroenv/rboardcheck/internal/options"
	"github.com/retroenv/rboardcheck/internal/peripheral"
	"github.com/retroenv/rboardcheck/internal/pin"
	"github.com/retroenv/rboardcheck/internal/profile"
	"github.com/retroenv/rboardcheck/internal/registry"
	"github.com/retroenv/rboardcheck/internal/validator"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/sync/errgroup"
)

// Pipeline orchestrates the complete analysis workflow.
type Pipeline struct {
	logger     *log.Logger
	detector   *detector.Detector
	loader     *loader.Loader
	validators *validator.Set
	profile    profile.Profile
	estimator  *estimate.Estimator
}

// New creates a new analysis pipeline for a hardware profile.
func New(logger *log.Logger, prof profile.Profile) *Pipeline {
	return &Pipeline{
		logger:     logger,
		detector:   detector.New(logger),
		loader:     loader.New(),
		validators: validator.Default(),
		profile:    prof,
		estimator:  estimate.New(logger, prof),
	}
}

// FileResult is the analysis result of a single source.
type FileResult struct {
	Source string `json:"source"`
	Valid  bool   `json:"valid"`
	Failed bool   `json:"failed,omitempty"` // the source could not be read

	Allocation registry.Result             `json:"allocation"`
	Pins       map[pin.Pin]registry.Record `json:"pins"`
	Estimate   estimate.Estimate           `json:"estimate"`
	Bytecode   *bytecode.Report            `json:"bytecode,omitempty"`
	Findings   []diag.Finding              `json:"findings,omitempty"` // source level findings
}

// Errors returns all error findings in analysis order: source level,
// allocation, estimation and bytecode.
func (r FileResult) Errors() []diag.Finding {
	return r.collect(diag.SeverityError, r.Allocation.Errors)
}

// Warnings returns all warning findings in analysis order.
func (r FileResult) Warnings() []diag.Finding {
	return r.collect(diag.SeverityWarning, r.Allocation.Warnings)
}

// Infos returns all informational findings in analysis order.
func (r FileResult) Infos() []diag.Finding {
	return r.collect(diag.SeverityInfo, nil)
}

func (r FileResult) collect(severity diag.Severity, allocation []diag.Finding) []diag.Finding {
	var findings []diag.Finding
	findings = append(findings, diag.Filter(r.Findings, severity)...)
	findings = append(findings, allocation...)
	findings = append(findings, diag.Filter(r.Estimate.Findings, severity)...)
	if r.Bytecode != nil {
		findings = append(findings, diag.Filter(r.Bytecode.Findings, severity)...)
	}
	return findings
}

// ProjectResult is the analysis result of multiple sources.
type ProjectResult struct {
	Files     []FileResult         `json:"files"`
	Conflicts []crossfile.Conflict `json:"conflicts,omitempty"`
	Totals    estimate.Estimate    `json:"totals"`
	Valid     bool                 `json:"valid"`
}

// AnalyzeSource analyzes an in memory source.
func (p *Pipeline) AnalyzeSource(sourceID, text string, opts options.Analysis) FileResult {
	parsed := extractor.Parse(text, sourceID)

	reg := registry.New(p.logger, p.validators)
	allocation := reg.AllocateAll(parsed.Events)
	pins := reg.Pins()

	result := FileResult{
		Source:     sourceID,
		Allocation: allocation,
		Pins:       pins,
	}

	for _, w := range p.validators.UART().CompleteSetupWarnings(reg.PinsOf(peripheral.UART)) {
		result.Findings = append(result.Findings, diag.Warnf(diag.Advisory, sourceID, 0, "%s", w))
	}
	for _, name := range parsed.Bindings.Unused() {
		b, _ := parsed.Bindings.Get(name)
		result.Findings = append(result.Findings, diag.Infof(diag.Advisory, sourceID, b.Line,
			"%s instance '%s' is never used", b.Kind, name))
	}

	result.Estimate = p.estimator.Estimate(estimate.Input{
		Source:        sourceID,
		Lines:         parsed.Lines,
		Events:        parsed.Events,
		MethodCalls:   parsed.MethodCalls,
		Timers:        parsed.Timers,
		Pins:          pins,
		MaxResponseMs: opts.MaxResponseMs,
	})

	result.Valid = len(result.Errors()) == 0
	p.logger.Debug("Analyzed source",
		log.String("source", sourceID),
		log.Int("events", len(parsed.Events)),
		log.Int("pins", len(pins)),
		log.Int("errors", len(result.Errors())))
	return result
}

// AnalyzeFile reads and analyzes a source file. A file that can not be read
// results in a failed result with a FileNotFound finding.
func (p *Pipeline) AnalyzeFile(ctx context.Context, path string, opts options.Analysis) FileResult {
	src, err := p.loader.Load(path)
	if err != nil {
		f := diag.FromError(diag.SeverityError, err, path, 0)
		if f.Code == diag.Advisory {
			f.Code = diag.FileNotFound
		}
		p.logger.Debug("Loading source failed", log.String("file", path), log.Err(err))
		return FileResult{
			Source:   path,
			Failed:   true,
			Findings: []diag.Finding{f},
		}
	}

	result := p.AnalyzeSource(path, src.Text, opts)
	if opts.Bytecode && ctx.Err() == nil {
		p.checkBytecode(&result)
	}
	return result
}

func (p *Pipeline) checkBytecode(result *FileResult) {
	path, ok := p.detector.Companion(result.Source)
	if !ok {
		return
	}

	h, err := bytecode.ReadFile(path)
	if err != nil {
		result.Findings = append(result.Findings, bytecodeFinding(path, err))
		result.Valid = false
		return
	}

	report := bytecode.Check(h, path, p.profile)
	result.Bytecode = &report
	result.Valid = len(result.Errors()) == 0
}

// bytecodeFinding converts a bytecode read error into a finding. Errors that
// are not caused by the file content are reported as unreadable file.
func bytecodeFinding(path string, err error) diag.Finding {
	if diag.CodeOf(err) == diag.MalformedBytecodeHeader {
		return diag.Errorf(diag.MalformedBytecodeHeader, path, 0, "invalid mruby bytecode file: %v", err)
	}
	return diag.Errorf(diag.FileNotFound, path, 0, "reading bytecode file failed: %v", err)
}

// AnalyzeProject analyzes the files concurrently, every file pass owns its
// registry. The pin maps are merged after all passes finished. An error is
// only returned if the context was cancelled.
func (p *Pipeline) AnalyzeProject(ctx context.Context, paths []string, opts options.Analysis) (ProjectResult, error) {
	results := make([]FileResult, len(paths))

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("analyzing %s: %w", path, err)
			}
			results[i] = p.AnalyzeFile(gctx, path, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ProjectResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return ProjectResult{}, fmt.Errorf("analyzing project: %w", err)
	}

	return p.merge(results), nil
}

func (p *Pipeline) merge(results []FileResult) ProjectResult {
	units := make([]crossfile.Unit, 0, len(results))
	project := ProjectResult{Files: results}

	for _, r := range results {
		units = append(units, crossfile.Unit{
			Source: r.Source,
			Pins:   r.Pins,
			Valid:  r.Valid,
		})
		project.Totals.Add(r.Estimate)
	}

	project.Conflicts = crossfile.Merge(units)
	project.Valid = crossfile.Valid(units, project.Conflicts)

	p.logger.Debug("Merged project",
		log.Int("files", len(results)),
		log.Int("conflicts", len(project.Conflicts)))
	return project
}
