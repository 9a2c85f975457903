// Package fileprocessor handles file discovery and processing operations
package fileprocessor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/retroenv/rboardcheck/internal/detector"
	"github.com/retroenv/rboardcheck/internal/options"
	"github.com/retroenv/rboardcheck/internal/pipeline"
	"github.com/retroenv/rboardcheck/internal/profile"
	"github.com/retroenv/rboardcheck/internal/report"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

var errNoFiles = errors.New("no source files found")

// ProcessFiles analyzes all input files and writes the report. A single file
// is analyzed on its own, multiple files are analyzed as one project. The
// returned flag reports whether all analysed units are valid.
func ProcessFiles(ctx context.Context, logger *log.Logger, opts options.Program, prof profile.Profile) (bool, error) {
	files, err := GetFilesToProcess(logger, &opts)
	if err != nil {
		return false, err
	}

	writer, err := createWriter(opts)
	if err != nil {
		return false, fmt.Errorf("creating writer: %w", err)
	}
	defer func() {
		if closer, ok := writer.(io.Closer); ok && writer != os.Stdout {
			_ = closer.Close()
		}
	}()

	p := pipeline.New(logger, prof)
	analysis := options.NewAnalysis(opts)
	w := report.New(writer, report.Options{
		JSON:  opts.JSON,
		Infos: opts.Debug,
	})

	if len(files) == 1 && opts.Batch == "" {
		result := p.AnalyzeFile(ctx, files[0], analysis)
		if err := w.WriteFile(result); err != nil {
			return false, fmt.Errorf("writing report: %w", err)
		}
		return result.Valid, nil
	}

	logger.Debug("Analyzing project", log.Int("files", len(files)))
	result, err := p.AnalyzeProject(ctx, files, analysis)
	if err != nil {
		return false, fmt.Errorf("analyzing project: %w", err)
	}
	if err := w.WriteProject(result); err != nil {
		return false, fmt.Errorf("writing report: %w", err)
	}
	return result.Valid, nil
}

// GetFilesToProcess returns the list of files to process based on options.
// Directories are walked for source files, the batch pattern is globbed.
// Every file is returned once in the order it was found.
func GetFilesToProcess(logger *log.Logger, opts *options.Program) ([]string, error) {
	d := detector.New(logger)
	var files []string
	seen := set.New[string]()
	add := func(path string) {
		path = filepath.Clean(path)
		if seen.Contains(path) {
			return
		}
		seen.Add(path)
		files = append(files, path)
	}

	for _, input := range opts.Inputs {
		info, err := os.Stat(input)
		if err != nil || !info.IsDir() {
			// missing files are reported by the analysis
			add(input)
			continue
		}

		sources, err := sourceFiles(d, input)
		if err != nil {
			return nil, err
		}
		for _, path := range sources {
			add(path)
		}
	}

	if opts.Batch != "" {
		matches, err := filepath.Glob(opts.Batch)
		if err != nil {
			return nil, fmt.Errorf("globbing batch pattern: %w", err)
		}
		for _, path := range matches {
			add(path)
		}
	}

	if len(files) == 0 {
		return nil, errNoFiles
	}
	return files, nil
}

func sourceFiles(d *detector.Detector, dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if path != dir && strings.HasPrefix(entry.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Detect(path) == detector.Source {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory %s: %w", dir, err)
	}
	return files, nil
}

func createWriter(opts options.Program) (io.Writer, error) {
	if opts.Output == "" {
		return os.Stdout, nil
	}

	file, err := os.Create(opts.Output)
	if err != nil {
		return nil, fmt.Errorf("creating output file %s: %w", opts.Output, err)
	}
	return file, nil
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet || opts.JSON {
		return
	}

	versionString := version
	if commit != "" {
		if len(commit) > 7 {
			commit = commit[:7]
		}
		versionString += fmt.Sprintf(" (%s)", commit)
	}

	logger.Info("rboardcheck", log.String("version", versionString))

	if date != "" && !strings.Contains(date, "unknown") {
		logger.Info("Build", log.String("date", date))
	}
}
