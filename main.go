// Package main implements the command line tool checking RBoard mruby
// programs for pin conflicts and resource limits.
package main

import (
	"context"
	"errors"
	"os"

	"github.com/retroenv/rboardcheck/internal/cli"
	"github.com/retroenv/rboardcheck/internal/config"
	"github.com/retroenv/rboardcheck/internal/fileprocessor"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	opts, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			fileprocessor.PrintBanner(logger, opts, version, commit, date)
			usageErr.ShowUsage()
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	fileprocessor.PrintBanner(logger, opts, version, commit, date)

	prof, err := config.LoadProfile(opts.Profile)
	if err != nil {
		logger.Fatal("Loading hardware profile failed", log.Err(err))
	}

	valid, err := fileprocessor.ProcessFiles(ctx, logger, opts, prof)
	if err != nil {
		// Handle context cancellation (Ctrl+C) gracefully
		if errors.Is(err, context.Canceled) {
			logger.Info("Operation cancelled")
			os.Exit(1)
		}
		logger.Fatal("Analysis failed", log.Err(err))
	}
	if !valid {
		os.Exit(1)
	}
}
