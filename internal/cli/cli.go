// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/retroenv/rboardcheck/internal/options"
)

// ParseFlags parses the command line flags and returns the program options.
func ParseFlags() (options.Program, error) {
	return parseArgs(os.Args[0], os.Args[1:])
}

func parseArgs(name string, arguments []string) (options.Program, error) {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(arguments)
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.Batch == "") {
		return opts, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, err
	}
	if err := validateOptions(opts); err != nil {
		return opts, err
	}

	opts.Inputs = args
	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

// ShowUsage prints the usage and the defaults of all flags.
func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: rboardcheck [options] <files or directories>\n\n")
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && strings.HasPrefix(arg, "-") {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after files to analyze, please pass all options before the files", arg),
			}
		}
	}
	return nil
}

// validateOptions checks the numeric option ranges.
func validateOptions(opts options.Program) error {
	if opts.Jobs < 0 {
		return fmt.Errorf("invalid number of jobs %d, must not be negative", opts.Jobs)
	}
	if opts.MaxResponseMs < 0 {
		return fmt.Errorf("invalid maximum response time %g, must not be negative", opts.MaxResponseMs)
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Output, "o", "", "name of the output report file, printed on console if no name given")
	flags.StringVar(&opts.Profile, "profile", "", "JSON hardware profile file overriding the RBoard defaults")
	flags.StringVar(&opts.Batch, "batch", "", "analyze all files matching the pattern as one project, for example src/*.rb")
	flags.BoolVar(&opts.JSON, "json", false, "write the report as JSON")
	flags.BoolVar(&opts.NoBytecode, "no-bytecode", false, "skip the size check of .mrb bytecode files next to the sources")
	flags.Float64Var(&opts.MaxResponseMs, "max-response", 0, "maximum allowed single delay in milliseconds, 0 uses the profile limit")
	flags.IntVar(&opts.Jobs, "j", 0, "number of files analyzed in parallel, 0 uses the number of CPUs")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}
