// Package options contains the program options.
package options

// Positional contains positional arguments.
type Positional struct {
	Files []string `arg:"positional" usage:"source files or directories to analyze"`
}

// Parameters contains file path options.
type Parameters struct {
	Inputs  []string
	Output  string `flag:"o" usage:"output report file (default: stdout)"`
	Profile string `flag:"profile" usage:"JSON hardware profile overriding the RBoard defaults"`
	Batch   string `flag:"batch" usage:"analyze files matching pattern as one project (e.g. src/*.rb)"`
}

// Flags contains behavior options.
type Flags struct {
	JSON          bool    `flag:"json" usage:"write the report as JSON"`
	NoBytecode    bool    `flag:"no-bytecode" usage:"skip the .mrb bytecode size check"`
	MaxResponseMs float64 `flag:"max-response" usage:"maximum allowed delay in milliseconds (default: profile limit)"`
	Jobs          int     `flag:"j" usage:"number of files analyzed in parallel (default: number of CPUs)"`
	Debug         bool    `flag:"debug" usage:"enable debug logging"`
	Quiet         bool    `flag:"q" usage:"quiet mode"`
}

// Program options of the analyzer.
type Program struct {
	Parameters
	Flags
}

// Analysis defines options to control a single analysis run.
type Analysis struct {
	MaxResponseMs float64 // maximum allowed single delay, 0 uses the profile limit
	Jobs          int     // parallel file passes in project mode, 0 uses the number of CPUs
	Bytecode      bool    // check companion bytecode files
}

// NewAnalysis returns the analysis options for the program options.
func NewAnalysis(opts Program) Analysis {
	return Analysis{
		MaxResponseMs: opts.MaxResponseMs,
		Jobs:          opts.Jobs,
		Bytecode:      !opts.NoBytecode,
	}
}
