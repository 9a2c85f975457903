// Package detector handles input file type detection.
package detector

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/retroenv/rboardcheck/internal/bytecode"
	"github.com/retroenv/retrogolib/log"
)

// FileType is the type of an input file.
type FileType string

// Supported file types.
const (
	Source   FileType = "source"
	Bytecode FileType = "bytecode"
	Unknown  FileType = "unknown"
)

// SourceExtension is the extension of program source files.
const SourceExtension = ".rb"

// Detector handles file type detection from file extensions and companion
// file lookup.
type Detector struct {
	logger *log.Logger
}

// New creates a new file detector.
func New(logger *log.Logger) *Detector {
	return &Detector{
		logger: logger,
	}
}

// Detect determines the file type based on the file extension.
func (d *Detector) Detect(filename string) FileType {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case SourceExtension:
		return Source
	case bytecode.Extension:
		return Bytecode
	default:
		return Unknown
	}
}

// Companion returns the path of the compiled bytecode file next to a source
// file, if it exists.
func (d *Detector) Companion(sourcePath string) (string, bool) {
	if d.Detect(sourcePath) != Source {
		return "", false
	}

	path := strings.TrimSuffix(sourcePath, filepath.Ext(sourcePath)) + bytecode.Extension
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}

	d.logger.Debug("Found bytecode file",
		log.String("source", sourcePath),
		log.String("bytecode", path))
	return path, true
}
