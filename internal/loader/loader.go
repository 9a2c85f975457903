// Package loader handles source file loading operations.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"unicode/utf8"

	"github.com/retroenv/rboardcheck/internal/diag"
)

// Source is a loaded program source.
type Source struct {
	Path string
	Text string
}

// Loader handles loading source files from disk.
type Loader struct{}

// New creates a new source loader.
func New() *Loader {
	return &Loader{}
}

// Load reads a source file. A missing file returns an error wrapping
// diag.FileNotFound.
func (l *Loader) Load(path string) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Source{}, fmt.Errorf("%w: file not found: %s", diag.FileNotFound, path)
		}
		return Source{}, fmt.Errorf("%w: reading file %s: %v", diag.FileNotFound, path, err)
	}
	if !utf8.Valid(data) {
		return Source{}, fmt.Errorf("file %s is not valid UTF-8", path)
	}

	return Source{
		Path: path,
		Text: string(data),
	}, nil
}
