// Package bytecode reads the header of compiled mruby bytecode files and
// checks the program size against the flash of the target.
package bytecode

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/retroenv/rboardcheck/internal/diag"
	"github.com/retroenv/rboardcheck/internal/profile"
)

// Magic is the identifier at the start of every bytecode file.
const Magic = "RITE"

// Extension of bytecode files.
const Extension = ".mrb"

const (
	headerSize = 12
	sizeOffset = 8
)

// Header is the fixed size start of a bytecode file.
type Header struct {
	Magic   string `json:"magic"`
	Version string `json:"version"`
	Size    uint32 `json:"size"`
}

// Read reads and checks the header of a bytecode stream.
func Read(r io.Reader) (Header, error) {
	buf := make([]byte, headerSize)
	n, err := io.ReadFull(r, buf)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return Header{}, errors.Wrapf(diag.MalformedBytecodeHeader, "header needs %d bytes, file has %d", headerSize, n)
		}
		return Header{}, errors.Wrap(err, "reading header")
	}

	if !bytes.Equal(buf[:len(Magic)], []byte(Magic)) {
		return Header{}, errors.Wrapf(diag.MalformedBytecodeHeader, "missing %s magic, found %q", Magic, buf[:len(Magic)])
	}

	return Header{
		Magic:   Magic,
		Version: string(bytes.TrimRight(buf[len(Magic):sizeOffset], "\x00")),
		Size:    binary.LittleEndian.Uint32(buf[sizeOffset:headerSize]),
	}, nil
}

// ReadFile reads the header of a bytecode file.
func ReadFile(path string) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, errors.Wrap(err, "opening bytecode file")
	}
	defer func() {
		_ = f.Close()
	}()

	h, err := Read(f)
	if err != nil {
		return Header{}, errors.Wrapf(err, "file '%s'", path)
	}
	return h, nil
}

// Report is the result of a bytecode size check.
type Report struct {
	Path     string         `json:"path"`
	Header   Header         `json:"header"`
	Percent  float64        `json:"percent"`
	Findings []diag.Finding `json:"findings,omitempty"`
}

// Check compares the program size of the header to the flash thresholds of
// the profile.
func Check(h Header, src string, prof profile.Profile) Report {
	r := Report{
		Path:    src,
		Header:  h,
		Percent: profile.Percent(int(h.Size), prof.FlashBytes),
	}

	sev, ok := profile.Classify(r.Percent, prof.Limits.FlashWarningPercent, prof.Limits.FlashErrorPercent)
	switch {
	case !ok:
	case sev == diag.SeverityError:
		limit := int(float64(prof.FlashBytes) * prof.Limits.FlashErrorPercent / 100)
		r.Findings = append(r.Findings, diag.Errorf(diag.Resource, src, 0,
			"bytecode too large: %d bytes (max ~%d bytes)", h.Size, limit))
	default:
		r.Findings = append(r.Findings, diag.Warnf(diag.Resource, src, 0,
			"large bytecode: %d bytes, consider optimization", h.Size))
	}
	return r
}
