// Package diag contains the error taxonomy and the finding type shared by all
// analysis stages.
package diag

import (
	"errors"
	"fmt"
	"strings"
)

// Code is a stable error identifier. It is comparable and implements error so
// it can be wrapped with %w and matched with errors.Is.
type Code string

func (c Code) Error() string { return string(c) }

// Error codes reported by the analysis.
const (
	InvalidPinFormat            Code = "invalid_pin_format"
	PinOutOfRange               Code = "pin_out_of_range"
	UnsupportedPeripheralForPin Code = "unsupported_peripheral_for_pin"
	UnknownPeripheralKind       Code = "unknown_peripheral_kind"
	DuplicatePinClaim           Code = "duplicate_pin_claim"
	CrossFileConflict           Code = "cross_file_conflict"
	FileNotFound                Code = "file_not_found"
	MalformedBytecodeHeader     Code = "malformed_bytecode_header"

	// Advisory is used for findings that are not tied to a failure.
	Advisory Code = "advisory"
	// Resource is used for findings of the resource estimator.
	Resource Code = "resource"
)

// CodeOf extracts a Code from an error chain, it returns an empty code for nil
// errors and Advisory if the chain does not contain a code.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var f Finding
	if errors.As(err, &f) {
		return f.Code
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	return Advisory
}

// Severity of a finding.
type Severity int

// Supported severities.
const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Finding is a single diagnostic tied to a source location. Line is 0 for
// findings that concern the whole unit.
type Finding struct {
	Severity Severity `json:"severity"`
	Code     Code     `json:"code"`
	Message  string   `json:"message"`
	Source   string   `json:"source,omitempty"`
	Line     int      `json:"line,omitempty"`
}

// Error returns the finding prefixed by its location.
func (f Finding) Error() string {
	switch {
	case f.Source != "" && f.Line > 0:
		return fmt.Sprintf("%s:%d: %s", f.Source, f.Line, f.Message)
	case f.Source != "":
		return fmt.Sprintf("%s: %s", f.Source, f.Message)
	case f.Line > 0:
		return fmt.Sprintf("line %d: %s", f.Line, f.Message)
	default:
		return f.Message
	}
}

// Is reports whether the target is the code of the finding.
func (f Finding) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == f.Code
}

// Errorf returns an error severity finding.
func Errorf(code Code, source string, line int, format string, args ...any) Finding {
	return Finding{
		Severity: SeverityError,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Source:   source,
		Line:     line,
	}
}

// Warnf returns a warning severity finding.
func Warnf(code Code, source string, line int, format string, args ...any) Finding {
	return Finding{
		Severity: SeverityWarning,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Source:   source,
		Line:     line,
	}
}

// Infof returns an informational finding.
func Infof(code Code, source string, line int, format string, args ...any) Finding {
	return Finding{
		Severity: SeverityInfo,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Source:   source,
		Line:     line,
	}
}

// FromError converts an error wrapping a Code into a finding. The code prefix
// added by wrapping is removed from the message.
func FromError(severity Severity, err error, source string, line int) Finding {
	code := CodeOf(err)
	msg := strings.TrimPrefix(err.Error(), string(code)+": ")
	return Finding{
		Severity: severity,
		Code:     code,
		Message:  msg,
		Source:   source,
		Line:     line,
	}
}

// Filter returns the findings of the given severity, preserving their order.
func Filter(findings []Finding, severity Severity) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Severity == severity {
			out = append(out, f)
		}
	}
	return out
}

// HasErrors reports whether any finding has error severity.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}
