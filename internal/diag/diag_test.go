package diag

import (
	"errors"
	"fmt"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestCodesAreStableStrings(t *testing.T) {
	cases := map[string]Code{
		"invalid_pin_format":             InvalidPinFormat,
		"pin_out_of_range":               PinOutOfRange,
		"unsupported_peripheral_for_pin": UnsupportedPeripheralForPin,
		"unknown_peripheral_kind":        UnknownPeripheralKind,
		"duplicate_pin_claim":            DuplicatePinClaim,
		"cross_file_conflict":            CrossFileConflict,
		"file_not_found":                 FileNotFound,
		"malformed_bytecode_header":      MalformedBytecodeHeader,
	}
	for want, c := range cases {
		assert.Equal(t, want, c.Error())
	}
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, Code(""), CodeOf(nil))
	assert.Equal(t, PinOutOfRange, CodeOf(fmt.Errorf("pin B16: %w", PinOutOfRange)))
	assert.Equal(t, Advisory, CodeOf(errors.New("plain")))

	f := Errorf(DuplicatePinClaim, "main.rb", 3, "pin %s already used", "A0")
	assert.Equal(t, DuplicatePinClaim, CodeOf(fmt.Errorf("wrapped: %w", f)))
}

func TestFinding(t *testing.T) {
	f := Errorf(DuplicatePinClaim, "main.rb", 3, "pin %s already used", "A0")
	assert.Equal(t, "main.rb:3: pin A0 already used", f.Error())
	assert.True(t, errors.Is(f, DuplicatePinClaim))
	assert.False(t, errors.Is(f, PinOutOfRange))

	w := Warnf(Advisory, "main.rb", 0, "check")
	assert.Equal(t, "main.rb: check", w.Error())
	assert.Equal(t, "warning", w.Severity.String())

	findings := []Finding{w, f, Infof(Resource, "", 2, "timer")}
	assert.True(t, HasErrors(findings))
	assert.Len(t, Filter(findings, SeverityWarning), 1)
	assert.Equal(t, "line 2: timer", findings[2].Error())
	assert.False(t, HasErrors(findings[:1]))
}

func TestFromError(t *testing.T) {
	err := fmt.Errorf("%w: invalid pin string %q", InvalidPinFormat, "C1")
	f := FromError(SeverityError, err, "main.rb", 4)
	assert.Equal(t, InvalidPinFormat, f.Code)
	assert.Equal(t, `invalid pin string "C1"`, f.Message)
	assert.Equal(t, `main.rb:4: invalid pin string "C1"`, f.Error())
}
