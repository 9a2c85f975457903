package pipeline

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/retroenv/rboardcheck/internal/bytecode"
	"github.com/retroenv/rboardcheck/internal/diag"
	"github.com/retroenv/rboardcheck/internal/options"
	"github.com/retroenv/rboardcheck/internal/peripheral"
	"github.com/retroenv/rboardcheck/internal/pin"
	"github.com/retroenv/rboardcheck/internal/profile"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

var analysisOpts = options.Analysis{
	MaxResponseMs: 100,
	Jobs:          2,
	Bytecode:      true,
}

func TestNew(t *testing.T) {
	logger := log.NewTestLogger(t)
	p := New(logger, profile.Default())

	assert.NotNil(t, p)
	assert.NotNil(t, p.logger)
	assert.NotNil(t, p.detector)
	assert.NotNil(t, p.loader)
	assert.NotNil(t, p.validators)
	assert.NotNil(t, p.estimator)
}

func TestAnalyzeSource(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		valid    bool
		pins     int
		errCode  diag.Code
		warnText string
	}{
		{
			name:  "adc and pwm",
			text:  "adc = ADC.new(\"A0\")\npwm = PWM.new(\"B3\", 1000)\nadc.read\npwm.duty(50)\n",
			valid: true,
			pins:  2,
		},
		{
			name:    "duplicate claim",
			text:    "GPIO.new(\"B2\")\nGPIO.new(\"B2\")\n",
			valid:   false,
			pins:    1,
			errCode: diag.DuplicatePinClaim,
		},
		{
			name:    "invalid pin",
			text:    "GPIO.new(\"C1\")\n",
			valid:   false,
			errCode: diag.InvalidPinFormat,
		},
		{
			name:     "uart defaults",
			text:     "uart = UART.new(unit: 1)\nuart.write(\"x\")\n",
			valid:    true,
			pins:     2,
			warnText: "console UART",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(log.NewTestLogger(t), profile.Default())
			r := p.AnalyzeSource("main.rb", tt.text, analysisOpts)

			assert.Equal(t, tt.valid, r.Valid)
			assert.Len(t, r.Pins, tt.pins)
			if tt.errCode != "" {
				errs := r.Errors()
				assert.NotEmpty(t, errs)
				assert.Equal(t, tt.errCode, errs[0].Code)
			}
			if tt.warnText != "" {
				assert.True(t, containsMessage(r.Warnings(), tt.warnText), "missing warning "+tt.warnText)
			}
		})
	}
}

func TestAnalyzeSourceUnusedBinding(t *testing.T) {
	p := New(log.NewTestLogger(t), profile.Default())
	r := p.AnalyzeSource("main.rb", "led = GPIO.new(\"B5\")\n", analysisOpts)

	assert.True(t, r.Valid)
	assert.True(t, containsMessage(r.Infos(), "GPIO instance 'led' is never used"))

	rec, ok := r.Pins[pin.MustParse("B5")]
	assert.True(t, ok)
	assert.Equal(t, peripheral.GPIO, rec.Kind)
}

func TestAnalyzeFileMissing(t *testing.T) {
	p := New(log.NewTestLogger(t), profile.Default())
	r := p.AnalyzeFile(context.Background(), filepath.Join(t.TempDir(), "missing.rb"), analysisOpts)

	assert.True(t, r.Failed)
	assert.False(t, r.Valid)
	errs := r.Errors()
	assert.Len(t, errs, 1)
	assert.Equal(t, diag.FileNotFound, errs[0].Code)
}

func TestAnalyzeFileBytecode(t *testing.T) {
	tests := []struct {
		name      string
		companion []byte
		valid     bool
		report    bool
	}{
		{name: "no companion", valid: true},
		{name: "small program", companion: bytecodeHeader("RITE", 100), valid: true, report: true},
		{name: "malformed header", companion: []byte("RIT"), valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			src := writeFile(t, dir, "main.rb", "GPIO.new(\"B5\")\n")
			if tt.companion != nil {
				writeFile(t, dir, "main.mrb", string(tt.companion))
			}

			p := New(log.NewTestLogger(t), profile.Default())
			r := p.AnalyzeFile(context.Background(), src, analysisOpts)

			assert.Equal(t, tt.valid, r.Valid)
			assert.Equal(t, tt.report, r.Bytecode != nil)
			if !tt.valid {
				assert.Equal(t, diag.MalformedBytecodeHeader, r.Errors()[0].Code)
			}
		})
	}
}

func TestBytecodeFinding(t *testing.T) {
	dir := t.TempDir()
	malformed := writeFile(t, dir, "bad.mrb", "XXXXXXXXXXXXXXXX")

	tests := []struct {
		name string
		path string
		want diag.Code
	}{
		{name: "malformed header", path: malformed, want: diag.MalformedBytecodeHeader},
		{name: "unreadable file", path: filepath.Join(dir, "missing.mrb"), want: diag.FileNotFound},
		{name: "directory", path: dir, want: diag.FileNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := bytecode.ReadFile(tt.path)
			assert.Error(t, err)

			f := bytecodeFinding(tt.path, err)
			assert.Equal(t, tt.want, f.Code)
			assert.Equal(t, diag.SeverityError, f.Severity)
			assert.Equal(t, tt.path, f.Source)
		})
	}
}

func TestAnalyzeProject(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "a.rb", "GPIO.new(\"B2\")\nADC.new(\"A0\")\n")
	second := writeFile(t, dir, "b.rb", "GPIO.new(\"B2\")\n")
	third := writeFile(t, dir, "c.rb", "PWM.new(\"B3\")\n")

	p := New(log.NewTestLogger(t), profile.Default())
	result, err := p.AnalyzeProject(context.Background(), []string{first, second, third}, analysisOpts)
	assert.NoError(t, err)

	assert.Len(t, result.Files, 3)
	assert.Equal(t, first, result.Files[0].Source)
	assert.Equal(t, third, result.Files[2].Source)
	for _, f := range result.Files {
		assert.True(t, f.Valid, f.Source)
	}

	assert.Len(t, result.Conflicts, 1)
	c := result.Conflicts[0]
	assert.Equal(t, pin.MustParse("B2"), c.Pin)
	assert.Equal(t, first, c.Sources[0])
	assert.Equal(t, second, c.Sources[1])
	assert.False(t, result.Valid)
	assert.True(t, result.Totals.CPUPercent > 0)
}

func TestAnalyzeProjectMissingFile(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "a.rb", "GPIO.new(\"B2\")\n")
	missing := filepath.Join(dir, "missing.rb")

	p := New(log.NewTestLogger(t), profile.Default())
	result, err := p.AnalyzeProject(context.Background(), []string{missing, first}, analysisOpts)
	assert.NoError(t, err)

	assert.True(t, result.Files[0].Failed)
	assert.True(t, result.Files[1].Valid)
	assert.Empty(t, result.Conflicts)
	assert.False(t, result.Valid)
}

func TestAnalyzeProjectCancelled(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "a.rb", "GPIO.new(\"B2\")\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(log.NewTestLogger(t), profile.Default())
	_, err := p.AnalyzeProject(ctx, []string{first}, analysisOpts)
	assert.Error(t, err)
}

func containsMessage(findings []diag.Finding, text string) bool {
	for _, f := range findings {
		if strings.Contains(f.Message, text) {
			return true
		}
	}
	return false
}

func bytecodeHeader(magic string, size uint32) []byte {
	buf := make([]byte, 16)
	copy(buf, magic)
	copy(buf[4:], "0300")
	binary.LittleEndian.PutUint32(buf[8:], size)
	return buf
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	return path
}
