package crossfile

import (
	"errors"
	"testing"

	"github.com/retroenv/rboardcheck/internal/diag"
	"github.com/retroenv/rboardcheck/internal/extractor"
	"github.com/retroenv/rboardcheck/internal/registry"
	"github.com/retroenv/rboardcheck/internal/validator"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func unit(t *testing.T, source, text string) Unit {
	t.Helper()
	reg := registry.New(log.NewTestLogger(t), validator.Default())
	res := reg.AllocateAll(extractor.Extract(text, source))
	return Unit{Source: source, Pins: reg.Pins(), Valid: res.Valid()}
}

func TestMergeConflict(t *testing.T) {
	units := []Unit{
		unit(t, "file1.rb", `GPIO.new("B2")`),
		unit(t, "file2.rb", `GPIO.new("B2")`),
	}
	assert.True(t, units[0].Valid)
	assert.True(t, units[1].Valid)

	conflicts := Merge(units)
	assert.Len(t, conflicts, 1)
	assert.Equal(t, "B2", conflicts[0].Pin.String())
	assert.Equal(t, [2]string{"file1.rb", "file2.rb"}, conflicts[0].Sources)
	assert.False(t, Valid(units, conflicts))

	f := conflicts[0].Finding()
	assert.True(t, errors.Is(f, diag.CrossFileConflict))
	assert.Equal(t, "file2.rb", f.Source)
	assert.Contains(t, f.Message, "file1.rb:1")
}

func TestMergeSameFileDuplicateNotReported(t *testing.T) {
	units := []Unit{
		unit(t, "file1.rb", "GPIO.new(\"B2\")\nADC.new(\"B2\")\n"),
		unit(t, "file2.rb", `GPIO.new("B3")`),
	}
	assert.False(t, units[0].Valid)

	conflicts := Merge(units)
	assert.Empty(t, conflicts)
	assert.False(t, Valid(units, conflicts))
}

func TestMergeThreeFiles(t *testing.T) {
	units := []Unit{
		unit(t, "a.rb", `GPIO.new("A1")`),
		unit(t, "b.rb", `ADC.new("A1")`),
		unit(t, "c.rb", "PWM.new(\"A1\")\nGPIO.new(\"B0\")\n"),
		unit(t, "d.rb", `GPIO.new("B0")`),
	}

	conflicts := Merge(units)
	assert.Len(t, conflicts, 3)
	assert.Equal(t, [2]string{"a.rb", "b.rb"}, conflicts[0].Sources)
	assert.Equal(t, [2]string{"a.rb", "c.rb"}, conflicts[1].Sources)
	assert.Equal(t, [2]string{"c.rb", "d.rb"}, conflicts[2].Sources)
	assert.Equal(t, []string{"a.rb", "b.rb", "c.rb", "d.rb"}, Sources(conflicts))
}

func TestMergeSameSourceTwice(t *testing.T) {
	u := unit(t, "main.rb", `GPIO.new("B2")`)
	conflicts := Merge([]Unit{u, u})
	assert.Empty(t, conflicts)
	assert.True(t, Valid([]Unit{u}, conflicts))
}
