package detector

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestDetect(t *testing.T) {
	d := New(log.NewTestLogger(t))

	tests := []struct {
		name     string
		filename string
		want     FileType
	}{
		{name: "source", filename: "main.rb", want: Source},
		{name: "upper case", filename: "MAIN.RB", want: Source},
		{name: "bytecode", filename: "app/main.mrb", want: Bytecode},
		{name: "unknown", filename: "notes.txt", want: Unknown},
		{name: "no extension", filename: "Makefile", want: Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Detect(tt.filename))
		})
	}
}

func TestCompanion(t *testing.T) {
	d := New(log.NewTestLogger(t))
	dir := t.TempDir()
	src := filepath.Join(dir, "main.rb")
	assert.NoError(t, os.WriteFile(src, []byte("x = 1\n"), 0o600))

	_, ok := d.Companion(src)
	assert.False(t, ok)

	mrb := filepath.Join(dir, "main.mrb")
	assert.NoError(t, os.WriteFile(mrb, []byte("RITE"), 0o600))
	path, ok := d.Companion(src)
	assert.True(t, ok)
	assert.Equal(t, mrb, path)

	_, ok = d.Companion(mrb)
	assert.False(t, ok)
}
