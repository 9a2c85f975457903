package estimate

import (
	"strings"
	"testing"

	"github.com/retroenv/rboardcheck/internal/diag"
	"github.com/retroenv/rboardcheck/internal/extractor"
	"github.com/retroenv/rboardcheck/internal/peripheral"
	"github.com/retroenv/rboardcheck/internal/profile"
	"github.com/retroenv/rboardcheck/internal/registry"
	"github.com/retroenv/rboardcheck/internal/source"
	"github.com/retroenv/rboardcheck/internal/validator"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func newEstimator(t *testing.T) *Estimator {
	t.Helper()
	return New(log.NewTestLogger(t), profile.Default())
}

func input(t *testing.T, text string) Input {
	t.Helper()
	res := extractor.Parse(text, "main.rb")
	reg := registry.New(log.NewTestLogger(t), validator.Default())
	reg.AllocateAll(res.Events)
	return Input{
		Source:      "main.rb",
		Lines:       res.Lines,
		Events:      res.Events,
		MethodCalls: res.MethodCalls,
		Timers:      res.Timers,
		Pins:        reg.Pins(),
	}
}

func contains(findings []diag.Finding, severity diag.Severity, substr string) bool {
	for _, f := range findings {
		if f.Severity == severity && strings.Contains(f.Message, substr) {
			return true
		}
	}
	return false
}

func TestMemoryCosts(t *testing.T) {
	tests := []struct {
		name string
		line string
		want int
	}{
		{name: "integer", line: "count = 10", want: 16},
		{name: "float", line: "ratio = 1.5", want: 24},
		// variable cost len+24 plus literal cost len+24
		{name: "string", line: `name = "abc"`, want: 5 + 24 + 3 + 24},
		{name: "array", line: "values = [1, 2, 3]", want: 64 + 2*16 + 64},
		{name: "hash", line: "cfg = {a: 1, b: 2}", want: 128 + 32 + 128},
		{name: "object", line: `led = GPIO.new("B0")`, want: 48 + 2 + 24 + 48},
		{name: "default", line: "x = y", want: 16},
		{name: "no assignment", line: "led.write(1)", want: 0},
	}

	e := newEstimator(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := e.Memory("main.rb", source.Lines(tt.line))
			assert.Equal(t, tt.want, r.Bytes)
		})
	}
}

func TestMemoryMonotonic(t *testing.T) {
	e := newEstimator(t)
	base := "led = GPIO.new(\"B0\")\ncount = 0\n"
	additions := []string{
		"x = 1",
		"s = \"hello\"",
		"a = [1, 2]",
		"h = {a: 1}",
		"obj = Foo.new",
		"puts \"text\"",
		"Array.new(4)",
		"Hash.new",
		"GPIO.new(\"B1\")",
	}

	before, _ := e.Memory("main.rb", source.Lines(base))
	for _, add := range additions {
		t.Run(add, func(t *testing.T) {
			after, _ := e.Memory("main.rb", source.Lines(base+add+"\n"))
			assert.True(t, after.Bytes > before.Bytes)
		})
	}
}

func TestMemoryThresholds(t *testing.T) {
	e := newEstimator(t)

	// 2800 integer variables: 44800 bytes, 68% of 64KB
	text := strings.Repeat("x = 1\n", 2800)
	r, findings := e.Memory("main.rb", source.Lines(text))
	assert.Equal(t, 2800*16, r.Bytes)
	assert.True(t, contains(findings, diag.SeverityWarning, "high estimated RAM usage"))
	assert.True(t, contains(findings, diag.SeverityError, "too many variables (2800)"))

	text = strings.Repeat("x = 1\n", 3400)
	_, findings = e.Memory("main.rb", source.Lines(text))
	assert.True(t, contains(findings, diag.SeverityError, "exceeds safe limit (52428 bytes)"))

	text = strings.Repeat("puts \""+strings.Repeat("a", 100)+"\"\n", 40)
	_, findings = e.Memory("main.rb", source.Lines(text))
	assert.True(t, contains(findings, diag.SeverityWarning, "high string memory usage: 4960 bytes"))
}

func TestTimingSleep(t *testing.T) {
	e := newEstimator(t)

	in := input(t, "sleep(2.0)\n")
	r, findings := e.Timing(in)
	assert.Equal(t, 2000.0, r.ExecutionMs)
	assert.Len(t, r.Delays, 1)
	assert.Equal(t, 1, r.Delays[0].Line)
	assert.True(t, contains(findings, diag.SeverityWarning, "long delay (2000ms)"))

	in.MaxResponseMs = 1999
	_, findings = e.Timing(in)
	assert.True(t, contains(findings, diag.SeverityWarning, "limit is 1999ms"))

	in.MaxResponseMs = 2500
	_, findings = e.Timing(in)
	assert.False(t, contains(findings, diag.SeverityWarning, "long delay"))
}

func TestTimingCosts(t *testing.T) {
	e := newEstimator(t)
	in := input(t, `adc = ADC.new("A0")
uart = UART.new(unit: 2)
delay(20)
sleep_ms 30
loop do
  v = adc.read
  uart.puts(v)
  line = uart.gets
end
`)
	r, _ := e.Timing(in)
	// 20 + 30 ms delays, 1 loop and 2 blocking calls
	assert.Equal(t, 20.0+30+5+10+10, r.ExecutionMs)
	assert.Len(t, r.Blocking, 2)
	assert.Equal(t, 1, r.Loops)
}

func TestTimingTimers(t *testing.T) {
	e := newEstimator(t)
	in := input(t, "Timer1.start\nTimer3.start\n")
	r, findings := e.Timing(in)
	assert.Len(t, r.Timers, 2)
	assert.True(t, contains(findings, diag.SeverityError, "Timer1 is reserved"))
	assert.True(t, contains(findings, diag.SeverityInfo, "Timer3 is used"))
}

func TestTimingIgnoresStrings(t *testing.T) {
	e := newEstimator(t)
	in := input(t, `puts "wait 5"
msg = 'Timer1 is busy'
puts "loop do"
`)
	r, findings := e.Timing(in)
	assert.Equal(t, 0.0, r.ExecutionMs)
	assert.Empty(t, r.Delays)
	assert.Empty(t, r.Timers)
	assert.Equal(t, 0, r.Loops)
	assert.Empty(t, diag.Filter(findings, diag.SeverityError))
}

func TestMemoryIgnoresStringContent(t *testing.T) {
	e := newEstimator(t)
	r, _ := e.Memory("main.rb", source.Lines(`puts "GPIO.new [1] {a}"`+"\n"))
	assert.Equal(t, 1, r.StringLiterals)
	assert.Equal(t, 0, r.Objects)
	assert.Equal(t, 0, r.Arrays)
	assert.Equal(t, 0, r.Hashes)
}

func TestTimingTotalAndRealtime(t *testing.T) {
	e := newEstimator(t)
	in := input(t, `adc = ADC.new("A0")
sleep(6)
sleep(5)
loop do v = adc.read end
`)
	_, findings := e.Timing(in)
	assert.True(t, contains(findings, diag.SeverityWarning, "high estimated execution time"))
	assert.True(t, contains(findings, diag.SeverityWarning, "blocking I/O (adc.read) in main loop"))
}

func TestCompatibility(t *testing.T) {
	e := newEstimator(t)
	in := input(t, `uart = UART.new(unit: 1)
t = Timer.new(1)
t2 = Timer.new(unit: 3, priority: 2)
btn = GPIO.new("B7", priority: 1)
`)
	findings := e.Compatibility(in)
	assert.True(t, contains(findings, diag.SeverityError, "Timer1 is reserved"))
	assert.True(t, contains(findings, diag.SeverityWarning, "interrupt priority 2"))
	assert.True(t, contains(findings, diag.SeverityWarning, "interrupt priority 1"))
	assert.True(t, contains(findings, diag.SeverityWarning, "pin A4 (UART)"))
	assert.True(t, contains(findings, diag.SeverityWarning, "pin B4 (UART)"))
	assert.Len(t, diag.Filter(findings, diag.SeverityError), 1)
}

func TestPerformance(t *testing.T) {
	e := newEstimator(t)
	text := `ADC.new("A0")
ADC.new("A1")
ADC.new("B0")
ADC.new("B1")
ADC.new("B2")
ADC.new("B3")
I2C.new(sda_pin: "B2", scl_pin: "B3")
`
	in := input(t, text)
	r, findings := e.Performance(in.Source, in.Events)
	assert.Equal(t, 6, r.Counts[peripheral.ADC])
	assert.Equal(t, 6*5.0+15, r.CPUPercent)
	assert.Equal(t, 6*2.5+5, r.PowerMA)
	assert.Len(t, r.Bottlenecks, 1)
	assert.Contains(t, r.Bottlenecks[0], "high ADC usage (6 instances)")
	assert.Equal(t, profile.RatingExcellent, r.Rating)
	assert.True(t, contains(findings, diag.SeverityInfo, "ADC interrupt mode"))
}

func TestPerformanceRatingPoor(t *testing.T) {
	e := newEstimator(t)
	in := input(t, strings.Repeat("UART.new(unit: 2)\n", 8))
	r, findings := e.Performance(in.Source, in.Events)
	assert.Equal(t, 80.0, r.CPUPercent)
	assert.Equal(t, profile.RatingPoor, r.Rating)
	assert.True(t, contains(findings, diag.SeverityWarning, "rated poor"))
}

func TestEstimate(t *testing.T) {
	e := newEstimator(t)
	in := input(t, `led = GPIO.new("B0")
sleep(1)
`)
	est := e.Estimate(in)
	assert.Equal(t, est.Memory.Bytes, est.RAMBytes)
	assert.Equal(t, 1000.0, est.ExecutionMs)
	assert.Equal(t, 0.5, est.CPUPercent)
	assert.Empty(t, est.Errors())

	var total Estimate
	total.Add(est)
	total.Add(est)
	assert.Equal(t, 2*est.RAMBytes, total.RAMBytes)
	assert.Equal(t, 2000.0, total.ExecutionMs)
}
