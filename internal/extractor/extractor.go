// Package extractor scans program text for peripheral constructions and the
// statements related to them. It is a line based scanner and not a parser,
// constructs it does not understand are skipped silently.
package extractor

import (
	"regexp"
	"strings"

	"github.com/retroenv/rboardcheck/internal/peripheral"
	"github.com/retroenv/rboardcheck/internal/source"
	"github.com/retroenv/rboardcheck/internal/symbols"
	"github.com/retroenv/rboardcheck/internal/usage"
)

// maxContinuationLines limits how many following lines are joined to complete
// a constructor argument list that spans multiple lines.
const maxContinuationLines = 8

const timerClass = "Timer"

var (
	constructorPattern = regexp.MustCompile(`(?:(@{0,2}[A-Za-z_]\w*)\s*=\s*)?\b(ADC|PWM|GPIO|I2C|SPI|UART|Timer)\.new\b`)
	assignmentPattern  = regexp.MustCompile(`^(@{0,2}[A-Za-z_]\w*)\s*=\s*([^=~].*)$`)
	methodCallPattern  = regexp.MustCompile(`(@{0,2}[A-Za-z_]\w*)\.([A-Za-z_]\w*[?!]?)`)
)

// Binding is a variable bound to a peripheral instance.
type Binding struct {
	Kind peripheral.Kind
	Line int
}

// Result contains everything the extractor found in a source.
type Result struct {
	Source      string
	Events      []usage.Event
	MethodCalls []usage.MethodCall
	Timers      []usage.TimerUse
	Lines       []source.Line
	Bindings    *symbols.Table[Binding]
	Values      *symbols.Table[usage.Value]
}

// Extract returns the peripheral usage events of the text in source order.
func Extract(text, sourceID string) []usage.Event {
	return Parse(text, sourceID).Events
}

// Parse scans the text and returns all extracted records.
func Parse(text, sourceID string) Result {
	s := &scanner{
		res: Result{
			Source:   sourceID,
			Lines:    source.Lines(text),
			Bindings: symbols.New[Binding](),
			Values:   symbols.New[usage.Value](),
		},
	}

	for i := range s.res.Lines {
		s.scanLine(i)
	}
	return s.res
}

type scanner struct {
	res Result
}

func (s *scanner) scanLine(index int) {
	line := s.res.Lines[index]
	if line.Text == "" {
		return
	}

	// method calls are attributed before new bindings of the line are added,
	// `led = GPIO.new(led.pin)` refers to the previous binding.
	s.scanMethodCalls(line)

	matches := constructorPattern.FindAllStringSubmatchIndex(line.Text, -1)
	if !hasConstructor(line.Text, matches) {
		s.scanAssignment(line)
		return
	}

	for _, m := range matches {
		if inQuotes(line.Text, m[4]) {
			continue
		}
		var variable string
		if m[2] >= 0 {
			variable = line.Text[m[2]:m[3]]
		}
		class := line.Text[m[4]:m[5]]
		args, ok := s.arguments(index, m[1])
		if !ok {
			continue
		}
		s.construct(line, class, variable, args)
	}
}

func hasConstructor(text string, matches [][]int) bool {
	for _, m := range matches {
		if !inQuotes(text, m[4]) {
			return true
		}
	}
	return false
}

// arguments returns the argument text following a constructor that ends at
// offset in the line. Unclosed parentheses are completed from the following
// lines, false is returned if no closing parenthesis is found.
func (s *scanner) arguments(index, offset int) (string, bool) {
	rest := strings.TrimLeft(s.res.Lines[index].Text[offset:], " \t")
	if !strings.HasPrefix(rest, "(") {
		// paren-less call like `GPIO.new "B0"`, a method chain is no argument
		if rest == "" || strings.HasPrefix(rest, ".") || strings.HasPrefix(rest, ")") {
			return "", true
		}
		return strings.TrimSuffix(strings.TrimSpace(rest), ")"), true
	}

	text := rest
	for next := index + 1; ; next++ {
		if end, ok := closingParen(text, 0); ok {
			return text[1:end], true
		}
		if next >= len(s.res.Lines) || next-index > maxContinuationLines {
			return "", false
		}
		text += " " + s.res.Lines[next].Text
	}
}

func (s *scanner) construct(line source.Line, class, variable, args string) {
	positional, named := s.parseArguments(args)

	if class == timerClass {
		s.res.Timers = append(s.res.Timers, timerUse(positional, named, s.res.Source, line.Number))
		return
	}

	kind, err := peripheral.Parse(class)
	if err != nil {
		return
	}

	s.res.Events = append(s.res.Events, usage.Event{
		Kind:       kind,
		Var:        variable,
		Positional: positional,
		Named:      named,
		Source:     s.res.Source,
		Line:       line.Number,
	})

	if variable != "" {
		s.res.Bindings.Set(variable, Binding{Kind: kind, Line: line.Number})
	}
}

func timerUse(positional []usage.Value, named map[string]usage.Value, src string, line int) usage.TimerUse {
	tu := usage.TimerUse{Source: src, Line: line}
	ev := usage.Event{Positional: positional, Named: named}
	if v, ok := ev.Arg(0, "unit"); ok && v.Type == usage.Int {
		tu.Unit = v.Int
	} else if v, ok := ev.NamedArg("timer"); ok && v.Type == usage.Int {
		tu.Unit = v.Int
	}
	if v, ok := ev.Arg(1, "priority"); ok && v.Type == usage.Int {
		tu.Priority = v.Int
	}
	return tu
}

// scanAssignment records literal values bound to a variable so that later
// constructor arguments can refer to them.
func (s *scanner) scanAssignment(line source.Line) {
	m := assignmentPattern.FindStringSubmatch(line.Text)
	if m == nil {
		return
	}
	v := s.parseValue(m[2])
	switch v.Type {
	case usage.String, usage.Int, usage.Float, usage.Pair, usage.List:
		s.res.Values.Set(m[1], v)
	default:
		// the value is only known at run time
		s.res.Values.Delete(m[1])
	}
}

func (s *scanner) scanMethodCalls(line source.Line) {
	for _, m := range methodCallPattern.FindAllStringSubmatchIndex(line.Text, -1) {
		variable, method := line.Text[m[2]:m[3]], line.Text[m[4]:m[5]]
		if method == "new" || inQuotes(line.Text, m[0]) {
			continue
		}
		b, ok := s.res.Bindings.Get(variable)
		if !ok {
			continue
		}
		s.res.Bindings.MarkUsed(variable)
		s.res.MethodCalls = append(s.res.MethodCalls, usage.MethodCall{
			Var:    variable,
			Kind:   b.Kind,
			Method: method,
			Source: s.res.Source,
			Line:   line.Number,
		})
	}
}
