package estimate

import (
	"regexp"
	"strings"

	"github.com/retroenv/rboardcheck/internal/diag"
	"github.com/retroenv/rboardcheck/internal/profile"
	"github.com/retroenv/rboardcheck/internal/source"
)

var (
	assignmentPattern = regexp.MustCompile(`^@{0,2}[A-Za-z_]\w*\s*=\s*([^=~].*)$`)
	stringPattern     = regexp.MustCompile(`"([^"]*)"|'([^']*)'`)
	arrayPattern      = regexp.MustCompile(`Array\.new|\[.*\]`)
	hashPattern       = regexp.MustCompile(`Hash\.new|\{.*\}`)
	newPattern        = regexp.MustCompile(`\w+\.new\b`)

	integerValue = regexp.MustCompile(`^[-+]?\d[\d_]*$`)
	floatValue   = regexp.MustCompile(`^[-+]?\d[\d_]*\.\d+$`)
	stringValue  = regexp.MustCompile(`^(".*"|'.*')$`)
	arrayValue   = regexp.MustCompile(`^\[.*\]$`)
	hashValue    = regexp.MustCompile(`^\{.*\}$`)
)

// MemoryReport is the RAM estimate of a source.
type MemoryReport struct {
	Bytes          int     `json:"bytes"`
	Percent        float64 `json:"percent"`
	Variables      int     `json:"variables"`
	StringLiterals int     `json:"string_literals"`
	StringBytes    int     `json:"string_bytes"`
	Arrays         int     `json:"arrays"`
	Hashes         int     `json:"hashes"`
	Objects        int     `json:"objects"`
}

// Memory estimates the RAM usage by adding fixed costs for every assignment,
// string literal, collection and object construction. Every recognized
// pattern only adds to the estimate. Apart from the literals themselves the
// content of strings is ignored.
func (e *Estimator) Memory(src string, lines []source.Line) (MemoryReport, []diag.Finding) {
	costs := e.profile.Memory
	var r MemoryReport

	for _, line := range lines {
		text := line.Text
		if text == "" {
			continue
		}

		if m := assignmentPattern.FindStringSubmatch(text); m != nil {
			r.Variables++
			r.Bytes += variableCost(costs, strings.TrimSpace(m[1]))
		}

		for _, m := range stringPattern.FindAllStringSubmatch(text, -1) {
			size := len(m[1]) + len(m[2]) + costs.StringBase
			r.StringLiterals++
			r.StringBytes += size
			r.Bytes += size
		}

		code := source.MaskStrings(text)
		if arrayPattern.MatchString(code) {
			r.Arrays++
			r.Bytes += costs.ArrayLiteral
		}
		if hashPattern.MatchString(code) {
			r.Hashes++
			r.Bytes += costs.HashLiteral
		}

		objects := len(newPattern.FindAllString(code, -1))
		r.Objects += objects
		r.Bytes += objects * costs.Instantiation
	}

	r.Percent = profile.Percent(r.Bytes, e.profile.RAMBytes)
	return r, e.memoryFindings(src, r)
}

func (e *Estimator) memoryFindings(src string, r MemoryReport) []diag.Finding {
	var findings []diag.Finding
	limits := e.profile.Limits

	if sev, ok := profile.Classify(r.Percent, limits.RAMWarningPercent, limits.RAMErrorPercent); ok {
		if sev == diag.SeverityError {
			safe := int(float64(e.profile.RAMBytes) * limits.RAMErrorPercent / 100)
			findings = append(findings, diag.Errorf(diag.Resource, src, 0,
				"estimated RAM usage (%d bytes) exceeds safe limit (%d bytes)", r.Bytes, safe))
		} else {
			findings = append(findings, diag.Warnf(diag.Resource, src, 0,
				"high estimated RAM usage: %d bytes (%.1f%%)", r.Bytes, r.Percent))
		}
	}

	if limit := e.profile.MaxVariables; limit > 0 && r.Variables > limit {
		findings = append(findings, diag.Errorf(diag.Resource, src, 0,
			"too many variables (%d), VM register limit is %d", r.Variables, limit))
	}

	if r.StringBytes > limits.StringMemoryBytes {
		findings = append(findings, diag.Warnf(diag.Resource, src, 0,
			"high string memory usage: %d bytes", r.StringBytes))
	}
	return findings
}

// variableCost returns the cost of an assigned value by its shape.
func variableCost(costs profile.MemoryCosts, value string) int {
	switch {
	case integerValue.MatchString(value):
		return costs.Integer
	case floatValue.MatchString(value):
		return costs.Float
	case stringValue.MatchString(value):
		return len(value) + costs.StringBase
	case arrayValue.MatchString(value):
		return costs.ArrayBase + strings.Count(value, ",")*costs.ArrayElement
	case hashValue.MatchString(value):
		return costs.HashBase + strings.Count(value, ",")*costs.HashEntry
	case strings.Contains(value, ".new"):
		return costs.Object
	default:
		return costs.Default
	}
}
