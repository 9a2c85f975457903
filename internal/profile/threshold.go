package profile

import (
	"github.com/retroenv/rboardcheck/internal/diag"
	"golang.org/x/exp/constraints"
)

// Number is a numeric estimate value.
type Number interface {
	constraints.Integer | constraints.Float
}

// Percent returns part as percentage of total, 0 for a non positive total.
func Percent[T Number](part, total T) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// Classify returns the severity of a value compared to a warning and an error
// level. The flag is false if the value does not exceed the warning level.
func Classify[T Number](value, warning, errorLevel T) (diag.Severity, bool) {
	switch {
	case value > errorLevel:
		return diag.SeverityError, true
	case value > warning:
		return diag.SeverityWarning, true
	default:
		return diag.SeverityInfo, false
	}
}

// Rating is a coarse classification of the estimated CPU load.
type Rating string

// Supported ratings.
const (
	RatingExcellent Rating = "excellent"
	RatingGood      Rating = "good"
	RatingPoor      Rating = "poor"
)

// Rate classifies a CPU load percentage.
func (p Profile) Rate(cpuPercent float64) Rating {
	switch {
	case cpuPercent < p.Limits.CPUExcellentPercent:
		return RatingExcellent
	case cpuPercent < p.Limits.CPUGoodPercent:
		return RatingGood
	default:
		return RatingPoor
	}
}
