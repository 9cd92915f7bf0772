package planner

import (
	"math"

	"github.com/benvon/smart-planner/internal/models"
)

// ClockValue is a time of day supplied either as a structured value or as an unparsed "HH:MM:SS"
// string from the API boundary. Use Clock or ClockString to build one.
type ClockValue struct {
	value models.TimeOfDay
	raw   string
	isRaw bool
}

// Clock wraps a structured time of day
func Clock(t models.TimeOfDay) ClockValue {
	return ClockValue{value: t}
}

// ClockString wraps an unparsed "HH:MM:SS" string
func ClockString(s string) ClockValue {
	return ClockValue{raw: s, isRaw: true}
}

// Normalize resolves the value to a TimeOfDay
func (v ClockValue) Normalize() (models.TimeOfDay, error) {
	if v.isRaw {
		return models.ParseTimeOfDay(v.raw)
	}
	return v.value, nil
}

// Duration returns end - start in decimal hours rounded to 2 places. Seconds are ignored and
// end > start is not checked here.
func Duration(start, end ClockValue) (float64, error) {
	s, err := start.Normalize()
	if err != nil {
		return 0, err
	}
	e, err := end.Normalize()
	if err != nil {
		return 0, err
	}
	return Hours(s, e), nil
}

// Hours is Duration for values already normalized
func Hours(start, end models.TimeOfDay) float64 {
	return math.Round((end.DecimalHours()-start.DecimalHours())*100) / 100
}
