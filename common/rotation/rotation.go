// Package rotation maps a crew and a calendar date to the crew's shift in the
// repeating 28-day, four-crew rotation.
package rotation

import (
	"fmt"
	"strings"
	"time"
)

// Crew identifies one of the four rotating crews
type Crew string

const (
	CrewA Crew = "A"
	CrewB Crew = "B"
	CrewC Crew = "C"
	CrewD Crew = "D"
)

// Crews lists every crew in display order
var Crews = []Crew{CrewA, CrewB, CrewC, CrewD}

// Shift is the label shown under a date column
type Shift string

const (
	Day   Shift = "D"
	Night Shift = "N"
	Off   Shift = ""
)

// CycleLength is the rotation period in days
const CycleLength = 28

// Epoch is day 0 of the rotation (crew A starts its day block)
var Epoch = time.Date(2023, time.June, 22, 0, 0, 0, 0, time.UTC)

var patterns = map[Crew][CycleLength]Shift{
	CrewA: block(Day, Off, Night, Off),
	CrewB: block(Night, Off, Day, Off),
	CrewC: block(Off, Night, Off, Day),
	CrewD: block(Off, Day, Off, Night),
}

// block expands four 7-day segments into a full cycle
func block(segments ...Shift) [CycleLength]Shift {
	var out [CycleLength]Shift
	for i := range out {
		out[i] = segments[i/7]
	}
	return out
}

// InvalidCrewError is returned for a crew code outside A-D
type InvalidCrewError struct {
	Crew string
}

func (e *InvalidCrewError) Error() string {
	return fmt.Sprintf("invalid crew %q: must be one of A, B, C, D", e.Crew)
}

// ParseCrew normalizes a crew code
func ParseCrew(s string) (Crew, error) {
	c := Crew(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := patterns[c]; !ok {
		return "", &InvalidCrewError{Crew: s}
	}
	return c, nil
}

// Valid reports whether c is a known crew
func (c Crew) Valid() bool {
	_, ok := patterns[c]
	return ok
}

// ShiftLabel returns the crew's shift on the given date. Only the calendar
// date of d matters; the time of day and location are ignored.
func ShiftLabel(crew Crew, d time.Time) (Shift, error) {
	pattern, ok := patterns[crew]
	if !ok {
		return Off, &InvalidCrewError{Crew: string(crew)}
	}
	return pattern[cycleDay(d)], nil
}

// MonthlyShiftLabels returns one label per calendar day of the month, in date order
func MonthlyShiftLabels(crew Crew, year, month int) ([]Shift, error) {
	pattern, ok := patterns[crew]
	if !ok {
		return nil, &InvalidCrewError{Crew: string(crew)}
	}
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("invalid month: %d", month)
	}

	days := DaysInMonth(year, month)
	labels := make([]Shift, days)
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	for i := range labels {
		labels[i] = pattern[cycleDay(first.AddDate(0, 0, i))]
	}
	return labels, nil
}

// DaysInMonth returns the calendar day count (28-31), leap years included
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

const secondsPerDay = 24 * 60 * 60

func cycleDay(d time.Time) int {
	date := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	// time.Duration overflows past 292 years, so count days from Unix seconds
	days := int((date.Unix() - Epoch.Unix()) / secondsPerDay)
	// floored modulo so dates before the epoch continue the pattern backwards
	return ((days % CycleLength) + CycleLength) % CycleLength
}
