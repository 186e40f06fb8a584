package datefilter

import (
	"regexp"
	"time"
)

// Precision is the granularity a date value was written with.
type Precision int

const (
	PrecisionYear Precision = iota
	PrecisionMonth
	PrecisionDay
	PrecisionMinute
	PrecisionSecond
	// PrecisionInstant is an exact point in time. Classify never returns it;
	// it is used for filters built from a time.Time (see At).
	PrecisionInstant
)

func (p Precision) String() string {
	switch p {
	case PrecisionYear:
		return "year"
	case PrecisionMonth:
		return "month"
	case PrecisionDay:
		return "day"
	case PrecisionMinute:
		return "minute"
	case PrecisionSecond:
		return "second"
	case PrecisionInstant:
		return "instant"
	default:
		return "?"
	}
}

// End returns the exclusive end of the span starting at lo.
// For PrecisionInstant the span is empty and End returns lo.
func (p Precision) End(lo time.Time) time.Time {
	switch p {
	case PrecisionYear:
		return lo.AddDate(1, 0, 0)
	case PrecisionMonth:
		return lo.AddDate(0, 1, 0)
	case PrecisionDay:
		return lo.AddDate(0, 0, 1)
	case PrecisionMinute:
		return lo.Add(time.Minute)
	case PrecisionSecond:
		return lo.Add(time.Second)
	default:
		return lo
	}
}

// Ordered finest first; each is matched against the raw value on its own.
var precisionPatterns = []struct {
	precision Precision
	re        *regexp.Regexp
}{
	{PrecisionSecond, regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}`)},
	{PrecisionMinute, regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}`)},
	{PrecisionDay, regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)},
	{PrecisionMonth, regexp.MustCompile(`^\d{4}-\d{2}`)},
}

// Classify reports the precision of a (possibly partial) ISO-8601 value.
// It never fails: anything coarser than year-month is treated as a year.
// Whether the value is actually a valid date is decided by ParseDate.
func Classify(value string) Precision {
	for _, p := range precisionPatterns {
		if p.re.MatchString(value) {
			return p.precision
		}
	}
	return PrecisionYear
}
