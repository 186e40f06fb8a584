package datefilter

import (
	"errors"
	"regexp"
	"time"
)

// acceptedShape owns the six accepted formats. time.Parse alone is looser: it
// takes a comma before the fraction and drops digits past the ninth.
var acceptedShape = regexp.MustCompile(
	`^\d{4}(-\d{2}(-\d{2}(T\d{2}:\d{2}(:\d{2}(\.\d{1,9})?)?(Z|[+-]\d{2}:\d{2})?)?)?)?$`)

var errYearZero = errors.New("year 0000 is out of range")

// Accepted layouts. time.Parse accepts a fractional second after the
// seconds field even when the layout omits it, so the seconds layouts also
// cover yyyy-MM-ddThh:mm:ss.ssss.
var dateLayouts = []string{
	"2006",
	"2006-01",
	"2006-01-02",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
}

// ParseDate parses a partial ISO-8601 date or date-time into the instant at
// the start of the period it names, in UTC. Values without an offset are UTC.
func ParseDate(value string) (time.Time, error) {
	if !acceptedShape.MatchString(value) {
		return time.Time{}, malformedDate(value, nil)
	}
	if value[:4] == "0000" {
		return time.Time{}, malformedDate(value, errYearZero)
	}
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, malformedDate(value, lastErr)
}
