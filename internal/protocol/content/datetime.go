package content

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout      = "20060102"
	localTimeLayout = "20060102T150405"
	utcTimeLayout   = "20060102T150405Z"
)

// DateTime is a YYYYMMDD[Thhmmss[Z]] value. Without HasTime only the date
// is meaningful; UTC distinguishes a trailing Z from local time.
type DateTime struct {
	Time    time.Time
	HasTime bool
	UTC     bool
}

// ParseDateTime parses the wire form. Date-only and local values are
// interpreted in time.Local.
func ParseDateTime(s string) (DateTime, error) {
	s = strings.TrimSpace(s)
	switch {
	case len(s) == len(dateLayout):
		t, err := time.ParseInLocation(dateLayout, s, time.Local)
		if err != nil {
			return DateTime{}, fmt.Errorf("date %q: %w", s, err)
		}
		return DateTime{Time: t}, nil
	case len(s) == len(localTimeLayout):
		t, err := time.ParseInLocation(localTimeLayout, s, time.Local)
		if err != nil {
			return DateTime{}, fmt.Errorf("date-time %q: %w", s, err)
		}
		return DateTime{Time: t, HasTime: true}, nil
	case len(s) == len(utcTimeLayout) && (s[len(s)-1] == 'Z' || s[len(s)-1] == 'z'):
		t, err := time.Parse(utcTimeLayout, s[:len(s)-1]+"Z")
		if err != nil {
			return DateTime{}, fmt.Errorf("date-time %q: %w", s, err)
		}
		return DateTime{Time: t, HasTime: true, UTC: true}, nil
	default:
		return DateTime{}, fmt.Errorf("date-time %q: want YYYYMMDD[Thhmmss[Z]]", s)
	}
}

// MustParseDateTime is ParseDateTime for literals known to be valid.
func MustParseDateTime(s string) DateTime {
	d, err := ParseDateTime(s)
	if err != nil {
		panic(err)
	}
	return d
}

// UTCTime converts t to a UTC timestamp with second precision.
func UTCTime(t time.Time) DateTime {
	return DateTime{Time: t.UTC().Truncate(time.Second), HasTime: true, UTC: true}
}

// Date is a date-only value in time.Local.
func Date(year int, month time.Month, day int) DateTime {
	return DateTime{Time: time.Date(year, month, day, 0, 0, 0, 0, time.Local)}
}

// String renders the wire form.
func (d DateTime) String() string {
	switch {
	case !d.HasTime:
		return d.Time.Format(dateLayout)
	case d.UTC:
		return d.Time.UTC().Format(utcTimeLayout)
	default:
		return d.Time.Format(localTimeLayout)
	}
}

// Equal compares the rendered values.
func (d DateTime) Equal(o DateTime) bool {
	return d.HasTime == o.HasTime && d.UTC == o.UTC && d.String() == o.String()
}
