package dbchanges

import (
	"errors"
	"strings"
	"time"
)

const (
	layoutDate     = "2006-01-02"
	layoutTimeNano = "15:04:05.999999999"
	layoutTimeSec  = "15:04:05"
	layoutTimeMin  = "15:04"
)

var timeLayouts = []string{layoutTimeNano, layoutTimeSec, layoutTimeMin}

/***** DateValue *****/

// DateValue is a calendar date without a time of day.
type DateValue struct {
	year  int
	month time.Month
	day   int
}

// DateOf builds a DateValue; out of range fields are normalized the way time.Date does it.
func DateOf(year int, month time.Month, day int) DateValue {
	return DateFrom(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateFrom takes the date fields of t in its own location.
func DateFrom(t time.Time) DateValue {
	y, m, d := t.Date()
	return DateValue{year: y, month: m, day: d}
}

// ParseDate parses text in the layout "2006-01-02".
func ParseDate(s string) (DateValue, error) {
	t, err := time.Parse(layoutDate, strings.TrimSpace(s))
	if err != nil {
		return DateValue{}, errors.Join(ErrUnparsableLiteral, err)
	}

	return DateFrom(t), nil
}

func (d DateValue) Year() int         { return d.year }
func (d DateValue) Month() time.Month { return d.month }
func (d DateValue) Day() int          { return d.day }

func (d DateValue) String() string {
	return d.toTime().Format(layoutDate)
}

// Compare returns -1, 0 or +1 in chronological order.
func (d DateValue) Compare(other DateValue) int {
	return d.toTime().Compare(other.toTime())
}

func (d DateValue) toTime() time.Time {
	if d == (DateValue{}) {
		return time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

/***** TimeValue *****/

// TimeValue is a time of day without a date.
type TimeValue struct {
	hour       int
	minute     int
	second     int
	nanosecond int
}

// TimeOf builds a TimeValue; overflowing fields wrap around midnight.
func TimeOf(hour, minute, second, nanosecond int) TimeValue {
	return TimeFrom(time.Date(2000, time.January, 1, hour, minute, second, nanosecond, time.UTC))
}

// TimeFrom takes the clock fields of t in its own location.
func TimeFrom(t time.Time) TimeValue {
	h, m, s := t.Clock()
	return TimeValue{hour: h, minute: m, second: s, nanosecond: t.Nanosecond()}
}

// ParseTime parses text in one of the layouts "15:04", "15:04:05" or "15:04:05.999999999".
func ParseTime(s string) (TimeValue, error) {
	t, err := parseWithLayouts(strings.TrimSpace(s), timeLayouts)
	if err != nil {
		return TimeValue{}, err
	}

	return TimeFrom(t), nil
}

func (t TimeValue) Hour() int       { return t.hour }
func (t TimeValue) Minute() int     { return t.minute }
func (t TimeValue) Second() int     { return t.second }
func (t TimeValue) Nanosecond() int { return t.nanosecond }

func (t TimeValue) String() string {
	return t.onDay(time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)).Format(layoutTimeNano)
}

// SinceMidnight returns the duration elapsed since 00:00.
func (t TimeValue) SinceMidnight() time.Duration {
	return time.Duration(t.hour)*time.Hour +
		time.Duration(t.minute)*time.Minute +
		time.Duration(t.second)*time.Second +
		time.Duration(t.nanosecond)
}

// Compare returns -1, 0 or +1 in chronological order.
func (t TimeValue) Compare(other TimeValue) int {
	return compareDurations(t.SinceMidnight(), other.SinceMidnight())
}

func (t TimeValue) onDay(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, t.hour, t.minute, t.second, t.nanosecond, time.UTC)
}

/***** DateTimeValue *****/

// DateTimeValue is a calendar date with a time of day and no zone.
type DateTimeValue struct {
	date DateValue
	time TimeValue
}

// DateTimeOf combines a date and a time of day.
func DateTimeOf(date DateValue, timeOfDay TimeValue) DateTimeValue {
	return DateTimeValue{date: date, time: timeOfDay}
}

// DateTimeFrom takes the wall clock fields of t in its own location.
func DateTimeFrom(t time.Time) DateTimeValue {
	return DateTimeValue{date: DateFrom(t), time: TimeFrom(t)}
}

// ParseDateTime parses a date alone ("2006-01-02", meaning midnight) or a date followed by 'T' or ' '
// and a time in one of the layouts accepted by ParseTime. RFC 3339 text is accepted as well,
// keeping the wall clock of its own offset.
func ParseDateTime(s string) (DateTimeValue, error) {
	trimmed := strings.TrimSpace(s)

	if len(trimmed) == len(layoutDate) {
		d, err := ParseDate(trimmed)
		if err != nil {
			return DateTimeValue{}, err
		}
		return DateTimeValue{date: d}, nil
	}

	if t, err := time.Parse(time.RFC3339Nano, trimmed); err == nil {
		return DateTimeFrom(t), nil
	}

	if len(trimmed) > len(layoutDate) && (trimmed[len(layoutDate)] == 'T' || trimmed[len(layoutDate)] == ' ') {
		d, dateErr := ParseDate(trimmed[:len(layoutDate)])
		if dateErr != nil {
			return DateTimeValue{}, dateErr
		}

		t, timeErr := ParseTime(trimmed[len(layoutDate)+1:])
		if timeErr != nil {
			return DateTimeValue{}, timeErr
		}

		return DateTimeValue{date: d, time: t}, nil
	}

	return DateTimeValue{}, errors.Join(ErrUnparsableLiteral, errors.New("not a date/time: \""+s+"\""))
}

func (dt DateTimeValue) Date() DateValue { return dt.date }
func (dt DateTimeValue) Time() TimeValue { return dt.time }

// IsMidnight reports whether the time of day is exactly 00:00:00.000000000.
func (dt DateTimeValue) IsMidnight() bool {
	return dt.time == TimeValue{}
}

func (dt DateTimeValue) String() string {
	return dt.date.String() + "T" + dt.time.String()
}

// Compare returns -1, 0 or +1 in chronological order.
func (dt DateTimeValue) Compare(other DateTimeValue) int {
	return dt.toTime().Compare(other.toTime())
}

func (dt DateTimeValue) toTime() time.Time {
	return dt.time.onDay(dt.date.toTime())
}

/***** DateSpan *****/

// DateSpan is a calendar tolerance for closeness checks on DATE and DATE_TIME values.
type DateSpan struct {
	Years  int
	Months int
	Days   int
}

func (s DateSpan) isNegative() bool {
	return s.Years < 0 || s.Months < 0 || s.Days < 0
}

func parseWithLayouts(s string, layouts []string) (time.Time, error) {
	var lastErr error

	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}

	return time.Time{}, errors.Join(ErrUnparsableLiteral, lastErr)
}

func compareDurations(a, b time.Duration) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
