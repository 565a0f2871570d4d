package timecalc

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the layout of day keys, e.g. "2026-02-27".
	DateLayout = "2006-01-02"
	// PeriodLayout is the layout of accounting period keys, e.g. "2026-02".
	PeriodLayout = "2006-01"

	minutesPerDay = 24 * 60
)

// TimeOfDay is a wall-clock time within a day at minute resolution,
// stored as minutes since midnight.
type TimeOfDay int

// NewTimeOfDay returns the time of day hh:mm.
func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// TimeOfDayOf returns the time of day of t, truncated to the minute.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return NewTimeOfDay(t.Hour(), t.Minute())
}

// ParseTimeOfDay parses "hh:mm" or "hh:mm:ss". Seconds are truncated.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDayOf(t), nil
		}
	}
	return 0, fmt.Errorf("invalid time %q, expected hh:mm", s)
}

// Hour returns the hour component.
func (t TimeOfDay) Hour() int { return int(t) / 60 }

// Minute returns the minute component.
func (t TimeOfDay) Minute() int { return int(t) % 60 }

// Add returns t shifted by mins, wrapping around midnight.
func (t TimeOfDay) Add(mins int) TimeOfDay {
	v := (int(t) + mins) % minutesPerDay
	if v < 0 {
		v += minutesPerDay
	}
	return TimeOfDay(v)
}

// String formats t as "15:04:05".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:00", t.Hour(), t.Minute())
}

// Short formats t as "15:04".
func (t TimeOfDay) Short() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// On anchors t to the calendar date of day.
func (t TimeOfDay) On(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location())
}

// MarshalText implements encoding.TextMarshaler.
func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TimeOfDay) UnmarshalText(data []byte) error {
	v, err := ParseTimeOfDay(string(data))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// MinutesBetween returns a - b in whole minutes. Both operands are anchored
// to the same date, so no cross-midnight handling takes place. It returns 0
// if either operand is absent.
func MinutesBetween(a, b *TimeOfDay) int {
	if a == nil || b == nil {
		return 0
	}
	anchor := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	return int(a.On(anchor).Sub(b.On(anchor)).Seconds()) / 60
}

// FormatMinutes formats a signed minute count like "45min", "-1h 10min" or,
// with expand set, "0h 45min".
func FormatMinutes(mins int, expand bool) string {
	sign := ""
	if mins < 0 {
		sign = "-"
		mins = -mins
	}
	if mins < 60 && !expand {
		return fmt.Sprintf("%s%dmin", sign, mins)
	}
	return fmt.Sprintf("%s%dh %dmin", sign, mins/60, mins%60)
}

// WeekRange returns the Monday and Sunday of the ISO week containing t,
// both at 00:00.
func WeekRange(t time.Time) (time.Time, time.Time) {
	// Go's weekday: Sunday=0, Monday=1, …, Saturday=6
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7 // treat Sunday as 7 (ISO)
	}
	monday := StartOfDay(t.AddDate(0, 0, -(wd - 1)))
	return monday, monday.AddDate(0, 0, 6)
}

// CurrentWeek returns the most recent Monday and today.
func CurrentWeek(today time.Time) (time.Time, time.Time) {
	monday, _ := WeekRange(today)
	return monday, StartOfDay(today)
}

// PreviousWeek returns the full Monday–Sunday window before the current week.
func PreviousWeek(today time.Time) (time.Time, time.Time) {
	monday, _ := WeekRange(today)
	return monday.AddDate(0, 0, -7), monday.AddDate(0, 0, -1)
}

// MonthRange returns the first and last day of the month containing t.
func MonthRange(t time.Time) (time.Time, time.Time) {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return first, first.AddDate(0, 1, -1)
}

// ISOWeekLabel returns a label like "2026-W09".
func ISOWeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// IsWeekend reports whether t falls on a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// DateKey returns the day key of t.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// PeriodKey returns the accounting period (month) key of t.
func PeriodKey(t time.Time) string {
	return t.Format(PeriodLayout)
}

// ParseDate parses a day key in the local time zone.
func ParseDate(key string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, key, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", key, err)
	}
	return t, nil
}

// Days returns every calendar day in [from, to], inclusive.
func Days(from, to time.Time) []time.Time {
	var days []time.Time
	for d := StartOfDay(from); !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
