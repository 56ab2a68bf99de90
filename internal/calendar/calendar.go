// Package calendar enumerates local calendar dates within a month.
//
// Weekdays follow the parish convention Monday=1 … Sunday=7. Go's
// time.Weekday (Sunday=0) is converted only through WeekdayOf and
// Weekday.Std.
package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidRange is returned when a range ends before it starts.
	ErrInvalidRange = errors.New("calendar: invalid range")
	// ErrInvalidWeekday is returned for selectors outside 1..7.
	ErrInvalidWeekday = errors.New("calendar: invalid weekday")
	// ErrInvalidMonth is returned for malformed year/month values.
	ErrInvalidMonth = errors.New("calendar: invalid month")
	// ErrInvalidDate is returned for malformed date values.
	ErrInvalidDate = errors.New("calendar: invalid date")
)

// Weekday is a day-of-week selector, Monday=1 … Sunday=7.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// Weekdays lists the days served by the weekday schedule.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

var weekdayNames = [...]string{
	Monday:    "Poniedziałek",
	Tuesday:   "Wtorek",
	Wednesday: "Środa",
	Thursday:  "Czwartek",
	Friday:    "Piątek",
	Saturday:  "Sobota",
	Sunday:    "Niedziela",
}

// WeekdayOf converts Go's Sunday-first weekday to the Monday=1 convention.
func WeekdayOf(d time.Weekday) Weekday {
	if d == time.Sunday {
		return Sunday
	}
	return Weekday(d)
}

// Std converts w back to time.Weekday.
func (w Weekday) Std() time.Weekday {
	if w == Sunday {
		return time.Sunday
	}
	return time.Weekday(w)
}

func (w Weekday) Valid() bool {
	return w >= Monday && w <= Sunday
}

func (w Weekday) Validate() error {
	if !w.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidWeekday, int(w))
	}
	return nil
}

// String returns the Polish name of the day.
func (w Weekday) String() string {
	if !w.Valid() {
		return "Weekday(" + strconv.Itoa(int(w)) + ")"
	}
	return weekdayNames[w]
}

// ParseWeekday accepts the numeric form ("1".."7").
func ParseWeekday(s string) (Weekday, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidWeekday, s)
	}
	w := Weekday(n)
	if err := w.Validate(); err != nil {
		return 0, err
	}
	return w, nil
}

// Month is a calendar month of a given year.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing d.
func MonthOf(d Date) Month {
	return Month{Year: d.Year, Month: d.Month}
}

// ParseMonth parses "YYYY-MM".
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

func (m Month) Validate() error {
	if m.Year < 1 || m.Month < time.January || m.Month > time.December {
		return fmt.Errorf("%w: %04d-%02d", ErrInvalidMonth, m.Year, int(m.Month))
	}
	return nil
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Start is the first day of the month.
func (m Month) Start() Date {
	return Date{Year: m.Year, Month: m.Month, Day: 1}
}

// End is the last day of the month.
func (m Month) End() Date {
	return Date{Year: m.Year, Month: m.Month, Day: m.Len()}
}

// Len is the number of days in the month.
func (m Month) Len() int {
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (m Month) Prev() Month {
	return MonthOf(DateOf(time.Date(m.Year, m.Month-1, 1, 0, 0, 0, 0, time.UTC)))
}

func (m Month) Next() Month {
	return MonthOf(DateOf(time.Date(m.Year, m.Month+1, 1, 0, 0, 0, 0, time.UTC)))
}

func (m Month) Contains(d Date) bool {
	return d.Year == m.Year && d.Month == m.Month
}

// Range is the inclusive range of the month's days.
func (m Month) Range() Range {
	return Range{From: m.Start(), To: m.End()}
}

func (m Month) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Month) UnmarshalText(b []byte) error {
	parsed, err := ParseMonth(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Days returns every date of the month in ascending order.
func Days(m Month) []Date {
	n := m.Len()
	days := make([]Date, 0, n)
	for d := 1; d <= n; d++ {
		days = append(days, Date{Year: m.Year, Month: m.Month, Day: d})
	}
	return days
}

// Occurrences returns the dates of month m falling on weekday w, ascending.
func Occurrences(m Month, w Weekday) ([]Date, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}

	first := m.Start().Weekday()
	offset := (int(w) - int(first) + 7) % 7

	n := m.Len()
	dates := make([]Date, 0, 5)
	for d := 1 + offset; d <= n; d += 7 {
		dates = append(dates, Date{Year: m.Year, Month: m.Month, Day: d})
	}
	return dates, nil
}

// Sundays returns the Sundays of month m.
func Sundays(m Month) ([]Date, error) {
	return Occurrences(m, Sunday)
}

// Range is an inclusive span of dates.
type Range struct {
	From Date
	To   Date
}

func (r Range) Validate() error {
	if r.From.IsZero() || r.To.IsZero() {
		return fmt.Errorf("%w: missing bound", ErrInvalidRange)
	}
	if r.To.Before(r.From) {
		return fmt.Errorf("%w: %s is before %s", ErrInvalidRange, r.To, r.From)
	}
	return nil
}

func (r Range) Contains(d Date) bool {
	return !d.Before(r.From) && !d.After(r.To)
}

// Overlaps reports whether r intersects the window [from, to]; a nil to is
// open-ended.
func (r Range) Overlaps(from Date, to *Date) bool {
	if from.After(r.To) {
		return false
	}
	return to == nil || !to.Before(r.From)
}

func (r Range) String() string {
	return r.From.String() + ".." + r.To.String()
}
