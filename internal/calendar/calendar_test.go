package calendar

import (
	"errors"
	"testing"
	"time"
)

func TestWeekdayOf(t *testing.T) {
	tests := []struct {
		in   time.Weekday
		want Weekday
	}{
		{time.Sunday, Sunday},
		{time.Monday, Monday},
		{time.Wednesday, Wednesday},
		{time.Saturday, Saturday},
	}

	for _, tt := range tests {
		if got := WeekdayOf(tt.in); got != tt.want {
			t.Errorf("WeekdayOf(%v) = %d, want %d", tt.in, got, tt.want)
		}
		if back := tt.want.Std(); back != tt.in {
			t.Errorf("%d.Std() = %v, want %v", tt.want, back, tt.in)
		}
	}
}

func TestOccurrences_MarchWednesdays(t *testing.T) {
	got, err := Occurrences(Month{Year: 2025, Month: time.March}, Wednesday)
	if err != nil {
		t.Fatalf("Occurrences() error = %v", err)
	}

	want := []string{"2025-03-05", "2025-03-12", "2025-03-19", "2025-03-26"}
	if len(got) != len(want) {
		t.Fatalf("got %d dates, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i].String() != want[i] {
			t.Errorf("date[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestOccurrences_CountIsFourOrFive(t *testing.T) {
	for year := 2023; year <= 2028; year++ {
		for m := time.January; m <= time.December; m++ {
			month := Month{Year: year, Month: m}
			for w := Monday; w <= Sunday; w++ {
				dates, err := Occurrences(month, w)
				if err != nil {
					t.Fatalf("Occurrences(%s, %d) error = %v", month, w, err)
				}
				if n := len(dates); n != 4 && n != 5 {
					t.Errorf("Occurrences(%s, %d) returned %d dates", month, w, n)
				}
				for _, d := range dates {
					if d.Weekday() != w {
						t.Errorf("%s is %v, want %v", d, d.Weekday(), w)
					}
				}
			}
		}
	}
}

func TestOccurrences_CoverMonthExactlyOnce(t *testing.T) {
	months := []Month{
		{Year: 2024, Month: time.February},
		{Year: 2025, Month: time.February},
		{Year: 2025, Month: time.March},
		{Year: 2025, Month: time.April},
		{Year: 2025, Month: time.December},
	}

	for _, month := range months {
		t.Run(month.String(), func(t *testing.T) {
			seen := make(map[Date]int)
			for w := Monday; w <= Sunday; w++ {
				dates, err := Occurrences(month, w)
				if err != nil {
					t.Fatalf("Occurrences() error = %v", err)
				}
				prev := Date{}
				for _, d := range dates {
					if !prev.IsZero() && !prev.Before(d) {
						t.Errorf("dates not ascending: %s then %s", prev, d)
					}
					prev = d
					seen[d]++
				}
			}

			all := Days(month)
			if len(seen) != len(all) {
				t.Fatalf("covered %d days, month has %d", len(seen), len(all))
			}
			for _, d := range all {
				if seen[d] != 1 {
					t.Errorf("%s covered %d times", d, seen[d])
				}
			}
		})
	}
}

func TestOccurrences_InvalidInput(t *testing.T) {
	if _, err := Occurrences(Month{Year: 2025, Month: time.March}, Weekday(0)); !errors.Is(err, ErrInvalidWeekday) {
		t.Errorf("weekday 0: error = %v, want ErrInvalidWeekday", err)
	}
	if _, err := Occurrences(Month{Year: 2025, Month: time.March}, Weekday(8)); !errors.Is(err, ErrInvalidWeekday) {
		t.Errorf("weekday 8: error = %v, want ErrInvalidWeekday", err)
	}
	if _, err := Occurrences(Month{Year: 2025, Month: 13}, Monday); !errors.Is(err, ErrInvalidMonth) {
		t.Errorf("month 13: error = %v, want ErrInvalidMonth", err)
	}
}

func TestSundays(t *testing.T) {
	got, err := Sundays(Month{Year: 2025, Month: time.June})
	if err != nil {
		t.Fatalf("Sundays() error = %v", err)
	}
	want := []int{1, 8, 15, 22, 29}
	if len(got) != len(want) {
		t.Fatalf("got %v, want days %v", got, want)
	}
	for i, d := range got {
		if d.Day != want[i] {
			t.Errorf("sunday[%d] = %s, want day %d", i, d, want[i])
		}
	}
}

func TestMonthBounds(t *testing.T) {
	tests := []struct {
		month    Month
		wantEnd  string
		wantPrev string
		wantNext string
		wantDays int
	}{
		{Month{2024, time.February}, "2024-02-29", "2024-01", "2024-03", 29},
		{Month{2025, time.February}, "2025-02-28", "2025-01", "2025-03", 28},
		{Month{2025, time.January}, "2025-01-31", "2024-12", "2025-02", 31},
		{Month{2025, time.December}, "2025-12-31", "2025-11", "2026-01", 31},
	}

	for _, tt := range tests {
		t.Run(tt.month.String(), func(t *testing.T) {
			if got := tt.month.End().String(); got != tt.wantEnd {
				t.Errorf("End() = %s, want %s", got, tt.wantEnd)
			}
			if got := tt.month.Prev().String(); got != tt.wantPrev {
				t.Errorf("Prev() = %s, want %s", got, tt.wantPrev)
			}
			if got := tt.month.Next().String(); got != tt.wantNext {
				t.Errorf("Next() = %s, want %s", got, tt.wantNext)
			}
			if got := len(Days(tt.month)); got != tt.wantDays {
				t.Errorf("len(Days()) = %d, want %d", got, tt.wantDays)
			}
		})
	}
}

func TestRangeValidate(t *testing.T) {
	march := Month{Year: 2025, Month: time.March}

	if err := march.Range().Validate(); err != nil {
		t.Errorf("month range: unexpected error %v", err)
	}

	bad := Range{From: march.End(), To: march.Start()}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("reversed range: error = %v, want ErrInvalidRange", err)
	}

	if err := (Range{From: march.Start()}).Validate(); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("open range: error = %v, want ErrInvalidRange", err)
	}
}

func TestRangeOverlaps(t *testing.T) {
	march := Month{Year: 2025, Month: time.March}.Range()
	end := NewDate(2025, time.March, 1)
	before := NewDate(2025, time.February, 28)

	tests := []struct {
		name string
		from Date
		to   *Date
		want bool
	}{
		{"open from earlier", NewDate(2024, time.May, 1), nil, true},
		{"ends on first day", NewDate(2025, time.January, 1), &end, true},
		{"ends before month", NewDate(2025, time.January, 1), &before, false},
		{"starts after month", NewDate(2025, time.April, 1), nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := march.Overlaps(tt.from, tt.to); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	m, err := ParseMonth("2025-03")
	if err != nil || m != (Month{Year: 2025, Month: time.March}) {
		t.Errorf("ParseMonth() = %v, %v", m, err)
	}
	if _, err := ParseMonth("2025-3-1"); !errors.Is(err, ErrInvalidMonth) {
		t.Errorf("ParseMonth(bad) error = %v", err)
	}

	d, err := ParseDate("2024-02-29")
	if err != nil || d.String() != "2024-02-29" {
		t.Errorf("ParseDate() = %v, %v", d, err)
	}
	if _, err := ParseDate("2025-02-29"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("ParseDate(non-leap) error = %v", err)
	}

	w, err := ParseWeekday("7")
	if err != nil || w != Sunday {
		t.Errorf("ParseWeekday(7) = %v, %v", w, err)
	}
	if _, err := ParseWeekday("0"); !errors.Is(err, ErrInvalidWeekday) {
		t.Errorf("ParseWeekday(0) error = %v", err)
	}
}

func TestDateScan(t *testing.T) {
	var d Date

	if err := d.Scan(time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)); err != nil || d.String() != "2025-03-05" {
		t.Errorf("Scan(time) = %v, %v", d, err)
	}
	if err := d.Scan("2025-04-01T00:00:00Z"); err != nil || d.String() != "2025-04-01" {
		t.Errorf("Scan(string) = %v, %v", d, err)
	}
	if err := d.Scan([]byte("2025-05-02")); err != nil || d.String() != "2025-05-02" {
		t.Errorf("Scan([]byte) = %v, %v", d, err)
	}
	if err := d.Scan(nil); err == nil {
		t.Error("Scan(nil) expected error")
	}

	v, err := NewDate(2025, time.March, 5).Value()
	if err != nil || v != "2025-03-05" {
		t.Errorf("Value() = %v, %v", v, err)
	}
}
