// Package attendance models the three-state mark recorded per ministrant,
// date and slot.
package attendance

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"lso-service/internal/calendar"
	"lso-service/internal/roster"
)

var ErrInvalidMark = errors.New("attendance: invalid mark")

// Mark is the state of one attendance cell. The zero value is Unmarked.
type Mark int8

const (
	Unmarked Mark = iota
	Present
	Absent
)

// Next advances the cycle Unmarked -> Present -> Absent -> Unmarked.
func (m Mark) Next() Mark {
	switch m {
	case Unmarked:
		return Present
	case Present:
		return Absent
	default:
		return Unmarked
	}
}

func (m Mark) Valid() bool {
	return m >= Unmarked && m <= Absent
}

// FromNullable maps a stored nullable boolean: nil is Unmarked.
func FromNullable(b *bool) Mark {
	switch {
	case b == nil:
		return Unmarked
	case *b:
		return Present
	default:
		return Absent
	}
}

// Nullable is the inverse of FromNullable.
func (m Mark) Nullable() *bool {
	var v bool
	switch m {
	case Present:
		v = true
	case Absent:
		v = false
	default:
		return nil
	}
	return &v
}

func (m Mark) String() string {
	switch m {
	case Unmarked:
		return "unmarked"
	case Present:
		return "present"
	case Absent:
		return "absent"
	}
	return fmt.Sprintf("Mark(%d)", int8(m))
}

// Symbol is the grid cell glyph: "O" present, "N" absent.
func (m Mark) Symbol() string {
	switch m {
	case Present:
		return "O"
	case Absent:
		return "N"
	}
	return ""
}

func (m Mark) Label() string {
	switch m {
	case Present:
		return "obecny"
	case Absent:
		return "nieobecny"
	}
	return ""
}

func (m Mark) MarshalJSON() ([]byte, error) {
	switch m {
	case Present:
		return []byte("true"), nil
	case Absent:
		return []byte("false"), nil
	case Unmarked:
		return []byte("null"), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrInvalidMark, int8(m))
}

func (m *Mark) UnmarshalJSON(b []byte) error {
	var v *bool
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidMark, b)
	}
	*m = FromNullable(v)
	return nil
}

// Scan reads a nullable BOOLEAN column. SQLite drivers return integers.
func (m *Mark) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = Unmarked
	case bool:
		*m = FromNullable(&v)
	case int64:
		b := v != 0
		*m = FromNullable(&b)
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalidMark, src)
	}
	return nil
}

func (m Mark) Value() (driver.Value, error) {
	if p := m.Nullable(); p != nil {
		return *p, nil
	}
	return nil, nil
}

// Key identifies a weekday attendance cell. Sunday cells leave Slot empty.
type Key struct {
	MinistrantID int64
	Date         calendar.Date
	Slot         roster.Slot
}

// Record is a stored mark.
type Record struct {
	Key
	Mark Mark
}

// Index builds a lookup of marks by key. Missing keys read as Unmarked.
func Index(records []Record) map[Key]Mark {
	idx := make(map[Key]Mark, len(records))
	for _, r := range records {
		idx[r.Key] = r.Mark
	}
	return idx
}

// Tally counts present and absent marks.
type Tally struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
}

func (t *Tally) Add(m Mark) {
	switch m {
	case Present:
		t.Present++
	case Absent:
		t.Absent++
	}
}

// Rate is present/(present+absent), or 0 with nothing marked.
func (t Tally) Rate() float64 {
	total := t.Present + t.Absent
	if total == 0 {
		return 0
	}
	return float64(t.Present) / float64(total)
}
