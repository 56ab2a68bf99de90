// Package roster resolves which recurring weekday assignments apply to a
// month and how an assignment is removed without losing history.
package roster

import (
	"errors"
	"fmt"
	"strings"

	"lso-service/internal/calendar"
)

var (
	ErrInvalidSlot     = errors.New("roster: invalid time slot")
	ErrInvalidTemplate = errors.New("roster: invalid template")
)

// Slot is a named service window of the day.
type Slot string

const (
	Morning Slot = "RANO"
	Evening Slot = "WIECZOR"
)

var Slots = []Slot{Morning, Evening}

func (s Slot) Valid() bool {
	return s == Morning || s == Evening
}

// Label returns the Polish display name.
func (s Slot) Label() string {
	switch s {
	case Morning:
		return "Rano"
	case Evening:
		return "Wieczór"
	}
	return string(s)
}

// Time returns the Mass start time for the slot.
func (s Slot) Time() string {
	switch s {
	case Morning:
		return "7:00"
	case Evening:
		return "18:00"
	}
	return ""
}

// ParseSlot accepts the stored names as well as "morning"/"evening".
func ParseSlot(s string) (Slot, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "RANO", "MORNING":
		return Morning, nil
	case "WIECZOR", "WIECZÓR", "EVENING":
		return Evening, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSlot, s)
}

// Template assigns a ministrant to a weekday and slot for the validity
// window [ValidFrom, ValidTo]. A nil ValidTo is open-ended.
type Template struct {
	ID           int64
	MinistrantID int64
	Weekday      calendar.Weekday
	Slot         Slot
	ValidFrom    calendar.Date
	ValidTo      *calendar.Date
}

// New returns a template that takes effect on the first day of month.
func New(ministrantID int64, wd calendar.Weekday, slot Slot, month calendar.Month) Template {
	return Template{
		MinistrantID: ministrantID,
		Weekday:      wd,
		Slot:         slot,
		ValidFrom:    month.Start(),
	}
}

func (t Template) Validate() error {
	if t.MinistrantID <= 0 {
		return fmt.Errorf("%w: ministrant id is required", ErrInvalidTemplate)
	}
	if err := t.Weekday.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
	}
	if !t.Slot.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidTemplate, ErrInvalidSlot, t.Slot)
	}
	if t.ValidFrom.IsZero() {
		return fmt.Errorf("%w: valid_from is required", ErrInvalidTemplate)
	}
	if t.ValidTo != nil && t.ValidTo.Before(t.ValidFrom) {
		return fmt.Errorf("%w: valid_to %s is before valid_from %s", ErrInvalidTemplate, t.ValidTo, t.ValidFrom)
	}
	return nil
}

// ActiveIn reports whether the validity window intersects month m.
func (t Template) ActiveIn(m calendar.Month) bool {
	return m.Range().Overlaps(t.ValidFrom, t.ValidTo)
}

// Active returns the templates active in month m, preserving order. A nil
// month passes every template through.
func Active(templates []Template, m *calendar.Month) []Template {
	if m == nil {
		out := make([]Template, len(templates))
		copy(out, templates)
		return out
	}

	out := make([]Template, 0, len(templates))
	for _, t := range templates {
		if t.ActiveIn(*m) {
			out = append(out, t)
		}
	}
	return out
}

// ForSlot returns the templates for a weekday and slot.
func ForSlot(templates []Template, wd calendar.Weekday, slot Slot) []Template {
	var out []Template
	for _, t := range templates {
		if t.Weekday == wd && t.Slot == slot {
			out = append(out, t)
		}
	}
	return out
}

// Assigned returns the set of ministrants with a template for the weekday and slot.
func Assigned(templates []Template, wd calendar.Weekday, slot Slot) map[int64]struct{} {
	ids := make(map[int64]struct{})
	for _, t := range ForSlot(templates, wd, slot) {
		ids[t.MinistrantID] = struct{}{}
	}
	return ids
}

// Conflicting returns an existing template for the same ministrant, weekday
// and slot whose window overlaps candidate's, if any.
func Conflicting(templates []Template, candidate Template) (Template, bool) {
	for _, t := range templates {
		if t.ID == candidate.ID && t.ID != 0 {
			continue
		}
		if t.MinistrantID != candidate.MinistrantID || t.Weekday != candidate.Weekday || t.Slot != candidate.Slot {
			continue
		}
		if overlaps(t, candidate) {
			return t, true
		}
	}
	return Template{}, false
}

func overlaps(a, b Template) bool {
	if b.ValidTo != nil && a.ValidFrom.After(*b.ValidTo) {
		return false
	}
	if a.ValidTo != nil && b.ValidFrom.After(*a.ValidTo) {
		return false
	}
	return true
}

// RemovalKind says how a template is removed.
type RemovalKind int

const (
	// HardDelete destroys a template that never took effect before the removal month.
	HardDelete RemovalKind = iota + 1
	// SoftEnd closes the window at the end of the month preceding removal.
	SoftEnd
)

func (k RemovalKind) String() string {
	switch k {
	case HardDelete:
		return "hard_delete"
	case SoftEnd:
		return "soft_end"
	}
	return "unknown"
}

func (k RemovalKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Removal is the action to apply to the store. ValidTo is set for SoftEnd only.
type Removal struct {
	Kind       RemovalKind
	TemplateID int64
	ValidTo    calendar.Date
}

// PlanRemoval decides how to remove t starting from month removal. A window
// that already closed earlier is never extended.
func PlanRemoval(t Template, removal calendar.Month) Removal {
	start := removal.Start()
	if !t.ValidFrom.Before(start) {
		return Removal{Kind: HardDelete, TemplateID: t.ID}
	}

	end := removal.Prev().End()
	if t.ValidTo != nil && t.ValidTo.Before(end) {
		end = *t.ValidTo
	}
	return Removal{Kind: SoftEnd, TemplateID: t.ID, ValidTo: end}
}
