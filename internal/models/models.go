package models

import (
	"fmt"
	"time"

	"lso-service/internal/calendar"
)

type Rank struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	ShortName string `db:"short_name"`
	Color     string `db:"color"`
}

// Group is a guild ("Gildia") that serves Sunday Masses together.
type Group struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

type Ministrant struct {
	ID        int64     `db:"id"`
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	RankID    int64     `db:"rank_id"`
	GroupID   *int64    `db:"group_id"`
	Points    int       `db:"points"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`

	Rank  Rank
	Group *Group
}

// FullName is "Last First", the order used on printed schedules.
func (m Ministrant) FullName() string {
	return m.LastName + " " + m.FirstName
}

type EventType string

const (
	EventMorning  EventType = "R"
	EventEvening  EventType = "W"
	EventSpecial  EventType = "S"
	EventDevotion EventType = "N"
)

var EventTypes = []EventType{EventMorning, EventEvening, EventSpecial, EventDevotion}

func (e EventType) Valid() bool {
	switch e {
	case EventMorning, EventEvening, EventSpecial, EventDevotion:
		return true
	}
	return false
}

func (e EventType) Label() string {
	switch e {
	case EventMorning:
		return "Msza poranna"
	case EventEvening:
		return "Msza wieczorna"
	case EventSpecial:
		return "Służba specjalna"
	case EventDevotion:
		return "Nabożeństwo"
	}
	return fmt.Sprintf("EventType(%s)", string(e))
}

// AttendanceLog is a supplementary service worth Score points.
type AttendanceLog struct {
	ID           int64         `db:"id"`
	MinistrantID int64         `db:"ministrant_id"`
	EventType    EventType     `db:"event_type"`
	Score        int           `db:"score"`
	EventDate    calendar.Date `db:"event_date"`
	CreatedAt    time.Time     `db:"created_at"`
}

type MassTime struct {
	ID           int64   `db:"id"`
	StartTime    string  `db:"start_time"`
	Description  *string `db:"description"`
	DisplayOrder int     `db:"display_order"`
}

// ScheduleEntry assigns a guild to one Sunday Mass.
type ScheduleEntry struct {
	ID         int64         `db:"id"`
	Date       calendar.Date `db:"date"`
	MassTimeID int64         `db:"mass_time_id"`
	GroupID    *int64        `db:"group_id"`
}

// LogCount is the number of supplementary services per ministrant.
type LogCount struct {
	MinistrantID int64 `db:"ministrant_id"`
	Count        int   `db:"count"`
	Score        int   `db:"score"`
}
