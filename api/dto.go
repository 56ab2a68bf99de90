package api

import (
	"time"

	"lso-service/internal/attendance"
	"lso-service/internal/calendar"
)

// Requests

type MinistrantCreateRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	RankID    int64  `json:"rank_id" validate:"required,gt=0"`
	GroupID   *int64 `json:"group_id,omitempty" validate:"omitempty,gt=0"`
	IsActive  *bool  `json:"is_active,omitempty"`
}

type MinistrantActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

type AttendanceLogRequest struct {
	MinistrantID int64  `json:"ministrant_id" validate:"required,gt=0"`
	EventType    string `json:"event_type" validate:"required,oneof=R W S N"`
	Score        *int   `json:"score,omitempty" validate:"omitempty,min=0,max=1000"`
	EventDate    string `json:"event_date" validate:"required,datetime=2006-01-02"`
}

type GroupCreateRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// MassTimeCreateRequest adds a Sunday Mass hour such as "9:00".
type MassTimeCreateRequest struct {
	StartTime    string  `json:"start_time" validate:"required,datetime=15:04"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=200"`
	DisplayOrder int     `json:"display_order" validate:"min=0"`
}

type ScheduleEntryRequest struct {
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	MassTimeID int64  `json:"mass_time_id" validate:"required,gt=0"`
	GroupID    *int64 `json:"group_id" validate:"omitempty,gt=0"`
}

// TemplateCreateRequest assigns the selected ministrants to one weekday and
// slot starting from Month.
type TemplateCreateRequest struct {
	MinistrantIDs []int64 `json:"ministrant_ids" validate:"required,min=1,dive,gt=0"`
	Weekday       int     `json:"weekday" validate:"required,min=1,max=6"`
	Slot          string  `json:"time_slot" validate:"required,oneof=RANO WIECZOR"`
	Month         string  `json:"month" validate:"required,datetime=2006-01"`
}

type WeekdayToggleRequest struct {
	MinistrantID int64  `json:"ministrant_id" validate:"required,gt=0"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	Slot         string `json:"time_slot" validate:"required,oneof=RANO WIECZOR"`
}

type SundayToggleRequest struct {
	MinistrantID int64  `json:"ministrant_id" validate:"required,gt=0"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
}

// Responses

type Rank struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	Color     string `json:"color"`
}

type Group struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Ministrant struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	RankID    int64     `json:"rank_id"`
	GroupID   *int64    `json:"group_id"`
	Points    int       `json:"points"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	Rank      *Rank     `json:"ranks,omitempty"`
	Group     *Group    `json:"groups,omitempty"`
}

type RankedMinistrant struct {
	Position int    `json:"rank"`
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Points   int    `json:"points"`
	Services int    `json:"services"`
}

type AttendanceLog struct {
	ID           int64         `json:"id"`
	MinistrantID int64         `json:"ministrant_id"`
	EventType    string        `json:"event_type"`
	EventLabel   string        `json:"event_label"`
	Score        int           `json:"score"`
	EventDate    calendar.Date `json:"event_date"`
	CreatedAt    time.Time     `json:"created_at"`
}

type MassTime struct {
	ID           int64   `json:"id"`
	StartTime    string  `json:"start_time"`
	Description  *string `json:"description"`
	DisplayOrder int     `json:"display_order"`
}

type ScheduleEntry struct {
	ID         int64         `json:"id"`
	Date       calendar.Date `json:"date"`
	MassTimeID int64         `json:"mass_time_id"`
	GroupID    *int64        `json:"group_id"`
}

type Template struct {
	ID           int64          `json:"id"`
	MinistrantID int64          `json:"ministrant_id"`
	Weekday      int            `json:"day_of_week"`
	WeekdayName  string         `json:"day_name"`
	Slot         string         `json:"time_slot"`
	ValidFrom    calendar.Date  `json:"valid_from"`
	ValidTo      *calendar.Date `json:"valid_to"`
}

type TemplateRemoval struct {
	ID      int64          `json:"id"`
	Action  string         `json:"action"`
	ValidTo *calendar.Date `json:"valid_to,omitempty"`
}

type AttendanceMark struct {
	MinistrantID int64           `json:"ministrant_id"`
	Date         calendar.Date   `json:"date"`
	Slot         string          `json:"time_slot,omitempty"`
	IsPresent    attendance.Mark `json:"is_present"`
	Symbol       string          `json:"symbol"`
}

type Occurrences struct {
	Month   calendar.Month  `json:"month"`
	Weekday int             `json:"weekday"`
	DayName string          `json:"day_name"`
	Dates   []calendar.Date `json:"dates"`
}

type Stats struct {
	Month                 calendar.Month `json:"month"`
	ActiveMinistrants     int            `json:"active_ministrants"`
	ScheduledServices     int            `json:"scheduled_services"`
	SupplementaryServices int            `json:"supplementary_services"`
	Present               int            `json:"present"`
	Absent                int            `json:"absent"`
	AttendanceRate        float64        `json:"attendance_rate"`
}

type UpcomingService struct {
	Date        calendar.Date `json:"date"`
	Time        string        `json:"time"`
	Type        string        `json:"type"`
	Title       string        `json:"title"`
	Ministrants int           `json:"ministrants"`
	Group       *string       `json:"group,omitempty"`
}
