package service

import (
	"context"
	"fmt"

	"lso-service/api"
	"lso-service/internal/attendance"
	"lso-service/internal/calendar"
	"lso-service/internal/roster"
	"lso-service/pkg/response"
)

func toAPIMark(r attendance.Record) api.AttendanceMark {
	return api.AttendanceMark{
		MinistrantID: r.MinistrantID,
		Date:         r.Date,
		Slot:         string(r.Slot),
		IsPresent:    r.Mark,
		Symbol:       r.Mark.Symbol(),
	}
}

func toAPIMarks(records []attendance.Record) []api.AttendanceMark {
	result := make([]api.AttendanceMark, 0, len(records))
	for _, r := range records {
		result = append(result, toAPIMark(r))
	}
	return result
}

func (s *Service) weekdayRecords(ctx context.Context, r calendar.Range) ([]attendance.Record, error) {
	return fetch(ctx, s, nsWeekday, r.String(), func(ctx context.Context) ([]attendance.Record, error) {
		return s.store.ListWeekdayAttendance(ctx, r)
	})
}

func (s *Service) sundayRecords(ctx context.Context, r calendar.Range) ([]attendance.Record, error) {
	return fetch(ctx, s, nsSunday, r.String(), func(ctx context.Context) ([]attendance.Record, error) {
		return s.store.ListSundayAttendance(ctx, r)
	})
}

func (s *Service) ListWeekdayAttendance(ctx context.Context, r calendar.Range) ([]api.AttendanceMark, error) {
	const op = "service.ListWeekdayAttendance"

	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}

	records, err := s.weekdayRecords(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return toAPIMarks(records), nil
}

// ToggleWeekdayAttendance advances one weekday cell to its next mark and
// stores it. Concurrent toggles of the same cell are last-write-wins.
func (s *Service) ToggleWeekdayAttendance(ctx context.Context, req *api.WeekdayToggleRequest) (*api.AttendanceMark, error) {
	const op = "service.ToggleWeekdayAttendance"

	date, err := calendar.ParseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	if date.Weekday() == calendar.Sunday {
		return nil, fmt.Errorf("%s: %w: %s is a Sunday", op, response.ErrBadRequest, date)
	}

	slot, err := roster.ParseSlot(req.Slot)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}

	key := attendance.Key{MinistrantID: req.MinistrantID, Date: date, Slot: slot}

	current, err := s.store.GetWeekdayMark(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rec := attendance.Record{Key: key, Mark: current.Next()}
	if err := s.store.UpsertWeekdayAttendance(ctx, rec); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, nsWeekday)

	out := toAPIMark(rec)
	return &out, nil
}

func (s *Service) ListSundayAttendance(ctx context.Context, r calendar.Range) ([]api.AttendanceMark, error) {
	const op = "service.ListSundayAttendance"

	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}

	records, err := s.sundayRecords(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return toAPIMarks(records), nil
}

// ToggleSundayAttendance advances one Sunday cell. Sunday attendance follows
// the same cycle as weekdays.
func (s *Service) ToggleSundayAttendance(ctx context.Context, req *api.SundayToggleRequest) (*api.AttendanceMark, error) {
	const op = "service.ToggleSundayAttendance"

	date, err := calendar.ParseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	if date.Weekday() != calendar.Sunday {
		return nil, fmt.Errorf("%s: %w: %s is not a Sunday", op, response.ErrBadRequest, date)
	}

	current, err := s.store.GetSundayMark(ctx, req.MinistrantID, date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rec := attendance.Record{
		Key:  attendance.Key{MinistrantID: req.MinistrantID, Date: date},
		Mark: current.Next(),
	}
	if err := s.store.UpsertSundayAttendance(ctx, rec); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, nsSunday)

	out := toAPIMark(rec)
	return &out, nil
}
