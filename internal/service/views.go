package service

import (
	"context"
	"fmt"

	"lso-service/api"
	"lso-service/internal/attendance"
	"lso-service/internal/cache"
	"lso-service/internal/calendar"
	"lso-service/internal/export"
	"lso-service/internal/grid"
	"lso-service/internal/models"
	"lso-service/internal/roster"
	"lso-service/pkg/response"
)

const (
	defaultUpcomingDays = 7
	maxUpcomingDays     = 31
)

func (s *Service) ministrantsByID(ctx context.Context) (map[int64]models.Ministrant, error) {
	list, err := s.ministrants(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]models.Ministrant, len(list))
	for _, m := range list {
		byID[m.ID] = m
	}
	return byID, nil
}

func (s *Service) WeekdayGrid(ctx context.Context, m calendar.Month) (*grid.WeekdayGrid, error) {
	const op = "service.WeekdayGrid"

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}

	templates, err := s.templates(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ministrants, err := s.ministrantsByID(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	records, err := s.weekdayRecords(ctx, m.Range())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	g, err := grid.Weekday(m, templates, ministrants, attendance.Index(records))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}

	return &g, nil
}

func (s *Service) SundayGrid(ctx context.Context, m calendar.Month) (*grid.SundayGrid, error) {
	const op = "service.SundayGrid"

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}

	groups, err := fetch(ctx, s, nsDictionaries, "groups", s.store.ListGroups)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ministrants, err := s.ministrants(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	records, err := s.sundayRecords(ctx, m.Range())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	g, err := grid.Sunday(m, groups, ministrants, attendance.Index(records))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}

	return &g, nil
}

// AvailableMinistrants lists active ministrants that can still be assigned
// to the weekday and slot in month m.
func (s *Service) AvailableMinistrants(ctx context.Context, wd calendar.Weekday, slot roster.Slot, m calendar.Month) ([]api.Ministrant, error) {
	const op = "service.AvailableMinistrants"

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	if err := wd.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	if !slot.Valid() {
		return nil, fmt.Errorf("%s: %w: %w: %q", op, response.ErrBadRequest, roster.ErrInvalidSlot, slot)
	}

	templates, err := s.activeTemplates(ctx, &m)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ministrants, err := s.ministrants(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	available := grid.Available(ministrants, templates, wd, slot)

	result := make([]api.Ministrant, 0, len(available))
	for _, mn := range available {
		result = append(result, toAPIMinistrant(mn))
	}
	return result, nil
}

func (s *Service) Occurrences(m calendar.Month, wd calendar.Weekday) (*api.Occurrences, error) {
	const op = "service.Occurrences"

	dates, err := calendar.Occurrences(m, wd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}

	return &api.Occurrences{Month: m, Weekday: int(wd), DayName: wd.String(), Dates: dates}, nil
}

// Stats summarises month m for the dashboard. Scheduled services count two
// Masses per weekday and one per mass time on Sundays.
func (s *Service) Stats(ctx context.Context, m calendar.Month) (*api.Stats, error) {
	const op = "service.Stats"

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}

	ministrants, err := s.ministrants(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	massTimes, err := fetch(ctx, s, nsDictionaries, "mass_times", s.store.ListMassTimes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r := m.Range()

	logs, err := fetch(ctx, s, nsLogs, cache.Key("all", r.String()), func(ctx context.Context) ([]models.AttendanceLog, error) {
		return s.store.ListAttendanceLogs(ctx, nil, &r)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	weekday, err := s.weekdayRecords(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sunday, err := s.sundayRecords(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := &api.Stats{Month: m, SupplementaryServices: len(logs)}

	for _, mn := range ministrants {
		if mn.IsActive {
			out.ActiveMinistrants++
		}
	}

	for _, wd := range calendar.Weekdays {
		dates, err := calendar.Occurrences(m, wd)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, translate(err))
		}
		out.ScheduledServices += len(dates) * len(roster.Slots)
	}
	sundays, err := calendar.Sundays(m)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	out.ScheduledServices += len(sundays) * len(massTimes)

	var tally attendance.Tally
	for _, rec := range weekday {
		tally.Add(rec.Mark)
	}
	for _, rec := range sunday {
		tally.Add(rec.Mark)
	}
	out.Present = tally.Present
	out.Absent = tally.Absent
	out.AttendanceRate = tally.Rate()

	return out, nil
}

// UpcomingServices lists the Masses of the next days starting at from.
// A zero from means today.
func (s *Service) UpcomingServices(ctx context.Context, from calendar.Date, days int) ([]api.UpcomingService, error) {
	const op = "service.UpcomingServices"

	if from.IsZero() {
		from = s.today()
	}
	if days <= 0 {
		days = defaultUpcomingDays
	}
	days = min(days, maxUpcomingDays)

	r := calendar.Range{From: from, To: from.AddDays(days - 1)}

	templates, err := s.templates(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ministrants, err := s.ministrants(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	groups, err := fetch(ctx, s, nsDictionaries, "groups", s.store.ListGroups)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	massTimes, err := fetch(ctx, s, nsDictionaries, "mass_times", s.store.ListMassTimes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	entries, err := s.scheduleEntries(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	active := make(map[int64]bool, len(ministrants))
	perGroup := make(map[int64]int)
	for _, mn := range ministrants {
		active[mn.ID] = mn.IsActive
		if mn.IsActive && mn.GroupID != nil {
			perGroup[*mn.GroupID]++
		}
	}

	groupNames := make(map[int64]string, len(groups))
	for _, g := range groups {
		groupNames[g.ID] = g.Name
	}

	type entryKey struct {
		date       calendar.Date
		massTimeID int64
	}
	assigned := make(map[entryKey]*int64, len(entries))
	for _, e := range entries {
		assigned[entryKey{e.Date, e.MassTimeID}] = e.GroupID
	}

	var result []api.UpcomingService
	for d := r.From; !d.After(r.To); d = d.AddDays(1) {
		if d.Weekday() == calendar.Sunday {
			for _, mt := range massTimes {
				svc := api.UpcomingService{Date: d, Time: mt.StartTime, Type: "sunday", Title: "Msza Niedzielna"}
				if mt.Description != nil && *mt.Description != "" {
					svc.Title = *mt.Description
				}
				if gid := assigned[entryKey{d, mt.ID}]; gid != nil {
					name := groupNames[*gid]
					svc.Group = &name
					svc.Ministrants = perGroup[*gid]
				}
				result = append(result, svc)
			}
			continue
		}

		for _, slot := range roster.Slots {
			n := 0
			for _, t := range roster.ForSlot(templates, d.Weekday(), slot) {
				if active[t.MinistrantID] && servesOn(t, d) {
					n++
				}
			}
			result = append(result, api.UpcomingService{
				Date:        d,
				Time:        slot.Time(),
				Type:        "weekday",
				Title:       weekdayTitle(slot),
				Ministrants: n,
			})
		}
	}

	return result, nil
}

func servesOn(t roster.Template, d calendar.Date) bool {
	return !t.ValidFrom.After(d) && (t.ValidTo == nil || !t.ValidTo.Before(d))
}

func weekdayTitle(slot roster.Slot) string {
	if slot == roster.Morning {
		return "Msza poranna"
	}
	return "Msza wieczorna"
}

// ExportWeekday renders the weekday schedule of month m as printable HTML.
func (s *Service) ExportWeekday(ctx context.Context, m calendar.Month) ([]byte, error) {
	const op = "service.ExportWeekday"

	g, err := s.WeekdayGrid(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	html, err := export.WeekdayHTML(*g, s.parish)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return html, nil
}
