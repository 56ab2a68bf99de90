package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"lso-service/api"
	"lso-service/internal/calendar"
	"lso-service/internal/models"
	"lso-service/internal/roster"
	"lso-service/pkg/response"
)

// Sunday schedule

func (s *Service) ListMassTimes(ctx context.Context) ([]api.MassTime, error) {
	const op = "service.ListMassTimes"

	times, err := fetch(ctx, s, nsDictionaries, "mass_times", s.store.ListMassTimes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]api.MassTime, 0, len(times))
	for _, t := range times {
		result = append(result, api.MassTime{
			ID:           t.ID,
			StartTime:    t.StartTime,
			Description:  t.Description,
			DisplayOrder: t.DisplayOrder,
		})
	}
	return result, nil
}

// CreateMassTime adds a Sunday Mass hour. Start times are unique.
func (s *Service) CreateMassTime(ctx context.Context, req *api.MassTimeCreateRequest) (*api.MassTime, error) {
	const op = "service.CreateMassTime"

	start, err := time.Parse("15:04", req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: start_time %q", op, response.ErrBadRequest, req.StartTime)
	}

	t := models.MassTime{
		StartTime:    fmt.Sprintf("%d:%02d", start.Hour(), start.Minute()),
		Description:  req.Description,
		DisplayOrder: req.DisplayOrder,
	}

	id, err := s.store.CreateMassTime(ctx, &t)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, nsDictionaries)
	s.log.Info("mass time created", slog.Int64("id", id), slog.String("start_time", t.StartTime))

	return &api.MassTime{
		ID:           id,
		StartTime:    t.StartTime,
		Description:  t.Description,
		DisplayOrder: t.DisplayOrder,
	}, nil
}

func (s *Service) scheduleEntries(ctx context.Context, r calendar.Range) ([]models.ScheduleEntry, error) {
	return fetch(ctx, s, nsSchedule, r.String(), func(ctx context.Context) ([]models.ScheduleEntry, error) {
		return s.store.ListScheduleEntries(ctx, r)
	})
}

func (s *Service) ListScheduleEntries(ctx context.Context, r calendar.Range) ([]api.ScheduleEntry, error) {
	const op = "service.ListScheduleEntries"

	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}

	entries, err := s.scheduleEntries(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]api.ScheduleEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, api.ScheduleEntry{ID: e.ID, Date: e.Date, MassTimeID: e.MassTimeID, GroupID: e.GroupID})
	}
	return result, nil
}

// SaveScheduleEntry assigns a guild to a Sunday Mass, replacing any previous
// assignment for the same date and mass time. A nil group clears it.
func (s *Service) SaveScheduleEntry(ctx context.Context, req *api.ScheduleEntryRequest) (*api.ScheduleEntry, error) {
	const op = "service.SaveScheduleEntry"

	date, err := calendar.ParseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	if date.Weekday() != calendar.Sunday {
		return nil, fmt.Errorf("%s: %w: %s is not a Sunday", op, response.ErrBadRequest, date)
	}

	e := &models.ScheduleEntry{Date: date, MassTimeID: req.MassTimeID, GroupID: req.GroupID}
	if err := s.store.UpsertScheduleEntry(ctx, e); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, nsSchedule)

	return &api.ScheduleEntry{ID: e.ID, Date: e.Date, MassTimeID: e.MassTimeID, GroupID: e.GroupID}, nil
}

// Weekday templates

func toAPITemplate(t roster.Template) api.Template {
	return api.Template{
		ID:           t.ID,
		MinistrantID: t.MinistrantID,
		Weekday:      int(t.Weekday),
		WeekdayName:  t.Weekday.String(),
		Slot:         string(t.Slot),
		ValidFrom:    t.ValidFrom,
		ValidTo:      t.ValidTo,
	}
}

func (s *Service) templates(ctx context.Context) ([]roster.Template, error) {
	return fetch(ctx, s, nsTemplates, "all", s.store.ListTemplates)
}

func (s *Service) activeTemplates(ctx context.Context, m *calendar.Month) ([]roster.Template, error) {
	all, err := s.templates(ctx)
	if err != nil {
		return nil, err
	}
	return roster.Active(all, m), nil
}

// ListTemplates returns the templates active in month m, or all of them when
// m is nil.
func (s *Service) ListTemplates(ctx context.Context, m *calendar.Month) ([]api.Template, error) {
	const op = "service.ListTemplates"

	if m != nil {
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", op, translate(err))
		}
	}

	list, err := s.activeTemplates(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]api.Template, 0, len(list))
	for _, t := range list {
		result = append(result, toAPITemplate(t))
	}
	return result, nil
}

// AddTemplate assigns the selected ministrants to a weekday and slot from the
// first day of the requested month. Either every assignment is created or,
// on a conflict or a store failure, none is.
func (s *Service) AddTemplate(ctx context.Context, req *api.TemplateCreateRequest) ([]api.Template, error) {
	const op = "service.AddTemplate"

	month, err := calendar.ParseMonth(req.Month)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}

	wd := calendar.Weekday(req.Weekday)
	if err := wd.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}
	if wd == calendar.Sunday {
		return nil, fmt.Errorf("%s: %w: Sunday is not part of the weekday schedule", op, response.ErrBadRequest)
	}

	slot, err := roster.ParseSlot(req.Slot)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}

	ids := slices.Clone(req.MinistrantIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	created := make([]api.Template, 0, len(ids))
	err = s.withLocks(ctx, templateLockKeys(ids, wd, slot), func() error {
		existing, err := s.store.ListTemplates(ctx)
		if err != nil {
			return err
		}

		candidates := make([]roster.Template, 0, len(ids))
		for _, id := range ids {
			t := roster.New(id, wd, slot, month)
			if err := t.Validate(); err != nil {
				return translate(err)
			}
			if c, ok := roster.Conflicting(existing, t); ok {
				return fmt.Errorf("%w: ministrant %d already serves %s %s (template %d)",
					response.ErrConflict, id, wd, slot.Label(), c.ID)
			}
			candidates = append(candidates, t)
		}

		newIDs, err := s.store.CreateTemplates(ctx, candidates)
		if err != nil {
			return err
		}
		for i, t := range candidates {
			t.ID = newIDs[i]
			created = append(created, toAPITemplate(t))
		}
		return nil
	})

	if len(created) > 0 {
		s.invalidate(ctx, nsTemplates)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("templates added",
		slog.Int("count", len(created)),
		slog.String("weekday", wd.String()),
		slog.String("slot", string(slot)),
		slog.String("month", month.String()),
	)

	return created, nil
}

func templateLockKeys(ids []int64, wd calendar.Weekday, slot roster.Slot) []string {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, fmt.Sprintf("template:%d:%d:%s", id, wd, slot))
	}
	return keys
}

// withLocks acquires keys in order and releases them when fn returns.
func (s *Service) withLocks(ctx context.Context, keys []string, fn func() error) error {
	if len(keys) == 0 {
		return fn()
	}
	return s.withLock(ctx, keys[0], func() error {
		return s.withLocks(ctx, keys[1:], fn)
	})
}

// RemoveTemplate removes a template from month m onwards. A template that
// never took effect before m is deleted; otherwise its validity ends on the
// last day of the preceding month so past attendance stays in the grid.
func (s *Service) RemoveTemplate(ctx context.Context, id int64, m calendar.Month) (*api.TemplateRemoval, error) {
	const op = "service.RemoveTemplate"

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}

	t, err := s.store.GetTemplate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	plan := roster.PlanRemoval(*t, m)
	out := &api.TemplateRemoval{ID: id, Action: plan.Kind.String()}

	switch plan.Kind {
	case roster.HardDelete:
		err = s.store.DeleteTemplate(ctx, id)
	case roster.SoftEnd:
		err = s.store.EndTemplate(ctx, id, plan.ValidTo)
		out.ValidTo = &plan.ValidTo
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, nsTemplates)
	s.log.Info("template removed", slog.Int64("id", id), slog.String("action", out.Action))

	return out, nil
}
