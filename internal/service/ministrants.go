package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"lso-service/api"
	"lso-service/internal/cache"
	"lso-service/internal/calendar"
	"lso-service/internal/models"
	"lso-service/pkg/response"
)

const (
	defaultTopLimit = 5
	maxTopLimit     = 100
)

func toAPIMinistrant(m models.Ministrant) api.Ministrant {
	out := api.Ministrant{
		ID:        m.ID,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		RankID:    m.RankID,
		GroupID:   m.GroupID,
		Points:    m.Points,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
	}
	if m.Rank.ID != 0 {
		r := toAPIRank(m.Rank)
		out.Rank = &r
	}
	if m.Group != nil {
		out.Group = &api.Group{ID: m.Group.ID, Name: m.Group.Name}
	}
	return out
}

func toAPIRank(r models.Rank) api.Rank {
	return api.Rank{ID: r.ID, Name: r.Name, ShortName: r.ShortName, Color: r.Color}
}

func (s *Service) ministrants(ctx context.Context) ([]models.Ministrant, error) {
	return fetch(ctx, s, nsMinistrants, "all", s.store.ListMinistrants)
}

// ListMinistrants returns ministrants ordered by points, best first.
func (s *Service) ListMinistrants(ctx context.Context, activeOnly bool) ([]api.Ministrant, error) {
	const op = "service.ListMinistrants"

	list, err := s.ministrants(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]api.Ministrant, 0, len(list))
	for _, m := range list {
		if activeOnly && !m.IsActive {
			continue
		}
		result = append(result, toAPIMinistrant(m))
	}

	return result, nil
}

func (s *Service) GetMinistrant(ctx context.Context, id int64) (*api.Ministrant, error) {
	const op = "service.GetMinistrant"

	m, err := s.store.GetMinistrant(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := toAPIMinistrant(*m)
	return &out, nil
}

func (s *Service) CreateMinistrant(ctx context.Context, req *api.MinistrantCreateRequest) (*api.Ministrant, error) {
	const op = "service.CreateMinistrant"

	first := strings.TrimSpace(req.FirstName)
	last := strings.TrimSpace(req.LastName)
	if first == "" || last == "" {
		return nil, fmt.Errorf("%s: %w: first and last name are required", op, response.ErrBadRequest)
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	m := &models.Ministrant{
		FirstName: first,
		LastName:  last,
		RankID:    req.RankID,
		GroupID:   req.GroupID,
		IsActive:  active,
	}

	id, err := s.store.CreateMinistrant(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, nsMinistrants)
	s.log.Info("ministrant created", slog.Int64("id", id))

	return s.GetMinistrant(ctx, id)
}

func (s *Service) SetMinistrantActive(ctx context.Context, id int64, active bool) (*api.Ministrant, error) {
	const op = "service.SetMinistrantActive"

	if err := s.store.SetMinistrantActive(ctx, id, active); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, nsMinistrants)

	return s.GetMinistrant(ctx, id)
}

func (s *Service) ListRanks(ctx context.Context) ([]api.Rank, error) {
	const op = "service.ListRanks"

	ranks, err := fetch(ctx, s, nsDictionaries, "ranks", s.store.ListRanks)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]api.Rank, 0, len(ranks))
	for _, r := range ranks {
		result = append(result, toAPIRank(r))
	}
	return result, nil
}

func (s *Service) ListGroups(ctx context.Context) ([]api.Group, error) {
	const op = "service.ListGroups"

	groups, err := fetch(ctx, s, nsDictionaries, "groups", s.store.ListGroups)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]api.Group, 0, len(groups))
	for _, g := range groups {
		result = append(result, api.Group{ID: g.ID, Name: g.Name})
	}
	return result, nil
}

// CreateGroup adds a guild. Names are unique.
func (s *Service) CreateGroup(ctx context.Context, req *api.GroupCreateRequest) (*api.Group, error) {
	const op = "service.CreateGroup"

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%s: %w: name is empty", op, response.ErrBadRequest)
	}

	id, err := s.store.CreateGroup(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, nsDictionaries)
	s.log.Info("group created", slog.Int64("id", id), slog.String("name", name))

	return &api.Group{ID: id, Name: name}, nil
}

func (s *Service) logCounts(ctx context.Context) (map[int64]models.LogCount, error) {
	counts, err := fetch(ctx, s, nsLogs, "counts", s.store.ListLogCounts)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]models.LogCount, len(counts))
	for _, c := range counts {
		byID[c.MinistrantID] = c
	}
	return byID, nil
}

// TopMinistrants ranks active ministrants by points. Ties are broken by name.
func (s *Service) TopMinistrants(ctx context.Context, limit int) ([]api.RankedMinistrant, error) {
	const op = "service.TopMinistrants"

	if limit <= 0 {
		limit = defaultTopLimit
	}
	limit = min(limit, maxTopLimit)

	list, err := s.ministrants(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	counts, err := s.logCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	active := make([]models.Ministrant, 0, len(list))
	for _, m := range list {
		if m.IsActive {
			active = append(active, m)
		}
	}

	slices.SortStableFunc(active, func(a, b models.Ministrant) int {
		if c := cmp.Compare(b.Points, a.Points); c != 0 {
			return c
		}
		return cmp.Compare(a.FullName(), b.FullName())
	})

	result := make([]api.RankedMinistrant, 0, min(limit, len(active)))
	for i, m := range active {
		if i == limit {
			break
		}
		result = append(result, api.RankedMinistrant{
			Position: i + 1,
			ID:       m.ID,
			Name:     m.FirstName + " " + m.LastName,
			Points:   m.Points,
			Services: counts[m.ID].Count,
		})
	}

	return result, nil
}

// RecalculatePoints resets every ministrant's points to the sum of their
// supplementary service scores and returns the number of changed rows.
func (s *Service) RecalculatePoints(ctx context.Context) (int, error) {
	const op = "service.RecalculatePoints"

	changed := 0
	err := s.withLock(ctx, "points:recalculate", func() error {
		list, err := s.store.ListMinistrants(ctx)
		if err != nil {
			return err
		}

		counts, err := s.store.ListLogCounts(ctx)
		if err != nil {
			return err
		}

		scores := make(map[int64]int, len(counts))
		for _, c := range counts {
			scores[c.MinistrantID] = c.Score
		}

		points := make(map[int64]int)
		for _, m := range list {
			if m.Points != scores[m.ID] {
				points[m.ID] = scores[m.ID]
			}
		}
		if len(points) == 0 {
			return nil
		}

		if err := s.store.SetPoints(ctx, points); err != nil {
			return err
		}
		changed = len(points)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if changed > 0 {
		s.invalidate(ctx, nsMinistrants)
	}
	s.log.Info("points recalculated", slog.Int("changed", changed))

	return changed, nil
}

func toAPILog(l models.AttendanceLog) api.AttendanceLog {
	return api.AttendanceLog{
		ID:           l.ID,
		MinistrantID: l.MinistrantID,
		EventType:    string(l.EventType),
		EventLabel:   l.EventType.Label(),
		Score:        l.Score,
		EventDate:    l.EventDate,
		CreatedAt:    l.CreatedAt,
	}
}

// AddAttendanceLog records a supplementary service and credits its score to
// the ministrant. A missing score defaults to the configured value for the
// event type.
func (s *Service) AddAttendanceLog(ctx context.Context, req *api.AttendanceLogRequest) (*api.AttendanceLog, error) {
	const op = "service.AddAttendanceLog"

	eventType := models.EventType(req.EventType)
	if !eventType.Valid() {
		return nil, fmt.Errorf("%s: %w: unknown event type %q", op, response.ErrBadRequest, req.EventType)
	}

	date, err := calendar.ParseDate(req.EventDate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translate(err))
	}

	score := s.scoring[eventType]
	if req.Score != nil {
		score = *req.Score
	}

	l := &models.AttendanceLog{
		MinistrantID: req.MinistrantID,
		EventType:    eventType,
		Score:        score,
		EventDate:    date,
	}

	if err := s.store.AddAttendanceLog(ctx, l); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, nsLogs, nsMinistrants)

	out := toAPILog(*l)
	return &out, nil
}

// ListAttendanceLogs filters by ministrant and date range; nil means any.
func (s *Service) ListAttendanceLogs(ctx context.Context, ministrantID *int64, r *calendar.Range) ([]api.AttendanceLog, error) {
	const op = "service.ListAttendanceLogs"

	key := "all"
	if ministrantID != nil {
		key = strconv.FormatInt(*ministrantID, 10)
	}
	rng := ""
	if r != nil {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", op, translate(err))
		}
		rng = r.String()
	}

	logs, err := fetch(ctx, s, nsLogs, cache.Key(key, rng), func(ctx context.Context) ([]models.AttendanceLog, error) {
		return s.store.ListAttendanceLogs(ctx, ministrantID, r)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]api.AttendanceLog, 0, len(logs))
	for _, l := range logs {
		result = append(result, toAPILog(l))
	}
	return result, nil
}
