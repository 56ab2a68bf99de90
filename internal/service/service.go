package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"lso-service/internal/attendance"
	"lso-service/internal/cache"
	"lso-service/internal/calendar"
	"lso-service/internal/lock"
	"lso-service/internal/models"
	"lso-service/internal/roster"
	"lso-service/pkg/response"
	"lso-service/pkg/sl"
)

// Cache namespaces. Every mutation invalidates the namespaces it touches.
const (
	nsMinistrants  = "ministrants"
	nsDictionaries = "dictionaries"
	nsLogs         = "logs"
	nsSchedule     = "schedule"
	nsTemplates    = "templates"
	nsWeekday      = "weekday-attendance"
	nsSunday       = "sunday-attendance"
)

type Service struct {
	store   Store
	locker  lock.Locker
	cache   cache.Cache
	log     *slog.Logger
	scoring map[models.EventType]int
	now     func() time.Time
	lockTTL time.Duration
	parish  string
}

type Option func(*Service)

func WithCache(c cache.Cache) Option {
	return func(s *Service) { s.cache = c }
}

func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithScoring overrides the default score per supplementary service type.
func WithScoring(points map[models.EventType]int) Option {
	return func(s *Service) {
		for k, v := range points {
			s.scoring[k] = v
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLockTTL(ttl time.Duration) Option {
	return func(s *Service) { s.lockTTL = ttl }
}

// WithParish sets the parish name printed above exported schedules.
func WithParish(name string) Option {
	return func(s *Service) { s.parish = name }
}

func NewService(store Store, locker lock.Locker, opts ...Option) *Service {
	s := &Service{
		store:  store,
		locker: locker,
		cache:  cache.Nop{},
		log:    slog.New(slog.DiscardHandler),
		scoring: map[models.EventType]int{
			models.EventMorning:  10,
			models.EventEvening:  5,
			models.EventSpecial:  20,
			models.EventDevotion: 5,
		},
		now:     time.Now,
		lockTTL: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type Store interface {
	// Ministrants
	ListMinistrants(ctx context.Context) ([]models.Ministrant, error)
	GetMinistrant(ctx context.Context, id int64) (*models.Ministrant, error)
	CreateMinistrant(ctx context.Context, m *models.Ministrant) (int64, error)
	SetMinistrantActive(ctx context.Context, id int64, active bool) error
	SetPoints(ctx context.Context, points map[int64]int) error
	ListRanks(ctx context.Context) ([]models.Rank, error)
	ListGroups(ctx context.Context) ([]models.Group, error)
	CreateGroup(ctx context.Context, name string) (int64, error)

	// Supplementary services
	AddAttendanceLog(ctx context.Context, l *models.AttendanceLog) error
	ListAttendanceLogs(ctx context.Context, ministrantID *int64, r *calendar.Range) ([]models.AttendanceLog, error)
	ListLogCounts(ctx context.Context) ([]models.LogCount, error)

	// Sunday schedule
	ListMassTimes(ctx context.Context) ([]models.MassTime, error)
	CreateMassTime(ctx context.Context, t *models.MassTime) (int64, error)
	ListScheduleEntries(ctx context.Context, r calendar.Range) ([]models.ScheduleEntry, error)
	UpsertScheduleEntry(ctx context.Context, e *models.ScheduleEntry) error

	// Weekday templates
	ListTemplates(ctx context.Context) ([]roster.Template, error)
	GetTemplate(ctx context.Context, id int64) (*roster.Template, error)
	// CreateTemplates stores every template or, on error, none of them.
	CreateTemplates(ctx context.Context, ts []roster.Template) ([]int64, error)
	DeleteTemplate(ctx context.Context, id int64) error
	EndTemplate(ctx context.Context, id int64, validTo calendar.Date) error

	// Attendance
	ListWeekdayAttendance(ctx context.Context, r calendar.Range) ([]attendance.Record, error)
	GetWeekdayMark(ctx context.Context, key attendance.Key) (attendance.Mark, error)
	UpsertWeekdayAttendance(ctx context.Context, rec attendance.Record) error
	ListSundayAttendance(ctx context.Context, r calendar.Range) ([]attendance.Record, error)
	GetSundayMark(ctx context.Context, ministrantID int64, date calendar.Date) (attendance.Mark, error)
	UpsertSundayAttendance(ctx context.Context, rec attendance.Record) error
}

// fetch serves a read from the query cache, falling back to load. The
// namespace generation is read before load so that an invalidation racing
// with the load orphans the write-back. Cache failures are logged and never
// fail the request.
func fetch[T any](ctx context.Context, s *Service, ns, key string, load func(context.Context) (T, error)) (T, error) {
	ver, err := s.cache.Version(ctx, ns)
	if err != nil {
		s.log.Warn("cache version read failed", slog.String("ns", ns), sl.Err(err))
		return load(ctx)
	}

	var v T
	err = s.cache.Get(ctx, ns, key, &v)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.log.Warn("cache read failed", slog.String("ns", ns), slog.String("key", key), sl.Err(err))
	}

	v, err = load(ctx)
	if err != nil {
		return v, err
	}

	if err := s.cache.Set(ctx, ns, key, ver, v); err != nil {
		s.log.Warn("cache write failed", slog.String("ns", ns), slog.String("key", key), sl.Err(err))
	}
	return v, nil
}

func (s *Service) invalidate(ctx context.Context, namespaces ...string) {
	if err := s.cache.Invalidate(ctx, namespaces...); err != nil {
		s.log.Warn("cache invalidation failed", slog.Any("ns", namespaces), sl.Err(err))
	}
}

// withLock runs fn while holding the named lock. A lock held elsewhere
// yields response.ErrLocked.
func (s *Service) withLock(ctx context.Context, key string, fn func() error) error {
	locked, err := s.locker.Lock(ctx, key, s.lockTTL)
	if err != nil {
		return fmt.Errorf("lock error: %w", err)
	}
	if !locked {
		return fmt.Errorf("%w: %s", response.ErrLocked, key)
	}
	defer func() {
		if err := s.locker.Unlock(context.WithoutCancel(ctx), key); err != nil {
			s.log.Warn("unlock failed", slog.String("key", key), sl.Err(err))
		}
	}()

	return fn()
}

// translate maps validation errors of the calendar core onto the response
// sentinels while keeping the underlying error in the chain.
func translate(err error) error {
	switch {
	case errors.Is(err, calendar.ErrInvalidRange):
		return fmt.Errorf("%w: %w", response.ErrInvalidRange, err)
	case errors.Is(err, calendar.ErrInvalidWeekday),
		errors.Is(err, calendar.ErrInvalidMonth),
		errors.Is(err, calendar.ErrInvalidDate),
		errors.Is(err, roster.ErrInvalidSlot),
		errors.Is(err, roster.ErrInvalidTemplate),
		errors.Is(err, attendance.ErrInvalidMark):
		return fmt.Errorf("%w: %w", response.ErrBadRequest, err)
	}
	return err
}

func (s *Service) today() calendar.Date {
	return calendar.DateOf(s.now())
}
