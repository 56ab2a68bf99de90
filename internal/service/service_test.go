package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"lso-service/api"
	"lso-service/internal/attendance"
	"lso-service/internal/cache"
	"lso-service/internal/calendar"
	"lso-service/internal/lock"
	"lso-service/internal/models"
	"lso-service/internal/roster"
	"lso-service/pkg/response"
)

// memStore is an in-memory Store for service tests.
type memStore struct {
	mu sync.Mutex

	ministrants []models.Ministrant
	groups      []models.Group
	massTimes   []models.MassTime
	logs        []models.AttendanceLog
	entries     []models.ScheduleEntry
	templates   map[int64]roster.Template
	weekday     map[attendance.Key]attendance.Mark
	sunday      map[attendance.Key]attendance.Mark
	nextID      int64

	templateReads int
}

func newMemStore() *memStore {
	return &memStore{
		templates: make(map[int64]roster.Template),
		weekday:   make(map[attendance.Key]attendance.Mark),
		sunday:    make(map[attendance.Key]attendance.Mark),
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) ListMinistrants(context.Context) ([]models.Ministrant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.ministrants), nil
}

func (m *memStore) GetMinistrant(_ context.Context, id int64) (*models.Ministrant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mn := range m.ministrants {
		if mn.ID == id {
			return &mn, nil
		}
	}
	return nil, fmt.Errorf("ministrant %d: %w", id, response.ErrNotFound)
}

func (m *memStore) CreateMinistrant(_ context.Context, mn *models.Ministrant) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mn.ID = m.id()
	m.ministrants = append(m.ministrants, *mn)
	return mn.ID, nil
}

func (m *memStore) SetMinistrantActive(_ context.Context, id int64, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.ministrants {
		if m.ministrants[i].ID == id {
			m.ministrants[i].IsActive = active
			return nil
		}
	}
	return response.ErrNotFound
}

func (m *memStore) SetPoints(_ context.Context, points map[int64]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.ministrants {
		if p, ok := points[m.ministrants[i].ID]; ok {
			m.ministrants[i].Points = p
		}
	}
	return nil
}

func (m *memStore) ListRanks(context.Context) ([]models.Rank, error) {
	return []models.Rank{{ID: 1, Name: "Kandydat", ShortName: "KAN"}}, nil
}

func (m *memStore) ListGroups(context.Context) ([]models.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.groups), nil
}

func (m *memStore) CreateGroup(_ context.Context, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.groups {
		if g.Name == name {
			return 0, fmt.Errorf("group %q: %w", name, response.ErrConflict)
		}
	}
	id := m.id()
	m.groups = append(m.groups, models.Group{ID: id, Name: name})
	return id, nil
}

func (m *memStore) AddAttendanceLog(_ context.Context, l *models.AttendanceLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.ministrants {
		if m.ministrants[i].ID == l.MinistrantID {
			l.ID = m.id()
			l.CreatedAt = time.Now()
			m.logs = append(m.logs, *l)
			m.ministrants[i].Points += l.Score
			return nil
		}
	}
	return response.ErrNotFound
}

func (m *memStore) ListAttendanceLogs(_ context.Context, ministrantID *int64, r *calendar.Range) ([]models.AttendanceLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.AttendanceLog
	for _, l := range m.logs {
		if ministrantID != nil && l.MinistrantID != *ministrantID {
			continue
		}
		if r != nil && !r.Contains(l.EventDate) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (m *memStore) ListLogCounts(context.Context) ([]models.LogCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byID := make(map[int64]*models.LogCount)
	var out []models.LogCount
	for _, l := range m.logs {
		c, ok := byID[l.MinistrantID]
		if !ok {
			c = &models.LogCount{MinistrantID: l.MinistrantID}
			byID[l.MinistrantID] = c
		}
		c.Count++
		c.Score += l.Score
	}
	for _, c := range byID {
		out = append(out, *c)
	}
	return out, nil
}

func (m *memStore) ListMassTimes(context.Context) ([]models.MassTime, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.massTimes), nil
}

func (m *memStore) CreateMassTime(_ context.Context, t *models.MassTime) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mt := range m.massTimes {
		if mt.StartTime == t.StartTime {
			return 0, fmt.Errorf("mass time %s: %w", t.StartTime, response.ErrConflict)
		}
	}
	t.ID = m.id()
	m.massTimes = append(m.massTimes, *t)
	return t.ID, nil
}

func (m *memStore) ListScheduleEntries(_ context.Context, r calendar.Range) ([]models.ScheduleEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ScheduleEntry
	for _, e := range m.entries {
		if r.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStore) UpsertScheduleEntry(_ context.Context, e *models.ScheduleEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.entries {
		if m.entries[i].Date == e.Date && m.entries[i].MassTimeID == e.MassTimeID {
			e.ID = m.entries[i].ID
			m.entries[i] = *e
			return nil
		}
	}
	e.ID = m.id()
	m.entries = append(m.entries, *e)
	return nil
}

func (m *memStore) ListTemplates(context.Context) ([]roster.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templateReads++
	out := make([]roster.Template, 0, len(m.templates))
	for _, t := range m.templates {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b roster.Template) int { return int(a.ID - b.ID) })
	return out, nil
}

func (m *memStore) GetTemplate(_ context.Context, id int64) (*roster.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[id]
	if !ok {
		return nil, fmt.Errorf("template %d: %w", id, response.ErrNotFound)
	}
	return &t, nil
}

// CreateTemplates rejects the whole batch when any ministrant is unknown.
func (m *memStore) CreateTemplates(_ context.Context, ts []roster.Template) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range ts {
		if !slices.ContainsFunc(m.ministrants, func(mn models.Ministrant) bool { return mn.ID == t.MinistrantID }) {
			return nil, fmt.Errorf("ministrant %d: %w", t.MinistrantID, response.ErrNotFound)
		}
	}
	ids := make([]int64, 0, len(ts))
	for _, t := range ts {
		t.ID = m.id()
		m.templates[t.ID] = t
		ids = append(ids, t.ID)
	}
	return ids, nil
}

// putTemplate stores t without any checks.
func (m *memStore) putTemplate(t roster.Template) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = m.id()
	m.templates[t.ID] = t
	return t.ID
}

func (m *memStore) DeleteTemplate(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.templates[id]; !ok {
		return response.ErrNotFound
	}
	delete(m.templates, id)
	return nil
}

func (m *memStore) EndTemplate(_ context.Context, id int64, validTo calendar.Date) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[id]
	if !ok {
		return response.ErrNotFound
	}
	t.ValidTo = &validTo
	m.templates[id] = t
	return nil
}

func (m *memStore) ListWeekdayAttendance(_ context.Context, r calendar.Range) ([]attendance.Record, error) {
	return m.records(m.weekday, r), nil
}

func (m *memStore) GetWeekdayMark(_ context.Context, key attendance.Key) (attendance.Mark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.weekday[key], nil
}

func (m *memStore) UpsertWeekdayAttendance(_ context.Context, rec attendance.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.weekday[rec.Key] = rec.Mark
	return nil
}

func (m *memStore) ListSundayAttendance(_ context.Context, r calendar.Range) ([]attendance.Record, error) {
	return m.records(m.sunday, r), nil
}

func (m *memStore) GetSundayMark(_ context.Context, ministrantID int64, date calendar.Date) (attendance.Mark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sunday[attendance.Key{MinistrantID: ministrantID, Date: date}], nil
}

func (m *memStore) UpsertSundayAttendance(_ context.Context, rec attendance.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sunday[rec.Key] = rec.Mark
	return nil
}

func (m *memStore) records(marks map[attendance.Key]attendance.Mark, r calendar.Range) []attendance.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []attendance.Record
	for k, v := range marks {
		if r.Contains(k.Date) {
			out = append(out, attendance.Record{Key: k, Mark: v})
		}
	}
	return out
}

var march2025 = calendar.Month{Year: 2025, Month: time.March}

func newTestService(store *memStore, opts ...Option) (*Service, *lock.Local) {
	locker := lock.NewLocal()
	opts = append([]Option{WithClock(func() time.Time {
		return time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	})}, opts...)
	return NewService(store, locker, opts...), locker
}

func seedMinistrants(store *memStore) {
	g := int64(100)
	store.groups = []models.Group{{ID: g, Name: "Gildia A"}}
	store.ministrants = []models.Ministrant{
		{ID: 1, FirstName: "Jan", LastName: "Kowalski", IsActive: true, Points: 30, GroupID: &g},
		{ID: 2, FirstName: "Piotr", LastName: "Nowak", IsActive: true, Points: 30},
		{ID: 3, FirstName: "Adam", LastName: "Zieliński", IsActive: false, Points: 90},
	}
	store.nextID = 1000
}

func TestToggleWeekdayAttendance_Cycle(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestService(store)
	ctx := context.Background()

	req := &api.WeekdayToggleRequest{MinistrantID: 1, Date: "2025-03-05", Slot: "RANO"}
	want := []attendance.Mark{attendance.Present, attendance.Absent, attendance.Unmarked, attendance.Present}

	for i, w := range want {
		got, err := svc.ToggleWeekdayAttendance(ctx, req)
		if err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
		if got.IsPresent != w {
			t.Errorf("toggle %d = %v, want %v", i, got.IsPresent, w)
		}
		if got.Symbol != w.Symbol() {
			t.Errorf("toggle %d symbol = %q", i, got.Symbol)
		}
	}
}

func TestToggleAttendance_DayValidation(t *testing.T) {
	svc, _ := newTestService(newMemStore())
	ctx := context.Background()

	_, err := svc.ToggleWeekdayAttendance(ctx, &api.WeekdayToggleRequest{MinistrantID: 1, Date: "2025-03-02", Slot: "RANO"})
	if !errors.Is(err, response.ErrBadRequest) {
		t.Errorf("weekday toggle on Sunday error = %v", err)
	}

	_, err = svc.ToggleWeekdayAttendance(ctx, &api.WeekdayToggleRequest{MinistrantID: 1, Date: "2025-03-05", Slot: "POLUDNIE"})
	if !errors.Is(err, response.ErrBadRequest) || !errors.Is(err, roster.ErrInvalidSlot) {
		t.Errorf("invalid slot error = %v", err)
	}

	_, err = svc.ToggleSundayAttendance(ctx, &api.SundayToggleRequest{MinistrantID: 1, Date: "2025-03-05"})
	if !errors.Is(err, response.ErrBadRequest) {
		t.Errorf("sunday toggle on Wednesday error = %v", err)
	}

	got, err := svc.ToggleSundayAttendance(ctx, &api.SundayToggleRequest{MinistrantID: 1, Date: "2025-03-02"})
	if err != nil || got.IsPresent != attendance.Present {
		t.Errorf("sunday toggle = %+v, %v", got, err)
	}
}

func TestAddTemplate(t *testing.T) {
	store := newMemStore()
	seedMinistrants(store)
	svc, _ := newTestService(store)
	ctx := context.Background()

	created, err := svc.AddTemplate(ctx, &api.TemplateCreateRequest{
		MinistrantIDs: []int64{2, 1, 2},
		Weekday:       3,
		Slot:          "RANO",
		Month:         "2025-03",
	})
	if err != nil {
		t.Fatalf("AddTemplate() error = %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("created %d templates, want 2 after dedupe", len(created))
	}
	for _, tpl := range created {
		if tpl.ValidFrom != march2025.Start() || tpl.ValidTo != nil || tpl.WeekdayName != "Środa" {
			t.Errorf("template = %+v", tpl)
		}
	}

	// Ministrant 1 already serves Wednesday mornings, so nobody is added.
	_, err = svc.AddTemplate(ctx, &api.TemplateCreateRequest{
		MinistrantIDs: []int64{3, 1},
		Weekday:       3,
		Slot:          "RANO",
		Month:         "2025-04",
	})
	if !errors.Is(err, response.ErrConflict) {
		t.Fatalf("conflicting AddTemplate() error = %v", err)
	}
	if len(store.templates) != 2 {
		t.Errorf("store has %d templates after conflict, want 2", len(store.templates))
	}

	_, err = svc.AddTemplate(ctx, &api.TemplateCreateRequest{MinistrantIDs: []int64{1}, Weekday: 7, Slot: "RANO", Month: "2025-03"})
	if !errors.Is(err, response.ErrBadRequest) {
		t.Errorf("Sunday template error = %v", err)
	}
}

func TestAddTemplate_StoreFailureCreatesNothing(t *testing.T) {
	store := newMemStore()
	seedMinistrants(store)
	svc, _ := newTestService(store, WithCache(cache.NewMemory(64, time.Minute)))
	ctx := context.Background()

	_, err := svc.AddTemplate(ctx, &api.TemplateCreateRequest{
		MinistrantIDs: []int64{1, 999},
		Weekday:       3,
		Slot:          "RANO",
		Month:         "2025-03",
	})
	if !errors.Is(err, response.ErrNotFound) {
		t.Fatalf("AddTemplate() error = %v, want ErrNotFound", err)
	}
	if len(store.templates) != 0 {
		t.Errorf("store has %d templates, want 0", len(store.templates))
	}

	list, err := svc.ListTemplates(ctx, nil)
	if err != nil || len(list) != 0 {
		t.Errorf("ListTemplates() = %v, %v", list, err)
	}
}

func TestAddTemplate_Locked(t *testing.T) {
	store := newMemStore()
	seedMinistrants(store)
	svc, locker := newTestService(store)
	ctx := context.Background()

	key := templateLockKeys([]int64{1}, calendar.Wednesday, roster.Morning)[0]
	if ok, _ := locker.Lock(ctx, key, time.Minute); !ok {
		t.Fatal("could not take lock")
	}

	_, err := svc.AddTemplate(ctx, &api.TemplateCreateRequest{MinistrantIDs: []int64{1}, Weekday: 3, Slot: "RANO", Month: "2025-03"})
	if !errors.Is(err, response.ErrLocked) {
		t.Fatalf("AddTemplate() error = %v, want ErrLocked", err)
	}
	if len(store.templates) != 0 {
		t.Error("template created while locked")
	}
}

func TestRemoveTemplate(t *testing.T) {
	jan := calendar.Month{Year: 2025, Month: time.January}
	tests := []struct {
		name      string
		from      calendar.Month
		removal   calendar.Month
		wantKind  string
		wantTo    *calendar.Date
		wantStays bool
	}{
		{
			name:      "started earlier is soft ended",
			from:      jan,
			removal:   march2025,
			wantKind:  "soft_end",
			wantTo:    ptr(calendar.NewDate(2025, time.February, 28)),
			wantStays: true,
		},
		{
			name:     "starting this month is deleted",
			from:     march2025,
			removal:  march2025,
			wantKind: "hard_delete",
		},
		{
			name:     "starting later is deleted",
			from:     calendar.Month{Year: 2025, Month: time.May},
			removal:  march2025,
			wantKind: "hard_delete",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			svc, _ := newTestService(store)
			ctx := context.Background()

			tpl := roster.New(1, calendar.Monday, roster.Evening, tt.from)
			id := store.putTemplate(tpl)

			got, err := svc.RemoveTemplate(ctx, id, tt.removal)
			if err != nil {
				t.Fatalf("RemoveTemplate() error = %v", err)
			}
			if got.Action != tt.wantKind {
				t.Errorf("action = %q, want %q", got.Action, tt.wantKind)
			}
			if (got.ValidTo == nil) != (tt.wantTo == nil) || (got.ValidTo != nil && *got.ValidTo != *tt.wantTo) {
				t.Errorf("valid_to = %v, want %v", got.ValidTo, tt.wantTo)
			}

			stored, ok := store.templates[id]
			if ok != tt.wantStays {
				t.Fatalf("template kept = %v, want %v", ok, tt.wantStays)
			}
			if ok && (stored.ValidTo == nil || *stored.ValidTo != *tt.wantTo) {
				t.Errorf("stored valid_to = %v", stored.ValidTo)
			}
		})
	}

	svc, _ := newTestService(newMemStore())
	if _, err := svc.RemoveTemplate(context.Background(), 42, march2025); !errors.Is(err, response.ErrNotFound) {
		t.Errorf("RemoveTemplate(missing) error = %v", err)
	}
}

func ptr[T any](v T) *T { return &v }

func TestTemplates_CacheInvalidation(t *testing.T) {
	store := newMemStore()
	seedMinistrants(store)
	svc, _ := newTestService(store, WithCache(cache.NewMemory(64, time.Minute)))
	ctx := context.Background()

	for range 2 {
		list, err := svc.ListTemplates(ctx, &march2025)
		if err != nil || len(list) != 0 {
			t.Fatalf("ListTemplates() = %v, %v", list, err)
		}
	}
	if store.templateReads != 1 {
		t.Errorf("store read %d times, want 1 with cache", store.templateReads)
	}

	if _, err := svc.AddTemplate(ctx, &api.TemplateCreateRequest{MinistrantIDs: []int64{1}, Weekday: 5, Slot: "WIECZOR", Month: "2025-03"}); err != nil {
		t.Fatalf("AddTemplate() error = %v", err)
	}

	list, err := svc.ListTemplates(ctx, &march2025)
	if err != nil {
		t.Fatalf("ListTemplates() error = %v", err)
	}
	if len(list) != 1 {
		t.Errorf("got %d templates after add, want 1 (stale cache?)", len(list))
	}
}

// mutatingStore runs mutate once, after ListTemplates has read its snapshot
// and before the caller gets it.
type mutatingStore struct {
	*memStore
	mutate func()
}

func (m *mutatingStore) ListTemplates(ctx context.Context) ([]roster.Template, error) {
	list, err := m.memStore.ListTemplates(ctx)
	if fn := m.mutate; fn != nil {
		m.mutate = nil
		fn()
	}
	return list, err
}

func TestTemplates_InvalidationDuringLoad(t *testing.T) {
	mem := newMemStore()
	seedMinistrants(mem)
	id := mem.putTemplate(roster.New(1, calendar.Monday, roster.Morning, march2025))

	store := &mutatingStore{memStore: mem}
	svc := NewService(store, lock.NewLocal(), WithCache(cache.NewMemory(64, time.Minute)))
	ctx := context.Background()

	store.mutate = func() {
		if _, err := svc.RemoveTemplate(ctx, id, march2025); err != nil {
			t.Errorf("RemoveTemplate() error = %v", err)
		}
	}

	list, err := svc.ListTemplates(ctx, nil)
	if err != nil {
		t.Fatalf("ListTemplates() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("first ListTemplates() = %d templates, want the pre-removal snapshot", len(list))
	}

	list, err = svc.ListTemplates(ctx, nil)
	if err != nil {
		t.Fatalf("ListTemplates() error = %v", err)
	}
	if len(list) != 0 {
		t.Errorf("second ListTemplates() = %d templates, want 0 after removal", len(list))
	}
}

func TestCreateGroup_RefreshesCachedList(t *testing.T) {
	store := newMemStore()
	seedMinistrants(store)
	svc, _ := newTestService(store, WithCache(cache.NewMemory(64, time.Minute)))
	ctx := context.Background()

	if groups, err := svc.ListGroups(ctx); err != nil || len(groups) != 1 {
		t.Fatalf("ListGroups() = %v, %v", groups, err)
	}

	created, err := svc.CreateGroup(ctx, &api.GroupCreateRequest{Name: "  Gildia B "})
	if err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}
	if created.Name != "Gildia B" {
		t.Errorf("name = %q, want trimmed", created.Name)
	}

	groups, err := svc.ListGroups(ctx)
	if err != nil || len(groups) != 2 {
		t.Errorf("ListGroups() after create = %v, %v", groups, err)
	}

	if _, err := svc.CreateGroup(ctx, &api.GroupCreateRequest{Name: "Gildia B"}); !errors.Is(err, response.ErrConflict) {
		t.Errorf("duplicate group error = %v", err)
	}
	if _, err := svc.CreateGroup(ctx, &api.GroupCreateRequest{Name: "   "}); !errors.Is(err, response.ErrBadRequest) {
		t.Errorf("blank group error = %v", err)
	}
}

func TestCreateMassTime(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestService(store, WithCache(cache.NewMemory(64, time.Minute)))
	ctx := context.Background()

	if times, _ := svc.ListMassTimes(ctx); len(times) != 0 {
		t.Fatalf("ListMassTimes() = %v", times)
	}

	got, err := svc.CreateMassTime(ctx, &api.MassTimeCreateRequest{StartTime: "09:00", DisplayOrder: 1})
	if err != nil {
		t.Fatalf("CreateMassTime() error = %v", err)
	}
	if got.StartTime != "9:00" {
		t.Errorf("StartTime = %q, want 9:00", got.StartTime)
	}

	if times, _ := svc.ListMassTimes(ctx); len(times) != 1 {
		t.Errorf("ListMassTimes() after create = %v", times)
	}

	if _, err := svc.CreateMassTime(ctx, &api.MassTimeCreateRequest{StartTime: "9:00"}); !errors.Is(err, response.ErrConflict) {
		t.Errorf("duplicate start time error = %v", err)
	}
	if _, err := svc.CreateMassTime(ctx, &api.MassTimeCreateRequest{StartTime: "noon"}); !errors.Is(err, response.ErrBadRequest) {
		t.Errorf("invalid start time error = %v", err)
	}
}

func TestExportWeekday_ParishHeader(t *testing.T) {
	store := newMemStore()
	seedMinistrants(store)
	store.putTemplate(roster.New(1, calendar.Monday, roster.Morning, march2025))
	svc, _ := newTestService(store, WithParish("Parafia pw. św. Jana"))

	page, err := svc.ExportWeekday(context.Background(), march2025)
	if err != nil {
		t.Fatalf("ExportWeekday() error = %v", err)
	}
	if !strings.Contains(string(page), "Parafia pw. św. Jana") {
		t.Error("export has no parish header")
	}
}

func TestStats(t *testing.T) {
	store := newMemStore()
	seedMinistrants(store)
	store.massTimes = []models.MassTime{{ID: 1, StartTime: "9:00"}, {ID: 2, StartTime: "11:00"}}
	store.weekday[attendance.Key{MinistrantID: 1, Date: calendar.NewDate(2025, time.March, 5), Slot: roster.Morning}] = attendance.Present
	store.weekday[attendance.Key{MinistrantID: 2, Date: calendar.NewDate(2025, time.March, 5), Slot: roster.Morning}] = attendance.Absent
	store.sunday[attendance.Key{MinistrantID: 1, Date: calendar.NewDate(2025, time.March, 2)}] = attendance.Present
	store.sunday[attendance.Key{MinistrantID: 2, Date: calendar.NewDate(2025, time.April, 6)}] = attendance.Present
	store.logs = []models.AttendanceLog{
		{ID: 1, MinistrantID: 1, EventType: models.EventSpecial, Score: 20, EventDate: calendar.NewDate(2025, time.March, 19)},
		{ID: 2, MinistrantID: 1, EventType: models.EventSpecial, Score: 20, EventDate: calendar.NewDate(2025, time.February, 19)},
	}

	svc, _ := newTestService(store)
	got, err := svc.Stats(context.Background(), march2025)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}

	// March 2025: 26 Monday..Saturday dates with two Masses each, five
	// Sundays with two mass times each.
	if got.ScheduledServices != 62 {
		t.Errorf("ScheduledServices = %d, want 62", got.ScheduledServices)
	}
	if got.ActiveMinistrants != 2 {
		t.Errorf("ActiveMinistrants = %d, want 2", got.ActiveMinistrants)
	}
	if got.SupplementaryServices != 1 {
		t.Errorf("SupplementaryServices = %d, want 1", got.SupplementaryServices)
	}
	if got.Present != 2 || got.Absent != 1 {
		t.Errorf("present/absent = %d/%d, want 2/1", got.Present, got.Absent)
	}
}

func TestTopMinistrants(t *testing.T) {
	store := newMemStore()
	seedMinistrants(store)
	svc, _ := newTestService(store)

	got, err := svc.TopMinistrants(context.Background(), 0)
	if err != nil {
		t.Fatalf("TopMinistrants() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d, want only the 2 active ministrants", len(got))
	}
	// Equal points are ordered by "Last First".
	if got[0].ID != 1 || got[0].Position != 1 || got[1].ID != 2 || got[1].Position != 2 {
		t.Errorf("ranking = %+v", got)
	}
}

func TestAddAttendanceLog_ScoringAndRecalculate(t *testing.T) {
	store := newMemStore()
	seedMinistrants(store)
	svc, _ := newTestService(store, WithScoring(map[models.EventType]int{models.EventDevotion: 7}))
	ctx := context.Background()

	got, err := svc.AddAttendanceLog(ctx, &api.AttendanceLogRequest{MinistrantID: 2, EventType: "N", EventDate: "2025-03-07"})
	if err != nil {
		t.Fatalf("AddAttendanceLog() error = %v", err)
	}
	if got.Score != 7 || got.EventLabel != "Nabożeństwo" {
		t.Errorf("log = %+v", got)
	}

	if _, err := svc.AddAttendanceLog(ctx, &api.AttendanceLogRequest{MinistrantID: 2, EventType: "X", EventDate: "2025-03-07"}); !errors.Is(err, response.ErrBadRequest) {
		t.Errorf("unknown event type error = %v", err)
	}

	// Only ministrant 2 has logs; everyone else resets to zero.
	changed, err := svc.RecalculatePoints(ctx)
	if err != nil {
		t.Fatalf("RecalculatePoints() error = %v", err)
	}
	if changed != 3 {
		t.Errorf("changed = %d, want 3", changed)
	}
	m, _ := store.GetMinistrant(ctx, 2)
	if m.Points != 7 {
		t.Errorf("points = %d, want 7", m.Points)
	}
}

func TestUpcomingServices(t *testing.T) {
	store := newMemStore()
	seedMinistrants(store)
	store.massTimes = []models.MassTime{{ID: 1, StartTime: "11:00"}}
	g := int64(100)
	store.entries = []models.ScheduleEntry{{ID: 1, Date: calendar.NewDate(2025, time.March, 9), MassTimeID: 1, GroupID: &g}}
	tpl := roster.New(1, calendar.Monday, roster.Morning, march2025)
	store.putTemplate(tpl)

	svc, _ := newTestService(store)
	got, err := svc.UpcomingServices(context.Background(), calendar.Date{}, 7)
	if err != nil {
		t.Fatalf("UpcomingServices() error = %v", err)
	}

	// 2025-03-03 (Monday) to 2025-03-09 (Sunday): six weekdays with two
	// slots plus one Sunday Mass.
	if len(got) != 13 {
		t.Fatalf("got %d services, want 13", len(got))
	}
	if got[0].Date != calendar.NewDate(2025, time.March, 3) || got[0].Ministrants != 1 {
		t.Errorf("first = %+v", got[0])
	}
	last := got[len(got)-1]
	if last.Type != "sunday" || last.Group == nil || *last.Group != "Gildia A" || last.Ministrants != 1 {
		t.Errorf("sunday = %+v", last)
	}
}
