package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"lso-service/internal/attendance"
	"lso-service/internal/calendar"
	"lso-service/internal/models"
	"lso-service/internal/roster"
	"lso-service/pkg/response"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return s
}

func createMinistrant(t *testing.T, s *Storage, first, last string) int64 {
	t.Helper()

	id, err := s.CreateMinistrant(context.Background(), &models.Ministrant{
		FirstName: first,
		LastName:  last,
		RankID:    1,
		IsActive:  true,
	})
	if err != nil {
		t.Fatalf("CreateMinistrant() error = %v", err)
	}
	return id
}

func TestMigrate_SeedsRanksOnce(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}

	ranks, err := s.ListRanks(ctx)
	if err != nil {
		t.Fatalf("ListRanks() error = %v", err)
	}
	if len(ranks) != 5 {
		t.Fatalf("got %d ranks, want 5", len(ranks))
	}
	if ranks[0].Name != "Kandydat" {
		t.Errorf("first rank = %q", ranks[0].Name)
	}
}

func TestMinistrants(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	gid, err := s.CreateGroup(ctx, "Gildia św. Tarsycjusza")
	if err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}

	id, err := s.CreateMinistrant(ctx, &models.Ministrant{
		FirstName: "Jan",
		LastName:  "Kowalski",
		RankID:    4,
		GroupID:   &gid,
		IsActive:  true,
	})
	if err != nil {
		t.Fatalf("CreateMinistrant() error = %v", err)
	}

	m, err := s.GetMinistrant(ctx, id)
	if err != nil {
		t.Fatalf("GetMinistrant() error = %v", err)
	}
	if m.Rank.Name != "Lektor" {
		t.Errorf("rank = %q, want Lektor", m.Rank.Name)
	}
	if m.Group == nil || m.Group.Name != "Gildia św. Tarsycjusza" {
		t.Errorf("group = %+v", m.Group)
	}
	if !m.IsActive {
		t.Error("ministrant should be active")
	}
	if m.CreatedAt.IsZero() {
		t.Error("created_at not scanned")
	}

	if err := s.SetMinistrantActive(ctx, id, false); err != nil {
		t.Fatalf("SetMinistrantActive() error = %v", err)
	}
	m, _ = s.GetMinistrant(ctx, id)
	if m.IsActive {
		t.Error("ministrant still active")
	}

	if _, err := s.GetMinistrant(ctx, 999); !errors.Is(err, response.ErrNotFound) {
		t.Errorf("GetMinistrant(999) error = %v, want ErrNotFound", err)
	}
	if err := s.SetMinistrantActive(ctx, 999, true); !errors.Is(err, response.ErrNotFound) {
		t.Errorf("SetMinistrantActive(999) error = %v, want ErrNotFound", err)
	}

	_, err = s.CreateMinistrant(ctx, &models.Ministrant{FirstName: "X", LastName: "Y", RankID: 42})
	if !errors.Is(err, response.ErrNotFound) {
		t.Errorf("unknown rank error = %v, want ErrNotFound", err)
	}
}

func TestTemplates_HardDeleteAndSoftEnd(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	mid := createMinistrant(t, s, "Jan", "Kowalski")

	tpl := roster.New(mid, calendar.Wednesday, roster.Morning, calendar.Month{Year: 2025, Month: time.January})
	ids, err := s.CreateTemplates(ctx, []roster.Template{tpl})
	if err != nil {
		t.Fatalf("CreateTemplates() error = %v", err)
	}
	id := ids[0]

	got, err := s.GetTemplate(ctx, id)
	if err != nil {
		t.Fatalf("GetTemplate() error = %v", err)
	}
	if got.ValidFrom != calendar.NewDate(2025, time.January, 1) || got.ValidTo != nil {
		t.Errorf("window = %v..%v", got.ValidFrom, got.ValidTo)
	}
	if got.Slot != roster.Morning || got.Weekday != calendar.Wednesday {
		t.Errorf("template = %+v", got)
	}

	end := calendar.NewDate(2025, time.February, 28)
	if err := s.EndTemplate(ctx, id, end); err != nil {
		t.Fatalf("EndTemplate() error = %v", err)
	}
	got, _ = s.GetTemplate(ctx, id)
	if got.ValidTo == nil || *got.ValidTo != end {
		t.Errorf("valid_to = %v, want %v", got.ValidTo, end)
	}

	if err := s.EndTemplate(ctx, id, calendar.NewDate(2024, time.December, 31)); !errors.Is(err, response.ErrBadRequest) {
		t.Errorf("ending before start error = %v, want ErrBadRequest", err)
	}

	if err := s.DeleteTemplate(ctx, id); err != nil {
		t.Fatalf("DeleteTemplate() error = %v", err)
	}
	if _, err := s.GetTemplate(ctx, id); !errors.Is(err, response.ErrNotFound) {
		t.Errorf("GetTemplate after delete error = %v", err)
	}
	if err := s.DeleteTemplate(ctx, id); !errors.Is(err, response.ErrNotFound) {
		t.Errorf("second DeleteTemplate error = %v", err)
	}
}

func TestCreateTemplates_AllOrNothing(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	mid := createMinistrant(t, s, "Jan", "Kowalski")
	march := calendar.Month{Year: 2025, Month: time.March}

	_, err := s.CreateTemplates(ctx, []roster.Template{
		roster.New(mid, calendar.Wednesday, roster.Morning, march),
		roster.New(999, calendar.Wednesday, roster.Morning, march),
	})
	if !errors.Is(err, response.ErrNotFound) {
		t.Fatalf("CreateTemplates() with unknown ministrant error = %v, want ErrNotFound", err)
	}

	list, err := s.ListTemplates(ctx)
	if err != nil {
		t.Fatalf("ListTemplates() error = %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("failed batch left %d templates", len(list))
	}

	other := createMinistrant(t, s, "Anna", "Nowak")
	ids, err := s.CreateTemplates(ctx, []roster.Template{
		roster.New(mid, calendar.Wednesday, roster.Morning, march),
		roster.New(other, calendar.Wednesday, roster.Morning, march),
	})
	if err != nil {
		t.Fatalf("CreateTemplates() error = %v", err)
	}
	if len(ids) != 2 || ids[0] == ids[1] {
		t.Errorf("ids = %v", ids)
	}
}

func TestWeekdayAttendance_UpsertCycle(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	mid := createMinistrant(t, s, "Jan", "Kowalski")

	key := attendance.Key{MinistrantID: mid, Date: calendar.NewDate(2025, time.March, 5), Slot: roster.Evening}

	mark, err := s.GetWeekdayMark(ctx, key)
	if err != nil || mark != attendance.Unmarked {
		t.Fatalf("GetWeekdayMark() = %v, %v; want Unmarked", mark, err)
	}

	for _, want := range []attendance.Mark{attendance.Present, attendance.Absent, attendance.Unmarked} {
		if err := s.UpsertWeekdayAttendance(ctx, attendance.Record{Key: key, Mark: want}); err != nil {
			t.Fatalf("UpsertWeekdayAttendance(%v) error = %v", want, err)
		}
		got, err := s.GetWeekdayMark(ctx, key)
		if err != nil {
			t.Fatalf("GetWeekdayMark() error = %v", err)
		}
		if got != want {
			t.Errorf("mark = %v, want %v", got, want)
		}
	}

	march := calendar.Month{Year: 2025, Month: time.March}
	records, err := s.ListWeekdayAttendance(ctx, march.Range())
	if err != nil {
		t.Fatalf("ListWeekdayAttendance() error = %v", err)
	}
	if len(records) != 1 || records[0].Key != key || records[0].Mark != attendance.Unmarked {
		t.Errorf("records = %+v", records)
	}

	april := calendar.Month{Year: 2025, Month: time.April}
	records, _ = s.ListWeekdayAttendance(ctx, april.Range())
	if len(records) != 0 {
		t.Errorf("april records = %+v", records)
	}
}

func TestSundayAttendance(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	mid := createMinistrant(t, s, "Jan", "Kowalski")
	sunday := calendar.NewDate(2025, time.March, 2)

	rec := attendance.Record{Key: attendance.Key{MinistrantID: mid, Date: sunday}, Mark: attendance.Absent}
	if err := s.UpsertSundayAttendance(ctx, rec); err != nil {
		t.Fatalf("UpsertSundayAttendance() error = %v", err)
	}

	mark, err := s.GetSundayMark(ctx, mid, sunday)
	if err != nil || mark != attendance.Absent {
		t.Errorf("GetSundayMark() = %v, %v; want Absent", mark, err)
	}

	records, err := s.ListSundayAttendance(ctx, calendar.Month{Year: 2025, Month: time.March}.Range())
	if err != nil {
		t.Fatalf("ListSundayAttendance() error = %v", err)
	}
	if len(records) != 1 || records[0].Date != sunday {
		t.Errorf("records = %+v", records)
	}
}

func TestScheduleEntries_Upsert(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	desc := "Suma"
	mtID, err := s.CreateMassTime(ctx, &models.MassTime{StartTime: "11:00", Description: &desc, DisplayOrder: 2})
	if err != nil {
		t.Fatalf("CreateMassTime() error = %v", err)
	}
	g1, _ := s.CreateGroup(ctx, "A")
	g2, _ := s.CreateGroup(ctx, "B")

	date := calendar.NewDate(2025, time.March, 9)
	e := models.ScheduleEntry{Date: date, MassTimeID: mtID, GroupID: &g1}
	if err := s.UpsertScheduleEntry(ctx, &e); err != nil {
		t.Fatalf("UpsertScheduleEntry() error = %v", err)
	}
	firstID := e.ID

	e2 := models.ScheduleEntry{Date: date, MassTimeID: mtID, GroupID: &g2}
	if err := s.UpsertScheduleEntry(ctx, &e2); err != nil {
		t.Fatalf("second UpsertScheduleEntry() error = %v", err)
	}
	if e2.ID != firstID {
		t.Errorf("upsert created a new row: %d != %d", e2.ID, firstID)
	}

	entries, err := s.ListScheduleEntries(ctx, calendar.Month{Year: 2025, Month: time.March}.Range())
	if err != nil {
		t.Fatalf("ListScheduleEntries() error = %v", err)
	}
	if len(entries) != 1 || entries[0].GroupID == nil || *entries[0].GroupID != g2 {
		t.Errorf("entries = %+v", entries)
	}

	times, _ := s.ListMassTimes(ctx)
	if len(times) != 1 || times[0].Description == nil || *times[0].Description != "Suma" {
		t.Errorf("mass times = %+v", times)
	}
}

func TestAttendanceLogs_CreditPoints(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	mid := createMinistrant(t, s, "Jan", "Kowalski")

	for _, l := range []models.AttendanceLog{
		{MinistrantID: mid, EventType: models.EventMorning, Score: 10, EventDate: calendar.NewDate(2025, time.March, 4)},
		{MinistrantID: mid, EventType: models.EventSpecial, Score: 20, EventDate: calendar.NewDate(2025, time.April, 1)},
	} {
		if err := s.AddAttendanceLog(ctx, &l); err != nil {
			t.Fatalf("AddAttendanceLog() error = %v", err)
		}
		if l.ID == 0 {
			t.Error("log id not filled")
		}
	}

	m, _ := s.GetMinistrant(ctx, mid)
	if m.Points != 30 {
		t.Errorf("points = %d, want 30", m.Points)
	}

	r := calendar.Month{Year: 2025, Month: time.March}.Range()
	logs, err := s.ListAttendanceLogs(ctx, &mid, &r)
	if err != nil {
		t.Fatalf("ListAttendanceLogs() error = %v", err)
	}
	if len(logs) != 1 || logs[0].EventType != models.EventMorning {
		t.Errorf("march logs = %+v", logs)
	}

	counts, err := s.ListLogCounts(ctx)
	if err != nil {
		t.Fatalf("ListLogCounts() error = %v", err)
	}
	if len(counts) != 1 || counts[0].Count != 2 || counts[0].Score != 30 {
		t.Errorf("counts = %+v", counts)
	}

	err = s.AddAttendanceLog(ctx, &models.AttendanceLog{MinistrantID: 999, EventType: models.EventMorning, Score: 10, EventDate: calendar.NewDate(2025, time.March, 4)})
	if !errors.Is(err, response.ErrNotFound) {
		t.Errorf("log for unknown ministrant error = %v, want ErrNotFound", err)
	}

	if err := s.SetPoints(ctx, map[int64]int{mid: 7}); err != nil {
		t.Fatalf("SetPoints() error = %v", err)
	}
	m, _ = s.GetMinistrant(ctx, mid)
	if m.Points != 7 {
		t.Errorf("points after SetPoints = %d, want 7", m.Points)
	}
}
