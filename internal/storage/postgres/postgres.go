package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"lso-service/internal/attendance"
	"lso-service/internal/calendar"
	"lso-service/internal/models"
	"lso-service/internal/roster"
	"lso-service/pkg/response"
)

//go:embed schema.sql
var schema string

type Storage struct {
	db *sql.DB
}

func New(storagePath string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("postgres", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

// Migrate creates missing tables and seeds the rank dictionary.
func (s *Storage) Migrate(ctx context.Context) error {
	const op = "storage.postgres.Migrate"

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// mapError translates constraint violations into response sentinels.
func mapError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return fmt.Errorf("%s: %w: %s", op, response.ErrConflict, pqErr.Constraint)
		case "23503":
			return fmt.Errorf("%s: %w: %s", op, response.ErrNotFound, pqErr.Detail)
		case "23514":
			return fmt.Errorf("%s: %w: %s", op, response.ErrBadRequest, pqErr.Constraint)
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}

func affected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}
	return nil
}

// #### ministrants ####

const selectMinistrant = `
	SELECT m.id, m.first_name, m.last_name, m.rank_id, m.group_id, m.points, m.is_active, m.created_at,
		r.name, r.short_name, r.color, g.name
	FROM ministrants m
	JOIN ranks r ON r.id = m.rank_id
	LEFT JOIN guilds g ON g.id = m.group_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMinistrant(row rowScanner) (models.Ministrant, error) {
	var m models.Ministrant
	var groupName sql.NullString

	err := row.Scan(
		&m.ID,
		&m.FirstName,
		&m.LastName,
		&m.RankID,
		&m.GroupID,
		&m.Points,
		&m.IsActive,
		&m.CreatedAt,
		&m.Rank.Name,
		&m.Rank.ShortName,
		&m.Rank.Color,
		&groupName,
	)
	if err != nil {
		return m, err
	}

	m.Rank.ID = m.RankID
	if m.GroupID != nil {
		m.Group = &models.Group{ID: *m.GroupID, Name: groupName.String}
	}

	return m, nil
}

func (s *Storage) ListMinistrants(ctx context.Context) ([]models.Ministrant, error) {
	const op = "storage.postgres.ListMinistrants"

	rows, err := s.db.QueryContext(ctx, selectMinistrant+` ORDER BY m.points DESC, m.last_name, m.first_name`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var list []models.Ministrant
	for rows.Next() {
		m, err := scanMinistrant(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		list = append(list, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return list, nil
}

func (s *Storage) GetMinistrant(ctx context.Context, id int64) (*models.Ministrant, error) {
	const op = "storage.postgres.GetMinistrant"

	m, err := scanMinistrant(s.db.QueryRowContext(ctx, selectMinistrant+` WHERE m.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: ministrant %d", op, response.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &m, nil
}

func (s *Storage) CreateMinistrant(ctx context.Context, m *models.Ministrant) (int64, error) {
	const op = "storage.postgres.CreateMinistrant"

	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO ministrants (first_name, last_name, rank_id, group_id, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		m.FirstName,
		m.LastName,
		m.RankID,
		m.GroupID,
		m.IsActive,
	).Scan(&id)
	if err != nil {
		return 0, mapError(op, err)
	}

	return id, nil
}

func (s *Storage) SetMinistrantActive(ctx context.Context, id int64, active bool) error {
	const op = "storage.postgres.SetMinistrantActive"

	res, err := s.db.ExecContext(ctx, `UPDATE ministrants SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return affected(op, res)
}

func (s *Storage) SetPoints(ctx context.Context, points map[int64]int) error {
	const op = "storage.postgres.SetPoints"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `UPDATE ministrants SET points = $1 WHERE id = $2`)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	for id, p := range points {
		if _, err := stmt.ExecContext(ctx, p, id); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	return nil
}

func (s *Storage) ListRanks(ctx context.Context) ([]models.Rank, error) {
	const op = "storage.postgres.ListRanks"

	rows, err := s.db.QueryContext(ctx, `SELECT id, name, short_name, color FROM ranks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var ranks []models.Rank
	for rows.Next() {
		var r models.Rank
		if err := rows.Scan(&r.ID, &r.Name, &r.ShortName, &r.Color); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ranks = append(ranks, r)
	}

	return ranks, rows.Err()
}

func (s *Storage) ListGroups(ctx context.Context) ([]models.Group, error) {
	const op = "storage.postgres.ListGroups"

	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM guilds ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		groups = append(groups, g)
	}

	return groups, rows.Err()
}

func (s *Storage) CreateGroup(ctx context.Context, name string) (int64, error) {
	const op = "storage.postgres.CreateGroup"

	var id int64
	err := s.db.QueryRowContext(ctx, `INSERT INTO guilds (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	if err != nil {
		return 0, mapError(op, err)
	}

	return id, nil
}

// #### attendance logs ####

// AddAttendanceLog inserts the log and credits its score in one transaction.
func (s *Storage) AddAttendanceLog(ctx context.Context, l *models.AttendanceLog) error {
	const op = "storage.postgres.AddAttendanceLog"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO attendance_logs (ministrant_id, event_type, score, event_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		l.MinistrantID,
		l.EventType,
		l.Score,
		l.EventDate,
	).Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		return mapError(op, err)
	}

	res, err := tx.ExecContext(ctx, `UPDATE ministrants SET points = points + $1 WHERE id = $2`, l.Score, l.MinistrantID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := affected(op, res); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	return nil
}

func (s *Storage) ListAttendanceLogs(ctx context.Context, ministrantID *int64, r *calendar.Range) ([]models.AttendanceLog, error) {
	const op = "storage.postgres.ListAttendanceLogs"

	var where []string
	var args []any

	if ministrantID != nil {
		args = append(args, *ministrantID)
		where = append(where, fmt.Sprintf("ministrant_id = $%d", len(args)))
	}
	if r != nil {
		args = append(args, r.From, r.To)
		where = append(where, fmt.Sprintf("event_date BETWEEN $%d AND $%d", len(args)-1, len(args)))
	}

	query := `SELECT id, ministrant_id, event_type, score, event_date, created_at FROM attendance_logs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY event_date DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var logs []models.AttendanceLog
	for rows.Next() {
		var l models.AttendanceLog
		if err := rows.Scan(&l.ID, &l.MinistrantID, &l.EventType, &l.Score, &l.EventDate, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		logs = append(logs, l)
	}

	return logs, rows.Err()
}

func (s *Storage) ListLogCounts(ctx context.Context) ([]models.LogCount, error) {
	const op = "storage.postgres.ListLogCounts"

	rows, err := s.db.QueryContext(ctx,
		`SELECT ministrant_id, COUNT(*), COALESCE(SUM(score), 0)
		FROM attendance_logs
		GROUP BY ministrant_id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var counts []models.LogCount
	for rows.Next() {
		var c models.LogCount
		if err := rows.Scan(&c.MinistrantID, &c.Count, &c.Score); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		counts = append(counts, c)
	}

	return counts, rows.Err()
}

// #### sunday schedule ####

func (s *Storage) ListMassTimes(ctx context.Context) ([]models.MassTime, error) {
	const op = "storage.postgres.ListMassTimes"

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, start_time, description, display_order FROM mass_times ORDER BY display_order, start_time`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var times []models.MassTime
	for rows.Next() {
		var t models.MassTime
		if err := rows.Scan(&t.ID, &t.StartTime, &t.Description, &t.DisplayOrder); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		times = append(times, t)
	}

	return times, rows.Err()
}

func (s *Storage) CreateMassTime(ctx context.Context, t *models.MassTime) (int64, error) {
	const op = "storage.postgres.CreateMassTime"

	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO mass_times (start_time, description, display_order)
		VALUES ($1, $2, $3)
		RETURNING id`,
		t.StartTime,
		t.Description,
		t.DisplayOrder,
	).Scan(&id)
	if err != nil {
		return 0, mapError(op, err)
	}

	return id, nil
}

func (s *Storage) ListScheduleEntries(ctx context.Context, r calendar.Range) ([]models.ScheduleEntry, error) {
	const op = "storage.postgres.ListScheduleEntries"

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, mass_time_id, group_id
		FROM schedule_entries
		WHERE date BETWEEN $1 AND $2
		ORDER BY date, mass_time_id`,
		r.From, r.To,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var entries []models.ScheduleEntry
	for rows.Next() {
		var e models.ScheduleEntry
		if err := rows.Scan(&e.ID, &e.Date, &e.MassTimeID, &e.GroupID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (s *Storage) UpsertScheduleEntry(ctx context.Context, e *models.ScheduleEntry) error {
	const op = "storage.postgres.UpsertScheduleEntry"

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO schedule_entries (date, mass_time_id, group_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (date, mass_time_id)
		DO UPDATE SET group_id = EXCLUDED.group_id
		RETURNING id`,
		e.Date,
		e.MassTimeID,
		e.GroupID,
	).Scan(&e.ID)
	if err != nil {
		return mapError(op, err)
	}

	return nil
}

// #### weekday templates ####

const selectTemplate = `SELECT id, ministrant_id, day_of_week, time_slot, valid_from, valid_to FROM weekday_templates`

func scanTemplate(row rowScanner) (roster.Template, error) {
	var t roster.Template
	err := row.Scan(&t.ID, &t.MinistrantID, &t.Weekday, &t.Slot, &t.ValidFrom, &t.ValidTo)
	return t, err
}

func (s *Storage) ListTemplates(ctx context.Context) ([]roster.Template, error) {
	const op = "storage.postgres.ListTemplates"

	rows, err := s.db.QueryContext(ctx, selectTemplate+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var list []roster.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		list = append(list, t)
	}

	return list, rows.Err()
}

func (s *Storage) GetTemplate(ctx context.Context, id int64) (*roster.Template, error) {
	const op = "storage.postgres.GetTemplate"

	t, err := scanTemplate(s.db.QueryRowContext(ctx, selectTemplate+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: template %d", op, response.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &t, nil
}

// CreateTemplates inserts ts in one transaction and returns their ids in
// order. Nothing is stored when any insert fails.
func (s *Storage) CreateTemplates(ctx context.Context, ts []roster.Template) ([]int64, error) {
	const op = "storage.postgres.CreateTemplates"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO weekday_templates (ministrant_id, day_of_week, time_slot, valid_from, valid_to)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	ids := make([]int64, 0, len(ts))
	for _, t := range ts {
		var id int64
		if err := stmt.QueryRowContext(ctx, t.MinistrantID, t.Weekday, t.Slot, t.ValidFrom, t.ValidTo).Scan(&id); err != nil {
			return nil, mapError(op, err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}

	return ids, nil
}

func (s *Storage) DeleteTemplate(ctx context.Context, id int64) error {
	const op = "storage.postgres.DeleteTemplate"

	res, err := s.db.ExecContext(ctx, `DELETE FROM weekday_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return affected(op, res)
}

func (s *Storage) EndTemplate(ctx context.Context, id int64, validTo calendar.Date) error {
	const op = "storage.postgres.EndTemplate"

	res, err := s.db.ExecContext(ctx, `UPDATE weekday_templates SET valid_to = $1 WHERE id = $2`, validTo, id)
	if err != nil {
		return mapError(op, err)
	}

	return affected(op, res)
}

// #### attendance ####

func (s *Storage) ListWeekdayAttendance(ctx context.Context, r calendar.Range) ([]attendance.Record, error) {
	const op = "storage.postgres.ListWeekdayAttendance"

	rows, err := s.db.QueryContext(ctx,
		`SELECT ministrant_id, date, time_slot, is_present
		FROM weekday_attendance
		WHERE date BETWEEN $1 AND $2
		ORDER BY date, time_slot, ministrant_id`,
		r.From, r.To,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		var rec attendance.Record
		if err := rows.Scan(&rec.MinistrantID, &rec.Date, &rec.Slot, &rec.Mark); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (s *Storage) GetWeekdayMark(ctx context.Context, key attendance.Key) (attendance.Mark, error) {
	const op = "storage.postgres.GetWeekdayMark"

	var mark attendance.Mark
	err := s.db.QueryRowContext(ctx,
		`SELECT is_present FROM weekday_attendance
		WHERE ministrant_id = $1 AND date = $2 AND time_slot = $3`,
		key.MinistrantID, key.Date, key.Slot,
	).Scan(&mark)
	if errors.Is(err, sql.ErrNoRows) {
		return attendance.Unmarked, nil
	}
	if err != nil {
		return attendance.Unmarked, fmt.Errorf("%s: %w", op, err)
	}

	return mark, nil
}

func (s *Storage) UpsertWeekdayAttendance(ctx context.Context, rec attendance.Record) error {
	const op = "storage.postgres.UpsertWeekdayAttendance"

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO weekday_attendance (ministrant_id, date, time_slot, is_present)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (ministrant_id, date, time_slot)
		DO UPDATE SET is_present = EXCLUDED.is_present`,
		rec.MinistrantID, rec.Date, rec.Slot, rec.Mark,
	)
	if err != nil {
		return mapError(op, err)
	}

	return nil
}

func (s *Storage) ListSundayAttendance(ctx context.Context, r calendar.Range) ([]attendance.Record, error) {
	const op = "storage.postgres.ListSundayAttendance"

	rows, err := s.db.QueryContext(ctx,
		`SELECT ministrant_id, date, is_present
		FROM sunday_attendance
		WHERE date BETWEEN $1 AND $2
		ORDER BY date, ministrant_id`,
		r.From, r.To,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		var rec attendance.Record
		if err := rows.Scan(&rec.MinistrantID, &rec.Date, &rec.Mark); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (s *Storage) GetSundayMark(ctx context.Context, ministrantID int64, date calendar.Date) (attendance.Mark, error) {
	const op = "storage.postgres.GetSundayMark"

	var mark attendance.Mark
	err := s.db.QueryRowContext(ctx,
		`SELECT is_present FROM sunday_attendance WHERE ministrant_id = $1 AND date = $2`,
		ministrantID, date,
	).Scan(&mark)
	if errors.Is(err, sql.ErrNoRows) {
		return attendance.Unmarked, nil
	}
	if err != nil {
		return attendance.Unmarked, fmt.Errorf("%s: %w", op, err)
	}

	return mark, nil
}

func (s *Storage) UpsertSundayAttendance(ctx context.Context, rec attendance.Record) error {
	const op = "storage.postgres.UpsertSundayAttendance"

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sunday_attendance (ministrant_id, date, is_present)
		VALUES ($1, $2, $3)
		ON CONFLICT (ministrant_id, date)
		DO UPDATE SET is_present = EXCLUDED.is_present`,
		rec.MinistrantID, rec.Date, rec.Mark,
	)
	if err != nil {
		return mapError(op, err)
	}

	return nil
}
