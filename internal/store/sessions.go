package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateSession opens a new active work session for a stage. The session
// ID is assigned here and returned on the row.
func (s *Store) CreateSession(stageID int64, startTime time.Time) (*WorkSession, error) {
	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO work_sessions (id, stage_id, start_time, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, stageID, startTime.UTC().Format(time.RFC3339), string(SessionActive), now,
	)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return s.GetSession(id)
}

// UpdateSession applies a pause/complete transition to a session row.
// Nil fields in the update are left untouched.
func (s *Store) UpdateSession(id string, u SessionUpdate) error {
	query := `UPDATE work_sessions SET status = ?`
	args := []any{string(u.Status)}

	if u.DurationMinutes != nil {
		query += `, duration_minutes = ?`
		args = append(args, *u.DurationMinutes)
	}
	if u.EndTime != nil {
		query += `, end_time = ?`
		args = append(args, u.EndTime.UTC().Format(time.RFC3339))
	}
	query += ` WHERE id = ?`
	args = append(args, id)

	if _, err := s.db.Exec(query, args...); err != nil {
		return fmt.Errorf("update session %s: %w", id, err)
	}
	return nil
}

func (s *Store) GetSession(id string) (*WorkSession, error) {
	row := s.db.QueryRow(
		`SELECT id, stage_id, start_time, end_time, status, duration_minutes, created_at
		 FROM work_sessions WHERE id = ?`, id,
	)
	ws, err := scanSession(row)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return ws, nil
}

// ActiveSession returns the most recent active session for a stage, or
// nil when the stage has no open session.
func (s *Store) ActiveSession(stageID int64) (*WorkSession, error) {
	row := s.db.QueryRow(
		`SELECT id, stage_id, start_time, end_time, status, duration_minutes, created_at
		 FROM work_sessions WHERE stage_id = ? AND status = ? ORDER BY start_time DESC LIMIT 1`,
		stageID, string(SessionActive),
	)
	ws, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("active session for stage %d: %w", stageID, err)
	}
	return ws, nil
}

// StageSessionMinutes sums duration_minutes over the stage's non-active
// sessions. This is the ledger side of the stage total invariant.
func (s *Store) StageSessionMinutes(stageID int64) (int, error) {
	var total sql.NullInt64
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(duration_minutes), 0) FROM work_sessions WHERE stage_id = ? AND status != ?`,
		stageID, string(SessionActive),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum session minutes: %w", err)
	}
	return int(total.Int64), nil
}

func (s *Store) ListSessions(f SessionFilter) ([]WorkSession, error) {
	query := `SELECT w.id, w.stage_id, w.start_time, w.end_time, w.status, w.duration_minutes, w.created_at
	          FROM work_sessions w`
	var args []any

	if f.ProjectID != nil {
		query += ` JOIN stages st ON st.id = w.stage_id`
	}
	query += ` WHERE 1=1`
	if f.StageID != nil {
		query += ` AND w.stage_id = ?`
		args = append(args, *f.StageID)
	}
	if f.ProjectID != nil {
		query += ` AND st.project_id = ?`
		args = append(args, *f.ProjectID)
	}
	if f.From != nil {
		query += ` AND w.start_time >= ?`
		args = append(args, f.From.Format(time.RFC3339))
	}
	if f.To != nil {
		query += ` AND w.start_time < ?`
		args = append(args, f.To.Format(time.RFC3339))
	}
	query += ` ORDER BY w.start_time DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []WorkSession
	for rows.Next() {
		ws, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *ws)
	}
	return sessions, rows.Err()
}

// GetDailySummary aggregates non-active session minutes per project per day.
func (s *Store) GetDailySummary(from, to time.Time) ([]DailySummary, error) {
	rows, err := s.db.Query(`
		SELECT date(w.start_time) AS day, p.id, p.name, p.color,
		       COALESCE(SUM(w.duration_minutes), 0), COUNT(*)
		FROM work_sessions w
		JOIN stages st ON st.id = w.stage_id
		JOIN projects p ON p.id = st.project_id
		WHERE w.status != ?
		  AND w.start_time >= ? AND w.start_time < ?
		GROUP BY day, p.id
		ORDER BY day, p.name`,
		string(SessionActive), from.Format(time.RFC3339), to.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("daily summary: %w", err)
	}
	defer rows.Close()

	var summaries []DailySummary
	for rows.Next() {
		var ds DailySummary
		if err := rows.Scan(&ds.Date, &ds.ProjectID, &ds.ProjectName, &ds.ProjectColor, &ds.TotalMinutes, &ds.SessionCount); err != nil {
			return nil, err
		}
		summaries = append(summaries, ds)
	}
	return summaries, rows.Err()
}

func (s *Store) GetTodayMinutes() (int64, error) {
	today := time.Now().UTC().Format("2006-01-02")
	var total sql.NullInt64
	err := s.db.QueryRow(`
		SELECT COALESCE(SUM(duration_minutes), 0)
		FROM work_sessions
		WHERE date(start_time) = ? AND status != ?`, today, string(SessionActive),
	).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Int64, nil
}

func scanSession(row scanner) (*WorkSession, error) {
	ws := &WorkSession{}
	var startTime, createdAt, status string
	var endTime sql.NullString
	var duration sql.NullInt64

	err := row.Scan(&ws.ID, &ws.StageID, &startTime, &endTime, &status, &duration, &createdAt)
	if err != nil {
		return nil, err
	}
	ws.Status = SessionStatus(status)
	ws.StartTime, _ = time.Parse(time.RFC3339, startTime)
	if endTime.Valid {
		t, _ := time.Parse(time.RFC3339, endTime.String)
		ws.EndTime = &t
	}
	if duration.Valid {
		d := int(duration.Int64)
		ws.DurationMinutes = &d
	}
	ws.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return ws, nil
}
