package store

import (
	"database/sql"
	"fmt"
	"time"
)

func (s *Store) CreateStage(projectID int64, name string, position int, valueCents int64, days int) (*Stage, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`INSERT INTO stages (project_id, name, position, value_cents, days, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		projectID, name, position, valueCents, days, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert stage: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetStage(id)
}

func (s *Store) GetStage(id int64) (*Stage, error) {
	row := s.db.QueryRow(
		`SELECT id, project_id, name, position, status, value_cents, days,
		        timer_status, time_spent_minutes, timer_started_at, created_at, updated_at
		 FROM stages WHERE id = ?`, id,
	)
	st, err := scanStage(row)
	if err != nil {
		return nil, fmt.Errorf("get stage %d: %w", id, err)
	}
	return st, nil
}

func (s *Store) ListStages(projectID int64) ([]Stage, error) {
	rows, err := s.db.Query(
		`SELECT id, project_id, name, position, status, value_cents, days,
		        timer_status, time_spent_minutes, timer_started_at, created_at, updated_at
		 FROM stages WHERE project_id = ? ORDER BY position, name`, projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list stages: %w", err)
	}
	defer rows.Close()

	var stages []Stage
	for rows.Next() {
		st, err := scanStage(rows)
		if err != nil {
			return nil, err
		}
		stages = append(stages, *st)
	}
	return stages, rows.Err()
}

func (s *Store) UpdateStage(id int64, name string, position int, status string, valueCents int64, days int) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`UPDATE stages SET name = ?, position = ?, status = ?, value_cents = ?, days = ?, updated_at = ? WHERE id = ?`,
		name, position, status, valueCents, days, now, id,
	)
	return err
}

// UpdateStageTimer mirrors a timer transition onto the stage row.
// TimerStartedAt is written unconditionally so stop can clear it;
// TimeSpentMinutes is only written when the transition computed a new total.
func (s *Store) UpdateStageTimer(id int64, u StageTimerUpdate) error {
	now := time.Now().UTC().Format(time.RFC3339)

	var startedAt any
	if u.TimerStartedAt != nil {
		startedAt = u.TimerStartedAt.UTC().Format(time.RFC3339)
	}

	if u.TimeSpentMinutes != nil {
		_, err := s.db.Exec(
			`UPDATE stages SET timer_status = ?, time_spent_minutes = ?, timer_started_at = ?, updated_at = ? WHERE id = ?`,
			string(u.TimerStatus), *u.TimeSpentMinutes, startedAt, now, id,
		)
		if err != nil {
			return fmt.Errorf("update stage timer %d: %w", id, err)
		}
		return nil
	}

	_, err := s.db.Exec(
		`UPDATE stages SET timer_status = ?, timer_started_at = ?, updated_at = ? WHERE id = ?`,
		string(u.TimerStatus), startedAt, now, id,
	)
	if err != nil {
		return fmt.Errorf("update stage timer %d: %w", id, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStage(row scanner) (*Stage, error) {
	st := &Stage{}
	var createdAt, updatedAt, timerStatus string
	var startedAt sql.NullString
	err := row.Scan(
		&st.ID, &st.ProjectID, &st.Name, &st.Position, &st.Status, &st.ValueCents, &st.Days,
		&timerStatus, &st.TimeSpentMinutes, &startedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	st.TimerStatus = TimerStatus(timerStatus)
	if startedAt.Valid {
		t, _ := time.Parse(time.RFC3339, startedAt.String)
		st.TimerStartedAt = &t
	}
	st.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	st.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return st, nil
}
