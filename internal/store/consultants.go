package store

import (
	"fmt"
	"time"
)

func (s *Store) CreateConsultant(name, email string, hourlyRateCents int64) (*Consultant, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`INSERT INTO consultants (name, email, hourly_rate_cents, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		name, email, hourlyRateCents, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert consultant: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetConsultant(id)
}

func (s *Store) GetConsultant(id int64) (*Consultant, error) {
	c := &Consultant{}
	var createdAt, updatedAt string
	var archived int
	err := s.db.QueryRow(
		`SELECT id, name, email, hourly_rate_cents, archived, created_at, updated_at FROM consultants WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.Email, &c.HourlyRateCents, &archived, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("get consultant %d: %w", id, err)
	}
	c.Archived = archived == 1
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	c.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return c, nil
}

func (s *Store) ListConsultants(includeArchived bool) ([]Consultant, error) {
	query := `SELECT id, name, email, hourly_rate_cents, archived, created_at, updated_at FROM consultants`
	if !includeArchived {
		query += ` WHERE archived = 0`
	}
	query += ` ORDER BY name`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list consultants: %w", err)
	}
	defer rows.Close()

	var consultants []Consultant
	for rows.Next() {
		var c Consultant
		var createdAt, updatedAt string
		var archived int
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.HourlyRateCents, &archived, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		c.Archived = archived == 1
		c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		c.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		consultants = append(consultants, c)
	}
	return consultants, rows.Err()
}

func (s *Store) UpdateConsultant(id int64, name, email string, hourlyRateCents int64) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`UPDATE consultants SET name = ?, email = ?, hourly_rate_cents = ?, updated_at = ? WHERE id = ?`,
		name, email, hourlyRateCents, now, id,
	)
	return err
}

func (s *Store) ArchiveConsultant(id int64) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`UPDATE consultants SET archived = 1, updated_at = ? WHERE id = ?`, now, id,
	)
	return err
}
