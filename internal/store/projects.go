package store

import (
	"database/sql"
	"fmt"
	"time"
)

func (s *Store) CreateProject(clientID int64, consultantID *int64, name, color, status string, valueCents int64) (*Project, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`INSERT INTO projects (client_id, consultant_id, name, color, status, value_cents, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		clientID, consultantID, name, color, status, valueCents, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetProject(id)
}

func (s *Store) GetProject(id int64) (*Project, error) {
	p := &Project{}
	var createdAt, updatedAt string
	var archived int
	var consultantID sql.NullInt64
	err := s.db.QueryRow(
		`SELECT id, client_id, consultant_id, name, color, status, value_cents, archived, created_at, updated_at
		 FROM projects WHERE id = ?`, id,
	).Scan(&p.ID, &p.ClientID, &consultantID, &p.Name, &p.Color, &p.Status, &p.ValueCents, &archived, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("get project %d: %w", id, err)
	}
	if consultantID.Valid {
		p.ConsultantID = &consultantID.Int64
	}
	p.Archived = archived == 1
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return p, nil
}

func (s *Store) ListProjects(includeArchived bool) ([]Project, error) {
	query := `SELECT id, client_id, consultant_id, name, color, status, value_cents, archived, created_at, updated_at FROM projects`
	if !includeArchived {
		query += ` WHERE archived = 0`
	}
	query += ` ORDER BY name`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		var createdAt, updatedAt string
		var archived int
		var consultantID sql.NullInt64
		if err := rows.Scan(&p.ID, &p.ClientID, &consultantID, &p.Name, &p.Color, &p.Status, &p.ValueCents, &archived, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if consultantID.Valid {
			p.ConsultantID = &consultantID.Int64
		}
		p.Archived = archived == 1
		p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *Store) ListProjectsByClient(clientID int64, includeArchived bool) ([]Project, error) {
	query := `SELECT id, client_id, consultant_id, name, color, status, value_cents, archived, created_at, updated_at
	          FROM projects WHERE client_id = ?`
	if !includeArchived {
		query += ` AND archived = 0`
	}
	query += ` ORDER BY name`

	rows, err := s.db.Query(query, clientID)
	if err != nil {
		return nil, fmt.Errorf("list projects by client: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		var createdAt, updatedAt string
		var archived int
		var consultantID sql.NullInt64
		if err := rows.Scan(&p.ID, &p.ClientID, &consultantID, &p.Name, &p.Color, &p.Status, &p.ValueCents, &archived, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if consultantID.Valid {
			p.ConsultantID = &consultantID.Int64
		}
		p.Archived = archived == 1
		p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *Store) UpdateProject(id int64, name, color, status string, valueCents int64, consultantID *int64) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`UPDATE projects SET name = ?, color = ?, status = ?, value_cents = ?, consultant_id = ?, updated_at = ? WHERE id = ?`,
		name, color, status, valueCents, consultantID, now, id,
	)
	return err
}

func (s *Store) ArchiveProject(id int64) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`UPDATE projects SET archived = 1, updated_at = ? WHERE id = ?`, now, id,
	)
	return err
}
