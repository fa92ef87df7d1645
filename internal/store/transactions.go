package store

import (
	"database/sql"
	"fmt"
	"time"
)

func (s *Store) CreateTransaction(projectID int64, stageID *int64, kind string, amountCents int64, description string, occurredOn time.Time) (*Transaction, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`INSERT INTO transactions (project_id, stage_id, kind, amount_cents, description, occurred_on, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		projectID, stageID, kind, amountCents, description, occurredOn.UTC().Format(time.RFC3339), now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetTransaction(id)
}

func (s *Store) GetTransaction(id int64) (*Transaction, error) {
	t := &Transaction{}
	var occurredOn, createdAt string
	var stageID sql.NullInt64
	err := s.db.QueryRow(
		`SELECT id, project_id, stage_id, kind, amount_cents, description, occurred_on, created_at
		 FROM transactions WHERE id = ?`, id,
	).Scan(&t.ID, &t.ProjectID, &stageID, &t.Kind, &t.AmountCents, &t.Description, &occurredOn, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("get transaction %d: %w", id, err)
	}
	if stageID.Valid {
		t.StageID = &stageID.Int64
	}
	t.OccurredOn, _ = time.Parse(time.RFC3339, occurredOn)
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return t, nil
}

func (s *Store) ListTransactions(projectID int64) ([]Transaction, error) {
	rows, err := s.db.Query(
		`SELECT id, project_id, stage_id, kind, amount_cents, description, occurred_on, created_at
		 FROM transactions WHERE project_id = ? ORDER BY occurred_on DESC`, projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []Transaction
	for rows.Next() {
		var t Transaction
		var occurredOn, createdAt string
		var stageID sql.NullInt64
		if err := rows.Scan(&t.ID, &t.ProjectID, &stageID, &t.Kind, &t.AmountCents, &t.Description, &occurredOn, &createdAt); err != nil {
			return nil, err
		}
		if stageID.Valid {
			t.StageID = &stageID.Int64
		}
		t.OccurredOn, _ = time.Parse(time.RFC3339, occurredOn)
		t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// GetProjectFinances aggregates income and expenses per project.
func (s *Store) GetProjectFinances() ([]ProjectFinance, error) {
	rows, err := s.db.Query(`
		SELECT p.id, p.name,
		       COALESCE(SUM(CASE WHEN t.kind = 'income'  THEN t.amount_cents ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN t.kind = 'expense' THEN t.amount_cents ELSE 0 END), 0)
		FROM projects p
		JOIN transactions t ON t.project_id = p.id
		GROUP BY p.id
		ORDER BY p.name`,
	)
	if err != nil {
		return nil, fmt.Errorf("project finances: %w", err)
	}
	defer rows.Close()

	var finances []ProjectFinance
	for rows.Next() {
		var f ProjectFinance
		if err := rows.Scan(&f.ProjectID, &f.ProjectName, &f.IncomeCents, &f.ExpenseCents); err != nil {
			return nil, err
		}
		finances = append(finances, f)
	}
	return finances, rows.Err()
}
