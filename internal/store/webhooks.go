package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EnqueueWebhookEvent appends a pending event to the outbox. The payload
// is marshalled to JSON here so callers pass plain structs or maps.
func (s *Store) EnqueueWebhookEvent(eventType string, payload any) (*WebhookEvent, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal webhook payload: %w", err)
	}
	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.Exec(
		`INSERT INTO webhook_events (id, event_type, payload, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, eventType, string(body), string(EventPending), now,
	)
	if err != nil {
		return nil, fmt.Errorf("enqueue webhook event: %w", err)
	}
	return s.GetWebhookEvent(id)
}

func (s *Store) GetWebhookEvent(id string) (*WebhookEvent, error) {
	row := s.db.QueryRow(
		`SELECT id, event_type, payload, status, attempts, last_error, created_at, delivered_at
		 FROM webhook_events WHERE id = ?`, id,
	)
	ev, err := scanWebhookEvent(row)
	if err != nil {
		return nil, fmt.Errorf("get webhook event %s: %w", id, err)
	}
	return ev, nil
}

// PendingWebhookEvents returns pending outbox rows, oldest first.
func (s *Store) PendingWebhookEvents(limit int) ([]WebhookEvent, error) {
	query := `SELECT id, event_type, payload, status, attempts, last_error, created_at, delivered_at
	          FROM webhook_events WHERE status = ? ORDER BY created_at`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}
	rows, err := s.db.Query(query, string(EventPending))
	if err != nil {
		return nil, fmt.Errorf("pending webhook events: %w", err)
	}
	defer rows.Close()

	var events []WebhookEvent
	for rows.Next() {
		ev, err := scanWebhookEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *ev)
	}
	return events, rows.Err()
}

// MarkWebhookDelivered records a successful delivery.
func (s *Store) MarkWebhookDelivered(id string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`UPDATE webhook_events SET status = ?, delivered_at = ?, last_error = '' WHERE id = ?`,
		string(EventDelivered), now, id,
	)
	return err
}

// RecordWebhookFailure increments the attempt counter and stores the
// delivery error. Once attempts reach maxAttempts the row is marked
// failed and left for forced reprocessing.
func (s *Store) RecordWebhookFailure(id, deliveryErr string, maxAttempts int) error {
	_, err := s.db.Exec(
		`UPDATE webhook_events
		 SET attempts = attempts + 1,
		     last_error = ?,
		     status = CASE WHEN attempts + 1 >= ? THEN ? ELSE ? END
		 WHERE id = ?`,
		deliveryErr, maxAttempts, string(EventFailed), string(EventPending), id,
	)
	return err
}

// RetryFailedWebhooks moves failed events back to pending and resets
// their attempt counters. Returns the number of rows reset.
func (s *Store) RetryFailedWebhooks() (int64, error) {
	res, err := s.db.Exec(
		`UPDATE webhook_events SET status = ?, attempts = 0, last_error = '' WHERE status = ?`,
		string(EventPending), string(EventFailed),
	)
	if err != nil {
		return 0, fmt.Errorf("retry failed webhooks: %w", err)
	}
	return res.RowsAffected()
}

func scanWebhookEvent(row scanner) (*WebhookEvent, error) {
	ev := &WebhookEvent{}
	var status, createdAt string
	var deliveredAt sql.NullString
	err := row.Scan(&ev.ID, &ev.EventType, &ev.Payload, &status, &ev.Attempts, &ev.LastError, &createdAt, &deliveredAt)
	if err != nil {
		return nil, err
	}
	ev.Status = EventStatus(status)
	ev.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if deliveredAt.Valid {
		t, _ := time.Parse(time.RFC3339, deliveredAt.String)
		ev.DeliveredAt = &t
	}
	return ev, nil
}
