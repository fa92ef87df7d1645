package store

import (
	"encoding/json"
	"testing"
)

// ============================================================
// Webhook outbox
// ============================================================

func TestEnqueueWebhookEvent(t *testing.T) {
	s := newTestStore(t)

	ev, err := s.EnqueueWebhookEvent("timer.started", map[string]any{"stageId": 7})
	if err != nil {
		t.Fatal(err)
	}
	if ev.ID == "" {
		t.Fatal("expected assigned event id")
	}
	if ev.Status != EventPending || ev.Attempts != 0 {
		t.Fatalf("unexpected new event: %+v", ev)
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(ev.Payload), &payload); err != nil {
		t.Fatalf("payload not valid JSON: %v", err)
	}
	if payload["stageId"] != float64(7) {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

func TestPendingWebhookEventsOrder(t *testing.T) {
	s := newTestStore(t)

	first, _ := s.EnqueueWebhookEvent("timer.started", nil)
	second, _ := s.EnqueueWebhookEvent("timer.paused", nil)

	// Force distinct created_at so ordering is deterministic.
	s.db.Exec(`UPDATE webhook_events SET created_at = '2026-03-10T09:00:00Z' WHERE id = ?`, first.ID)
	s.db.Exec(`UPDATE webhook_events SET created_at = '2026-03-10T10:00:00Z' WHERE id = ?`, second.ID)

	events, err := s.PendingWebhookEvents(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(events))
	}
	if events[0].ID != first.ID {
		t.Fatal("expected oldest event first")
	}

	limited, err := s.PendingWebhookEvents(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 || limited[0].ID != first.ID {
		t.Fatalf("limit: expected oldest only, got %+v", limited)
	}
}

func TestMarkWebhookDelivered(t *testing.T) {
	s := newTestStore(t)

	ev, _ := s.EnqueueWebhookEvent("timer.stopped", nil)
	if err := s.MarkWebhookDelivered(ev.ID); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetWebhookEvent(ev.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != EventDelivered {
		t.Fatalf("expected delivered, got %s", got.Status)
	}
	if got.DeliveredAt == nil {
		t.Fatal("expected delivered_at set")
	}

	pending, _ := s.PendingWebhookEvents(0)
	if len(pending) != 0 {
		t.Fatalf("expected no pending events, got %d", len(pending))
	}
}

func TestRecordWebhookFailure(t *testing.T) {
	s := newTestStore(t)

	ev, _ := s.EnqueueWebhookEvent("timer.started", nil)

	// Below the cap the event stays pending for another attempt.
	if err := s.RecordWebhookFailure(ev.ID, "connection refused", 3); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetWebhookEvent(ev.ID)
	if got.Status != EventPending || got.Attempts != 1 {
		t.Fatalf("unexpected after first failure: %+v", got)
	}
	if got.LastError != "connection refused" {
		t.Fatalf("expected recorded error, got %q", got.LastError)
	}

	s.RecordWebhookFailure(ev.ID, "connection refused", 3)
	s.RecordWebhookFailure(ev.ID, "timeout", 3)

	got, _ = s.GetWebhookEvent(ev.ID)
	if got.Status != EventFailed || got.Attempts != 3 {
		t.Fatalf("expected failed after 3 attempts, got %+v", got)
	}
	if got.LastError != "timeout" {
		t.Fatalf("expected latest error kept, got %q", got.LastError)
	}
}

func TestRetryFailedWebhooks(t *testing.T) {
	s := newTestStore(t)

	ev, _ := s.EnqueueWebhookEvent("timer.started", nil)
	s.RecordWebhookFailure(ev.ID, "boom", 1)

	got, _ := s.GetWebhookEvent(ev.ID)
	if got.Status != EventFailed {
		t.Fatalf("expected failed, got %s", got.Status)
	}

	n, err := s.RetryFailedWebhooks()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 reset, got %d", n)
	}

	got, _ = s.GetWebhookEvent(ev.ID)
	if got.Status != EventPending || got.Attempts != 0 || got.LastError != "" {
		t.Fatalf("unexpected after retry: %+v", got)
	}
}
