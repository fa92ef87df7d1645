// Package webhook delivers outbox events over HTTP. Events are written
// to the webhook_events table by the rest of the application; the
// dispatcher drains pending rows, POSTing each one to the configured
// endpoint until it is delivered or runs out of attempts.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/institutofocos/consultorpro-sub003/internal/config"
	"github.com/institutofocos/consultorpro-sub003/internal/store"
)

// Outbox is the slice of the store the dispatcher drains.
// *store.Store satisfies it.
type Outbox interface {
	PendingWebhookEvents(limit int) ([]store.WebhookEvent, error)
	MarkWebhookDelivered(id string) error
	RecordWebhookFailure(id, deliveryErr string, maxAttempts int) error
	RetryFailedWebhooks() (int64, error)
}

// envelope is the wire shape of one delivery. Payload passes through
// as the JSON stored at enqueue time.
type envelope struct {
	ID        string          `json:"id"`
	EventType string          `json:"eventType"`
	CreatedAt time.Time       `json:"createdAt"`
	Attempt   int             `json:"attempt"`
	Payload   json.RawMessage `json:"payload"`
}

type Dispatcher struct {
	outbox Outbox
	cfg    config.Webhook
	client *http.Client
	log    *slog.Logger
}

func NewDispatcher(outbox Outbox, cfg config.Webhook, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		outbox: outbox,
		cfg:    cfg,
		client: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		log:    log,
	}
}

// Run polls the outbox until the context is cancelled. It returns
// immediately when no endpoint is configured.
func (d *Dispatcher) Run(ctx context.Context) error {
	if !d.cfg.Enabled() {
		d.log.Info("webhook dispatch disabled, no endpoint configured")
		return nil
	}

	interval := time.Duration(d.cfg.PollIntervalSeconds) * time.Second
	d.log.Info("webhook dispatcher started",
		"endpoint", d.cfg.Endpoint,
		"interval", interval,
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := d.DispatchPending(ctx); err != nil {
			d.log.Error("dispatch cycle failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// DispatchPending delivers one batch of pending events and returns how
// many were delivered.
func (d *Dispatcher) DispatchPending(ctx context.Context) (int, error) {
	if !d.cfg.Enabled() {
		return 0, nil
	}

	events, err := d.outbox.PendingWebhookEvents(d.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("load pending events: %w", err)
	}

	delivered := 0
	for _, ev := range events {
		if ctx.Err() != nil {
			return delivered, ctx.Err()
		}
		if err := d.deliver(ctx, ev); err != nil {
			d.log.Warn("delivery failed",
				"event", ev.ID,
				"type", ev.EventType,
				"attempt", ev.Attempts+1,
				"error", err,
			)
			if rerr := d.outbox.RecordWebhookFailure(ev.ID, err.Error(), d.cfg.MaxAttempts); rerr != nil {
				return delivered, fmt.Errorf("record failure for %s: %w", ev.ID, rerr)
			}
			continue
		}
		if err := d.outbox.MarkWebhookDelivered(ev.ID); err != nil {
			return delivered, fmt.Errorf("mark delivered %s: %w", ev.ID, err)
		}
		delivered++
		d.log.Info("event delivered", "event", ev.ID, "type", ev.EventType)
	}
	return delivered, nil
}

func (d *Dispatcher) deliver(ctx context.Context, ev store.WebhookEvent) error {
	body, err := json.Marshal(envelope{
		ID:        ev.ID,
		EventType: ev.EventType,
		CreatedAt: ev.CreatedAt,
		Attempt:   ev.Attempts + 1,
		Payload:   json.RawMessage(ev.Payload),
	})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Consultorpro-Event", ev.EventType)
	req.Header.Set("X-Consultorpro-Delivery", ev.ID)

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("endpoint returned %s", resp.Status)
	}
	return nil
}

// RetryFailed flips failed events back to pending so the next cycle
// picks them up again.
func (d *Dispatcher) RetryFailed() (int64, error) {
	n, err := d.outbox.RetryFailedWebhooks()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		d.log.Info("failed events requeued", "count", n)
	}
	return n, nil
}
