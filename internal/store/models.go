package store

import "time"

// TimerStatus mirrors the stage timer state persisted on the stage row.
type TimerStatus string

const (
	TimerStopped TimerStatus = "stopped"
	TimerRunning TimerStatus = "running"
	TimerPaused  TimerStatus = "paused"
)

// SessionStatus is the lifecycle of a work session ledger row.
// A paused session is never reopened; resuming work creates a new row.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionPaused    SessionStatus = "paused"
	SessionCompleted SessionStatus = "completed"
)

// EventStatus is the delivery state of a webhook outbox row.
type EventStatus string

const (
	EventPending   EventStatus = "pending"
	EventDelivered EventStatus = "delivered"
	EventFailed    EventStatus = "failed"
)

type Client struct {
	ID        int64
	Name      string
	Company   string
	Email     string
	Archived  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Consultant struct {
	ID              int64
	Name            string
	Email           string
	HourlyRateCents int64
	Archived        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Project struct {
	ID           int64
	ClientID     int64
	ConsultantID *int64
	Name         string
	Color        string
	Status       string // planned, active, completed, cancelled
	ValueCents   int64
	Archived     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Stage struct {
	ID               int64
	ProjectID        int64
	Name             string
	Position         int
	Status           string // pending, in_progress, completed
	ValueCents       int64
	Days             int
	TimerStatus      TimerStatus
	TimeSpentMinutes int
	TimerStartedAt   *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// WorkSession is one contiguous interval of timer accrual for a stage.
// Rows are an audit trail: the application inserts and updates them but
// never deletes them.
type WorkSession struct {
	ID              string
	StageID         int64
	StartTime       time.Time
	EndTime         *time.Time
	Status          SessionStatus
	DurationMinutes *int
	CreatedAt       time.Time
}

type Transaction struct {
	ID          int64
	ProjectID   int64
	StageID     *int64
	Kind        string // income, expense
	AmountCents int64
	Description string
	OccurredOn  time.Time
	CreatedAt   time.Time
}

type WebhookEvent struct {
	ID          string
	EventType   string
	Payload     string
	Status      EventStatus
	Attempts    int
	LastError   string
	CreatedAt   time.Time
	DeliveredAt *time.Time
}

type Setting struct {
	Key   string
	Value string
}

// SessionUpdate carries the optional fields of a work-session update.
// Nil fields are left untouched.
type SessionUpdate struct {
	Status          SessionStatus
	DurationMinutes *int
	EndTime         *time.Time
}

// StageTimerUpdate mirrors a timer transition onto the stage row.
// TimeSpentMinutes is written when non-nil; TimerStartedAt is written
// always (nil clears the column).
type StageTimerUpdate struct {
	TimerStatus      TimerStatus
	TimeSpentMinutes *int
	TimerStartedAt   *time.Time
}

// SessionFilter is used to filter work sessions in queries.
type SessionFilter struct {
	StageID   *int64
	ProjectID *int64
	From      *time.Time
	To        *time.Time
	Limit     int
}

// DailySummary represents aggregated minutes per project per day.
type DailySummary struct {
	Date         string
	ProjectID    int64
	ProjectName  string
	ProjectColor string
	TotalMinutes int64
	SessionCount int
}

// ProjectFinance aggregates transactions for one project.
type ProjectFinance struct {
	ProjectID    int64
	ProjectName  string
	IncomeCents  int64
	ExpenseCents int64
}
