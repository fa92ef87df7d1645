// Package timer holds the stage timer state machine. A Controller owns
// the in-memory state for one stage and mirrors every transition into
// the session ledger and onto the stage row.
package timer

import (
	"errors"
	"fmt"
	"time"

	"github.com/institutofocos/consultorpro-sub003/internal/store"
)

// Ledger is the slice of the store the controller writes through.
// *store.Store satisfies it.
type Ledger interface {
	CreateSession(stageID int64, startTime time.Time) (*store.WorkSession, error)
	UpdateSession(id string, u store.SessionUpdate) error
	UpdateStageTimer(stageID int64, u store.StageTimerUpdate) error
}

// Controller runs the stopped/running/paused state machine for one
// stage. Elapsed time is derived from the session start and the clock
// on every read, so ticks are display-only and never persist anything.
type Controller struct {
	ledger  Ledger
	stageID int64

	status       store.TimerStatus
	totalMinutes int // accrued before the current run
	sessionStart time.Time
	sessionID    string

	desynced bool

	autoPauseMinutes int
	autoPauseFired   bool

	// Clock supplies the current time. Defaults to time.Now.
	Clock func() time.Time

	// OnAutoPause is invoked once per continuous run when the ceiling
	// forces a pause.
	OnAutoPause func()

	// OnTimeUpdate receives the current total on every tick while
	// running and the new stage total after every persisted pause or
	// stop.
	OnTimeUpdate func(totalMinutes int)
}

// New builds a controller seeded from the persisted stage row, so a
// paused stage resumes with its prior total after a restart.
func New(ledger Ledger, stage *store.Stage) *Controller {
	c := &Controller{
		ledger:       ledger,
		stageID:      stage.ID,
		status:       stage.TimerStatus,
		totalMinutes: stage.TimeSpentMinutes,
		Clock:        time.Now,
	}
	// A stage left running by a previous process has no live session
	// here; treat it as paused at its stored total.
	if c.status == store.TimerRunning {
		c.status = store.TimerPaused
	}
	return c
}

// SetAutoPause sets the continuous-run ceiling in minutes. Zero
// disables it.
func (c *Controller) SetAutoPause(minutes int) {
	c.autoPauseMinutes = minutes
}

func (c *Controller) StageID() int64            { return c.stageID }
func (c *Controller) Status() store.TimerStatus { return c.status }
func (c *Controller) Desynced() bool            { return c.desynced }

// Start opens a new session and marks the stage running. Starting an
// already-running timer is a no-op. A persistence failure keeps the
// local transition and leaves the controller desynced.
func (c *Controller) Start() error {
	if c.status == store.TimerRunning {
		return nil
	}
	now := c.Clock()

	c.status = store.TimerRunning
	c.sessionStart = now
	c.sessionID = ""
	c.autoPauseFired = false

	var errs []error
	ws, err := c.ledger.CreateSession(c.stageID, now)
	if err != nil {
		errs = append(errs, fmt.Errorf("create session: %w", err))
	} else {
		c.sessionID = ws.ID
	}
	if err := c.ledger.UpdateStageTimer(c.stageID, store.StageTimerUpdate{
		TimerStatus:    store.TimerRunning,
		TimerStartedAt: &now,
	}); err != nil {
		errs = append(errs, fmt.Errorf("update stage: %w", err))
	}
	return c.settle(errs)
}

// Pause closes the current session and folds its minutes into the
// stage total. Without a running session it does nothing and touches
// nothing.
func (c *Controller) Pause() error {
	return c.close(store.TimerPaused, store.SessionPaused)
}

// Stop behaves like Pause but finishes the session and returns the
// stage to stopped. Stopping a paused timer has no session to close
// and only rewrites the stage status.
func (c *Controller) Stop() error {
	if c.status == store.TimerPaused {
		c.status = store.TimerStopped
		total := c.totalMinutes
		var errs []error
		if err := c.ledger.UpdateStageTimer(c.stageID, store.StageTimerUpdate{
			TimerStatus:      store.TimerStopped,
			TimeSpentMinutes: &total,
		}); err != nil {
			errs = append(errs, fmt.Errorf("update stage: %w", err))
		}
		return c.settle(errs)
	}
	return c.close(store.TimerStopped, store.SessionCompleted)
}

func (c *Controller) close(timerStatus store.TimerStatus, sessionStatus store.SessionStatus) error {
	if c.status != store.TimerRunning {
		return nil
	}
	now := c.Clock()
	elapsed := c.elapsedMinutes(now)
	newTotal := c.totalMinutes + elapsed

	c.status = timerStatus
	c.totalMinutes = newTotal

	var errs []error
	if c.sessionID != "" {
		if err := c.ledger.UpdateSession(c.sessionID, store.SessionUpdate{
			Status:          sessionStatus,
			DurationMinutes: &elapsed,
			EndTime:         &now,
		}); err != nil {
			errs = append(errs, fmt.Errorf("close session: %w", err))
		}
	}
	if err := c.ledger.UpdateStageTimer(c.stageID, store.StageTimerUpdate{
		TimerStatus:      timerStatus,
		TimeSpentMinutes: &newTotal,
	}); err != nil {
		errs = append(errs, fmt.Errorf("update stage: %w", err))
	}
	c.sessionID = ""
	c.sessionStart = time.Time{}

	err := c.settle(errs)
	if c.OnTimeUpdate != nil {
		c.OnTimeUpdate(newTotal)
	}
	return err
}

// settle records the outcome of a persistence batch: any failure marks
// the controller desynced, a fully clean batch clears the flag.
func (c *Controller) settle(errs []error) error {
	if len(errs) > 0 {
		c.desynced = true
		return errors.Join(errs...)
	}
	c.desynced = false
	return nil
}

// Tick advances display time and enforces the auto-pause ceiling. It
// never writes unless the ceiling fires.
func (c *Controller) Tick(now time.Time) error {
	if c.status != store.TimerRunning {
		return nil
	}
	if c.autoPauseMinutes > 0 && !c.autoPauseFired && c.elapsedMinutes(now) >= c.autoPauseMinutes {
		c.autoPauseFired = true
		err := c.Pause()
		if c.OnAutoPause != nil {
			c.OnAutoPause()
		}
		return err
	}
	if c.OnTimeUpdate != nil {
		c.OnTimeUpdate(c.totalMinutes + c.elapsedMinutes(now))
	}
	return nil
}

// TimeSpent returns the stage total including the live run, in minutes.
func (c *Controller) TimeSpent() int {
	if c.status != store.TimerRunning {
		return c.totalMinutes
	}
	return c.totalMinutes + c.elapsedMinutes(c.Clock())
}

func (c *Controller) elapsedMinutes(now time.Time) int {
	d := now.Sub(c.sessionStart)
	if d < 0 {
		return 0
	}
	return int(d / time.Minute)
}

// FormatTime renders a minute total as zero-padded HH:MM.
func FormatTime(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
