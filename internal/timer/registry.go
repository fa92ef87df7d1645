package timer

import (
	"sync"

	"github.com/institutofocos/consultorpro-sub003/internal/store"
)

// Registry keeps one controller per stage so switching views never
// spawns a second state machine for the same stage.
type Registry struct {
	mu          sync.Mutex
	ledger      Ledger
	controllers map[int64]*Controller
}

func NewRegistry(ledger Ledger) *Registry {
	return &Registry{
		ledger:      ledger,
		controllers: make(map[int64]*Controller),
	}
}

// Obtain returns the controller for the stage, creating one seeded
// from the stage row on first use.
func (r *Registry) Obtain(stage *store.Stage) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.controllers[stage.ID]; ok {
		return c
	}
	c := New(r.ledger, stage)
	r.controllers[stage.ID] = c
	return c
}

// Get returns the controller for a stage if one exists.
func (r *Registry) Get(stageID int64) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.controllers[stageID]
	return c, ok
}

// Running returns the controllers currently in the running state.
func (r *Registry) Running() []*Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	var running []*Controller
	for _, c := range r.controllers {
		if c.Status() == store.TimerRunning {
			running = append(running, c)
		}
	}
	return running
}

// Remove drops a stage's controller, e.g. after the stage is deleted.
func (r *Registry) Remove(stageID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.controllers, stageID)
}
