// Package turn orders who acts next.
package turn

import (
	"cmp"
	"log/slog"
	"slices"
	"sync"

	"github.com/udisondev/skirmish/internal/model"
)

// State is the scheduler lifecycle.
type State int8

const (
	StateIdle State = iota
	StateRunning
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	default:
		return "finished"
	}
}

// Scheduler is a FIFO turn queue seeded once by AGI.
//
// Initial order is AGI descending with ties kept in insertion order. After
// that, units go to the back of the queue when they finish acting, so
// order never changes with stat modifiers. The scheduler does not look at
// HP when popping: callers skip dead units themselves.
//
// Thread-safe: a presentation goroutine may read the forecast while the
// battle loop advances the queue.
type Scheduler struct {
	mu       sync.Mutex
	state    State
	current  *model.Combatant
	queue    []*model.Combatant
	onChange func(forecast []*model.Combatant)
}

// NewScheduler creates an idle scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// OnForecastChanged registers fn to be called with the new forecast after
// every change. fn runs outside the scheduler lock.
func (s *Scheduler) OnForecastChanged(fn func(forecast []*model.Combatant)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Initialize replaces the queue with units ordered by AGI and starts the
// scheduler. Nil entries are dropped.
func (s *Scheduler) Initialize(units []*model.Combatant) {
	queue := slices.DeleteFunc(slices.Clone(units), func(c *model.Combatant) bool { return c == nil })
	slices.SortStableFunc(queue, func(a, b *model.Combatant) int {
		return cmp.Compare(b.Base().AGI, a.Base().AGI)
	})

	s.mu.Lock()
	s.queue = queue
	s.current = nil
	s.state = StateRunning
	s.mu.Unlock()

	slog.Debug("turn queue initialized", "units", len(queue))
	s.notify()
}

// PopNext removes the head of the queue and makes it current.
// Returns false once the queue is exhausted; the scheduler is then
// finished.
func (s *Scheduler) PopNext() (*model.Combatant, bool) {
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return nil, false
	}
	if len(s.queue) == 0 {
		s.state = StateFinished
		s.current = nil
		s.mu.Unlock()
		s.notify()
		return nil, false
	}

	next := s.queue[0]
	s.queue[0] = nil
	s.queue = s.queue[1:]
	s.current = next
	s.mu.Unlock()

	s.notify()
	return next, true
}

// Requeue appends c to the back of the queue. Dead units are not
// requeued.
func (s *Scheduler) Requeue(c *model.Combatant) bool {
	if c == nil || !c.Alive() {
		return false
	}

	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return false
	}
	if s.current == c {
		s.current = nil
	}
	s.queue = append(s.queue, c)
	s.mu.Unlock()

	s.notify()
	return true
}

// Finish stops the scheduler and drops the queue.
func (s *Scheduler) Finish() {
	s.mu.Lock()
	if s.state == StateFinished {
		s.mu.Unlock()
		return
	}
	s.state = StateFinished
	s.current = nil
	s.queue = nil
	s.mu.Unlock()

	s.notify()
}

// Forecast returns the current unit (if any) followed by the queue.
func (s *Scheduler) Forecast() []*model.Combatant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forecastLocked()
}

// Current returns the unit whose turn it is, or nil.
func (s *Scheduler) Current() *model.Combatant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Len returns the number of queued units, not counting the current one.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// State returns the lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Scheduler) forecastLocked() []*model.Combatant {
	out := make([]*model.Combatant, 0, len(s.queue)+1)
	if s.current != nil {
		out = append(out, s.current)
	}
	return append(out, s.queue...)
}

func (s *Scheduler) notify() {
	s.mu.Lock()
	fn := s.onChange
	var forecast []*model.Combatant
	if fn != nil {
		forecast = s.forecastLocked()
	}
	s.mu.Unlock()

	if fn != nil {
		fn(forecast)
	}
}
