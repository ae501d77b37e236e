package power

import (
	"sync"
	"time"
)

// Transition describes one observed raw-state change.
type Transition struct {
	Previous   State
	Current    State
	ObservedAt time.Time
}

// Tracker holds the last-known power state and decides which observations
// are meaningful changes. Two independent notifications can result from one
// observation: a raw-state change, and a flip of the logical on/off
// projection. Cooling -> Standby, for example, changes the raw state but
// both sides project to off, so only the raw notification fires.
type Tracker struct {
	mu      sync.Mutex
	current State

	onTransition  func(Transition)
	onPowerChange func(prevOn, curOn bool)
}

// NewTracker creates a Tracker. The current state before the first
// observation is always Unknown. Either callback may be nil.
func NewTracker(onTransition func(Transition), onPowerChange func(prevOn, curOn bool)) *Tracker {
	return &Tracker{
		current:       StateUnknown,
		onTransition:  onTransition,
		onPowerChange: onPowerChange,
	}
}

// Observe records a freshly observed state (Unknown when the query failed,
// which is a legitimate observation) and fires the change callbacks while
// holding the tracker lock, so notifications are serialized with all other
// state mutations. It reports whether the raw state changed.
func (t *Tracker) Observe(s State) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev := t.current
	if s == prev {
		return false
	}
	t.current = s

	if t.onTransition != nil {
		t.onTransition(Transition{Previous: prev, Current: s, ObservedAt: time.Now().UTC()})
	}
	if prev.IsOn() != s.IsOn() && t.onPowerChange != nil {
		t.onPowerChange(prev.IsOn(), s.IsOn())
	}
	return true
}

// Current returns the last-known power state.
func (t *Tracker) Current() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}
