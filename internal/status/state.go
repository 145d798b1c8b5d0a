package status

import (
	"fmt"
	"slices"
	"sync"

	"github.com/matheus3301/wpphistory/internal/bus"
)

// State is a phase of an export run.
type State string

const (
	Idle      State = "IDLE"
	Locating  State = "LOCATING"
	Staging   State = "STAGING"
	Exporting State = "EXPORTING"
	Done      State = "DONE"
	Failed    State = "FAILED"
)

// EventStatusChanged is published on every successful transition.
const EventStatusChanged = "run.status_changed"

// validTransitions defines allowed state transitions. Done and Failed are terminal.
var validTransitions = map[State][]State{
	Idle:      {Locating, Failed},
	Locating:  {Staging, Failed},
	Staging:   {Exporting, Failed},
	Exporting: {Done, Failed},
}

// Machine tracks and enforces run state transitions.
type Machine struct {
	mu      sync.RWMutex
	current State
	bus     *bus.Bus
}

// NewMachine creates a new state machine starting in Idle state.
func NewMachine(b *bus.Bus) *Machine {
	return &Machine{
		current: Idle,
		bus:     b,
	}
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Transition attempts to move to a new state. Returns error if transition is invalid.
func (m *Machine) Transition(to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	allowed := validTransitions[m.current]
	if !slices.Contains(allowed, to) {
		return fmt.Errorf("invalid transition from %s to %s", m.current, to)
	}
	from := m.current
	m.current = to
	m.bus.Emit(EventStatusChanged, StatusChange{From: from, To: to})
	return nil
}

// Fail moves to Failed from any non-terminal state. It reports whether the
// state changed.
func (m *Machine) Fail() bool {
	return m.Transition(Failed) == nil
}

// StatusChange is the payload for status change events.
type StatusChange struct {
	From State
	To   State
}
