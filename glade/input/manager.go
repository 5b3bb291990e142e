package input

import (
	"time"

	"github.com/valerio/go-glade/glade/input/action"
	"github.com/valerio/go-glade/glade/input/event"
)

const (
	// debounceDuration is the minimum time between debounced events
	debounceDuration = 300 * time.Millisecond
)

// ButtonState is the per-frame state of a game control.
type ButtonState int

const (
	Up       ButtonState = iota // not held
	Pressed                     // went down this frame
	Down                        // held for more than one frame
	Released                    // went up this frame
)

func (s ButtonState) String() string {
	switch s {
	case Pressed:
		return "pressed"
	case Down:
		return "down"
	case Released:
		return "released"
	default:
		return "up"
	}
}

// Manager handles input actions and their associated callbacks, and tracks
// the state of game controls for game logic to poll.
type Manager struct {
	handlers      map[action.Action]map[event.Type][]func()
	lastTriggered map[action.Action]map[event.Type]time.Time
	states        [action.Count]ButtonState
	now           func() time.Time
}

func NewManager() *Manager {
	return &Manager{
		handlers:      make(map[action.Action]map[event.Type][]func()),
		lastTriggered: make(map[action.Action]map[event.Type]time.Time),
		now:           time.Now,
	}
}

// On registers a callback for a specific action and event type
func (m *Manager) On(act action.Action, evt event.Type, callback func()) {
	if m.handlers[act] == nil {
		m.handlers[act] = make(map[event.Type][]func())
	}
	m.handlers[act][evt] = append(m.handlers[act][evt], callback)
}

// Trigger handles the given action and event type.
func (m *Manager) Trigger(act action.Action, evt event.Type) {
	// Debounce Press and Release events of engine features; game controls
	// must see every transition
	if !act.IsGameInput() && (evt == event.Press || evt == event.Release) {
		now := m.now()
		if m.lastTriggered[act] == nil {
			m.lastTriggered[act] = make(map[event.Type]time.Time)
		}
		lastTime, seen := m.lastTriggered[act][evt]
		if seen && now.Sub(lastTime) < debounceDuration {
			return
		}
		m.lastTriggered[act][evt] = now
	}

	if act.IsGameInput() {
		m.updateState(act, evt)
	}

	for _, callback := range m.handlers[act][evt] {
		callback()
	}
}

func (m *Manager) updateState(act action.Action, evt event.Type) {
	state := &m.states[act]
	switch evt {
	case event.Press, event.Hold:
		if *state == Up || *state == Released {
			*state = Pressed
		}
	case event.Release:
		if *state == Pressed || *state == Down {
			*state = Released
		}
	}
}

// EndFrame advances edge states: Pressed becomes Down and Released becomes
// Up. The engine calls it once per frame after game logic ran.
func (m *Manager) EndFrame() {
	for i, s := range m.states {
		switch s {
		case Pressed:
			m.states[i] = Down
		case Released:
			m.states[i] = Up
		}
	}
}

// State returns the current state of a game control.
func (m *Manager) State(act action.Action) ButtonState {
	if act < 0 || int(act) >= len(m.states) {
		return Up
	}
	return m.states[act]
}

// IsDown reports whether the control is held, including the frame it went
// down.
func (m *Manager) IsDown(act action.Action) bool {
	s := m.State(act)
	return s == Pressed || s == Down
}

// WasPressed reports whether the control went down this frame.
func (m *Manager) WasPressed(act action.Action) bool {
	return m.State(act) == Pressed
}

// Reset releases every control, e.g. on a screen change.
func (m *Manager) Reset() {
	m.states = [action.Count]ButtonState{}
}
