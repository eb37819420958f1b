package intro

import "sync"

type State int

const (
	Loading State = iota
	Fireworks
	Flower
	Main
)

func (s State) String() string {
	switch s {
	case Loading:
		return "LOADING"
	case Fireworks:
		return "FIREWORKS"
	case Flower:
		return "FLOWER"
	case Main:
		return "MAIN"
	default:
		return "UNKNOWN"
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// allowed lists the states each target may be entered from.
var allowed = map[State][]State{
	Fireworks: {Loading},
	Flower:    {Fireworks},
	Main:      {Fireworks, Flower},
}

// Machine holds the intro state. It only ever moves forward.
type Machine struct {
	mu    sync.Mutex
	state State
}

func NewMachine() *Machine {
	return &Machine{state: Loading}
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Machine) Is(s State) bool {
	return m.State() == s
}

// Advance moves to the target state if the current state allows it. It
// returns the resulting state and whether a transition happened.
func (m *Machine) Advance(to State) (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, from := range allowed[to] {
		if m.state == from {
			m.state = to
			return to, true
		}
	}
	return m.state, false
}
