package completion

import "sync"

// State selects which completion source serves the next request.
type State int

// Selector states.
const (
	// StateNormal routes requests to the schema/question source.
	StateNormal State = iota
	// StateSnippet routes requests to the snippet source.
	StateSnippet
)

func (s State) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateSnippet:
		return "snippet"
	default:
		return "unknown"
	}
}

// Selector tracks whether the cursor is inside a snippet reference.
// It is re-evaluated on every cursor move for the life of an editing session.
type Selector struct {
	mu     sync.Mutex
	state  State
	filter string
}

// NewSelector returns a selector in StateNormal.
func NewSelector() *Selector {
	return &Selector{}
}

// Update re-evaluates the state for a cursor at column of line and returns
// the new state along with the active snippet filter.
func (s *Selector) Update(line string, column int) (State, string) {
	name, ok := SnippetNameAt(line, column)

	s.mu.Lock()
	defer s.mu.Unlock()

	if ok {
		s.state, s.filter = StateSnippet, name
	} else {
		s.state, s.filter = StateNormal, ""
	}

	return s.state, s.filter
}

// State returns the current state and snippet filter.
func (s *Selector) State() (State, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state, s.filter
}
