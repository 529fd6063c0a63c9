// Package conversation defines the states of the chat router.
package conversation

import "fmt"

// State is a step in the router's fixed control flow.
type State uint8

// Router states. The zero value is Start.
const (
	Start State = iota
	Question
	Answer
	More
	Other
	WriteEmail
	// ActionWriteEmail is entered when the model asks to send an email.
	ActionWriteEmail
	Exit

	numStates
)

// NumStates is the number of defined states. Tables indexed by State use it
// for compile-time length checks.
const NumStates = int(numStates)

var names = [...]string{
	Start:            "START",
	Question:         "QUESTION",
	Answer:           "ANSWER",
	More:             "MORE",
	Other:            "OTHER",
	WriteEmail:       "WRITE_EMAIL",
	ActionWriteEmail: "ACTION_WRITE_EMAIL",
	Exit:             "EXIT",
}

// Fails to compile when a state has no name.
var _ = [1]struct{}{}[len(names)-NumStates]

var byName = func() map[string]State {
	m := make(map[string]State, NumStates)
	for i, n := range names {
		m[n] = State(i)
	}
	return m
}()

// String returns the token the model uses for the state.
func (s State) String() string {
	if s.IsValid() {
		return names[s]
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// IsValid reports whether s is one of the defined states.
func (s State) IsValid() bool {
	return s < numStates
}

// IsAction reports whether entering s triggers an action handler.
func (s State) IsAction() bool {
	return s == ActionWriteEmail
}

// ParseState matches token exactly against the state names.
func ParseState(token string) (State, bool) {
	s, ok := byName[token]
	return s, ok
}

// ParseAction matches token exactly against the action state names.
func ParseAction(token string) (State, bool) {
	s, ok := byName[token]
	if !ok || !s.IsAction() {
		return 0, false
	}
	return s, true
}

// All returns every state in declaration order.
func All() []State {
	out := make([]State, NumStates)
	for i := range out {
		out[i] = State(i)
	}
	return out
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("invalid state %d", uint8(s))
	}
	return []byte(names[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(b []byte) error {
	v, ok := ParseState(string(b))
	if !ok {
		return fmt.Errorf("unknown state %q", string(b))
	}
	*s = v
	return nil
}
