package relay

import (
	"sync"

	"relaychat/internal/pkg/errs"
)

// State is a connection's lifecycle stage.
type State int

const (
	StateConnecting State = iota
	StateAuthenticating
	StateAuthenticated
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// transitions lists the allowed next states for each state. Closed is terminal.
var transitions = map[State][]State{
	StateConnecting:     {StateAuthenticating},
	StateAuthenticating: {StateAuthenticated, StateClosed},
	StateAuthenticated:  {StateClosed},
}

// Session tracks the lifecycle of one connection.
type Session struct {
	mu sync.Mutex

	handle   Handle
	state    State
	identity string
}

// NewSession returns a Session in StateConnecting.
func NewSession(handle Handle) *Session {
	return &Session{handle: handle, state: StateConnecting}
}

// Handle returns the connection the session belongs to.
func (s *Session) Handle() Handle {
	return s.handle
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Identity returns the verified identity, or "" before authentication.
func (s *Session) Identity() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.identity
}

// beginAuthentication moves Connecting to Authenticating.
func (s *Session) beginAuthentication() *errs.CustomError {
	return s.transition(StateAuthenticating, "")
}

// authenticate moves Authenticating to Authenticated under identity.
func (s *Session) authenticate(identity string) *errs.CustomError {
	return s.transition(StateAuthenticated, identity)
}

// close moves the session to Closed. It reports whether this call closed it.
func (s *Session) close() bool {
	return s.transition(StateClosed, "") == nil
}

func (s *Session) transition(to State, identity string) *errs.CustomError {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, allowed := range transitions[s.state] {
		if allowed == to {
			s.state = to
			if identity != "" {
				s.identity = identity
			}
			return nil
		}
	}

	return errs.NewError(errs.ErrInvalidStateTransition, s.state, to)
}
