// Package userstate holds the storefront's current-user state and reduces
// auth flow outcomes into it.
package userstate

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/authflow"
	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/models"
)

// State is the user slice of the storefront state.
type State struct {
	CurrentUser *models.ProfileRecord `json:"currentUser"`
	Error       string                `json:"error,omitempty"`
	ErrorKind   authflow.OutcomeKind  `json:"errorKind,omitempty"`
}

// Reduce returns the state after outcome o.
func Reduce(state State, o authflow.Outcome) State {
	switch {
	case o.Kind == authflow.SignInSuccess:
		return State{CurrentUser: o.User}
	case o.Kind == authflow.SignOutSuccess:
		return State{}
	case o.Kind.IsFailure():
		state.ErrorKind = o.Kind
		state.Error = "unknown error"
		if o.Err != nil {
			state.Error = o.Err.Error()
		}
		return state
	}
	return state
}

// SignUpContinuation is told about every applied SignUpSuccess so the new
// account can be signed in.
type SignUpContinuation interface {
	FinishSignUp(identity *models.Identity, additionalData map[string]any) *authflow.Task
}

// Listener is notified after every applied outcome.
type Listener func(State, authflow.Outcome)

// Store is an authflow.OutcomeSink.
type Store struct {
	mu           sync.RWMutex
	state        State
	listeners    map[int]Listener
	nextListener int
	continuation SignUpContinuation
}

var _ authflow.OutcomeSink = (*Store)(nil)

func NewStore() *Store {
	return &Store{listeners: make(map[int]Listener)}
}

// ContinueSignUpWith sets where successful sign-ups are continued.
func (s *Store) ContinueSignUpWith(c SignUpContinuation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.continuation = c
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers l and returns a func that removes it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = l
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Apply reduces o into the state and notifies listeners. After a
// SignUpSuccess it returns the sign-up continuation task.
func (s *Store) Apply(o authflow.Outcome) *authflow.Task {
	s.mu.Lock()
	s.state = Reduce(s.state, o)
	state := s.state
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	continuation := s.continuation
	s.mu.Unlock()

	for _, l := range listeners {
		l(state, o)
	}

	if o.Kind != authflow.SignUpSuccess {
		return nil
	}
	if continuation == nil {
		log.Warn().Msg("Sign-up succeeded but no continuation is configured")
		return nil
	}
	return continuation.FinishSignUp(o.Identity, o.AdditionalData)
}
