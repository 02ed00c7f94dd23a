// Package authflow coordinates the storefront's sign-in, sign-up and sign-out
// flows. Every dispatched intent runs as its own task and settles into at most
// one Outcome, which is handed to an OutcomeSink.
//
// Tasks of the same intent kind supersede each other: when a kind is dispatched
// again before the previous task finished, the older task still runs to
// completion but its outcome is discarded.
package authflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/models"
	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/repository"
)

var (
	ErrCoordinatorClosed = errors.New("auth flow coordinator is closed")
	ErrUnknownIntent     = errors.New("unknown intent")
)

var errNoIdentity = errors.New("provider returned no identity")

// AuthProvider is the identity service the flows call into.
type AuthProvider interface {
	SignInWithPopup(ctx context.Context, popup models.PopupResult) (*models.Identity, error)
	SignInWithEmailAndPassword(ctx context.Context, email, password string) (*models.Identity, error)
	CreateUserWithEmailAndPassword(ctx context.Context, email, password string) (*models.Identity, error)
	SignOut(ctx context.Context) error
	// CurrentSession returns nil, nil when there is no active session.
	CurrentSession(ctx context.Context) (*models.Identity, error)
}

// Coordinator runs one listener per IntentKind.
type Coordinator struct {
	auth     AuthProvider
	profiles repository.ProfileRepository
	sink     OutcomeSink
	ctx      context.Context

	mu     sync.Mutex
	gens   map[IntentKind]uint64
	latest map[IntentKind]*Task
	closed bool

	applyMu sync.Mutex
	wg      sync.WaitGroup
}

// NewCoordinator creates a Coordinator whose tasks run on ctx. Provider calls
// are never cancelled by supersession; only ctx bounds them.
func NewCoordinator(ctx context.Context, auth AuthProvider, profiles repository.ProfileRepository, sink OutcomeSink) *Coordinator {
	return &Coordinator{
		auth:     auth,
		profiles: profiles,
		sink:     sink,
		ctx:      ctx,
		gens:     make(map[IntentKind]uint64),
		latest:   make(map[IntentKind]*Task),
	}
}

// Result is what a finished task produced.
type Result struct {
	// Outcome is the applied outcome; nil when the task was superseded or
	// ended quiescently (session check without a session).
	Outcome    *Outcome
	Superseded bool
	// Continuation is the task the sink started after applying Outcome,
	// such as finishSignUp after a sign-up.
	Continuation *Task
}

// Task is one running invocation of a listener.
type Task struct {
	Kind IntentKind

	gen    uint64
	done   chan struct{}
	result Result
	err    error
}

// Done is closed once the task's outcome has been applied or discarded.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finishes or ctx is done.
func (t *Task) Wait(ctx context.Context) (Result, error) {
	select {
	case <-t.done:
		return t.result, t.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func finishedTask(kind IntentKind, err error) *Task {
	t := &Task{Kind: kind, done: make(chan struct{}), err: err}
	close(t.done)
	return t
}

// Dispatch starts the listener for intent and returns its task.
func (c *Coordinator) Dispatch(intent Intent) *Task {
	if _, ok := listenerNames[intent.Kind]; !ok {
		return finishedTask(intent.Kind, fmt.Errorf("%w: %v", ErrUnknownIntent, intent.Kind))
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return finishedTask(intent.Kind, ErrCoordinatorClosed)
	}
	c.gens[intent.Kind]++
	t := &Task{Kind: intent.Kind, gen: c.gens[intent.Kind], done: make(chan struct{})}
	c.latest[intent.Kind] = t
	c.wg.Add(1)
	c.mu.Unlock()

	log.Debug().Stringer("intent", intent.Kind).Str("listener", listenerNames[intent.Kind]).Uint64("generation", t.gen).Msg("Dispatching auth intent")
	go c.run(t, intent)
	return t
}

// FinishSignUp is the continuation of a successful sign-up: it resolves the
// new account's profile and signs it in.
func (c *Coordinator) FinishSignUp(identity *models.Identity, additionalData map[string]any) *Task {
	return c.Dispatch(SignUpSucceeded(identity, additionalData))
}

// Latest returns the most recently dispatched task of kind, or nil.
func (c *Coordinator) Latest(kind IntentKind) *Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest[kind]
}

// Close stops accepting intents and waits for running tasks to settle.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.wg.Wait()
}

func (c *Coordinator) isCurrent(t *Task) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[t.Kind] == t.gen
}

func (c *Coordinator) run(t *Task, intent Intent) {
	defer c.wg.Done()
	defer close(t.done)

	outcome, emit := c.handle(c.ctx, intent)

	c.applyMu.Lock()
	defer c.applyMu.Unlock()

	if !c.isCurrent(t) {
		log.Debug().Stringer("intent", t.Kind).Uint64("generation", t.gen).Msg("Discarding superseded auth task result")
		t.result = Result{Superseded: true}
		return
	}
	if !emit {
		return
	}
	if outcome.Err != nil {
		log.Warn().Err(outcome.Err).Stringer("intent", t.Kind).Stringer("outcome", outcome.Kind).Msg("Auth flow failed")
	} else {
		log.Info().Stringer("intent", t.Kind).Stringer("outcome", outcome.Kind).Msg("Auth flow completed")
	}
	next := c.sink.Apply(outcome)
	t.result = Result{Outcome: &outcome, Continuation: next}
}

var listenerNames = map[IntentKind]string{
	IntentGoogleSignIn:    "signInWithGoogle",
	IntentEmailSignIn:     "signInWithEmail",
	IntentCheckSession:    "checkSession",
	IntentSignOut:         "signOut",
	IntentSignUp:          "signUp",
	IntentSignUpSucceeded: "finishSignUp",
}

// handle runs the listener for intent. emit is false only for a session check
// that found no session.
func (c *Coordinator) handle(ctx context.Context, intent Intent) (outcome Outcome, emit bool) {
	switch intent.Kind {
	case IntentGoogleSignIn:
		identity, err := c.auth.SignInWithPopup(ctx, intent.Popup)
		if err = providerResult("signInWithPopup", identity, err); err != nil {
			return failure(SignInFailure, err), true
		}
		return c.resolveProfileAndSignIn(ctx, identity, nil), true

	case IntentEmailSignIn:
		identity, err := c.auth.SignInWithEmailAndPassword(ctx, intent.Email, intent.Password)
		if err = providerResult("signInWithEmailAndPassword", identity, err); err != nil {
			return failure(SignInFailure, err), true
		}
		return c.resolveProfileAndSignIn(ctx, identity, nil), true

	case IntentCheckSession:
		identity, err := c.auth.CurrentSession(ctx)
		if err != nil {
			return failure(SignInFailure, &ProviderError{Op: "currentSession", Err: err}), true
		}
		if identity == nil {
			log.Debug().Msg("No active session")
			return Outcome{}, false
		}
		return c.resolveProfileAndSignIn(ctx, identity, nil), true

	case IntentSignOut:
		if err := c.auth.SignOut(ctx); err != nil {
			return failure(SignOutFailure, &ProviderError{Op: "signOut", Err: err}), true
		}
		return Outcome{Kind: SignOutSuccess}, true

	case IntentSignUp:
		return c.signUp(ctx, intent), true

	case IntentSignUpSucceeded:
		return c.resolveProfileAndSignIn(ctx, intent.Identity, intent.AdditionalData), true
	}
	panic(fmt.Sprintf("authflow: no listener for %v", intent.Kind))
}

func (c *Coordinator) signUp(ctx context.Context, intent Intent) Outcome {
	identity, err := c.auth.CreateUserWithEmailAndPassword(ctx, intent.Email, intent.Password)
	if err = providerResult("createUserWithEmailAndPassword", identity, err); err != nil {
		return failure(SignUpFailure, err)
	}
	log.Debug().Str("uid", identity.UID).Str("email", identity.Email).Msg("Account created on sign-up")

	additionalData := map[string]any{models.ProfileFieldDisplayName: intent.DisplayName}
	if _, err := c.profiles.EnsureProfile(ctx, identity, additionalData); err != nil {
		return failure(SignUpFailure, &ProfileStoreError{Op: "ensureProfile", Err: err})
	}
	return signUpSuccess(identity, additionalData)
}

// resolveProfileAndSignIn makes sure the identity has a profile document,
// reads it back and turns it into the sign-in outcome.
func (c *Coordinator) resolveProfileAndSignIn(ctx context.Context, identity *models.Identity, additionalData map[string]any) Outcome {
	if identity == nil {
		return failure(SignInFailure, &ProfileStoreError{Op: "ensureProfile", Err: errNoIdentity})
	}
	handle, err := c.profiles.EnsureProfile(ctx, identity, additionalData)
	if err != nil {
		return failure(SignInFailure, &ProfileStoreError{Op: "ensureProfile", Err: err})
	}
	record, err := handle.Fetch(ctx)
	if err != nil {
		return failure(SignInFailure, &ProfileStoreError{Op: "fetch", Err: err})
	}
	record.ID = handle.ID()
	return signInSuccess(record)
}

func providerResult(op string, identity *models.Identity, err error) error {
	if err != nil {
		return &ProviderError{Op: op, Err: err}
	}
	if identity == nil {
		return &ProviderError{Op: op, Err: errNoIdentity}
	}
	return nil
}
