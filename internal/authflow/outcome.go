package authflow

import (
	"fmt"

	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/models"
)

// OutcomeKind identifies the terminal result of a flow.
type OutcomeKind int

const (
	SignInSuccess OutcomeKind = iota + 1
	SignInFailure
	SignOutSuccess
	SignOutFailure
	SignUpSuccess
	SignUpFailure
)

var outcomeNames = [...]string{
	SignInSuccess:  "SIGN_IN_SUCCESS",
	SignInFailure:  "SIGN_IN_FAILURE",
	SignOutSuccess: "SIGN_OUT_SUCCESS",
	SignOutFailure: "SIGN_OUT_FAILURE",
	SignUpSuccess:  "SIGN_UP_SUCCESS",
	SignUpFailure:  "SIGN_UP_FAILURE",
}

func (k OutcomeKind) String() string {
	if k > 0 && int(k) < len(outcomeNames) {
		return outcomeNames[k]
	}
	return fmt.Sprintf("OutcomeKind(%d)", int(k))
}

// IsFailure reports whether k is one of the failure kinds.
func (k OutcomeKind) IsFailure() bool {
	return k == SignInFailure || k == SignOutFailure || k == SignUpFailure
}

func (k OutcomeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Outcome is the single terminal result emitted by a task.
type Outcome struct {
	Kind OutcomeKind

	User *models.ProfileRecord // SignInSuccess

	Identity       *models.Identity // SignUpSuccess
	AdditionalData map[string]any   // SignUpSuccess

	Err error // failures
}

func signInSuccess(user *models.ProfileRecord) Outcome {
	return Outcome{Kind: SignInSuccess, User: user}
}

func signUpSuccess(identity *models.Identity, additionalData map[string]any) Outcome {
	return Outcome{Kind: SignUpSuccess, Identity: identity, AdditionalData: additionalData}
}

func failure(kind OutcomeKind, err error) Outcome {
	return Outcome{Kind: kind, Err: err}
}

// OutcomeSink receives applied outcomes. Apply is called for at most one
// outcome at a time. It returns the task it started in response to the
// outcome, or nil.
type OutcomeSink interface {
	Apply(Outcome) *Task
}
