package authflow

import (
	"fmt"

	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/models"
)

// IntentKind identifies a user intent. Each kind has exactly one listener.
type IntentKind int

const (
	IntentGoogleSignIn IntentKind = iota
	IntentEmailSignIn
	IntentCheckSession
	IntentSignOut
	IntentSignUp
	IntentSignUpSucceeded
)

var intentNames = [...]string{
	IntentGoogleSignIn:    "GOOGLE_SIGN_IN_START",
	IntentEmailSignIn:     "EMAIL_SIGN_IN_START",
	IntentCheckSession:    "CHECK_USER_SESSION",
	IntentSignOut:         "SIGN_OUT_START",
	IntentSignUp:          "SIGN_UP_START",
	IntentSignUpSucceeded: "SIGN_UP_SUCCESS",
}

func (k IntentKind) String() string {
	if k >= 0 && int(k) < len(intentNames) {
		return intentNames[k]
	}
	return fmt.Sprintf("IntentKind(%d)", int(k))
}

// Intent is a user request for an authentication flow.
// Only the fields relevant to Kind are set.
type Intent struct {
	Kind IntentKind

	Popup models.PopupResult // GoogleSignIn

	Email       string // EmailSignIn, SignUp
	Password    string // EmailSignIn, SignUp
	DisplayName string // SignUp

	Identity       *models.Identity // SignUpSucceeded
	AdditionalData map[string]any   // SignUpSucceeded
}

func GoogleSignIn(popup models.PopupResult) Intent {
	return Intent{Kind: IntentGoogleSignIn, Popup: popup}
}

func EmailSignIn(email, password string) Intent {
	return Intent{Kind: IntentEmailSignIn, Email: email, Password: password}
}

func CheckSession() Intent {
	return Intent{Kind: IntentCheckSession}
}

func SignOut() Intent {
	return Intent{Kind: IntentSignOut}
}

func SignUp(displayName, email, password string) Intent {
	return Intent{Kind: IntentSignUp, DisplayName: displayName, Email: email, Password: password}
}

func SignUpSucceeded(identity *models.Identity, additionalData map[string]any) Intent {
	return Intent{Kind: IntentSignUpSucceeded, Identity: identity, AdditionalData: additionalData}
}
