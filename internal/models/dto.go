package models

// PopupResult is what the federated provider's popup hands back after the user
// finishes (or abandons) the consent screen.
type PopupResult struct {
	Provider         string `json:"provider"`
	State            string `json:"state" query:"state"`
	Code             string `json:"code" query:"code"`
	Error            string `json:"error,omitempty" query:"error"`
	ErrorDescription string `json:"errorDescription,omitempty" query:"error_description"`
}

type EmailSignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignUpRequest struct {
	DisplayName     string `json:"displayName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword,omitempty"`
}

// PopupResponse carries the URL the client should open in the sign-in popup.
type PopupResponse struct {
	URL string `json:"url"`
}

// ErrorResponse standard error format
type ErrorResponse struct {
	Error string `json:"error"`
}
