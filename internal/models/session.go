package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the active sign-in of one client (browser/device).
type Session struct {
	SessionID   string    `json:"sessionId"`   // signed session token
	ClientID    string    `json:"clientId"`    // device the session belongs to
	UID         string    `json:"uid"`         // account uid
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	Provider    string    `json:"provider"`
	CreatedAt   time.Time `json:"createdAt"`
	Expiry      time.Time `json:"expiry"`
}

// IsExpired checks if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().UTC().After(s.Expiry)
}

// Identity returns the principal the session was issued for.
func (s *Session) Identity() *Identity {
	return &Identity{
		UID:         s.UID,
		Email:       s.Email,
		DisplayName: s.DisplayName,
		Provider:    s.Provider,
	}
}

// AuthState holds the pending half of a federated popup sign-in.
type AuthState struct {
	State        string    `json:"state"`
	ClientID     string    `json:"clientId"`
	Provider     string    `json:"provider"`
	CodeVerifier string    `json:"codeVerifier"`
	Expiry       time.Time `json:"expiry"`
}

// IsExpired checks if the popup window has been open too long.
func (s *AuthState) IsExpired() bool {
	return time.Now().UTC().After(s.Expiry)
}

// SessionClaims are the claims of a signed session token. The subject is the account uid.
type SessionClaims struct {
	ClientID string `json:"cid"`
	jwt.RegisteredClaims
}

// OAuthUser is the verified identity returned by a federated provider.
type OAuthUser struct {
	Provider    string `json:"provider"`
	Subject     string `json:"sub"`
	Email       string `json:"email"`
	DisplayName string `json:"name"`
}
