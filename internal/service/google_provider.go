package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/models"
)

const (
	GoogleProviderName = "google"
	googleIssuerURL    = "https://accounts.google.com"
)

// GoogleProvider signs users in with Google using the authorization code
// flow with PKCE and verifies the returned ID token.
type GoogleProvider struct {
	oauthConfig *oauth2.Config
	issuerURL   string

	mu       sync.Mutex
	verifier *oidc.IDTokenVerifier
}

var _ FederatedProvider = (*GoogleProvider)(nil)

// NewGoogleProvider creates a GoogleProvider. The issuer's discovery document
// is fetched on first use.
func NewGoogleProvider(oauthConfig *oauth2.Config) *GoogleProvider {
	return &GoogleProvider{oauthConfig: oauthConfig, issuerURL: googleIssuerURL}
}

func (p *GoogleProvider) Name() string {
	return GoogleProviderName
}

// AuthCodeURL generates the URL for the Google consent page
func (p *GoogleProvider) AuthCodeURL(state, verifier string) string {
	return p.oauthConfig.AuthCodeURL(state,
		oauth2.AccessTypeOnline,
		oauth2.S256ChallengeOption(verifier),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
}

// Exchange exchanges the authorization code and returns the user described by
// the verified ID token.
func (p *GoogleProvider) Exchange(ctx context.Context, code, verifier string) (*models.OAuthUser, error) {
	token, err := p.oauthConfig.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		log.Error().Err(err).Str("provider", GoogleProviderName).Msg("Error exchanging OAuth code for token")
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}
	if !token.Valid() {
		log.Warn().Str("provider", GoogleProviderName).Msg("Received invalid OAuth token after exchange")
		return nil, errors.New("received invalid token")
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		log.Warn().Msg("ID token missing from OAuth token response")
		return nil, errors.New("id_token missing from response")
	}

	idTokenVerifier, err := p.idTokenVerifier(ctx)
	if err != nil {
		return nil, err
	}
	idToken, err := idTokenVerifier.Verify(ctx, rawIDToken)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to verify ID token")
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to decode ID token claims: %w", err)
	}
	log.Info().Str("issuer", idToken.Issuer).Str("subject", idToken.Subject).Msg("ID Token Verified Successfully")

	user := &models.OAuthUser{
		Provider:    GoogleProviderName,
		Subject:     idToken.Subject,
		DisplayName: claims.Name,
	}
	if claims.EmailVerified {
		user.Email = claims.Email
	}
	return user, nil
}

func (p *GoogleProvider) idTokenVerifier(ctx context.Context) (*oidc.IDTokenVerifier, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.verifier != nil {
		return p.verifier, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	provider, err := oidc.NewProvider(ctx, p.issuerURL)
	if err != nil {
		log.Error().Err(err).Str("providerURL", p.issuerURL).Msg("Failed to create OIDC provider")
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}
	p.verifier = provider.Verifier(&oidc.Config{ClientID: p.oauthConfig.ClientID})
	return p.verifier, nil
}
