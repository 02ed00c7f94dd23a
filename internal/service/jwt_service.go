package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/models"
)

const (
	tokenIssuer   = "scs-storefront-auth"
	tokenAudience = "scs-storefront"
)

// JWTService signs session tokens with HS256.
type JWTService struct {
	jwtSecret     []byte
	tokenDuration time.Duration
}

var _ JWTGenerator = (*JWTService)(nil)

// NewJWTService creates a JWTService
func NewJWTService(secret string, tokenDuration time.Duration) *JWTService {
	return &JWTService{jwtSecret: []byte(secret), tokenDuration: tokenDuration}
}

// GenerateToken creates a new session token for an account on a client
func (s *JWTService) GenerateToken(uid, clientID string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.tokenDuration)
	claims := &models.SessionClaims{
		ClientID: clientID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	// Create token with claims
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	// Sign the token with the secret
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, exp, nil
}

func (s *JWTService) ValidateToken(tokenString string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, s.KeyFunc,
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// KeyFunc resolves the signing key, rejecting anything but HMAC tokens.
func (s *JWTService) KeyFunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return s.jwtSecret, nil
}
