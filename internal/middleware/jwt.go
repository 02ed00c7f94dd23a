package middleware

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/models"
	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/service"
)

// ClaimsKey is the context key the validated *models.SessionClaims are stored under.
const ClaimsKey = "user"

// SessionJWT guards a route with the Bearer session token issued on sign-in.
func SessionJWT(tokens service.JWTGenerator) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey: ClaimsKey,
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return tokens.ValidateToken(auth)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			log.Debug().Err(err).Str("path", c.Path()).Msg("Rejected session token")
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid or expired session token"})
		},
	})
}

// SessionClaims returns the claims stored by SessionJWT, or nil.
func SessionClaims(c echo.Context) *models.SessionClaims {
	claims, _ := c.Get(ClaimsKey).(*models.SessionClaims)
	return claims
}
