package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/mocks"
	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/models"
)

func TestSessionJWT(t *testing.T) {
	setup := func() (*echo.Echo, *mocks.MockJWTGenerator) {
		tokens := new(mocks.MockJWTGenerator)
		e := echo.New()
		e.GET("/me", func(c echo.Context) error {
			claims := SessionClaims(c)
			if claims == nil {
				return c.NoContent(http.StatusInternalServerError)
			}
			return c.String(http.StatusOK, claims.Subject+"@"+claims.ClientID)
		}, SessionJWT(tokens))
		return e, tokens
	}

	t.Run("ValidToken", func(t *testing.T) {
		e, tokens := setup()
		claims := &models.SessionClaims{ClientID: "client-1"}
		claims.Subject = "uid-1"
		tokens.On("ValidateToken", "good-token").Return(claims, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "uid-1@client-1", rec.Body.String())
		tokens.AssertExpectations(t)
	})

	t.Run("InvalidToken", func(t *testing.T) {
		e, tokens := setup()
		tokens.On("ValidateToken", "bad-token").Return(nil, errors.New("expired")).Once()

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer bad-token")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"invalid or expired session token"}`, rec.Body.String())
	})

	t.Run("MissingHeader", func(t *testing.T) {
		e, tokens := setup()

		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		tokens.AssertNotCalled(t, "ValidateToken", mock.Anything)
	})
}
