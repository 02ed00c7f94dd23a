package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ClientIDKey is the context key of the requesting client's id.
const ClientIDKey = "clientId"

const clientCookieMaxAge = 365 * 24 * 60 * 60

// ClientID identifies the browser behind a request by a long-lived cookie,
// issuing a new id when the cookie is missing or malformed.
func ClientID(cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var id string
			if cookie, err := c.Cookie(cookieName); err == nil {
				if _, err := uuid.Parse(cookie.Value); err == nil {
					id = cookie.Value
				}
			}
			if id == "" {
				id = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     cookieName,
					Value:    id,
					Path:     "/",
					MaxAge:   clientCookieMaxAge,
					HttpOnly: true,
					Secure:   c.IsTLS(),
					SameSite: http.SameSiteLaxMode, // the popup callback is a top-level navigation
				})
				log.Debug().Str("clientId", id).Msg("Issued new client id")
			}
			c.Set(ClientIDKey, id)
			return next(c)
		}
	}
}

// GetClientID returns the id set by ClientID.
func GetClientID(c echo.Context) string {
	id, _ := c.Get(ClientIDKey).(string)
	return id
}
