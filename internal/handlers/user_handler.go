package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/authflow"
	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/middleware"
	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/models"
	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/service"
)

type UserHandler struct {
	Clients ClientRegistry
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(clients ClientRegistry) *UserHandler {
	return &UserHandler{Clients: clients}
}

// settle waits for a session check that is still restoring the client's user,
// so a new flow does not race the restore of an earlier session.
func settle(c echo.Context, client *service.Client) {
	task := client.Coordinator.Latest(authflow.IntentCheckSession)
	if task == nil {
		return
	}
	if _, err := task.Wait(c.Request().Context()); err != nil {
		log.Debug().Err(err).Str("clientId", client.ID).Msg("Session check still running")
	}
}

// State returns the client's current user state.
func (h *UserHandler) State(c echo.Context) error {
	client := h.Clients.Client(middleware.GetClientID(c))
	settle(c, client)
	return c.JSON(http.StatusOK, client.Store.Snapshot())
}

// Me returns the profile of the user the Bearer session token was issued for.
func (h *UserHandler) Me(c echo.Context) error {
	claims := middleware.SessionClaims(c)
	if claims == nil {
		log.Error().Str("path", c.Path()).Msg("Session claims not found in context")
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "not signed in"})
	}

	client := h.Clients.Client(claims.ClientID)
	settle(c, client)
	user := client.Store.Snapshot().CurrentUser
	if user == nil || user.ID != claims.Subject {
		log.Debug().Str("uid", claims.Subject).Str("clientId", claims.ClientID).Msg("Token does not match the client's current user")
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "session is no longer active"})
	}
	return c.JSON(http.StatusOK, user)
}
