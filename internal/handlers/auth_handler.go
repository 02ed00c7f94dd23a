package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/authflow"
	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/middleware"
	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/models"
	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/service"
	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/userstate"
)

// ClientRegistry hands out the auth flow machinery of a client.
type ClientRegistry interface {
	Client(id string) *service.Client
}

// PopupStarter begins federated popup sign-ins.
type PopupStarter interface {
	BeginPopup(ctx context.Context, clientID, provider string) (string, error)
}

// AuthResponse is returned by every flow endpoint that completed.
type AuthResponse struct {
	Outcome authflow.OutcomeKind `json:"outcome"`
	State   userstate.State      `json:"state"`
	// Token is the Bearer session token, set after a sign-in.
	Token string `json:"token,omitempty"`
}

type AuthHandler struct {
	Clients ClientRegistry
	Popups  PopupStarter
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(clients ClientRegistry, popups PopupStarter) *AuthHandler {
	return &AuthHandler{Clients: clients, Popups: popups}
}

func (h *AuthHandler) client(c echo.Context) *service.Client {
	return h.Clients.Client(middleware.GetClientID(c))
}

// BeginPopup returns the URL the client opens in its sign-in popup.
func (h *AuthHandler) BeginPopup(c echo.Context) error {
	provider := c.Param("provider")
	url, err := h.Popups.BeginPopup(c.Request().Context(), middleware.GetClientID(c), provider)
	if err != nil {
		if errors.Is(err, service.ErrUnknownProvider) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
		}
		log.Error().Err(err).Str("provider", provider).Msg("Failed to begin popup sign-in")
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to start sign-in"})
	}
	return c.JSON(http.StatusOK, models.PopupResponse{URL: url})
}

// PopupCallback receives the provider's redirect inside the popup and runs
// the federated sign-in.
func (h *AuthHandler) PopupCallback(c echo.Context) error {
	var popup models.PopupResult
	if err := c.Bind(&popup); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid callback parameters"})
	}
	popup.Provider = c.Param("provider")
	if popup.State == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "state parameter missing"})
	}
	return h.run(c, authflow.GoogleSignIn(popup))
}

func (h *AuthHandler) EmailSignIn(c echo.Context) error {
	var req models.EmailSignInRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
	}
	return h.run(c, authflow.EmailSignIn(req.Email, req.Password))
}

// SignUp creates the account and, once its profile exists, signs it in.
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req models.SignUpRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
	}
	if req.ConfirmPassword != "" && req.ConfirmPassword != req.Password {
		return c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{Error: "passwords don't match"})
	}

	client := h.client(c)
	settle(c, client)
	ctx := c.Request().Context()
	res, err := client.Coordinator.Dispatch(authflow.SignUp(req.DisplayName, req.Email, req.Password)).Wait(ctx)
	if err != nil || res.Continuation == nil {
		return h.respond(c, client, res, err)
	}
	res, err = res.Continuation.Wait(ctx)
	return h.respond(c, client, res, err)
}

func (h *AuthHandler) SignOut(c echo.Context) error {
	return h.run(c, authflow.SignOut())
}

// CheckSession restores the client's signed-in user from its session.
// It answers 204 when there is no session.
func (h *AuthHandler) CheckSession(c echo.Context) error {
	return h.run(c, authflow.CheckSession())
}

func (h *AuthHandler) run(c echo.Context, intent authflow.Intent) error {
	client := h.client(c)
	settle(c, client)
	res, err := client.Coordinator.Dispatch(intent).Wait(c.Request().Context())
	return h.respond(c, client, res, err)
}

func (h *AuthHandler) respond(c echo.Context, client *service.Client, res authflow.Result, err error) error {
	if err != nil {
		if errors.Is(err, authflow.ErrCoordinatorClosed) {
			return c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "server is shutting down"})
		}
		log.Warn().Err(err).Str("clientId", client.ID).Msg("Auth flow did not finish")
		return c.JSON(http.StatusGatewayTimeout, models.ErrorResponse{Error: "auth flow did not finish"})
	}
	if res.Superseded {
		return c.JSON(http.StatusConflict, models.ErrorResponse{Error: "superseded by a newer request"})
	}
	if res.Outcome == nil {
		return c.NoContent(http.StatusNoContent)
	}

	outcome := res.Outcome
	if outcome.Kind.IsFailure() {
		msg := outcome.Kind.String()
		if outcome.Err != nil {
			msg = outcome.Err.Error()
		}
		return c.JSON(failureStatus(outcome), models.ErrorResponse{Error: msg})
	}

	resp := AuthResponse{Outcome: outcome.Kind, State: client.Store.Snapshot()}
	if outcome.Kind == authflow.SignInSuccess {
		token, err := client.Auth.SessionToken(c.Request().Context())
		if err != nil {
			log.Warn().Err(err).Str("clientId", client.ID).Msg("Failed to read session token after sign-in")
		}
		resp.Token = token
	}
	return c.JSON(http.StatusOK, resp)
}

func failureStatus(o *authflow.Outcome) int {
	var storeErr *authflow.ProfileStoreError
	switch {
	case o.Kind == authflow.SignOutFailure:
		return http.StatusInternalServerError
	case errors.As(o.Err, &storeErr):
		return http.StatusInternalServerError
	case errors.Is(o.Err, service.ErrEmailAlreadyInUse):
		return http.StatusConflict
	case errors.Is(o.Err, service.ErrWeakPassword), errors.Is(o.Err, service.ErrInvalidEmail):
		return http.StatusUnprocessableEntity
	case errors.Is(o.Err, service.ErrInvalidState), errors.Is(o.Err, service.ErrUnknownProvider):
		return http.StatusBadRequest
	case o.Kind == authflow.SignInFailure:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}
