package router

import (
	"github.com/labstack/echo/v4"

	"github.com/SimpnicServerTeam/scs-storefront-auth/internal/handlers"
)

// SetupAuthRoutes registers the sign-in, sign-up and sign-out flows.
// clientID must identify the requesting browser.
func SetupAuthRoutes(e *echo.Echo, authHandler *handlers.AuthHandler, clientID echo.MiddlewareFunc) {
	api := e.Group("/api/auth", clientID)

	api.POST("/:provider/popup", authHandler.BeginPopup)      // Start a federated popup sign-in
	api.GET("/:provider/callback", authHandler.PopupCallback) // Popup redirect target
	api.POST("/email/sign-in", authHandler.EmailSignIn)
	api.POST("/sign-up", authHandler.SignUp)
	api.POST("/sign-out", authHandler.SignOut)
	api.GET("/session", authHandler.CheckSession) // Restore the user from an existing session
}

func SetupUserRoutes(e *echo.Echo, userHandler *handlers.UserHandler, clientID, sessionJWT echo.MiddlewareFunc) {
	user := e.Group("/api/user")

	user.GET("/state", userHandler.State, clientID)
	user.GET("/me", userHandler.Me, sessionJWT)
}
