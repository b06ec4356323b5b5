package httpapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/smazurov/progresslapse/internal/server/auth"
)

const userIDContextKey = "user_id"

// authMiddleware requires a valid Bearer token on every request and
// stores the authenticated user id in the echo context.
func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "authentication required"})
		}

		userID, err := auth.GetUserIDFromToken(strings.TrimPrefix(header, prefix), []byte(s.cfg.JWTSecret))
		if err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "invalid or expired token"})
		}

		c.Set(userIDContextKey, userID)
		return next(c)
	}
}

// userID returns the authenticated user id set by authMiddleware.
func userID(c echo.Context) string {
	id, _ := c.Get(userIDContextKey).(string)
	return id
}
