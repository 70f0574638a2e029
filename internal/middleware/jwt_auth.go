package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/teamsn/socialnetwork/internal/models"
	"github.com/teamsn/socialnetwork/pkg/token"
)

// contextUserKey is where validated claims are stored on the echo context.
const contextUserKey = "user"

// JWTAuthMiddleware checks for a valid JWT and extracts user claims.
func JWTAuthMiddleware(tokens *token.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
			}

			// Expecting "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
			}

			claims, err := tokens.Parse(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			// Store user claims in context
			c.Set(contextUserKey, claims)

			return next(c)
		}
	}
}

// UserIDFromContext returns the authenticated user's ID, or 0 when the
// request carried no valid claims.
func UserIDFromContext(c echo.Context) uint {
	claims, ok := c.Get(contextUserKey).(*models.JwtCustomClaims)
	if !ok {
		return 0
	}
	return claims.UserID
}
