package auth

import (
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "github.com/haseeb5i/socket-task/internal/errors"
)

// Context keys set by the middleware for downstream handlers.
const (
	ContextKeyWallet    = "wallet"
	ContextKeyRole      = "role"
	ContextKeySessionID = "tokenSessionId"
)

// Middleware extracts and verifies the bearer token, storing the claims in
// the echo context. Tokens may arrive in the Authorization header or, for
// websocket upgrades where browsers cannot set headers, in the "token" query
// parameter.
func Middleware(tokens *TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c)
			if raw == "" {
				return apperrors.UnauthorizedError("missing token")
			}

			claims, err := tokens.Verify(raw)
			if err != nil {
				return apperrors.UnauthorizedError("invalid token")
			}

			c.Set(ContextKeyWallet, claims.Wallet)
			c.Set(ContextKeyRole, claims.Role)
			c.Set(ContextKeySessionID, claims.SessionID)
			return next(c)
		}
	}
}

// RequireAdmin rejects identities without the admin role. Must run after
// Middleware.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if role, _ := c.Get(ContextKeyRole).(string); role != RoleAdmin {
			return apperrors.ForbiddenError("admin role required")
		}
		return next(c)
	}
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}
	return c.QueryParam("token")
}
