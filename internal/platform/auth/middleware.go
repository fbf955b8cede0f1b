package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the sanitized view of an authenticated user attached to the
// request context. It never carries the password hash.
type Identity struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	FullName string    `json:"fullName"`
}

// IdentityResolver looks up the user record behind a verified token subject.
// A still-valid token for a deleted account must resolve to an error.
type IdentityResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID) (*Identity, error)
}

// Middleware authenticates every request on the group it is mounted on.
// It extracts the bearer token, verifies it with the process-wide secret,
// resolves the subject against the user store, and binds the resulting
// Identity to the request context. All failure branches are terminal 401s
// and mutate no state; verification failures are never distinguished to the
// caller.
func Middleware(issuer *Issuer, resolver IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			userID, err := issuer.Verify(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			// A token outliving its account is indistinguishable from a bad
			// token as far as the caller is concerned.
			ident, err := resolver.Resolve(c.Request().Context(), userID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			ctx := context.WithValue(c.Request().Context(), identityKey, ident)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// CurrentUser returns the authenticated identity bound by Middleware, or nil
// when the request did not pass through it.
func CurrentUser(ctx context.Context) *Identity {
	ident, _ := ctx.Value(identityKey).(*Identity)
	return ident
}

// WithIdentity returns a context carrying the given identity. Tests use it to
// exercise handlers without the full middleware stack.
func WithIdentity(ctx context.Context, ident *Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}
