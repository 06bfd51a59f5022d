// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/carterperez-dev/reviewdb/internal/core"
	"github.com/carterperez-dev/reviewdb/internal/permission"
)

type contextKey string

const (
	ActorKey  contextKey = "actor"
	ClaimsKey contextKey = "jwt_claims"
)

type TokenVerifier interface {
	VerifyAccessToken(
		ctx context.Context,
		token string,
	) (*AccessTokenClaims, error)
}

type AccessTokenClaims struct {
	UserID    string
	Username  string
	Role      string
	Superuser bool
	Staff     bool
}

func (c *AccessTokenClaims) Actor() permission.Actor {
	return permission.Actor{
		ID:        c.UserID,
		Username:  c.Username,
		Role:      permission.Role(c.Role),
		Superuser: c.Superuser,
		Staff:     c.Staff,
	}
}

// Authenticator rejects requests without a valid bearer token.
func Authenticator(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)

			if token == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("missing authorization token"),
				)
				return
			}

			claims, err := verifier.VerifyAccessToken(r.Context(), token)
			if err != nil {
				handleAuthError(w, err)
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, ActorKey, claims.Actor())
			ctx = context.WithValue(ctx, ClaimsKey, claims)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches an actor when a valid token is present and lets
// anonymous requests through. Resource handlers that serve public reads
// run behind this and consult the permission predicates themselves.
func OptionalAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)

			if token != "" {
				claims, err := verifier.VerifyAccessToken(r.Context(), token)
				if err == nil {
					ctx := r.Context()
					ctx = context.WithValue(ctx, ActorKey, claims.Actor())
					ctx = context.WithValue(ctx, ClaimsKey, claims)
					r = r.WithContext(ctx)
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin allows admins through, where "admin" is the role or the
// superuser flag, matching permission.Actor.IsAdmin.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := GetActor(r.Context())

		if !actor.IsAuthenticated() {
			core.JSONError(
				w,
				core.UnauthorizedError("authentication required"),
			)
			return
		}

		if !permission.AdminOnly(actor) {
			core.JSONError(
				w,
				core.ForbiddenError("insufficient permissions"),
			)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func handleAuthError(w http.ResponseWriter, err error) {
	if core.IsAppError(err) {
		core.JSONError(w, err)
		return
	}

	switch {
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.TokenExpiredError())
	case errors.Is(err, core.ErrTokenRevoked):
		core.JSONError(w, core.TokenRevokedError())
	default:
		core.JSONError(w, core.TokenInvalidError())
	}
}

// GetActor returns the request actor, or the anonymous actor when the
// request carried no valid token.
func GetActor(ctx context.Context) permission.Actor {
	if actor, ok := ctx.Value(ActorKey).(permission.Actor); ok {
		return actor
	}
	return permission.Anonymous()
}

func GetUserID(ctx context.Context) string {
	return GetActor(ctx).ID
}

func GetUsername(ctx context.Context) string {
	return GetActor(ctx).Username
}

func GetClaims(ctx context.Context) *AccessTokenClaims {
	if claims, ok := ctx.Value(ClaimsKey).(*AccessTokenClaims); ok {
		return claims
	}
	return nil
}

func IsAuthenticated(ctx context.Context) bool {
	return GetActor(ctx).IsAuthenticated()
}
