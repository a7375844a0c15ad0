// Package authz composes identity verification and role resolution into
// route guards.
//
// A Gate has two stages. RequireAuth verifies the bearer token and binds the
// caller's identity to the request. RequireRole and RequireAnyRole look the
// caller up through a RoleResolver on every request, so role changes apply
// on the next call. Role guards must be mounted after RequireAuth.
package authz

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/bookcourier/internal/app/system/auth"
	"github.com/dalemusser/bookcourier/internal/app/system/httperr"
	"go.uber.org/zap"
)

// ErrUnknownUser is returned by a RoleResolver when no user record exists for the email.
var ErrUnknownUser = errors.New("no user with this email")

// RoleResolver looks up the current role for an email.
type RoleResolver interface {
	ResolveRole(ctx context.Context, email string) (string, error)
}

// Gate builds the authentication and role middlewares.
type Gate struct {
	verifier auth.Verifier
	roles    RoleResolver
	log      *zap.Logger
}

// NewGate returns a Gate backed by the given verifier and resolver.
func NewGate(verifier auth.Verifier, roles RoleResolver, log *zap.Logger) *Gate {
	return &Gate{verifier: verifier, roles: roles, log: log}
}

// RequireAuth rejects requests without a valid bearer token with 401 and binds
// the verified identity for downstream handlers.
func (g *Gate) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := auth.BearerToken(r)
		if !ok {
			httperr.Respond(w, g.log, httperr.Unauthenticated, "Unauthorized access")
			return
		}

		id, err := g.verifier.Verify(r.Context(), token)
		if err != nil {
			g.log.Debug("token verification failed", zap.Error(err))
			httperr.Respond(w, g.log, httperr.Unauthenticated, "Unauthorized access")
			return
		}

		next.ServeHTTP(w, auth.WithIdentity(r, id))
	})
}

// RequireRole allows only callers whose current role equals role.
func (g *Gate) RequireRole(role string) func(http.Handler) http.Handler {
	return g.RequireAnyRole(role)
}

// RequireAnyRole allows callers holding any of the given roles. A caller
// without a user record is forbidden.
func (g *Gate) RequireAnyRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.CurrentIdentity(r)
			if !ok {
				// Mounted without RequireAuth in front of it.
				g.log.Error("role check ran without an authenticated identity",
					zap.String("path", r.URL.Path))
				httperr.Respond(w, g.log, httperr.Internal, "Internal Server Error")
				return
			}

			role, err := g.roles.ResolveRole(r.Context(), id.Email)
			switch {
			case errors.Is(err, ErrUnknownUser):
				httperr.Respond(w, g.log, httperr.Forbidden, "Forbidden access")
				return
			case err != nil:
				httperr.Write(w, g.log, httperr.Wrap(httperr.Upstream, "Failed to resolve role", err))
				return
			}

			if _, ok := set[strings.ToLower(role)]; !ok {
				httperr.Respond(w, g.log, httperr.Forbidden, "Forbidden access")
				return
			}
			next.ServeHTTP(w, withRole(r, role))
		})
	}
}

type ctxKey string

const roleKey ctxKey = "role"

func withRole(r *http.Request, role string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), roleKey, role))
}

// Role returns the role resolved by a role guard for this request.
func Role(r *http.Request) (string, bool) {
	role, ok := r.Context().Value(roleKey).(string)
	return role, ok
}
