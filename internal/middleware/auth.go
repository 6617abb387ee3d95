// Package middleware provides the HTTP middleware chain: session auth,
// request logging, and metrics.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/adityaprk/khatabook/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// userKey is the context key for storing the authenticated username.
const userKey contextKey = "user"

// SessionCookie is the cookie that carries the session token. Its value is
// "Bearer <token>", mirroring an Authorization header.
const SessionCookie = "access_token"

// CurrentUser extracts the authenticated username from the context.
// Returns empty string if not found.
func CurrentUser(ctx context.Context) string {
	username, _ := ctx.Value(userKey).(string)
	return username
}

// Gate authenticates requests from the session cookie. A request is
// authenticated only if the token verifies AND its subject is still present
// in the credential store; dropping the user revokes otherwise-valid tokens.
type Gate struct {
	tokens *auth.TokenManager
	creds  auth.CredentialStore
}

// NewGate creates an auth gate over the given token manager and credential
// store.
func NewGate(tokens *auth.TokenManager, creds auth.CredentialStore) *Gate {
	return &Gate{tokens: tokens, creds: creds}
}

// Authenticate resolves the request's identity. Missing cookie, wrong
// scheme, invalid token, and revoked subject all yield ok=false; no error is
// ever surfaced to the client beyond the absent identity.
func (g *Gate) Authenticate(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	scheme, token, found := strings.Cut(cookie.Value, " ")
	if !found || scheme != "Bearer" || token == "" {
		return "", false
	}

	username, err := g.tokens.Verify(token)
	if err != nil {
		return "", false
	}

	if !g.creds.Exists(username) {
		return "", false
	}

	return username, true
}

// RequireAuth redirects unauthenticated requests to /login before the
// wrapped handler runs; no handler side effect happens without a valid
// session. The authenticated username is placed in the request context.
func (g *Gate) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, ok := g.Authenticate(r)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		ctx := context.WithValue(r.Context(), userKey, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
