package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/MarcusAlienx/casanala/internal/access"
	"github.com/MarcusAlienx/casanala/internal/auth"
	"github.com/MarcusAlienx/casanala/internal/enum"
)

type contextKey string

const (
	claimsKey  contextKey = "claims"
	sessionKey contextKey = "session"
)

// SessionCookie carries the access token for browser navigation.
const SessionCookie = "session"

// SessionResolver maps a verified identity to a session. Satisfied by *access.Resolver.
type SessionResolver interface {
	Resolve(ctx context.Context, userID, email string) *access.Session
}

// TokenFromRequest returns the bearer token, falling back to the session cookie.
func TokenFromRequest(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return "", false
		}
		return parts[1], true
	}
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value, true
	}
	return "", false
}

func Authenticate(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := TokenFromRequest(r)
			if !ok {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing credentials"})
				return
			}

			claims, err := auth.ValidateToken(jwtSecret, token)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Identify attaches claims when the request carries a valid token and lets
// anonymous requests through untouched.
func Identify(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := TokenFromRequest(r); ok {
				if claims, err := auth.ValidateToken(jwtSecret, token); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), claimsKey, claims))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireLogin redirects browser navigation without a valid credential to
// the login page, remembering where the user was headed.
func RequireLogin(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := TokenFromRequest(r)
			var claims *auth.Claims
			if ok {
				claims, _ = auth.ValidateToken(jwtSecret, token)
			}
			if claims == nil {
				target := "/login?redirectedFrom=" + url.QueryEscape(r.URL.Path)
				http.Redirect(w, r, target, http.StatusFound)
				return
			}
			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ResolveSession looks up the role for authenticated requests. It must run
// after Authenticate, Identify or RequireLogin.
func ResolveSession(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims := ClaimsFromContext(r.Context()); claims != nil {
				s := resolver.Resolve(r.Context(), claims.UserID, claims.Email)
				r = r.WithContext(context.WithValue(r.Context(), sessionKey, s))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole renders the guard decision for the resolved session and only
// continues when it is granted.
func RequireRole(roles ...enum.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := SessionFromContext(r.Context())
			d := access.Decide(false, s, roles)
			if d.Outcome == access.OutcomeGranted {
				next.ServeHTTP(w, r)
				return
			}

			if s == nil {
				writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "not authenticated", "decision": d})
				return
			}
			writeJSON(w, http.StatusForbidden, map[string]any{"error": "insufficient permissions", "decision": d})
		})
	}
}

func ClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

func SessionFromContext(ctx context.Context) *access.Session {
	s, _ := ctx.Value(sessionKey).(*access.Session)
	return s
}

// WithSession returns a context carrying s. Used by tests and the websocket upgrade.
func WithSession(ctx context.Context, s *access.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
