package webui

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusgrid/lectern/internal/rest"
)

type ctxKey int

const tokenKey ctxKey = iota

// withBackendToken copies the backend auth cookie into the request context
// so the REST client can pick it up per request.
func withBackendToken(cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
				r = r.WithContext(context.WithValue(r.Context(), tokenKey, c.Value))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestTokens returns the TokenSource the REST client should be built
// with: it reads the token withBackendToken stashed in the request context.
func RequestTokens() rest.TokenSource { return ctxTokenSource{} }

// ctxTokenSource feeds the request's cookie token to the REST client.
type ctxTokenSource struct{}

func (ctxTokenSource) Token(ctx context.Context) (string, error) {
	if v, ok := ctx.Value(tokenKey).(string); ok {
		return v, nil
	}
	return "", nil
}

// SessionInfo is what the layout shows about the backend session. The token
// is parsed without verification; the backend is the one enforcing it, the
// dashboard only reads the expiry and subject for display.
type SessionInfo struct {
	Present   bool
	Subject   string
	ExpiresAt time.Time
	Expired   bool
}

func sessionInfo(r *http.Request, cookieName string, now time.Time) SessionInfo {
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return SessionInfo{}
	}
	info := SessionInfo{Present: true}
	tok, _, err := jwt.NewParser().ParseUnverified(c.Value, jwt.MapClaims{})
	if err != nil {
		return info
	}
	if sub, err := tok.Claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if exp, err := tok.Claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
		info.Expired = exp.Time.Before(now)
	}
	return info
}

// basicAuth gates the dashboard behind a bcrypt-hashed password. An empty
// hash disables the gate, for local development.
func basicAuth(user, passHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if passHash == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, p, ok := r.BasicAuth()
			if !ok ||
				subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 ||
				bcrypt.CompareHashAndPassword([]byte(passHash), []byte(p)) != nil {
				w.Header().Set("WWW-Authenticate", `Basic realm="lectern"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
