package httpx

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/assettrack/pkg/slogx"
)

// ErrNoSession is returned by a SessionResolver when the request carries no
// live session. It is an ordinary outcome, not a failure.
var ErrNoSession = errors.New("httpx: no session")

// SessionResolver turns a request's session cookie into a Principal. It may
// refresh the cookie on w (sliding expiry).
type SessionResolver interface {
	Resolve(w http.ResponseWriter, r *http.Request) (Principal, error)
}

// LoadSession attaches the caller's Principal when a live session exists but
// lets anonymous requests through.
func LoadSession(sr SessionResolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := sr.Resolve(w, r)
			switch {
			case err == nil:
				r = r.WithContext(WithPrincipal(r.Context(), p))
			case !errors.Is(err, ErrNoSession):
				slogx.FromContext(r.Context()).Warn("session lookup failed", "err", err)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession rejects requests without a live session with 401.
func RequireSession(sr SessionResolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			p, err := sr.Resolve(w, r)
			if err != nil {
				if !errors.Is(err, ErrNoSession) {
					slogx.FromContext(ctx).Warn("session lookup failed", "err", err)
				}
				WriteMessage(w, http.StatusUnauthorized, "Not authenticated")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, p)))
		})
	}
}

// RequireAdmin rejects non-admin callers with 403. It must run after
// RequireSession.
func RequireAdmin() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				WriteMessage(w, http.StatusUnauthorized, "Not authenticated")
				return
			}
			if !p.IsAdmin {
				WriteMessage(w, http.StatusForbidden, "Admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
