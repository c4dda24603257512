package httpx

import (
	"context"
	"time"
)

type ctxKey string

const (
	CtxKeyUserID    ctxKey = "user_id"
	CtxKeyPrincipal ctxKey = "principal"
)

// Principal is the authenticated caller attached to a request once its
// session cookie has been resolved.
type Principal struct {
	UserID    string
	Username  string
	SessionID string
	IsAdmin   bool

	// LoginTime is when the session was created.
	LoginTime time.Time
}

// WithPrincipal stores p on the context for downstream handlers.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, p.UserID)
	ctx = context.WithValue(ctx, CtxKeyPrincipal, p)
	return ctx
}

// PrincipalFromContext returns the caller, if the request carried a live
// session.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(CtxKeyPrincipal).(Principal)
	return p, ok
}
