// Package session implements browser sessions: an opaque server-side record
// referenced by a signed cookie, with a sliding expiry and an optional
// enrollment ticket for pending MFA setup.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aussiebroadwan/assettrack/internal/auth/domain"
	"github.com/aussiebroadwan/assettrack/internal/auth/store"
	"github.com/aussiebroadwan/assettrack/pkg/cryptox"
	"github.com/aussiebroadwan/assettrack/pkg/httpx"
	"github.com/aussiebroadwan/assettrack/pkg/jwtx"
	"github.com/aussiebroadwan/assettrack/pkg/slogx"
)

const (
	// CookieName is the session cookie set on every login.
	CookieName = "assettrack.sid"

	// DefaultTicketTTL bounds how long a pending MFA secret stays usable.
	DefaultTicketTTL = 10 * time.Minute
)

var (
	// ErrNoSession means the request has no live session. Handlers treat it
	// as "not logged in", never as a server error.
	ErrNoSession = httpx.ErrNoSession

	// ErrNoTicket means the session has no unexpired enrollment ticket.
	ErrNoTicket = errors.New("session: no pending enrollment")
)

// UserLookup is the part of the user store Resolve needs.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)
}

type Config struct {
	Issuer    string
	TTL       time.Duration
	TicketTTL time.Duration

	// Secure forces the Secure cookie attribute. It is always set on TLS
	// requests.
	Secure bool
}

type Manager struct {
	Backend  Backend
	Users    UserLookup
	Signer   jwtx.Signer
	Verifier jwtx.Verifier

	Issuer    string
	TTL       time.Duration
	TicketTTL time.Duration
	Secure    bool

	Now func() time.Time
}

// NewManager wires a Manager. Zero TTLs fall back to the defaults.
func NewManager(backend Backend, users UserLookup, signer jwtx.Signer, verifier jwtx.Verifier, cfg Config) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = jwtx.DefaultSessionTTL
	}
	if cfg.TicketTTL <= 0 {
		cfg.TicketTTL = DefaultTicketTTL
	}

	return &Manager{
		Backend:   backend,
		Users:     users,
		Signer:    signer,
		Verifier:  verifier,
		Issuer:    cfg.Issuer,
		TTL:       cfg.TTL,
		TicketTTL: cfg.TicketTTL,
		Secure:    cfg.Secure,
		Now:       time.Now,
	}
}

func (m *Manager) now() time.Time {
	if m.Now != nil {
		return m.Now().UTC()
	}
	return time.Now().UTC()
}

// Create starts a new session for userID and sets its cookie on w. Any
// session the request already carried is left alone; login replaces the
// cookie.
func (m *Manager) Create(ctx context.Context, w http.ResponseWriter, r *http.Request, userID string) (domain.Session, error) {
	raw, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.Session{}, err
	}

	now := m.now()
	s := domain.Session{
		ID:         cryptox.FingerprintToken(raw),
		UserID:     userID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(m.TTL),
		LastSeenAt: now,
		IPAddress:  httpx.ClientIP(r),
		UserAgent:  r.UserAgent(),
	}

	if err := m.Backend.Create(ctx, s); err != nil {
		return domain.Session{}, fmt.Errorf("save session: %w", err)
	}

	if err := m.writeCookie(w, r, raw, now); err != nil {
		_ = m.Backend.Delete(ctx, s.ID)
		return domain.Session{}, err
	}

	return s, nil
}

// Load returns the live session named by the request cookie and slides its
// expiry. A missing, forged or expired cookie yields ErrNoSession.
func (m *Manager) Load(ctx context.Context, w http.ResponseWriter, r *http.Request) (domain.Session, error) {
	raw, ok := m.cookieSessionID(r)
	if !ok {
		return domain.Session{}, ErrNoSession
	}

	id := cryptox.FingerprintToken(raw)
	s, err := m.Backend.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Session{}, ErrNoSession
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("load session: %w", err)
	}

	now := m.now()
	if s.Expired(now) {
		_ = m.Backend.Delete(ctx, id)
		return domain.Session{}, ErrNoSession
	}

	s.LastSeenAt = now
	s.ExpiresAt = now.Add(m.TTL)
	if err := m.Backend.Touch(ctx, id, s.LastSeenAt, s.ExpiresAt); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Session{}, ErrNoSession
		}
		return domain.Session{}, fmt.Errorf("touch session: %w", err)
	}

	if err := m.writeCookie(w, r, raw, now); err != nil {
		slogx.FromContext(ctx).Warn("failed to refresh session cookie", "err", err)
	}

	return s, nil
}

// Resolve implements httpx.SessionResolver. A session whose user no longer
// exists is destroyed and reported as ErrNoSession.
func (m *Manager) Resolve(w http.ResponseWriter, r *http.Request) (httpx.Principal, error) {
	ctx := r.Context()

	s, err := m.Load(ctx, w, r)
	if err != nil {
		return httpx.Principal{}, err
	}

	u, err := m.Users.GetUserByID(ctx, s.UserID)
	if errors.Is(err, store.ErrNotFound) {
		_ = m.Backend.Delete(ctx, s.ID)
		m.clearCookie(w, r)
		return httpx.Principal{}, ErrNoSession
	}
	if err != nil {
		return httpx.Principal{}, fmt.Errorf("load session user: %w", err)
	}

	return httpx.Principal{
		UserID:    u.ID,
		Username:  u.Username,
		SessionID: s.ID,
		IsAdmin:   u.IsAdmin,
		LoginTime: s.CreatedAt,
	}, nil
}

// Destroy ends the request's session. The cookie is cleared even when the
// backend fails, so the browser never keeps a dead session.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	m.clearCookie(w, r)

	raw, ok := m.cookieSessionID(r)
	if !ok {
		return nil
	}
	return m.Backend.Delete(ctx, cryptox.FingerprintToken(raw))
}

// PutTicket binds a pending TOTP secret to sessionID, replacing any earlier
// one.
func (m *Manager) PutTicket(ctx context.Context, sessionID, userID, secret string) error {
	now := m.now()
	return m.Backend.PutTicket(ctx, domain.EnrollmentTicket{
		SessionID: sessionID,
		UserID:    userID,
		Secret:    secret,
		CreatedAt: now,
		ExpiresAt: now.Add(m.TicketTTL),
	})
}

// Ticket returns the unexpired ticket for sessionID or ErrNoTicket.
func (m *Manager) Ticket(ctx context.Context, sessionID string) (domain.EnrollmentTicket, error) {
	t, err := m.Backend.GetTicket(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.EnrollmentTicket{}, ErrNoTicket
	}
	if err != nil {
		return domain.EnrollmentTicket{}, err
	}
	if t.Expired(m.now()) {
		_ = m.Backend.DeleteTicket(ctx, sessionID)
		return domain.EnrollmentTicket{}, ErrNoTicket
	}
	return t, nil
}

// ConsumeTicket deletes the ticket for sessionID.
func (m *Manager) ConsumeTicket(ctx context.Context, sessionID string) error {
	return m.Backend.DeleteTicket(ctx, sessionID)
}

// Sweep deletes expired sessions and tickets.
func (m *Manager) Sweep(ctx context.Context) (sessions, tickets int64, err error) {
	return m.Backend.DeleteExpired(ctx, m.now())
}

// Reset drops every session.
func (m *Manager) Reset(ctx context.Context) error {
	return m.Backend.Reset(ctx)
}

func (m *Manager) cookieSessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}

	claims, err := m.Verifier.Verify(c.Value)
	if err != nil {
		return "", false
	}
	return claims.SessionID(), true
}

func (m *Manager) writeCookie(w http.ResponseWriter, r *http.Request, raw string, now time.Time) error {
	token, err := m.Signer.Sign(jwtx.NewSessionClaims(raw, m.Issuer, m.TTL, now))
	if err != nil {
		return fmt.Errorf("sign session cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.TTL / time.Second),
		Expires:  now.Add(m.TTL),
		HttpOnly: true,
		Secure:   m.secure(r),
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (m *Manager) clearCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) secure(r *http.Request) bool {
	return m.Secure || r.TLS != nil
}
