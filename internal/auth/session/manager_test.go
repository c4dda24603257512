package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/assettrack/internal/auth/domain"
	"github.com/aussiebroadwan/assettrack/internal/auth/session"
	"github.com/aussiebroadwan/assettrack/internal/auth/store"
	"github.com/aussiebroadwan/assettrack/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/assettrack/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fakeUsers map[string]domain.User

func (f fakeUsers) GetUserByID(_ context.Context, id string) (domain.User, error) {
	u, ok := f[id]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	return u, nil
}

func newManager(t *testing.T, backend session.Backend, users session.UserLookup) *session.Manager {
	t.Helper()

	keys := jwtx.NewKeySet()
	signer, err := jwtx.NewSignerHS256([]byte(testSecret), keys)
	require.NoError(t, err)

	return session.NewManager(backend, users, signer, jwtx.NewVerifierHS256(keys, "assettrack"), session.Config{
		Issuer: "assettrack",
	})
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie set", session.CookieName)
	return nil
}

func requestWith(c *http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	if c != nil {
		r.AddCookie(c)
	}
	return r
}

func backends(t *testing.T) map[string]func() (session.Backend, fakeUsers) {
	return map[string]func() (session.Backend, fakeUsers){
		"memory": func() (session.Backend, fakeUsers) {
			return session.NewMemoryBackend(), fakeUsers{
				"u1": {ID: "u1", Username: "alice"},
			}
		},
		"sqlite": func() (session.Backend, fakeUsers) {
			st, err := sqlite.NewStore(":memory:")
			require.NoError(t, err)
			require.NoError(t, st.ApplyMigrations())
			t.Cleanup(func() { _ = st.Close() })

			u := domain.User{ID: "u1", Username: "alice", PasswordHash: "a.b"}
			require.NoError(t, st.Users().CreateUser(context.Background(), u))
			return session.NewStoreBackend(st), fakeUsers{"u1": u}
		},
	}
}

func TestManager_CreateAndResolve(t *testing.T) {
	for name, mk := range backends(t) {
		t.Run(name, func(t *testing.T) {
			backend, users := mk()
			m := newManager(t, backend, users)

			rec := httptest.NewRecorder()
			s, err := m.Create(context.Background(), rec, httptest.NewRequest(http.MethodPost, "/api/login", nil), "u1")
			require.NoError(t, err)
			require.Equal(t, "u1", s.UserID)

			c := sessionCookie(t, rec)
			require.True(t, c.HttpOnly)
			require.Equal(t, http.SameSiteLaxMode, c.SameSite)
			require.Equal(t, "/", c.Path)
			require.Equal(t, int((30 * 24 * time.Hour).Seconds()), c.MaxAge)
			require.NotContains(t, c.Value, s.ID, "the cookie never carries the stored fingerprint")

			p, err := m.Resolve(httptest.NewRecorder(), requestWith(c))
			require.NoError(t, err)
			require.Equal(t, "u1", p.UserID)
			require.Equal(t, "alice", p.Username)
			require.Equal(t, s.ID, p.SessionID)
			require.False(t, p.IsAdmin)
		})
	}
}

func TestManager_NoSession(t *testing.T) {
	m := newManager(t, session.NewMemoryBackend(), fakeUsers{})

	tests := []struct {
		name   string
		cookie *http.Cookie
	}{
		{"no cookie", nil},
		{"empty cookie", &http.Cookie{Name: session.CookieName, Value: ""}},
		{"garbage", &http.Cookie{Name: session.CookieName, Value: "not-a-token"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Load(context.Background(), httptest.NewRecorder(), requestWith(tt.cookie))
			require.ErrorIs(t, err, session.ErrNoSession)
		})
	}
}

func TestManager_ForeignSignatureRejected(t *testing.T) {
	users := fakeUsers{"u1": {ID: "u1", Username: "alice"}}
	backend := session.NewMemoryBackend()
	m := newManager(t, backend, users)

	otherKeys := jwtx.NewKeySet()
	otherSigner, err := jwtx.NewSignerHS256([]byte(strings.Repeat("z", 32)), otherKeys)
	require.NoError(t, err)
	other := session.NewManager(backend, users, otherSigner, jwtx.NewVerifierHS256(otherKeys, "assettrack"), session.Config{Issuer: "assettrack"})

	rec := httptest.NewRecorder()
	_, err = other.Create(context.Background(), rec, httptest.NewRequest(http.MethodPost, "/", nil), "u1")
	require.NoError(t, err)

	_, err = m.Load(context.Background(), httptest.NewRecorder(), requestWith(sessionCookie(t, rec)))
	require.ErrorIs(t, err, session.ErrNoSession)
}

func TestManager_SlidingExpiry(t *testing.T) {
	users := fakeUsers{"u1": {ID: "u1", Username: "alice"}}
	backend := session.NewMemoryBackend()
	m := newManager(t, backend, users)

	start := time.Now().UTC()
	m.Now = func() time.Time { return start }

	rec := httptest.NewRecorder()
	s, err := m.Create(context.Background(), rec, httptest.NewRequest(http.MethodPost, "/", nil), "u1")
	require.NoError(t, err)
	c := sessionCookie(t, rec)

	// Activity after 20 days pushes expiry to day 50
	m.Now = func() time.Time { return start.Add(20 * 24 * time.Hour) }
	refreshed, err := m.Load(context.Background(), httptest.NewRecorder(), requestWith(c))
	require.NoError(t, err)
	require.Equal(t, start.Add(50*24*time.Hour), refreshed.ExpiresAt)

	stored, err := backend.Get(context.Background(), s.ID)
	require.NoError(t, err)
	require.Equal(t, refreshed.ExpiresAt, stored.ExpiresAt)

	// Day 45 is past the original expiry but inside the slid one
	m.Now = func() time.Time { return start.Add(45 * 24 * time.Hour) }
	_, err = m.Load(context.Background(), httptest.NewRecorder(), requestWith(c))
	require.NoError(t, err)

	// Idle for more than the TTL
	m.Now = func() time.Time { return start.Add(100 * 24 * time.Hour) }
	_, err = m.Load(context.Background(), httptest.NewRecorder(), requestWith(c))
	require.ErrorIs(t, err, session.ErrNoSession)

	_, err = backend.Get(context.Background(), s.ID)
	require.ErrorIs(t, err, store.ErrNotFound, "expired sessions are removed on sight")
}

func TestManager_Destroy(t *testing.T) {
	users := fakeUsers{"u1": {ID: "u1", Username: "alice"}}
	m := newManager(t, session.NewMemoryBackend(), users)

	rec := httptest.NewRecorder()
	s, err := m.Create(context.Background(), rec, httptest.NewRequest(http.MethodPost, "/", nil), "u1")
	require.NoError(t, err)
	c := sessionCookie(t, rec)

	require.NoError(t, m.PutTicket(context.Background(), s.ID, "u1", "SECRET"))

	out := httptest.NewRecorder()
	require.NoError(t, m.Destroy(context.Background(), out, requestWith(c)))
	cleared := sessionCookie(t, out)
	require.Equal(t, -1, cleared.MaxAge)
	require.Empty(t, cleared.Value)

	_, err = m.Load(context.Background(), httptest.NewRecorder(), requestWith(c))
	require.ErrorIs(t, err, session.ErrNoSession)

	_, err = m.Ticket(context.Background(), s.ID)
	require.ErrorIs(t, err, session.ErrNoTicket)

	// Logging out twice, or without a cookie, still clears the cookie
	out = httptest.NewRecorder()
	require.NoError(t, m.Destroy(context.Background(), out, requestWith(nil)))
	require.Equal(t, -1, sessionCookie(t, out).MaxAge)
}

func TestManager_ResolveDeletedUser(t *testing.T) {
	users := fakeUsers{"u1": {ID: "u1", Username: "alice"}}
	m := newManager(t, session.NewMemoryBackend(), users)

	rec := httptest.NewRecorder()
	_, err := m.Create(context.Background(), rec, httptest.NewRequest(http.MethodPost, "/", nil), "u1")
	require.NoError(t, err)

	delete(users, "u1")

	_, err = m.Resolve(httptest.NewRecorder(), requestWith(sessionCookie(t, rec)))
	require.ErrorIs(t, err, session.ErrNoSession)
}

func TestManager_Tickets(t *testing.T) {
	for name, mk := range backends(t) {
		t.Run(name, func(t *testing.T) {
			backend, users := mk()
			m := newManager(t, backend, users)
			ctx := context.Background()

			s, err := m.Create(ctx, httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil), "u1")
			require.NoError(t, err)

			_, err = m.Ticket(ctx, s.ID)
			require.ErrorIs(t, err, session.ErrNoTicket)

			require.NoError(t, m.PutTicket(ctx, s.ID, "u1", "FIRST"))
			require.NoError(t, m.PutTicket(ctx, s.ID, "u1", "SECOND"))

			tk, err := m.Ticket(ctx, s.ID)
			require.NoError(t, err)
			require.Equal(t, "SECOND", tk.Secret)
			require.Equal(t, "u1", tk.UserID)

			require.NoError(t, m.ConsumeTicket(ctx, s.ID))
			_, err = m.Ticket(ctx, s.ID)
			require.ErrorIs(t, err, session.ErrNoTicket)

			// Tickets expire on their own TTL
			require.NoError(t, m.PutTicket(ctx, s.ID, "u1", "THIRD"))
			m.Now = func() time.Time { return time.Now().Add(session.DefaultTicketTTL + time.Second) }
			_, err = m.Ticket(ctx, s.ID)
			require.ErrorIs(t, err, session.ErrNoTicket)
		})
	}
}

func TestManager_SweepAndReset(t *testing.T) {
	for name, mk := range backends(t) {
		t.Run(name, func(t *testing.T) {
			backend, users := mk()
			m := newManager(t, backend, users)
			ctx := context.Background()

			start := time.Now().UTC()
			m.Now = func() time.Time { return start }

			old, err := m.Create(ctx, httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil), "u1")
			require.NoError(t, err)
			require.NoError(t, m.PutTicket(ctx, old.ID, "u1", "S"))

			m.Now = func() time.Time { return start.Add(29 * 24 * time.Hour) }
			fresh, err := m.Create(ctx, httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil), "u1")
			require.NoError(t, err)

			m.Now = func() time.Time { return start.Add(31 * 24 * time.Hour) }
			sessions, tickets, err := m.Sweep(ctx)
			require.NoError(t, err)
			require.Equal(t, int64(1), sessions)
			require.Equal(t, int64(1), tickets)

			_, err = backend.Get(ctx, fresh.ID)
			require.NoError(t, err)

			require.NoError(t, m.Reset(ctx))
			_, err = backend.Get(ctx, fresh.ID)
			require.ErrorIs(t, err, store.ErrNotFound)
		})
	}
}

func TestNewBackend(t *testing.T) {
	b, err := session.NewBackend("memory", nil)
	require.NoError(t, err)
	require.IsType(t, &session.MemoryBackend{}, b)

	b, err = session.NewBackend("", nil)
	require.NoError(t, err)
	require.IsType(t, &session.StoreBackend{}, b)

	_, err = session.NewBackend("redis", nil)
	require.ErrorIs(t, err, session.ErrUnknownBackend)
}
