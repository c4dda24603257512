package httpx_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aussiebroadwan/assettrack/pkg/httpx"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	p   httpx.Principal
	err error
}

func (f fakeResolver) Resolve(http.ResponseWriter, *http.Request) (httpx.Principal, error) {
	return f.p, f.err
}

func echoPrincipal() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := httpx.PrincipalFromContext(r.Context())
		if !ok {
			httpx.WriteJSON(w, http.StatusOK, map[string]string{"user": ""})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"user": p.UserID})
	})
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(okHandler(), mark("a"), mark("b"), mark("c"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, []string{"a", "b", "c"}, order)
}

func TestRequireSession(t *testing.T) {
	t.Run("no session", func(t *testing.T) {
		h := httpx.Chain(echoPrincipal(), httpx.RequireSession(fakeResolver{err: httpx.ErrNoSession}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/user", nil))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.JSONEq(t, `{"message":"Not authenticated"}`, rec.Body.String())
	})

	t.Run("backend error is also unauthenticated", func(t *testing.T) {
		h := httpx.Chain(echoPrincipal(), httpx.RequireSession(fakeResolver{err: errors.New("db down")}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/user", nil))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("live session", func(t *testing.T) {
		h := httpx.Chain(echoPrincipal(), httpx.RequireSession(fakeResolver{p: httpx.Principal{UserID: "u1"}}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/user", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"user":"u1"}`, rec.Body.String())
	})
}

func TestLoadSession(t *testing.T) {
	t.Run("anonymous passes through", func(t *testing.T) {
		h := httpx.Chain(echoPrincipal(), httpx.LoadSession(fakeResolver{err: httpx.ErrNoSession}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/logout", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"user":""}`, rec.Body.String())
	})

	t.Run("attaches principal", func(t *testing.T) {
		h := httpx.Chain(echoPrincipal(), httpx.LoadSession(fakeResolver{p: httpx.Principal{UserID: "u2"}}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/logout", nil))

		require.JSONEq(t, `{"user":"u2"}`, rec.Body.String())
	})
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name     string
		resolver fakeResolver
		want     int
	}{
		{"anonymous", fakeResolver{err: httpx.ErrNoSession}, http.StatusUnauthorized},
		{"non-admin", fakeResolver{p: httpx.Principal{UserID: "u1"}}, http.StatusForbidden},
		{"admin", fakeResolver{p: httpx.Principal{UserID: "u1", IsAdmin: true}}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := httpx.Chain(okHandler(), httpx.RequireSession(tt.resolver), httpx.RequireAdmin())
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/disable-mfa/x", nil))
			require.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Reason string `json:"reason"`
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"reason":"timeout"}`))
	require.NoError(t, httpx.DecodeJSON(rec, req, &v))
	require.Equal(t, "timeout", v.Reason)

	v.Reason = ""
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	require.NoError(t, httpx.DecodeJSON(rec, req, &v), "empty body is allowed")
	require.Empty(t, v.Reason)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"reason":`))
	require.Error(t, httpx.DecodeJSON(rec, req, &v))
}
