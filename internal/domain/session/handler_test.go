package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeNext(t *testing.T) {
	cases := map[string]string{
		"/dashboard?q=rex": "/dashboard?q=rex",
		" /pet/a ":         "/pet/a",
		"":                 "",
		"dashboard":        "",
		"https://evil.com": "",
		"//evil.com":       "",
		`/\evil.com`:       "",
		`/a\b`:             "",
		"/\t/evil.com":     "",
		"/\n/evil.com":     "",
	}
	for in, want := range cases {
		assert.Equal(t, want, safeNext(in), "next=%q", in)
	}
}

// syncStorages es un StorageFactory en memoria con un slot por scope.
type syncStorages struct {
	mu    sync.Mutex
	slots map[string]*memStorage
}

func (s *syncStorages) For(scope string) TokenStorage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slots == nil {
		s.slots = map[string]*memStorage{}
	}
	if s.slots[scope] == nil {
		s.slots[scope] = &memStorage{}
	}
	return s.slots[scope]
}

func (s *syncStorages) token(scope string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m := s.slots[scope]; m != nil {
		return m.token
	}
	return ""
}

// serveWithSID monta las rutas con el sid dado y un issuer que anota el sid emitido.
func serveWithSID(t *testing.T, reg *Registry, sid string, issueErr error, req *http.Request) (*httptest.ResponseRecorder, string) {
	t.Helper()
	var issued string
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := WithStore(req.Context(), sid, reg.Get(req.Context(), sid))
			ctx = WithRotation(ctx, reg, func(_ http.ResponseWriter, _ *http.Request, newSID string) error {
				if issueErr != nil {
					return issueErr
				}
				issued = newSID
				return nil
			})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	RegisterRoutes(r)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr, issued
}

func newLoginRequest(next string) *http.Request {
	target := LoginPath
	if next != "" {
		target += "?next=" + next
	}
	return httptest.NewRequest(http.MethodPost, target, strings.NewReader(`{"email":"ana@x.io","password":"pw"}`))
}

func TestLoginHandler_MovesSessionToNewSID(t *testing.T) {
	api := &fakeAuth{loginRes: AuthResult{User: &User{ID: "u1", FirstName: "Ana"}, Token: "tok-1"}}
	storages := &syncStorages{}
	reg := NewRegistry(api, storages.For, nil)

	rr, issued := serveWithSID(t, reg, "pre-login", nil, newLoginRequest("%2F%5Cevil.com"))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"redirect":"/dashboard"`)
	require.NotEmpty(t, issued)
	assert.NotEqual(t, "pre-login", issued)
	assert.Equal(t, "tok-1", storages.token(issued))
	assert.Empty(t, storages.token("pre-login"))
	assert.Equal(t, 1, reg.Len())
	assert.True(t, reg.Get(context.Background(), issued).Authenticated())
}

func TestLoginHandler_FailureKeepsSID(t *testing.T) {
	api := &fakeAuth{loginErr: errors.New("dial tcp: refused")}
	reg := NewRegistry(api, (&syncStorages{}).For, nil)

	rr, issued := serveWithSID(t, reg, "pre-login", nil, newLoginRequest(""))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), MsgLoginFailed)
	assert.Empty(t, issued)
	assert.Equal(t, 1, reg.Len(), "the unused fresh store is dropped")
}

func TestLoginHandler_CookieFailureLeavesNoSession(t *testing.T) {
	api := &fakeAuth{loginRes: AuthResult{User: &User{ID: "u1"}, Token: "tok-1"}}
	storages := &syncStorages{}
	reg := NewRegistry(api, storages.For, nil)

	rr, _ := serveWithSID(t, reg, "pre-login", errors.New("securecookie: encode"), newLoginRequest(""))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, 1, reg.Len())
	assert.False(t, reg.Get(context.Background(), "pre-login").Authenticated())
	storages.mu.Lock()
	defer storages.mu.Unlock()
	for scope, m := range storages.slots {
		assert.Empty(t, m.token, "scope %s", scope)
	}
}

func TestRegisterHandler_ReplacesPreviousAccount(t *testing.T) {
	api := &fakeAuth{
		loginRes: AuthResult{User: &User{ID: "u1"}, Token: "tok-1"},
		regRes:   AuthResult{User: &User{ID: "u2", FirstName: "Leo"}, Token: "tok-2"},
	}
	storages := &syncStorages{}
	reg := NewRegistry(api, storages.For, nil)

	_, first := serveWithSID(t, reg, "pre-login", nil, newLoginRequest(""))
	require.NotEmpty(t, first)
	old := reg.Get(context.Background(), first)
	logouts := 0
	old.OnLogout(func() { logouts++ })

	body := `{"firstName":"Leo","email":"leo@x.io","password":"pw","confirmPassword":"pw"}`
	rr, second := serveWithSID(t, reg, first, nil, httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.NotEqual(t, first, second)
	assert.Equal(t, 1, logouts)
	assert.False(t, old.Authenticated())
	assert.Empty(t, storages.token(first))
	assert.Equal(t, "tok-2", storages.token(second))
}
