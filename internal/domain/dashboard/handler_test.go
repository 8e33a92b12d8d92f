package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pet-guardian/internal/domain/pets"
	"pet-guardian/internal/domain/qr"
	"pet-guardian/internal/domain/session"
	"pet-guardian/internal/platform/httpclient"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuth struct{}

func (stubAuth) Login(context.Context, string, string) (session.AuthResult, error) {
	return session.AuthResult{User: &session.User{ID: "u1", FirstName: "Ana"}, Token: "tok"}, nil
}
func (stubAuth) Register(context.Context, session.RegisterInput) (session.AuthResult, error) {
	return session.AuthResult{}, nil
}
func (stubAuth) ForgotPassword(context.Context, string) error        { return nil }
func (stubAuth) ResetPassword(context.Context, string, string) error { return nil }
func (stubAuth) Me(context.Context, string) (session.User, error)    { return session.User{}, nil }

type slot struct{ v string }

func (s *slot) Load(context.Context) (string, error)   { return s.v, nil }
func (s *slot) Save(_ context.Context, v string) error { s.v = v; return nil }
func (s *slot) Clear(context.Context) error            { s.v = ""; return nil }

// newServer monta las rutas con un Store ya logueado en el contexto.
func newServer(t *testing.T, api *fakeAPI) (http.Handler, *session.Store, *Registry) {
	t.Helper()
	store := session.NewStore(stubAuth{}, &slot{}, nil)
	require.NoError(t, store.Login(context.Background(), "ana@example.com", "pw"))

	reg := NewRegistry(api, nil, Options{FrontendURL: "http://localhost:8080"})
	t.Cleanup(reg.StopAll)
	store.OnLogout(func() { reg.Stop("sid-1") })

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(session.WithStore(req.Context(), "sid-1", store)))
		})
	})
	qrr := qr.NewRendererWithEncoder(func(content string, _ int) ([]byte, error) {
		return []byte("png:" + content), nil
	}, nil)
	RegisterRoutes(r, reg, qrr)
	return r, store, reg
}

func TestHandler_ViewFiltersByQuery(t *testing.T) {
	h, _, _ := newServer(t, newFakeAPI(samplePets()...))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/dashboard?q=cat", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var v View
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	require.Len(t, v.Pets, 1)
	assert.Equal(t, "Milo", v.Pets[0].Name)
	assert.Equal(t, 2, v.Stats.TotalPets)
	assert.Equal(t, "Ana", v.FirstName)
}

func TestHandler_ViewUnauthorizedRedirectsAndLogsOut(t *testing.T) {
	api := newFakeAPI()
	api.listErr = &httpclient.HTTPError{StatusCode: http.StatusUnauthorized}
	h, store, reg := newServer(t, api)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login?next=%2Fdashboard", rr.Header().Get("Location"))
	assert.False(t, store.Authenticated())
	assert.Zero(t, reg.Len())
}

func TestHandler_UpdateStatus(t *testing.T) {
	api := newFakeAPI(samplePets()...)
	h, _, _ := newServer(t, api)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPatch, "/dashboard/pets/p1/status", strings.NewReader(`{"status":"lost"}`)))
	require.Equal(t, http.StatusOK, rr.Code)

	var v View
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	for _, p := range v.Pets {
		if p.ID == "p1" {
			assert.Equal(t, pets.StatusLost, p.Status)
		}
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPatch, "/dashboard/pets/p1/status", strings.NewReader(`{"status":"gone"}`)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func multipartBody(t *testing.T, fields map[string]string, photos int) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for i := 0; i < photos; i++ {
		fw, err := mw.CreateFormFile("photos", "p.jpg")
		require.NoError(t, err)
		_, _ = fw.Write([]byte{0xff, 0xd8})
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHandler_RegisterPet(t *testing.T) {
	api := newFakeAPI()
	h, _, _ := newServer(t, api)

	body, ct := multipartBody(t, map[string]string{"name": "Luna", "showOwnerPhone": "true"}, 2)
	req := httptest.NewRequest(http.MethodPost, "/dashboard/pets", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var res pets.Registered
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.NotEmpty(t, res.PetID)

	api.mu.Lock()
	got := api.registered[0]
	api.mu.Unlock()
	assert.Equal(t, "dog", got.Species)
	assert.True(t, got.ShowOwnerPhone)
	assert.True(t, got.ShowOwnerEmail)
	assert.Equal(t, 2, got.Photos.Len())
}

func TestHandler_RegisterPetRejectsSixPhotos(t *testing.T) {
	api := newFakeAPI()
	h, _, _ := newServer(t, api)

	body, ct := multipartBody(t, map[string]string{"name": "Luna"}, 6)
	req := httptest.NewRequest(http.MethodPost, "/dashboard/pets", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), MsgTooManyPhotos)
	assert.Empty(t, api.registered)
}

func TestHandler_QR(t *testing.T) {
	api := newFakeAPI(pets.Pet{ID: "p1", Name: "Rex Jr", QRCode: "legacy-ref"})
	h, _, _ := newServer(t, api)

	// carga la lista
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/dashboard/pets/p1/qr", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var res qrResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, "http://localhost:8080/pet/p1", res.ProfileURL)
	assert.True(t, strings.HasPrefix(res.Src, "data:image/png;base64,"))

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/dashboard/pets/p1/qr?format=png", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), `Rex-Jr-qr-code.png`)
	assert.Equal(t, "png:http://localhost:8080/pet/p1", rr.Body.String())

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/dashboard/pets/nope/qr", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_Export(t *testing.T) {
	h, _, _ := newServer(t, newFakeAPI(samplePets()...))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/dashboard/scans.xlsx", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, ExportContentType, rr.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("PK")))
}
