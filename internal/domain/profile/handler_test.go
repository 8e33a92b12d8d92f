package profile

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	geoadapter "pet-guardian/internal/adapters/geolocation"
	"pet-guardian/internal/domain/session"
	"pet-guardian/internal/ports/geolocation"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProfileServer(t *testing.T, api *fakeAPI) (http.Handler, *Views) {
	t.Helper()
	views := NewViews(api, func() geolocation.Locator { return geoadapter.NewBrowser(time.Second) }, nil, "http://localhost:8080")
	t.Cleanup(views.StopAll)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(session.WithStore(req.Context(), "visitor-1", nil)))
		})
	})
	RegisterRoutes(r, views)
	return r, views
}

func TestHandler_ViewThenBrowserLocation(t *testing.T) {
	api := newFakeAPI()
	h, views := newProfileServer(t, api)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/pet/a", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var v View
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	assert.Equal(t, "Rex", v.Pet.Name)
	assert.False(t, v.LocationRecorded)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/pet/a/location", strings.NewReader(`{"latitude":1.25,"longitude":2.5}`)))
	assert.Equal(t, http.StatusAccepted, rr.Code)

	views.For("visitor-1").Wait()
	assert.Equal(t, 1, api.reportCount("a"))
	assert.True(t, views.For("visitor-1").View().LocationRecorded)

	// re-render: sin segundo scan
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/pet/a", nil))
	views.For("visitor-1").Wait()
	assert.Equal(t, 1, api.reportCount("a"))
}

func TestHandler_LocationForOtherPetIsStale(t *testing.T) {
	h, _ := newProfileServer(t, newFakeAPI())
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/pet/a", nil))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/pet/b/location", strings.NewReader(`{"denied":true}`)))
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestHandler_NotFound(t *testing.T) {
	h, _ := newProfileServer(t, newFakeAPI())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/pet/zzz", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), MsgPetNotFound)
}

func TestHandler_Contact(t *testing.T) {
	api := newFakeAPI()
	h, _ := newProfileServer(t, api)

	body := `{"senderName":"Leo","senderEmail":"leo@x.io","message":"I have Rex","shareLocation":true,"latitude":3,"longitude":4}`
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/pet/a/contact", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rr.Code)
	api.mu.Lock()
	defer api.mu.Unlock()
	require.Len(t, api.messages, 1)
	assert.Equal(t, "leo@x.io", api.messages[0].SenderEmail)
	assert.Equal(t, 3.0, *api.messages[0].Latitude)
}
