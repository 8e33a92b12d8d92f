package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoJSON_ParsesServerErrorField(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"Email already registered"}`)
	}))
	defer ts.Close()

	c, err := NewWithBaseURL(ts.URL, 0)
	require.NoError(t, err)

	err = c.DoJSON(context.Background(), http.MethodPost, "/auth/register", nil, map[string]string{"a": "b"}, nil)
	he, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.StatusCode)
	assert.Equal(t, "Email already registered", he.Message)
	assert.Equal(t, "Email already registered", ServerMessage(err, "fallback"))
}

func TestDoJSON_UnparsableErrorUsesFallback(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>bad gateway</html>")
	}))
	defer ts.Close()

	c, err := NewWithBaseURL(ts.URL, 0)
	require.NoError(t, err)

	err = c.DoJSON(context.Background(), http.MethodGet, "pets", nil, nil, nil)
	require.Error(t, err)
	assert.Equal(t, "Login failed", ServerMessage(err, "Login failed"))
	assert.Equal(t, "Login failed", ServerMessage(errors.New("dial tcp: refused"), "Login failed"))
}

func TestDoJSON_SendsBearerAndDecodes(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `[{"id":"p1"}]`)
	}))
	defer ts.Close()

	c, err := NewWithBaseURL(ts.URL, 0)
	require.NoError(t, err)

	var out []struct {
		ID string `json:"id"`
	}
	require.NoError(t, c.DoJSON(context.Background(), http.MethodGet, "/pets", Bearer("tok-1"), nil, &out))
	require.Len(t, out, 1)
	assert.Equal(t, "p1", out[0].ID)
	assert.Nil(t, Bearer("  "))
}

func TestDoMultipart_WritesFieldsAndFiles(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Equal(t, "Rex", r.FormValue("name"))
		files := r.MultipartForm.File["photos"]
		if assert.Len(t, files, 2) {
			assert.Equal(t, "a.jpg", files[0].Filename)
			assert.Equal(t, "image/jpeg", files[0].Header.Get("Content-Type"))
			assert.Equal(t, "application/octet-stream", files[1].Header.Get("Content-Type"))
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"petId":"p9","qrCode":"data:image/png;base64,AAA"}`)
	}))
	defer ts.Close()

	c, err := NewWithBaseURL(ts.URL, 0)
	require.NoError(t, err)

	var out struct {
		PetID string `json:"petId"`
	}
	err = c.DoMultipart(context.Background(), http.MethodPost, "/pets", nil,
		[][2]string{{"name", "Rex"}},
		[]File{
			{Field: "photos", Name: "a.jpg", Content: []byte("a"), MimeType: "image/jpeg"},
			{Field: "photos", Name: "b.jpg", Content: []byte("b")},
		},
		&out,
	)
	require.NoError(t, err)
	assert.Equal(t, "p9", out.PetID)
}

func TestResolveURL(t *testing.T) {
	c := New(0)
	_, err := c.resolveURL("/pets")
	assert.Error(t, err)

	u, err := c.resolveURL("https://api.example.com/pets")
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/pets", u)
}
