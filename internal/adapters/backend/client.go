package backend

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"pet-guardian/internal/platform/httpclient"
)

var (
	ErrNotConfigured   = errors.New("backend client not configured")
	ErrEmptyPetID      = errors.New("pet id is empty")
	ErrIncompleteReply = errors.New("backend response missing fields")
)

// Config del cliente de la API de PetGuardian.
// BaseURL normalmente viene de API_BASE_URL.
type Config struct {
	BaseURL string

	// Timeout HTTP; <= 0 usa el default de httpclient.
	Timeout time.Duration
}

// Client habla con la API REST: auth, mascotas del dueño y perfil público.
// Implementa session.AuthAPI, dashboard.API y profile.API.
type Client struct {
	http *httpclient.Client
}

func NewClient(cfg Config) (*Client, error) {
	hc, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.BaseURL), cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return &Client{http: hc}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.http.BaseURL != ""
}

func (c *Client) ready() error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}
	return nil
}

// petPath arma /<prefix>/<id>/<suffix> escapando el id.
func petPath(prefix, petID, suffix string) (string, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return "", ErrEmptyPetID
	}
	p := prefix + "/" + url.PathEscape(petID)
	if suffix != "" {
		p += "/" + suffix
	}
	return p, nil
}
