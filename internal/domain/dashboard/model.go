package dashboard

import (
	"context"
	"errors"
	"time"

	"pet-guardian/internal/domain/pets"
	"pet-guardian/internal/domain/scans"
	"pet-guardian/internal/domain/session"
)

var (
	// ErrNotLoggedIn: no hay token, no se hizo ningún request.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrSessionInvalidated: la API rechazó el token (401/403) y se cerró la sesión.
	ErrSessionInvalidated = errors.New("session invalidated")
	ErrPetNotFound        = errors.New("pet not found")
)

const (
	MsgNotLoggedIn    = "You are not logged in. Please log in to view your pets."
	MsgLoadFailed     = "Failed to load pets"
	MsgNetworkError   = "Network error while loading pets"
	MsgRegisterFailed = "Failed to register pet"
	MsgNameRequired   = "Pet name is required"
	MsgTooManyPhotos  = "Maximum 5 photos allowed"
)

const (
	DefaultRefreshInterval = 15 * time.Second
	DefaultScanWorkers     = 4
	DefaultIdleTimeout     = 30 * time.Minute
)

// API son las llamadas autenticadas del dashboard.
type API interface {
	ListPets(ctx context.Context, token string) ([]pets.Pet, error)
	ListScans(ctx context.Context, token, petID string) ([]scans.ScanEvent, error)
	UpdatePetStatus(ctx context.Context, token, petID string, status pets.Status) error
	RegisterPet(ctx context.Context, token string, in pets.RegisterInput) (pets.Registered, error)
}

// Session es lo que el dashboard usa de la sesión. *session.Store la cumple.
type Session interface {
	Token() string
	User() (session.User, bool)
	Logout(ctx context.Context) error
}

// PetView es una mascota lista para pintar.
type PetView struct {
	pets.Pet
	Presentation pets.Presentation `json:"presentation"`
	ProfileURL   string            `json:"profile_url"`
}

// View es la foto del dashboard que recibe el browser.
type View struct {
	FirstName string        `json:"first_name,omitempty"`
	Query     string        `json:"query,omitempty"`
	Pets      []PetView     `json:"pets"`
	Scans     scans.History `json:"scans"`
	Stats     pets.Stats    `json:"stats"`
	Error     string        `json:"error,omitempty"`
	Loading   bool          `json:"loading"`
}
