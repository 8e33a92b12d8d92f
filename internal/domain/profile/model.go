package profile

import (
	"context"
	"errors"
	"strings"

	"pet-guardian/internal/domain/pets"
	"pet-guardian/internal/domain/scans"
)

var (
	ErrNoPetLoaded       = errors.New("no pet loaded")
	ErrContactIncomplete = errors.New("contact name and message are required")
)

const (
	MsgPetNotFound       = "Pet not found"
	MsgLoadFailed        = "Failed to load pet information"
	MsgContactFailed     = "Failed to send message"
	MsgContactIncomplete = "Please include your name and a message"
)

// API son los endpoints públicos (sin auth).
type API interface {
	PublicPet(ctx context.Context, petID string) (pets.PublicPet, error)
	ReportScan(ctx context.Context, petID string, r scans.Report) error
	SendContact(ctx context.Context, petID string, msg ContactMessage) error
}

// ContactMessage es lo que completa quien encontró a la mascota y también el
// body de POST /public/pet/:id/contact.
// Si ShareLocation está activo y no vienen coordenadas, se piden al Locator.
type ContactMessage struct {
	SenderName    string   `json:"senderName"`
	SenderEmail   string   `json:"senderEmail"`
	SenderPhone   string   `json:"senderPhone"`
	Message       string   `json:"message"`
	ShareLocation bool     `json:"shareLocation"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
}

func (m ContactMessage) Validate() error {
	if strings.TrimSpace(m.SenderName) == "" || strings.TrimSpace(m.Message) == "" {
		return ErrContactIncomplete
	}
	return nil
}

// View es lo que ve quien escaneó el QR.
type View struct {
	PetID             string             `json:"pet_id"`
	Pet               *pets.PublicPet    `json:"pet,omitempty"`
	Presentation      *pets.Presentation `json:"presentation,omitempty"`
	ProfileURL        string             `json:"profile_url,omitempty"`
	Error             string             `json:"error,omitempty"`
	Loading           bool               `json:"loading"`
	LocationRecorded  bool               `json:"location_recorded"`
	LocationAttempted bool               `json:"location_attempted"`
}
