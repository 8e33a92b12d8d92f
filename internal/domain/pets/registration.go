package pets

import (
	"errors"
	"strconv"
	"strings"
)

const MaxPhotos = 5

var (
	ErrTooManyPhotos = errors.New("maximum 5 photos allowed")
	ErrNameRequired  = errors.New("pet name is required")
)

// Photo es una foto en memoria, lista para subir.
type Photo struct {
	Name     string
	MimeType string
	Content  []byte
}

// PhotoSet son las fotos preparadas para el alta.
// Agregar por encima de MaxPhotos falla sin modificar el set.
type PhotoSet struct {
	items []Photo
}

func (s *PhotoSet) Add(photos ...Photo) error {
	if len(s.items)+len(photos) > MaxPhotos {
		return ErrTooManyPhotos
	}
	s.items = append(s.items, photos...)
	return nil
}

// Remove quita la foto en i; índices fuera de rango se ignoran.
func (s *PhotoSet) Remove(i int) {
	if i < 0 || i >= len(s.items) {
		return
	}
	s.items = append(s.items[:i:i], s.items[i+1:]...)
}

func (s *PhotoSet) Len() int { return len(s.items) }

// Photos devuelve una copia.
func (s *PhotoSet) Photos() []Photo {
	out := make([]Photo, len(s.items))
	copy(out, s.items)
	return out
}

// RegisterInput son los campos del formulario de alta (POST /pets, multipart).
type RegisterInput struct {
	Name           string
	Species        string
	Breed          string
	Age            string
	Color          string
	Description    string
	ShowOwnerPhone bool
	ShowOwnerEmail bool
	Photos         PhotoSet
}

// NewRegisterInput aplica los defaults del formulario original.
func NewRegisterInput() RegisterInput {
	return RegisterInput{
		Species:        "dog",
		ShowOwnerEmail: true,
	}
}

func (in RegisterInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrNameRequired
	}
	return nil
}

// Fields arma los campos multipart en orden estable.
func (in RegisterInput) Fields() [][2]string {
	species := strings.TrimSpace(in.Species)
	if species == "" {
		species = "dog"
	}
	return [][2]string{
		{"name", strings.TrimSpace(in.Name)},
		{"species", species},
		{"breed", strings.TrimSpace(in.Breed)},
		{"age", strings.TrimSpace(in.Age)},
		{"color", strings.TrimSpace(in.Color)},
		{"description", strings.TrimSpace(in.Description)},
		{"showOwnerPhone", strconv.FormatBool(in.ShowOwnerPhone)},
		{"showOwnerEmail", strconv.FormatBool(in.ShowOwnerEmail)},
	}
}

// Registered es la respuesta del alta.
type Registered struct {
	PetID  string `json:"petId"`
	QRCode string `json:"qrCode"`
}
