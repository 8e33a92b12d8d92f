package pets

import (
	"errors"
	"strings"

	"pet-guardian/internal/platform/jsonx"
)

var ErrInvalidStatus = errors.New("invalid pet status")

// Status es el estado de una mascota. Solo existen tres valores.
// @Enum safe, lost, found
type Status string

const (
	StatusSafe  Status = "safe"
	StatusLost  Status = "lost"
	StatusFound Status = "found"
)

// ParseStatus valida estados que vienen del usuario; desconocido => error.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusSafe:
		return StatusSafe, nil
	case StatusLost:
		return StatusLost, nil
	case StatusFound:
		return StatusFound, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Presentation es lo que la UI necesita para pintar un estado.
type Presentation struct {
	Label string `json:"label"`
	Tone  string `json:"tone"`
	Icon  string `json:"icon"`
}

// Present resuelve la presentación. Valores desconocidos que vengan del
// servidor caen en la rama de safe.
func (s Status) Present() Presentation {
	switch s {
	case StatusLost:
		return Presentation{Label: "MISSING", Tone: "red", Icon: "alert-triangle"}
	case StatusFound:
		return Presentation{Label: "FOUND", Tone: "emerald", Icon: "check-circle"}
	default:
		return Presentation{Label: "SAFE AT HOME", Tone: "blue", Icon: "heart"}
	}
}

// Age es la edad tal como la cargó el dueño ("3", "2.5", "3 years").
// El backend la manda como número o como texto.
type Age string

func (a *Age) UnmarshalJSON(data []byte) error {
	*a = Age(strings.TrimSpace(jsonx.String(data)))
	return nil
}

// Pet es la mascota tal como la devuelve GET /pets.
type Pet struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Species     string          `json:"species"`
	Breed       string          `json:"breed"`
	Age         Age             `json:"age,omitempty"`
	Color       string          `json:"color,omitempty"`
	Description string          `json:"description,omitempty"`
	Photos      []string        `json:"photos"`
	Status      Status          `json:"status"`
	QRCode      string          `json:"qr_code"`
	CreatedAt   jsonx.Timestamp `json:"created_at"`
}

// Owner son los datos de contacto que el dueño decidió exponer.
type Owner struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// PublicPet es el perfil público (GET /public/pet/:id).
type PublicPet struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Species     string   `json:"species"`
	Breed       string   `json:"breed"`
	Age         Age      `json:"age,omitempty"`
	Color       string   `json:"color,omitempty"`
	Description string   `json:"description,omitempty"`
	Photos      []string `json:"photos"`
	Status      Status   `json:"status"`
	Owner       Owner    `json:"owner"`
}

// Stats son los contadores del dashboard.
type Stats struct {
	TotalPets  int `json:"total_pets"`
	SafePets   int `json:"safe_pets"`
	LostPets   int `json:"lost_pets"`
	TotalScans int `json:"total_scans"`
}

// CountStats calcula los contadores; totalScans lo aporta quien tiene el historial.
func CountStats(items []Pet, totalScans int) Stats {
	st := Stats{TotalPets: len(items), TotalScans: totalScans}
	for _, p := range items {
		switch p.Status {
		case StatusSafe:
			st.SafePets++
		case StatusLost:
			st.LostPets++
		}
	}
	return st
}
