package scans

import (
	"encoding/json"
	"fmt"
	"time"

	"pet-guardian/internal/platform/jsonx"
)

// ScanEvent es un registro append-only que crea el backend cuando alguien
// escanea el QR y el navegador comparte su ubicación.
type ScanEvent struct {
	ID        string    `json:"id"`
	PetID     string    `json:"pet_id,omitempty"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Address   string    `json:"address"`
	ScannedAt time.Time `json:"scanned_at"`
}

// UnmarshalJSON tolera coordenadas como string y scanned_at sin zona o en
// otros formatos. Lo ilegible queda en cero.
func (e *ScanEvent) UnmarshalJSON(data []byte) error {
	type plain ScanEvent
	aux := struct {
		*plain
		Latitude  json.RawMessage `json:"latitude"`
		Longitude json.RawMessage `json:"longitude"`
		ScannedAt json.RawMessage `json:"scanned_at"`
	}{plain: (*plain)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	e.Latitude, _ = jsonx.Float(aux.Latitude)
	e.Longitude, _ = jsonx.Float(aux.Longitude)
	e.ScannedAt = jsonx.Time(aux.ScannedAt)
	return nil
}

// Report es el body de POST /public/pet/:id/scan.
type Report struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

// FallbackAddress formatea las coordenadas cuando no hay geocoding.
func FallbackAddress(lat, lng float64) string {
	return fmt.Sprintf("%.6f, %.6f", lat, lng)
}

// NewReport arma el reporte con la dirección de fallback.
func NewReport(lat, lng float64) Report {
	return Report{
		Latitude:  lat,
		Longitude: lng,
		Address:   FallbackAddress(lat, lng),
	}
}

// History es el historial por mascota: petID -> scans.
type History map[string][]ScanEvent

// Total cuenta todos los scans del historial.
func (h History) Total() int {
	n := 0
	for _, items := range h {
		n += len(items)
	}
	return n
}

// Clone copia el mapa (los slices se comparten; nunca se mutan in-place).
func (h History) Clone() History {
	out := make(History, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

// Only devuelve una copia con las mascotas de ids; el resto se descarta.
func (h History) Only(ids []string) History {
	out := make(History, len(ids))
	for _, id := range ids {
		if v, ok := h[id]; ok {
			out[id] = v
		}
	}
	return out
}
