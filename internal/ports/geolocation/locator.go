package geolocation

import (
	"context"
	"errors"
)

var (
	ErrPermissionDenied = errors.New("geolocation permission denied")
	ErrUnavailable      = errors.New("geolocation unavailable")
)

// Position son coordenadas WGS84 en grados.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Locator pide la ubicación del dispositivo de quien mira el perfil.
// Puede bloquear hasta que el usuario responda; respeta ctx.
type Locator interface {
	Locate(ctx context.Context) (Position, error)
}
