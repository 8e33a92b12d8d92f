package geolocation

import (
	"context"

	"pet-guardian/internal/ports/geolocation"
)

// Static devuelve siempre la misma posición (flags del CLI, tests).
type Static struct {
	Position geolocation.Position
}

func (s Static) Locate(ctx context.Context) (geolocation.Position, error) {
	if err := ctx.Err(); err != nil {
		return geolocation.Position{}, geolocation.ErrUnavailable
	}
	return s.Position, nil
}

// Unavailable es el dispositivo sin geolocalización.
type Unavailable struct{}

func (Unavailable) Locate(context.Context) (geolocation.Position, error) {
	return geolocation.Position{}, geolocation.ErrUnavailable
}

// Denied es el usuario que rechaza el permiso.
type Denied struct{}

func (Denied) Locate(context.Context) (geolocation.Position, error) {
	return geolocation.Position{}, geolocation.ErrPermissionDenied
}
