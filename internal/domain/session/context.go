package session

import (
	"context"
	"net/http"
)

type ctxKey string

const (
	storeKey    ctxKey = "session.store"
	sidKey      ctxKey = "session.sid"
	rotationKey ctxKey = "session.rotation"
)

// SIDIssuer graba un sid nuevo en el browser (cookie).
type SIDIssuer func(w http.ResponseWriter, r *http.Request, sid string) error

type rotation struct {
	reg   *Registry
	issue SIDIssuer
}

// WithStore adjunta el Store (y su sid) al contexto del request.
func WithStore(ctx context.Context, sid string, s *Store) context.Context {
	ctx = context.WithValue(ctx, sidKey, sid)
	return context.WithValue(ctx, storeKey, s)
}

// WithRotation habilita el cambio de sid al autenticar: login y register
// corren sobre un Store nuevo de reg y el browser recibe su sid con issue.
func WithRotation(ctx context.Context, reg *Registry, issue SIDIssuer) context.Context {
	return context.WithValue(ctx, rotationKey, rotation{reg: reg, issue: issue})
}

func FromContext(ctx context.Context) (*Store, bool) {
	s, ok := ctx.Value(storeKey).(*Store)
	return s, ok && s != nil
}

func SIDFromContext(ctx context.Context) string {
	sid, _ := ctx.Value(sidKey).(string)
	return sid
}

func rotationFrom(ctx context.Context) (rotation, bool) {
	rot, ok := ctx.Value(rotationKey).(rotation)
	return rot, ok && rot.reg != nil && rot.issue != nil
}
