package memory

import (
	"context"
	"strings"
	"sync"

	"pet-guardian/internal/domain/session"
)

// ClientStorage guarda el token de cada sesión de browser en memoria.
// Se pierde al reiniciar el proceso (los browsers vuelven a loguearse).
type ClientStorage struct {
	mu      sync.RWMutex
	byScope map[string]string
}

func NewClientStorage() *ClientStorage {
	return &ClientStorage{
		byScope: make(map[string]string),
	}
}

// For devuelve el slot de un scope; sirve como session.StorageFactory.
func (s *ClientStorage) For(scope string) session.TokenStorage {
	return &scopedSlot{parent: s, scope: strings.TrimSpace(scope)}
}

func (s *ClientStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byScope)
}

type scopedSlot struct {
	parent *ClientStorage
	scope  string
}

func (t *scopedSlot) Load(ctx context.Context) (string, error) {
	t.parent.mu.RLock()
	defer t.parent.mu.RUnlock()
	return t.parent.byScope[t.scope], nil
}

func (t *scopedSlot) Save(ctx context.Context, token string) error {
	t.parent.mu.Lock()
	defer t.parent.mu.Unlock()
	t.parent.byScope[t.scope] = token
	return nil
}

func (t *scopedSlot) Clear(ctx context.Context) error {
	t.parent.mu.Lock()
	defer t.parent.mu.Unlock()
	delete(t.parent.byScope, t.scope)
	return nil
}
