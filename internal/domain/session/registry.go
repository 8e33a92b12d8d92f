package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"pet-guardian/internal/platform/logger"

	"github.com/google/uuid"
)

const (
	DefaultIdleTimeout    = 30 * time.Minute
	DefaultRestoreTimeout = 10 * time.Second
)

// Registry mantiene un Store por sesión de browser (sid).
// El primer acceso a un sid restaura el Store desde su storage; si falla
// por un error transitorio se reintenta en el próximo acceso.
type Registry struct {
	api        AuthAPI
	storageFor StorageFactory
	log        logger.Logger
	now        func() time.Time

	// OnCreate corre una vez por Store nuevo, antes de restaurarlo.
	OnCreate func(sid string, s *Store)

	// IdleTimeout: Sweep descarta los Stores sin sesión iniciada que no se
	// usaron en este tiempo.
	IdleTimeout time.Duration
	// RestoreTimeout acota el Restore, que no depende del request que lo disparó.
	RestoreTimeout time.Duration

	mu      sync.Mutex
	entries map[string]*registryEntry
}

type registryEntry struct {
	store  *Store
	seenAt time.Time // protegido por Registry.mu

	restoreMu sync.Mutex
	restored  bool
}

func NewRegistry(api AuthAPI, storageFor StorageFactory, log logger.Logger) *Registry {
	if log == nil {
		log = logger.Nop()
	}
	return &Registry{
		api:            api,
		storageFor:     storageFor,
		log:            log,
		now:            time.Now,
		IdleTimeout:    DefaultIdleTimeout,
		RestoreTimeout: DefaultRestoreTimeout,
		entries:        make(map[string]*registryEntry),
	}
}

func (r *Registry) Get(ctx context.Context, sid string) *Store {
	sid = strings.TrimSpace(sid)

	r.mu.Lock()
	e, ok := r.entries[sid]
	if !ok {
		st := NewStore(r.api, r.storageFor(sid), r.log.With(map[string]any{"sid": shortID(sid)}))
		e = &registryEntry{store: st}
		r.entries[sid] = e
		if r.OnCreate != nil {
			r.OnCreate(sid, st)
		}
	}
	e.seenAt = r.now()
	r.mu.Unlock()

	// restore fuera del lock global: no bloquea a otras sesiones
	r.restore(ctx, sid, e)
	return e.store
}

// Fresh crea un Store vacío bajo un sid nuevo.
func (r *Registry) Fresh(ctx context.Context) (string, *Store) {
	sid := uuid.NewString()
	return sid, r.Get(ctx, sid)
}

// restore corre hasta que sale bien una vez. El contexto no se cancela con
// el request: un cliente que corta no deja al sid sin sesión.
func (r *Registry) restore(ctx context.Context, sid string, e *registryEntry) {
	e.restoreMu.Lock()
	defer e.restoreMu.Unlock()

	if e.restored {
		return
	}
	if e.store.Authenticated() {
		e.restored = true
		return
	}

	timeout := r.RestoreTimeout
	if timeout <= 0 {
		timeout = DefaultRestoreTimeout
	}
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := e.store.Restore(rctx); err != nil {
		r.log.Warn("session restore failed; will retry", map[string]any{"sid": shortID(sid), "error": err})
		return
	}
	e.restored = true
}

// Drop olvida el Store de sid (el storage durable no se toca).
func (r *Registry) Drop(sid string) {
	r.mu.Lock()
	delete(r.entries, sid)
	r.mu.Unlock()
}

// Sweep descarta los Stores sin sesión iniciada y sin uso en IdleTimeout
// (visitantes del perfil público, bots). Devuelve cuántos quitó.
// Los autenticados quedan.
func (r *Registry) Sweep() int {
	idle := r.IdleTimeout
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	n := 0
	for sid, e := range r.entries {
		if e.seenAt.Before(cutoff) && !e.store.Authenticated() {
			delete(r.entries, sid)
			n++
		}
	}
	r.mu.Unlock()

	if n > 0 {
		r.log.Debug("anonymous sessions swept", map[string]any{"count": n})
	}
	return n
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func shortID(sid string) string {
	if len(sid) > 8 {
		return sid[:8]
	}
	return sid
}
