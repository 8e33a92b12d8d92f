package dashboard

import (
	"context"
	"sync"
	"time"

	"pet-guardian/internal/platform/logger"
)

// Registry guarda un Controller por sesión de browser (sid).
// El controller arranca en el primer uso y se detiene con Stop (logout) o
// cuando Sweep lo encuentra sin actividad.
type Registry struct {
	api  API
	log  logger.Logger
	opts Options
	now  func() time.Time

	mu    sync.Mutex
	items map[string]*Controller
}

func NewRegistry(api API, log logger.Logger, opts Options) *Registry {
	if log == nil {
		log = logger.Nop()
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}
	return &Registry{
		api:   api,
		log:   log,
		opts:  opts,
		now:   time.Now,
		items: make(map[string]*Controller),
	}
}

// For devuelve el controller de sid, creándolo y arrancándolo si no existe.
// Cada llamada cuenta como actividad del browser.
func (r *Registry) For(sid string, sess Session) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.items[sid]; ok {
		c.Touch()
		return c
	}
	c := NewController(r.api, sess, r.log.With(map[string]any{"component": "dashboard"}), r.opts)
	c.now = r.now
	c.Touch()
	c.Start()
	r.items[sid] = c
	return c
}

// Stop detiene y olvida el controller de sid.
func (r *Registry) Stop(sid string) {
	r.mu.Lock()
	c, ok := r.items[sid]
	delete(r.items, sid)
	r.mu.Unlock()

	if ok {
		c.Stop()
	}
}

// Sweep detiene los controllers sin actividad y devuelve cuántos quitó.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.opts.IdleTimeout)

	r.mu.Lock()
	var stale []*Controller
	for sid, c := range r.items {
		if c.LastSeen().Before(cutoff) {
			stale = append(stale, c)
			delete(r.items, sid)
		}
	}
	r.mu.Unlock()

	for _, c := range stale {
		c.Stop()
	}
	if len(stale) > 0 {
		r.log.Debug("dashboards swept", map[string]any{"count": len(stale)})
	}
	return len(stale)
}

// Run barre periódicamente hasta que ctx termine.
func (r *Registry) Run(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = time.Minute
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.Sweep()
		}
	}
}

// StopAll se usa en el shutdown del server.
func (r *Registry) StopAll() {
	r.mu.Lock()
	items := r.items
	r.items = make(map[string]*Controller)
	r.mu.Unlock()

	for _, c := range items {
		c.Stop()
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
