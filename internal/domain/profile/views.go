package profile

import (
	"context"
	"sync"
	"time"

	"pet-guardian/internal/platform/logger"
	"pet-guardian/internal/ports/geolocation"
)

const DefaultIdleTimeout = 30 * time.Minute

// Receiver lo implementan los Locator que reciben la posición desde afuera
// (el navegador la manda en un request aparte).
type Receiver interface {
	Deliver(pos geolocation.Position)
	Deny()
}

// LocatorFactory crea el Locator de un visitante nuevo.
type LocatorFactory func() geolocation.Locator

type visit struct {
	ctrl    *Controller
	locator geolocation.Locator
}

// Views guarda una vista de perfil por visitante (cookie de sesión).
// Las vistas sin uso por más de IdleTimeout se descartan en Sweep.
type Views struct {
	api         API
	newLocator  LocatorFactory
	log         logger.Logger
	frontendURL string
	IdleTimeout time.Duration
	now         func() time.Time

	mu    sync.Mutex
	items map[string]*visit
}

func NewViews(api API, newLocator LocatorFactory, log logger.Logger, frontendURL string) *Views {
	if log == nil {
		log = logger.Nop()
	}
	return &Views{
		api:         api,
		newLocator:  newLocator,
		log:         log,
		frontendURL: frontendURL,
		IdleTimeout: DefaultIdleTimeout,
		now:         time.Now,
		items:       make(map[string]*visit),
	}
}

// For devuelve la vista del visitante, creándola si no existe.
func (v *Views) For(visitorID string) *Controller {
	return v.get(visitorID).ctrl
}

// Receiver devuelve el Locator del visitante si acepta posiciones externas.
func (v *Views) Receiver(visitorID string) (Receiver, bool) {
	r, ok := v.get(visitorID).locator.(Receiver)
	return r, ok
}

func (v *Views) get(visitorID string) *visit {
	v.mu.Lock()
	defer v.mu.Unlock()

	if it, ok := v.items[visitorID]; ok {
		return it
	}

	var loc geolocation.Locator
	if v.newLocator != nil {
		loc = v.newLocator()
	}
	ctrl := NewController(v.api, loc, v.log.With(map[string]any{"component": "profile"}), v.frontendURL)
	ctrl.now = v.now
	it := &visit{ctrl: ctrl, locator: loc}
	v.items[visitorID] = it
	return it
}

// Sweep descarta las vistas inactivas y devuelve cuántas quitó.
func (v *Views) Sweep() int {
	idle := v.IdleTimeout
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	cutoff := v.now().Add(-idle)

	v.mu.Lock()
	var stale []*visit
	for id, it := range v.items {
		if it.ctrl.LastSeen().Before(cutoff) {
			stale = append(stale, it)
			delete(v.items, id)
		}
	}
	v.mu.Unlock()

	for _, it := range stale {
		it.ctrl.Stop()
	}
	if len(stale) > 0 {
		v.log.Debug("profile views swept", map[string]any{"count": len(stale)})
	}
	return len(stale)
}

// Run barre periódicamente hasta que ctx termine.
func (v *Views) Run(ctx context.Context, every time.Duration) {
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
			v.Sweep()
		}
	}
}

func (v *Views) StopAll() {
	v.mu.Lock()
	items := v.items
	v.items = make(map[string]*visit)
	v.mu.Unlock()

	for _, it := range items {
		it.ctrl.Stop()
	}
}

func (v *Views) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.items)
}
