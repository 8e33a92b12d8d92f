package geolocation

import (
	"context"
	"sync"
	"time"

	"pet-guardian/internal/ports/geolocation"
)

const DefaultBrowserTimeout = 2 * time.Minute

// Browser es el Locator del BFF: la posición la entrega más tarde el
// navegador (POST /pet/{id}/location) o la niega.
// La primera respuesta desbloquea a todos los Locate pendientes; las
// siguientes reemplazan la anterior.
type Browser struct {
	timeout time.Duration

	mu      sync.Mutex
	ready   chan struct{}
	settled bool
	pos     geolocation.Position
	err     error
}

func NewBrowser(timeout time.Duration) *Browser {
	if timeout <= 0 {
		timeout = DefaultBrowserTimeout
	}
	return &Browser{
		timeout: timeout,
		ready:   make(chan struct{}),
	}
}

func (b *Browser) Locate(ctx context.Context) (geolocation.Position, error) {
	b.mu.Lock()
	ready := b.ready
	b.mu.Unlock()

	t := time.NewTimer(b.timeout)
	defer t.Stop()

	select {
	case <-ready:
	case <-ctx.Done():
		return geolocation.Position{}, geolocation.ErrUnavailable
	case <-t.C:
		return geolocation.Position{}, geolocation.ErrUnavailable
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.settled {
		// hubo un Reset mientras esperaba
		return geolocation.Position{}, geolocation.ErrUnavailable
	}
	return b.pos, b.err
}

// Deliver publica la posición que compartió el navegador.
func (b *Browser) Deliver(pos geolocation.Position) {
	b.settle(pos, nil)
}

// Deny registra que el usuario no dio permiso.
func (b *Browser) Deny() {
	b.settle(geolocation.Position{}, geolocation.ErrPermissionDenied)
}

// Reset descarta la respuesta anterior: la próxima vista vuelve a esperar
// al navegador.
func (b *Browser) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.settled {
		b.ready = make(chan struct{})
		b.settled = false
	}
	b.pos, b.err = geolocation.Position{}, nil
}

func (b *Browser) settle(pos geolocation.Position, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pos, b.err = pos, err
	if !b.settled {
		b.settled = true
		close(b.ready)
	}
}
