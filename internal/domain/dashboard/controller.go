package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"pet-guardian/internal/domain/pets"
	"pet-guardian/internal/domain/qr"
	"pet-guardian/internal/domain/scans"
	"pet-guardian/internal/domain/session"
	"pet-guardian/internal/platform/httpclient"
	"pet-guardian/internal/platform/logger"

	"golang.org/x/sync/errgroup"
)

type Options struct {
	// RefreshInterval del refresco de scans; <= 0 usa el default (15s).
	RefreshInterval time.Duration
	// ScanWorkers limita los GET /pets/:id/scans concurrentes.
	ScanWorkers int
	// FrontendURL arma las URLs públicas de cada mascota.
	FrontendURL string
	// IdleTimeout: el Registry descarta controllers sin requests por más
	// de este tiempo; <= 0 usa el default (30m).
	IdleTimeout time.Duration
}

// Controller es el estado del dashboard de un usuario: mascotas, historial
// de scans por mascota y el error visible.
// El trabajo en segundo plano vive hasta Stop, o hasta que la API rechace el
// token en un refresco.
type Controller struct {
	api  API
	sess Session
	log  logger.Logger
	opts Options
	now  func() time.Time

	mu      sync.RWMutex
	items   []pets.Pet
	history scans.History
	errMsg  string
	loading bool
	seenAt  time.Time

	// rejected: un GET de scans devolvió 401/403; no se piden más hasta que
	// FetchPets vuelva a andar.
	rejected atomic.Bool

	bg      context.Context
	cancel  context.CancelFunc
	lifeMu  sync.Mutex
	started bool
	stopped bool
	loops   sync.WaitGroup
	fetches sync.WaitGroup
}

func NewController(api API, sess Session, log logger.Logger, opts Options) *Controller {
	if log == nil {
		log = logger.Nop()
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}
	if opts.ScanWorkers <= 0 {
		opts.ScanWorkers = DefaultScanWorkers
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}

	bg, cancel := context.WithCancel(context.Background())
	return &Controller{
		api:     api,
		sess:    sess,
		log:     log,
		opts:    opts,
		now:     time.Now,
		history: scans.History{},
		seenAt:  time.Now(),
		bg:      bg,
		cancel:  cancel,
	}
}

// Touch marca actividad del browser.
func (c *Controller) Touch() {
	c.mu.Lock()
	c.seenAt = c.now()
	c.mu.Unlock()
}

func (c *Controller) LastSeen() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.seenAt
}

// FetchPets recarga la lista de mascotas y dispara la carga de scans.
func (c *Controller) FetchPets(ctx context.Context) error {
	c.setError("")

	token := c.sess.Token()
	if token == "" {
		c.fail(MsgNotLoggedIn)
		return ErrNotLoggedIn
	}

	c.setLoading(true)
	defer c.setLoading(false)

	items, err := c.api.ListPets(ctx, token)
	if err != nil {
		if he, ok := httpclient.AsHTTPError(err); ok {
			if he.Unauthorized() {
				c.fail("")
				if lerr := c.sess.Logout(ctx); lerr != nil {
					c.log.Warn("logout after rejected token failed", map[string]any{"error": lerr})
				}
				return ErrSessionInvalidated
			}
			msg := httpclient.ServerMessage(err, MsgLoadFailed)
			c.fail(msg)
			return &session.UserError{Message: msg, Err: err}
		}
		c.log.Error("fetch pets failed", map[string]any{"error": err})
		c.fail(MsgNetworkError)
		return &session.UserError{Message: MsgNetworkError, Err: err}
	}

	ids := petIDs(items)
	c.rejected.Store(false)

	c.mu.Lock()
	c.items = items
	c.history = c.history.Only(ids)
	c.errMsg = ""
	c.mu.Unlock()

	c.spawn(&c.fetches, func(bg context.Context) {
		c.loadScans(bg, ids)
	})
	return nil
}

// RefreshScans vuelve a pedir el historial de las mascotas conocidas.
// Nunca recarga la lista de mascotas.
func (c *Controller) RefreshScans(ctx context.Context) {
	c.mu.RLock()
	ids := petIDs(c.items)
	c.mu.RUnlock()

	c.loadScans(ctx, ids)
}

// Focus es la vuelta del foco a la ventana: refresco inmediato en segundo plano.
func (c *Controller) Focus() {
	c.spawn(&c.fetches, c.RefreshScans)
}

// Start arranca el refresco periódico. Llamadas repetidas no hacen nada.
// El refresco termina solo si la API rechaza el token.
func (c *Controller) Start() {
	c.lifeMu.Lock()
	if c.started || c.stopped {
		c.lifeMu.Unlock()
		return
	}
	c.started = true
	c.lifeMu.Unlock()

	c.spawn(&c.loops, func(bg context.Context) {
		t := time.NewTicker(c.opts.RefreshInterval)
		defer t.Stop()
		for {
			select {
			case <-bg.Done():
				return
			case <-t.C:
				c.RefreshScans(bg)
				if c.rejected.Load() {
					c.log.Warn("scan refresh stopped: token rejected", nil)
					return
				}
			}
		}
	})
}

// Stop cancela el refresco y los fetch en curso y espera a que terminen.
func (c *Controller) Stop() {
	c.lifeMu.Lock()
	if c.stopped {
		c.lifeMu.Unlock()
		return
	}
	c.stopped = true
	c.cancel()
	c.lifeMu.Unlock()

	c.loops.Wait()
	c.fetches.Wait()
}

// Wait espera los fetch de scans ya lanzados (no el refresco periódico).
func (c *Controller) Wait() {
	c.fetches.Wait()
}

// UpdatePetStatus cambia el estado y, si sale bien, recarga todo.
// Un fallo se loguea y el estado queda como estaba.
func (c *Controller) UpdatePetStatus(ctx context.Context, petID, status string) error {
	st, err := pets.ParseStatus(status)
	if err != nil {
		return err
	}

	token := c.sess.Token()
	if token == "" {
		return ErrNotLoggedIn
	}

	if err := c.api.UpdatePetStatus(ctx, token, petID, st); err != nil {
		c.log.Warn("update pet status failed", map[string]any{"pet_id": petID, "status": st, "error": err})
		return fmt.Errorf("dashboard: update status: %w", err)
	}
	return c.FetchPets(ctx)
}

// RegisterPet da de alta una mascota y recarga la lista.
func (c *Controller) RegisterPet(ctx context.Context, in pets.RegisterInput) (pets.Registered, error) {
	if err := in.Validate(); err != nil {
		return pets.Registered{}, &session.UserError{Message: MsgNameRequired, Err: err}
	}

	token := c.sess.Token()
	if token == "" {
		return pets.Registered{}, &session.UserError{Message: MsgNotLoggedIn, Err: ErrNotLoggedIn}
	}

	reg, err := c.api.RegisterPet(ctx, token, in)
	if err != nil {
		return pets.Registered{}, &session.UserError{
			Message: httpclient.ServerMessage(err, MsgRegisterFailed),
			Err:     err,
		}
	}

	if err := c.FetchPets(ctx); err != nil {
		c.log.Warn("reload after register failed", map[string]any{"pet_id": reg.PetID, "error": err})
	}
	return reg, nil
}

// Pet busca una mascota ya cargada.
func (c *Controller) Pet(petID string) (pets.Pet, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.items {
		if p.ID == petID {
			return p, true
		}
	}
	return pets.Pet{}, false
}

func (c *Controller) Pets() []pets.Pet {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]pets.Pet, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Controller) Scans() scans.History {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.history.Clone()
}

func (c *Controller) Error() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.errMsg
}

// Snapshot arma la vista; query filtra la lista, no los contadores.
func (c *Controller) Snapshot(query string) View {
	c.mu.RLock()
	items := c.items
	history := c.history.Clone()
	errMsg := c.errMsg
	loading := c.loading
	c.mu.RUnlock()

	filtered := pets.Filter(items, query)
	views := make([]PetView, 0, len(filtered))
	for _, p := range filtered {
		views = append(views, PetView{
			Pet:          p,
			Presentation: p.Status.Present(),
			ProfileURL:   qr.ProfileURL(c.opts.FrontendURL, p.ID),
		})
	}

	v := View{
		Query:   query,
		Pets:    views,
		Scans:   history,
		Stats:   pets.CountStats(items, history.Total()),
		Error:   errMsg,
		Loading: loading,
	}
	if u, ok := c.sess.User(); ok {
		v.FirstName = u.FirstName
	}
	return v
}

// loadScans pide el historial de cada mascota con concurrencia acotada.
// Los fallos por mascota solo se loguean; gana la última escritura.
func (c *Controller) loadScans(ctx context.Context, ids []string) {
	if len(ids) == 0 {
		return
	}
	token := c.sess.Token()
	if token == "" || c.rejected.Load() {
		return
	}

	var g errgroup.Group
	g.SetLimit(c.opts.ScanWorkers)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			items, err := c.api.ListScans(ctx, token, id)
			if err != nil {
				if he, ok := httpclient.AsHTTPError(err); ok && he.Unauthorized() {
					c.rejected.Store(true)
					return nil
				}
				if !errors.Is(err, context.Canceled) {
					c.log.Warn("fetch scan history failed", map[string]any{"pet_id": id, "error": err})
				}
				return nil
			}
			c.mu.Lock()
			defer c.mu.Unlock()
			// la mascota pudo desaparecer de la lista mientras tanto
			if !hasPet(c.items, id) {
				return nil
			}
			next := c.history.Clone()
			next[id] = items
			c.history = next
			return nil
		})
	}
	_ = g.Wait()
}

// spawn corre fn en segundo plano con el contexto del controller.
// Después de Stop no lanza nada.
func (c *Controller) spawn(wg *sync.WaitGroup, fn func(ctx context.Context)) {
	c.lifeMu.Lock()
	defer c.lifeMu.Unlock()
	if c.stopped {
		return
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		fn(c.bg)
	}()
}

func (c *Controller) setError(msg string) {
	c.mu.Lock()
	c.errMsg = msg
	c.mu.Unlock()
}

func (c *Controller) setLoading(v bool) {
	c.mu.Lock()
	c.loading = v
	c.mu.Unlock()
}

// fail deja la lista y el historial vacíos con el mensaje dado.
func (c *Controller) fail(msg string) {
	c.mu.Lock()
	c.items = nil
	c.history = scans.History{}
	c.errMsg = msg
	c.mu.Unlock()
}

func hasPet(items []pets.Pet, id string) bool {
	for _, p := range items {
		if p.ID == id {
			return true
		}
	}
	return false
}

func petIDs(items []pets.Pet) []string {
	ids := make([]string, 0, len(items))
	for _, p := range items {
		ids = append(ids, p.ID)
	}
	return ids
}
