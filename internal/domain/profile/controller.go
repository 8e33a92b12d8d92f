package profile

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"pet-guardian/internal/domain/pets"
	"pet-guardian/internal/domain/qr"
	"pet-guardian/internal/domain/scans"
	"pet-guardian/internal/domain/session"
	"pet-guardian/internal/platform/httpclient"
	"pet-guardian/internal/platform/logger"
	"pet-guardian/internal/ports/geolocation"
)

// Controller es la vista del perfil público de un visitante.
// Por cada petID distinto se intenta registrar un scan una sola vez;
// cambiar de petID resetea esa marca.
type Controller struct {
	api         API
	locator     geolocation.Locator
	log         logger.Logger
	frontendURL string
	now         func() time.Time

	mu        sync.Mutex
	petID     string
	gen       uint64
	pet       *pets.PublicPet
	errMsg    string
	loading   bool
	attempted bool
	recorded  bool
	lastSeen  time.Time

	bg            context.Context
	cancel        context.CancelFunc
	cancelCapture context.CancelFunc
	stopped       bool
	wg            sync.WaitGroup
}

// resetter lo implementan los Locator con estado por vista (Browser).
type resetter interface {
	Reset()
}

func NewController(api API, locator geolocation.Locator, log logger.Logger, frontendURL string) *Controller {
	if log == nil {
		log = logger.Nop()
	}
	bg, cancel := context.WithCancel(context.Background())
	return &Controller{
		api:         api,
		locator:     locator,
		log:         log,
		frontendURL: frontendURL,
		now:         time.Now,
		bg:          bg,
		cancel:      cancel,
	}
}

// Load trae el perfil. Con el perfil cargado, y si todavía no se intentó
// para este petID, lanza la captura de ubicación sin esperarla.
func (c *Controller) Load(ctx context.Context, petID string) error {
	petID = strings.TrimSpace(petID)

	c.mu.Lock()
	if petID != c.petID {
		if c.cancelCapture != nil {
			c.cancelCapture()
			c.cancelCapture = nil
		}
		if r, ok := c.locator.(resetter); ok {
			r.Reset()
		}
		c.petID = petID
		c.gen++
		c.pet = nil
		c.errMsg = ""
		c.attempted = false
		c.recorded = false
	}
	gen := c.gen
	c.loading = true
	c.lastSeen = c.now()
	c.mu.Unlock()

	p, err := c.api.PublicPet(ctx, petID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		// otra navegación ganó; este resultado ya no aplica
		return nil
	}
	c.loading = false

	if err != nil {
		msg := MsgLoadFailed
		if _, ok := httpclient.AsHTTPError(err); ok {
			msg = MsgPetNotFound
		}
		c.pet = nil
		c.errMsg = msg
		c.log.Warn("load public profile failed", map[string]any{"pet_id": petID, "error": err})
		return &session.UserError{Message: msg, Err: err}
	}

	c.pet = &p
	c.errMsg = ""

	if !c.attempted {
		c.attempted = true
		capCtx, cancel := context.WithCancel(c.bg)
		c.cancelCapture = cancel
		c.spawnLocked(func() {
			defer cancel()
			c.captureScan(capCtx, petID, gen)
		})
	}
	return nil
}

// captureScan pide la ubicación y reporta el scan. Cualquier fallo se loguea
// y no se reintenta en esta vista.
func (c *Controller) captureScan(ctx context.Context, petID string, gen uint64) {
	if c.locator == nil {
		return
	}

	pos, err := c.locator.Locate(ctx)
	if err != nil {
		lvl := c.log.Warn
		if errors.Is(err, geolocation.ErrPermissionDenied) || errors.Is(err, geolocation.ErrUnavailable) {
			lvl = c.log.Debug
		}
		lvl("scan location not captured", map[string]any{"pet_id": petID, "error": err})
		return
	}

	if err := c.api.ReportScan(ctx, petID, scans.NewReport(pos.Latitude, pos.Longitude)); err != nil {
		c.log.Warn("record scan failed", map[string]any{"pet_id": petID, "error": err})
		return
	}

	c.mu.Lock()
	if c.gen == gen {
		c.recorded = true
	}
	c.mu.Unlock()
	c.log.Info("scan recorded", map[string]any{"pet_id": petID})
}

// SendContact manda el mensaje al dueño de la mascota que se está viendo.
func (c *Controller) SendContact(ctx context.Context, in ContactMessage) error {
	c.mu.Lock()
	petID := c.petID
	loaded := c.pet != nil
	c.lastSeen = c.now()
	c.mu.Unlock()

	if petID == "" || !loaded {
		return &session.UserError{Message: MsgContactFailed, Err: ErrNoPetLoaded}
	}
	if err := in.Validate(); err != nil {
		return &session.UserError{Message: MsgContactIncomplete, Err: err}
	}

	msg := in
	msg.SenderName = strings.TrimSpace(in.SenderName)
	msg.SenderEmail = strings.TrimSpace(in.SenderEmail)
	msg.SenderPhone = strings.TrimSpace(in.SenderPhone)
	if !in.ShareLocation {
		msg.Latitude, msg.Longitude = nil, nil
	} else if (in.Latitude == nil || in.Longitude == nil) && c.locator != nil {
		pos, err := c.locator.Locate(ctx)
		if err != nil {
			return &session.UserError{Message: MsgContactFailed, Err: err}
		}
		lat, lng := pos.Latitude, pos.Longitude
		msg.Latitude, msg.Longitude = &lat, &lng
	}

	if err := c.api.SendContact(ctx, petID, msg); err != nil {
		c.log.Warn("send contact failed", map[string]any{"pet_id": petID, "error": err})
		return &session.UserError{Message: MsgContactFailed, Err: err}
	}
	return nil
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		PetID:             c.petID,
		Error:             c.errMsg,
		Loading:           c.loading,
		LocationRecorded:  c.recorded,
		LocationAttempted: c.attempted,
	}
	if c.pet != nil {
		p := *c.pet
		pres := p.Status.Present()
		v.Pet = &p
		v.Presentation = &pres
		v.ProfileURL = qr.ProfileURL(c.frontendURL, p.ID)
	}
	return v
}

// PetID es el perfil que se está viendo ("" si ninguno).
func (c *Controller) PetID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.petID
}

func (c *Controller) LastSeen() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSeen
}

// Wait espera las capturas en curso.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Stop cancela las capturas pendientes y espera a que terminen.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	c.cancel()
	c.mu.Unlock()

	c.wg.Wait()
}

// spawnLocked requiere c.mu tomado.
func (c *Controller) spawnLocked(fn func()) {
	if c.stopped {
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn()
	}()
}
