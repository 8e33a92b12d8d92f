package router

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	_ "pet-guardian/docs"
	"pet-guardian/internal/adapters/backend"
	geoadapter "pet-guardian/internal/adapters/geolocation"
	mem "pet-guardian/internal/adapters/storage/memory"
	pg "pet-guardian/internal/adapters/storage/postgres"
	"pet-guardian/internal/domain/dashboard"
	"pet-guardian/internal/domain/profile"
	"pet-guardian/internal/domain/qr"
	"pet-guardian/internal/domain/session"
	"pet-guardian/internal/middleware"
	"pet-guardian/internal/platform/config"
	"pet-guardian/internal/platform/logger"
	"pet-guardian/internal/ports/geolocation"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Backend es todo lo que el BFF le pide a la API. *backend.Client lo cumple.
type Backend interface {
	session.AuthAPI
	dashboard.API
	profile.API
}

type Options struct {
	Config *config.Config
	Logger logger.Logger

	// Opcional: si no viene se arma un backend.Client con Config.APIBaseURL.
	Backend Backend

	// Opcional: si viene (o hay DB_DSN), los tokens se guardan en Postgres.
	// Si no, in-memory.
	DB *sql.DB

	// Opcional: default es el Locator que espera la posición del navegador.
	NewLocator profile.LocatorFactory

	// Opcional: default es una cookie firmada con SESSION_SECRET.
	Cookies sessions.Store
}

// App es el handler HTTP más los registros con trabajo en segundo plano.
type App struct {
	Handler    http.Handler
	Sessions   *session.Registry
	Dashboards *dashboard.Registry
	Views      *profile.Views

	db *sql.DB
}

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.Handler.ServeHTTP(w, r)
}

// Sweep descarta dashboards, vistas de perfil y sesiones anónimas sin
// actividad. Los dashboards van primero: su sesión nunca se descarta antes.
func (a *App) Sweep() {
	a.Dashboards.Sweep()
	a.Views.Sweep()
	a.Sessions.Sweep()
}

// Run barre periódicamente hasta que ctx termine.
func (a *App) Run(ctx context.Context, every time.Duration) {
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
			a.Sweep()
		}
	}
}

// Close detiene refrescos y capturas pendientes. La DB abierta por el
// router (vía DB_DSN) también se cierra.
func (a *App) Close() {
	a.Dashboards.StopAll()
	a.Views.StopAll()
	if a.db != nil {
		_ = a.db.Close()
	}
}

func NewRouter(ctx context.Context, opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, errors.New("router: config is required")
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	api := opts.Backend
	if api == nil {
		client, err := backend.NewClient(backend.Config{BaseURL: cfg.APIBaseURL, Timeout: cfg.HTTPTimeout})
		if err != nil {
			return nil, fmt.Errorf("router: backend client: %w", err)
		}
		api = client
	}

	// Si no te pasan DB explícita, intenta por config (DB_DSN)
	var owned *sql.DB
	db := opts.DB
	if db == nil && cfg.DBDSN != "" {
		opened, err := pg.Open(ctx, cfg.DBDSN)
		if err != nil {
			return nil, fmt.Errorf("router: open postgres: %w", err)
		}
		db, owned = opened, opened
	}

	var storageFor session.StorageFactory
	if db != nil {
		store := pg.NewClientStorage(db)
		if err := store.EnsureSchema(ctx); err != nil {
			if owned != nil {
				_ = owned.Close()
			}
			return nil, fmt.Errorf("router: client storage schema: %w", err)
		}
		storageFor = store.For
		log.Info("token storage: postgres", nil)
	} else {
		storageFor = mem.NewClientStorage().For
		log.Info("token storage: memory", nil)
	}

	newLocator := opts.NewLocator
	if newLocator == nil {
		newLocator = func() geolocation.Locator { return geoadapter.NewBrowser(geoadapter.DefaultBrowserTimeout) }
	}

	cookies := opts.Cookies
	if cookies == nil {
		if cfg.SessionSecret == "" {
			log.Warn("SESSION_SECRET not set; sessions will not survive a restart", nil)
		}
		cookies = middleware.NewCookieStore(middleware.CookieOptions{
			Secret: cfg.SessionSecret,
			Secure: cfg.IsProduction(),
		})
	}

	// Registros por sesión
	dashboards := dashboard.NewRegistry(api, log, dashboard.Options{
		RefreshInterval: cfg.ScanRefreshInterval,
		FrontendURL:     cfg.FrontendURL,
		IdleTimeout:     cfg.IdleTimeout,
	})
	views := profile.NewViews(api, newLocator, log, cfg.FrontendURL)
	sessionsReg := session.NewRegistry(api, storageFor, log)
	if cfg.IdleTimeout > 0 {
		views.IdleTimeout = cfg.IdleTimeout
		sessionsReg.IdleTimeout = cfg.IdleTimeout
	}
	sessionsReg.OnCreate = func(sid string, st *session.Store) {
		// logout (explícito o por 401) apaga el refresco de ese browser
		st.OnLogout(func() { dashboards.Stop(sid) })
	}
	renderer := qr.NewRenderer(log)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionContext(cookies, sessionsReg, log))

		// Rutas por módulo
		session.RegisterRoutes(r)
		profile.RegisterRoutes(r, views)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(session.LoginPath))
			dashboard.RegisterRoutes(r, dashboards, renderer)
		})
	})

	return &App{
		Handler:    r,
		Sessions:   sessionsReg,
		Dashboards: dashboards,
		Views:      views,
		db:         owned,
	}, nil
}
