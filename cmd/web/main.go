// @title PetGuardian web
// @version 1.0
// @description BFF del cliente PetGuardian: sesión, dashboard del dueño y perfil público.
// @BasePath /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pet-guardian/internal/platform/config"
	"pet-guardian/internal/platform/logger"
	"pet-guardian/internal/router"
)

func main() {
	cfg := config.Load()
	log := logger.NewFromEnv()
	for _, w := range cfg.Warnings {
		log.Warn("config", map[string]any{"detail": w})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := router.NewRouter(ctx, router.Options{Config: cfg, Logger: log})
	if err != nil {
		log.Error("router init failed", map[string]any{"error": err})
		os.Exit(1)
	}
	defer app.Close()

	// dashboards, vistas y sesiones anónimas abandonadas (pestaña cerrada)
	go app.Run(ctx, time.Minute)

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      app,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("shutdown", map[string]any{"error": err})
		}
	}()

	log.Info("starting server", map[string]any{"addr": addr, "api": cfg.APIBaseURL})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", map[string]any{"error": err})
		os.Exit(1)
	}
}
