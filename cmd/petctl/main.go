// petctl es el cliente de terminal de PetGuardian. Usa los mismos
// controllers que el BFF; el token queda en ~/.petguardian/storage.json.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"pet-guardian/internal/adapters/backend"
	"pet-guardian/internal/adapters/storage/file"
	"pet-guardian/internal/domain/session"
	"pet-guardian/internal/platform/config"
	"pet-guardian/internal/platform/logger"
)

var errNotLoggedIn = errors.New("not logged in: run `petctl login` first")

type command struct {
	summary   string
	protected bool
	run       func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"login":           {summary: "Iniciar sesión", run: runLogin},
	"register":        {summary: "Crear cuenta", run: runRegister},
	"logout":          {summary: "Cerrar sesión", run: runLogout},
	"forgot-password": {summary: "Pedir link de reseteo", run: runForgotPassword},
	"reset-password":  {summary: "Resetear password con el token del link", run: runResetPassword},
	"whoami":          {summary: "Usuario de la sesión", protected: true, run: runWhoami},
	"pets":            {summary: "Listar mascotas", protected: true, run: runPets},
	"add-pet":         {summary: "Registrar mascota", protected: true, run: runAddPet},
	"status":          {summary: "Cambiar estado: status <petID> safe|lost|found", protected: true, run: runStatus},
	"scans":           {summary: "Historial de scans de una mascota", protected: true, run: runScans},
	"qr":              {summary: "Guardar el QR de una mascota como PNG", protected: true, run: runQR},
	"export":          {summary: "Exportar el historial de scans a .xlsx", protected: true, run: runExport},
	"watch":           {summary: "Dashboard en vivo (Enter refresca)", protected: true, run: runWatch},
	"view":            {summary: "Ver el perfil público (registra el scan)", run: runView},
	"contact":         {summary: "Escribirle al dueño de una mascota", run: runContact},
}

// app es lo que comparten los comandos.
type app struct {
	cfg    *config.Config
	log    logger.Logger
	client *backend.Client
	store  *session.Store
	out    io.Writer
}

func main() {
	if len(os.Args) < 2 || os.Args[1] == "help" || os.Args[1] == "-h" || os.Args[1] == "--help" {
		usage(os.Stdout)
		return
	}

	name := os.Args[1]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
		usage(os.Stderr)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	if cmd.protected {
		err = requireLogin(a, func() error { return cmd.run(ctx, a, os.Args[2:]) })
	} else {
		err = cmd.run(ctx, a, os.Args[2:])
	}
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "Error:", session.Message(err, err.Error()))
		stop()
		os.Exit(1)
	}
}

func newApp(ctx context.Context) (*app, error) {
	cfg := config.Load()
	log := logger.NewFromEnv()
	for _, w := range cfg.Warnings {
		log.Warn("config", map[string]any{"detail": w})
	}

	client, err := backend.NewClient(backend.Config{BaseURL: cfg.APIBaseURL, Timeout: cfg.HTTPTimeout})
	if err != nil {
		return nil, fmt.Errorf("backend client: %w", err)
	}

	dir, err := file.DefaultDir(cfg.PetctlHome)
	if err != nil {
		return nil, fmt.Errorf("storage dir: %w", err)
	}

	store := session.NewStore(client, file.NewTokenStorage(dir), log)
	if err := store.Restore(ctx); err != nil {
		log.Warn("session restore failed", map[string]any{"error": err})
	}

	return &app{cfg: cfg, log: log, client: client, store: store, out: os.Stdout}, nil
}

// requireLogin es el guard del CLI: sin sesión no corre el comando.
func requireLogin(a *app, fn func() error) error {
	if !a.store.Authenticated() {
		return errNotLoggedIn
	}
	return fn()
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: petctl <command> [flags]")
	fmt.Fprintln(w)

	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(w, "  %-16s %s\n", n, commands[n].summary)
	}
}

// newFlags arma el FlagSet de un comando; los errores los devuelve Parse.
func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("petctl "+name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

// positional exige n argumentos después de los flags.
func positional(fs *flag.FlagSet, names ...string) ([]string, error) {
	args := fs.Args()
	if len(args) < len(names) {
		return nil, fmt.Errorf("missing %s", strings.Join(names[len(args):], ", "))
	}
	return args[:len(names)], nil
}
