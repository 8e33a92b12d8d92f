package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"pet-guardian/internal/domain/dashboard"
	"pet-guardian/internal/domain/pets"
	"pet-guardian/internal/domain/qr"
	"pet-guardian/internal/domain/scans"
)

var errSessionExpired = errors.New("session expired: run `petctl login` again")

func newDashboard(a *app) *dashboard.Controller {
	return dashboard.NewController(a.client, a.store, a.log, dashboard.Options{
		RefreshInterval: a.cfg.ScanRefreshInterval,
		FrontendURL:     a.cfg.FrontendURL,
	})
}

// loadDashboard trae mascotas y espera el historial de scans.
// El caller hace Stop.
func loadDashboard(ctx context.Context, a *app) (*dashboard.Controller, error) {
	c := newDashboard(a)
	if err := c.FetchPets(ctx); err != nil {
		c.Stop()
		if errors.Is(err, dashboard.ErrSessionInvalidated) {
			return nil, errSessionExpired
		}
		return nil, err
	}
	c.Wait()
	return c, nil
}

func runPets(ctx context.Context, a *app, args []string) error {
	fs := newFlags("pets")
	q := fs.String("q", "", "Filtrar por nombre, raza o especie")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, err := loadDashboard(ctx, a)
	if err != nil {
		return err
	}
	defer c.Stop()

	printDashboard(a, c.Snapshot(*q))
	return nil
}

func printDashboard(a *app, v dashboard.View) {
	if v.FirstName != "" {
		fmt.Fprintf(a.out, "Welcome back, %s!\n", v.FirstName)
	}
	fmt.Fprintf(a.out, "Pets: %d  Safe: %d  Lost: %d  Scans: %d\n\n",
		v.Stats.TotalPets, v.Stats.SafePets, v.Stats.LostPets, v.Stats.TotalScans)

	if len(v.Pets) == 0 {
		if v.Query != "" {
			fmt.Fprintf(a.out, "No pets match %q.\n", v.Query)
		} else {
			fmt.Fprintln(a.out, "No pets yet. Add one with `petctl add-pet`.")
		}
		return
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSPECIES\tBREED\tSTATUS\tSCANS\tPROFILE")
	for _, p := range v.Pets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s %s\t%d\t%s\n",
			p.ID, p.Name, p.Species, p.Breed, p.Presentation.Icon, p.Presentation.Label,
			len(v.Scans[p.ID]), p.ProfileURL)
	}
	_ = tw.Flush()
}

func runStatus(ctx context.Context, a *app, args []string) error {
	fs := newFlags("status")
	if err := fs.Parse(args); err != nil {
		return err
	}
	pos, err := positional(fs, "petID", "status")
	if err != nil {
		return err
	}

	c, err := loadDashboard(ctx, a)
	if err != nil {
		return err
	}
	defer c.Stop()

	if err := c.UpdatePetStatus(ctx, pos[0], pos[1]); err != nil {
		if errors.Is(err, pets.ErrInvalidStatus) {
			return errors.New("status must be safe, lost or found")
		}
		return err
	}
	p, _ := c.Pet(pos[0])
	fmt.Fprintf(a.out, "%s is now %s.\n", p.Name, p.Status.Present().Label)
	return nil
}

func runScans(ctx context.Context, a *app, args []string) error {
	fs := newFlags("scans")
	if err := fs.Parse(args); err != nil {
		return err
	}
	pos, err := positional(fs, "petID")
	if err != nil {
		return err
	}

	c, err := loadDashboard(ctx, a)
	if err != nil {
		return err
	}
	defer c.Stop()

	p, ok := c.Pet(pos[0])
	if !ok {
		return dashboard.ErrPetNotFound
	}
	items := append([]scans.ScanEvent(nil), c.Scans()[p.ID]...)
	if len(items) == 0 {
		fmt.Fprintf(a.out, "%s has not been scanned yet.\n", p.Name)
		return nil
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].ScannedAt.After(items[j].ScannedAt) })
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCANNED AT\tLATITUDE\tLONGITUDE\tADDRESS")
	for _, s := range items {
		fmt.Fprintf(tw, "%s\t%.6f\t%.6f\t%s\n", s.ScannedAt.Local().Format(time.DateTime), s.Latitude, s.Longitude, s.Address)
	}
	return tw.Flush()
}

func runQR(ctx context.Context, a *app, args []string) error {
	fs := newFlags("qr")
	out := fs.String("out", "", "Archivo PNG (default <nombre>-qr.png)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	pos, err := positional(fs, "petID")
	if err != nil {
		return err
	}

	c, err := loadDashboard(ctx, a)
	if err != nil {
		return err
	}
	defer c.Stop()

	p, ok := c.Pet(pos[0])
	if !ok {
		return dashboard.ErrPetNotFound
	}

	profileURL := qr.ProfileURL(a.cfg.FrontendURL, p.ID)
	src := qr.NewRenderer(a.log).Resolve(p.QRCode, profileURL)
	_, data, err := qr.DecodeDataURI(src)
	if err != nil {
		return fmt.Errorf("could not render QR (stored value: %q): %w", src, err)
	}

	path := *out
	if path == "" {
		path = fileSafe(p.Name) + "-qr.png"
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(a.out, "QR for %s saved to %s (%s)\n", p.Name, path, profileURL)
	return nil
}

func runExport(ctx context.Context, a *app, args []string) error {
	fs := newFlags("export")
	out := fs.String("out", "scans.xlsx", "Archivo de salida")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, err := loadDashboard(ctx, a)
	if err != nil {
		return err
	}
	defer c.Stop()

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	if err := c.ExportScans(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("export: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d scans exported to %s\n", c.Scans().Total(), *out)
	return nil
}

// photoFlags junta --photo repetidos.
type photoFlags []string

func (p *photoFlags) String() string { return strings.Join(*p, ",") }

func (p *photoFlags) Set(v string) error {
	*p = append(*p, v)
	return nil
}

func runAddPet(ctx context.Context, a *app, args []string) error {
	in := pets.NewRegisterInput()
	var photos photoFlags

	fs := newFlags("add-pet")
	fs.StringVar(&in.Name, "name", "", "Nombre (obligatorio)")
	fs.StringVar(&in.Species, "species", in.Species, "Especie")
	fs.StringVar(&in.Breed, "breed", "", "Raza")
	fs.StringVar(&in.Age, "age", "", "Edad")
	fs.StringVar(&in.Color, "color", "", "Color")
	fs.StringVar(&in.Description, "description", "", "Descripción")
	fs.BoolVar(&in.ShowOwnerPhone, "show-phone", in.ShowOwnerPhone, "Mostrar tu teléfono en el perfil público")
	fs.BoolVar(&in.ShowOwnerEmail, "show-email", in.ShowOwnerEmail, "Mostrar tu email en el perfil público")
	fs.Var(&photos, "photo", "Foto (repetible, máximo 5)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	for _, path := range photos {
		ph, err := readPhoto(path)
		if err != nil {
			return err
		}
		if err := in.Photos.Add(ph); err != nil {
			return errors.New(dashboard.MsgTooManyPhotos)
		}
	}

	c := newDashboard(a)
	defer c.Stop()

	reg, err := c.RegisterPet(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s registered (id %s).\n", strings.TrimSpace(in.Name), reg.PetID)
	fmt.Fprintf(a.out, "Public profile: %s\n", qr.ProfileURL(a.cfg.FrontendURL, reg.PetID))
	return nil
}

func readPhoto(path string) (pets.Photo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pets.Photo{}, fmt.Errorf("read photo: %w", err)
	}
	return pets.Photo{
		Name:     filepath.Base(path),
		MimeType: http.DetectContentType(data),
		Content:  data,
	}, nil
}

// runWatch deja el dashboard abierto. Enter es la vuelta del foco.
func runWatch(ctx context.Context, a *app, _ []string) error {
	c, err := loadDashboard(ctx, a)
	if err != nil {
		return err
	}
	defer c.Stop()
	c.Start()

	focus := make(chan struct{}, 1)
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			select {
			case focus <- struct{}{}:
			default:
			}
		}
	}()

	printDashboard(a, c.Snapshot(""))
	t := time.NewTicker(a.cfg.ScanRefreshInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		case <-focus:
			c.Focus()
			c.Wait()
		}
		fmt.Fprintf(a.out, "\n-- %s --\n", time.Now().Format(time.TimeOnly))
		printDashboard(a, c.Snapshot(""))
	}
}

func fileSafe(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "pet"
	}
	return b.String()
}
