package main

import (
	"context"
	"flag"
	"fmt"
	"math"

	geoadapter "pet-guardian/internal/adapters/geolocation"
	"pet-guardian/internal/domain/profile"
	"pet-guardian/internal/ports/geolocation"
)

// locationFlags son --lat/--lng. Sin ambos la ubicación no está disponible,
// igual que un navegador sin permiso.
type locationFlags struct {
	lat, lng float64
}

func (l *locationFlags) register(fs *flag.FlagSet) {
	fs.Float64Var(&l.lat, "lat", math.NaN(), "Latitud de quien encontró la mascota")
	fs.Float64Var(&l.lng, "lng", math.NaN(), "Longitud de quien encontró la mascota")
}

func (l *locationFlags) locator() geolocation.Locator {
	if math.IsNaN(l.lat) || math.IsNaN(l.lng) {
		return geoadapter.Unavailable{}
	}
	return geoadapter.Static{Position: geolocation.Position{Latitude: l.lat, Longitude: l.lng}}
}

func (l *locationFlags) set() bool {
	return !math.IsNaN(l.lat) && !math.IsNaN(l.lng)
}

func runView(ctx context.Context, a *app, args []string) error {
	var loc locationFlags
	fs := newFlags("view")
	loc.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	pos, err := positional(fs, "petID")
	if err != nil {
		return err
	}

	c := profile.NewController(a.client, loc.locator(), a.log, a.cfg.FrontendURL)
	defer c.Stop()

	if err := c.Load(ctx, pos[0]); err != nil {
		return err
	}
	c.Wait()

	v := c.View()
	p := v.Pet
	fmt.Fprintf(a.out, "%s  [%s %s]\n", p.Name, v.Presentation.Icon, v.Presentation.Label)
	fmt.Fprintf(a.out, "%s · %s\n", p.Species, p.Breed)
	if p.Color != "" {
		fmt.Fprintf(a.out, "Color: %s\n", p.Color)
	}
	if p.Description != "" {
		fmt.Fprintf(a.out, "\n%s\n", p.Description)
	}

	fmt.Fprintf(a.out, "\nOwner: %s\n", p.Owner.Name)
	if p.Owner.Phone != "" {
		fmt.Fprintf(a.out, "Phone: %s\n", p.Owner.Phone)
	}
	if p.Owner.Email != "" {
		fmt.Fprintf(a.out, "Email: %s\n", p.Owner.Email)
	}

	if v.LocationRecorded {
		fmt.Fprintln(a.out, "\nYour location was shared with the owner.")
	}
	fmt.Fprintf(a.out, "\nProfile: %s\n", v.ProfileURL)
	return nil
}

func runContact(ctx context.Context, a *app, args []string) error {
	var (
		loc locationFlags
		msg profile.ContactMessage
	)
	fs := newFlags("contact")
	fs.StringVar(&msg.SenderName, "name", "", "Tu nombre")
	fs.StringVar(&msg.SenderEmail, "email", "", "Tu email")
	fs.StringVar(&msg.SenderPhone, "phone", "", "Tu teléfono")
	fs.StringVar(&msg.Message, "message", "", "Mensaje para el dueño")
	fs.BoolVar(&msg.ShareLocation, "share-location", false, "Compartir tu ubicación (--lat/--lng)")
	loc.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	pos, err := positional(fs, "petID")
	if err != nil {
		return err
	}
	if loc.set() {
		msg.Latitude, msg.Longitude = &loc.lat, &loc.lng
	}

	// sin scan: contactar no es ver el perfil
	c := profile.NewController(a.client, nil, a.log, a.cfg.FrontendURL)
	defer c.Stop()

	if err := c.Load(ctx, pos[0]); err != nil {
		return err
	}
	if err := c.SendContact(ctx, msg); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Message sent to %s's owner.\n", c.View().Pet.Name)
	return nil
}
