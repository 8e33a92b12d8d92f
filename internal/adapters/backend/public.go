package backend

import (
	"context"
	"net/http"

	"pet-guardian/internal/domain/pets"
	"pet-guardian/internal/domain/profile"
	"pet-guardian/internal/domain/scans"
)

// Endpoints públicos: sin auth.

func (c *Client) PublicPet(ctx context.Context, petID string) (pets.PublicPet, error) {
	if err := c.ready(); err != nil {
		return pets.PublicPet{}, err
	}
	p, err := petPath("/public/pet", petID, "")
	if err != nil {
		return pets.PublicPet{}, err
	}

	var out pets.PublicPet
	if err := c.http.DoJSON(ctx, http.MethodGet, p, nil, nil, &out); err != nil {
		return pets.PublicPet{}, err
	}
	return out, nil
}

func (c *Client) ReportScan(ctx context.Context, petID string, r scans.Report) error {
	if err := c.ready(); err != nil {
		return err
	}
	p, err := petPath("/public/pet", petID, "scan")
	if err != nil {
		return err
	}
	return c.http.DoJSON(ctx, http.MethodPost, p, nil, r, nil)
}

func (c *Client) SendContact(ctx context.Context, petID string, msg profile.ContactMessage) error {
	if err := c.ready(); err != nil {
		return err
	}
	p, err := petPath("/public/pet", petID, "contact")
	if err != nil {
		return err
	}
	return c.http.DoJSON(ctx, http.MethodPost, p, nil, msg, nil)
}
