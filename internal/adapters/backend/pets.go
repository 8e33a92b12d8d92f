package backend

import (
	"context"
	"net/http"

	"pet-guardian/internal/domain/pets"
	"pet-guardian/internal/domain/scans"
	"pet-guardian/internal/platform/httpclient"
)

// ListPets devuelve las mascotas del dueño del token (GET /pets).
func (c *Client) ListPets(ctx context.Context, token string) ([]pets.Pet, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	var out []pets.Pet
	if err := c.http.DoJSON(ctx, http.MethodGet, "/pets", httpclient.Bearer(token), nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []pets.Pet{}
	}
	return out, nil
}

func (c *Client) ListScans(ctx context.Context, token, petID string) ([]scans.ScanEvent, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	p, err := petPath("/pets", petID, "scans")
	if err != nil {
		return nil, err
	}

	var out []scans.ScanEvent
	if err := c.http.DoJSON(ctx, http.MethodGet, p, httpclient.Bearer(token), nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []scans.ScanEvent{}
	}
	return out, nil
}

func (c *Client) UpdatePetStatus(ctx context.Context, token, petID string, status pets.Status) error {
	if err := c.ready(); err != nil {
		return err
	}
	p, err := petPath("/pets", petID, "status")
	if err != nil {
		return err
	}
	body := map[string]string{"status": string(status)}
	return c.http.DoJSON(ctx, http.MethodPatch, p, httpclient.Bearer(token), body, nil)
}

// RegisterPet sube el alta como multipart: campos + hasta 5 archivos "photos".
func (c *Client) RegisterPet(ctx context.Context, token string, in pets.RegisterInput) (pets.Registered, error) {
	if err := c.ready(); err != nil {
		return pets.Registered{}, err
	}

	photos := in.Photos.Photos()
	files := make([]httpclient.File, 0, len(photos))
	for _, ph := range photos {
		files = append(files, httpclient.File{
			Field:    "photos",
			Name:     ph.Name,
			Content:  ph.Content,
			MimeType: ph.MimeType,
		})
	}

	var out pets.Registered
	if err := c.http.DoMultipart(ctx, http.MethodPost, "/pets", httpclient.Bearer(token), in.Fields(), files, &out); err != nil {
		return pets.Registered{}, err
	}
	return out, nil
}
