package dashboard

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"pet-guardian/internal/domain/pets"
	"pet-guardian/internal/domain/qr"
	"pet-guardian/internal/domain/session"

	"github.com/go-chi/chi/v5"
)

const maxUploadBytes = 32 << 20

// RegisterRoutes monta el dashboard. r ya viene protegido por el guard.
func RegisterRoutes(r chi.Router, reg *Registry, qrr *qr.Renderer) {
	r.Get("/dashboard", viewHandler(reg))
	r.Post("/dashboard/refresh", refreshHandler(reg))
	r.Post("/dashboard/focus", focusHandler(reg))
	r.Patch("/dashboard/pets/{petID}/status", updateStatusHandler(reg))
	r.Post("/dashboard/pets", registerPetHandler(reg))
	r.Get("/dashboard/pets/{petID}/qr", qrHandler(reg, qrr))
	r.Get("/dashboard/scans.xlsx", exportHandler(reg))
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type qrResponse struct {
	PetID      string `json:"pet_id"`
	Src        string `json:"src"`
	ProfileURL string `json:"profile_url"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// viewHandler godoc
// @Summary Dashboard del dueño
// @Description Recarga la lista de mascotas (los scans llegan en segundo plano) y devuelve la vista filtrada por q.
// @Tags dashboard
// @Produce json
// @Param q query string false "Búsqueda por nombre, raza o especie"
// @Success 200 {object} View
// @Failure 401 {object} errorResponse "sesión invalidada"
// @Router /dashboard [get]
func viewHandler(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := controllerFor(w, r, reg)
		if !ok {
			return
		}

		if err := c.FetchPets(r.Context()); errors.Is(err, ErrSessionInvalidated) || errors.Is(err, ErrNotLoggedIn) {
			reg.Stop(session.SIDFromContext(r.Context()))
			session.RedirectToLogin(w, r, session.LoginPath)
			return
		}
		writeJSON(w, http.StatusOK, c.Snapshot(r.URL.Query().Get("q")))
	}
}

// refreshHandler es el poll del browser: solo historial de scans.
func refreshHandler(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := controllerFor(w, r, reg)
		if !ok {
			return
		}
		c.RefreshScans(r.Context())
		writeJSON(w, http.StatusOK, c.Snapshot(r.URL.Query().Get("q")))
	}
}

func focusHandler(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := controllerFor(w, r, reg)
		if !ok {
			return
		}
		c.Focus()
		w.WriteHeader(http.StatusAccepted)
	}
}

// updateStatusHandler godoc
// @Summary Cambiar estado de una mascota
// @Description Un fallo del backend no se muestra: se loguea y la vista queda igual.
// @Tags dashboard
// @Accept json
// @Produce json
// @Param petID path string true "Pet ID"
// @Param payload body updateStatusRequest true "safe | lost | found"
// @Success 200 {object} View
// @Failure 400 {object} errorResponse "invalid status"
// @Router /dashboard/pets/{petID}/status [patch]
func updateStatusHandler(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := controllerFor(w, r, reg)
		if !ok {
			return
		}

		var req updateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		err := c.UpdatePetStatus(r.Context(), chi.URLParam(r, "petID"), req.Status)
		switch {
		case errors.Is(err, pets.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		case errors.Is(err, ErrSessionInvalidated), errors.Is(err, ErrNotLoggedIn):
			reg.Stop(session.SIDFromContext(r.Context()))
			session.RedirectToLogin(w, r, session.LoginPath)
			return
		}
		// el resto de los fallos ya quedó logueado en el controller
		writeJSON(w, http.StatusOK, c.Snapshot(""))
	}
}

// registerPetHandler godoc
// @Summary Registrar mascota
// @Description multipart/form-data con los campos del alta y hasta 5 archivos "photos".
// @Tags dashboard
// @Accept mpfd
// @Produce json
// @Param name formData string true "Nombre"
// @Param species formData string false "Especie (default dog)"
// @Param photos formData file false "Fotos (máx. 5)"
// @Success 201 {object} pets.Registered
// @Failure 400 {object} errorResponse
// @Router /dashboard/pets [post]
func registerPetHandler(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := controllerFor(w, r, reg)
		if !ok {
			return
		}

		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}

		in, err := registerInputFromForm(r.MultipartForm)
		if err != nil {
			if errors.Is(err, pets.ErrTooManyPhotos) {
				writeError(w, http.StatusBadRequest, MsgTooManyPhotos)
				return
			}
			writeError(w, http.StatusBadRequest, MsgRegisterFailed)
			return
		}

		res, err := c.RegisterPet(r.Context(), in)
		if err != nil {
			writeError(w, http.StatusBadRequest, session.Message(err, MsgRegisterFailed))
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}

// qrHandler devuelve el QR de la mascota como data URI (JSON) o como PNG
// descargable con ?format=png.
func qrHandler(reg *Registry, qrr *qr.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := controllerFor(w, r, reg)
		if !ok {
			return
		}

		petID := chi.URLParam(r, "petID")
		p, found := c.Pet(petID)
		if !found {
			writeError(w, http.StatusNotFound, "pet not found")
			return
		}

		profileURL := qr.ProfileURL(c.opts.FrontendURL, p.ID)
		src := qrr.Resolve(p.QRCode, profileURL)

		if r.URL.Query().Get("format") != "png" {
			writeJSON(w, http.StatusOK, qrResponse{PetID: p.ID, Src: src, ProfileURL: profileURL})
			return
		}

		mime, raw, err := qr.DecodeDataURI(src)
		if err != nil {
			writeError(w, http.StatusBadGateway, "qr code unavailable")
			return
		}
		w.Header().Set("Content-Type", mime)
		w.Header().Set("Content-Disposition", `attachment; filename="`+downloadName(p.Name)+`-qr-code.png"`)
		w.Header().Set("Content-Length", strconv.Itoa(len(raw)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(raw)
	}
}

func exportHandler(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := controllerFor(w, r, reg)
		if !ok {
			return
		}
		w.Header().Set("Content-Type", ExportContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="scan-history.xlsx"`)
		if err := c.ExportScans(w); err != nil {
			c.log.Error("export scans failed", map[string]any{"error": err})
		}
	}
}

func controllerFor(w http.ResponseWriter, r *http.Request, reg *Registry) (*Controller, bool) {
	store, ok := session.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "session unavailable")
		return nil, false
	}
	return reg.For(session.SIDFromContext(r.Context()), store), true
}

func registerInputFromForm(form *multipart.Form) (pets.RegisterInput, error) {
	in := pets.NewRegisterInput()
	get := func(k string) string {
		if v := form.Value[k]; len(v) > 0 {
			return v[0]
		}
		return ""
	}

	in.Name = get("name")
	if v := strings.TrimSpace(get("species")); v != "" {
		in.Species = v
	}
	in.Breed = get("breed")
	in.Age = get("age")
	in.Color = get("color")
	in.Description = get("description")
	if v := get("showOwnerPhone"); v != "" {
		in.ShowOwnerPhone, _ = strconv.ParseBool(v)
	}
	if v := get("showOwnerEmail"); v != "" {
		in.ShowOwnerEmail, _ = strconv.ParseBool(v)
	}

	headers := form.File["photos"]
	if len(headers) > pets.MaxPhotos {
		return pets.RegisterInput{}, pets.ErrTooManyPhotos
	}
	for _, fh := range headers {
		ph, err := readPhoto(fh)
		if err != nil {
			return pets.RegisterInput{}, err
		}
		if err := in.Photos.Add(ph); err != nil {
			return pets.RegisterInput{}, err
		}
	}
	return in, nil
}

func readPhoto(fh *multipart.FileHeader) (pets.Photo, error) {
	f, err := fh.Open()
	if err != nil {
		return pets.Photo{}, err
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return pets.Photo{}, err
	}
	return pets.Photo{
		Name:     fh.Filename,
		MimeType: fh.Header.Get("Content-Type"),
		Content:  content,
	}, nil
}

// downloadName deja solo caracteres seguros para el header.
func downloadName(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "pet"
	}
	return b.String()
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
