package profile

import (
	"encoding/json"
	"errors"
	"net/http"

	"pet-guardian/internal/domain/session"
	"pet-guardian/internal/ports/geolocation"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta el perfil público. No requiere sesión iniciada,
// solo el id de visitante que pone el middleware de sesión.
func RegisterRoutes(r chi.Router, views *Views) {
	r.Get("/pet/{petID}", viewHandler(views))
	r.Post("/pet/{petID}/location", locationHandler(views))
	r.Post("/pet/{petID}/contact", contactHandler(views))
}

type locationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Denied    bool     `json:"denied"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// viewHandler godoc
// @Summary Perfil público de una mascota
// @Description Carga el perfil. La primera vez por mascota se espera la ubicación del navegador en /pet/{petID}/location para registrar el scan.
// @Tags public
// @Produce json
// @Param petID path string true "Pet ID"
// @Success 200 {object} View
// @Failure 404 {object} View "Pet not found"
// @Failure 502 {object} View "Failed to load pet information"
// @Router /pet/{petID} [get]
func viewHandler(views *Views) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := controllerFor(w, r, views)
		if !ok {
			return
		}

		err := c.Load(r.Context(), chi.URLParam(r, "petID"))
		v := c.View()
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, v)
		case session.Message(err, "") == MsgPetNotFound:
			writeJSON(w, http.StatusNotFound, v)
		default:
			writeJSON(w, http.StatusBadGateway, v)
		}
	}
}

// locationHandler godoc
// @Summary Respuesta del permiso de geolocalización
// @Description El navegador manda sus coordenadas o {denied:true}. Solo aplica a la mascota que se está viendo.
// @Tags public
// @Accept json
// @Param petID path string true "Pet ID"
// @Param payload body locationRequest true "Coordenadas o denegación"
// @Success 202
// @Failure 409 {object} errorResponse "la vista actual es de otra mascota"
// @Router /pet/{petID}/location [post]
func locationHandler(views *Views) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		visitor := session.SIDFromContext(r.Context())
		if visitor == "" {
			writeError(w, http.StatusInternalServerError, "session unavailable")
			return
		}

		var req locationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if !req.Denied && (req.Latitude == nil || req.Longitude == nil) {
			writeError(w, http.StatusBadRequest, "latitude and longitude are required")
			return
		}

		if views.For(visitor).PetID() != chi.URLParam(r, "petID") {
			writeError(w, http.StatusConflict, "stale profile view")
			return
		}
		recv, ok := views.Receiver(visitor)
		if !ok {
			writeError(w, http.StatusNotImplemented, "location not accepted")
			return
		}

		if req.Denied {
			recv.Deny()
		} else {
			recv.Deliver(geolocation.Position{Latitude: *req.Latitude, Longitude: *req.Longitude})
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

// contactHandler godoc
// @Summary Contactar al dueño
// @Tags public
// @Accept json
// @Produce json
// @Param petID path string true "Pet ID"
// @Param payload body ContactMessage true "Mensaje"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} errorResponse "Failed to send message"
// @Router /pet/{petID}/contact [post]
func contactHandler(views *Views) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := controllerFor(w, r, views)
		if !ok {
			return
		}

		var req ContactMessage
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		// el formulario se abre desde el perfil; si la vista se perdió, se recarga
		petID := chi.URLParam(r, "petID")
		if c.PetID() != petID || c.View().Pet == nil {
			if err := c.Load(r.Context(), petID); err != nil {
				writeError(w, http.StatusBadRequest, MsgContactFailed)
				return
			}
		}

		if err := c.SendContact(r.Context(), req); err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, ErrNoPetLoaded) {
				status = http.StatusNotFound
			}
			writeError(w, status, session.Message(err, MsgContactFailed))
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"sent": true})
	}
}

func controllerFor(w http.ResponseWriter, r *http.Request, views *Views) (*Controller, bool) {
	visitor := session.SIDFromContext(r.Context())
	if visitor == "" {
		writeError(w, http.StatusInternalServerError, "session unavailable")
		return nil, false
	}
	return views.For(visitor), true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
