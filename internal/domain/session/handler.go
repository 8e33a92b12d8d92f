package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"unicode"

	"github.com/go-chi/chi/v5"
)

const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

func RegisterRoutes(r chi.Router) {
	r.Get(LoginPath, loginPageHandler())
	r.Post(LoginPath, loginHandler())
	r.Post("/register", registerHandler())
	r.Post("/forgot-password", forgotPasswordHandler())
	r.Post("/reset-password", resetPasswordHandler())
	r.Post("/logout", logoutHandler())
	r.Get("/me", meHandler())
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// authResponse es lo que recibe el browser tras login/register.
type authResponse struct {
	User     User   `json:"user"`
	Redirect string `json:"redirect"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// loginPageHandler es el punto de entrada de login (destino del guard).
func loginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"page": "login",
			"next": safeNext(r.URL.Query().Get("next")),
		})
	}
}

// loginHandler godoc
// @Summary Iniciar sesión
// @Description Autentica contra la API y guarda el token en el storage de la sesión del browser.
// @Tags session
// @Accept json
// @Produce json
// @Param next query string false "Ruta local a la que volver tras el login"
// @Param payload body loginRequest true "Credenciales"
// @Success 200 {object} authResponse
// @Failure 400 {object} errorResponse "invalid json"
// @Failure 401 {object} errorResponse "mensaje del servidor o 'Login failed'"
// @Router /login [post]
func loginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromContext(r.Context()); !ok {
			writeError(w, http.StatusInternalServerError, "session unavailable")
			return
		}

		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		store, err := authenticate(w, r, func(st *Store) error {
			return st.Login(r.Context(), req.Email, req.Password)
		})
		if errors.Is(err, errSIDNotIssued) {
			writeError(w, http.StatusInternalServerError, "session unavailable")
			return
		}
		if err != nil {
			writeError(w, http.StatusUnauthorized, Message(err, MsgLoginFailed))
			return
		}

		u, _ := store.User()
		writeJSON(w, http.StatusOK, authResponse{User: u, Redirect: nextOrDashboard(r)})
	}
}

// registerHandler godoc
// @Summary Crear cuenta
// @Description Valida la confirmación de password del lado cliente y registra la cuenta. Deja la sesión iniciada.
// @Tags session
// @Accept json
// @Produce json
// @Param payload body registerRequest true "Datos de la cuenta"
// @Success 201 {object} authResponse
// @Failure 400 {object} errorResponse "Passwords do not match / mensaje del servidor"
// @Router /register [post]
func registerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromContext(r.Context()); !ok {
			writeError(w, http.StatusInternalServerError, "session unavailable")
			return
		}

		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		in := RegisterInput{
			FirstName:       req.FirstName,
			LastName:        req.LastName,
			Email:           req.Email,
			Password:        req.Password,
			ConfirmPassword: req.ConfirmPassword,
			Phone:           req.Phone,
			Address:         req.Address,
		}
		store, err := authenticate(w, r, func(st *Store) error {
			return st.Register(r.Context(), in)
		})
		if errors.Is(err, errSIDNotIssued) {
			writeError(w, http.StatusInternalServerError, "session unavailable")
			return
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, Message(err, MsgRegisterFailed))
			return
		}

		u, _ := store.User()
		writeJSON(w, http.StatusCreated, authResponse{User: u, Redirect: DashboardPath})
	}
}

func forgotPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, ok := FromContext(r.Context())
		if !ok {
			writeError(w, http.StatusInternalServerError, "session unavailable")
			return
		}

		var req forgotPasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		if err := store.RequestPasswordReset(r.Context(), req.Email); err != nil {
			writeError(w, http.StatusBadRequest, Message(err, MsgResetLinkFailed))
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"sent": true})
	}
}

func resetPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, ok := FromContext(r.Context())
		if !ok {
			writeError(w, http.StatusInternalServerError, "session unavailable")
			return
		}

		var req resetPasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		// el link trae ?token=...; el body tiene prioridad
		if strings.TrimSpace(req.Token) == "" {
			req.Token = r.URL.Query().Get("token")
		}

		if err := store.ResetPasswordConfirm(r.Context(), req.Token, req.Password, req.ConfirmPassword); err != nil {
			writeError(w, http.StatusBadRequest, Message(err, MsgResetFailed))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"done": true, "redirect": LoginPath})
	}
}

func logoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, ok := FromContext(r.Context())
		if ok {
			// la memoria queda limpia aunque falle el storage
			_ = store.Logout(r.Context())
		}
		writeJSON(w, http.StatusOK, map[string]string{"redirect": "/"})
	}
}

func meHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, ok := FromContext(r.Context())
		if !ok {
			writeJSON(w, http.StatusOK, map[string]any{"user": nil})
			return
		}
		writeJSON(w, http.StatusOK, store.Snapshot())
	}
}

var errSIDNotIssued = errors.New("session: new sid not issued")

// authenticate corre fn (login o register) sobre un Store vacío con sid
// nuevo. Si sale bien el browser pasa a ese sid y el anterior se descarta,
// así un sid conocido antes del login nunca queda autenticado.
// Sin rotación en el contexto (tests, CLI) usa el Store del request.
func authenticate(w http.ResponseWriter, r *http.Request, fn func(st *Store) error) (*Store, error) {
	ctx := r.Context()
	current, _ := FromContext(ctx)

	rot, ok := rotationFrom(ctx)
	if !ok {
		return current, fn(current)
	}

	sid, fresh := rot.reg.Fresh(ctx)
	if err := fn(fresh); err != nil {
		rot.reg.Drop(sid)
		return nil, err
	}
	if err := rot.issue(w, r, sid); err != nil {
		_ = fresh.Logout(ctx)
		rot.reg.Drop(sid)
		return nil, errors.Join(errSIDNotIssued, err)
	}

	oldSID := SIDFromContext(ctx)
	if current.Authenticated() {
		// la cuenta anterior de este browser se cierra (apaga su dashboard)
		_ = current.Logout(ctx)
	}
	rot.reg.Drop(oldSID)
	return fresh, nil
}

// RedirectToLogin manda al login con ?next= apuntando a la ruta pedida.
// Clientes JSON reciben 401 con el destino en vez de un redirect.
func RedirectToLogin(w http.ResponseWriter, r *http.Request, loginPath string) {
	target := loginPath + "?next=" + url.QueryEscape(r.URL.RequestURI())
	if WantsJSON(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"error":    "unauthorized",
			"redirect": target,
		})
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// WantsJSON: el cliente pidió JSON explícitamente (fetch del browser, CLI).
func WantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func nextOrDashboard(r *http.Request) string {
	if next := safeNext(r.URL.Query().Get("next")); next != "" {
		return next
	}
	return DashboardPath
}

// safeNext solo acepta rutas locales ("/x"). Los browsers leen "/\host" y
// "/\t/host" como "//host", así que barras invertidas y caracteres de
// control también se rechazan.
func safeNext(next string) string {
	next = strings.TrimSpace(next)
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return ""
	}
	if strings.ContainsFunc(next, func(r rune) bool { return r == '\\' || unicode.IsControl(r) }) {
		return ""
	}
	return next
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeJSON se repite en cada módulo para no crear un paquete de helpers compartidos.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
