package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"pet-guardian/internal/platform/httpclient"
	"pet-guardian/internal/platform/logger"

	"github.com/golang-jwt/jwt/v5"
)

// Store es el contexto de sesión de un cliente: user + token.
// Solo Login/Register/Logout (y Restore al arrancar) lo mutan.
type Store struct {
	api     AuthAPI
	storage TokenStorage
	log     logger.Logger
	now     func() time.Time

	mu       sync.RWMutex
	user     *User
	token    string
	onLogout []func()
}

func NewStore(api AuthAPI, storage TokenStorage, log logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{
		api:     api,
		storage: storage,
		log:     log,
		now:     time.Now,
	}
}

// Restore inicializa la sesión desde el storage durable.
// Un token vencido o rechazado (401/403) se borra. Cualquier otro fallo deja
// la sesión vacía y se devuelve para que el caller lo loguee.
func (s *Store) Restore(ctx context.Context) error {
	token, err := s.storage.Load(ctx)
	if err != nil {
		return fmt.Errorf("session: load token: %w", err)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		s.reset()
		return nil
	}

	if tokenExpired(token, s.now()) {
		s.reset()
		if err := s.storage.Clear(ctx); err != nil {
			return fmt.Errorf("session: clear expired token: %w", err)
		}
		return nil
	}

	u, err := s.api.Me(ctx, token)
	if err != nil {
		s.reset()
		if he, ok := httpclient.AsHTTPError(err); ok && he.Unauthorized() {
			if cerr := s.storage.Clear(ctx); cerr != nil {
				return fmt.Errorf("session: clear rejected token: %w", cerr)
			}
			return nil
		}
		return fmt.Errorf("session: restore user: %w", err)
	}

	s.mu.Lock()
	s.user = &u
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *Store) Login(ctx context.Context, email, password string) error {
	res, err := s.api.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return userError(err, MsgLoginFailed)
	}
	return s.establish(ctx, res, MsgLoginFailed)
}

func (s *Store) Register(ctx context.Context, in RegisterInput) error {
	if in.Password != in.ConfirmPassword {
		return &UserError{Message: MsgPasswordMismatch, Err: ErrPasswordMismatch}
	}

	in.Email = strings.TrimSpace(in.Email)
	res, err := s.api.Register(ctx, in)
	if err != nil {
		return userError(err, MsgRegisterFailed)
	}
	return s.establish(ctx, res, MsgRegisterFailed)
}

func (s *Store) RequestPasswordReset(ctx context.Context, email string) error {
	if err := s.api.ForgotPassword(ctx, strings.TrimSpace(email)); err != nil {
		return userError(err, MsgResetLinkFailed)
	}
	return nil
}

// ResetPassword no llama a la red si el token del link viene vacío.
func (s *Store) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return &UserError{Message: MsgInvalidResetLink, Err: ErrInvalidResetLink}
	}
	if err := s.api.ResetPassword(ctx, token, newPassword); err != nil {
		return userError(err, MsgResetFailed)
	}
	return nil
}

// ResetPasswordConfirm agrega el chequeo de confirmación del formulario.
func (s *Store) ResetPasswordConfirm(ctx context.Context, token, password, confirm string) error {
	if strings.TrimSpace(token) == "" {
		return &UserError{Message: MsgInvalidResetLink, Err: ErrInvalidResetLink}
	}
	if password != confirm {
		return &UserError{Message: MsgPasswordMismatch, Err: ErrPasswordMismatch}
	}
	return s.ResetPassword(ctx, token, password)
}

// Logout limpia memoria y storage y dispara los hooks registrados.
// La memoria se limpia aunque falle el storage.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	hooks := make([]func(), len(s.onLogout))
	copy(hooks, s.onLogout)
	s.mu.Unlock()

	err := s.storage.Clear(ctx)

	for _, h := range hooks {
		h()
	}

	if err != nil {
		return fmt.Errorf("session: clear token: %w", err)
	}
	return nil
}

// OnLogout registra un hook que corre después de cada Logout.
func (s *Store) OnLogout(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.onLogout = append(s.onLogout, fn)
	s.mu.Unlock()
}

func (s *Store) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.token != ""
}

func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return Session{}
	}
	u := *s.user
	return Session{User: &u, Token: s.token}
}

// establish persiste primero y publica user+token juntos.
func (s *Store) establish(ctx context.Context, res AuthResult, fallback string) error {
	token := strings.TrimSpace(res.Token)
	if res.User == nil || token == "" {
		return &UserError{Message: fallback, Err: ErrIncompleteResponse}
	}
	if err := s.storage.Save(ctx, token); err != nil {
		return &UserError{Message: fallback, Err: fmt.Errorf("session: persist token: %w", err)}
	}

	u := *res.User
	s.mu.Lock()
	s.user = &u
	s.token = token
	s.mu.Unlock()

	s.log.Info("session established", map[string]any{"user_id": u.ID})
	return nil
}

func (s *Store) reset() {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.mu.Unlock()
}

// tokenExpired mira el exp de un JWT sin verificar la firma (eso lo hace el
// backend). Tokens opacos o sin exp => no vencidos.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(now)
}
