package middleware

import (
	"net/http"
	"strings"

	"pet-guardian/internal/domain/session"
	"pet-guardian/internal/platform/logger"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

const (
	CookieName = "pg_session"
	sidValue   = "sid"
)

// CookieOptions configura la cookie firmada que identifica al browser.
type CookieOptions struct {
	Secret string
	Secure bool
	MaxAge int
}

// NewCookieStore arma el store de gorilla. Sin secreto se usa una clave al
// azar: las sesiones no sobreviven a un reinicio del proceso.
func NewCookieStore(opts CookieOptions) *sessions.CookieStore {
	key := []byte(opts.Secret)
	if len(key) == 0 {
		key = securecookie.GenerateRandomKey(32)
	}
	maxAge := opts.MaxAge
	if maxAge <= 0 {
		maxAge = 30 * 24 * 3600
	}

	cs := sessions.NewCookieStore(key)
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return cs
}

// SessionContext:
// - Lee el sid de la cookie; si no hay (o la firma no valida) crea uno nuevo.
// - Toma el Store de ese sid del registry (restaurándolo la primera vez).
// - Deja Store y sid en el contexto; no corta ningún request.
// - Login y register emiten un sid nuevo con la misma cookie.
func SessionContext(store sessions.Store, reg *session.Registry, log logger.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// una cookie con otra firma no es fatal: se emite una nueva
			sess, err := store.Get(r, CookieName)
			if err != nil {
				log.Debug("session cookie rejected", map[string]any{"error": err})
			}

			sid, _ := sess.Values[sidValue].(string)
			if strings.TrimSpace(sid) == "" {
				sid = uuid.NewString()
				sess.Values[sidValue] = sid
				if err := sess.Save(r, w); err != nil {
					log.Error("session cookie not saved", map[string]any{"error": err})
				}
			}

			st := reg.Get(r.Context(), sid)
			ctx := session.WithStore(r.Context(), sid, st)
			ctx = session.WithRotation(ctx, reg, func(w http.ResponseWriter, r *http.Request, newSID string) error {
				sess.Values[sidValue] = newSID
				return sess.Save(r, w)
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
