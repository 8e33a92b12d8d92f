package middleware

import (
	"net/http"

	"pet-guardian/internal/domain/session"
)

// RequireSession deja pasar solo sesiones con usuario y token. El resto va
// al login con ?next= apuntando a la ruta pedida. Va después de SessionContext.
func RequireSession(loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			st, ok := session.FromContext(r.Context())
			if !ok || !st.Authenticated() {
				session.RedirectToLogin(w, r, loginPath)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
