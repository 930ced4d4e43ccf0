package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/traitdex/traitdex/internal/kdf/bcrypt"
	"github.com/traitdex/traitdex/internal/opt/optutils"
)

// BasicAuthMiddleware guards the admin endpoints. Credentials come from the
// config: a username and a bcrypt password hash produced by
// `traitdex hash-password`. With no user configured the endpoints stay locked.
type BasicAuthMiddleware struct {
	User         string
	PasswordHash string
}

func (m *BasicAuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="traitdex"`)
			optutils.WriteJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "missing credentials",
			})
			return
		}

		if m.User == "" || subtle.ConstantTimeCompare([]byte(user), []byte(m.User)) != 1 {
			optutils.WriteJSON(w, http.StatusForbidden, map[string]string{
				"error": "missing or incorrect credentials",
			})
			return
		}
		match, err := bcrypt.Verify(pass, m.PasswordHash)
		if err != nil {
			slog.Error("verify password hash", slog.Any("err", err))
			optutils.WriteJSON(w, http.StatusForbidden, map[string]string{
				"error": "missing or incorrect credentials",
			})
			return
		}
		if !match {
			optutils.WriteJSON(w, http.StatusForbidden, map[string]string{
				"error": "missing or incorrect credentials",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
