package middleware

import (
	"log/slog"
	"net/http"

	"github.com/traitdex/traitdex/internal/opt/optutils"
)

// SafeHandlerMiddleware keeps a panicking handler from tearing down the
// server. The client gets the same JSON error shape the other middlewares
// emit.
func SafeHandlerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic recovered",
					slog.Any("err", rec),
					slog.String("method", r.Method),
					slog.String("path", r.URL.EscapedPath()),
				)
				optutils.WriteJSON(w, http.StatusInternalServerError, map[string]string{
					"error": "internal error",
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
