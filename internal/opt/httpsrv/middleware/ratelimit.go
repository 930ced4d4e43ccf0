package middleware

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/traitdex/traitdex/internal/opt/optutils"
)

type RateLimiterMiddleware struct {
	Limiter *rate.Limiter
}

func (m *RateLimiterMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.Limiter.Allow() {
			optutils.WriteJSON(w, http.StatusTooManyRequests, map[string]string{
				"error": "rate limit exceeded",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
