package middleware

import "net/http"

type Middleware func(http.Handler) http.Handler

// Chain composes middlewares; the first argument becomes the outermost
// wrapper, so recovery goes first and auth sits closest to the handler.
func Chain(middleware ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(middleware) - 1; i >= 0; i-- {
			final = middleware[i](final)
		}
		return final
	}
}
