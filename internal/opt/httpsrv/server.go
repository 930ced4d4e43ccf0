package httpsrv

import (
	"log/slog"
	"net/http"
	"net/http/pprof"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/traitdex/traitdex/config"
	controlCrt "github.com/traitdex/traitdex/internal/opt/httpsrv/controller"
	"github.com/traitdex/traitdex/internal/opt/httpsrv/middleware"
	controlSvc "github.com/traitdex/traitdex/internal/opt/httpsrv/service"
	"github.com/traitdex/traitdex/internal/opt/regview"
)

type HTTPHandlersOpts struct {
	View        *regview.View
	Verbose     bool
	RunningMode string
	Rescan      func() error
	Retention   func() error
}

func InitHTTPHandlers(opts *HTTPHandlersOpts) http.Handler {
	cfg := config.Cfg()
	l := slog.With("component", "rest-api")

	service := controlSvc.NewControlService(&controlSvc.ControlServiceOpts{
		View:        opts.View,
		RunningMode: opts.RunningMode,
		Rescan:      opts.Rescan,
		Retention:   opts.Retention,
	})
	controller := controlCrt.NewController(service)

	// init middlewares
	loggingMiddleware := middleware.LoggingMiddleware{
		Logger:  l,
		Verbose: opts.Verbose,
	}
	rateLimitMiddleware := middleware.RateLimiterMiddleware{Limiter: rate.NewLimiter(5, 10)}
	authMiddleware := middleware.BasicAuthMiddleware{
		User:         cfg.Auth.User,
		PasswordHash: cfg.Auth.PasswordHash,
	}

	// Build middleware chain
	adminChain := middleware.Chain(
		middleware.SafeHandlerMiddleware,
		loggingMiddleware.Middleware,
		rateLimitMiddleware.Middleware,
		authMiddleware.Middleware,
	)
	plainChain := middleware.Chain(
		middleware.SafeHandlerMiddleware,
		loggingMiddleware.Middleware,
	)

	// Init handlers
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Read side: the page-facing registry surface.
	mux.Handle("/status", plainChain(http.HandlerFunc(controller.StatusHandler)))
	mux.Handle("/registry", plainChain(http.HandlerFunc(controller.RegistryHandler)))
	mux.Handle("/implementors/{trait}", plainChain(http.HandlerFunc(controller.ImplementorsHandler)))
	mux.Handle("/implementors.js", plainChain(http.HandlerFunc(controller.ArtifactHandler)))

	// Admin side.
	mux.Handle("POST /rescan", adminChain(http.HandlerFunc(controller.RescanHandler)))
	mux.Handle("POST /retention", adminChain(http.HandlerFunc(controller.RetentionHandler)))

	// Operational endpoints.
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	return mux
}
