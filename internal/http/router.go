package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterConfig carries the handlers the router wires up. Nil handlers leave
// their routes unregistered.
type RouterConfig struct {
	Packages    *PackageHandler
	Conversions *ConversionHandler
	Coverage    *CoverageHandler
	Logger      *slog.Logger
}

// NewRouter assembles the tenant-scoped API routes with the standard
// middleware stack.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(defaultLogger(cfg.Logger)))

	r.Route("/tenants/{tenantID}/packages", func(r chi.Router) {
		if cfg.Packages != nil {
			r.Post("/", cfg.Packages.Create)
			r.Get("/", cfg.Packages.List)
			r.Get("/{packageID}", cfg.Packages.Get)
			r.Get("/{packageID}/routes", cfg.Packages.Routes)
		}
		if cfg.Conversions != nil {
			r.Post("/{packageID}/timezone-conversions", cfg.Conversions.Convert)
		}
		if cfg.Coverage != nil {
			r.Get("/{packageID}/coverage", cfg.Coverage.Check)
		}
	})

	return r
}
