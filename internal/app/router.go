package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-crm/meridian-crm/internal/customers"
	"github.com/meridian-crm/meridian-crm/internal/interactions"
	"github.com/meridian-crm/meridian-crm/internal/observability"
	"github.com/meridian-crm/meridian-crm/internal/reporting"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger              *slog.Logger
	Config              *Config
	CustomersHandler    *customers.Handler
	InteractionsHandler *interactions.Handler
	ReportingHandler    *reporting.Handler
	Metrics             *observability.Metrics
}

// NewRouter constructs the chi.Router with Meridian defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		if params.CustomersHandler != nil {
			params.CustomersHandler.MountRoutes(api)
		}
		if params.InteractionsHandler != nil {
			params.InteractionsHandler.MountRoutes(api)
		}
		if params.ReportingHandler != nil {
			params.ReportingHandler.MountRoutes(api)
		}
	})

	return r
}
