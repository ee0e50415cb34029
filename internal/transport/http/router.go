package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"channelling/internal/catalog/handler"
	"channelling/internal/platform/config"
	"channelling/internal/platform/metrics"
	"channelling/internal/platform/middleware"
	"channelling/pkg/platform/httputil"
)

// APIPrefix is the mount point of every catalog resource.
const APIPrefix = "/api/v1"

// HealthCheck probes one dependency for /health.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Deps are the pieces the router wires together.
type Deps struct {
	Resources []handler.Mountable
	Logger    *slog.Logger
	// Metrics enables request metrics and the metrics endpoint when set.
	Metrics     *metrics.Metrics
	MetricsPath string
	Auth        config.Auth
	// Validator is required when Auth.Mode is "jwt".
	Validator      middleware.JWTValidator
	RequestTimeout time.Duration
	Checks         []HealthCheck
}

// NewRouter wires the public endpoints: catalog resources under /api/v1,
// /health, and the metrics endpoint.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.CORS())
	if d.Metrics != nil {
		r.Use(middleware.Latency(d.Metrics))
	}

	r.Get("/health", healthHandler(d.Checks))
	if d.Metrics != nil {
		path := d.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, d.Metrics.Handler())
	}

	r.Route(APIPrefix, func(api chi.Router) {
		if d.Auth.Mode == "jwt" {
			api.Use(middleware.ActorFromJWT(d.Validator, logger))
		} else {
			api.Use(middleware.ActorFromHeader(d.Auth.Header))
		}
		api.Use(middleware.Logger(logger))
		api.Use(middleware.Timeout(d.RequestTimeout))
		for _, res := range d.Resources {
			res.Register(api)
		}
	})
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		if len(checks) > 0 {
			resp.Checks = make(map[string]string, len(checks))
		}
		for _, c := range checks {
			if err := c.Check(r.Context()); err != nil {
				resp.Checks[c.Name] = err.Error()
				resp.Status = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[c.Name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
