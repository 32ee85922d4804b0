package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/shandysiswandi/gotwofa/internal/pkg/router"
	"go.uber.org/atomic"
)

const healthPingTimeout = 2 * time.Second

type healthCheck struct {
	name string
	ping func(ctx context.Context) error
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// newHealthHandler reports 200 only while the server accepts traffic and every
// backing store answers a ping.
func newHealthHandler(ready *atomic.Bool, checks []healthCheck) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ready.Load() {
			router.WriteJSON(w, healthResponse{Status: "starting"}, http.StatusServiceUnavailable)
			return
		}

		resp := healthResponse{Status: "ok"}
		code := http.StatusOK

		for _, check := range checks {
			if resp.Checks == nil {
				resp.Checks = make(map[string]string, len(checks))
			}

			ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
			err := check.ping(ctx)
			cancel()

			if err != nil {
				slog.WarnContext(r.Context(), "health check failed", "name", check.name, "error", err)
				resp.Checks[check.name] = "down"
				resp.Status = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[check.name] = "up"
		}

		router.WriteJSON(w, resp, code)
	})
}

// healthChecks lists the connections opened at boot; an unused driver adds
// no check.
func (a *App) healthChecks() []healthCheck {
	var checks []healthCheck
	if a.dbConn != nil {
		checks = append(checks, healthCheck{name: "database", ping: a.dbConn.Ping})
	}
	if a.cacheConn != nil {
		checks = append(checks, healthCheck{name: "redis", ping: func(ctx context.Context) error {
			return a.cacheConn.Ping(ctx).Err()
		}})
	}
	return checks
}
