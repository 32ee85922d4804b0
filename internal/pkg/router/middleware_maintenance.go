package router

import (
	"net/http"
	"strings"

	"github.com/shandysiswandi/gotwofa/internal/pkg/config"
)

// middlewareMaintenance answers 503 for routes listed in
// app.maintenance.endpoints, or for every route except "/" and "/health" when
// app.maintenance.enabled is set. Values are read per request so a config
// reload takes effect without a restart.
func middlewareMaintenance(cfg config.Config) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg != nil && underMaintenance(cfg, matchedRoutePath(r)) {
				writeJSON(w, errorResponse{Message: "service is under maintenance"}, http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func underMaintenance(cfg config.Config, route string) bool {
	if cfg.GetBool("app.maintenance.enabled") {
		return route != "/" && route != "/health"
	}

	for _, endpoint := range cfg.GetArray("app.maintenance.endpoints") {
		if strings.TrimSpace(endpoint) == route {
			return true
		}
	}

	return false
}
