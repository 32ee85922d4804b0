package router

import (
	"net"
	"net/http"
	"strings"

	"github.com/shandysiswandi/gotwofa/internal/pkg/config"
)

var defaultClientIPHeaders = []string{"True-Client-IP", "X-Real-IP", "X-Forwarded-For"}

// middlewareClientIP rewrites RemoteAddr from the first trusted proxy header
// carrying a valid IP. Headers come from app.server.client_ip_headers.
func middlewareClientIP(cfg config.Config) Middleware {
	headers := func() []string {
		if cfg != nil {
			if hs := cfg.GetArray("app.server.client_ip_headers"); len(hs) > 0 {
				return hs
			}
		}
		return defaultClientIPHeaders
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ip := clientIP(r, headers()); ip != "" {
				r.RemoteAddr = ip
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request, headers []string) string {
	for _, h := range headers {
		v := r.Header.Get(h)
		if v == "" {
			continue
		}
		// X-Forwarded-For lists the original client first.
		first, _, _ := strings.Cut(v, ",")
		if ip := strings.TrimSpace(first); net.ParseIP(ip) != nil {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && net.ParseIP(host) != nil {
		return host
	}
	return ""
}
