// Package keepalive serves the health endpoints that keep the bot awake on
// free hosting tiers, plus the Prometheus scrape endpoint. Nothing here
// touches workflow state.
package keepalive

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Status is the payload for the extended /status endpoint.
type Status struct {
	Status                  string `json:"status"`
	Service                 string `json:"service"`
	UptimeSeconds           int64  `json:"uptime_seconds"`
	AdminRolesConfigured    bool   `json:"admin_roles_configured"`
	ManagerRolesConfigured  bool   `json:"citizenship_manager_roles_configured"`
	PendingApplicationsSeen int    `json:"pending_applications"`
}

// StatusFunc supplies the current Status on each request.
type StatusFunc func() Status

const serviceName = "British Virgin Islands Discord Bot"

// New builds the keep-alive HTTP server.
func New(addr string, statusFn StatusFunc) *http.Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(serviceName + " is alive!"))
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{"status": "healthy", "service": serviceName})
	})
	r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, statusFn())
	})
	r.Handle("/metrics", promhttp.Handler())

	return &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
