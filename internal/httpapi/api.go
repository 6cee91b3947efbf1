package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"pulseboard.org/api/spec"
	"pulseboard.org/internal/auth"
	"pulseboard.org/internal/dashboard"
	"pulseboard.org/internal/obs"
	"pulseboard.org/internal/session"
)

// ReadyProbe checks dependencies before the service reports ready. With no
// database configured the probe always passes.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Config carries deployment settings for the HTTP layer.
type Config struct {
	Version string
	// SecureCookies marks the auth cookie Secure; enabled in production.
	SecureCookies bool
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	cfg        Config

	users     *auth.Service
	codec     *auth.Codec
	sessions  *session.Resolver
	dashboard *dashboard.Controller

	rateBurst  int
	ratePerSec int
}

func New(cfg Config, users *auth.Service, codec *auth.Codec, sessions *session.Resolver, ctrl *dashboard.Controller, rp ReadyProbe) *API {
	a := &API{
		mux:        http.NewServeMux(),
		readyProbe: rp,
		cfg:        cfg,
		users:      users,
		codec:      codec,
		sessions:   sessions,
		dashboard:  ctrl,
		rateBurst:  40,
		ratePerSec: 20,
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// OpenAPI YAML
	a.mux.HandleFunc("/openapi.yaml", a.OpenAPISpec)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// auth
	a.mux.HandleFunc("/api/auth/login", a.handleLogin)
	a.mux.HandleFunc("/api/auth/register", a.handleRegister)
	a.mux.HandleFunc("/api/auth/me", a.handleMe)
	a.mux.HandleFunc("/api/auth/logout", a.handleLogout)

	// dashboard
	a.mux.HandleFunc("/api/dashboard", a.handleDashboard)
	a.mux.HandleFunc("/api/dashboard/refresh", a.handleDashboardRefresh)
	a.mux.HandleFunc("/api/dashboard/error", a.handleDashboardError)
	a.mux.HandleFunc("/api/dashboard/stream", a.Stream)

	// page shells; the route guard runs before these
	a.mux.HandleFunc("/login", a.page("login"))
	a.mux.HandleFunc("/register", a.page("register"))
	a.mux.HandleFunc("/dashboard", a.page("dashboard"))
	a.mux.HandleFunc("/dashboard/", a.page("dashboard"))
	a.mux.HandleFunc("/admin", a.page("admin"))
	a.mux.HandleFunc("/admin/", a.page("admin"))

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wired http.Handler: metrics outermost, then
// request identity and logging, hardening, and the route guard in front of
// the mux.
func (a *API) Handler() http.Handler {
	h := a.Guard(a.mux)
	h = MaxBodyBytes(h, 1<<20)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

// --- Handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "pulseboard-api",
		"version": a.cfg.Version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "pulseboard-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.cfg.Version,
	})
}

func (a *API) OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	_, _ = w.Write(spec.OpenAPI)
}

// page serves a minimal HTML shell. The real UI is a separate frontend;
// these exist so guard redirects land somewhere observable.
func (a *API) page(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<!doctype html><title>Pulseboard</title><div id=\"app\" data-page=\"" + name + "\"></div>"))
	}
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// envelope is the response shape of the /api endpoints.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	User    any    `json:"user,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeSuccess(w http.ResponseWriter, code int, data any, message string) {
	writeJSON(w, code, envelope{Success: true, Data: data, Message: message})
}

func writeFailure(w http.ResponseWriter, r *http.Request, code int, msg string) {
	writeJSON(w, code, envelope{Success: false, Error: msg})
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}
