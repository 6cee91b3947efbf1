package httpapi

import (
	"errors"
	"net/http"

	"pulseboard.org/internal/audit"
	"pulseboard.org/internal/auth"
	"pulseboard.org/internal/dashboard"
	"pulseboard.org/internal/session"
)

// requireSession resolves the caller's session and answers 401 when absent.
// API routes never redirect; that is page-guard behavior.
func (a *API) requireSession(w http.ResponseWriter, r *http.Request) (session.Resolution, bool) {
	res := a.sessions.Resolve(r)
	if res.Authenticated() {
		return res, true
	}
	writeFailure(w, r, http.StatusUnauthorized, "Not authenticated")
	return res, false
}

func (a *API) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := a.requireSession(w, r); !ok {
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: a.dashboard.Snapshot()})
}

func (a *API) handleDashboardRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	res, ok := a.requireSession(w, r)
	if !ok {
		return
	}

	scope := r.URL.Query().Get("scope")
	if scope == "" {
		scope = "all"
	}

	var err error
	switch scope {
	case "all":
		err = a.dashboard.Refresh(r.Context())
	case "metrics":
		err = a.dashboard.RefreshMetrics(r.Context())
	case "financial":
		err = a.dashboard.RefreshFinancial(r.Context())
	case "charts":
		err = a.dashboard.RefreshCharts(r.Context())
	default:
		writeFailure(w, r, http.StatusBadRequest, "unknown refresh scope")
		return
	}

	switch {
	case errors.Is(err, dashboard.ErrRefreshInFlight):
		// Dropped, not queued: the running fetch will finish on its own.
		writeFailure(w, r, http.StatusConflict, "Refresh already in progress")
	case err != nil:
		writeFailure(w, r, http.StatusInternalServerError, "Failed to fetch dashboard data")
	default:
		_ = audit.LogEvent(auth.ContextWithUser(r.Context(), res.Session.User), "dashboard.refresh", map[string]any{"scope": scope})
		writeJSON(w, http.StatusOK, envelope{Success: true, Data: a.dashboard.Snapshot(), Message: "Dashboard refreshed"})
	}
}

func (a *API) handleDashboardError(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, r, http.MethodDelete)
		return
	}
	if _, ok := a.requireSession(w, r); !ok {
		return
	}
	a.dashboard.ClearError()
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Error cleared"})
}
