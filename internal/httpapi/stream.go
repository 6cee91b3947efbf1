package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
)

// Stream pushes dashboard state snapshots over Server-Sent Events. Clients
// get the current state immediately and an event after every successful
// fetch thereafter.
func (a *API) Stream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := a.requireSession(w, r); !ok {
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	ch := a.dashboard.Subscribe(ctx)

	writeEvent := func(v any) bool {
		payload, err := json.Marshal(v)
		if err != nil {
			return true
		}
		if _, err := w.Write([]byte("data: ")); err != nil {
			return false
		}
		_, _ = w.Write(payload)
		_, _ = w.Write([]byte("\n\n"))
		flusher.Flush()
		return true
	}

	if !writeEvent(a.dashboard.Snapshot()) {
		return
	}
	for snap := range ch {
		if !writeEvent(snap) {
			return
		}
	}
}
