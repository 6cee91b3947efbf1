package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"pulseboard.org/internal/auth"
	"pulseboard.org/internal/dashboard"
	"pulseboard.org/internal/mockdata"
	"pulseboard.org/internal/session"
)

func TestDashboardRequiresSession(t *testing.T) {
	c := newTestAPI(t)
	resp := c.get("/api/dashboard", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestDashboardSnapshotAfterRefresh(t *testing.T) {
	c := newTestAPI(t)
	c.register("Jane Doe", "jane@example.com", "Passw0rd!")

	resp := c.post("/api/dashboard/refresh", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh status: %d", resp.StatusCode)
	}
	refreshed := decode[apiEnvelope](t, resp)
	if !refreshed.Success {
		t.Fatalf("unexpected refresh envelope: %+v", refreshed)
	}

	resp = c.get("/api/dashboard", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard status: %d", resp.StatusCode)
	}
	body := decode[apiEnvelope](t, resp)
	var state dashboard.State
	if err := json.Unmarshal(body.Data, &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if state.Metrics == nil || state.Financial == nil {
		t.Fatalf("state not populated: %+v", state)
	}
	if state.IsLoading || state.IsRefreshing {
		t.Fatalf("flags set in settled state: %+v", state)
	}
	if state.LastUpdated.IsZero() {
		t.Fatal("lastUpdated not set")
	}
}

func TestDashboardRefreshScopes(t *testing.T) {
	c := newTestAPI(t)
	c.register("Jane Doe", "jane@example.com", "Passw0rd!")

	for _, scope := range []string{"all", "metrics", "financial", "charts"} {
		resp := c.post("/api/dashboard/refresh?scope="+scope, nil, nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("scope %s: status %d", scope, resp.StatusCode)
		}
	}

	resp := c.post("/api/dashboard/refresh?scope=bogus", nil, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown scope, got %d", resp.StatusCode)
	}
}

func TestDashboardClearError(t *testing.T) {
	c := newTestAPI(t)
	c.register("Jane Doe", "jane@example.com", "Passw0rd!")

	req, err := http.NewRequest(http.MethodDelete, c.baseURL+"/api/dashboard/error", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("clear error status: %d", resp.StatusCode)
	}
}

// gatedSource blocks Metrics until released, for overlap tests.
type gatedSource struct {
	dashboard.Source
	release chan struct{}
}

func (s *gatedSource) Metrics(ctx context.Context) (dashboard.Metrics, error) {
	select {
	case <-s.release:
	case <-ctx.Done():
		return dashboard.Metrics{}, ctx.Err()
	}
	return s.Source.Metrics(ctx)
}

func TestDashboardRefreshConflict(t *testing.T) {
	codec, err := auth.NewCodec("test-secret")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	src := &gatedSource{Source: mockdata.NewGenerator(mockdata.WithSeed(1)), release: make(chan struct{})}
	ctrl := dashboard.NewController(src)
	api := New(Config{Version: "test"}, auth.NewService(auth.NewMemoryStore()), codec, session.NewResolver(codec, nil), ctrl, ReadyProbe{})
	api.rateBurst = 1000
	api.ratePerSec = 1000

	token, _, err := codec.Sign(auth.User{ID: "u-1", Email: "jane@example.com", Role: auth.RoleUser}, time.Hour)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	cookie := &http.Cookie{Name: session.FallbackCookie, Value: token}

	handler := api.Handler()

	first := make(chan int, 1)
	go func() {
		req := httptest.NewRequest(http.MethodPost, "/api/dashboard/refresh", nil)
		req.AddCookie(cookie)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		first <- rr.Code
	}()

	// Wait for the first refresh to be visibly in flight.
	deadline := time.After(2 * time.Second)
	for !ctrl.Snapshot().IsRefreshing {
		select {
		case <-deadline:
			t.Fatal("refresh never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/dashboard/refresh", nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 while refresh in flight, got %d", rr.Code)
	}

	close(src.release)
	if code := <-first; code != http.StatusOK {
		t.Fatalf("first refresh status: %d", code)
	}
}

func TestDashboardStreamSendsInitialSnapshot(t *testing.T) {
	c := newTestAPI(t)
	c.register("Jane Doe", "jane@example.com", "Passw0rd!")

	base, err := url.Parse(c.baseURL)
	if err != nil {
		t.Fatalf("parse base url: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/dashboard/stream", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	for _, ck := range c.client.Jar.Cookies(base) {
		req.AddCookie(ck)
	}

	resp, err := http.DefaultTransport.RoundTrip(req)
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type: %s", ct)
	}

	buf := make([]byte, 1)
	var line []byte
	for {
		if _, err := resp.Body.Read(buf); err != nil {
			t.Fatalf("read stream: %v", err)
		}
		if buf[0] == '\n' {
			break
		}
		line = append(line, buf[0])
	}
	payload := string(line)
	if len(payload) < len("data: ") || payload[:6] != "data: " {
		t.Fatalf("unexpected frame: %q", payload)
	}
	var state dashboard.State
	if err := json.Unmarshal([]byte(payload[6:]), &state); err != nil {
		t.Fatalf("decode snapshot frame: %v", err)
	}
}
