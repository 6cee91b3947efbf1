package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"os"
	"time"
)

// Smoke test against a running pulseboard-api: register a throwaway
// account, log in, check the session, refresh the dashboard and read it
// back.
func main() {
	base := os.Getenv("PULSEBOARD_API_URL")
	if base == "" {
		base = "http://localhost:8080"
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		log.Fatalf("cookie jar: %v", err)
	}
	client := &http.Client{Jar: jar, Timeout: 10 * time.Second}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	email := fmt.Sprintf("smoke-%d@example.com", rnd.Int63())
	password := "Sm0ke-test!"

	mustPost(client, base+"/api/auth/register", map[string]any{
		"name":            "Smoke Test",
		"email":           email,
		"password":        password,
		"confirmPassword": password,
	}, http.StatusCreated)

	mustPost(client, base+"/api/auth/login", map[string]any{
		"email":    email,
		"password": password,
	}, http.StatusOK)

	me := mustGet(client, base+"/api/auth/me", http.StatusOK)
	user, ok := me["user"].(map[string]any)
	if !ok || user["email"] != email {
		log.Fatalf("unexpected /api/auth/me payload: %v", me)
	}

	mustPost(client, base+"/api/dashboard/refresh", nil, http.StatusOK)

	board := mustGet(client, base+"/api/dashboard", http.StatusOK)
	data, ok := board["data"].(map[string]any)
	if !ok || data["metrics"] == nil {
		log.Fatalf("dashboard has no metrics: %v", board)
	}
	if data["isLoading"] == true || data["isRefreshing"] == true {
		log.Fatalf("dashboard still busy after refresh: %v", board)
	}

	fmt.Printf("✅ api smoke test passed: user=%s\n", email)
}

func mustPost(client *http.Client, url string, body any, wantStatus int) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			log.Fatalf("marshal %s body: %v", url, err)
		}
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		log.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		log.Fatalf("POST %s: status %d, want %d", url, resp.StatusCode, wantStatus)
	}
}

func mustGet(client *http.Client, url string, wantStatus int) map[string]any {
	resp, err := client.Get(url)
	if err != nil {
		log.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		log.Fatalf("GET %s: status %d, want %d", url, resp.StatusCode, wantStatus)
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Fatalf("decode %s: %v", url, err)
	}
	return out
}
