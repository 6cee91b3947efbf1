package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"pulseboard.org/internal/auth"
	"pulseboard.org/internal/dashboard"
	"pulseboard.org/internal/httpapi"
	"pulseboard.org/internal/mockdata"
	"pulseboard.org/internal/obs"
	"pulseboard.org/internal/session"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	// The signing secret has no default: starting without one would mean
	// accepting forgeable sessions.
	secret := os.Getenv("PULSEBOARD_AUTH_SECRET")
	if secret == "" {
		log.Fatal("PULSEBOARD_AUTH_SECRET is required")
	}
	codec, err := auth.NewCodec(secret)
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}

	// User store: Postgres when a DSN is given, otherwise in-memory with
	// the demo accounts.
	var db *sql.DB
	var store auth.UserStore
	if dsn := os.Getenv("PULSEBOARD_PG_DSN"); dsn != "" {
		db, err = sql.Open("pgx", dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
		store = auth.NewPGStore(db)
	} else {
		mem := auth.NewMemoryStore()
		mem.Seed(auth.DemoUsers())
		store = mem
	}

	users := auth.NewService(store)
	resolver := session.NewResolver(codec, nil)

	refreshInterval := dashboard.DefaultStaleAfter
	if raw := os.Getenv("PULSEBOARD_REFRESH_INTERVAL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatalf("parse PULSEBOARD_REFRESH_INTERVAL: %v", err)
		}
		refreshInterval = d
	}

	ctrl := dashboard.NewController(
		mockdata.NewGenerator(mockdata.WithDelay(100*time.Millisecond, 400*time.Millisecond)),
		dashboard.WithStaleAfter(refreshInterval),
	)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := ctrl.Start(ctx); err != nil {
			log.Printf("initial dashboard load failed: %v", err)
		}
		cancel()
	}
	stopAuto := ctrl.AutoRefresh(refreshInterval)
	defer stopAuto()

	cfg := httpapi.Config{
		Version:       version,
		SecureCookies: os.Getenv("PULSEBOARD_ENV") == "production",
	}
	api := httpapi.New(cfg, users, codec, resolver, ctrl, httpapi.ReadyProbe{DB: db})

	addr := os.Getenv("PULSEBOARD_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
		// No WriteTimeout: /api/dashboard/stream holds connections open.
	}

	log.Printf("Starting pulseboard-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}
