// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anirudh-joshi/course-reg-and-timetable/internal/handler"
	"github.com/anirudh-joshi/course-reg-and-timetable/internal/service"
	"github.com/anirudh-joshi/course-reg-and-timetable/internal/storage"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	ctx := context.Background()

	// ── 1. Pick a snapshot store ─────────────────────────────────────────
	store, cleanup, err := newStore(ctx, log)
	if err != nil {
		log.WithError(err).Fatal("storage")
	}
	defer cleanup()

	// ── 2. Wire up layers ────────────────────────────────────────────────
	svc, err := service.New(ctx, store, log)
	if err != nil {
		log.WithError(err).Fatal("service")
	}
	regHandler := handler.NewRegistrationHandler(svc)

	// ── 3. Build the router ──────────────────────────────────────────────
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(handler.AccessLog(log))
	r.Use(handler.CORS())
	r.Mount("/", regHandler.Routes())

	// ── 4. Start server with graceful shutdown ───────────────────────────
	port := getEnv("PORT", "8080")
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Fatal("graceful shutdown failed")
	}
	log.Info("server stopped")
}

// newStore builds the snapshot store selected by STORAGE_DRIVER: "file"
// (default) keeps the JSON document on disk, "postgres" keeps it in a
// single-row key-value table.
func newStore(ctx context.Context, log *logrus.Logger) (storage.Store, func(), error) {
	switch driver := getEnv("STORAGE_DRIVER", "file"); driver {
	case "file":
		path := getEnv("SNAPSHOT_PATH", "coursereg.json")
		return storage.NewFileStore(path, log), func() {}, nil
	case "postgres":
		pool, err := storage.NewPool(ctx, storage.ConfigFromEnv())
		if err != nil {
			return nil, nil, err
		}
		key := getEnv("SNAPSHOT_KEY", "coursereg")
		store, err := storage.NewPostgresStore(ctx, pool, key, log)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORAGE_DRIVER %q", driver)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
