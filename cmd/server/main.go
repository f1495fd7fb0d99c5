package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/CimbaWatch/cimbawatch/internal/api"
	"github.com/CimbaWatch/cimbawatch/internal/cache"
	"github.com/CimbaWatch/cimbawatch/internal/config"
	"github.com/CimbaWatch/cimbawatch/internal/proxy"
	"github.com/CimbaWatch/cimbawatch/internal/services"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	log.Println("Starting CimbaWatch API Server...")

	cfg := config.Load()
	if cfg.TMDBAPIKey == "" {
		log.Println("Warning: TMDB_API_KEY not set, catalog endpoints will fail")
	}

	// Pick the cache backend: Postgres when configured, memory otherwise.
	// The store backs both the proxy cookie jar and TMDB response caching.
	var store cache.Store
	if cfg.DatabaseURL != "" {
		db, err := cache.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		pgStore, err := cache.NewPostgresStore(db)
		if err != nil {
			log.Fatalf("Failed to initialize cache store: %v", err)
		}
		defer pgStore.Close()
		store = pgStore
		log.Println("Database cache store initialized")
	} else {
		memStore := cache.NewMemoryStore()
		defer memStore.Close()
		store = memStore
		log.Println("Using in-memory cache store")
	}

	// Proxy components
	jar := proxy.NewCookieJar(store)
	fetcher := proxy.NewFetcher(jar)
	embedPages := proxy.NewEmbedPageBuilder(proxy.NewProber())

	// Catalog
	tmdbClient := services.NewTMDBClient(cfg.TMDBAPIKey, cfg.TMDBLang, cfg.TMDBImageBase, store)

	handler := api.NewHandler(tmdbClient, embedPages, fetcher)
	router := api.SetupRoutes(handler)

	log.Println("✓ Embed proxy enabled at /proxy/embed/{type}/{id}")
	log.Println("✓ Fetch proxy enabled at /proxy/fetch")
	log.Println("✓ Catalog API enabled at /api")

	// Write timeout must outlive the 15s upstream fetch budget
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server listening on %s:%d", cfg.Host, cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
