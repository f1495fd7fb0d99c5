package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) http.Handler {
	r := mux.NewRouter()

	// Embed + fetch proxy
	r.HandleFunc("/proxy/embed/{type}/{id}", handler.ProxyEmbed).Methods("GET")
	r.HandleFunc("/proxy/fetch", handler.ProxyFetch).Methods("GET")

	// Catalog
	r.HandleFunc("/api/movies", handler.ListMovies).Methods("GET")
	r.HandleFunc("/api/series", handler.ListSeries).Methods("GET")
	r.HandleFunc("/api/recommended", handler.Recommended).Methods("GET")
	r.HandleFunc("/api/movie/{id}", handler.GetMovie).Methods("GET")
	r.HandleFunc("/api/series/{id}", handler.GetSeries).Methods("GET")

	// Health check
	r.HandleFunc("/api/v1/health", handler.HealthCheck).Methods("GET")

	// Enable CORS
	r.Use(corsMiddleware)

	// Logging middleware
	r.Use(loggingMiddleware)

	return r
}

// corsMiddleware adds CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Range")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs all HTTP requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s (%s)", r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond))
	})
}
