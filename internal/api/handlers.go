package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/CimbaWatch/cimbawatch/internal/models"
	"github.com/CimbaWatch/cimbawatch/internal/proxy"
	"github.com/CimbaWatch/cimbawatch/internal/services"
)

type Handler struct {
	tmdbClient *services.TMDBClient
	embedPages *proxy.EmbedPageBuilder
	fetcher    *proxy.Fetcher
}

func NewHandler(tmdbClient *services.TMDBClient, embedPages *proxy.EmbedPageBuilder, fetcher *proxy.Fetcher) *Handler {
	return &Handler{
		tmdbClient: tmdbClient,
		embedPages: embedPages,
		fetcher:    fetcher,
	}
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// HealthCheck handles GET /api/v1/health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListMovies handles GET /api/movies
func (h *Handler) ListMovies(w http.ResponseWriter, r *http.Request) {
	h.listCatalog(w, r, "movie")
}

// ListSeries handles GET /api/series
func (h *Handler) ListSeries(w http.ResponseWriter, r *http.Request) {
	h.listCatalog(w, r, "series")
}

// listCatalog serves ?sort=trending|popular&search=&page= listings.
// A non-empty search term overrides sort.
func (h *Handler) listCatalog(w http.ResponseWriter, r *http.Request, mediaType string) {
	ctx := r.Context()

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	sort := r.URL.Query().Get("sort")
	query := strings.TrimSpace(r.URL.Query().Get("search"))

	var result *models.CatalogPage
	var err error
	switch {
	case query != "":
		result, err = h.tmdbClient.Search(ctx, query, mediaType, page)
	case sort == "popular":
		result, err = h.tmdbClient.Popular(ctx, mediaType, page)
	default:
		result, err = h.tmdbClient.Trending(ctx, mediaType, page)
	}
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Recommended handles GET /api/recommended: trending movies and series
// interleaved into one mixed rail.
func (h *Handler) Recommended(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	movies, err := h.tmdbClient.Trending(ctx, "movie", page)
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	series, err := h.tmdbClient.Trending(ctx, "series", page)
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	mixed := make([]models.Card, 0, len(movies.Results)+len(series.Results))
	for i := 0; i < len(movies.Results) || i < len(series.Results); i++ {
		if i < len(movies.Results) {
			mixed = append(mixed, movies.Results[i])
		}
		if i < len(series.Results) {
			mixed = append(mixed, series.Results[i])
		}
	}

	respondJSON(w, http.StatusOK, &models.CatalogPage{
		Page:    page,
		Total:   movies.Total + series.Total,
		Results: mixed,
	})
}

// GetMovie handles GET /api/movie/{id}
func (h *Handler) GetMovie(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	detail, err := h.tmdbClient.MovieDetail(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

// GetSeries handles GET /api/series/{id}
func (h *Handler) GetSeries(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	detail, err := h.tmdbClient.SeriesDetail(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, detail)
}
