package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/CimbaWatch/cimbawatch/internal/cache"
	"github.com/CimbaWatch/cimbawatch/internal/models"
)

const (
	tmdbBaseURL      = "https://api.themoviedb.org/3"
	tmdbImageBaseURL = "https://image.tmdb.org/t/p"

	listingTTL = 10 * time.Minute
	detailTTL  = time.Hour
	genreTTL   = 24 * time.Hour
)

// TMDBClient talks to the TMDB v3 API and maps responses to the frontend
// card/detail shapes. Listing, detail and genre responses are cached in
// the shared store.
type TMDBClient struct {
	apiKey     string
	lang       string
	imageBase  string
	baseURL    string
	httpClient *http.Client
	store      cache.Store
}

func NewTMDBClient(apiKey, lang, imageBase string, store cache.Store) *TMDBClient {
	if lang == "" {
		lang = "en-US"
	}
	if imageBase == "" {
		imageBase = tmdbImageBaseURL
	}
	return &TMDBClient{
		apiKey:    apiKey,
		lang:      lang,
		imageBase: imageBase,
		baseURL:   tmdbBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		store: store,
	}
}

type tmdbListItem struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	Name             string  `json:"name"`
	ReleaseDate      string  `json:"release_date"`
	FirstAirDate     string  `json:"first_air_date"`
	PosterPath       string  `json:"poster_path"`
	VoteAverage      float64 `json:"vote_average"`
	OriginalLanguage string  `json:"original_language"`
	OriginCountry    []string `json:"origin_country"`
	GenreIDs         []int   `json:"genre_ids"`
}

type tmdbListResponse struct {
	Page         int            `json:"page"`
	Results      []tmdbListItem `json:"results"`
	TotalResults int            `json:"total_results"`
	TotalPages   int            `json:"total_pages"`
}

type tmdbDetail struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	Name             string  `json:"name"`
	Overview         string  `json:"overview"`
	ReleaseDate      string  `json:"release_date"`
	FirstAirDate     string  `json:"first_air_date"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	VoteAverage      float64 `json:"vote_average"`
	Runtime          int     `json:"runtime"`
	NumberOfSeasons  int     `json:"number_of_seasons"`
	NumberOfEpisodes int     `json:"number_of_episodes"`
	Genres           []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
	Seasons []struct {
		SeasonNumber int    `json:"season_number"`
		EpisodeCount int    `json:"episode_count"`
		Name         string `json:"name"`
	} `json:"seasons"`
	Videos struct {
		Results []struct {
			Site string `json:"site"`
			Type string `json:"type"`
			Key  string `json:"key"`
		} `json:"results"`
	} `json:"videos"`
}

type tmdbGenreList struct {
	Genres []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
}

// normalizeMediaType maps the frontend's "series" alias onto TMDB's "tv".
func normalizeMediaType(mediaType string) string {
	if mediaType == "series" || mediaType == "tv" {
		return "tv"
	}
	return "movie"
}

// Trending retrieves this week's trending titles.
func (c *TMDBClient) Trending(ctx context.Context, mediaType string, page int) (*models.CatalogPage, error) {
	mediaType = normalizeMediaType(mediaType)
	key := fmt.Sprintf("tmdb:trending:%s:%d", mediaType, page)
	return c.listing(ctx, key, fmt.Sprintf("/trending/%s/week", mediaType), mediaType, page)
}

// Popular retrieves the popular listing.
func (c *TMDBClient) Popular(ctx context.Context, mediaType string, page int) (*models.CatalogPage, error) {
	mediaType = normalizeMediaType(mediaType)
	key := fmt.Sprintf("tmdb:popular:%s:%d", mediaType, page)
	return c.listing(ctx, key, fmt.Sprintf("/%s/popular", mediaType), mediaType, page)
}

// Search queries TMDB by title. Search responses are not cached.
func (c *TMDBClient) Search(ctx context.Context, query, mediaType string, page int) (*models.CatalogPage, error) {
	mediaType = normalizeMediaType(mediaType)

	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("include_adult", "false")

	data, err := c.makeRequest(ctx, "/search/"+mediaType, params)
	if err != nil {
		return nil, err
	}
	return c.mapListing(ctx, data, mediaType)
}

func (c *TMDBClient) listing(ctx context.Context, cacheKey, path, mediaType string, page int) (*models.CatalogPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))

	data, err := c.cachedRequest(ctx, cacheKey, listingTTL, path, params)
	if err != nil {
		return nil, err
	}
	return c.mapListing(ctx, data, mediaType)
}

func (c *TMDBClient) mapListing(ctx context.Context, data []byte, mediaType string) (*models.CatalogPage, error) {
	var resp tmdbListResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal listing: %w", err)
	}

	gmap := c.genreMap(ctx, mediaType)
	cards := make([]models.Card, 0, len(resp.Results))
	for i := range resp.Results {
		cards = append(cards, c.mapCard(&resp.Results[i], mediaType, gmap))
	}

	return &models.CatalogPage{
		Page:    resp.Page,
		Total:   resp.TotalResults,
		Results: cards,
	}, nil
}

// MovieDetail retrieves a movie title page, trailer included.
func (c *TMDBClient) MovieDetail(ctx context.Context, tmdbID int) (*models.Detail, error) {
	return c.detail(ctx, "movie", tmdbID)
}

// SeriesDetail retrieves a series title page with its season summaries.
func (c *TMDBClient) SeriesDetail(ctx context.Context, tmdbID int) (*models.Detail, error) {
	return c.detail(ctx, "tv", tmdbID)
}

func (c *TMDBClient) detail(ctx context.Context, mediaType string, tmdbID int) (*models.Detail, error) {
	key := fmt.Sprintf("tmdb:%s:%d", mediaType, tmdbID)

	params := url.Values{}
	params.Set("append_to_response", "videos")

	data, err := c.cachedRequest(ctx, key, detailTTL, fmt.Sprintf("/%s/%d", mediaType, tmdbID), params)
	if err != nil {
		return nil, err
	}

	var raw tmdbDetail
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s detail: %w", mediaType, err)
	}
	return c.mapDetail(&raw, mediaType), nil
}

func (c *TMDBClient) mapCard(raw *tmdbListItem, mediaType string, gmap map[int]string) models.Card {
	title := raw.Title
	date := raw.ReleaseDate
	cardType := "movie"
	if mediaType == "tv" {
		title = raw.Name
		date = raw.FirstAirDate
		cardType = "series"
	}
	if title == "" {
		title = "Untitled"
	}

	genres := make([]string, 0, len(raw.GenreIDs))
	for _, id := range raw.GenreIDs {
		if name, ok := gmap[id]; ok && name != "" {
			genres = append(genres, name)
		}
	}

	countries := raw.OriginCountry
	if countries == nil {
		countries = []string{}
	}

	return models.Card{
		ID:        raw.ID,
		Type:      cardType,
		Title:     title,
		Year:      yearOf(date),
		Rating:    roundRating(raw.VoteAverage),
		Poster:    c.imageURL("w342", raw.PosterPath),
		Language:  raw.OriginalLanguage,
		Countries: countries,
		Genres:    genres,
	}
}

func (c *TMDBClient) mapDetail(raw *tmdbDetail, mediaType string) *models.Detail {
	title := raw.Title
	date := raw.ReleaseDate
	detailType := "movie"
	if mediaType == "tv" {
		title = raw.Name
		date = raw.FirstAirDate
		detailType = "series"
	}
	if title == "" {
		title = "Untitled"
	}

	genres := make([]string, 0, len(raw.Genres))
	for _, g := range raw.Genres {
		genres = append(genres, g.Name)
	}

	trailer := ""
	for _, v := range raw.Videos.Results {
		if v.Site == "YouTube" && v.Type == "Trailer" {
			trailer = "https://www.youtube.com/watch?v=" + v.Key
			break
		}
	}

	detail := &models.Detail{
		ID:       raw.ID,
		Type:     detailType,
		Title:    title,
		Overview: raw.Overview,
		Year:     yearOf(date),
		Rating:   roundRating(raw.VoteAverage),
		Genres:   genres,
		Poster:   c.imageURL("w500", raw.PosterPath),
		Backdrop: c.imageURL("original", raw.BackdropPath),
		Runtime:  raw.Runtime,
		Trailer:  trailer,
	}

	if mediaType == "tv" {
		detail.Seasons = raw.NumberOfSeasons
		detail.Episodes = raw.NumberOfEpisodes
		seasons := make([]models.SeasonSummary, 0, len(raw.Seasons))
		for _, s := range raw.Seasons {
			seasons = append(seasons, models.SeasonSummary{
				Season:   s.SeasonNumber,
				Episodes: s.EpisodeCount,
				Name:     s.Name,
			})
		}
		detail.SeasonEpisodes = seasons
	}

	return detail
}

// genreMap returns the id→name genre table for a media type. Failures
// degrade to an empty map so listings still render without genre names.
func (c *TMDBClient) genreMap(ctx context.Context, mediaType string) map[int]string {
	key := "tmdb:genres:" + mediaType

	data, err := c.cachedRequest(ctx, key, genreTTL, fmt.Sprintf("/genre/%s/list", mediaType), url.Values{})
	if err != nil {
		return map[int]string{}
	}

	var list tmdbGenreList
	if err := json.Unmarshal(data, &list); err != nil {
		return map[int]string{}
	}

	gmap := make(map[int]string, len(list.Genres))
	for _, g := range list.Genres {
		gmap[g.ID] = g.Name
	}
	return gmap
}

func (c *TMDBClient) imageURL(size, path string) string {
	if path == "" {
		return ""
	}
	return c.imageBase + "/" + size + path
}

func yearOf(date string) string {
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}

func roundRating(v float64) float64 {
	return math.Round(v*10) / 10
}

// cachedRequest serves the raw response bytes for (endpoint, params) from
// the store when present, fetching and caching on miss.
func (c *TMDBClient) cachedRequest(ctx context.Context, key string, ttl time.Duration, endpoint string, params url.Values) ([]byte, error) {
	if data, ok := c.store.Get(key); ok {
		return data, nil
	}

	data, err := c.makeRequest(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	c.store.Set(key, data, ttl)
	return data, nil
}

func (c *TMDBClient) makeRequest(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	params.Set("api_key", c.apiKey)
	params.Set("language", c.lang)

	baseURL := endpoint
	if !strings.HasPrefix(endpoint, "http") {
		baseURL = c.baseURL + endpoint
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TMDB endpoint %s: %w", baseURL, err)
	}

	q := u.Query()
	for k, vals := range params {
		for _, v := range vals {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request to %s: %w", u.String(), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("TMDB returned status %d for %s", resp.StatusCode, endpoint)
	}

	return data, nil
}
