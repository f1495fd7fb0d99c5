package models

// Card is the compact listing shape the frontend renders in grids and
// carousels. Type is "movie" or "series".
type Card struct {
	ID        int      `json:"id"`
	Type      string   `json:"type"`
	Title     string   `json:"title"`
	Year      string   `json:"year,omitempty"`
	Rating    float64  `json:"rating"`
	Poster    string   `json:"poster,omitempty"`
	Language  string   `json:"language,omitempty"`
	Countries []string `json:"countries"`
	Genres    []string `json:"genres"`
}

// SeasonSummary is one season row on a series detail page.
type SeasonSummary struct {
	Season   int    `json:"season"`
	Episodes int    `json:"episodes"`
	Name     string `json:"name,omitempty"`
}

// Detail is the full title page shape. Runtime is movie-only; Seasons,
// Episodes and SeasonEpisodes are series-only.
type Detail struct {
	ID             int             `json:"id"`
	Type           string          `json:"type"`
	Title          string          `json:"title"`
	Overview       string          `json:"overview"`
	Year           string          `json:"year,omitempty"`
	Rating         float64         `json:"rating"`
	Genres         []string        `json:"genres"`
	Poster         string          `json:"poster,omitempty"`
	Backdrop       string          `json:"backdrop,omitempty"`
	Runtime        int             `json:"runtime,omitempty"`
	Seasons        int             `json:"seasons,omitempty"`
	Episodes       int             `json:"episodes,omitempty"`
	SeasonEpisodes []SeasonSummary `json:"seasonEpisodes,omitempty"`
	Trailer        string          `json:"trailer,omitempty"`
}

// CatalogPage is one page of listing results.
type CatalogPage struct {
	Page    int    `json:"page"`
	Total   int    `json:"total"`
	Results []Card `json:"results"`
}
