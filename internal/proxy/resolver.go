package proxy

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
)

// Validation errors surfaced to the caller as 400s.
var (
	ErrInvalidType     = errors.New("invalid type")
	ErrInvalidProvider = errors.New("invalid provider")
	ErrMissingSlug     = errors.New("missing anime slug")
)

// EmbedRequest describes one inbound embed request. Season/Episode of 0
// mean "not supplied" and default to 1 where the provider needs them.
type EmbedRequest struct {
	Type     string // movie, tv or anime
	ID       string
	Season   int
	Episode  int
	Slug     string // anime only; falls back to ID
	Provider string // normalized provider key or "auto"
}

// Candidate is one guessed upstream embed URL, tried in priority order.
type Candidate struct {
	Provider string
	URL      string
	Referer  string
}

// refererHints maps candidate provider keys to the Referer the upstream
// expects to see.
var refererHints = map[string]string{
	"embed_su": "https://embed.su/",
	"2embed":   "https://www.2embed.cc/",
	"vidapi":   "https://vidapi.xyz/",
	"vidapi_m": "https://vidapi.xyz/",
}

// NormalizeProvider lowers the raw provider value and folds "." and "-"
// into "_", so "embed.su", "embed-su" and "EMBED_SU" all select embed_su.
// An empty value means "auto".
func NormalizeProvider(raw string) string {
	if raw == "" {
		return "auto"
	}
	p := strings.ToLower(raw)
	p = strings.ReplaceAll(p, ".", "_")
	p = strings.ReplaceAll(p, "-", "_")
	return p
}

func validProvider(p string) bool {
	switch p {
	case "auto", "embed_su", "2embed", "vidapi":
		return true
	}
	return false
}

// BuildCandidates returns the ordered candidate URLs for req, filtered to
// the requested provider when it is not "auto". Requesting vidapi keeps
// every vidapi-prefixed candidate, so movies get both the multi and single
// variants in priority order. A provider the media type does not support
// yields ErrInvalidProvider before any network activity.
func BuildCandidates(req EmbedRequest) ([]Candidate, error) {
	if !validProvider(req.Provider) {
		return nil, ErrInvalidProvider
	}

	season := req.Season
	if season == 0 {
		season = 1
	}
	episode := req.Episode
	if episode == 0 {
		episode = 1
	}

	var candidates []Candidate
	switch req.Type {
	case "movie":
		candidates = []Candidate{
			{Provider: "embed_su", URL: "https://embed.su/embed/movie/" + req.ID},
			{Provider: "2embed", URL: "https://www.2embed.cc/embed/" + req.ID},
			// vidapi prefers the multi-server variant, single as fallback.
			{Provider: "vidapi_m", URL: "https://vidapi.xyz/embedmulti/movie/" + req.ID},
			{Provider: "vidapi", URL: "https://vidapi.xyz/embed/movie/" + req.ID},
		}
	case "tv":
		candidates = []Candidate{
			{Provider: "embed_su", URL: fmt.Sprintf("https://embed.su/embed/tv/%s/%d/%d", req.ID, season, episode)},
			{Provider: "2embed", URL: fmt.Sprintf("https://www.2embed.cc/embedtv/%s?s=%d&e=%d", req.ID, season, episode)},
			{Provider: "vidapi", URL: fmt.Sprintf("https://vidapi.xyz/embed/tv/%s?s=%d&e=%d", req.ID, season, episode)},
		}
	case "anime":
		slug := strings.TrimSpace(req.Slug)
		if slug == "" {
			slug = strings.TrimSpace(req.ID)
		}
		if slug == "" {
			return nil, ErrMissingSlug
		}
		slugEnc := url.PathEscape(slug)
		// embed.su has no anime catalog; only these two work.
		candidates = []Candidate{
			{Provider: "vidapi", URL: fmt.Sprintf("https://vidapi.xyz/embed/anime/%s-%d", slugEnc, episode)},
			{Provider: "2embed", URL: fmt.Sprintf("https://www.2embed.cc/embedanime/%s-episode-%d", slugEnc, episode)},
		}
	default:
		return nil, ErrInvalidType
	}

	for i := range candidates {
		candidates[i].Referer = refererHints[candidates[i].Provider]
	}

	if req.Provider != "auto" {
		filtered := candidates[:0]
		for _, c := range candidates {
			if req.Provider == "vidapi" {
				if strings.HasPrefix(c.Provider, "vidapi") {
					filtered = append(filtered, c)
				}
			} else if c.Provider == req.Provider {
				filtered = append(filtered, c)
			}
		}
		if len(filtered) == 0 {
			// e.g. embed_su requested for anime
			return nil, ErrInvalidProvider
		}
		candidates = filtered
	}

	return candidates, nil
}

var absoluteURLPattern = regexp.MustCompile(`(?i)^https?://`)

// ResolveReference resolves a URL reference found inside a document
// against that document's URL. Fragment-only and empty values pass through
// unchanged; scheme-relative values inherit the document's scheme;
// root-relative values attach to the document's origin; everything else is
// joined to the document's directory.
func ResolveReference(value, documentURL string) string {
	if value == "" || value[0] == '#' {
		return value
	}

	scheme := "https"
	if u, err := url.Parse(documentURL); err == nil && u.Scheme != "" {
		scheme = u.Scheme
	}

	if strings.HasPrefix(value, "//") {
		return scheme + ":" + value
	}
	if absoluteURLPattern.MatchString(value) {
		return value
	}
	if value[0] == '/' {
		return strings.TrimRight(urlOrigin(documentURL), "/") + value
	}
	return strings.TrimRight(urlBaseDir(documentURL), "/") + "/" + value
}

// urlOrigin returns scheme://host[:port] for u, or "" if u has no scheme
// or host.
func urlOrigin(u string) string {
	parsed, err := url.Parse(u)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}

// urlBaseDir returns the origin plus the directory of u's path, computed
// by dropping the last path segment.
func urlBaseDir(u string) string {
	origin := urlOrigin(u)
	parsed, err := url.Parse(u)
	if err != nil {
		return origin
	}
	p := parsed.Path
	if p == "" {
		p = "/"
	}
	dir := strings.TrimRight(path.Dir(p), "/")
	if dir == "." {
		dir = ""
	}
	if dir == "" {
		return origin
	}
	return strings.TrimRight(origin, "/") + "/" + strings.TrimLeft(dir, "/")
}
