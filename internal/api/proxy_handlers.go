package api

import (
	"errors"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/CimbaWatch/cimbawatch/internal/proxy"
)

// passthroughHeaders are relayed from the upstream response on untouched
// bodies so byte-range playback and downloads keep working.
var passthroughHeaders = []string{
	"Content-Range",
	"Accept-Ranges",
	"Content-Length",
	"Content-Disposition",
	"Cache-Control",
}

// ProxyEmbed handles GET /proxy/embed/{type}/{id}. It resolves the
// candidate embeds for the title and serves the wrapper page hosting the
// chosen one.
func (h *Handler) ProxyEmbed(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	q := r.URL.Query()

	season, _ := strconv.Atoi(q.Get("s"))
	episode, _ := strconv.Atoi(q.Get("e"))
	if episode == 0 {
		// anime routes use ep
		episode, _ = strconv.Atoi(q.Get("ep"))
	}

	req := proxy.EmbedRequest{
		Type:     strings.ToLower(vars["type"]),
		ID:       vars["id"],
		Season:   season,
		Episode:  episode,
		Slug:     q.Get("slug"),
		Provider: proxy.NormalizeProvider(q.Get("provider")),
	}

	page, err := h.embedPages.Build(req)
	if err != nil {
		switch {
		case errors.Is(err, proxy.ErrInvalidType):
			http.Error(w, "Invalid type", http.StatusBadRequest)
		case errors.Is(err, proxy.ErrInvalidProvider):
			http.Error(w, "Invalid provider", http.StatusBadRequest)
		case errors.Is(err, proxy.ErrMissingSlug):
			http.Error(w, "Missing anime slug", http.StatusBadRequest)
		default:
			http.Error(w, "Proxy error: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Write([]byte(page))
}

// ProxyFetch handles GET /proxy/fetch?url=&ref=. Ad-classified URLs are
// answered 204 without touching the upstream; everything else is fetched
// with spoofed headers and transformed according to its content class.
func (h *Handler) ProxyFetch(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		http.Error(w, "Missing url", http.StatusBadRequest)
		return
	}

	target, err := url.Parse(rawURL)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") || target.Host == "" {
		http.Error(w, "Invalid url", http.StatusBadRequest)
		return
	}

	if proxy.IsAdURL(rawURL) {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp, err := h.fetcher.Fetch(proxy.FetchRequest{
		URL:         rawURL,
		RefOverride: r.URL.Query().Get("ref"),
		UserAgent:   r.Header.Get("User-Agent"),
		Range:       r.Header.Get("Range"),
		SessionID:   sessionID(r),
	})
	if err != nil {
		http.Error(w, "Proxy fetch error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	class, contentType := proxy.Classify(rawURL, resp.ContentType, resp.Body)

	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Proxy-Upstream-URL", rawURL)

	switch class {
	case proxy.ClassHTML:
		body := proxy.RewriteHTML(string(resp.Body), rawURL, resp.Referer)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(resp.Status)
		w.Write([]byte(body))

	case proxy.ClassHLS:
		body := proxy.RewriteHLS(string(resp.Body), rawURL, resp.Referer)
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(resp.Status)
		w.Write([]byte(body))

	case proxy.ClassJSON:
		body := resp.Body
		if filtered, ok := proxy.FilterServers(resp.Body); ok {
			body = filtered
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(resp.Status)
		w.Write(body)

	default:
		w.Header().Set("Content-Type", contentType)
		for _, name := range passthroughHeaders {
			if v := resp.Header.Get(name); v != "" {
				w.Header().Set(name, v)
			}
		}
		w.WriteHeader(resp.Status)
		w.Write(resp.Body)
	}
}

// sessionID keys the per-client cookie jar: the cw_session cookie when
// present, else the first X-Forwarded-For hop, else the remote address.
func sessionID(r *http.Request) string {
	if c, err := r.Cookie("cw_session"); err == nil && c.Value != "" {
		return c.Value
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "anon"
}
