package proxy

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const fetchTimeout = 15 * time.Second

// ErrUpstreamUnreachable wraps network-level fetch failures; the endpoint
// boundary converts it to a 500.
var ErrUpstreamUnreachable = errors.New("upstream unreachable")

// refererMap maps known upstream hosts to the Referer they expect. Checked
// in order with a substring match on the target host.
var refererMap = []struct {
	domain  string
	referer string
}{
	{"embed.su", "https://embed.su/"},
	{"2embed.cc", "https://www.2embed.cc/"},
	{"www.2embed.cc", "https://www.2embed.cc/"},
	{"vidapi.xyz", "https://vidapi.xyz/"},
	{"www.vidapi.xyz", "https://vidapi.xyz/"},
	{"2anime.xyz", "https://2anime.xyz/"},
}

// RefererFor picks the Referer for a target URL: an explicit override
// always wins, then the static host table, then a synthesized
// "https://{host}/".
func RefererFor(rawURL, override string) string {
	if override != "" {
		return override
	}
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Host
	}
	if host != "" {
		for _, m := range refererMap {
			if strings.Contains(host, m.domain) {
				return m.referer
			}
		}
		return "https://" + host + "/"
	}
	return "https://embed.su/"
}

// FetchRequest carries the inbound request pieces the fetcher spoofs or
// forwards upstream.
type FetchRequest struct {
	URL         string
	RefOverride string
	UserAgent   string
	Range       string
	SessionID   string
}

// UpstreamResponse is the transient result of one upstream fetch.
type UpstreamResponse struct {
	Status      int
	Header      http.Header
	Body        []byte
	ContentType string // declared Content-Type, may be empty or vague
	Referer     string // the Referer that was sent upstream
}

// Fetcher performs upstream requests with spoofed headers and session
// cookie handling.
type Fetcher struct {
	client *http.Client
	jar    *CookieJar
}

// NewFetcher creates a Fetcher backed by jar.
func NewFetcher(jar *CookieJar) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: fetchTimeout},
		jar:    jar,
	}
}

// Fetch requests req.URL with browser-like headers, the host-appropriate
// Referer/Origin pair and any cookies stored for (session, host). Set-Cookie
// headers on the response are captured into the jar before returning.
// Non-2xx statuses are returned, not treated as errors.
func (f *Fetcher) Fetch(req FetchRequest) (*UpstreamResponse, error) {
	target, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnreachable, err)
	}
	host := target.Host
	referer := RefererFor(req.URL, req.RefOverride)

	httpReq, err := http.NewRequest(http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnreachable, err)
	}

	ua := req.UserAgent
	if ua == "" {
		ua = browserUA
	}
	httpReq.Header.Set("User-Agent", ua)
	httpReq.Header.Set("Accept", "text/html,application/json,application/vnd.apple.mpegurl;q=0.9,*/*;q=0.8")
	httpReq.Header.Set("Referer", referer)
	httpReq.Header.Set("Origin", strings.TrimRight(urlOrigin(referer), "/"))
	// identity so text bodies can be rewritten without decompression
	httpReq.Header.Set("Accept-Encoding", "identity")

	// forward Range verbatim so byte-range media stays seekable
	if req.Range != "" {
		httpReq.Header.Set("Range", req.Range)
	}

	if cookie := f.jar.CookieHeader(req.SessionID, host); cookie != "" {
		httpReq.Header.Set("Cookie", cookie)
	}

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnreachable, err)
	}
	defer resp.Body.Close()

	f.jar.StoreFromResponse(req.SessionID, host, resp.Header)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnreachable, err)
	}

	return &UpstreamResponse{
		Status:      resp.StatusCode,
		Header:      resp.Header,
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		Referer:     referer,
	}, nil
}
