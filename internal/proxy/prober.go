package proxy

import (
	"net/http"
	"time"
)

const (
	probeTimeout = 6 * time.Second

	// browserUA keeps upstreams that reject obvious bots happy.
	browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"
)

// Prober checks whether a candidate upstream URL responds. It is advisory:
// probing is only consulted in auto provider mode, and a wrong "dead"
// verdict just means the fixed fallback candidate is served instead.
type Prober struct {
	client *http.Client
}

// NewProber creates a Prober with the probe timeout applied.
func NewProber() *Prober {
	return &Prober{
		client: &http.Client{Timeout: probeTimeout},
	}
}

// Alive issues a GET (some upstreams reject HEAD) and reports whether the
// response status is in [200,400). Network errors and timeouts are "not
// alive", never propagated.
func (p *Prober) Alive(url, referer string) bool {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", browserUA)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if referer != "" {
		req.Header.Set("Referer", referer)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 400
}
