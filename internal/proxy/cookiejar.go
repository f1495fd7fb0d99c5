package proxy

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/CimbaWatch/cimbawatch/internal/cache"
)

const jarTTL = 30 * time.Minute

// jarEntry is one stored cookie pair, kept in insertion order so the
// rebuilt Cookie header is stable.
type jarEntry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CookieJar persists upstream cookies per (session, host) key so that
// follow-up proxied requests to the same host can present them. Cookies
// here are best-effort compatibility aids, not a security mechanism.
type CookieJar struct {
	store cache.Store
}

// NewCookieJar creates a CookieJar over the given store.
func NewCookieJar(store cache.Store) *CookieJar {
	return &CookieJar{store: store}
}

func jarKey(sessionID, host string) string {
	return "proxy_cookies:" + sessionID + ":" + host
}

func (j *CookieJar) load(sessionID, host string) []jarEntry {
	data, ok := j.store.Get(jarKey(sessionID, host))
	if !ok {
		return nil
	}
	var entries []jarEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil
	}
	return entries
}

// CookieHeader builds a "name=value; name2=value2" header from the stored
// pairs for the key, skipping empty values. Empty string when the jar is
// empty or expired.
func (j *CookieJar) CookieHeader(sessionID, host string) string {
	entries := j.load(sessionID, host)
	pairs := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Value == "" {
			continue
		}
		pairs = append(pairs, e.Name+"="+e.Value)
	}
	return strings.Join(pairs, "; ")
}

// StoreFromResponse captures every Set-Cookie line in headers into the jar
// for the key, keeping only the name=value pair before the first ";".
// Last write wins per name; a non-empty jar is persisted with a refreshed
// TTL. Malformed lines are ignored.
func (j *CookieJar) StoreFromResponse(sessionID, host string, headers http.Header) {
	setCookies := headers.Values("Set-Cookie")
	if len(setCookies) == 0 {
		return
	}

	entries := j.load(sessionID, host)
	for _, line := range setCookies {
		pair := line
		if i := strings.Index(pair, ";"); i >= 0 {
			pair = pair[:i]
		}
		name, value, found := strings.Cut(strings.TrimSpace(pair), "=")
		if !found || name == "" {
			continue
		}
		entries = upsert(entries, name, value)
	}

	if len(entries) == 0 {
		return
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return
	}
	j.store.Set(jarKey(sessionID, host), data, jarTTL)
}

func upsert(entries []jarEntry, name, value string) []jarEntry {
	for i := range entries {
		if entries[i].Name == name {
			entries[i].Value = value
			return entries
		}
	}
	return append(entries, jarEntry{Name: name, Value: value})
}
