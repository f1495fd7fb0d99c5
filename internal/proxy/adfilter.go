package proxy

import "regexp"

// adPatterns is the process-wide ad heuristic for URLs. It is applied by
// the fetch handler, the HTML rewriter and the playlist rewriter, so all
// three call sites share one table. Best-effort filtering, not a security
// boundary.
var adPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)doubleclick`),
	regexp.MustCompile(`(?i)googlesyndication`),
	regexp.MustCompile(`(?i)adservice`),
	regexp.MustCompile(`(?i)adsystem`),
	regexp.MustCompile(`(?i)banner`),
	regexp.MustCompile(`(?i)(^|\.|//)ads\.`),
	regexp.MustCompile(`(?i)(^|/)ads(/|$)`),
}

// adNamePattern is the looser variant applied to bare server names in JSON
// payloads, where the host/path anchors above make no sense.
var adNamePattern = regexp.MustCompile(`(?i)ads`)

// IsAdURL reports whether url matches one of the static ad patterns.
// First match wins; the patterns are order-independent.
func IsAdURL(url string) bool {
	for _, p := range adPatterns {
		if p.MatchString(url) {
			return true
		}
	}
	return false
}

// IsAdName reports whether a server display name looks like an ad entry.
func IsAdName(name string) bool {
	return adNamePattern.MatchString(name)
}
