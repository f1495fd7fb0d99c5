package proxy

import (
	"bufio"
	"net/url"
	"regexp"
	"strings"
)

// ProxyFetchPath is the client-relative path of the generic fetch proxy;
// pages served by the embed wrapper share this origin, so a relative path
// is enough.
const ProxyFetchPath = "/proxy/fetch"

var uriAttrPattern = regexp.MustCompile(`(?i)URI="([^"]+)"`)

// WrapProxyURL rewrites an absolute upstream URL into proxy form, carrying
// the referer hint when one is set.
func WrapProxyURL(absolute, referer string) string {
	wrapped := ProxyFetchPath + "?url=" + url.QueryEscape(absolute)
	if referer != "" {
		wrapped += "&ref=" + url.QueryEscape(referer)
	}
	return wrapped
}

// isProxyWrapped reports whether a value already points at the fetch
// proxy, so rewriting passes stay idempotent.
func isProxyWrapped(value string) bool {
	return strings.HasPrefix(value, ProxyFetchPath+"?") ||
		strings.Contains(value, ProxyFetchPath+"?url=")
}

// RewriteHLS rewrites every URI reference in an m3u8 playlist to route
// through the fetch proxy. Tag and blank lines are kept, with URI="..."
// attributes rewritten in place; segment lines are resolved against the
// playlist URL, dropped entirely when ad-classified, and proxy-wrapped
// otherwise. Output lines are rejoined with "\n".
func RewriteHLS(playlist, upstreamURL, referer string) string {
	var out []string

	scanner := bufio.NewScanner(strings.NewReader(playlist))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			if strings.Contains(line, "URI=") {
				line = uriAttrPattern.ReplaceAllStringFunc(line, func(m string) string {
					ref := uriAttrPattern.FindStringSubmatch(m)[1]
					if isProxyWrapped(ref) {
						return m
					}
					abs := ResolveReference(ref, upstreamURL)
					return `URI="` + WrapProxyURL(abs, referer) + `"`
				})
			}
			out = append(out, line)
			continue
		}

		// media segment or nested playlist reference
		if isProxyWrapped(trimmed) {
			out = append(out, trimmed)
			continue
		}
		abs := ResolveReference(trimmed, upstreamURL)
		if IsAdURL(abs) {
			// ad segment: drop the line, players skip the orphaned
			// #EXTINF above it
			continue
		}
		out = append(out, WrapProxyURL(abs, referer))
	}

	return strings.Join(out, "\n")
}
