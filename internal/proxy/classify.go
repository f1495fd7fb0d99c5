package proxy

import (
	"bytes"
	"strings"
)

// ContentClass is the normalized shape of an upstream body, deciding which
// transformer runs.
type ContentClass int

const (
	ClassOther ContentClass = iota
	ClassHTML
	ClassHLS
	ClassJSON
	ClassMP4
)

const hlsContentType = "application/vnd.apple.mpegurl"

func looksLikeJSON(body []byte) bool {
	trim := bytes.TrimLeft(body, " \t\r\n")
	return len(trim) > 0 && (trim[0] == '{' || trim[0] == '[')
}

func looksLikeHLS(body []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(body, " \t\r\n"), []byte("#EXTM3U"))
}

// Classify normalizes a vague upstream Content-Type using the URL suffix
// and a body sniff, then picks the processing class. It returns the class
// and the Content-Type to emit for passthrough responses.
func Classify(rawURL, declared string, body []byte) (ContentClass, string) {
	normalized := strings.ToLower(strings.TrimSpace(declared))
	if i := strings.Index(normalized, ";"); i >= 0 {
		normalized = strings.TrimSpace(normalized[:i])
	}

	// Upstreams frequently declare nothing or text/plain; guess from the
	// URL and the first bytes.
	if normalized == "" || normalized == "text/plain" {
		lowerURL := strings.ToLower(rawURL)
		switch {
		case strings.Contains(lowerURL, ".m3u8") || looksLikeHLS(body):
			normalized = hlsContentType
		case strings.Contains(lowerURL, ".mp4"):
			normalized = "video/mp4"
		case strings.Contains(lowerURL, ".json") || looksLikeJSON(body):
			normalized = "application/json"
		case bytes.Contains(bytes.ToLower(body), []byte("<html")):
			normalized = "text/html"
		}
	}

	switch {
	case strings.Contains(normalized, "text/html"):
		return ClassHTML, normalized
	case strings.Contains(normalized, hlsContentType) || looksLikeHLS(body):
		return ClassHLS, hlsContentType
	case strings.Contains(normalized, "application/json") || looksLikeJSON(body):
		return ClassJSON, "application/json"
	case strings.Contains(normalized, "video/mp4"):
		return ClassMP4, normalized
	}

	if normalized == "" {
		if declared != "" {
			return ClassOther, declared
		}
		return ClassOther, "application/octet-stream"
	}
	return ClassOther, normalized
}
