package proxy

import (
	stdhtml "html"
	"strings"
)

// wrapperPage hosts the chosen upstream embed. The iframe src points
// straight at the upstream on purpose: providers validate the embedding
// page's referrer, so the wrapper is served from our origin while the
// frame itself stays on theirs.
const wrapperPage = `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <meta http-equiv="X-UA-Compatible" content="IE=edge" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Player</title>
    <style>
      html, body, .frame { margin:0; padding:0; height:100%; width:100%; background:#000; }
      .frame { border:0; display:block; }
    </style>
  </head>
  <body>
    <iframe
      class="frame"
      src="__SRC__"
      allow="autoplay; fullscreen; picture-in-picture; encrypted-media"
      allowfullscreen
    ></iframe>
  </body>
</html>
`

// AliveChecker reports whether a candidate URL responds. Satisfied by
// *Prober.
type AliveChecker interface {
	Alive(url, referer string) bool
}

// EmbedPageBuilder resolves candidates for an embed request and emits the
// wrapper page.
type EmbedPageBuilder struct {
	prober AliveChecker
}

// NewEmbedPageBuilder creates a builder using prober for auto selection.
func NewEmbedPageBuilder(prober AliveChecker) *EmbedPageBuilder {
	return &EmbedPageBuilder{prober: prober}
}

// Build picks the upstream embed URL for req and returns the wrapper HTML.
// In auto mode candidates are probed in priority order and the first alive
// one wins; when none respond the first candidate is used anyway, since
// probing is advisory. A pinned provider selects its first candidate
// without probing.
func (b *EmbedPageBuilder) Build(req EmbedRequest) (string, error) {
	candidates, err := BuildCandidates(req)
	if err != nil {
		return "", err
	}

	chosen := candidates[0]
	if req.Provider == "auto" {
		for _, c := range candidates {
			if b.prober.Alive(c.URL, c.Referer) {
				chosen = c
				break
			}
		}
	}

	return renderWrapper(chosen.URL), nil
}

func renderWrapper(src string) string {
	return strings.Replace(wrapperPage, "__SRC__", stdhtml.EscapeString(src), 1)
}
