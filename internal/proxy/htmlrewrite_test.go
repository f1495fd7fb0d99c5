package proxy

import (
	"net/url"
	"strings"
	"testing"
)

const testPageURL = "https://embed.su/embed/movie/603"

func TestRewriteHTMLRemovesAdElements(t *testing.T) {
	in := `<html><head></head><body>
<iframe src="https://doubleclick.net/frame"></iframe>
<iframe id="player" src="player.html"></iframe>
<div class="ad-container"><p>buy things</p></div>
<div class="content">real</div>
<script src="https://cdn.googlesyndication.com/tag.js"></script>
<script src="https://cdn.example.com/disable-devtool.min.js"></script>
<script src="app.js"></script>
</body></html>`

	out := RewriteHTML(in, testPageURL, "")

	for _, gone := range []string{"doubleclick.net", "ad-container", "googlesyndication", "disable-devtool"} {
		if strings.Contains(out, gone) {
			t.Errorf("%q survived rewriting", gone)
		}
	}
	if !strings.Contains(out, `id="player"`) {
		t.Error("non-ad iframe removed")
	}
	if !strings.Contains(out, `class="content"`) {
		t.Error("non-ad div removed")
	}
	if !strings.Contains(out, url.QueryEscape("https://embed.su/embed/movie/app.js")) {
		t.Error("non-ad script src not proxy-wrapped")
	}
}

func TestRewriteHTMLStripsCSPMeta(t *testing.T) {
	in := `<html><head>
<meta http-equiv="Content-Security-Policy" content="default-src 'none'">
<meta http-equiv="refresh" content="30">
</head><body></body></html>`

	out := RewriteHTML(in, testPageURL, "")
	if strings.Contains(out, "Content-Security-Policy") {
		t.Error("CSP meta survived")
	}
	if !strings.Contains(out, `http-equiv="refresh"`) {
		t.Error("unrelated meta removed")
	}
}

func TestRewriteHTMLInjectsBase(t *testing.T) {
	out := RewriteHTML(`<html><head><title>t</title></head><body></body></html>`, testPageURL, "")
	if !strings.Contains(out, `<base href="https://embed.su/embed/movie/"`) {
		t.Errorf("base tag missing or wrong:\n%s", out)
	}
}

func TestRewriteHTMLKeepsExistingBase(t *testing.T) {
	out := RewriteHTML(`<html><head><base href="https://other.com/dir/"></head><body></body></html>`, testPageURL, "")
	if strings.Count(out, "<base ") != 1 {
		t.Errorf("want exactly one base tag:\n%s", out)
	}
	if !strings.Contains(out, "https://other.com/dir/") {
		t.Error("existing base replaced")
	}
}

func TestRewriteHTMLRewritesResourceAttributes(t *testing.T) {
	in := `<html><head></head><body>
<img src="poster.jpg">
<img data-src="lazy.jpg">
<video poster="frame.jpg" src="/media/v.mp4"></video>
<a href="#top">top</a>
<img src="data:image/png;base64,AAAA">
<img src="https://ads.example.com/pixel.gif">
</body></html>`

	out := RewriteHTML(in, testPageURL, "https://embed.su/")

	wrapped := func(abs string) string {
		return ProxyFetchPath + "?url=" + url.QueryEscape(abs)
	}
	for _, abs := range []string{
		"https://embed.su/embed/movie/poster.jpg",
		"https://embed.su/embed/movie/lazy.jpg",
		"https://embed.su/embed/movie/frame.jpg",
		"https://embed.su/media/v.mp4",
	} {
		if !strings.Contains(out, wrapped(abs)) {
			t.Errorf("missing proxy-wrapped %q:\n%s", abs, out)
		}
	}

	if !strings.Contains(out, `href="#top"`) {
		t.Error("fragment href altered")
	}
	if !strings.Contains(out, `src="data:image/png;base64,AAAA"`) {
		t.Error("data: URI altered")
	}
	if strings.Contains(out, "ads.example.com") {
		t.Error("ad image URL survived")
	}
	if !strings.Contains(out, `src=""`) {
		t.Error("ad image attribute not emptied")
	}
}

func TestRewriteHTMLInjectsInterceptScript(t *testing.T) {
	out := RewriteHTML(`<html><head></head><body></body></html>`, testPageURL, "https://embed.su/")

	if !strings.Contains(out, "XMLHttpRequest.prototype.open") {
		t.Error("runtime interception script missing")
	}
	if !strings.Contains(out, "var PROXY='"+ProxyFetchPath+"?url='") {
		t.Error("proxy path not embedded in script")
	}
	if !strings.Contains(out, "ref%3D") && !strings.Contains(out, "&ref=") {
		t.Error("referer query missing from script")
	}

	headIdx := strings.Index(out, "<head>")
	scriptIdx := strings.Index(out, "<script>")
	if headIdx == -1 || scriptIdx == -1 || scriptIdx < headIdx {
		t.Error("script not injected inside head")
	}
}

func TestRewriteHTMLIdempotentOnWrappedURLs(t *testing.T) {
	in := `<html><head></head><body><img src="poster.jpg"></body></html>`
	once := RewriteHTML(in, testPageURL, "")

	// run the attribute pass again over the rewritten value
	v, drop := rewriteAttrValue(ProxyFetchPath+"?url="+url.QueryEscape("https://h.com/a.jpg"), testPageURL, "")
	if drop || !strings.HasPrefix(v, ProxyFetchPath+"?url=") || strings.Contains(v, url.QueryEscape(ProxyFetchPath)) {
		t.Errorf("already-wrapped value re-wrapped: %q", v)
	}
	if !strings.Contains(once, url.QueryEscape("https://embed.su/embed/movie/poster.jpg")) {
		t.Error("first pass did not wrap relative src")
	}
}
