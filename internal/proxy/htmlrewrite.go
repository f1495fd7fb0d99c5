package proxy

import (
	stdhtml "html"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// adAttrPattern flags elements whose attributes point at ad networks.
var adAttrPattern = regexp.MustCompile(`(?i)(doubleclick|googlesyndication|adservice|adsystem|banner|\bads\b)`)

// adContainerPattern flags class/id values of typical ad containers.
var adContainerPattern = regexp.MustCompile(`(?i)(ad-container|ad-banner|ad-slot|advert|advertisement|sponsor)`)

// rewrittenAttrs are the resource attributes routed through the proxy.
var rewrittenAttrs = []string{"src", "href", "data-src", "poster"}

// skippedSchemes are attribute values that never leave the page.
var skippedSchemes = []string{"data:", "blob:", "mailto:", "tel:", "javascript:"}

// RewriteHTML strips ad elements from an upstream HTML document, rewrites
// its resource URLs to proxy form, injects a <base> tag for the remaining
// relative URLs and a runtime script that routes late-bound requests
// through the proxy as well. Transformation is best-effort: if the body
// cannot be parsed it is returned unchanged.
func RewriteHTML(htmlBody, upstreamURL, referer string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return htmlBody
	}

	doc.Find("iframe").Each(func(_ int, s *goquery.Selection) {
		if adAttrPattern.MatchString(attrString(s)) {
			s.Remove()
		}
	})

	doc.Find("div").Each(func(_ int, s *goquery.Selection) {
		class, _ := s.Attr("class")
		id, _ := s.Attr("id")
		if adContainerPattern.MatchString(class + " " + id) {
			s.Remove()
		}
	})

	doc.Find("script[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if adAttrPattern.MatchString(src) || strings.Contains(src, "disable-devtool") {
			s.Remove()
		}
	})

	// CSP metas would block the injected helper
	doc.Find("meta[http-equiv]").Each(func(_ int, s *goquery.Selection) {
		if v, _ := s.Attr("http-equiv"); strings.EqualFold(v, "Content-Security-Policy") {
			s.Remove()
		}
	})

	for _, attr := range rewrittenAttrs {
		sel := "[" + attr + "]"
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if goquery.NodeName(s) == "base" {
				return
			}
			value, _ := s.Attr(attr)
			rewritten, drop := rewriteAttrValue(value, upstreamURL, referer)
			if drop {
				s.SetAttr(attr, "")
			} else if rewritten != value {
				s.SetAttr(attr, rewritten)
			}
		})
	}

	head := doc.Find("head").First()
	if head.Length() > 0 {
		if head.Find("base").Length() == 0 {
			baseDir := strings.TrimRight(urlBaseDir(upstreamURL), "/") + "/"
			head.PrependHtml(`<base href="` + stdhtml.EscapeString(baseDir) + `">`)
		}
		// before upstream scripts run
		head.PrependHtml(interceptScript(referer))
	} else if body := doc.Find("body").First(); body.Length() > 0 {
		body.AppendHtml(interceptScript(referer))
	}

	out, err := doc.Html()
	if err != nil {
		return htmlBody
	}
	return out
}

// rewriteAttrValue resolves and proxy-wraps one resource attribute value.
// drop is true when the resolved URL is ad-classified and the attribute
// should be emptied.
func rewriteAttrValue(value, upstreamURL, referer string) (rewritten string, drop bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || trimmed[0] == '#' {
		return value, false
	}
	lower := strings.ToLower(trimmed)
	for _, scheme := range skippedSchemes {
		if strings.HasPrefix(lower, scheme) {
			return value, false
		}
	}
	if isProxyWrapped(trimmed) {
		return value, false
	}

	abs := ResolveReference(trimmed, upstreamURL)
	if IsAdURL(abs) {
		return "", true
	}
	return WrapProxyURL(abs, referer), false
}

// attrString flattens an element's attributes for pattern matching.
func attrString(s *goquery.Selection) string {
	if len(s.Nodes) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, a := range s.Nodes[0].Attr {
		sb.WriteString(a.Key)
		sb.WriteString("=")
		sb.WriteString(a.Val)
		sb.WriteString(" ")
	}
	return sb.String()
}

// interceptScript builds the runtime helper that monkey-patches fetch,
// XMLHttpRequest and the src/href setters of media, script, image, iframe
// and link elements, so URLs assigned after the initial page load are also
// routed through the proxy.
func interceptScript(referer string) string {
	refQuery := ""
	if referer != "" {
		refQuery = "&ref=" + url.QueryEscape(referer)
	}

	var sb strings.Builder
	sb.WriteString("<script>(function(){")
	sb.WriteString("var PROXY='" + ProxyFetchPath + "?url=';")
	sb.WriteString("var REF='" + refQuery + "';")
	sb.WriteString(`
function abs(u){try{return new URL(u, document.baseURI).href;}catch(e){return u;}}
function isWrapped(u){return typeof u==='string' && (u.indexOf(PROXY)===0 || u.indexOf(window.location.origin+PROXY)===0);}
function wrap(u){if(!u)return u; if(isWrapped(u))return u; var a=abs(u); return PROXY+encodeURIComponent(a)+REF;}
if (window.fetch){var _f=window.fetch; window.fetch=function(input, init){try{if(typeof input==='string'){input=wrap(input);}else if(input&&input.url){input=new Request(wrap(input.url), input);}}catch(e){} return _f(input, init);};}
var _o=XMLHttpRequest.prototype.open; XMLHttpRequest.prototype.open=function(m,u){try{if(u){arguments[1]=wrap(u);}}catch(e){} return _o.apply(this, arguments);};
function patch(proto, prop){try{var d=Object.getOwnPropertyDescriptor(proto, prop); if(d&&d.set){Object.defineProperty(proto, prop, {set:function(v){try{d.set.call(this, wrap(v));}catch(e){d.set.call(this, v);}}, get:function(){return d.get.call(this);}});}}catch(e){}}
patch(HTMLMediaElement.prototype,'src');
patch(HTMLScriptElement.prototype,'src');
patch(HTMLImageElement.prototype,'src');
patch(HTMLIFrameElement.prototype,'src');
patch(HTMLLinkElement.prototype,'href');
try{var _sa=Element.prototype.setAttribute; Element.prototype.setAttribute=function(n,v){try{if(typeof v==='string'){var k=String(n||'').toLowerCase(); if(k==='src'||k==='href'){v=wrap(v);}}}catch(e){} return _sa.call(this,n,v);};}catch(e){}
`)
	sb.WriteString("})();</script>")
	return sb.String()
}
