package proxy

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		name      string
		url       string
		declared  string
		body      string
		wantClass ContentClass
		wantCT    string
	}{
		{"declared html", "https://h.com/p", "text/html; charset=utf-8", "<div>", ClassHTML, "text/html"},
		{"sniffed html", "https://h.com/p", "", "\n<HTML><body>", ClassHTML, "text/html"},
		{"declared hls", "https://h.com/p", "application/vnd.apple.mpegurl", "#EXTM3U\n", ClassHLS, hlsContentType},
		{"body hls with blank type", "https://h.com/playlist", "", "  #EXTM3U\n#EXTINF:4,\nseg.ts", ClassHLS, hlsContentType},
		{"url hls with text/plain", "https://h.com/master.m3u8?tok=1", "text/plain", "", ClassHLS, hlsContentType},
		{"hls sniff beats declared octet", "https://h.com/p", "application/octet-stream", "#EXTM3U\n", ClassHLS, hlsContentType},
		{"url mp4", "https://h.com/movie.mp4", "", "", ClassMP4, "video/mp4"},
		{"declared json", "https://h.com/api", "application/json", `{"a":1}`, ClassJSON, "application/json"},
		{"sniffed json object", "https://h.com/api", "text/plain", ` {"servers":[]}`, ClassJSON, "application/json"},
		{"sniffed json array", "https://h.com/list.json", "", `[1,2]`, ClassJSON, "application/json"},
		{"image passthrough", "https://h.com/a.png", "image/png", "\x89PNG", ClassOther, "image/png"},
		{"nothing known", "https://h.com/blob", "", "\x00\x01", ClassOther, "application/octet-stream"},
	}
	for _, tc := range cases {
		gotClass, gotCT := Classify(tc.url, tc.declared, []byte(tc.body))
		if gotClass != tc.wantClass || gotCT != tc.wantCT {
			t.Errorf("%s: Classify = (%v, %q), want (%v, %q)", tc.name, gotClass, gotCT, tc.wantClass, tc.wantCT)
		}
	}
}
