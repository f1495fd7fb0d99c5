package proxy

import (
	"errors"
	"testing"
)

func candidateURLs(cs []Candidate) []string {
	urls := make([]string, len(cs))
	for i, c := range cs {
		urls[i] = c.URL
	}
	return urls
}

func TestBuildCandidatesMovieAuto(t *testing.T) {
	cs, err := BuildCandidates(EmbedRequest{Type: "movie", ID: "603", Provider: "auto"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"https://embed.su/embed/movie/603",
		"https://www.2embed.cc/embed/603",
		"https://vidapi.xyz/embedmulti/movie/603",
		"https://vidapi.xyz/embed/movie/603",
	}
	got := candidateURLs(cs)
	if len(got) != len(want) {
		t.Fatalf("got %d candidates, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("candidate %d = %q, want %q", i, got[i], want[i])
		}
	}
	if cs[0].Referer != "https://embed.su/" {
		t.Errorf("embed_su referer = %q", cs[0].Referer)
	}
}

func TestBuildCandidatesMovieVidapiKeepsBothVariants(t *testing.T) {
	cs, err := BuildCandidates(EmbedRequest{Type: "movie", ID: "603", Provider: "vidapi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cs) != 2 {
		t.Fatalf("got %d candidates, want 2: %v", len(cs), candidateURLs(cs))
	}
	if cs[0].Provider != "vidapi_m" || cs[1].Provider != "vidapi" {
		t.Errorf("order = %s, %s; want vidapi_m, vidapi", cs[0].Provider, cs[1].Provider)
	}
}

func TestBuildCandidatesTV(t *testing.T) {
	cs, err := BuildCandidates(EmbedRequest{Type: "tv", ID: "100", Season: 2, Episode: 5, Provider: "2embed"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cs) != 1 {
		t.Fatalf("got %d candidates, want 1", len(cs))
	}
	if cs[0].URL != "https://www.2embed.cc/embedtv/100?s=2&e=5" {
		t.Errorf("url = %q", cs[0].URL)
	}
}

func TestBuildCandidatesTVDefaultsSeasonEpisode(t *testing.T) {
	cs, err := BuildCandidates(EmbedRequest{Type: "tv", ID: "100", Provider: "auto"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs[0].URL != "https://embed.su/embed/tv/100/1/1" {
		t.Errorf("url = %q, want season/episode defaulted to 1", cs[0].URL)
	}
}

func TestBuildCandidatesAnime(t *testing.T) {
	cs, err := BuildCandidates(EmbedRequest{Type: "anime", ID: "42", Slug: "one-piece", Episode: 3, Provider: "auto"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{
		"https://vidapi.xyz/embed/anime/one-piece-3",
		"https://www.2embed.cc/embedanime/one-piece-episode-3",
	}
	got := candidateURLs(cs)
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("candidates = %v, want %v", got, want)
	}
}

func TestBuildCandidatesAnimeSlugFallsBackToID(t *testing.T) {
	cs, err := BuildCandidates(EmbedRequest{Type: "anime", ID: "naruto", Provider: "vidapi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs[0].URL != "https://vidapi.xyz/embed/anime/naruto-1" {
		t.Errorf("url = %q", cs[0].URL)
	}
}

func TestBuildCandidatesErrors(t *testing.T) {
	cases := []struct {
		name string
		req  EmbedRequest
		want error
	}{
		{"invalid type", EmbedRequest{Type: "book", ID: "1", Provider: "auto"}, ErrInvalidType},
		{"unknown provider", EmbedRequest{Type: "movie", ID: "1", Provider: "bogus"}, ErrInvalidProvider},
		{"embed_su unsupported for anime", EmbedRequest{Type: "anime", ID: "x", Slug: "x", Provider: "embed_su"}, ErrInvalidProvider},
		{"missing anime slug", EmbedRequest{Type: "anime", ID: "  ", Provider: "auto"}, ErrMissingSlug},
	}
	for _, tc := range cases {
		if _, err := BuildCandidates(tc.req); !errors.Is(err, tc.want) {
			t.Errorf("%s: err = %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestNormalizeProvider(t *testing.T) {
	cases := map[string]string{
		"":         "auto",
		"auto":     "auto",
		"embed.su": "embed_su",
		"EMBED-SU": "embed_su",
		"2embed":   "2embed",
		"VidAPI":   "vidapi",
	}
	for in, want := range cases {
		if got := NormalizeProvider(in); got != want {
			t.Errorf("NormalizeProvider(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveReference(t *testing.T) {
	cases := []struct {
		ref, doc, want string
	}{
		{"/a/b.ts", "https://h.com/x/y/index.m3u8", "https://h.com/a/b.ts"},
		{"seg1.ts", "https://h.com/x/y/index.m3u8", "https://h.com/x/y/seg1.ts"},
		{"//cdn.h.com/z.ts", "https://h.com/x/index.m3u8", "https://cdn.h.com/z.ts"},
		{"//cdn.h.com/z.ts", "http://h.com/x/index.m3u8", "http://cdn.h.com/z.ts"},
		{"https://other.com/v.mp4", "https://h.com/x/index.m3u8", "https://other.com/v.mp4"},
		{"HTTP://other.com/v.mp4", "https://h.com/x/index.m3u8", "HTTP://other.com/v.mp4"},
		{"#fragment", "https://h.com/page.html", "#fragment"},
		{"", "https://h.com/page.html", ""},
		{"seg.ts", "https://h.com/index.m3u8", "https://h.com/seg.ts"},
	}
	for _, tc := range cases {
		if got := ResolveReference(tc.ref, tc.doc); got != tc.want {
			t.Errorf("ResolveReference(%q, %q) = %q, want %q", tc.ref, tc.doc, got, tc.want)
		}
	}
}
