package proxy

import (
	"encoding/json"
	"testing"
)

func TestFilterServersDropsAdEntries(t *testing.T) {
	in := []byte(`{"servers":[{"name":"Vidcloud","url":"https://a/1"},{"name":"Ads Server","url":"https://a/2"},{"name":"MegaUp","url":"https://a/3"}],"title":"x"}`)

	out, ok := FilterServers(in)
	if !ok {
		t.Fatal("ok = false for valid JSON")
	}

	var payload struct {
		Servers []struct {
			Name string `json:"name"`
		} `json:"servers"`
		Title string `json:"title"`
	}
	if err := json.Unmarshal(out, &payload); err != nil {
		t.Fatalf("output not JSON: %v", err)
	}
	if len(payload.Servers) != 2 {
		t.Fatalf("got %d servers, want 2: %s", len(payload.Servers), out)
	}
	if payload.Servers[0].Name != "Vidcloud" || payload.Servers[1].Name != "MegaUp" {
		t.Errorf("wrong servers kept: %s", out)
	}
	if payload.Title != "x" {
		t.Error("sibling fields lost")
	}
}

func TestFilterServersKeepsOtherShapes(t *testing.T) {
	for _, in := range []string{
		`{"status":"ok"}`,
		`{"servers":"not-a-list"}`,
		`[1,2,3]`,
		`{"servers":[{"url":"https://a/1"}]}`,
	} {
		out, ok := FilterServers([]byte(in))
		if !ok {
			t.Errorf("ok = false for %q", in)
			continue
		}
		var before, after interface{}
		json.Unmarshal([]byte(in), &before)
		json.Unmarshal(out, &after)
		b1, _ := json.Marshal(before)
		b2, _ := json.Marshal(after)
		if string(b1) != string(b2) {
			t.Errorf("payload %q changed to %s", in, out)
		}
	}
}

func TestFilterServersInvalidJSON(t *testing.T) {
	if _, ok := FilterServers([]byte("<html>not json</html>")); ok {
		t.Error("ok = true for invalid JSON")
	}
}
