package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

const rssFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Local Paper</title>
  <link>https://paper.example</link>
  <item>
    <title>Bridge reopens</title>
    <link>https://paper.example/bridge</link>
    <guid>bridge-1</guid>
    <pubDate>Sun, 01 Mar 2026 09:00:00 +0000</pubDate>
  </item>
  <item>
    <title>Council vote</title>
    <link>https://paper.example/council</link>
    <pubDate>Sun, 01 Mar 2026 11:00:00 +0000</pubDate>
  </item>
</channel>
</rss>`

const atomFeed = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Tech Blog</title>
  <id>urn:blog</id>
  <updated>2026-03-01T10:00:00Z</updated>
  <entry>
    <title>Release notes</title>
    <id>urn:blog:release</id>
    <link href="https://blog.example/release"/>
    <updated>2026-03-01T10:00:00Z</updated>
  </entry>
</feed>`

func titles(hs []Headline) []string {
	out := make([]string, len(hs))
	for i, h := range hs {
		out[i] = h.Title
	}
	return out
}

func TestParseRSS(t *testing.T) {
	hs, err := Parse([]byte(rssFeed), now)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if diff := cmp.Diff([]string{"Council vote", "Bridge reopens"}, titles(hs)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if hs[0].Source != "Local Paper" {
		t.Errorf("Source = %q", hs[0].Source)
	}
	if hs[1].ID != "bridge-1" {
		t.Errorf("ID = %q, want bridge-1", hs[1].ID)
	}
	if hs[0].ID == "" {
		t.Error("missing GUID should produce a digest ID")
	}
}

func TestParseDigestStable(t *testing.T) {
	a, _ := Parse([]byte(rssFeed), now)
	b, _ := Parse([]byte(rssFeed), now.Add(time.Hour))
	if a[0].ID != b[0].ID {
		t.Errorf("digest IDs differ across parses: %q vs %q", a[0].ID, b[0].ID)
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := Parse([]byte("plain text"), now); err == nil {
		t.Error("Parse(plain text) should fail")
	}
}

func TestLoadMergesFeeds(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rss", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(rssFeed)) })
	mux.HandleFunc("/atom", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(atomFeed)) })
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := New(Config{Feeds: []string{srv.URL + "/rss", srv.URL + "/atom", srv.URL + "/missing"}}, srv.Client())
	hs, err := s.Load(context.Background(), now)
	if err == nil {
		t.Error("expected joined error for the missing feed")
	}
	want := []string{"Council vote", "Release notes", "Bridge reopens"}
	if diff := cmp.Diff(want, titles(hs)); diff != "" {
		t.Errorf("merge mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadPerFeedCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(rssFeed))
	}))
	defer srv.Close()

	hs, err := New(Config{Feeds: []string{srv.URL}, PerFeed: 1}, srv.Client()).Load(context.Background(), now)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(hs) != 1 || hs[0].Title != "Council vote" {
		t.Errorf("headlines = %v, want only the newest", titles(hs))
	}
}
