package transit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var now = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

const flatResponse = `{"departures": [
  {"id": "b", "route": "12", "direction": "outbound", "destination": "Downtown", "due": "2026-03-01T08:10:00Z"},
  {"id": "a", "route": "12", "direction": "inbound", "destination": "Airport", "due": 1772352300},
  {"id": "gone", "route": "4", "direction": "inbound", "destination": "Zoo", "due": "2026-03-01T07:50:00Z"},
  {"id": "bad", "route": "4", "direction": "inbound", "destination": "Zoo", "due": "soon"}
]}`

func TestParseFlat(t *testing.T) {
	deps, err := Parse([]byte(flatResponse), DefaultPaths())
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	var ids []string
	for _, d := range deps {
		ids = append(ids, d.ID)
	}
	// 1772352300 is 08:05Z
	want := []string{"gone", "a", "b"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCustomPaths(t *testing.T) {
	body := `{"data": {"stops": [
	  {"trip": {"line": "Red", "headsign": "North"}, "dir": 0, "eta_ms": 1772352600000}
	]}}`
	paths := Paths{
		List:        "data.stops",
		Route:       "trip.line",
		Destination: "trip.headsign",
		Direction:   "dir",
		Due:         "eta_ms",
	}
	deps, err := Parse([]byte(body), paths)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(deps) != 1 {
		t.Fatalf("len = %d, want 1", len(deps))
	}
	d := deps[0]
	if d.Route != "Red" || d.Destination != "North" || d.Direction != "0" {
		t.Errorf("departure = %+v", d)
	}
	if want := time.Date(2026, 3, 1, 8, 10, 0, 0, time.UTC); !d.Due.Equal(want) {
		t.Errorf("Due = %v, want %v", d.Due, want)
	}
	if d.ID != "Red/0/1772352600" {
		t.Errorf("fallback ID = %q", d.ID)
	}
}

func TestParseNotArray(t *testing.T) {
	if _, err := Parse([]byte(`{"departures": {}}`), DefaultPaths()); err == nil {
		t.Error("Parse should fail when list path is not an array")
	}
	if _, err := Parse([]byte(`{`), DefaultPaths()); err == nil {
		t.Error("Parse should fail on invalid JSON")
	}
}

func TestLoadDropsDeparted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(flatResponse))
	}))
	defer srv.Close()

	deps, err := New(Config{URL: srv.URL}, srv.Client()).Load(context.Background(), now)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(deps) != 2 || deps[0].ID != "a" {
		t.Errorf("deps = %+v, want [a b]", deps)
	}
	if got := deps[0].In(now); got != 5*time.Minute {
		t.Errorf("In = %v, want 5m", got)
	}
}

func TestLoadNoURL(t *testing.T) {
	if _, err := New(Config{}, nil).Load(context.Background(), now); err == nil {
		t.Error("Load without URL should fail")
	}
}
