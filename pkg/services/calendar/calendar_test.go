package calendar

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"gitlab.com/tinyland/lab/infoboard/pkg/services"
)

const sampleICS = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//infoboard//test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:standup\r\n" +
	"DTSTAMP:20260301T080000Z\r\n" +
	"DTSTART:20260302T090000Z\r\n" +
	"DTEND:20260302T091500Z\r\n" +
	"SUMMARY:Standup\r\n" +
	"LOCATION:Room 4\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:retro\r\n" +
	"DTSTAMP:20260301T080000Z\r\n" +
	"DTSTART:20260301T090000Z\r\n" +
	"DTEND:20260301T100000Z\r\n" +
	"SUMMARY:Retro\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:holiday\r\n" +
	"DTSTAMP:20260301T080000Z\r\n" +
	"DTSTART;VALUE=DATE:20260303\r\n" +
	"DTEND;VALUE=DATE:20260304\r\n" +
	"SUMMARY:Holiday\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:far\r\n" +
	"DTSTAMP:20260301T080000Z\r\n" +
	"DTSTART:20260401T090000Z\r\n" +
	"DTEND:20260401T100000Z\r\n" +
	"SUMMARY:Far future\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func summaries(events []Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Summary
	}
	return out
}

// --- Parse Tests ---

func TestParse(t *testing.T) {
	events, err := Parse([]byte(sampleICS), "test.ics")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("len(events) = %d, want 4", len(events))
	}

	standup := events[0]
	if standup.UID != "standup" || standup.Location != "Room 4" || standup.Source != "test.ics" {
		t.Errorf("standup = %+v", standup)
	}
	if got := standup.End.Sub(standup.Start); got != 15*time.Minute {
		t.Errorf("standup duration = %v, want 15m", got)
	}

	holiday := events[2]
	if !holiday.AllDay {
		t.Error("holiday.AllDay = false, want true")
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := Parse([]byte("not a calendar\r\n"), "bad.ics"); err == nil {
		t.Error("Parse of non-calendar input should fail")
	}
}

func TestEventKey(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.FixedZone("PST", -8*3600))
	e := Event{UID: "abc", Start: start}
	if got, want := e.Key(), "abc@2026-03-02T17:00:00Z"; got != want {
		t.Errorf("Key() = %q, want %q", got, want)
	}
}

func TestWindow(t *testing.T) {
	events, _ := Parse([]byte(sampleICS), "test.ics")
	got := summaries(Window(events, now, 7*24*time.Hour))
	want := []string{"Standup", "Holiday"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Window mismatch (-want +got):\n%s", diff)
	}
}

func TestWindowKeepsOngoing(t *testing.T) {
	e := Event{Summary: "now", Start: now.Add(-time.Hour), End: now.Add(time.Hour)}
	if got := Window([]Event{e}, now, time.Hour); len(got) != 1 {
		t.Errorf("ongoing event dropped")
	}
	if !e.Ongoing(now) {
		t.Error("Ongoing = false, want true")
	}
}

// --- Load Tests ---

func TestLoadFileAndURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "local.ics")
	if err := os.WriteFile(path, []byte(sampleICS), 0o644); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/calendar")
		_, _ = w.Write([]byte(sampleICS))
	}))
	defer srv.Close()

	s := New(Config{Sources: []string{path, srv.URL}}, srv.Client())
	events, err := s.Load(context.Background(), now)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	want := []string{"Standup", "Standup", "Holiday", "Holiday"}
	if diff := cmp.Diff(want, summaries(events)); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}
	if files := s.LocalFiles(); len(files) != 1 || files[0] != path {
		t.Errorf("LocalFiles = %v, want [%s]", files, path)
	}
}

func TestLoadPartialFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ok.ics")
	_ = os.WriteFile(path, []byte(sampleICS), 0o644)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	s := New(Config{Sources: []string{srv.URL, path}}, srv.Client())
	events, err := s.Load(context.Background(), now)
	var he *services.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("error = %v, want joined *HTTPError", err)
	}
	if len(events) != 2 {
		t.Errorf("len(events) = %d, want 2 from the healthy source", len(events))
	}
}

func TestLoadAllFail(t *testing.T) {
	s := New(Config{Sources: []string{filepath.Join(t.TempDir(), "missing.ics")}}, nil)
	events, err := s.Load(context.Background(), now)
	if err == nil {
		t.Fatal("expected error")
	}
	if events != nil {
		t.Errorf("events = %v, want nil", events)
	}
}

// --- Watcher Tests ---

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cal.ics")
	_ = os.WriteFile(path, []byte(sampleICS), 0o644)

	var calls atomic.Int32
	changed := make(chan struct{}, 4)
	w, err := NewWatcher([]string{path}, func() {
		calls.Add(1)
		changed <- struct{}{}
	}, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	w.SetDebounce(50 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// unrelated files in the same directory are ignored
	_ = os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644)
	for i := 0; i < 3; i++ {
		_ = os.WriteFile(path, []byte(sampleICS), 0o644)
	}

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("onChange not called after write")
	}
	time.Sleep(150 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("onChange called %d times, want 1 (debounced)", got)
	}

	if err := w.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	select {
	case err := <-done:
		if !errors.Is(err, ErrWatcherClosed) && !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Close")
	}
}

func TestWatcherMissingDir(t *testing.T) {
	_, err := NewWatcher([]string{"/definitely/not/here/cal.ics"}, func() {}, nil)
	if err == nil {
		t.Fatal("NewWatcher on missing directory should fail")
	}
}
