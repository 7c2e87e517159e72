package ingest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mhansen/ingresslapse"
)

// fakeStore records every SavePage call it receives, so tests can assert on
// exactly what each page flushed.
type fakeStore struct {
	pages []int // number of actions saved per call
	err   error
}

func (f *fakeStore) SavePage(actions []ingresslapse.Action, portals []ingresslapse.Portal) error {
	if f.err != nil {
		return f.err
	}
	f.pages = append(f.pages, len(actions))
	return nil
}

// pagedServer serves a fixed sequence of pages, keyed by call order, and
// records the maxTimestampMs cursor each request asked for.
func pagedServer(t *testing.T, pages [][]string) (*httptest.Server, *[]int64) {
	t.Helper()
	call := 0
	var cursors []int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			MaxTimestampMs int64 `json:"maxTimestampMs"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		cursors = append(cursors, body.MaxTimestampMs)

		var result []json.RawMessage
		if call < len(pages) {
			for _, text := range pages[call] {
				result = append(result, rawEvent(t, call, len(result), text))
			}
		}
		call++

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"result": result})
	}))
	return srv, &cursors
}

func rawEvent(t *testing.T, page, index int, text string) json.RawMessage {
	t.Helper()
	ts := int64(10_000-page*100-index) * 1000
	id := "evt-" + string(rune('a'+page)) + string(rune('0'+index))
	tuple := []any{id, ts, map[string]any{"plext": map[string]any{"text": text, "markup": []any{}}}}
	data, err := json.Marshal(tuple)
	if err != nil {
		t.Fatalf("marshal raw event: %v", err)
	}
	return data
}

func newTestClient(url string) *Client {
	return &Client{HTTPClient: http.DefaultClient, FeedURL: url}
}

func TestRunStopsOnEmptyPage(t *testing.T) {
	srv, _ := pagedServer(t, [][]string{
		{"The system is performing maintenance"},
	})
	defer srv.Close()

	store := &fakeStore{}
	client := newTestClient(srv.URL)
	err := Run(context.Background(), client, store, Options{
		Now: func() time.Time { return time.UnixMilli(10_000_000) },
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(store.pages) != 1 {
		t.Fatalf("expected exactly one page saved before the empty page stopped the run, got %d", len(store.pages))
	}
}

func TestRunStopsBeforeFloor(t *testing.T) {
	srv, cursors := pagedServer(t, [][]string{
		{"The system is performing maintenance"},
		{"The system is performing maintenance"},
	})
	defer srv.Close()

	store := &fakeStore{}
	client := newTestClient(srv.URL)
	err := Run(context.Background(), client, store, Options{
		StopBeforeMs: 10_000_001,
		Now:          func() time.Time { return time.UnixMilli(10_000_000) },
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(*cursors) != 1 {
		t.Fatalf("expected the run to stop after the first page's oldest timestamp fell below the floor, got %d requests", len(*cursors))
	}
}

func TestRunSavesNormalizedActions(t *testing.T) {
	srv, _ := pagedServer(t, [][]string{
		{"Alice captured Alpha"},
	})
	defer srv.Close()

	store := &fakeStore{}
	client := newTestClient(srv.URL)
	_ = Run(context.Background(), client, store, Options{
		Now: func() time.Time { return time.UnixMilli(10_000_000) },
	})
	if len(store.pages) != 1 || store.pages[0] != 1 {
		t.Fatalf("expected one normalized action saved, got %v", store.pages)
	}
}

func TestRunDedupesRepeatedEventID(t *testing.T) {
	call := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var result []json.RawMessage
		if call == 0 {
			tuple := []any{"dup-1", int64(10_000_000), map[string]any{"plext": map[string]any{"text": "Alice captured Alpha", "markup": []any{}}}}
			data, _ := json.Marshal(tuple)
			result = append(result, data, data) // same event id twice in one page
		}
		call++
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"result": result})
	}))
	defer srv.Close()

	store := &fakeStore{}
	client := newTestClient(srv.URL)
	err := Run(context.Background(), client, store, Options{
		Now: func() time.Time { return time.UnixMilli(10_000_000) },
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(store.pages) != 1 || store.pages[0] != 1 {
		t.Fatalf("expected the repeated event id to be normalized only once, got %v", store.pages)
	}
}

func TestRunPropagatesStoreError(t *testing.T) {
	srv, _ := pagedServer(t, [][]string{
		{"Alice captured Alpha"},
	})
	defer srv.Close()

	store := &fakeStore{err: context.DeadlineExceeded}
	client := newTestClient(srv.URL)
	err := Run(context.Background(), client, store, Options{
		Now: func() time.Time { return time.UnixMilli(10_000_000) },
	})
	if err == nil {
		t.Fatal("expected Run to propagate the store error")
	}
}
