package supabase

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/heartmarshall/cardgen/internal/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakePostgREST stores rows by note_id and serves the two endpoints the
// client uses: POST (merge-duplicates upsert) and GET with note_id=eq.<id>.
type fakePostgREST struct {
	mu   sync.Mutex
	rows map[string]Row
}

func newFakePostgREST() *fakePostgREST {
	return &fakePostgREST{rows: make(map[string]Row)}
}

func (f *fakePostgREST) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/rest/v1/ai_card_content") {
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("apikey") == "" || !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		f.mu.Lock()
		defer f.mu.Unlock()

		switch r.Method {
		case http.MethodPost:
			if got := r.Header.Get("Prefer"); got != "resolution=merge-duplicates" {
				t.Errorf("Prefer = %q", got)
			}
			var row Row
			if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			f.rows[row.NoteID] = row
			w.WriteHeader(http.StatusCreated)
		case http.MethodGet:
			filter := r.URL.Query().Get("note_id")
			id := strings.TrimPrefix(filter, "eq.")
			out := []Row{}
			if row, ok := f.rows[id]; ok {
				out = append(out, row)
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(out)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

func TestClient_UpsertThenFetch(t *testing.T) {
	t.Parallel()

	fake := newFakePostgREST()
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	c := NewClient(srv.URL, "anon-key", "", newTestLogger())
	ctx := context.Background()

	rec := domain.MirrorRecord{
		NoteID:     "note-1",
		DeckName:   "Spanish::Verbs",
		Front:      "hablar",
		AIContent:  "<p>to speak</p>",
		ModelUsed:  "gpt-4o",
		PromptUsed: "default prompt",
	}
	if err := c.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	row, err := c.Fetch(ctx, "note-1")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if row == nil {
		t.Fatal("Fetch() = nil, want stored row")
	}
	if row.Front != "hablar" || row.AIContent != "<p>to speak</p>" || row.ModelUsed != "gpt-4o" {
		t.Errorf("Fetch() = %+v", row)
	}
}

func TestClient_UpsertIsIdempotentPerNoteID(t *testing.T) {
	t.Parallel()

	fake := newFakePostgREST()
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	c := NewClient(srv.URL, "anon-key", "", newTestLogger())
	ctx := context.Background()

	first := domain.MirrorRecord{NoteID: "note-7", Front: "old", AIContent: "<p>v1</p>"}
	second := domain.MirrorRecord{NoteID: "note-7", Front: "new", AIContent: "<p>v2</p>"}
	if err := c.Upsert(ctx, first); err != nil {
		t.Fatalf("first Upsert() error = %v", err)
	}
	if err := c.Upsert(ctx, second); err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}

	fake.mu.Lock()
	stored := len(fake.rows)
	fake.mu.Unlock()
	if stored != 1 {
		t.Fatalf("stored rows = %d, want 1 logical row", stored)
	}

	row, err := c.Fetch(ctx, "note-7")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if row == nil || row.AIContent != "<p>v2</p>" {
		t.Errorf("Fetch() = %+v, want latest values", row)
	}
}

func TestClient_FetchMissingReturnsNil(t *testing.T) {
	t.Parallel()

	fake := newFakePostgREST()
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	c := NewClient(srv.URL, "anon-key", "", newTestLogger())
	row, err := c.Fetch(context.Background(), "absent")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if row != nil {
		t.Errorf("Fetch() = %+v, want nil", row)
	}
}

func TestClient_DisabledSkipsNetwork(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	tests := []struct {
		name string
		url  string
		key  string
	}{
		{name: "no url", url: "", key: "anon-key"},
		{name: "no key", url: srv.URL, key: ""},
		{name: "neither", url: "", key: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(tt.url, tt.key, "", newTestLogger())
			if c.Enabled() {
				t.Error("Enabled() = true, want false")
			}
			if err := c.Upsert(context.Background(), domain.MirrorRecord{NoteID: "x"}); err != nil {
				t.Errorf("Upsert() error = %v, want silent no-op", err)
			}
			row, err := c.Fetch(context.Background(), "x")
			if err != nil || row != nil {
				t.Errorf("Fetch() = %+v, %v, want nil, nil", row, err)
			}
		})
	}
	if calls.Load() != 0 {
		t.Errorf("expected no network calls, got %d", calls.Load())
	}
}

func TestClient_UpsertErrorCarriesStatusAndBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		io.WriteString(w, `{"message":"duplicate key"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "anon-key", "", newTestLogger())
	err := c.Upsert(context.Background(), domain.MirrorRecord{NoteID: "x"})
	if err == nil {
		t.Fatal("expected error for non-2xx status")
	}
	if !strings.Contains(err.Error(), "409") || !strings.Contains(err.Error(), "duplicate key") {
		t.Errorf("error %q should contain status and body", err)
	}
}

func TestClient_TrimsTrailingSlashAndCustomTable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/my_cards" {
			t.Errorf("path = %q, want /rest/v1/my_cards", r.URL.Path)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "anon-key", "my_cards", newTestLogger())
	if err := c.Upsert(context.Background(), domain.MirrorRecord{NoteID: "x"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
}
