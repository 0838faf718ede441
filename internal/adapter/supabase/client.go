package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/heartmarshall/cardgen/internal/domain"
)

const (
	defaultTable   = "ai_card_content"
	requestTimeout = 30 * time.Second
)

// Client replicates generation results to a Supabase table through the
// PostgREST API.
//
// A client missing either the project URL or the anon key is disabled:
// every call returns immediately with no error and no network I/O.
type Client struct {
	baseURL    string
	apiKey     string
	table      string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a Client for the given Supabase project. An empty
// table name falls back to the default table.
func NewClient(rawURL, apiKey, table string, logger *slog.Logger) *Client {
	if table == "" {
		table = defaultTable
	}
	return &Client{
		baseURL:    strings.TrimRight(rawURL, "/"),
		apiKey:     apiKey,
		table:      table,
		httpClient: &http.Client{Timeout: requestTimeout},
		log:        logger.With("adapter", "supabase"),
	}
}

// Enabled reports whether both the project URL and the anon key are set.
func (c *Client) Enabled() bool {
	return c.baseURL != "" && c.apiKey != ""
}

// Row is one stored record of the mirror table.
type Row struct {
	NoteID     string `json:"note_id"`
	DeckName   string `json:"deck_name"`
	Front      string `json:"front"`
	AIContent  string `json:"ai_content"`
	ModelUsed  string `json:"model_used"`
	PromptUsed string `json:"prompt_used"`
	CreatedAt  string `json:"created_at,omitempty"`
	UpdatedAt  string `json:"updated_at,omitempty"`
}

// Upsert inserts or updates the row keyed by the record's NoteID. Repeated
// calls with the same NoteID overwrite the stored row. A disabled client
// skips silently.
func (c *Client) Upsert(ctx context.Context, rec domain.MirrorRecord) error {
	if !c.Enabled() {
		return nil
	}

	payload, err := json.Marshal(Row{
		NoteID:     rec.NoteID,
		DeckName:   rec.DeckName,
		Front:      rec.Front,
		AIContent:  rec.AIContent,
		ModelUsed:  rec.ModelUsed,
		PromptUsed: rec.PromptUsed,
	})
	if err != nil {
		return fmt.Errorf("supabase: encode row: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tableURL(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("supabase: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuth(req)
	req.Header.Set("Prefer", "resolution=merge-duplicates")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("supabase: upsert request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("supabase: upsert failed (%d): %s", resp.StatusCode, string(body))
	}

	c.log.DebugContext(ctx, "mirror upsert",
		slog.String("note_id", rec.NoteID),
		slog.String("deck", rec.DeckName),
	)
	return nil
}

// Fetch returns the stored row for a note id, or nil when no row exists.
// A disabled client returns nil silently.
func (c *Client) Fetch(ctx context.Context, noteID string) (*Row, error) {
	if !c.Enabled() {
		return nil, nil
	}

	params := url.Values{}
	params.Set("note_id", "eq."+noteID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.tableURL()+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("supabase: create request: %w", err)
	}
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase: fetch request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("supabase: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("supabase: fetch failed (%d): %s", resp.StatusCode, string(body))
	}

	var rows []Row
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("supabase: decode rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (c *Client) tableURL() string {
	return c.baseURL + "/rest/v1/" + c.table
}

func (c *Client) setAuth(req *http.Request) {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
}
