// Package note implements the note repository over the SQLite collection.
// Besides plain reads it provides the staged-write contract the generation
// batch relies on: mutated notes accumulate in memory via StageUpdate and
// are persisted in a single transaction by Flush.
package note

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/heartmarshall/cardgen/internal/domain"
)

const notesTable = "notes"

var noteColumns = []string{"id", "deck", "fields", "created_at", "updated_at"}

// Repo provides note persistence backed by the SQLite collection.
type Repo struct {
	db  *sql.DB
	log *slog.Logger

	mu     sync.Mutex
	staged map[uuid.UUID]domain.Note
	order  []uuid.UUID
}

// New creates a new note repository.
func New(db *sql.DB, logger *slog.Logger) *Repo {
	return &Repo{
		db:     db,
		log:    logger.With("repo", "note"),
		staged: make(map[uuid.UUID]domain.Note),
	}
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// Get returns a note by primary key. A note staged for update shadows its
// persisted row, so repeated reads within one batch observe earlier writes.
// Returns domain.ErrNotFound if the note does not exist.
func (r *Repo) Get(ctx context.Context, id uuid.UUID) (domain.Note, error) {
	r.mu.Lock()
	if n, ok := r.staged[id]; ok {
		r.mu.Unlock()
		return n.Clone(), nil
	}
	r.mu.Unlock()

	query, args, err := squirrel.
		Select(noteColumns...).
		From(notesTable).
		Where(squirrel.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return domain.Note{}, fmt.Errorf("build query: %w", err)
	}

	row := r.db.QueryRowContext(ctx, query, args...)

	n, err := scanNote(row)
	if err != nil {
		return domain.Note{}, mapError(err, "note", id)
	}

	return n, nil
}

// List returns notes of the given deck and all of its subdecks, ordered by
// deck then creation time. An empty deck name returns the whole collection.
func (r *Repo) List(ctx context.Context, deck string) ([]domain.Note, error) {
	builder := squirrel.
		Select(noteColumns...).
		From(notesTable).
		OrderBy("deck", "created_at", "id")

	if deck != "" {
		builder = builder.Where(deckMatch(deck))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []domain.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("list notes: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	return notes, nil
}

// ListIDs returns the IDs of notes in the given deck and its subdecks, in the
// same order List uses. An empty deck name selects the whole collection.
func (r *Repo) ListIDs(ctx context.Context, deck string) ([]uuid.UUID, error) {
	builder := squirrel.
		Select("id").
		From(notesTable).
		OrderBy("deck", "created_at", "id")

	if deck != "" {
		builder = builder.Where(deckMatch(deck))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list note ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("list note ids: %w", err)
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("list note ids: parse id %q: %w", raw, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list note ids: %w", err)
	}

	return ids, nil
}

// Decks returns the distinct deck names present in the collection, sorted.
func (r *Repo) Decks(ctx context.Context) ([]string, error) {
	query, args, err := squirrel.
		Select("DISTINCT deck").
		From(notesTable).
		OrderBy("deck").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}
	defer rows.Close()

	var decks []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("list decks: %w", err)
		}
		decks = append(decks, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}

	return decks, nil
}

// MissingContent filters ids down to notes that carry both generation fields
// and have an empty AI-content value, preserving the input order. IDs that
// fail to load are dropped silently so one bad id cannot abort a selection.
func (r *Repo) MissingContent(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	var missing []uuid.UUID
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, err := r.Get(ctx, id)
		if err != nil {
			r.log.DebugContext(ctx, "skipping unloadable note", "note_id", id, "error", err)
			continue
		}
		if !n.HasRequiredFields() || n.HasAIContent() {
			continue
		}
		missing = append(missing, id)
	}

	return missing, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Insert persists new notes in a single transaction, stamping creation and
// update times.
func (r *Repo) Insert(ctx context.Context, notes []domain.Note) error {
	if len(notes) == 0 {
		return nil
	}

	builder := squirrel.
		Insert(notesTable).
		Columns(noteColumns...)

	now := time.Now().Unix()
	for _, n := range notes {
		fields, err := json.Marshal(n.Fields)
		if err != nil {
			return fmt.Errorf("encode fields of note %s: %w", n.ID, err)
		}
		builder = builder.Values(n.ID.String(), n.Deck, string(fields), now, now)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert %d note(s): %w", len(notes), err)
	}

	return nil
}

// StageUpdate records a mutated note for the next Flush. Staging the same
// note twice keeps the latest version and its original position in the
// flush order. The copy is deep, later changes to n are not picked up.
func (r *Repo) StageUpdate(n domain.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.staged[n.ID]; !ok {
		r.order = append(r.order, n.ID)
	}
	r.staged[n.ID] = n.Clone()

	return nil
}

// Flush writes every staged note in one transaction and clears the staged
// set on success. On failure the staged set is kept so a retry flushes the
// same work. Flushing with nothing staged is a no-op.
func (r *Repo) Flush(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.order) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin flush: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for _, id := range r.order {
		n := r.staged[id]

		fields, err := json.Marshal(n.Fields)
		if err != nil {
			return fmt.Errorf("encode fields of note %s: %w", id, err)
		}

		query, args, err := squirrel.
			Update(notesTable).
			Set("deck", n.Deck).
			Set("fields", string(fields)).
			Set("updated_at", now).
			Where(squirrel.Eq{"id": id.String()}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build query: %w", err)
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return mapError(err, "note", id)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit flush: %w", err)
	}

	r.log.DebugContext(ctx, "flushed staged notes", "count", len(r.order))

	r.staged = make(map[uuid.UUID]domain.Note)
	r.order = nil

	return nil
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

// mapError converts database/sql errors into domain errors.
func mapError(err error, entity string, id uuid.UUID) error {
	if err == nil {
		return nil
	}

	// context errors pass through as-is
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", entity, id, err)
	}

	// sql.ErrNoRows -> domain.ErrNotFound
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
	}

	// Everything else: wrap with context
	return fmt.Errorf("%s %s: %w", entity, id, err)
}

// ---------------------------------------------------------------------------
// Row mapping
// ---------------------------------------------------------------------------

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanNote reads one notes row into a domain.Note.
func scanNote(s scanner) (domain.Note, error) {
	var (
		rawID     string
		deck      string
		rawFields string
		createdAt int64
		updatedAt int64
	)

	if err := s.Scan(&rawID, &deck, &rawFields, &createdAt, &updatedAt); err != nil {
		return domain.Note{}, err
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return domain.Note{}, fmt.Errorf("parse id %q: %w", rawID, err)
	}

	fields := make(map[string]string)
	if rawFields != "" {
		if err := json.Unmarshal([]byte(rawFields), &fields); err != nil {
			return domain.Note{}, fmt.Errorf("decode fields: %w", err)
		}
	}

	return domain.Note{
		ID:        id,
		Deck:      deck,
		Fields:    fields,
		CreatedAt: time.Unix(createdAt, 0).UTC(),
		UpdatedAt: time.Unix(updatedAt, 0).UTC(),
	}, nil
}

// deckMatch selects a deck together with its subdecks ("Deck" and "Deck::*").
func deckMatch(deck string) squirrel.Sqlizer {
	return squirrel.Or{
		squirrel.Eq{"deck": deck},
		squirrel.Like{"deck": deck + domain.DeckSeparator + "%"},
	}
}
