// Package generator runs the batch generation pipeline: for an ordered list
// of note IDs it loads each note, resolves the deck prompt, calls the AI
// provider, stages the result into the collection, and mirrors it to the
// remote store. Items fail independently; the only batch-fatal error is a
// failed final flush.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/cardgen/internal/domain"
	"github.com/heartmarshall/cardgen/internal/provider"
	"github.com/heartmarshall/cardgen/pkg/ctxutil"
)

// NoteStore is the collection contract consumed by the pipeline.
// Implemented by note.Repo.
type NoteStore interface {
	Get(ctx context.Context, id uuid.UUID) (domain.Note, error)
	StageUpdate(n domain.Note) error
	Flush(ctx context.Context) error
}

// PromptResolver supplies the generation prompt for a deck.
// Implemented by prompt.Service.
type PromptResolver interface {
	Resolve(deck string) string
}

// Mirror replicates finished cards to the remote store.
// Implemented by supabase.Client.
type Mirror interface {
	Upsert(ctx context.Context, rec domain.MirrorRecord) error
}

// Pipeline processes one batch at a time with a single sequential worker.
type Pipeline struct {
	log     *slog.Logger
	notes   NoteStore
	prompts PromptResolver
	gen     provider.Generator
	mirror  Mirror

	modelLabel string
	delay      time.Duration

	// OnOutcome, when set, is called after every attempted item with its
	// terminal outcome, the number of items attempted so far, and the batch
	// total. Callers use it to stream the running log and progress live.
	OnOutcome func(out domain.ItemOutcome, done, total int)
}

// New creates a batch pipeline. modelLabel is recorded on mirrored rows;
// delay is the pause between items that throttles provider calls.
func New(
	logger *slog.Logger,
	notes NoteStore,
	prompts PromptResolver,
	gen provider.Generator,
	mirror Mirror,
	modelLabel string,
	delay time.Duration,
) *Pipeline {
	return &Pipeline{
		log:        logger.With("component", "generator"),
		notes:      notes,
		prompts:    prompts,
		gen:        gen,
		mirror:     mirror,
		modelLabel: modelLabel,
		delay:      delay,
	}
}

// Run processes ids in input order and returns the batch summary.
// Cancellation is observed at iteration boundaries only: the item in flight
// finishes, remaining ids are never attempted, and staged work is still
// flushed. The returned error is non-nil only when that final flush fails;
// per-item failures are recorded in the summary instead.
func (p *Pipeline) Run(ctx context.Context, ids []uuid.UUID) (domain.BatchSummary, error) {
	summary := domain.BatchSummary{Total: len(ids)}

	p.log.InfoContext(ctx, "starting generation batch",
		slog.Int("count", len(ids)),
		slog.String("model", p.modelLabel),
	)

	for i, id := range ids {
		if ctx.Err() != nil {
			summary.Cancelled = true
			p.log.InfoContext(ctx, "batch cancelled",
				slog.Int("attempted", i),
				slog.Int("total", len(ids)),
			)
			break
		}

		outcome := p.processItem(ctx, i, id)
		summary.Outcomes = append(summary.Outcomes, outcome)
		summary.Lines = append(summary.Lines, outcome.Line())
		if outcome.Status.IsError() {
			summary.Errors++
		}

		if p.OnOutcome != nil {
			p.OnOutcome(outcome, i+1, len(ids))
		}

		// The delay throttles provider calls. Cancellation cuts it short
		// and is observed at the top of the next iteration.
		if i < len(ids)-1 && ctx.Err() == nil {
			_ = ctxutil.Sleep(ctx, p.delay)
		}
	}

	// Completed items must survive cancellation, so the flush runs even
	// when ctx is already done.
	if err := p.notes.Flush(context.WithoutCancel(ctx)); err != nil {
		return summary, fmt.Errorf("failed to persist collection: %w", err)
	}

	p.log.InfoContext(ctx, "generation batch finished",
		slog.Int("attempted", len(summary.Outcomes)),
		slog.Int("errors", summary.Errors),
		slog.Bool("cancelled", summary.Cancelled),
	)

	return summary, nil
}

// processItem drives one note through load, prompt resolution, generation,
// staging, and mirroring. Every exit path yields a terminal outcome.
func (p *Pipeline) processItem(ctx context.Context, i int, id uuid.UUID) domain.ItemOutcome {
	out := domain.ItemOutcome{Index: i, NoteID: id}

	note, err := p.notes.Get(ctx, id)
	if err != nil {
		out.Status = domain.StatusLoadError
		out.Err = err.Error()
		return out
	}

	front := note.Front()
	out.Front = front
	if front == "" {
		out.Status = domain.StatusSkipped
		return out
	}

	promptText := p.prompts.Resolve(note.Deck)

	p.log.InfoContext(ctx, "generating",
		slog.Int("index", i+1),
		slog.String("front", truncate(front, 50)),
	)

	html, err := p.gen.Generate(ctx, promptText, front)
	if err != nil {
		out.Status = domain.StatusProviderError
		out.Err = err.Error()
		return out
	}
	out.HTML = html

	if err := note.SetAIContent(html, note.ID.String()); err != nil {
		out.Status = domain.StatusSaveError
		out.Err = err.Error()
		return out
	}
	if err := p.notes.StageUpdate(note); err != nil {
		out.Status = domain.StatusSaveError
		out.Err = err.Error()
		return out
	}

	if err := p.mirror.Upsert(ctx, domain.MirrorRecord{
		NoteID:     note.ID.String(),
		DeckName:   note.Deck,
		Front:      front,
		AIContent:  html,
		ModelUsed:  p.modelLabel,
		PromptUsed: promptText,
	}); err != nil {
		out.MirrorWarning = err.Error()
		p.log.WarnContext(ctx, "mirror upsert failed",
			slog.String("note_id", id.String()),
			slog.String("error", err.Error()),
		)
	}

	out.Status = domain.StatusOK
	return out
}

// truncate shortens s to max runes for log output.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
