// Command generate runs the AI content pipeline over a batch of cards.
// It selects notes by explicit IDs or by deck (including subdecks), resolves
// each deck's prompt, calls the configured AI provider, writes the cleaned
// HTML into the collection, and mirrors results to Supabase when configured.
// Per-item outcomes stream to stdout as the batch runs; a single flush
// persists the collection at the end. The first interrupt finishes the
// current card and then stops.
//
// Flags:
//
//	-config            path to YAML config (optional; falls back to CONFIG_PATH, then env)
//	-deck              process notes of this deck and its subdecks
//	-ids               comma-separated note IDs to process
//	-empty-only        only process notes whose AI content is still empty
//	-print-mirror-sql  print the Supabase setup SQL and exit
//
// Exit codes: 0 = success, 1 = error (including any per-card failure).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/heartmarshall/cardgen/internal/adapter/promptfile"
	anthropicprovider "github.com/heartmarshall/cardgen/internal/adapter/provider/anthropic"
	openaiprovider "github.com/heartmarshall/cardgen/internal/adapter/provider/openai"
	"github.com/heartmarshall/cardgen/internal/adapter/sqlite"
	noterepo "github.com/heartmarshall/cardgen/internal/adapter/sqlite/note"
	"github.com/heartmarshall/cardgen/internal/adapter/supabase"
	"github.com/heartmarshall/cardgen/internal/app"
	"github.com/heartmarshall/cardgen/internal/app/generator"
	"github.com/heartmarshall/cardgen/internal/domain"
	"github.com/heartmarshall/cardgen/internal/provider"
	promptsvc "github.com/heartmarshall/cardgen/internal/service/prompt"
)

// Compile-time interface assertion.
var _ generator.NoteStore = (*noterepo.Repo)(nil)

func main() {
	configPath := flag.String("config", "", "path to YAML config")
	deck := flag.String("deck", "", "process notes of this deck and its subdecks")
	ids := flag.String("ids", "", "comma-separated note IDs to process")
	emptyOnly := flag.Bool("empty-only", false, "only process notes whose AI content is still empty")
	printMirrorSQL := flag.Bool("print-mirror-sql", false, "print the Supabase setup SQL and exit")
	flag.Parse()

	if *printMirrorSQL {
		fmt.Print(supabase.SetupSQL)
		return
	}

	_ = godotenv.Load()

	cfg, logger, err := app.Bootstrap(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if (*deck == "") == (*ids == "") {
		logger.Error("exactly one of -deck or -ids is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// First interrupt requests a graceful stop at the next item boundary.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("Cancelling after current card...")
		cancel()
	}()

	db, err := sqlite.Open(ctx, cfg.CollectionPath)
	if err != nil {
		logger.Error("open collection", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	if err := sqlite.Migrate(ctx, db); err != nil {
		logger.Error("migrate collection", slog.String("error", err.Error()))
		os.Exit(1)
	}

	notes := noterepo.New(db, logger)
	prompts := promptsvc.NewService(logger, promptfile.New(cfg.PromptsPath, logger), cfg.DefaultPrompt)

	mirror := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.SupabaseTable, logger)
	if !cfg.MirrorEnabled() {
		logger.Debug("mirror disabled: supabase url or anon key not configured")
	}

	if !provider.Known(cfg.AIProvider) {
		logger.Warn("unrecognized ai_provider, using openai",
			slog.String("ai_provider", cfg.AIProvider),
		)
	}

	var gen provider.Generator
	switch cfg.ProviderName() {
	case provider.NameAnthropic:
		gen = anthropicprovider.NewProvider(cfg.AnthropicAPIKey, cfg.AnthropicModel, logger)
	default:
		gen = openaiprovider.NewProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel, logger)
	}

	noteIDs, err := selectNoteIDs(ctx, notes, *deck, *ids, *emptyOnly)
	if err != nil {
		logger.Error("select notes", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Printf("Ready to generate content for %d card(s).\n", len(noteIDs))

	pipeline := generator.New(logger, notes, prompts, gen, mirror, cfg.ModelLabel(), cfg.RequestDelay())
	pipeline.OnOutcome = func(out domain.ItemOutcome, done, total int) {
		fmt.Println(out.Line())
	}

	summary, err := pipeline.Run(ctx, noteIDs)
	if err != nil {
		logger.Error("persist collection", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if summary.Cancelled {
		fmt.Println("Cancelled.")
	}
	fmt.Printf("\n%s\n", summary.FinalLine())

	if summary.HasErrors() {
		logger.Warn("batch completed with errors", slog.Int("errors", summary.Errors))
		os.Exit(1)
	}
}

// selectNoteIDs resolves the target batch from the -deck or -ids flag,
// optionally narrowed to notes without AI content.
func selectNoteIDs(ctx context.Context, notes *noterepo.Repo, deck, rawIDs string, emptyOnly bool) ([]uuid.UUID, error) {
	var (
		ids []uuid.UUID
		err error
	)

	if rawIDs != "" {
		ids, err = parseIDList(rawIDs)
	} else {
		ids, err = notes.ListIDs(ctx, deck)
	}
	if err != nil {
		return nil, err
	}

	if emptyOnly {
		return notes.MissingContent(ctx, ids)
	}
	return ids, nil
}

func parseIDList(raw string) ([]uuid.UUID, error) {
	parts := strings.Split(raw, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := uuid.Parse(p)
		if err != nil {
			return nil, fmt.Errorf("invalid note id %q: %w", p, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
