// Command notes manages the card collection: bulk import from JSON and
// listing with deck filters.
//
// Usage:
//
//	notes import -file cards.json [-config path]
//	notes list [-deck name] [-empty-only] [-config path]
//
// The import file is a JSON array of {"deck": "...", "fields": {...}}
// objects; each note gets a fresh ID. list prints one tab-separated line
// per note: id, deck, front text, and whether AI content is present.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/heartmarshall/cardgen/internal/adapter/sqlite"
	noterepo "github.com/heartmarshall/cardgen/internal/adapter/sqlite/note"
	"github.com/heartmarshall/cardgen/internal/app"
	"github.com/heartmarshall/cardgen/internal/domain"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	_ = godotenv.Load()

	var err error
	switch os.Args[1] {
	case "import":
		err = runImport(os.Args[2:])
	case "list":
		err = runList(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: notes <import|list> [flags]")
}

// importEntry is one element of the import file.
type importEntry struct {
	Deck   string            `json:"deck"`
	Fields map[string]string `json:"fields"`
}

func runImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath := fs.String("config", "", "path to YAML config")
	file := fs.String("file", "", "JSON file with notes to import")
	fs.Parse(args)

	if *file == "" {
		return fmt.Errorf("-file is required")
	}

	cfg, logger, err := app.Bootstrap(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("read import file: %w", err)
	}

	var entries []importEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse import file: %w", err)
	}

	notes := make([]domain.Note, 0, len(entries))
	for i, e := range entries {
		if e.Deck == "" {
			return fmt.Errorf("entry %d: deck is required", i)
		}
		notes = append(notes, domain.NewNote(e.Deck, e.Fields))
	}

	ctx := context.Background()

	repo, closeDB, err := openRepo(ctx, cfg.CollectionPath, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	if err := repo.Insert(ctx, notes); err != nil {
		return err
	}

	fmt.Printf("Imported %d note(s).\n", len(notes))
	return nil
}

func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	configPath := fs.String("config", "", "path to YAML config")
	deck := fs.String("deck", "", "limit to this deck and its subdecks")
	emptyOnly := fs.Bool("empty-only", false, "only notes whose AI content is still empty")
	fs.Parse(args)

	cfg, logger, err := app.Bootstrap(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()

	repo, closeDB, err := openRepo(ctx, cfg.CollectionPath, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	notes, err := repo.List(ctx, *deck)
	if err != nil {
		return err
	}

	for _, n := range notes {
		if *emptyOnly && (n.HasAIContent() || !n.HasRequiredFields()) {
			continue
		}
		marker := "empty"
		if n.HasAIContent() {
			marker = "generated"
		}
		fmt.Printf("%s\t%s\t%s\t%s\n", n.ID, n.Deck, n.Front(), marker)
	}
	return nil
}

// openRepo opens and migrates the collection, returning the note repository
// and a close function.
func openRepo(ctx context.Context, path string, logger *slog.Logger) (*noterepo.Repo, func(), error) {
	db, err := sqlite.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	if err := sqlite.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return noterepo.New(db, logger), func() { db.Close() }, nil
}
