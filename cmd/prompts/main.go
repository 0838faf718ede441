// Command prompts manages per-deck prompt overrides.
//
// Usage:
//
//	prompts list [-config path]
//	prompts get -deck name [-config path]
//	prompts set -deck name -prompt text [-config path]
//	prompts delete -deck name [-config path]
//
// get prints the effective prompt for a deck, which may come from the deck
// itself, a parent deck, the configured default, or the built-in fallback.
// set with an empty prompt removes the override.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/joho/godotenv"

	"github.com/heartmarshall/cardgen/internal/adapter/promptfile"
	"github.com/heartmarshall/cardgen/internal/app"
	promptsvc "github.com/heartmarshall/cardgen/internal/service/prompt"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	_ = godotenv.Load()

	var err error
	switch os.Args[1] {
	case "list":
		err = runList(os.Args[2:])
	case "get":
		err = runGet(os.Args[2:])
	case "set":
		err = runSet(os.Args[2:])
	case "delete":
		err = runDelete(os.Args[2:])
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
	fmt.Fprintln(os.Stderr, "usage: prompts <list|get|set|delete> [flags]")
}

// buildService adds the shared -config flag, parses args, and wires the
// prompt service. Subcommand-specific flags must be registered on fs before
// the call.
func buildService(fs *flag.FlagSet, args []string) (*promptsvc.Service, error) {
	configPath := fs.String("config", "", "path to YAML config")
	fs.Parse(args)

	cfg, logger, err := app.Bootstrap(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	store := promptfile.New(cfg.PromptsPath, logger)
	return promptsvc.NewService(logger, store, cfg.DefaultPrompt), nil
}

func runList(args []string) error {
	svc, err := buildService(flag.NewFlagSet("list", flag.ExitOnError), args)
	if err != nil {
		return err
	}

	all, err := svc.All()
	if err != nil {
		return err
	}

	decks := make([]string, 0, len(all))
	for deck := range all {
		decks = append(decks, deck)
	}
	sort.Strings(decks)

	for _, deck := range decks {
		fmt.Printf("%s\t%s\n", deck, truncate(all[deck], 60))
	}
	return nil
}

func runGet(args []string) error {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	deck := fs.String("deck", "", "deck name")

	svc, err := buildService(fs, args)
	if err != nil {
		return err
	}
	if *deck == "" {
		return fmt.Errorf("-deck is required")
	}

	fmt.Println(svc.Resolve(*deck))
	return nil
}

func runSet(args []string) error {
	fs := flag.NewFlagSet("set", flag.ExitOnError)
	deck := fs.String("deck", "", "deck name")
	prompt := fs.String("prompt", "", "prompt text; empty removes the override")

	svc, err := buildService(fs, args)
	if err != nil {
		return err
	}
	if *deck == "" {
		return fmt.Errorf("-deck is required")
	}

	return svc.Set(*deck, *prompt)
}

func runDelete(args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	deck := fs.String("deck", "", "deck name")

	svc, err := buildService(fs, args)
	if err != nil {
		return err
	}
	if *deck == "" {
		return fmt.Errorf("-deck is required")
	}

	return svc.Delete(*deck)
}

// truncate shortens s to max runes for the one-line listing.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
