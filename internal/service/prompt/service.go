// Package prompt resolves the generation prompt for a deck. Lookup walks
// the deck hierarchy from the deck itself through its ancestors, then falls
// back to the configured default prompt, then to a built-in one. Resolution
// never fails: a broken prompt file degrades to the default chain.
package prompt

import (
	"log/slog"
	"strings"

	"github.com/heartmarshall/cardgen/internal/domain"
)

// fallbackPrompt is used when no override matches and no default prompt is
// configured.
const fallbackPrompt = "You are a language learning assistant. Given a word or phrase, " +
	"generate a helpful, well-structured HTML study card. Include: " +
	"pronunciation guide, part of speech, definition, 2-3 example sentences, " +
	"common collocations or usage notes. Format with clean HTML using inline " +
	"styles (no external CSS). Keep it concise and educational."

type store interface {
	Load() (map[string]string, error)
	Save(prompts map[string]string) error
}

// Service answers "which prompt applies to this deck" and manages the
// stored overrides.
type Service struct {
	log           *slog.Logger
	store         store
	defaultPrompt string
}

// NewService creates a new prompt service. defaultPrompt may be empty, in
// which case the built-in fallback is the last resort.
func NewService(log *slog.Logger, store store, defaultPrompt string) *Service {
	return &Service{
		log:           log.With("service", "prompt"),
		store:         store,
		defaultPrompt: defaultPrompt,
	}
}

// Resolve returns the prompt for a deck: the deck's own override if present,
// otherwise the nearest ancestor's ("A::B::C" checks "A::B" then "A"),
// otherwise the configured default, otherwise the built-in fallback.
// Overrides are re-read on every call so edits apply mid-batch.
func (s *Service) Resolve(deck string) string {
	prompts, err := s.store.Load()
	if err != nil {
		s.log.Warn("prompt file unreadable, using default prompt", "error", err)
		prompts = nil
	}

	if p, ok := prompts[deck]; ok {
		return p
	}
	for _, ancestor := range domain.DeckAncestors(deck) {
		if p, ok := prompts[ancestor]; ok {
			return p
		}
	}

	if s.defaultPrompt != "" {
		return s.defaultPrompt
	}
	return fallbackPrompt
}

// Set stores a prompt override for a deck. The prompt is trimmed first; an
// empty result removes the override instead of storing a blank one.
func (s *Service) Set(deck, prompt string) error {
	if strings.TrimSpace(deck) == "" {
		return domain.NewValidationError("deck", "required")
	}

	prompts, err := s.store.Load()
	if err != nil {
		return err
	}

	trimmed := strings.TrimSpace(prompt)
	if trimmed != "" {
		prompts[deck] = trimmed
	} else {
		delete(prompts, deck)
	}

	return s.store.Save(prompts)
}

// Delete removes a deck's override. Deleting a deck without one is not an
// error.
func (s *Service) Delete(deck string) error {
	prompts, err := s.store.Load()
	if err != nil {
		return err
	}

	delete(prompts, deck)

	return s.store.Save(prompts)
}

// All returns every stored override.
func (s *Service) All() (map[string]string, error) {
	return s.store.Load()
}
