// Package promptfile persists per-deck prompt overrides as a flat JSON
// object mapping deck path to prompt text. The file is pretty-printed so it
// stays hand-editable next to the config.
package promptfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
)

// Store reads and writes the prompt override file.
type Store struct {
	path string
	log  *slog.Logger
}

// New creates a store over the JSON file at path. The file does not have to
// exist yet; it is created on the first Save.
func New(path string, logger *slog.Logger) *Store {
	return &Store{
		path: path,
		log:  logger.With("adapter", "promptfile"),
	}
}

// Load reads all stored prompts. A missing file is an empty set, not an
// error; an unreadable or unparseable file is.
func (s *Store) Load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %q: %w", s.path, err)
	}

	prompts := make(map[string]string)
	if err := json.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %q: %w", s.path, err)
	}

	return prompts, nil
}

// Save replaces the file contents with the given prompt set.
func (s *Store) Save(prompts map[string]string) error {
	data, err := json.MarshalIndent(prompts, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode prompts: %w", err)
	}

	if err := os.WriteFile(s.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write prompt file %q: %w", s.path, err)
	}

	s.log.Debug("saved prompt file", "path", s.path, "entries", len(prompts))
	return nil
}
