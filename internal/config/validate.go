package config

import (
	"fmt"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
//
// ai_provider is deliberately not validated here: unrecognized values fall
// back to OpenAI at resolution time, and callers may warn about them.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.CollectionPath) == "" {
		return fmt.Errorf("collection_path must not be empty")
	}
	if strings.TrimSpace(c.PromptsPath) == "" {
		return fmt.Errorf("prompts_path must not be empty")
	}
	if c.RequestDelayMs < 0 {
		return fmt.Errorf("request_delay_ms must be >= 0 (got %d)", c.RequestDelayMs)
	}
	return nil
}
