package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/heartmarshall/cardgen/internal/provider"
)

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

const validYAML = `
collection_path: "./cards.db"
prompts_path: "./prompts.json"

ai_provider: "anthropic"
anthropic_api_key: "ak-yaml"
anthropic_model: "claude-sonnet-4-6"
openai_model: "gpt-4o-mini"

request_delay_ms: 250
default_prompt: "You are a study assistant."

supabase_url: "https://project.supabase.co"
supabase_anon_key: "anon-yaml"
supabase_table: "my_cards"

log:
  level: "debug"
  format: "json"
`

func TestLoad_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.CollectionPath != "./cards.db" {
		t.Errorf("collection_path = %q", cfg.CollectionPath)
	}
	if cfg.PromptsPath != "./prompts.json" {
		t.Errorf("prompts_path = %q", cfg.PromptsPath)
	}
	if cfg.AIProvider != "anthropic" {
		t.Errorf("ai_provider = %q", cfg.AIProvider)
	}
	if cfg.RequestDelayMs != 250 {
		t.Errorf("request_delay_ms = %d, want 250", cfg.RequestDelayMs)
	}
	if cfg.RequestDelay() != 250*time.Millisecond {
		t.Errorf("RequestDelay() = %v, want 250ms", cfg.RequestDelay())
	}
	if cfg.DefaultPrompt != "You are a study assistant." {
		t.Errorf("default_prompt = %q", cfg.DefaultPrompt)
	}
	if cfg.SupabaseTable != "my_cards" {
		t.Errorf("supabase_table = %q", cfg.SupabaseTable)
	}
	if !cfg.MirrorEnabled() {
		t.Error("MirrorEnabled() = false, want true")
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("log = %+v", cfg.Log)
	}
}

func TestLoad_ENVOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("REQUEST_DELAY_MS", "0")
	t.Setenv("AI_PROVIDER", "openai")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.RequestDelayMs != 0 {
		t.Errorf("request_delay_ms = %d, want 0 (ENV override)", cfg.RequestDelayMs)
	}
	if cfg.AIProvider != "openai" {
		t.Errorf("ai_provider = %q, want openai (ENV override)", cfg.AIProvider)
	}
}

func TestLoad_NoFile_DefaultsApplied(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	origDir, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	_ = os.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.CollectionPath != "./collection.db" {
		t.Errorf("collection_path = %q, want default", cfg.CollectionPath)
	}
	if cfg.PromptsPath != "./deck_prompts.json" {
		t.Errorf("prompts_path = %q, want default", cfg.PromptsPath)
	}
	if cfg.AIProvider != "openai" {
		t.Errorf("ai_provider = %q, want default openai", cfg.AIProvider)
	}
	if cfg.OpenAIModel != "gpt-4o" {
		t.Errorf("openai_model = %q, want default", cfg.OpenAIModel)
	}
	if cfg.AnthropicModel != "claude-sonnet-4-6" {
		t.Errorf("anthropic_model = %q, want default", cfg.AnthropicModel)
	}
	if cfg.RequestDelayMs != 500 {
		t.Errorf("request_delay_ms = %d, want default 500", cfg.RequestDelayMs)
	}
	if cfg.SupabaseTable != "ai_card_content" {
		t.Errorf("supabase_table = %q, want default", cfg.SupabaseTable)
	}
	if cfg.MirrorEnabled() {
		t.Error("MirrorEnabled() = true without url/key")
	}
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, `{{{invalid yaml`)

	_, err := LoadFrom(path)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestValidate_EmptyCollectionPath(t *testing.T) {
	cfg := validConfig()
	cfg.CollectionPath = "  "

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty collection_path")
	}
}

func TestValidate_EmptyPromptsPath(t *testing.T) {
	cfg := validConfig()
	cfg.PromptsPath = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty prompts_path")
	}
}

func TestValidate_NegativeDelay(t *testing.T) {
	cfg := validConfig()
	cfg.RequestDelayMs = -1

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative request_delay_ms")
	}
}

func TestValidate_UnknownProviderAccepted(t *testing.T) {
	cfg := validConfig()
	cfg.AIProvider = "gemini"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error for unknown provider: %v", err)
	}
	if got := cfg.ProviderName(); got != provider.NameOpenAI {
		t.Errorf("ProviderName() = %q, want permissive openai fallback", got)
	}
}

func TestModelLabel(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		want     string
	}{
		{name: "openai", provider: "openai", want: "gpt-4o"},
		{name: "anthropic", provider: "anthropic", want: "claude-sonnet-4-6"},
		{name: "unknown falls back to openai model", provider: "mistral", want: "gpt-4o"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.AIProvider = tt.provider
			if got := cfg.ModelLabel(); got != tt.want {
				t.Errorf("ModelLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

// validConfig returns a Config that passes all validation checks.
func validConfig() Config {
	return Config{
		CollectionPath: "./collection.db",
		PromptsPath:    "./deck_prompts.json",
		AIProvider:     "openai",
		OpenAIModel:    "gpt-4o",
		AnthropicModel: "claude-sonnet-4-6",
		RequestDelayMs: 500,
		SupabaseTable:  "ai_card_content",
	}
}
