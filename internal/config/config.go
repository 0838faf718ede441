package config

import (
	"time"

	"github.com/heartmarshall/cardgen/internal/provider"
)

// Config is the root cardgen configuration.
type Config struct {
	CollectionPath string `yaml:"collection_path" env:"COLLECTION_PATH" env-default:"./collection.db"`
	PromptsPath    string `yaml:"prompts_path"    env:"PROMPTS_PATH"    env-default:"./deck_prompts.json"`

	AIProvider      string `yaml:"ai_provider"       env:"AI_PROVIDER"       env-default:"openai"`
	OpenAIAPIKey    string `yaml:"openai_api_key"    env:"OPENAI_API_KEY"`
	OpenAIModel     string `yaml:"openai_model"      env:"OPENAI_MODEL"      env-default:"gpt-4o"`
	AnthropicAPIKey string `yaml:"anthropic_api_key" env:"ANTHROPIC_API_KEY"`
	AnthropicModel  string `yaml:"anthropic_model"   env:"ANTHROPIC_MODEL"   env-default:"claude-sonnet-4-6"`

	RequestDelayMs int    `yaml:"request_delay_ms" env:"REQUEST_DELAY_MS" env-default:"500"`
	DefaultPrompt  string `yaml:"default_prompt"   env:"DEFAULT_PROMPT"`

	SupabaseURL     string `yaml:"supabase_url"      env:"SUPABASE_URL"`
	SupabaseAnonKey string `yaml:"supabase_anon_key" env:"SUPABASE_ANON_KEY"`
	SupabaseTable   string `yaml:"supabase_table"    env:"SUPABASE_TABLE"   env-default:"ai_card_content"`

	Log LogConfig `yaml:"log"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// RequestDelay returns the inter-item throttling delay.
func (c *Config) RequestDelay() time.Duration {
	return time.Duration(c.RequestDelayMs) * time.Millisecond
}

// ProviderName resolves the configured provider; unrecognized values fall
// back to OpenAI.
func (c *Config) ProviderName() provider.Name {
	return provider.ResolveName(c.AIProvider)
}

// ModelLabel returns the model name recorded alongside mirrored rows,
// following the resolved provider.
func (c *Config) ModelLabel() string {
	if c.ProviderName() == provider.NameAnthropic {
		return c.AnthropicModel
	}
	return c.OpenAIModel
}

// MirrorEnabled reports whether both Supabase coordinates are present.
// Either one missing disables the mirror silently.
func (c *Config) MirrorEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseAnonKey != ""
}
