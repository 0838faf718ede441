// Package provider holds the shared surface of the AI content gateways:
// the provider names recognized in configuration, the capability the
// pipeline consumes, and response cleanup common to all gateways.
package provider

import (
	"context"
	"strings"
)

// Name identifies a configured AI provider.
type Name string

const (
	NameOpenAI    Name = "openai"
	NameAnthropic Name = "anthropic"
)

func (n Name) String() string { return string(n) }

// ResolveName maps a raw configuration value to a provider name. Any value
// other than "anthropic" selects OpenAI; unrecognized values fall back
// permissively instead of failing.
func ResolveName(raw string) Name {
	if strings.TrimSpace(raw) == string(NameAnthropic) {
		return NameAnthropic
	}
	return NameOpenAI
}

// Known reports whether raw names a recognized provider exactly. Callers
// use it to warn about values that ResolveName silently defaults.
func Known(raw string) bool {
	switch Name(strings.TrimSpace(raw)) {
	case NameOpenAI, NameAnthropic:
		return true
	}
	return false
}

// Generator produces study-card HTML for a card front text under the given
// system prompt.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, front string) (string, error)
}
