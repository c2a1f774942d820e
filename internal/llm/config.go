package llm

import (
    "errors"
    "fmt"
    "strings"
)

// Provider names one of the supported hosted model APIs.
type Provider string

const (
    ProviderOpenAI Provider = "openai"
    ProviderClaude Provider = "claude"
    ProviderGemini Provider = "gemini"
)

// Label is the display name used in error messages.
func (p Provider) Label() string {
    switch p {
    case ProviderOpenAI:
        return "OpenAI"
    case ProviderClaude:
        return "Claude"
    case ProviderGemini:
        return "Gemini"
    }
    return string(p)
}

var (
    // ErrNotConfigured is returned before any network call when no provider
    // or API key has been set.
    ErrNotConfigured = errors.New("AI service not configured")
    // ErrUnsupportedProvider is returned for provider names outside the enum.
    ErrUnsupportedProvider = errors.New("unsupported AI provider")
    // ErrEmptyResponse is returned when a provider answers 2xx with no text.
    ErrEmptyResponse = errors.New("empty response from AI provider")
)

// APIError is a non-2xx answer from a provider.
type APIError struct {
    Provider Provider
    Status   int
    Message  string
}

func (e *APIError) Error() string {
    msg := strings.TrimSpace(e.Message)
    if msg == "" {
        msg = "API key inválida ou sem permissões."
    }
    return fmt.Sprintf("%s API error (%d): %s", e.Provider.Label(), e.Status, msg)
}

// Config is the global provider configuration.
type Config struct {
    Provider Provider `json:"provider" yaml:"provider"`
    APIKey   string   `json:"apiKey" yaml:"apiKey"`
    Model    string   `json:"model,omitempty" yaml:"model,omitempty"`
}

// Validate reports configuration problems without touching the network.
func (c Config) Validate() error {
    if c.Provider == "" || strings.TrimSpace(c.APIKey) == "" {
        return ErrNotConfigured
    }
    switch c.Provider {
    case ProviderOpenAI, ProviderClaude, ProviderGemini:
        return nil
    }
    return fmt.Errorf("%w: %q", ErrUnsupportedProvider, c.Provider)
}

// Normalize trims the key and migrates a deprecated model identifier.
func (c Config) Normalize() Config {
    c.Provider = Provider(strings.ToLower(strings.TrimSpace(string(c.Provider))))
    c.APIKey = strings.TrimSpace(c.APIKey)
    c.Model = MigrateModel(strings.TrimSpace(c.Model))
    return c
}

// ModelOrDefault returns the configured model or the provider default.
func (c Config) ModelOrDefault() string {
    if m := MigrateModel(strings.TrimSpace(c.Model)); m != "" {
        return m
    }
    return DefaultModel(c.Provider)
}

// Masked returns a copy safe to print or serve.
func (c Config) Masked() Config {
    k := c.APIKey
    if len(k) > 8 {
        c.APIKey = k[:4] + strings.Repeat("*", len(k)-8) + k[len(k)-4:]
    } else if k != "" {
        c.APIKey = "****"
    }
    return c
}

// DefaultModel is the model used when none is configured.
func DefaultModel(p Provider) string {
    switch p {
    case ProviderOpenAI:
        return "gpt-4o"
    case ProviderClaude:
        return "claude-3-5-sonnet-20241022"
    case ProviderGemini:
        return "gemini-2.5-flash"
    }
    return ""
}

// deprecatedModels maps retired identifiers to their replacements. No target
// appears as a key, which keeps MigrateModel idempotent.
var deprecatedModels = map[string]string{
    "gpt-4":                   "gpt-4o",
    "gpt-4-turbo-preview":     "gpt-4o",
    "claude-3-opus-20240229":  "claude-3-5-sonnet-20241022",
    "gemini-pro-vision":       "gemini-2.5-flash",
    "gemini-1.5-flash-latest": "gemini-2.5-flash",
    "gemini-1.5-flash":        "gemini-2.5-flash",
    "gemini-pro-latest":       "gemini-2.5-flash",
    "gemini-pro":              "gemini-2.5-flash",
    "gemini-1.5-pro-latest":   "gemini-2.5-pro",
    "gemini-1.5-pro":          "gemini-2.5-pro",
}

// MigrateModel rewrites a deprecated model identifier. Unknown and current
// identifiers are returned unchanged.
func MigrateModel(model string) string {
    if to, ok := deprecatedModels[model]; ok {
        return to
    }
    return model
}
