package llm

import (
    "errors"
    "testing"
)

func TestMigrateModel_Idempotent(t *testing.T) {
    inputs := []string{"gpt-4", "gpt-4-turbo-preview", "gpt-4o", "claude-3-opus-20240229", "gemini-pro", "gemini-1.5-pro-latest", "gemini-2.5-flash", "unknown-model", ""}
    for _, in := range inputs {
        once := MigrateModel(in)
        if twice := MigrateModel(once); twice != once {
            t.Fatalf("MigrateModel not idempotent for %q: %q then %q", in, once, twice)
        }
    }
    for from, to := range deprecatedModels {
        if _, ok := deprecatedModels[to]; ok {
            t.Fatalf("target %q of %q is itself deprecated", to, from)
        }
    }
}

func TestMigrateModel_Table(t *testing.T) {
    cases := map[string]string{
        "gpt-4":                  "gpt-4o",
        "claude-3-opus-20240229": "claude-3-5-sonnet-20241022",
        "gemini-pro-vision":      "gemini-2.5-flash",
        "gemini-1.5-pro":         "gemini-2.5-pro",
        "gpt-4o-mini":            "gpt-4o-mini",
    }
    for in, want := range cases {
        if got := MigrateModel(in); got != want {
            t.Fatalf("MigrateModel(%q) = %q, want %q", in, got, want)
        }
    }
}

func TestConfig_Validate(t *testing.T) {
    if err := (Config{}).Validate(); !errors.Is(err, ErrNotConfigured) {
        t.Fatalf("zero config: %v", err)
    }
    if err := (Config{Provider: ProviderOpenAI, APIKey: "   "}).Validate(); !errors.Is(err, ErrNotConfigured) {
        t.Fatalf("blank key: %v", err)
    }
    if err := (Config{Provider: "mistral", APIKey: "k"}).Validate(); !errors.Is(err, ErrUnsupportedProvider) {
        t.Fatalf("unknown provider: %v", err)
    }
    if err := (Config{Provider: ProviderGemini, APIKey: "k"}).Validate(); err != nil {
        t.Fatalf("valid config: %v", err)
    }
}

func TestConfig_ModelOrDefault(t *testing.T) {
    if got := (Config{Provider: ProviderClaude}).ModelOrDefault(); got != "claude-3-5-sonnet-20241022" {
        t.Fatalf("got %q", got)
    }
    if got := (Config{Provider: ProviderOpenAI, Model: "gpt-4"}).ModelOrDefault(); got != "gpt-4o" {
        t.Fatalf("got %q", got)
    }
}

func TestAPIError_Message(t *testing.T) {
    e := &APIError{Provider: ProviderClaude, Status: 401, Message: "invalid x-api-key"}
    if e.Error() != "Claude API error (401): invalid x-api-key" {
        t.Fatalf("got %q", e.Error())
    }
    if (&APIError{Provider: ProviderGemini, Status: 500}).Error() == "" {
        t.Fatal("empty message")
    }
}
