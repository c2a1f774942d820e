package llm

import (
    "context"
    "encoding/json"
    "fmt"
    "net/http"
    "strings"
)

const (
    // MaxOutputTokens caps every generation request.
    MaxOutputTokens = 2000

    defaultClaudeBaseURL = "https://api.anthropic.com"
    defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

    // shortPersona prefixes the single user turn sent to Claude and Gemini.
    shortPersona = "Você é um médico perito judicial brasileiro especializado em medicina do trabalho.\n\n"
)

// Sender sends one prompt to the configured provider and returns its text.
type Sender interface {
    Send(ctx context.Context, prompt string, cfg Config) (string, error)
}

// Gateway dispatches prompts to OpenAI, Claude or Gemini. It performs no
// retry, backoff or timeout of its own; callers bound calls via ctx.
type Gateway struct {
    HTTPClient *http.Client
    // Base URL overrides, mainly for tests. Empty means the public endpoint.
    OpenAIBaseURL string
    ClaudeBaseURL string
    GeminiBaseURL string
    // NewOpenAI overrides construction of the OpenAI chat client.
    NewOpenAI func(cfg Config) Client
}

// Send validates cfg, sends prompt and returns the provider text. The result
// is never an empty string with a nil error.
func (g *Gateway) Send(ctx context.Context, prompt string, cfg Config) (string, error) {
    cfg = cfg.Normalize()
    if err := cfg.Validate(); err != nil {
        return "", err
    }
    var (
        text string
        err  error
    )
    switch cfg.Provider {
    case ProviderOpenAI:
        text, err = g.sendOpenAI(ctx, prompt, cfg)
    case ProviderClaude:
        text, err = g.sendClaude(ctx, Persona(cfg.Provider)+prompt, MaxOutputTokens, cfg)
    case ProviderGemini:
        text, err = g.sendGemini(ctx, Persona(cfg.Provider)+prompt, cfg)
    }
    if err != nil {
        return "", err
    }
    if strings.TrimSpace(text) == "" {
        return "", fmt.Errorf("%s: %w", cfg.Provider.Label(), ErrEmptyResponse)
    }
    return text, nil
}

// Persona returns the persona Send adds to every prompt for p: a system
// message for OpenAI, a prefix of the single user turn otherwise.
func Persona(p Provider) string {
    if p == ProviderOpenAI {
        return openAIPersona
    }
    return shortPersona
}

// Ping checks that the key is accepted using the cheapest call per provider.
func (g *Gateway) Ping(ctx context.Context, cfg Config) error {
    cfg = cfg.Normalize()
    if err := cfg.Validate(); err != nil {
        return err
    }
    switch cfg.Provider {
    case ProviderOpenAI:
        return g.pingOpenAI(ctx, cfg)
    case ProviderClaude:
        _, err := g.sendClaude(ctx, "test", 10, cfg)
        return err
    default:
        _, err := g.sendGemini(ctx, "Olá, teste de conexão!", cfg)
        return err
    }
}

// errorMessage pulls error.message or message out of a provider error body.
func errorMessage(raw []byte, status string) string {
    var e struct {
        Error struct {
            Message string `json:"message"`
        } `json:"error"`
        Message string `json:"message"`
    }
    if json.Unmarshal(raw, &e) == nil {
        if m := strings.TrimSpace(e.Error.Message); m != "" {
            return m
        }
        if m := strings.TrimSpace(e.Message); m != "" {
            return m
        }
    }
    return status
}

func firstNonEmpty(vals ...string) string {
    for _, v := range vals {
        if strings.TrimSpace(v) != "" {
            return v
        }
    }
    return ""
}
