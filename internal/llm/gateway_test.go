package llm_test

import (
    "context"
    "errors"
    "strings"
    "testing"

    "github.com/hyperifyio/laudo/internal/llm"
    "github.com/hyperifyio/laudo/internal/llm/llmtest"
)

var allProviders = []llm.Provider{llm.ProviderOpenAI, llm.ProviderClaude, llm.ProviderGemini}

func TestSend_AllProvidersReturnText(t *testing.T) {
    srv := llmtest.New(func(prompt string) string { return "ok: " + prompt[len(prompt)-5:] })
    defer srv.Close()
    gw := srv.Gateway()
    for _, p := range allProviders {
        got, err := gw.Send(context.Background(), "hello", llm.Config{Provider: p, APIKey: " key "})
        if err != nil {
            t.Fatalf("%s: %v", p, err)
        }
        if got != "ok: hello" {
            t.Fatalf("%s: got %q", p, got)
        }
    }
    prompts := srv.Prompts()
    if len(prompts) != 3 {
        t.Fatalf("expected 3 calls, got %d", len(prompts))
    }
    if prompts[0] != "hello" {
        t.Fatalf("openai user turn should be the bare prompt: %q", prompts[0])
    }
    for _, p := range prompts[1:] {
        if !strings.HasPrefix(p, "Você é um médico perito judicial") {
            t.Fatalf("single-turn providers should carry the persona: %q", p)
        }
    }
}

func TestSend_NonEmptyOrError(t *testing.T) {
    srv := llmtest.New(func(string) string { return "   " })
    defer srv.Close()
    gw := srv.Gateway()
    for _, p := range allProviders {
        got, err := gw.Send(context.Background(), "x", llm.Config{Provider: p, APIKey: "k"})
        if err == nil {
            t.Fatalf("%s: expected error for blank text, got %q", p, got)
        }
        if !errors.Is(err, llm.ErrEmptyResponse) || err.Error() == "" {
            t.Fatalf("%s: got %v", p, err)
        }
    }
}

func TestSend_APIErrorCarriesProviderMessage(t *testing.T) {
    srv := llmtest.New(nil)
    defer srv.Close()
    srv.Status = 401
    srv.Message = "Incorrect API key provided"
    gw := srv.Gateway()
    for _, p := range allProviders {
        _, err := gw.Send(context.Background(), "x", llm.Config{Provider: p, APIKey: "bad"})
        var apiErr *llm.APIError
        if !errors.As(err, &apiErr) {
            t.Fatalf("%s: expected APIError, got %v", p, err)
        }
        if apiErr.Status != 401 || !strings.Contains(apiErr.Error(), "Incorrect API key provided") {
            t.Fatalf("%s: got %v", p, apiErr)
        }
    }
}

func TestSend_NotConfiguredMakesNoCall(t *testing.T) {
    srv := llmtest.New(nil)
    defer srv.Close()
    _, err := srv.Gateway().Send(context.Background(), "x", llm.Config{Provider: llm.ProviderOpenAI})
    if !errors.Is(err, llm.ErrNotConfigured) {
        t.Fatalf("got %v", err)
    }
    if srv.Calls() != 0 {
        t.Fatalf("expected no calls, got %d", srv.Calls())
    }
}

func TestPing(t *testing.T) {
    srv := llmtest.New(nil)
    defer srv.Close()
    gw := srv.Gateway()
    for _, p := range allProviders {
        if err := gw.Ping(context.Background(), llm.Config{Provider: p, APIKey: "k"}); err != nil {
            t.Fatalf("%s: %v", p, err)
        }
    }
    srv.Status = 403
    if err := gw.Ping(context.Background(), llm.Config{Provider: llm.ProviderGemini, APIKey: "k"}); err == nil {
        t.Fatal("expected error")
    }
}

func TestSend_OpenAIPersonaSentOnce(t *testing.T) {
    srv := llmtest.New(nil)
    defer srv.Close()
    if _, err := srv.Gateway().Send(context.Background(), "redija o laudo", llm.Config{Provider: llm.ProviderOpenAI, APIKey: "k"}); err != nil {
        t.Fatal(err)
    }
    sys := srv.Systems()
    if len(sys) != 1 || !strings.Contains(sys[0], "perito judicial") {
        t.Fatalf("system messages %q", sys)
    }
    if strings.Contains(srv.Prompts()[0], "perito judicial") {
        t.Fatalf("persona repeated in the user turn: %q", srv.Prompts()[0])
    }
}
