package llm

import (
    "context"
    "errors"

    "google.golang.org/genai"
)

func (g *Gateway) geminiClient(ctx context.Context, cfg Config) (*genai.Client, error) {
    return genai.NewClient(ctx, &genai.ClientConfig{
        APIKey:     cfg.APIKey,
        Backend:    genai.BackendGeminiAPI,
        HTTPClient: g.HTTPClient,
        HTTPOptions: genai.HTTPOptions{
            BaseURL:    firstNonEmpty(g.GeminiBaseURL, defaultGeminiBaseURL),
            APIVersion: "v1beta",
        },
    })
}

func (g *Gateway) sendGemini(ctx context.Context, prompt string, cfg Config) (string, error) {
    client, err := g.geminiClient(ctx, cfg)
    if err != nil {
        return "", err
    }
    resp, err := client.Models.GenerateContent(ctx, cfg.ModelOrDefault(), genai.Text(prompt), &genai.GenerateContentConfig{
        MaxOutputTokens: MaxOutputTokens,
    })
    if err != nil {
        return "", geminiError(err)
    }
    if len(resp.Candidates) == 0 {
        return "", ErrEmptyResponse
    }
    return resp.Text(), nil
}

// geminiError maps SDK errors onto APIError.
func geminiError(err error) error {
    var apiErr genai.APIError
    if errors.As(err, &apiErr) {
        return &APIError{Provider: ProviderGemini, Status: apiErr.Code, Message: apiErr.Message}
    }
    var ptr *genai.APIError
    if errors.As(err, &ptr) {
        return &APIError{Provider: ProviderGemini, Status: ptr.Code, Message: ptr.Message}
    }
    return err
}
