package llm

import (
    "context"
    "errors"
    "strings"

    "github.com/anthropics/anthropic-sdk-go"
    "github.com/anthropics/anthropic-sdk-go/option"
)

func (g *Gateway) claudeClient(cfg Config) anthropic.Client {
    opts := []option.RequestOption{
        option.WithAPIKey(cfg.APIKey),
        option.WithBaseURL(strings.TrimRight(firstNonEmpty(g.ClaudeBaseURL, defaultClaudeBaseURL), "/") + "/"),
        option.WithMaxRetries(0),
    }
    if g.HTTPClient != nil {
        opts = append(opts, option.WithHTTPClient(g.HTTPClient))
    }
    return anthropic.NewClient(opts...)
}

func (g *Gateway) sendClaude(ctx context.Context, content string, limit int, cfg Config) (string, error) {
    client := g.claudeClient(cfg)
    msg, err := client.Messages.New(ctx, anthropic.MessageNewParams{
        Model:     anthropic.Model(cfg.ModelOrDefault()),
        MaxTokens: int64(limit),
        Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(content))},
    })
    if err != nil {
        return "", claudeError(err)
    }
    for _, block := range msg.Content {
        if block.Type == "text" {
            return block.Text, nil
        }
    }
    return "", ErrEmptyResponse
}

// claudeError maps SDK errors onto APIError with the provider's message.
func claudeError(err error) error {
    var apiErr *anthropic.Error
    if errors.As(err, &apiErr) {
        return &APIError{Provider: ProviderClaude, Status: apiErr.StatusCode, Message: errorMessage([]byte(apiErr.RawJSON()), apiErr.Error())}
    }
    return err
}
