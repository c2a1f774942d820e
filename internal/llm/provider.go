package llm

import (
    "context"
    "errors"
    "strings"

    openai "github.com/sashabaranov/go-openai"
)

// Client is the subset of the OpenAI chat API the gateway uses. Any
// OpenAI-compatible backend can be adapted to it.
type Client interface {
    CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ModelLister is an optional capability used by Ping.
type ModelLister interface {
    ListModels(ctx context.Context) (openai.ModelsList, error)
}

// OpenAIProvider adapts *openai.Client to the Client/ModelLister interfaces.
type OpenAIProvider struct {
    Inner *openai.Client
}

func (p *OpenAIProvider) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
    return p.Inner.CreateChatCompletion(ctx, request)
}

func (p *OpenAIProvider) ListModels(ctx context.Context) (openai.ModelsList, error) {
    return p.Inner.ListModels(ctx)
}

// openAIPersona is the system message of every chat completion.
const openAIPersona = "Você é um médico perito judicial brasileiro especializado em medicina do trabalho e laudos periciais trabalhistas. Gere textos técnicos, profissionais e bem fundamentados."

func (g *Gateway) openAIClient(cfg Config) Client {
    if g.NewOpenAI != nil {
        return g.NewOpenAI(cfg)
    }
    oc := openai.DefaultConfig(cfg.APIKey)
    if g.OpenAIBaseURL != "" {
        oc.BaseURL = strings.TrimRight(g.OpenAIBaseURL, "/")
    }
    if g.HTTPClient != nil {
        oc.HTTPClient = g.HTTPClient
    }
    return &OpenAIProvider{Inner: openai.NewClientWithConfig(oc)}
}

func (g *Gateway) sendOpenAI(ctx context.Context, prompt string, cfg Config) (string, error) {
    resp, err := g.openAIClient(cfg).CreateChatCompletion(ctx, openai.ChatCompletionRequest{
        Model: cfg.ModelOrDefault(),
        Messages: []openai.ChatCompletionMessage{
            {Role: openai.ChatMessageRoleSystem, Content: openAIPersona},
            {Role: openai.ChatMessageRoleUser, Content: prompt},
        },
        Temperature: 0.7,
        MaxTokens:   MaxOutputTokens,
    })
    if err != nil {
        return "", openAIError(err)
    }
    if len(resp.Choices) == 0 {
        return "", ErrEmptyResponse
    }
    return resp.Choices[0].Message.Content, nil
}

func (g *Gateway) pingOpenAI(ctx context.Context, cfg Config) error {
    c := g.openAIClient(cfg)
    if ml, ok := c.(ModelLister); ok {
        _, err := ml.ListModels(ctx)
        return openAIError(err)
    }
    _, err := g.sendOpenAI(ctx, "test", cfg)
    return err
}

// openAIError maps go-openai errors onto APIError so every provider fails
// the same way.
func openAIError(err error) error {
    if err == nil {
        return nil
    }
    var apiErr *openai.APIError
    if errors.As(err, &apiErr) {
        return &APIError{Provider: ProviderOpenAI, Status: apiErr.HTTPStatusCode, Message: apiErr.Message}
    }
    var reqErr *openai.RequestError
    if errors.As(err, &reqErr) {
        msg := ""
        if reqErr.Err != nil {
            msg = reqErr.Err.Error()
        }
        return &APIError{Provider: ProviderOpenAI, Status: reqErr.HTTPStatusCode, Message: msg}
    }
    return err
}
