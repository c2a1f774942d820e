package report

import (
    "context"
    "time"

    "github.com/hyperifyio/laudo/internal/budget"
    "github.com/hyperifyio/laudo/internal/llm"
    "github.com/hyperifyio/laudo/internal/metrics"
)

// meteredSender records duration and estimated token usage of every call.
type meteredSender struct {
    next    llm.Sender
    metrics *metrics.Metrics
}

func (m *meteredSender) Send(ctx context.Context, prompt string, cfg llm.Config) (string, error) {
    start := time.Now()
    out, err := m.next.Send(ctx, prompt, cfg)
    m.metrics.RecordLLMCall(string(cfg.Provider), time.Since(start), budget.EstimatePromptTokens(llm.Persona(cfg.Provider), prompt), budget.EstimateTokens(out), err)
    return out, err
}
