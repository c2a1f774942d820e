package report

import (
    "context"

    "golang.org/x/sync/errgroup"

    "github.com/hyperifyio/laudo/internal/extract"
    "github.com/hyperifyio/laudo/internal/llm"
    "github.com/hyperifyio/laudo/internal/prompt"
    "github.com/hyperifyio/laudo/internal/record"
    "github.com/hyperifyio/laudo/internal/template"
)

// sections dispatches the isolated section prompts as one concurrent batch
// and recombines the answers by position, not arrival order. The first
// failure cancels the rest of the batch.
func (p *Pipeline) sections(ctx context.Context, sender llm.Sender, rec record.CaseRecord, cfg llm.Config, date record.Date) (*candidate, error) {
    prompts := prompt.Sections(rec)
    bodies := make([]string, len(prompts))

    g, gctx := errgroup.WithContext(ctx)
    if p.Concurrency > 0 {
        g.SetLimit(p.Concurrency)
    }
    for i, sp := range prompts {
        if sp.Static != "" {
            bodies[i] = sp.Static
            continue
        }
        i, sp := i, sp
        g.Go(func() error {
            out, err := sender.Send(gctx, sp.Prompt, cfg)
            if err != nil {
                return err
            }
            bodies[i] = extract.BodyFragment(out)
            return nil
        })
    }
    if err := g.Wait(); err != nil {
        return nil, err
    }

    secs := make([]template.Section, len(prompts))
    for i, sp := range prompts {
        secs[i] = template.Section{Title: sp.Title, Body: bodies[i]}
    }
    return detailed(rec, secs, date), nil
}
