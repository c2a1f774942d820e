// Package report runs the report-generation strategy chain: each strategy
// produces a candidate, the validator accepts it or the chain escalates to
// the next strategy, and the last candidate is kept when none is accepted.
package report

import (
    "context"
    "errors"
    "fmt"
    "strings"
    "time"
    "unicode/utf8"

    "github.com/rs/zerolog/log"

    "github.com/hyperifyio/laudo/internal/budget"
    "github.com/hyperifyio/laudo/internal/extract"
    "github.com/hyperifyio/laudo/internal/llm"
    "github.com/hyperifyio/laudo/internal/metrics"
    "github.com/hyperifyio/laudo/internal/prompt"
    "github.com/hyperifyio/laudo/internal/record"
    "github.com/hyperifyio/laudo/internal/template"
    "github.com/hyperifyio/laudo/internal/textutil"
    "github.com/hyperifyio/laudo/internal/validate"
)

// Strategy names one way of producing a report.
type Strategy string

const (
    StrategyMega     Strategy = "mega"
    StrategySections Strategy = "sections"
    StrategyFallback Strategy = "fallback"
    StrategyTemplate Strategy = "template"
)

// ErrNoStrategy is returned when an explicit chain is empty or unknown.
var ErrNoStrategy = errors.New("no generation strategy")

// errNoRoom skips the mega-prompt when no case text fits the model context.
var errNoRoom = errors.New("case text does not fit the model context")

// Chain returns the default strategy order. With case text the optimized
// mega-prompt goes first; without it the chain starts section by section.
func Chain(hasText bool) []Strategy {
    if hasText {
        return []Strategy{StrategyMega, StrategySections, StrategyFallback}
    }
    return []Strategy{StrategySections, StrategyFallback}
}

// StyleChain returns a chain whose every step yields documents of style.
// Quick reports come from the one-shot prompts; detailed ones are drafted
// section by section and fall back to the fixed template.
func StyleChain(style template.Style, hasText bool) []Strategy {
    if style == template.StyleQuick {
        if hasText {
            return []Strategy{StrategyMega, StrategyFallback}
        }
        return []Strategy{StrategyFallback}
    }
    return []Strategy{StrategySections, StrategyTemplate}
}

// Attempt records the outcome of one strategy.
type Attempt struct {
    Strategy Strategy `json:"strategy"`
    Accepted bool     `json:"accepted"`
    Length   int      `json:"length"`
    Reasons  []string `json:"reasons,omitempty"`
}

// Result is a finished report.
type Result struct {
    HTML     []byte
    Filename string
    Style    template.Style
    Strategy Strategy
    Attempts []Attempt
    // Document is what HTML was rendered from; WritePDF accepts it as is.
    Document template.Document
}

// Options tune one Generate call.
type Options struct {
    // RawText is the extracted case text. Empty selects the chain without
    // the mega-prompt and feeds the case summary to the fallback.
    RawText string
    // Strategies overrides the default chain.
    Strategies []Strategy
}

// Pipeline generates reports for case records.
type Pipeline struct {
    Sender  llm.Sender
    Metrics *metrics.Metrics
    // Concurrency bounds the section batch. Zero sends all sections at once.
    Concurrency int
    // Today overrides the report date.
    Today func() record.Date
}

func (p *Pipeline) today() record.Date {
    if p.Today != nil {
        return p.Today()
    }
    return record.Today()
}

// Template renders the detailed report from the case fields alone.
func (p *Pipeline) Template(rec record.CaseRecord) (Result, error) {
    start := time.Now()
    res, err := p.fromTemplate(rec)
    p.Metrics.RecordReport("template", string(StrategyTemplate), time.Since(start), err)
    return res, err
}

func (p *Pipeline) fromTemplate(rec record.CaseRecord) (Result, error) {
    date := p.today()
    secs, err := template.StaticSections(rec, date)
    if err != nil {
        return Result{}, err
    }
    return p.finish(rec, detailed(rec, secs, date).doc, StrategyTemplate, nil)
}

// candidate is one strategy's output before assembly.
type candidate struct {
    doc  template.Document
    text string
}

// Generate runs the strategy chain for rec. Configuration errors are
// returned before any model call; model errors abort the chain.
func (p *Pipeline) Generate(ctx context.Context, rec record.CaseRecord, cfg llm.Config, opts Options) (Result, error) {
    start := time.Now()
    res, err := p.generate(ctx, rec, cfg, opts)
    p.Metrics.RecordReport("ai", string(res.Strategy), time.Since(start), err)
    return res, err
}

func (p *Pipeline) generate(ctx context.Context, rec record.CaseRecord, cfg llm.Config, opts Options) (Result, error) {
    cfg = cfg.Normalize()
    if err := cfg.Validate(); err != nil {
        return Result{}, err
    }
    if p.Sender == nil {
        return Result{}, llm.ErrNotConfigured
    }
    chain := opts.Strategies
    if len(chain) == 0 {
        chain = Chain(strings.TrimSpace(opts.RawText) != "")
    }
    date := p.today()
    sender := &meteredSender{next: p.Sender, metrics: p.Metrics}

    var (
        attempts []Attempt
        last     *candidate
        lastUsed Strategy
    )
    for _, s := range chain {
        c, err := p.run(ctx, s, rec, cfg, opts.RawText, date, sender)
        if errors.Is(err, errNoRoom) {
            attempts = append(attempts, Attempt{Strategy: s, Reasons: []string{err.Error()}})
            p.Metrics.RecordAttempt(string(s), false)
            log.Warn().Str("case", rec.ID).Str("strategy", string(s)).Str("model", cfg.ModelOrDefault()).Msg("strategy skipped")
            continue
        }
        if err != nil {
            log.Warn().Err(err).Str("case", rec.ID).Str("strategy", string(s)).Msg("generation failed")
            return Result{Attempts: attempts, Strategy: s}, fmt.Errorf("%s: %w", s, err)
        }
        v := validate.Report(c.text)
        attempts = append(attempts, Attempt{Strategy: s, Accepted: v.Accepted, Length: v.Length, Reasons: v.Reasons})
        p.Metrics.RecordAttempt(string(s), v.Accepted)
        log.Info().Str("case", rec.ID).Str("strategy", string(s)).Bool("accepted", v.Accepted).
            Int("length", v.Length).Int("placeholders", v.Placeholders).Strs("reasons", v.Reasons).Msg("report attempt")
        last, lastUsed = c, s
        if v.Accepted {
            break
        }
    }
    if last == nil {
        return Result{}, ErrNoStrategy
    }
    if !attempts[len(attempts)-1].Accepted {
        log.Warn().Str("case", rec.ID).Str("strategy", string(lastUsed)).Msg("no strategy passed validation; using last result")
    }
    return p.finish(rec, last.doc, lastUsed, attempts)
}

func (p *Pipeline) finish(rec record.CaseRecord, doc template.Document, s Strategy, attempts []Attempt) (Result, error) {
    html, err := template.Render(doc)
    if err != nil {
        return Result{}, err
    }
    name := template.Filename(rec.DisplayProcessNumber(), doc.Date)
    if doc.Style == template.StyleQuick {
        name = template.QuickFilename(rec.DisplayProcessNumber(), doc.Date)
    }
    return Result{HTML: html, Filename: name, Style: doc.Style, Strategy: s, Attempts: attempts, Document: doc}, nil
}

func (p *Pipeline) run(ctx context.Context, s Strategy, rec record.CaseRecord, cfg llm.Config, raw string, date record.Date, sender llm.Sender) (*candidate, error) {
    switch s {
    case StrategyMega:
        if strings.TrimSpace(raw) == "" {
            return nil, fmt.Errorf("%w: mega-prompt needs case text", ErrNoStrategy)
        }
        model, overhead := cfg.ModelOrDefault(), prompt.Mega(rec, "")
        persona := llm.Persona(cfg.Provider)
        if !budget.FitsInContext(model, llm.MaxOutputTokens, budget.EstimatePromptTokens(persona, overhead)) {
            return nil, errNoRoom
        }
        limit := budget.TextBudget(model, llm.MaxOutputTokens, persona+overhead, prompt.MegaTextLimit)
        if limit <= 0 {
            return nil, errNoRoom
        }
        if limit < utf8.RuneCountInString(raw) {
            log.Debug().Str("case", rec.ID).Int("limit", limit).Msg("case text cut to fit model context")
        }
        return p.blob(ctx, sender, prompt.Mega(rec, textutil.Truncate(raw, limit)), rec, cfg, date)
    case StrategySections:
        return p.sections(ctx, sender, rec, cfg, date)
    case StrategyFallback:
        return p.blob(ctx, sender, prompt.Fallback(rec, raw), rec, cfg, date)
    case StrategyTemplate:
        secs, err := template.StaticSections(rec, date)
        if err != nil {
            return nil, err
        }
        return detailed(rec, secs, date), nil
    }
    return nil, fmt.Errorf("%w: %q", ErrNoStrategy, s)
}

// blob sends one prompt whose answer is the whole report body.
func (p *Pipeline) blob(ctx context.Context, sender llm.Sender, pr string, rec record.CaseRecord, cfg llm.Config, date record.Date) (*candidate, error) {
    out, err := sender.Send(ctx, pr, cfg)
    if err != nil {
        return nil, err
    }
    body := extract.BodyFragment(out)
    return &candidate{
        doc:  template.Document{Style: template.StyleQuick, Case: rec, Body: body, Date: date},
        text: visibleText(body),
    }, nil
}

func detailed(rec record.CaseRecord, secs []template.Section, date record.Date) *candidate {
    var b strings.Builder
    for _, s := range secs {
        b.WriteString("<h2>")
        b.WriteString(s.Title)
        b.WriteString("</h2>\n")
        b.WriteString(s.Body)
        b.WriteString("\n")
    }
    return &candidate{
        doc:  template.Document{Style: template.StyleDetailed, Case: rec, Sections: secs, Date: date},
        text: visibleText(b.String()),
    }
}

// visibleText is what a reader of the fragment sees, the input of validation.
func visibleText(fragment string) string {
    return extract.FromHTML([]byte(fragment)).Text
}
