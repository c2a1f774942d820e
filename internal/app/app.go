// Package app wires the case store, field extractor, NTEP matrix and report
// pipeline behind the operations shared by the CLI and the HTTP API.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/laudo/internal/cache"
	"github.com/hyperifyio/laudo/internal/extract"
	"github.com/hyperifyio/laudo/internal/llm"
	"github.com/hyperifyio/laudo/internal/metrics"
	"github.com/hyperifyio/laudo/internal/ntep"
	"github.com/hyperifyio/laudo/internal/record"
	"github.com/hyperifyio/laudo/internal/report"
	"github.com/hyperifyio/laudo/internal/store"
	"github.com/hyperifyio/laudo/internal/template"
	"github.com/hyperifyio/laudo/internal/validate"
)

// AIClient sends prompts and checks credentials. *llm.Gateway implements it.
type AIClient interface {
	llm.Sender
	Ping(ctx context.Context, cfg llm.Config) error
}

// App holds the wired components. It is safe for concurrent use to the
// extent the store is; every operation reloads state from disk.
type App struct {
	cfg      Config
	store    *store.Store
	matrix   *ntep.Matrix
	ai       AIClient
	cache    *cache.Responses
	metrics  *metrics.Metrics
	pipeline *report.Pipeline
}

// Option customizes New.
type Option func(*App)

// WithAIClient replaces the provider gateway, mainly for tests.
func WithAIClient(c AIClient) Option { return func(a *App) { a.ai = c } }

// WithToday fixes the report date.
func WithToday(today func() record.Date) Option {
	return func(a *App) { a.pipeline.Today = today }
}

// WithStore replaces the file store built from cfg.DataDir.
func WithStore(s *store.Store) Option { return func(a *App) { a.store = s } }

// New builds an App from a validated configuration.
func New(cfg Config, opts ...Option) (*App, error) {
	matrix := ntep.Default()
	if cfg.NTEPMatrix != "" {
		m, err := ntep.Load(cfg.NTEPMatrix)
		if err != nil {
			return nil, fmt.Errorf("load ntep matrix: %w", err)
		}
		matrix = m
	}
	st := store.New(cfg.DataDir)
	st.StrictPerms = cfg.StrictPerms

	a := &App{
		cfg:     cfg,
		store:   st,
		matrix:  matrix,
		ai:      newGateway(cfg.AIBaseURL),
		metrics: metrics.New(),
	}
	if cfg.CacheDir != "" {
		a.cache = &cache.Responses{Dir: cfg.CacheDir, StrictPerms: cfg.StrictPerms, MaxAge: cfg.CacheMaxAge}
		if n, err := a.cache.Purge(); err != nil {
			log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache purge failed")
		} else if n > 0 {
			log.Debug().Int("removed", n).Msg("expired cache entries purged")
		}
	}
	a.pipeline = &report.Pipeline{Metrics: a.metrics, Concurrency: cfg.Concurrency}
	for _, o := range opts {
		o(a)
	}
	a.pipeline.Sender = a.cache.Wrap(a.ai)
	return a, nil
}

// newGateway builds the provider gateway. A base URL redirects every
// provider, typically to a local stub or an OpenAI-compatible server.
func newGateway(base string) *llm.Gateway {
	g := &llm.Gateway{HTTPClient: newHTTPClient()}
	if base = strings.TrimRight(strings.TrimSpace(base), "/"); base != "" {
		root := strings.TrimSuffix(base, "/v1")
		g.OpenAIBaseURL = root + "/v1"
		g.ClaudeBaseURL = root
		g.GeminiBaseURL = root
	}
	return g
}

// ClearCache empties the model answer cache, when one is configured.
func (a *App) ClearCache() error {
	if a.cache == nil {
		return errors.New("cache not configured")
	}
	return a.cache.Clear()
}

// Metrics exposes the registry for the /metrics endpoint.
func (a *App) Metrics() *metrics.Metrics { return a.metrics }

func (a *App) CreateCase(rec record.CaseRecord) (record.CaseRecord, error) {
	if rec.Status != "" && !rec.Status.Valid() {
		return record.CaseRecord{}, fmt.Errorf("%w: status %q", ErrInvalidInput, rec.Status)
	}
	if rec.ProcessNumber == "" {
		rec.ProcessNumber = rec.Identification.ProcessNumber
	}
	return a.store.Create(rec)
}

func (a *App) ListCases() ([]record.CaseRecord, error) { return a.store.List() }

func (a *App) GetCase(id string) (record.CaseRecord, error) { return a.store.Get(id) }

// UpdateCase merges a JSON merge patch into case id. Fields absent from the
// patch keep their stored value; null clears a field.
func (a *App) UpdateCase(id string, patch []byte) (record.CaseRecord, error) {
	doc, err := parseCasePatch(patch)
	if err != nil {
		return record.CaseRecord{}, err
	}
	var mergeErr error
	out, err := a.PatchCase(id, func(r *record.CaseRecord) {
		next, err := mergeCase(*r, doc)
		if err != nil {
			mergeErr = err
			return
		}
		if next.Status == "" {
			next.Status = r.Status
		}
		*r = next
	})
	if err != nil {
		return record.CaseRecord{}, err
	}
	if mergeErr != nil {
		return record.CaseRecord{}, fmt.Errorf("%w: %v", ErrInvalidInput, mergeErr)
	}
	return out, nil
}

// PatchCase applies fn to the stored case.
func (a *App) PatchCase(id string, fn func(*record.CaseRecord)) (record.CaseRecord, error) {
	return a.store.Update(id, fn)
}

func (a *App) DeleteCase(id string) error { return a.store.Delete(id) }

func (a *App) ClearCases() error { return a.store.Clear() }

func (a *App) Stats() (store.Stats, error) { return a.store.Stats() }

// ErrInvalidInput marks request data the operations refuse outright.
var ErrInvalidInput = errors.New("invalid input")

// ExtractCase runs the field extractor over the case text, caches the
// result and fills the case fields that are still empty.
func (a *App) ExtractCase(id, text string) (record.ProcessedPDFData, error) {
	if _, err := a.store.Get(id); err != nil {
		return record.ProcessedPDFData{}, err
	}
	data, err := extract.Process(id, text)
	a.metrics.RecordExtraction(len(data.MissingFields), err)
	if err != nil {
		return record.ProcessedPDFData{}, err
	}
	if err := a.store.SaveExtraction(data); err != nil {
		return record.ProcessedPDFData{}, err
	}
	rec, err := a.store.Update(id, func(r *record.CaseRecord) {
		mergeMissing(r, data.ExtractedData)
		r.ExtractionProgress = 100
		if r.Status == record.StatusPending {
			r.Status = record.StatusProcessing
		}
	})
	if err != nil {
		return record.ProcessedPDFData{}, err
	}
	log.Info().Str("case", id).Str("process", rec.DisplayProcessNumber()).
		Int("confidence", data.Confidence.Identification).
		Strs("missing", data.MissingFields).Msg("case text extracted")
	return data, nil
}

// ClearExtraction drops the cached extraction of a case so the next AI
// report runs without case text. Case fields already filled stay.
func (a *App) ClearExtraction(id string) error {
	if _, err := a.store.Get(id); err != nil {
		return err
	}
	if err := a.store.ClearExtraction(id); err != nil {
		return err
	}
	_, err := a.store.Update(id, func(r *record.CaseRecord) { r.ExtractionProgress = 0 })
	if err != nil {
		return err
	}
	log.Info().Str("case", id).Msg("extraction cleared")
	return nil
}

// Extraction returns the cached extraction of a case.
func (a *App) Extraction(id string) (record.ProcessedPDFData, error) {
	return a.store.LoadExtraction(id)
}

// VerifyNTEP crosses the company CNAE and first position CBO with the
// alleged CIDs and stores the outcome on the case.
func (a *App) VerifyNTEP(id string) (record.NTEP, error) {
	rec, err := a.store.Get(id)
	if err != nil {
		return record.NTEP{}, err
	}
	var cbo string
	if pd := rec.ProfessionalData; pd != nil && len(pd.CurrentCompanyPositions) > 0 {
		cbo = pd.CurrentCompanyPositions[0].CBO
	}
	var cids []string
	for _, d := range rec.Diseases() {
		cids = append(cids, d.CID)
	}
	res, err := a.matrix.Verify(rec.Identification.Company.CNAE, cbo, cids)
	if err != nil {
		return record.NTEP{}, err
	}
	if _, err := a.store.Update(id, func(r *record.CaseRecord) { r.NTEP = &res }); err != nil {
		return record.NTEP{}, err
	}
	return res, nil
}

// ReportOptions selects how GenerateReport drafts the report.
type ReportOptions struct {
	// AI runs the model strategy chain; otherwise the fixed template is used.
	AI bool
	// Strategies overrides the default chain when AI is set.
	Strategies []report.Strategy
	// Style picks a chain that yields quick or detailed reports when
	// Strategies is empty. Accepts the names template.ParseStyle knows.
	Style string
}

// GenerateReport drafts the report of case id, stores its HTML and marks the
// case completed.
func (a *App) GenerateReport(ctx context.Context, id string, opts ReportOptions) (report.Result, error) {
	rec, err := a.store.Get(id)
	if err != nil {
		return report.Result{}, err
	}
	var res report.Result
	if opts.AI {
		cfg, err := a.resolveAI()
		if err != nil {
			return report.Result{}, err
		}
		raw := ""
		if data, err := a.store.LoadExtraction(id); err == nil {
			raw = data.RawText
		} else if !errors.Is(err, store.ErrNotFound) {
			log.Warn().Err(err).Str("case", id).Msg("cached extraction unreadable; generating without case text")
		}
		chain := opts.Strategies
		if len(chain) == 0 && strings.TrimSpace(opts.Style) != "" {
			chain = report.StyleChain(template.ParseStyle(opts.Style), strings.TrimSpace(raw) != "")
		}
		res, err = a.pipeline.Generate(ctx, rec, cfg, report.Options{RawText: raw, Strategies: chain})
		if err != nil {
			return res, err
		}
	} else {
		res, err = a.pipeline.Template(rec)
		if err != nil {
			return res, err
		}
	}
	if err := a.store.SaveReport(id, res.HTML); err != nil {
		return res, err
	}
	if _, err := a.store.Update(id, func(r *record.CaseRecord) {
		r.ReportGenerated = true
		r.Status = record.StatusCompleted
		r.FileName = res.Filename
	}); err != nil {
		return res, err
	}
	log.Info().Str("case", id).Str("strategy", string(res.Strategy)).
		Str("style", string(res.Style)).Str("file", res.Filename).Msg("report generated")
	return res, nil
}

// ReportAnalysis describes a finished report, for instance one a colleague
// wrote that the expert wants to compare against.
type ReportAnalysis struct {
	Structure  validate.Structure `json:"structure"`
	Validation validate.Result    `json:"validation"`
}

// AnalyzeReport lists the classic sections text contains and runs the
// checks generated drafts go through.
func (a *App) AnalyzeReport(text string) (ReportAnalysis, error) {
	if strings.TrimSpace(text) == "" {
		return ReportAnalysis{}, fmt.Errorf("%w: empty report", ErrInvalidInput)
	}
	return ReportAnalysis{
		Structure:  validate.AnalyzeStructure(text),
		Validation: validate.Report(text),
	}, nil
}

// Report returns the last stored report HTML of a case.
func (a *App) Report(id string) ([]byte, error) { return a.store.LoadReport(id) }

// ConfigureAI validates and stores the global provider configuration.
func (a *App) ConfigureAI(cfg llm.Config) (llm.Config, error) {
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return llm.Config{}, err
	}
	if err := a.store.SaveAIConfig(cfg); err != nil {
		return llm.Config{}, err
	}
	return cfg.Masked(), nil
}

// AIConfig returns the effective provider configuration with the key masked.
func (a *App) AIConfig() (llm.Config, error) {
	cfg, err := a.resolveAI()
	if err != nil {
		return llm.Config{}, err
	}
	return cfg.Masked(), nil
}

// TestAI checks the effective credentials with the cheapest provider call.
func (a *App) TestAI(ctx context.Context) error {
	cfg, err := a.resolveAI()
	if err != nil {
		return err
	}
	start := time.Now()
	err = a.ai.Ping(ctx, cfg)
	a.metrics.RecordLLMCall(string(cfg.Provider), time.Since(start), 0, 0, err)
	return err
}

// resolveAI prefers a complete provider configuration from flags, env or the
// config file and otherwise reads the stored one.
func (a *App) resolveAI() (llm.Config, error) {
	if c := a.cfg.AI.Normalize(); c.Provider != "" && c.APIKey != "" {
		return c, nil
	}
	cfg, err := a.store.LoadAIConfig()
	if errors.Is(err, store.ErrNotFound) {
		return llm.Config{}, llm.ErrNotConfigured
	}
	if err != nil {
		return llm.Config{}, err
	}
	return cfg, cfg.Validate()
}

// mergeMissing copies extracted values into dst fields that are still empty.
// Values a reviewer already entered are never replaced.
func mergeMissing(dst *record.CaseRecord, src record.CaseRecord) {
	fill(&dst.ProcessNumber, src.ProcessNumber)

	di, si := &dst.Identification, src.Identification
	fill(&di.LaborCourt, si.LaborCourt)
	fill(&di.County, si.County)
	fill(&di.ProcessNumber, si.ProcessNumber)
	fill(&di.JudgeName, si.JudgeName)
	fill(&di.Claimant.Name, si.Claimant.Name)
	fill(&di.Claimant.CPF, si.Claimant.CPF)
	fill(&di.Claimant.RG, si.Claimant.RG)
	fill(&di.Claimant.Address, si.Claimant.Address)
	fill(&di.Company.Name, si.Company.Name)
	fill(&di.Company.CNPJ, si.Company.CNPJ)
	fill(&di.Company.Address, si.Company.Address)

	if src.ExpertiseObjective != nil {
		if dst.ExpertiseObjective == nil {
			dst.ExpertiseObjective = src.ExpertiseObjective
		} else if len(dst.ExpertiseObjective.AllegedDiseases) == 0 {
			dst.ExpertiseObjective.AllegedDiseases = src.ExpertiseObjective.AllegedDiseases
		}
	}
	if src.MedicalHistory != nil {
		if dst.MedicalHistory == nil {
			dst.MedicalHistory = src.MedicalHistory
		} else if dst.MedicalHistory.INSS == nil {
			dst.MedicalHistory.INSS = src.MedicalHistory.INSS
		}
	}
	if src.ProfessionalData != nil {
		if dst.ProfessionalData == nil {
			dst.ProfessionalData = src.ProfessionalData
		} else {
			fill(&dst.ProfessionalData.Occupation, src.ProfessionalData.Occupation)
		}
	}
}

func fill(dst *string, v string) {
	if strings.TrimSpace(*dst) == "" && v != "" {
		*dst = v
	}
}
