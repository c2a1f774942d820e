package app

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/hyperifyio/laudo/internal/extract"
	"github.com/hyperifyio/laudo/internal/llm"
	"github.com/hyperifyio/laudo/internal/llm/llmtest"
	"github.com/hyperifyio/laudo/internal/ntep"
	"github.com/hyperifyio/laudo/internal/record"
	"github.com/hyperifyio/laudo/internal/report"
	"github.com/hyperifyio/laudo/internal/store"
	"github.com/hyperifyio/laudo/internal/template"
)

func fixedDay() record.Date { return record.NewDate(2026, 10, 15) }

func newTestApp(t *testing.T, ai AIClient) *App {
	t.Helper()
	opts := []Option{WithToday(fixedDay)}
	if ai != nil {
		opts = append(opts, WithAIClient(ai))
	}
	a, err := New(Config{DataDir: t.TempDir()}, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func petition(t *testing.T) string {
	t.Helper()
	b, err := os.ReadFile("../extract/testdata/peticao.txt")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return string(b)
}

func TestCaseLifecycle(t *testing.T) {
	a := newTestApp(t, nil)

	rec, err := a.CreateCase(record.CaseRecord{Identification: record.Identification{ProcessNumber: "0000442-27.2025.5.06.0024"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.ID == "" || rec.Status != record.StatusPending || rec.ProcessNumber != "0000442-27.2025.5.06.0024" {
		t.Fatalf("created %+v", rec)
	}
	if _, err := a.CreateCase(record.CaseRecord{Status: "archived"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown status accepted: %v", err)
	}

	got, err := a.UpdateCase(rec.ID, []byte(`{"identification":{"judgeName":"Dra. Ana"}}`))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Status != record.StatusPending || got.Identification.JudgeName != "Dra. Ana" {
		t.Fatalf("updated %+v", got)
	}

	list, err := a.ListCases()
	if err != nil || len(list) != 1 {
		t.Fatalf("list %d %v", len(list), err)
	}
	st, err := a.Stats()
	if err != nil || st.Total != 1 || st.Pending != 1 {
		t.Fatalf("stats %+v %v", st, err)
	}

	if err := a.DeleteCase(rec.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := a.GetCase(rec.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("get after delete: %v", err)
	}
}

func TestUpdateCase_PartialPatchKeepsUntouchedFields(t *testing.T) {
	a := newTestApp(t, nil)
	rec, err := a.CreateCase(record.CaseRecord{ProcessNumber: "0001234-11.2024.5.01.0001"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.ExtractCase(rec.ID, petition(t)); err != nil {
		t.Fatal(err)
	}
	if _, err := a.PatchCase(rec.ID, func(r *record.CaseRecord) {
		r.ReportGenerated = true
		r.FileName = "Laudo.html"
		r.NTEP = &record.NTEP{HasNTEP: true, RiskLevel: record.RiskHigh}
	}); err != nil {
		t.Fatal(err)
	}
	before, _ := a.GetCase(rec.ID)

	got, err := a.UpdateCase(rec.ID, []byte(`{"identification":{"judgeName":"Dr. Paulo"}}`))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Identification.JudgeName != "Dr. Paulo" {
		t.Fatalf("judge %q", got.Identification.JudgeName)
	}
	if got.Identification.Claimant.CPF != before.Identification.Claimant.CPF || got.Identification.Claimant.CPF == "" {
		t.Fatalf("claimant lost: %+v", got.Identification.Claimant)
	}
	if len(got.Diseases()) != len(before.Diseases()) || len(got.Diseases()) == 0 {
		t.Fatalf("diseases %d, want %d", len(got.Diseases()), len(before.Diseases()))
	}
	if !got.ReportGenerated || got.FileName != "Laudo.html" || got.NTEP == nil || got.ExtractionProgress != 100 ||
		got.ProcessNumber != "0001234-11.2024.5.01.0001" || got.Status != before.Status {
		t.Fatalf("untouched fields changed: %+v", got)
	}

	got, err = a.UpdateCase(rec.ID, []byte(`{"ntep":null,"fileName":null}`))
	if err != nil {
		t.Fatal(err)
	}
	if got.NTEP != nil || got.FileName != "" || !got.ReportGenerated {
		t.Fatalf("null should clear only the named fields: %+v", got)
	}

	for _, bad := range []string{`[1]`, `{"status":"archived"}`, `{"extractionProgress":"cem"}`, `nope`} {
		if _, err := a.UpdateCase(rec.ID, []byte(bad)); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: got %v", bad, err)
		}
	}
	if _, err := a.UpdateCase("missing", []byte(`{}`)); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("missing case: %v", err)
	}
}

func TestExtractCase_FillsOnlyEmptyFields(t *testing.T) {
	a := newTestApp(t, nil)
	rec, err := a.CreateCase(record.CaseRecord{Identification: record.Identification{
		Claimant: record.Claimant{Name: "Maria Rita dos Santos"},
	}})
	if err != nil {
		t.Fatal(err)
	}

	data, err := a.ExtractCase(rec.ID, petition(t))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if data.ProcessID != rec.ID || data.RawText == "" {
		t.Fatalf("extraction %+v", data.ProcessID)
	}

	got, err := a.GetCase(rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Identification.Claimant.Name != "Maria Rita dos Santos" {
		t.Fatalf("typed name replaced: %q", got.Identification.Claimant.Name)
	}
	if got.Identification.Claimant.CPF != "80038131404" || got.ProcessNumber != "0000442-27.2025.5.06.0024" {
		t.Fatalf("extracted fields not merged: %+v", got.Identification)
	}
	if got.ExtractionProgress != 100 || got.Status != record.StatusProcessing {
		t.Fatalf("progress %d status %s", got.ExtractionProgress, got.Status)
	}
	if len(got.Diseases()) == 0 {
		t.Fatal("diseases not merged")
	}

	cached, err := a.Extraction(rec.ID)
	if err != nil || cached.RawText != data.RawText {
		t.Fatalf("cached extraction: %v", err)
	}

	if _, err := a.ExtractCase(rec.ID, "curto"); !errors.Is(err, extract.ErrEmptyText) {
		t.Fatalf("short text: %v", err)
	}
	if _, err := a.ExtractCase("missing", petition(t)); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("unknown case: %v", err)
	}
}

func TestClearExtraction_KeepsFilledFields(t *testing.T) {
	a := newTestApp(t, nil)
	rec, _ := a.CreateCase(record.CaseRecord{})
	if _, err := a.ExtractCase(rec.ID, petition(t)); err != nil {
		t.Fatal(err)
	}

	if err := a.ClearExtraction(rec.ID); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := a.Extraction(rec.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("extraction still cached: %v", err)
	}
	got, _ := a.GetCase(rec.ID)
	if got.Identification.Claimant.CPF != "80038131404" || got.ExtractionProgress != 0 {
		t.Fatalf("cpf %q progress %d", got.Identification.Claimant.CPF, got.ExtractionProgress)
	}
	if err := a.ClearExtraction(rec.ID); err != nil {
		t.Fatalf("second clear: %v", err)
	}
	if err := a.ClearExtraction("missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("unknown case: %v", err)
	}
}

func TestVerifyNTEP(t *testing.T) {
	a := newTestApp(t, nil)
	rec, err := a.CreateCase(record.CaseRecord{
		Identification: record.Identification{Company: record.Company{Name: "SUPERMERCADO", CNAE: "4711-3/02"}},
		ProfessionalData: &record.ProfessionalData{
			CurrentCompanyPositions: []record.Position{{Title: "Operadora de caixa", CBO: "4211-25"}},
		},
		ExpertiseObjective: &record.ExpertiseObjective{
			AllegedDiseases: []record.Disease{{CID: "G56.0", Name: "Síndrome do túnel do carpo"}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	res, err := a.VerifyNTEP(rec.ID)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !res.HasNTEP || res.RiskLevel != record.RiskHigh || res.CBO != "4211-25" {
		t.Fatalf("ntep %+v", res)
	}
	got, _ := a.GetCase(rec.ID)
	if got.NTEP == nil || !got.NTEP.HasNTEP {
		t.Fatalf("result not stored: %+v", got.NTEP)
	}

	bare, _ := a.CreateCase(record.CaseRecord{})
	if _, err := a.VerifyNTEP(bare.ID); !errors.Is(err, ntep.ErrMissingInput) {
		t.Fatalf("missing inputs: %v", err)
	}
}

func TestGenerateReport_Template(t *testing.T) {
	a := newTestApp(t, nil)
	rec, _ := a.CreateCase(record.CaseRecord{ProcessNumber: "0001234-11.2024.5.01.0001"})

	res, err := a.GenerateReport(context.Background(), rec.ID, ReportOptions{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if res.Strategy != report.StrategyTemplate || res.Filename != "Laudo_Pericial_00012341120245010001_2026-10-15.html" {
		t.Fatalf("result %s %s", res.Strategy, res.Filename)
	}
	got, _ := a.GetCase(rec.ID)
	if !got.ReportGenerated || got.Status != record.StatusCompleted || got.FileName != res.Filename {
		t.Fatalf("case not marked: %+v", got)
	}
	html, err := a.Report(rec.ID)
	if err != nil || string(html) != string(res.HTML) {
		t.Fatalf("stored report differs: %v", err)
	}
}

func TestGenerateReport_AINotConfigured(t *testing.T) {
	srv := llmtest.New(nil)
	defer srv.Close()
	a := newTestApp(t, srv.Gateway())
	rec, _ := a.CreateCase(record.CaseRecord{})

	if _, err := a.GenerateReport(context.Background(), rec.ID, ReportOptions{AI: true}); !errors.Is(err, llm.ErrNotConfigured) {
		t.Fatalf("want not configured, got %v", err)
	}
	if srv.Calls() != 0 {
		t.Fatalf("calls %d", srv.Calls())
	}
	got, _ := a.GetCase(rec.ID)
	if got.ReportGenerated {
		t.Fatal("failed generation marked the case")
	}
}

func TestGenerateReport_AIUsesCachedText(t *testing.T) {
	body := "<h2>1. IDENTIFICAÇÃO</h2><p>" + strings.Repeat("texto pericial ", 120) +
		"</p><h2>5. HISTÓRICO MÉDICO</h2><h2>6. EXAME PERICIAL</h2><h2>7. DISCUSSÃO</h2><h2>8. CONCLUSÕES</h2>"
	srv := llmtest.New(func(string) string { return body })
	defer srv.Close()
	a := newTestApp(t, srv.Gateway())
	if _, err := a.ConfigureAI(llm.Config{Provider: llm.ProviderOpenAI, APIKey: "sk-test-123456"}); err != nil {
		t.Fatal(err)
	}
	rec, _ := a.CreateCase(record.CaseRecord{})
	if _, err := a.ExtractCase(rec.ID, petition(t)); err != nil {
		t.Fatal(err)
	}

	res, err := a.GenerateReport(context.Background(), rec.ID, ReportOptions{AI: true})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if res.Strategy != report.StrategyMega || srv.Calls() != 1 {
		t.Fatalf("strategy %s calls %d", res.Strategy, srv.Calls())
	}
	if !strings.Contains(srv.Prompts()[0], "Valor da causa") {
		t.Fatal("mega prompt should carry the cached case text")
	}
	got, _ := a.GetCase(rec.ID)
	if got.FileName != res.Filename || !strings.HasPrefix(res.Filename, "Laudo_AI_Rapido_") {
		t.Fatalf("file %q", got.FileName)
	}
}

func TestConfigureAI(t *testing.T) {
	srv := llmtest.New(nil)
	defer srv.Close()
	a := newTestApp(t, srv.Gateway())

	if _, err := a.ConfigureAI(llm.Config{Provider: "mistral", APIKey: "k"}); !errors.Is(err, llm.ErrUnsupportedProvider) {
		t.Fatalf("got %v", err)
	}
	if _, err := a.AIConfig(); !errors.Is(err, llm.ErrNotConfigured) {
		t.Fatalf("empty store: %v", err)
	}
	masked, err := a.ConfigureAI(llm.Config{Provider: llm.ProviderClaude, APIKey: " sk-ant-abcdef123 ", Model: "claude-3-opus-20240229"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(masked.APIKey, "abcdef") || masked.Model != "claude-3-5-sonnet-20241022" {
		t.Fatalf("masked %+v", masked)
	}
	shown, err := a.AIConfig()
	if err != nil || shown != masked {
		t.Fatalf("AIConfig %+v %v", shown, err)
	}
	if err := a.TestAI(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}

	srv.Status = 401
	srv.Message = "invalid x-api-key"
	var apiErr *llm.APIError
	if err := a.TestAI(context.Background()); !errors.As(err, &apiErr) || apiErr.Status != 401 {
		t.Fatalf("want 401, got %v", err)
	}
}

func TestResolveAI_ConfigBeatsStore(t *testing.T) {
	a, err := New(Config{DataDir: t.TempDir(), AI: llm.Config{Provider: llm.ProviderGemini, APIKey: "AIza-env-key"}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.ConfigureAI(llm.Config{Provider: llm.ProviderOpenAI, APIKey: "sk-stored"}); err != nil {
		t.Fatal(err)
	}
	cfg, err := a.AIConfig()
	if err != nil || cfg.Provider != llm.ProviderGemini {
		t.Fatalf("got %+v %v", cfg, err)
	}
}

func TestGenerateReport_CachedAnswersSkipProvider(t *testing.T) {
	body := "<h2>1. IDENTIFICAÇÃO</h2><p>" + strings.Repeat("texto pericial ", 120) +
		"</p><h2>5. HISTÓRICO MÉDICO</h2><h2>6. EXAME PERICIAL</h2><h2>7. DISCUSSÃO</h2><h2>8. CONCLUSÕES</h2>"
	srv := llmtest.New(func(string) string { return body })
	defer srv.Close()
	a, err := New(Config{
		DataDir:   t.TempDir(),
		CacheDir:  t.TempDir(),
		AIBaseURL: srv.URL + "/v1/",
		AI:        llm.Config{Provider: llm.ProviderGemini, APIKey: "gm-key-123456"},
	}, WithToday(fixedDay))
	if err != nil {
		t.Fatal(err)
	}
	rec, _ := a.CreateCase(record.CaseRecord{})
	if _, err := a.ExtractCase(rec.ID, petition(t)); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if _, err := a.GenerateReport(context.Background(), rec.ID, ReportOptions{AI: true}); err != nil {
			t.Fatalf("generate %d: %v", i, err)
		}
	}
	if srv.Calls() != 1 {
		t.Fatalf("provider called %d times", srv.Calls())
	}

	if err := a.ClearCache(); err != nil {
		t.Fatal(err)
	}
	if _, err := a.GenerateReport(context.Background(), rec.ID, ReportOptions{AI: true}); err != nil {
		t.Fatal(err)
	}
	if srv.Calls() != 2 {
		t.Fatalf("cleared cache still answered, calls %d", srv.Calls())
	}
}

func TestClearCache_NotConfigured(t *testing.T) {
	if err := newTestApp(t, nil).ClearCache(); err == nil {
		t.Fatal("expected error without a cache dir")
	}
}

func TestGenerateReport_StylePicksChain(t *testing.T) {
	srv := llmtest.New(func(string) string { return "curto" })
	defer srv.Close()
	a := newTestApp(t, srv.Gateway())
	if _, err := a.ConfigureAI(llm.Config{Provider: llm.ProviderOpenAI, APIKey: "sk-test-123456"}); err != nil {
		t.Fatal(err)
	}
	rec, _ := a.CreateCase(record.CaseRecord{ProcessNumber: "0001234-11.2024.5.01.0001"})

	quick, err := a.GenerateReport(context.Background(), rec.ID, ReportOptions{AI: true, Style: "rápido"})
	if err != nil {
		t.Fatalf("quick: %v", err)
	}
	if quick.Strategy != report.StrategyFallback || len(quick.Attempts) != 1 || srv.Calls() != 1 {
		t.Fatalf("quick ran %s with %d attempts and %d calls", quick.Strategy, len(quick.Attempts), srv.Calls())
	}
	if quick.Style != template.StyleQuick {
		t.Fatalf("quick style %s", quick.Style)
	}

	detailed, err := a.GenerateReport(context.Background(), rec.ID, ReportOptions{AI: true, Style: "detalhado"})
	if err != nil {
		t.Fatalf("detailed: %v", err)
	}
	var ran []report.Strategy
	for _, at := range detailed.Attempts {
		ran = append(ran, at.Strategy)
	}
	if len(ran) != 2 || ran[0] != report.StrategySections || ran[1] != report.StrategyTemplate {
		t.Fatalf("detailed chain %v", ran)
	}
	if detailed.Style != template.StyleDetailed {
		t.Fatalf("detailed style %s", detailed.Style)
	}
}

func TestAnalyzeReport(t *testing.T) {
	a := newTestApp(t, nil)
	text := "1. IDENTIFICAÇÃO\n2. HISTÓRICO LABORAL\n3. EXAME FÍSICO\n" + strings.Repeat("achados clínicos ", 100) +
		"\n4. DISCUSSÃO\n5. CONCLUSÃO\n6. RESPOSTAS AOS QUESITOS\n"
	res, err := a.AnalyzeReport(text)
	if err != nil {
		t.Fatal(err)
	}
	st := res.Structure
	if !st.Identification || !st.History || !st.PhysicalExam || !st.Discussion || !st.Conclusion || !st.QuestionnaireReplies {
		t.Fatalf("structure %+v", st)
	}
	if st.DocumentAnalysis {
		t.Fatal("document analysis reported without its heading")
	}
	if !res.Validation.Accepted {
		t.Fatalf("complete report rejected: %v", res.Validation.Reasons)
	}

	short, err := a.AnalyzeReport("CONCLUSÃO: nexo causal ausente.")
	if err != nil {
		t.Fatal(err)
	}
	if short.Validation.Accepted || !short.Structure.Conclusion || short.Structure.Identification {
		t.Fatalf("short report %+v", short)
	}
	if _, err := a.AnalyzeReport("  \n"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty report: %v", err)
	}
}
