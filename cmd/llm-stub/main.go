// Command llm-stub serves canned OpenAI, Claude and Gemini answers for local
// end-to-end runs of "laudo generate --ai" without a real provider key.
package main

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/laudo/internal/llm/llmtest"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	addr := strings.TrimSpace(os.Getenv("ADDR"))
	if addr == "" {
		addr = ":8081"
	}
	stub := llmtest.NewStub(func(prompt string) string {
		log.Info().Int("prompt_chars", len(prompt)).Msg("prompt received")
		return cannedReport
	})

	log.Info().Str("addr", addr).Msg("llm-stub listening")
	srv := &http.Server{Addr: addr, Handler: stub, ReadHeaderTimeout: 10 * time.Second}
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("llm-stub stopped")
	}
}

// cannedReport carries every heading the report validator requires and is
// long enough to be accepted.
var cannedReport = `<h2>1. IDENTIFICAÇÃO</h2>
<p>Relatório gerado pelo servidor de testes. Os dados do processo, do periciado e da reclamada constam do cadastro do caso.</p>
<h2>5. HISTÓRICO MÉDICO OCUPACIONAL</h2>
<p>` + strings.Repeat("Histórico clínico e ocupacional descrito conforme os documentos anexados aos autos. ", 8) + `</p>
<h2>6. EXAME PERICIAL</h2>
<p>` + strings.Repeat("Exame físico sem particularidades dignas de nota no momento da perícia. ", 6) + `</p>
<h2>7. DISCUSSÃO</h2>
<p>` + strings.Repeat("A análise confronta as queixas com a atividade laboral e a literatura médica. ", 6) + `</p>
<h2>8. CONCLUSÕES</h2>
<p>Conclusões de teste, sem valor pericial.</p>`
