package prompt

import (
    "fmt"
    "strings"

    "github.com/hyperifyio/laudo/internal/record"
    "github.com/hyperifyio/laudo/internal/textutil"
)

const (
    // MegaTextLimit bounds the case text embedded in the mega-prompt.
    MegaTextLimit = 50000
    // FallbackTextLimit bounds the case text of the low-effort prompt.
    FallbackTextLimit = 8000
    // NotFound is the literal the model must use for facts absent from the
    // case documents.
    NotFound = "NÃO ENCONTRADO NOS AUTOS"
)

// Mega builds the single optimized prompt that asks for the whole report at
// once from the case text.
func Mega(rec record.CaseRecord, rawText string) string {
    var b strings.Builder
    b.WriteString("Sua tarefa é redigir o CORPO COMPLETO de um laudo médico pericial trabalhista em HTML, a partir dos autos transcritos abaixo.\n\n")
    b.WriteString("REGRAS OBRIGATÓRIAS:\n")
    b.WriteString("1. Use somente informações efetivamente encontradas nos autos ou nos dados estruturados.\n")
    fmt.Fprintf(&b, "2. Substitua TODAS as instruções entre [colchetes] do modelo por conteúdo real. Quando a informação não constar dos autos, escreva exatamente \"%s\".\n", NotFound)
    b.WriteString("3. Não deixe colchetes, reticências ou campos \"a preencher\" na resposta final.\n")
    b.WriteString("4. Responda apenas com o fragmento HTML (sem <html>, <head> ou <body>), usando <h2> para as seções, <h3> para subseções, <p> para parágrafos e <table> para dados tabulares.\n")
    b.WriteString("5. Mantenha exatamente os títulos de seção do modelo, na mesma ordem.\n\n")

    b.WriteString("DADOS ESTRUTURADOS DO CASO:\n")
    if s := CaseSummary(rec); s != "" {
        b.WriteString(s)
    } else {
        b.WriteString("(nenhum dado estruturado cadastrado)\n")
    }

    b.WriteString("\nMODELO DO LAUDO:\n")
    b.WriteString(megaTemplate)

    text := textutil.Truncate(rawText, MegaTextLimit)
    b.WriteString("\nAUTOS DO PROCESSO")
    if len([]rune(rawText)) > MegaTextLimit {
        fmt.Fprintf(&b, " (primeiros %d caracteres)", MegaTextLimit)
    }
    b.WriteString(":\n<<<\n")
    b.WriteString(text)
    b.WriteString("\n>>>\n")
    return b.String()
}

// megaTemplate describes the report structure section by section.
const megaTemplate = `<h2>1. IDENTIFICAÇÃO</h2>
<h3>1.1. Dados do Processo</h3>
<table><tr><th>Processo</th><td>[número CNJ]</td></tr><tr><th>Vara</th><td>[vara do trabalho]</td></tr><tr><th>Comarca</th><td>[comarca]</td></tr></table>
<h3>1.2. Qualificação do Periciando</h3>
<p>[nome completo, CPF, RG, data de nascimento, endereço]</p>
<h3>1.3. Qualificação da Empresa Reclamada</h3>
<p>[razão social, CNPJ, CNAE, endereço]</p>
<h2>2. OBJETIVO DA PERÍCIA</h2>
<p>[doenças alegadas com CID-10 e pontos a esclarecer: diagnóstico, nexo causal, incapacidade]</p>
<h2>3. DOCUMENTAÇÃO ANALISADA</h2>
<table><tr><th>Documento</th><th>Data</th><th>Emitente</th><th>Conteúdo relevante</th></tr><tr><td>[tipo]</td><td>[data]</td><td>[médico/CRM]</td><td>[CID e achados]</td></tr></table>
<h2>4. HISTÓRICO LABORAL</h2>
<p>[admissão, demissão, funções, atividades, jornada, exposição a riscos ergonômicos, físicos e psicossociais]</p>
<h2>5. HISTÓRICO MÉDICO</h2>
<table><tr><th>Benefício</th><th>Início</th><th>Fim</th><th>CID</th></tr><tr><td>[B31/B91]</td><td>[data]</td><td>[data]</td><td>[CID]</td></tr></table>
<p>[ASOs, atestados, tratamentos e evolução clínica]</p>
<h2>6. EXAME PERICIAL</h2>
<h3>6.1. Anamnese Pericial</h3><p>[queixa principal e história da moléstia atual segundo os autos]</p>
<h3>6.2. Exame Físico</h3><p>[roteiro de exame com testes específicos para cada patologia alegada]</p>
<h2>7. DISCUSSÃO</h2>
<p>[para cada patologia: definição, etiologia ocupacional e não ocupacional, critérios de nexo (Lei 8.213/91, Decreto 3.048/99, NTEP), prognóstico]</p>
<h2>8. CONCLUSÕES</h2>
<p>[síntese objetiva: diagnóstico, nexo causal ou concausal, incapacidade, consolidação]</p>
<h2>9. RESPOSTAS AOS QUESITOS</h2>
<p>[quesitos do juízo e das partes, transcritos dos autos com respostas fundamentadas]</p>
`

// Fallback builds the low-effort single-shot prompt. It uses only the first
// FallbackTextLimit characters of text, or the case summary when there is
// no text at all.
func Fallback(rec record.CaseRecord, text string) string {
    var b strings.Builder
    b.WriteString("Redija um laudo médico pericial trabalhista completo em HTML (apenas o fragmento do corpo), ")
    b.WriteString("com as seções IDENTIFICAÇÃO, OBJETIVO DA PERÍCIA, DOCUMENTAÇÃO ANALISADA, HISTÓRICO LABORAL, HISTÓRICO MÉDICO, EXAME PERICIAL, DISCUSSÃO, CONCLUSÕES e RESPOSTAS AOS QUESITOS, cada uma em um <h2>.\n")
    fmt.Fprintf(&b, "Quando algum dado não estiver disponível, escreva \"%s\".\n\n", NotFound)
    if strings.TrimSpace(text) == "" {
        b.WriteString("Dados do caso:\n")
        b.WriteString(CaseSummary(rec))
        return b.String()
    }
    b.WriteString("Trecho dos autos:\n")
    b.WriteString(textutil.Truncate(text, FallbackTextLimit))
    b.WriteString("\n")
    return b.String()
}
