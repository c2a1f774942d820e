// Package prompt builds the model instructions for each report-generation
// strategy: nine isolated section prompts, one optimized mega-prompt over the
// case text, and a low-effort fallback.
package prompt

import (
    "fmt"
    "strings"

    "github.com/hyperifyio/laudo/internal/record"
)

// QuestionnairePending is the body of the questionnaire section when no
// party has submitted questions yet.
const QuestionnairePending = `<p><em>[Aguardando apresentação dos quesitos das partes e do juízo]</em></p>`

// Titles are the fixed section headings, in report order.
var Titles = []string{
    "1. IDENTIFICAÇÃO",
    "2. OBJETIVO DA PERÍCIA",
    "3. DOCUMENTAÇÃO ANALISADA",
    "4. HISTÓRICO LABORAL",
    "5. HISTÓRICO MÉDICO",
    "6. EXAME PERICIAL",
    "7. DISCUSSÃO",
    "8. CONCLUSÕES",
    "9. RESPOSTAS AOS QUESITOS",
}

// SectionPrompt is one isolated section request. When Static is non-empty
// the section needs no model call and Static is its body.
type SectionPrompt struct {
    Title  string
    Prompt string
    Static string
}

// Sections returns the nine section prompts. Each one references only the
// fields of its own section.
func Sections(rec record.CaseRecord) []SectionPrompt {
    return []SectionPrompt{
        {Title: Titles[0], Prompt: identification(rec)},
        {Title: Titles[1], Prompt: objective(rec)},
        {Title: Titles[2], Prompt: documentation(rec)},
        {Title: Titles[3], Prompt: laborHistory(rec)},
        {Title: Titles[4], Prompt: medicalHistory(rec)},
        {Title: Titles[5], Prompt: exam(rec)},
        {Title: Titles[6], Prompt: discussion(rec)},
        {Title: Titles[7], Prompt: conclusions(rec)},
        questionnaires(rec),
    }
}

func orNA(s string) string {
    if strings.TrimSpace(s) == "" {
        return "Não informado"
    }
    return s
}

func dateOr(d *record.Date, fallback string) string {
    if d == nil || d.IsZero() {
        return fallback
    }
    return d.BR()
}

func yesNo(b bool) string {
    if b {
        return "Sim"
    }
    return "Não"
}

func diseaseList(ds []record.Disease, sep string, withSource bool) string {
    parts := make([]string, 0, len(ds))
    for _, d := range ds {
        s := d.CID + " - " + d.Name
        if withSource && d.Source != "" {
            s += fmt.Sprintf(" (fonte: %s)", d.Source)
        }
        parts = append(parts, s)
    }
    return strings.Join(parts, sep)
}

func identification(rec record.CaseRecord) string {
    id := rec.Identification
    var b strings.Builder
    b.WriteString("Você é um médico perito judicial brasileiro.\n\n")
    b.WriteString("Escreva a seção \"IDENTIFICAÇÃO\" de um laudo médico pericial trabalhista de forma profissional.\n\n")
    b.WriteString("Dados do processo:\n")
    fmt.Fprintf(&b, "- Processo nº: %s\n", rec.DisplayProcessNumber())
    fmt.Fprintf(&b, "- Vara: %s\n", id.LaborCourt)
    fmt.Fprintf(&b, "- Comarca: %s\n", id.County)
    fmt.Fprintf(&b, "- Juiz(a): %s\n\n", orNA(id.JudgeName))
    b.WriteString("Reclamante:\n")
    fmt.Fprintf(&b, "- Nome: %s\n- CPF: %s\n- RG: %s\n- Endereço: %s\n", id.Claimant.Name, id.Claimant.CPF, id.Claimant.RG, id.Claimant.Address)
    if id.Claimant.Phone != "" {
        fmt.Fprintf(&b, "- Telefone: %s\n", id.Claimant.Phone)
    }
    if id.Claimant.Email != "" {
        fmt.Fprintf(&b, "- E-mail: %s\n", id.Claimant.Email)
    }
    b.WriteString("\nEmpresa Reclamada:\n")
    fmt.Fprintf(&b, "- Razão Social: %s\n", id.Company.Name)
    if id.Company.CNPJ != "" {
        fmt.Fprintf(&b, "- CNPJ: %s\n", id.Company.CNPJ)
    }
    if id.Company.CNAE != "" {
        fmt.Fprintf(&b, "- CNAE: %s\n", id.Company.CNAE)
    }
    fmt.Fprintf(&b, "- Endereço: %s\n", id.Company.Address)
    writeAssistant(&b, "Assistente Técnico do Reclamante", rec.TechnicalAssistants.Claimant)
    writeAssistant(&b, "Assistente Técnico da Reclamada", rec.TechnicalAssistants.Defendant)
    b.WriteString("\nEstruture em subseções:\n1.1. Dados do Processo\n1.2. Qualificação do Periciando\n1.3. Qualificação da Empresa Reclamada\n1.4. Assistentes Técnicos (se houver)\n\n")
    b.WriteString("Use linguagem formal e organize as informações de forma clara em HTML.\n")
    return b.String()
}

func writeAssistant(b *strings.Builder, label string, a *record.Assistant) {
    if a == nil {
        return
    }
    fmt.Fprintf(b, "\n%s:\n- Nome: %s\n- CRM: %s\n- Contato: %s / %s\n", label, a.Name, a.CRM, a.Phone, a.Email)
}

func objective(rec record.CaseRecord) string {
    id := rec.Identification
    var b strings.Builder
    b.WriteString("Você é um médico perito judicial brasileiro especializado em medicina do trabalho.\n\n")
    b.WriteString("Escreva a seção \"OBJETIVO DA PERÍCIA\" de um laudo médico pericial trabalhista.\n\n")
    b.WriteString("Dados do caso:\n")
    fmt.Fprintf(&b, "- Processo: %s\n- Reclamante: %s\n- Empresa: %s\n", rec.DisplayProcessNumber(), id.Claimant.Name, id.Company.Name)
    fmt.Fprintf(&b, "- Doenças alegadas: %s\n", diseaseList(rec.Diseases(), "; ", false))
    if eo := rec.ExpertiseObjective; eo != nil {
        fmt.Fprintf(&b, "- Verificar nexo causal: %s\n- Verificar redução da capacidade laborativa: %s\n",
            yesNo(eo.VerifyOccupationalNexus), yesNo(eo.VerifyWorkCapacityReduction))
        for _, o := range eo.AdditionalObjectives {
            fmt.Fprintf(&b, "- Objetivo adicional: %s\n", o)
        }
    }
    b.WriteString("\nEscreva de forma profissional e técnica, explicando:\n1. O objetivo geral da perícia\n2. As doenças específicas a serem investigadas\n3. Os pontos a serem avaliados (nexo causal, incapacidade, etc.)\n\n")
    b.WriteString("Use linguagem formal e técnica adequada a um documento judicial.\n")
    return b.String()
}

func documentation(rec record.CaseRecord) string {
    docs := rec.MedicalDocuments
    var b strings.Builder
    b.WriteString("Você é um médico perito judicial brasileiro.\n\n")
    b.WriteString("Escreva a seção \"DOCUMENTAÇÃO ANALISADA\" de um laudo pericial.\n\n")
    b.WriteString("Documentos disponíveis:\n")
    fmt.Fprintf(&b, "- Relatórios médicos: %d\n- CAT: %s\n- Atestados: %d\n- Prescrições: %d\n",
        len(docs.Reports), yesNo(docs.CAT != nil), len(docs.Certificates), len(docs.Prescriptions))
    if len(docs.Reports) > 0 {
        b.WriteString("\nRelatórios médicos:\n")
        for _, r := range docs.Reports {
            fmt.Fprintf(&b, "- %s: Dr(a). %s - %s (%s)\n", r.Date.BR(), r.Doctor, r.Diagnosis, strings.Join(r.CIDs, ", "))
        }
    }
    if c := docs.CAT; c != nil {
        fmt.Fprintf(&b, "\nCAT:\n- Data do acidente: %s\n- Tipo: %s\n- CID: %s\n", c.AccidentDate.BR(), c.Type.Label(), c.CID)
    }
    b.WriteString("\nEscreva uma análise profissional dos documentos, destacando sua relevância para a perícia.\nUse linguagem técnica e formal.\n")
    return b.String()
}

func laborHistory(rec record.CaseRecord) string {
    prof := rec.ProfessionalData
    var b strings.Builder
    b.WriteString("Você é um médico perito judicial brasileiro especializado em medicina do trabalho.\n\n")
    b.WriteString("Escreva a seção \"HISTÓRICO LABORAL\" de um laudo pericial.\n\n")
    b.WriteString("Dados laborais:\n")
    var admission *record.Date
    if prof != nil {
        admission = prof.AdmissionDate
    }
    fmt.Fprintf(&b, "- Admissão: %s\n", dateOr(admission, "Não informado"))
    fmt.Fprintf(&b, "- Função: %s\n", orNA(prof.CurrentPosition()))
    fmt.Fprintf(&b, "- Empresa: %s\n", rec.Identification.Company.Name)
    if prof != nil {
        if prof.DismissalDate != nil {
            fmt.Fprintf(&b, "- Demissão: %s\n", prof.DismissalDate.BR())
        }
        if ws := prof.WorkSchedule; ws.Contractual != "" {
            fmt.Fprintf(&b, "- Jornada contratual: %s\n", ws.Contractual)
        }
        for _, j := range prof.ProfessionalHistory {
            fmt.Fprintf(&b, "- Emprego anterior: %s, %s (%s a %s)\n", j.Company, j.Position, dateOr(j.StartDate, "?"), dateOr(j.EndDate, "?"))
        }
    }
    b.WriteString("\nDescreva de forma profissional:\n1. O vínculo empregatício\n2. As atividades exercidas\n3. Exposição a fatores de risco ocupacionais\n4. Histórico de outros empregos relevantes\n\n")
    b.WriteString("Use linguagem técnica médica e jurídica adequada.\n")
    return b.String()
}

func medicalHistory(rec record.CaseRecord) string {
    h := rec.MedicalHistory
    var b strings.Builder
    b.WriteString("Você é um médico perito judicial brasileiro.\n\n")
    b.WriteString("Escreva a seção \"HISTÓRICO MÉDICO\" de um laudo pericial trabalhista.\n\n")
    b.WriteString("Dados médicos:\n")
    if h != nil && h.INSS != nil {
        b.WriteString("Afastamentos INSS:\n")
        for _, ben := range h.INSS.Benefits {
            fmt.Fprintf(&b, "- %s: %s a %s - CID %s\n", ben.Type, dateOr(ben.StartDate, "data não informada"), dateOr(ben.EndDate, "atual"), strings.Join(ben.CIDs, ", "))
        }
        fmt.Fprintf(&b, "\n- Mudança de função pelo INSS: %s\n- Reabilitação profissional: %s\n", yesNo(h.INSS.HadFunctionChange), yesNo(h.INSS.HadRehabilitation))
    } else {
        b.WriteString("Não há registro de afastamentos previdenciários\n")
    }
    if h != nil && len(h.ASOs) > 0 {
        fmt.Fprintf(&b, "\nASOs realizados: %d\n", len(h.ASOs))
    }
    b.WriteString("\nEscreva uma análise médica profissional incluindo:\n1. Antecedentes pessoais\n2. Análise dos afastamentos e sua relevância\n3. Evolução do quadro clínico\n4. ASOs e sua interpretação\n\n")
    b.WriteString("Use terminologia médica adequada e análise criteriosa.\n")
    return b.String()
}

func exam(rec record.CaseRecord) string {
    var b strings.Builder
    b.WriteString("Você é um médico perito judicial brasileiro realizando exame físico pericial.\n\n")
    b.WriteString("Escreva a seção \"EXAME PERICIAL\" com estrutura profissional para um laudo trabalhista.\n\n")
    fmt.Fprintf(&b, "Patologias alegadas: %s\n\n", diseaseList(rec.Diseases(), "; ", false))
    b.WriteString(`Estruture o texto incluindo:

**6.1. Anamnese Pericial**
- Queixa principal
- História da moléstia atual
- Interrogatório sintomatológico detalhado

**6.2. Exame Físico Geral**
- Estado geral, sinais vitais

**6.3. Exame Físico Específico**
- Inspeção
- Palpação
- Amplitudes de movimento (goniometria)
- Testes específicos (Phalen, Tinel, Jobe, Neer, etc. conforme patologias)
- Exame neurológico

**6.4. Síntese dos Achados**

IMPORTANTE:
- Use [colchetes] para indicar onde o perito deve preencher dados específicos
- Mantenha linguagem técnica médica
- Seja específico sobre os testes relevantes para cada patologia
- Forneça estrutura clara e completa
`)
    return b.String()
}

func discussion(rec record.CaseRecord) string {
    id := rec.Identification
    var b strings.Builder
    b.WriteString("Você é um médico perito judicial brasileiro especializado em medicina do trabalho.\n\n")
    b.WriteString("Escreva a seção \"DISCUSSÃO\" de um laudo médico pericial trabalhista.\n\n")
    fmt.Fprintf(&b, "Dados do caso:\n- Reclamante: %s\n- Empresa: %s\n- CNAE: %s\n\n", id.Claimant.Name, id.Company.Name, orNA(id.Company.CNAE))
    b.WriteString("Patologias alegadas:\n")
    for _, d := range rec.Diseases() {
        fmt.Fprintf(&b, "- %s\n", diseaseList([]record.Disease{d}, "", true))
    }
    ntep := "Não identificado"
    if rec.NTEP != nil && rec.NTEP.HasNTEP {
        ntep = "Identificado"
    }
    fmt.Fprintf(&b, "\nNTEP: %s\n\n", ntep)
    b.WriteString(`Para CADA patologia alegada, discuta:

1. **Definição e Aspectos Médicos**
   - Conceito da patologia
   - Fisiopatologia
   - Quadro clínico

2. **Etiologia e Fatores de Risco**
   - Causas ocupacionais conhecidas
   - Causas não ocupacionais
   - Fatores contributivos

3. **Critérios para Nexo Causal**
   - Nexo técnico profissional
   - Nexo técnico epidemiológico (NTEP)
   - Nexo temporal
   - Exclusão de outras causas

4. **Fundamentação Legal**
   - Lei 8.213/91
   - Decreto 3.048/99
   - Normas Regulamentadoras relevantes

5. **Consolidação Médica e Prognóstico**

Use linguagem técnica médica e jurídica de alto nível.
Cite literatura médica quando apropriado.
Mantenha tom imparcial e científico.
`)
    return b.String()
}

func conclusions(rec record.CaseRecord) string {
    var b strings.Builder
    b.WriteString("Você é um médico perito judicial brasileiro.\n\n")
    b.WriteString("Escreva a seção \"CONCLUSÕES\" de um laudo médico pericial trabalhista.\n\n")
    b.WriteString("Patologias investigadas:\n")
    for _, d := range rec.Diseases() {
        fmt.Fprintf(&b, "- %s - %s\n", d.CID, d.Name)
    }
    b.WriteString(`
As conclusões devem ser OBJETIVAS e DIRETAS, abordando:

**8.1. Quanto às Patologias**
Para cada doença, indicar com [colchetes]:
- Diagnóstico: [CONFIRMADO/NÃO CONFIRMADO]
- Nexo Causal: [CARACTERIZADO/CONCAUSALIDADE/NÃO CARACTERIZADO]
- Data estimada de início
- Incapacidade (se houver)

**8.2. Quanto à Incapacidade Laboral**
[Síntese sobre grau, tipo e impacto]

**8.3. Quanto à Consolidação das Lesões**
[Se houve ou não consolidação médica]

**8.4. Quanto ao Prognóstico**
[Perspectivas de melhora, tratamento, reabilitação]

**8.5. Dano Patrimonial Futuro**
[Se há redução da capacidade laborativa]

Use linguagem técnica, clara e direta.
Mantenha formato de parecer conclusivo.
`)
    return b.String()
}

func questionnaires(rec record.CaseRecord) SectionPrompt {
    q := rec.Questionnaires
    sp := SectionPrompt{Title: Titles[8]}
    if q.Empty() {
        sp.Static = QuestionnairePending
        return sp
    }
    var b strings.Builder
    b.WriteString("Você é um médico perito judicial brasileiro.\n\n")
    b.WriteString("Estruture a seção \"RESPOSTAS AOS QUESITOS\" de forma profissional.\n\n")
    writeQuestions(&b, "Quesitos do Juízo", q.Judge)
    writeQuestions(&b, "Quesitos da Parte Reclamante", q.Claimant)
    writeQuestions(&b, "Quesitos da Parte Reclamada", q.Defendant)
    b.WriteString("Formate profissionalmente em HTML com numeração ordenada.\nSepare claramente os quesitos de cada parte.\n")
    sp.Prompt = b.String()
    return sp
}

func writeQuestions(b *strings.Builder, label string, qs []record.Question) {
    if len(qs) == 0 {
        return
    }
    fmt.Fprintf(b, "**%s:**\n", label)
    for i, q := range qs {
        answer := q.Answer
        if strings.TrimSpace(answer) == "" {
            answer = "[A ser preenchida pelo perito]"
        }
        fmt.Fprintf(b, "%d. %s\nResposta: %s\n\n", i+1, q.Question, answer)
    }
}
