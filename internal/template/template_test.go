package template

import (
    "bytes"
    "strings"
    "testing"

    "github.com/hyperifyio/laudo/internal/prompt"
    "github.com/hyperifyio/laudo/internal/record"
)

func sampleCase() record.CaseRecord {
    start := record.NewDate(2023, 3, 10)
    end := record.NewDate(2023, 6, 15)
    open := record.NewDate(2024, 1, 5)
    return record.CaseRecord{
        ID:            "c1",
        ProcessNumber: "0001234-11.2024.5.01.0001",
        Identification: record.Identification{
            LaborCourt: "1ª VARA DO TRABALHO DE RECIFE",
            County:     "Recife",
            Claimant:   record.Claimant{Name: "João Silva", CPF: "12345678900"},
            Company:    record.Company{Name: "ACME LTDA", CNPJ: "12345678000190"},
        },
        ExpertiseObjective: &record.ExpertiseObjective{
            AllegedDiseases: []record.Disease{{CID: "F41.1", Name: "Transtorno de Ansiedade"}},
        },
        NTEP: &record.NTEP{HasNTEP: true, Explanation: "Par 4711/F41.1 listado."},
        MedicalHistory: &record.MedicalHistory{
            INSS: &record.INSSData{Benefits: []record.INSSBenefit{
                {Type: record.BenefitB91, StartDate: &start, EndDate: &end, CIDs: []string{"F41.1"}},
                {Type: record.BenefitB31, StartDate: &open},
            }},
            ASOs: []record.ASO{
                {Type: record.ASODemissional, Date: record.NewDate(2024, 5, 1), Result: "Apto", Doctor: "Ana"},
                {Type: record.ASOAdmissional, Date: record.NewDate(2019, 2, 1), Result: "Apto", Doctor: "Rui", CRM: "123"},
            },
        },
    }
}

func TestParseStyle(t *testing.T) {
    tests := []struct {
        in   string
        want Style
    }{
        {"quick", StyleQuick},
        {"Rápido", StyleQuick},
        {"laudo rapido", StyleQuick},
        {"detailed", StyleDetailed},
        {"completo", StyleDetailed},
        {"", StyleDetailed},
        {"whatever", StyleDetailed},
    }
    for _, tt := range tests {
        t.Run(tt.in, func(t *testing.T) {
            if got := ParseStyle(tt.in); got != tt.want {
                t.Errorf("ParseStyle(%q) = %q, want %q", tt.in, got, tt.want)
            }
        })
    }
}

func TestRender_DetailedShell(t *testing.T) {
    doc := Document{
        Style:    StyleDetailed,
        Case:     sampleCase(),
        Sections: []Section{{Title: prompt.Titles[0], Body: "<p>corpo <strong>ok</strong></p>"}},
        Date:     record.NewDate(2026, 10, 15),
    }
    out, err := Render(doc)
    if err != nil {
        t.Fatal(err)
    }
    s := string(out)
    for _, want := range []string{
        "<!DOCTYPE html>",
        "@page",
        "PODER JUDICIÁRIO",
        "1ª VARA DO TRABALHO DE RECIFE",
        "0001234-11.2024.5.01.0001",
        "Sumário",
        "10. ENCERRAMENTO",
        "<h2>1. IDENTIFICAÇÃO</h2>",
        "<p>corpo <strong>ok</strong></p>",
        "Recife, 15 de outubro de 2026.",
    } {
        if !strings.Contains(s, want) {
            t.Errorf("missing %q", want)
        }
    }
}

func TestRender_EscapesCaseFields(t *testing.T) {
    rec := sampleCase()
    rec.Identification.Claimant.Name = "<b>X</b>"
    rec.Identification.County = ""
    out, err := Render(Document{Case: rec, Date: record.NewDate(2026, 1, 2)})
    if err != nil {
        t.Fatal(err)
    }
    s := string(out)
    if strings.Contains(s, "<b>X</b>") || !strings.Contains(s, "&lt;b&gt;X&lt;/b&gt;") {
        t.Fatal("claimant name was not escaped")
    }
    if !strings.Contains(s, "[Cidade], 02 de janeiro de 2026.") {
        t.Fatal("expected city placeholder in signature block")
    }
}

func TestRender_QuickUsesBody(t *testing.T) {
    out, err := Render(Document{Style: StyleQuick, Case: sampleCase(), Body: "<h2>1. IDENTIFICAÇÃO</h2><p>blob</p>",
        Sections: []Section{{Title: "ignored", Body: "nope"}}})
    if err != nil {
        t.Fatal(err)
    }
    s := string(out)
    if !strings.Contains(s, "<p>blob</p>") || strings.Contains(s, "nope") {
        t.Fatal("quick document should carry only the body blob")
    }
}

func TestStaticSections(t *testing.T) {
    secs, err := StaticSections(sampleCase(), record.NewDate(2024, 1, 15))
    if err != nil {
        t.Fatal(err)
    }
    if len(secs) != 9 {
        t.Fatalf("got %d sections", len(secs))
    }
    for i, s := range secs {
        if s.Title != prompt.Titles[i] {
            t.Errorf("section %d title %q", i, s.Title)
        }
    }
    checks := map[int][]string{
        0: {"123.456.789-00", "12.345.678/0001-90", "Comarca de Recife"},
        1: {"CID F41.1"},
        4: {"B91 - Auxílio-Doença Acidentário", "10/03/2023 a 15/06/2023", "05/01/2024 a atual", "10 dias", "Admissional", "(CRM 123)"},
        6: {"Doença 1: Transtorno de Ansiedade", "Verificado NTEP positivo", "7.2. Fundamentação Legal"},
        7: {"8.1. Quanto às Patologias"},
    }
    for i, wants := range checks {
        for _, w := range wants {
            if !strings.Contains(secs[i].Body, w) {
                t.Errorf("section %d missing %q", i, w)
            }
        }
    }
    if strings.Index(secs[4].Body, "Admissional") > strings.Index(secs[4].Body, "Demissional") {
        t.Error("ASO groups out of order")
    }
    if secs[8].Body != prompt.QuestionnairePending {
        t.Errorf("expected pending questionnaire, got %q", secs[8].Body)
    }
}

func TestStaticSections_Questions(t *testing.T) {
    rec := record.CaseRecord{Questionnaires: record.Questionnaires{
        Judge: []record.Question{{Question: "Há nexo?", Answer: "Sim"}, {Question: "Há incapacidade?"}},
    }}
    secs, err := StaticSections(rec, record.NewDate(2024, 1, 1))
    if err != nil {
        t.Fatal(err)
    }
    q := secs[8].Body
    for _, w := range []string{"9.1. Quesitos do Juízo", "Quesito 2:", "Pendente de resposta"} {
        if !strings.Contains(q, w) {
            t.Errorf("missing %q", w)
        }
    }
    if strings.Contains(q, "9.2.") {
        t.Error("empty party should be skipped")
    }
}

func TestDuration(t *testing.T) {
    start := record.NewDate(2020, 1, 1)
    tests := []struct {
        end  record.Date
        want string
    }{
        {record.NewDate(2020, 1, 1), "0 dias"},
        {record.NewDate(2020, 1, 2), "1 dia"},
        {record.NewDate(2020, 2, 5), "1 mês, 5 dias"},
        {record.NewDate(2021, 1, 1), "1 ano, 1 dia"},
    }
    for _, tt := range tests {
        if got := Duration(start, tt.end); got != tt.want {
            t.Errorf("Duration to %s = %q, want %q", tt.end.ISO(), got, tt.want)
        }
    }
}

func TestFilename(t *testing.T) {
    got := Filename("0001234-11.2024.5.01.0001", record.NewDate(2026, 10, 15))
    if got != "Laudo_Pericial_00012341120245010001_2026-10-15.html" {
        t.Fatalf("got %q", got)
    }
}

func TestWritePDF(t *testing.T) {
    secs, err := StaticSections(sampleCase(), record.NewDate(2024, 1, 15))
    if err != nil {
        t.Fatal(err)
    }
    var buf bytes.Buffer
    if err := WritePDF(Document{Case: sampleCase(), Sections: secs}, &buf); err != nil {
        t.Fatal(err)
    }
    if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
        t.Fatal("output is not a PDF")
    }
}

func TestHTMLBlocks(t *testing.T) {
    blocks := htmlBlocks(`<h3>3.1. A</h3><p>um<br>dois</p><table><tr><th>X</th><th>Y</th></tr><tr><td>1</td><td>2</td></tr></table><ul><li>item</li></ul>`)
    want := []block{{3, "3.1. A"}, {0, "um dois"}, {0, "X | Y"}, {0, "1 | 2"}, {0, "- item"}}
    if len(blocks) != len(want) {
        t.Fatalf("got %+v", blocks)
    }
    for i := range want {
        if blocks[i] != want[i] {
            t.Errorf("block %d = %+v, want %+v", i, blocks[i], want[i])
        }
    }
}
