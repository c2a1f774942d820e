package template

import (
    "bytes"
    "fmt"
    "html/template"
    "strings"

    "github.com/hyperifyio/laudo/internal/prompt"
    "github.com/hyperifyio/laudo/internal/record"
    "github.com/hyperifyio/laudo/internal/textutil"
)

// staticView is the data of the template-derived section bodies.
type staticView struct {
    Rec           record.CaseRecord
    ProcessNumber string
    Date          string
    Diseases      []record.Disease
    Position      string
    INSS          *record.INSSData
    ASOs          []asoGroup
}

type asoGroup struct {
    Title string
    Items []record.ASO
}

type partyQuestions struct {
    Title     string
    Questions []record.Question
}

var asoOrder = []struct {
    Type  record.ASOType
    Title string
}{
    {record.ASOAdmissional, "Admissional"},
    {record.ASOPeriodic, "Periódicos"},
    {record.ASOReturnToWork, "Retorno ao Trabalho"},
    {record.ASODemissional, "Demissional"},
}

// sectionTemplates are the template names of the nine bodies, in order.
var sectionTemplates = []string{
    "identification", "objective", "documentation", "labor", "medical",
    "exam", "discussion", "conclusions", "questionnaires",
}

// StaticSections builds the nine section bodies of the report that is
// produced without a model, from the case fields alone. date is the exam
// date and the "today" used for open-ended benefit durations.
func StaticSections(rec record.CaseRecord, date record.Date) ([]Section, error) {
    if date.IsZero() {
        date = record.Today()
    }
    v := staticView{
        Rec:           rec,
        ProcessNumber: rec.DisplayProcessNumber(),
        Date:          date.LongPT(),
        Diseases:      rec.Diseases(),
        Position:      rec.ProfessionalData.CurrentPosition(),
    }
    if h := rec.MedicalHistory; h != nil {
        v.INSS = h.INSS
        for _, o := range asoOrder {
            var items []record.ASO
            for _, a := range h.ASOs {
                if a.Type == o.Type {
                    items = append(items, a)
                }
            }
            if len(items) > 0 {
                v.ASOs = append(v.ASOs, asoGroup{Title: o.Title, Items: items})
            }
        }
    }
    t, err := sectionsTemplate(date)
    if err != nil {
        return nil, err
    }
    out := make([]Section, 0, len(sectionTemplates))
    for i, name := range sectionTemplates {
        if name == "questionnaires" && rec.Questionnaires.Empty() {
            out = append(out, Section{Title: prompt.Titles[i], Body: prompt.QuestionnairePending})
            continue
        }
        var buf bytes.Buffer
        if err := t.ExecuteTemplate(&buf, name, v); err != nil {
            return nil, fmt.Errorf("section %s: %w", name, err)
        }
        out = append(out, Section{Title: prompt.Titles[i], Body: strings.TrimSpace(buf.String())})
    }
    return out, nil
}

// sectionsTemplate parses the section bodies with helpers bound to today.
func sectionsTemplate(today record.Date) (*template.Template, error) {
    funcs := template.FuncMap{
        "add":  func(a, b int) int { return a + b },
        "join": func(s []string) string { return strings.Join(s, ", ") },
        "cpf":  FormatCPF,
        "cnpj": FormatCNPJ,
        "br":   brDate,
        "party": func(title string, qs []record.Question) partyQuestions {
            return partyQuestions{Title: title, Questions: qs}
        },
        "duration": func(start, end *record.Date) string {
            if start == nil {
                return "-"
            }
            stop := today
            if end != nil {
                stop = *end
            }
            return Duration(*start, stop)
        },
    }
    return template.New("sections").Funcs(funcs).ParseFS(assets, "assets/sections.html.tmpl")
}

// brDate formats a Date or *Date as DD/MM/YYYY. A nil or zero date yields
// the first fallback, if any.
func brDate(v any, fallback ...string) string {
    var s string
    switch d := v.(type) {
    case record.Date:
        s = d.BR()
    case *record.Date:
        if d != nil {
            s = d.BR()
        }
    }
    if s == "" && len(fallback) > 0 {
        return fallback[0]
    }
    return s
}

// FormatCPF renders 11 digits as 000.000.000-00. Other input is returned
// unchanged.
func FormatCPF(s string) string {
    d := textutil.Digits(s)
    if len(d) != 11 {
        return s
    }
    return d[:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:]
}

// FormatCNPJ renders 14 digits as 00.000.000/0000-00.
func FormatCNPJ(s string) string {
    d := textutil.Digits(s)
    if len(d) != 14 {
        return s
    }
    return d[:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:]
}

// Duration describes the span between two dates in years, months and days,
// counting 365-day years and 30-day months.
func Duration(start, end record.Date) string {
    days := int(end.Sub(start.Time).Hours() / 24)
    if days < 0 {
        days = 0
    }
    years := days / 365
    months := (days % 365) / 30
    rest := (days % 365) % 30

    var parts []string
    if years > 0 {
        parts = append(parts, plural(years, "ano", "anos"))
    }
    if months > 0 {
        parts = append(parts, plural(months, "mês", "meses"))
    }
    if rest > 0 || len(parts) == 0 {
        parts = append(parts, plural(rest, "dia", "dias"))
    }
    return strings.Join(parts, ", ")
}

func plural(n int, one, many string) string {
    if n == 1 {
        return "1 " + one
    }
    return fmt.Sprintf("%d %s", n, many)
}
