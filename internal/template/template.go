// Package template assembles the final printable report document.
package template

import (
    "bytes"
    "embed"
    "fmt"
    "html/template"
    "strings"

    "github.com/hyperifyio/laudo/internal/prompt"
    "github.com/hyperifyio/laudo/internal/record"
    "github.com/hyperifyio/laudo/internal/textutil"
)

//go:embed assets/*
var assets embed.FS

// Style is the output flavor of the assembled document.
type Style string

const (
    // StyleDetailed renders each section as its own heading and body.
    StyleDetailed Style = "detailed"
    // StyleQuick renders one body blob that already carries its headings.
    StyleQuick Style = "quick"
)

// ClosingTitle heads the signature section present in every document.
const ClosingTitle = "10. ENCERRAMENTO"

// ParseStyle maps user input to a Style. Unknown values mean detailed.
func ParseStyle(s string) Style {
    v := textutil.Fold(strings.TrimSpace(s))
    switch v {
    case "quick", "rapido", "ai_rapido", "blob", "single":
        return StyleQuick
    case "detailed", "detalhado", "completo", "sections", "":
        return StyleDetailed
    }
    if strings.Contains(v, "rapid") || strings.Contains(v, "quick") {
        return StyleQuick
    }
    return StyleDetailed
}

// Section is one titled part of a detailed document. Body is trusted HTML.
type Section struct {
    Title string
    Body  string
}

// Document is everything needed to render one report.
type Document struct {
    Style    Style
    Case     record.CaseRecord
    Sections []Section
    // Body is the single blob of a quick document. Trusted HTML.
    Body string
    // Date is printed on the cover and signature block. Zero means today.
    Date record.Date
}

type layoutView struct {
    CSS           template.CSS
    ProcessNumber string
    Court         string
    Claimant      string
    Company       string
    County        string
    Date          string
    Contents      []string
    Quick         bool
    Body          template.HTML
    Sections      []sectionView
    ClosingTitle  string
}

type sectionView struct {
    Title string
    Body  template.HTML
}

var (
    layout   = template.Must(template.ParseFS(assets, "assets/layout.html.tmpl"))
    styleCSS = mustRead("assets/laudo.css")
)

func mustRead(name string) string {
    b, err := assets.ReadFile(name)
    if err != nil {
        panic(err)
    }
    return string(b)
}

// Contents is the static table of contents.
func Contents() []string {
    out := append([]string(nil), prompt.Titles...)
    return append(out, ClosingTitle)
}

// Render emits a complete self-contained HTML document. Case fields are
// escaped; section bodies are inserted as they are.
func Render(doc Document) ([]byte, error) {
    date := doc.Date
    if date.IsZero() {
        date = record.Today()
    }
    id := doc.Case.Identification
    v := layoutView{
        CSS:           template.CSS(styleCSS),
        ProcessNumber: doc.Case.DisplayProcessNumber(),
        Court:         strings.TrimSpace(id.LaborCourt),
        Claimant:      strings.TrimSpace(id.Claimant.Name),
        Company:       strings.TrimSpace(id.Company.Name),
        County:        strings.TrimSpace(id.County),
        Date:          date.LongPT(),
        Contents:      Contents(),
        Quick:         doc.Style == StyleQuick,
        Body:          template.HTML(doc.Body),
        ClosingTitle:  ClosingTitle,
    }
    for _, s := range doc.Sections {
        v.Sections = append(v.Sections, sectionView{Title: s.Title, Body: template.HTML(s.Body)})
    }
    var buf bytes.Buffer
    if err := layout.Execute(&buf, v); err != nil {
        return nil, fmt.Errorf("render report: %w", err)
    }
    return buf.Bytes(), nil
}

// Filename names the downloadable detailed report.
func Filename(processNumber string, date record.Date) string {
    return fmt.Sprintf("Laudo_Pericial_%s_%s.html", textutil.Digits(processNumber), date.ISO())
}

// QuickFilename names the downloadable quick report.
func QuickFilename(processNumber string, date record.Date) string {
    return fmt.Sprintf("Laudo_AI_Rapido_%s_%s.html", textutil.Digits(processNumber), date.ISO())
}
