package template

import (
    "io"
    "strings"

    "github.com/jung-kurt/gofpdf"
    "golang.org/x/net/html"

    "github.com/hyperifyio/laudo/internal/record"
)

// block is one printable unit of a section body.
type block struct {
    level int // 0 for text, 1..4 for headings
    text  string
}

// WritePDF renders a simplified PDF of doc to w: cover lines, contents,
// section headings and paragraphs, tables flattened to one line per row.
// It does not perform HTML layout.
func WritePDF(doc Document, w io.Writer) error {
    date := doc.Date
    if date.IsZero() {
        date = record.Today()
    }
    pdf := gofpdf.New("P", "mm", "A4", "")
    pdf.SetMargins(20, 25, 20)
    pdf.SetAutoPageBreak(true, 25)
    tr := pdf.UnicodeTranslatorFromDescriptor("")

    id := doc.Case.Identification
    pdf.AddPage()
    pdf.SetFont("Times", "B", 12)
    for _, l := range []string{"PODER JUDICIÁRIO", "JUSTIÇA DO TRABALHO", orDefault(id.LaborCourt, "VARA DO TRABALHO")} {
        pdf.CellFormat(0, 7, tr(l), "", 1, "C", false, 0, "")
    }
    pdf.Ln(20)
    pdf.SetFont("Times", "B", 18)
    pdf.CellFormat(0, 10, tr("LAUDO MÉDICO PERICIAL TRABALHISTA"), "", 1, "C", false, 0, "")
    pdf.Ln(20)
    pdf.SetFont("Times", "", 12)
    for _, kv := range [][2]string{
        {"Processo nº", doc.Case.DisplayProcessNumber()},
        {"Reclamante", orDefault(id.Claimant.Name, "Não informado")},
        {"Reclamada", orDefault(id.Company.Name, "Não informado")},
        {"Perito Judicial", "[Nome do Perito]"},
        {"CRM", "[Número CRM]"},
        {"Data da Perícia", date.LongPT()},
    } {
        pdf.MultiCell(0, 8, tr(kv[0]+": "+kv[1]), "", "L", false)
    }

    pdf.AddPage()
    heading(pdf, tr, 2, "Sumário")
    for _, t := range Contents() {
        pdf.MultiCell(0, 6, tr(t), "", "L", false)
    }

    pdf.AddPage()
    if doc.Style == StyleQuick {
        writeBlocks(pdf, tr, htmlBlocks(doc.Body))
    } else {
        for _, s := range doc.Sections {
            heading(pdf, tr, 2, s.Title)
            writeBlocks(pdf, tr, htmlBlocks(s.Body))
        }
    }

    heading(pdf, tr, 2, ClosingTitle)
    paragraph(pdf, tr, "Este é o laudo que apresento ao conhecimento de Vossa Excelência, colocando-me à disposição para eventuais esclarecimentos que se façam necessários.")
    pdf.Ln(15)
    pdf.CellFormat(0, 6, tr(orDefault(id.County, "[Cidade]")+", "+date.LongPT()+"."), "", 1, "C", false, 0, "")
    pdf.Ln(15)
    pdf.CellFormat(0, 6, "______________________________", "", 1, "C", false, 0, "")
    for _, l := range []string{"[Nome do Perito Judicial]", "Médico do Trabalho", "CRM: [Número]"} {
        pdf.CellFormat(0, 6, tr(l), "", 1, "C", false, 0, "")
    }
    return pdf.Output(w)
}

func orDefault(s, def string) string {
    if strings.TrimSpace(s) == "" {
        return def
    }
    return s
}

func heading(pdf *gofpdf.Fpdf, tr func(string) string, level int, text string) {
    size := 14.0
    switch level {
    case 3:
        size = 13
    case 4:
        size = 12
    }
    pdf.Ln(3)
    pdf.SetFont("Times", "B", size)
    pdf.MultiCell(0, 7, tr(text), "", "L", false)
    pdf.SetFont("Times", "", 12)
}

func paragraph(pdf *gofpdf.Fpdf, tr func(string) string, text string) {
    pdf.SetFont("Times", "", 12)
    pdf.MultiCell(0, 6, tr(text), "", "J", false)
    pdf.Ln(1)
}

func writeBlocks(pdf *gofpdf.Fpdf, tr func(string) string, blocks []block) {
    for _, b := range blocks {
        if b.level > 0 {
            heading(pdf, tr, b.level, b.text)
            continue
        }
        paragraph(pdf, tr, b.text)
    }
}

// htmlBlocks flattens an HTML fragment into headings and paragraphs.
func htmlBlocks(fragment string) []block {
    nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{Type: html.ElementNode, Data: "body"})
    if err != nil {
        return []block{{text: fragment}}
    }
    var out []block
    for _, n := range nodes {
        collectBlocks(&out, n)
    }
    return out
}

func collectBlocks(out *[]block, n *html.Node) {
    if n.Type == html.ElementNode {
        switch n.Data {
        case "style", "script":
            return
        case "h1", "h2", "h3", "h4":
            appendBlock(out, int(n.Data[1]-'0'), inlineText(n))
            return
        case "p", "li":
            if !hasBlockChild(n) {
                prefix := ""
                if n.Data == "li" {
                    prefix = "- "
                }
                appendBlock(out, 0, prefix+inlineText(n))
                return
            }
        case "tr":
            var cells []string
            for c := n.FirstChild; c != nil; c = c.NextSibling {
                if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
                    cells = append(cells, inlineText(c))
                }
            }
            appendBlock(out, 0, strings.Join(cells, " | "))
            return
        }
    }
    if n.Type == html.TextNode {
        if n.Parent == nil || isContainer(n.Parent.Data) {
            appendBlock(out, 0, n.Data)
        }
        return
    }
    for c := n.FirstChild; c != nil; c = c.NextSibling {
        collectBlocks(out, c)
    }
}

func appendBlock(out *[]block, level int, text string) {
    text = strings.Join(strings.Fields(text), " ")
    if text == "" {
        return
    }
    *out = append(*out, block{level: level, text: text})
}

func isContainer(tag string) bool {
    switch tag {
    case "div", "section", "article", "main", "body", "blockquote", "li":
        return true
    }
    return false
}

func hasBlockChild(n *html.Node) bool {
    for c := n.FirstChild; c != nil; c = c.NextSibling {
        if c.Type == html.ElementNode {
            switch c.Data {
            case "ul", "ol", "p", "table", "div":
                return true
            }
        }
    }
    return false
}

// inlineText joins the text of n, turning <br> into spaces.
func inlineText(n *html.Node) string {
    var b strings.Builder
    var walk func(*html.Node)
    walk = func(n *html.Node) {
        switch {
        case n.Type == html.TextNode:
            b.WriteString(n.Data)
        case n.Type == html.ElementNode && n.Data == "br":
            b.WriteByte(' ')
        }
        for c := n.FirstChild; c != nil; c = c.NextSibling {
            walk(c)
        }
    }
    walk(n)
    return b.String()
}
