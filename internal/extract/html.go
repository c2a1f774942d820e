package extract

import (
    "bytes"
    "strings"

    "golang.org/x/net/html"
)

// Document is the readable text of an HTML export, such as a PJe page saved
// from the browser.
type Document struct {
    Title string
    Text  string
}

// FromHTML extracts readable text from HTML, preferring <main> or <article>,
// falling back to <body>. Table cells are kept on one line per row so
// label-anchored fields ("RECLAMANTE: ...") survive the conversion.
func FromHTML(input []byte) Document {
    node, err := html.Parse(bytes.NewReader(input))
    if err != nil || node == nil {
        return Document{}
    }

    title := strings.TrimSpace(findTitle(node))
    content := findFirst(node, "main")
    if content == nil {
        content = findFirst(node, "article")
    }
    if content == nil {
        content = findFirst(node, "body")
    }
    var b strings.Builder
    if content != nil {
        collectText(&b, content, false)
    }
    return Document{Title: title, Text: normalizeWhitespace(b.String())}
}

// BodyFragment returns the inner HTML of <body> when s is a complete HTML
// document, and s unchanged otherwise. Models sometimes answer with a whole
// page where a fragment was requested.
func BodyFragment(s string) string {
    trimmed := strings.TrimSpace(s)
    trimmed = strings.TrimPrefix(trimmed, "```html")
    trimmed = strings.TrimPrefix(trimmed, "```")
    trimmed = strings.TrimSuffix(trimmed, "```")
    trimmed = strings.TrimSpace(trimmed)
    lower := strings.ToLower(trimmed)
    if !strings.Contains(lower, "<body") {
        return trimmed
    }
    node, err := html.Parse(strings.NewReader(trimmed))
    if err != nil {
        return trimmed
    }
    body := findFirst(node, "body")
    if body == nil {
        return trimmed
    }
    var b bytes.Buffer
    for c := body.FirstChild; c != nil; c = c.NextSibling {
        if err := html.Render(&b, c); err != nil {
            return trimmed
        }
    }
    return strings.TrimSpace(b.String())
}

func findTitle(n *html.Node) string {
    head := findFirst(n, "head")
    if head == nil {
        return ""
    }
    t := findFirst(head, "title")
    if t == nil || t.FirstChild == nil {
        return ""
    }
    return t.FirstChild.Data
}

func findFirst(n *html.Node, tag string) *html.Node {
    if n.Type == html.ElementNode && strings.EqualFold(n.Data, tag) {
        return n
    }
    for c := n.FirstChild; c != nil; c = c.NextSibling {
        if res := findFirst(c, tag); res != nil {
            return res
        }
    }
    return nil
}

func collectText(b *strings.Builder, n *html.Node, inPre bool) {
    if n.Type == html.ElementNode {
        if isChrome(n) {
            return
        }
        switch strings.ToLower(n.Data) {
        case "script", "style", "noscript", "nav", "footer", "header", "aside", "iframe", "button", "form":
            return
        case "pre":
            inPre = true
        case "br", "hr":
            b.WriteString("\n")
        case "p", "div", "h1", "h2", "h3", "h4", "h5", "h6", "li", "tr", "ul", "ol", "table":
            b.WriteString("\n")
        case "td", "th":
            b.WriteString(" ")
        }
    }

    if n.Type == html.TextNode {
        data := n.Data
        if !inPre {
            data = strings.ReplaceAll(data, "\t", " ")
            data = strings.ReplaceAll(data, "\r", " ")
            data = strings.ReplaceAll(data, "\u00a0", " ")
        }
        b.WriteString(data)
    }

    for c := n.FirstChild; c != nil; c = c.NextSibling {
        collectText(b, c, inPre)
    }

    if n.Type == html.ElementNode {
        switch strings.ToLower(n.Data) {
        case "p", "h1", "h2", "h3", "h4", "h5", "h6":
            b.WriteString("\n\n")
        case "li", "tr", "div", "pre":
            b.WriteString("\n")
        }
    }
}

// isChrome reports page furniture of the court system (menus, toolbars,
// consent banners) that never holds case data.
func isChrome(n *html.Node) bool {
    for _, attr := range n.Attr {
        key := strings.ToLower(attr.Key)
        if key != "id" && key != "class" && key != "role" {
            continue
        }
        val := strings.ToLower(attr.Val)
        if containsAny(val, []string{"cookie", "consent", "navbar", "toolbar", "menu-lateral", "rodape"}) {
            return true
        }
    }
    return false
}

func containsAny(s string, needles []string) bool {
    for _, n := range needles {
        if strings.Contains(s, n) {
            return true
        }
    }
    return false
}

func normalizeWhitespace(s string) string {
    lines := strings.Split(s, "\n")
    out := make([]string, 0, len(lines))
    for _, line := range lines {
        trimmed := strings.TrimSpace(line)
        if trimmed == "" {
            if len(out) > 0 && out[len(out)-1] == "" {
                continue
            }
            out = append(out, "")
            continue
        }
        out = append(out, strings.Join(strings.Fields(trimmed), " "))
    }
    for len(out) > 0 && out[len(out)-1] == "" {
        out = out[:len(out)-1]
    }
    for len(out) > 0 && out[0] == "" {
        out = out[1:]
    }
    return strings.Join(out, "\n")
}
