// Package validate decides whether a generated report is good enough to
// stop escalating through generation strategies.
package validate

import (
    "fmt"
    "regexp"
    "strings"
    "unicode/utf8"

    "github.com/hyperifyio/laudo/internal/textutil"
)

const (
    // MinChars is the least number of characters (runes) of an accepted report.
    MinChars = 1500
    // MaxPlaceholders is the most unfilled placeholders an accepted report may carry.
    MaxPlaceholders = 5
)

// RequiredHeadings must all appear, compared case- and accent-insensitively.
// "CONCLUS" covers both CONCLUSÃO and CONCLUSÕES.
var RequiredHeadings = []string{"IDENTIFICAÇÃO", "HISTÓRICO", "EXAME", "DISCUSSÃO", "CONCLUS"}

// placeholderPhrases are fill-in markers models leave behind, already folded.
var placeholderPhrases = []string{"a ser preenchid", "preencher aqui", "inserir aqui", "xxx"}

var bracketRe = regexp.MustCompile(`\[[^\[\]\n]{1,200}\]`)

// Result explains the verdict. Rejection is not an error.
type Result struct {
    Accepted        bool     `json:"accepted"`
    Length          int      `json:"length"`
    MissingHeadings []string `json:"missingHeadings,omitempty"`
    Placeholders    int      `json:"placeholders"`
    Reasons         []string `json:"reasons,omitempty"`
}

// Report checks length, required headings and placeholder count of text.
func Report(text string) Result {
    r := Result{Length: utf8.RuneCountInString(text)}
    if r.Length < MinChars {
        r.Reasons = append(r.Reasons, fmt.Sprintf("too short: %d < %d characters", r.Length, MinChars))
    }
    folded := textutil.Fold(text)
    for _, h := range RequiredHeadings {
        if !strings.Contains(folded, textutil.Fold(h)) {
            r.MissingHeadings = append(r.MissingHeadings, h)
        }
    }
    if len(r.MissingHeadings) > 0 {
        r.Reasons = append(r.Reasons, "missing headings: "+strings.Join(r.MissingHeadings, ", "))
    }
    r.Placeholders = CountPlaceholders(text)
    if r.Placeholders > MaxPlaceholders {
        r.Reasons = append(r.Reasons, fmt.Sprintf("too many placeholders: %d > %d", r.Placeholders, MaxPlaceholders))
    }
    r.Accepted = len(r.Reasons) == 0
    return r
}

// CountPlaceholders counts bracketed spans plus known fill-in phrases.
func CountPlaceholders(text string) int {
    n := len(bracketRe.FindAllStringIndex(text, -1))
    folded := textutil.Fold(text)
    for _, p := range placeholderPhrases {
        n += strings.Count(folded, p)
    }
    return n
}
