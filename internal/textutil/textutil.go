// Package textutil holds small text helpers shared by the extractor, the
// prompt builder and the validator.
package textutil

import (
    "strings"
    "unicode"
    "unicode/utf8"

    "golang.org/x/text/runes"
    "golang.org/x/text/transform"
    "golang.org/x/text/unicode/norm"
)

// Fold lowercases s and strips combining marks, so "CONCLUSÃO" and
// "conclusao" compare equal.
func Fold(s string) string {
    t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
    out, _, err := transform.String(t, s)
    if err != nil {
        out = s
    }
    return strings.ToLower(out)
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
    if n <= 0 {
        return ""
    }
    if utf8.RuneCountInString(s) <= n {
        return s
    }
    i := 0
    for pos := range s {
        if i == n {
            return s[:pos]
        }
        i++
    }
    return s
}

// Digits keeps only ASCII digits.
func Digits(s string) string {
    var b strings.Builder
    for _, r := range s {
        if r >= '0' && r <= '9' {
            b.WriteRune(r)
        }
    }
    return b.String()
}

// CollapseSpaces trims s and turns every whitespace run into one space.
func CollapseSpaces(s string) string {
    return strings.Join(strings.Fields(s), " ")
}

// NonSpaceLen counts the runes of s that are not whitespace.
func NonSpaceLen(s string) int {
    n := 0
    for _, r := range s {
        if !unicode.IsSpace(r) {
            n++
        }
    }
    return n
}
