// Package budget estimates prompt sizes against model context windows so
// the case text embedded in a prompt can be cut to fit.
package budget

import (
    "math"
    "strings"
    "unicode/utf8"
)

// charsPerToken is the heuristic for Portuguese prose.
const charsPerToken = 4.0

// EstimateTokensFromChars converts a character count into an estimated token
// count. The result is at least 1 when chars > 0.
func EstimateTokensFromChars(charCount int) int {
    if charCount <= 0 {
        return 0
    }
    return int(math.Ceil(float64(charCount) / charsPerToken))
}

// EstimateTokens returns the estimated token count of s, counted in runes.
func EstimateTokens(s string) int {
    return EstimateTokensFromChars(utf8.RuneCountInString(s))
}

// EstimatePromptTokens estimates a system persona plus a user prompt.
func EstimatePromptTokens(system, user string) int {
    return EstimateTokens(system) + EstimateTokens(user)
}

// defaultContext applies to unknown models.
const defaultContext = 8192

// knownModelMax maps model id prefixes to rough context sizes. The longest
// matching prefix wins, so dated ids such as claude-3-5-sonnet-20241022 match.
var knownModelMax = map[string]int{
    "gpt-4o":            128_000,
    "gpt-4-turbo":       128_000,
    "gpt-4":             8_192,
    "gpt-3.5-turbo":     16_384,
    "o1":                200_000,
    "claude-3":          200_000,
    "claude-3-5":        200_000,
    "claude-sonnet-4":   200_000,
    "claude-opus-4":     200_000,
    "gemini-1.5-pro":    2_000_000,
    "gemini-1.5-flash":  1_000_000,
    "gemini-2.0-flash":  1_000_000,
    "gemini-2.5":        1_000_000,
    "gemini-pro":        32_768,
}

// ModelContextTokens returns an estimated context window for model.
func ModelContextTokens(model string) int {
    name := strings.ToLower(strings.TrimSpace(model))
    best, size := "", defaultContext
    for prefix, v := range knownModelMax {
        if strings.HasPrefix(name, prefix) && len(prefix) > len(best) {
            best, size = prefix, v
        }
    }
    return size
}

// HeadroomTokens is subtracted from the context to absorb tokenizer and
// message framing error: 5% of the window, at least 512 tokens.
func HeadroomTokens(model string) int {
    dyn := int(math.Ceil(float64(ModelContextTokens(model)) * 0.05))
    if dyn < 512 {
        return 512
    }
    return dyn
}

// RemainingContext returns the input tokens left after reserving output and
// headroom and spending promptTokens. It is never negative.
func RemainingContext(model string, reservedForOutput, promptTokens int) int {
    if reservedForOutput < 0 {
        reservedForOutput = 0
    }
    rem := ModelContextTokens(model) - HeadroomTokens(model) - reservedForOutput - promptTokens
    if rem < 0 {
        return 0
    }
    return rem
}

// FitsInContext reports whether promptTokens fit with the output reservation.
func FitsInContext(model string, reservedForOutput, promptTokens int) bool {
    return RemainingContext(model, reservedForOutput, promptTokens) > 0
}

// TextBudget returns how many characters of case text can be added to a
// prompt whose fixed part is overhead, capped at limit.
func TextBudget(model string, reservedForOutput int, overhead string, limit int) int {
    rem := RemainingContext(model, reservedForOutput, EstimateTokens(overhead))
    chars := int(float64(rem) * charsPerToken)
    if limit > 0 && chars > limit {
        return limit
    }
    return chars
}
