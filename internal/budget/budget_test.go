package budget

import "testing"

func TestEstimateTokensFromChars(t *testing.T) {
    cases := []struct {
        in   int
        want int
    }{
        {0, 0},
        {1, 1},
        {4, 1},
        {5, 2},
        {400, 100},
    }
    for _, c := range cases {
        if got := EstimateTokensFromChars(c.in); got != c.want {
            t.Fatalf("EstimateTokensFromChars(%d) = %d, want %d", c.in, got, c.want)
        }
    }
}

func TestEstimateTokens_CountsRunes(t *testing.T) {
    // Eight runes, sixteen bytes.
    if got := EstimateTokens("çãçãçãçã"); got != 2 {
        t.Fatalf("got %d", got)
    }
    if got := EstimatePromptTokens("abcd", "abcde"); got != 3 {
        t.Fatalf("got %d", got)
    }
}

func TestModelContextTokens(t *testing.T) {
    cases := []struct {
        model string
        want  int
    }{
        {"", defaultContext},
        {"mystery", defaultContext},
        {"gpt-4o-mini", 128_000},
        {"GPT-4", 8_192},
        {"gpt-4-turbo-preview", 128_000},
        {"claude-3-5-sonnet-20241022", 200_000},
        {"gemini-2.5-flash", 1_000_000},
        {"gemini-1.5-pro-latest", 2_000_000},
    }
    for _, c := range cases {
        if got := ModelContextTokens(c.model); got != c.want {
            t.Errorf("ModelContextTokens(%q) = %d, want %d", c.model, got, c.want)
        }
    }
}

func TestRemainingContext(t *testing.T) {
    // gpt-4: 8192 - 512 headroom - 2000 output - 1000 prompt.
    if got := RemainingContext("gpt-4", 2000, 1000); got != 4680 {
        t.Fatalf("got %d", got)
    }
    if RemainingContext("gpt-4", 2000, 100_000) != 0 {
        t.Fatal("remaining context must not be negative")
    }
    if FitsInContext("gpt-4", 2000, 100_000) {
        t.Fatal("oversized prompt should not fit")
    }
}

func TestTextBudget(t *testing.T) {
    if got := TextBudget("gpt-4o", 2000, "", 50_000); got != 50_000 {
        t.Fatalf("large model should be capped at the limit, got %d", got)
    }
    // gpt-4: (8192 - 512 - 2000) tokens of room, 4 chars each.
    if got := TextBudget("gpt-4", 2000, "", 50_000); got != 22_720 {
        t.Fatalf("got %d", got)
    }
}
