package ntep

import (
    "errors"
    "os"
    "path/filepath"
    "strings"
    "testing"

    "github.com/hyperifyio/laudo/internal/record"
)

func TestVerify_RiskLevels(t *testing.T) {
    m := Default()
    cases := []struct {
        name string
        cnae string
        cids []string
        has  bool
        risk record.RiskLevel
    }{
        {"no match", "4711-3/02", []string{"J45.0"}, false, record.RiskLow},
        {"single plain match", "4711-3/02", []string{"M77.1"}, true, record.RiskMedium},
        {"single flagged match", "4711-3/02", []string{"g56.0"}, true, record.RiskHigh},
        {"two matches", "4711302", []string{"M77.1", "F41.1"}, true, record.RiskHigh},
        {"unknown class", "0111-3/01", []string{"M65.4"}, false, record.RiskLow},
    }
    for _, tc := range cases {
        got, err := m.Verify(tc.cnae, "5211-10", tc.cids)
        if err != nil {
            t.Fatalf("%s: %v", tc.name, err)
        }
        if got.HasNTEP != tc.has || got.RiskLevel != tc.risk {
            t.Fatalf("%s: got has=%v risk=%s", tc.name, got.HasNTEP, got.RiskLevel)
        }
        if got.Explanation == "" {
            t.Fatalf("%s: empty explanation", tc.name)
        }
    }
}

func TestVerify_ExplanationListsPairs(t *testing.T) {
    got, err := Default().Verify("4711-3/02", "5211-10", []string{"M77.1", "F41.1", "J45"})
    if err != nil {
        t.Fatal(err)
    }
    if !strings.Contains(got.Explanation, "4711/F41.1, 4711/M77.1") {
        t.Fatalf("explanation %q", got.Explanation)
    }
}

func TestVerify_RequiresInputs(t *testing.T) {
    m := Default()
    for _, args := range [][3]any{
        {"", "5211-10", []string{"M65"}},
        {"4711", "", []string{"M65"}},
        {"4711", "5211-10", []string{" "}},
    } {
        _, err := m.Verify(args[0].(string), args[1].(string), args[2].([]string))
        if !errors.Is(err, ErrMissingInput) {
            t.Fatalf("args %v: got %v", args, err)
        }
    }
}

func TestLoad_CustomMatrix(t *testing.T) {
    p := filepath.Join(t.TempDir(), "m.yaml")
    if err := os.WriteFile(p, []byte("entries:\n  - cnae: \"9999\"\n    cids: [Z99]\n"), 0o644); err != nil {
        t.Fatal(err)
    }
    m, err := Load(p)
    if err != nil {
        t.Fatalf("load: %v", err)
    }
    got, _ := m.Verify("9999", "x", []string{"Z99.1"})
    if !got.HasNTEP || got.RiskLevel != record.RiskMedium {
        t.Fatalf("got %+v", got)
    }
    if _, err := Parse([]byte("entries:\n  - cnae: \"12\"\n")); err == nil {
        t.Fatal("expected error for short cnae")
    }
}
