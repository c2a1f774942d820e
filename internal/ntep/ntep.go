// Package ntep crosses a company's CNAE class with the alleged CID-10 codes
// to flag the epidemiological technical nexus (NTEP) presumption.
package ntep

import (
    _ "embed"
    "errors"
    "fmt"
    "os"
    "sort"
    "strings"

    "gopkg.in/yaml.v3"

    "github.com/hyperifyio/laudo/internal/record"
    "github.com/hyperifyio/laudo/internal/textutil"
)

//go:embed matrix.yaml
var defaultMatrix []byte

// ErrMissingInput is returned when CNAE, CBO or every CID is missing.
var ErrMissingInput = errors.New("ntep: CNAE, CBO e ao menos um CID são obrigatórios")

// Entry is one CNAE class with the CID prefixes associated with it.
type Entry struct {
    CNAE        string   `yaml:"cnae"`
    Description string   `yaml:"description"`
    CIDs        []string `yaml:"cids"`
    High        []string `yaml:"high,omitempty"`
}

// Matrix is a CNAE x CID lookup table.
type Matrix struct {
    Entries []Entry `yaml:"entries"`
    byClass map[string]Entry
}

// Default returns the bundled matrix.
func Default() *Matrix {
    m, err := Parse(defaultMatrix)
    if err != nil {
        panic(fmt.Sprintf("ntep: bundled matrix: %v", err))
    }
    return m
}

// Load reads a matrix from a YAML file.
func Load(path string) (*Matrix, error) {
    b, err := os.ReadFile(path)
    if err != nil {
        return nil, err
    }
    return Parse(b)
}

// Parse decodes a YAML matrix.
func Parse(b []byte) (*Matrix, error) {
    var m Matrix
    if err := yaml.Unmarshal(b, &m); err != nil {
        return nil, fmt.Errorf("ntep matrix: %w", err)
    }
    m.byClass = make(map[string]Entry, len(m.Entries))
    for i, e := range m.Entries {
        class := cnaeClass(e.CNAE)
        if len(class) != 4 {
            return nil, fmt.Errorf("ntep matrix: entry %d: cnae %q is not a 4-digit class", i, e.CNAE)
        }
        m.byClass[class] = e
    }
    return &m, nil
}

// cnaeClass reduces "4711-3/02" to its class "4711".
func cnaeClass(cnae string) string {
    d := textutil.Digits(cnae)
    if len(d) > 4 {
        d = d[:4]
    }
    return d
}

func normalizeCID(cid string) string {
    return strings.ToUpper(strings.TrimSpace(cid))
}

func hasPrefix(cid string, prefixes []string) (string, bool) {
    for _, p := range prefixes {
        if strings.HasPrefix(cid, normalizeCID(p)) {
            return p, true
        }
    }
    return "", false
}

// Verify checks each CID against the CNAE class. The CBO is recorded but
// does not change the outcome.
func (m *Matrix) Verify(cnae, cbo string, cids []string) (record.NTEP, error) {
    var clean []string
    for _, c := range cids {
        if c = normalizeCID(c); c != "" {
            clean = append(clean, c)
        }
    }
    if strings.TrimSpace(cnae) == "" || strings.TrimSpace(cbo) == "" || len(clean) == 0 {
        return record.NTEP{}, ErrMissingInput
    }
    out := record.NTEP{CNAE: strings.TrimSpace(cnae), CBO: strings.TrimSpace(cbo), CIDs: clean, RiskLevel: record.RiskLow}
    entry, ok := m.byClass[cnaeClass(cnae)]
    if !ok {
        out.Explanation = fmt.Sprintf("CNAE %s não consta da matriz NTEP; nenhum nexo epidemiológico presumido.", out.CNAE)
        return out, nil
    }
    var matched []string
    flagged := false
    for _, c := range clean {
        if _, ok := hasPrefix(c, entry.CIDs); !ok {
            continue
        }
        matched = append(matched, c)
        if _, hi := hasPrefix(c, entry.High); hi {
            flagged = true
        }
    }
    sort.Strings(matched)
    switch {
    case len(matched) == 0:
        out.Explanation = fmt.Sprintf("Nenhum dos CIDs informados (%s) guarda associação com o CNAE %s (%s).",
            strings.Join(clean, ", "), out.CNAE, entry.Description)
        return out, nil
    case len(matched) > 1 || flagged:
        out.RiskLevel = record.RiskHigh
    default:
        out.RiskLevel = record.RiskMedium
    }
    out.HasNTEP = true
    pairs := make([]string, len(matched))
    for i, c := range matched {
        pairs[i] = cnaeClass(cnae) + "/" + c
    }
    out.Explanation = fmt.Sprintf("NTEP presumido para %s (%s): %s.", out.CNAE, entry.Description, strings.Join(pairs, ", "))
    return out, nil
}
