// Package extract pulls case fields out of the plain text of a labor-court
// case file. Every pattern is applied independently to the whole text; a
// pattern that does not match leaves its field empty and never fails the run.
package extract

import (
    "regexp"
    "strconv"
    "strings"

    "github.com/hyperifyio/laudo/internal/record"
    "github.com/hyperifyio/laudo/internal/textutil"
)

// upper is the uppercase alphabet of Portuguese names.
const upper = `A-ZÀÁÂÃÉÊÍÓÔÕÚÇ`

var (
    reProcessNumber = regexp.MustCompile(`(\d{7}-\d{2}\.\d{4}\.\d\.\d{2}\.\d{4})`)
    reClaimant      = regexp.MustCompile(`RECLAMANTE\s*:\s*([` + upper + `][` + upper + ` ]+)`)
    reCompany       = regexp.MustCompile(`RECLAMAD[OA]\s*:\s*([` + upper + `][` + upper + ` &]+)`)
    reCPF           = regexp.MustCompile(`CPF(?:\s*/\s*MF)?\s*(?:sob\s+o\s+n[°º.]?\s*|n[°º.]\s*|:\s*)?(\d{3}\.?\d{3}\.?\d{3}-?\d{2})`)
    reCNPJ          = regexp.MustCompile(`CNPJ(?:\s*/\s*MF)?\s*(?:sob\s+o\s+n[°º.]?\s*|n[°º.]\s*|:\s*)?(\d{2}\.?\d{3}\.?\d{3}/?\d{4}-?\d{2})`)
    reRG            = regexp.MustCompile(`(?:registro\s+civil\s+de\s+n[°º.]?|\bRG\b(?:\s*n[°º.]?)?\s*:?)\s*(\d[\d.\-]*\d)`)
    reAddress       = regexp.MustCompile(`(?i)(?:residente|domiciliad[oa])(?:\s+e\s+domiciliad[oa])?\s+[àa]\s+([^,\n]+,\s*n[°º.]?\s*\d+[^,\n]*,[^,\n]+,\s*[^,\n]+/[A-Z]{2}[^\n]*?CEP[:\s]*[\d.\-]+)`)
    reLaborCourt    = regexp.MustCompile(`(\d+\s*ª\s+VARA\s+DO\s+TRABALHO\s+DE\s+[` + upper + ` ]+?)\s*(?:[-/]\s*[A-Z]{2}\b|\n|,|$)`)
    reCounty        = regexp.MustCompile(`VARA\s+DO\s+TRABALHO\s+DE\s+([` + upper + ` ]+?)\s*(?:[-/]\s*[A-Z]{2}\b|\n|,|$)`)
    reOccupation    = regexp.MustCompile(`(?i)(?:aux\.|auxiliar|assistente|técnico|técnica|operador|operadora|analista|gerente)\s+(?:de|da|do)\s+[a-záàâãéêíóôõúçñ ]+`)
    reCauseValue    = regexp.MustCompile(`(?i)Valor\s+da\s+causa\s*:\s*R\$[\x{00A0}\s]*([0-9.,]+)`)
    reCID           = regexp.MustCompile(`\b([A-Z]\d{2}(?:\.\d)?)\s*[-–—]?\s*([^,.\n]{5,80})`)
    reBenefit       = regexp.MustCompile(`(?i)\b(B\d{2})\D*?(\d{2}/\d{2}/\d{4})\D*?(?:\ba\b|\bat[ée])\D*?(\d{2}/\d{2}/\d{4})`)
    reBRDate        = regexp.MustCompile(`\d{2}/\d{2}/\d{4}`)
)

// occupationalDiseases is the fixed dictionary of common occupational
// disease names searched case- and accent-insensitively.
var occupationalDiseases = []string{
    "LER/DORT",
    "LER",
    "DORT",
    "Síndrome do Túnel do Carpo",
    "Tendinite",
    "Bursite",
    "Epicondilite",
    "Tenossinovite",
    "Perda Auditiva Induzida por Ruído",
    "PAIR",
    "Depressão",
    "Ansiedade",
    "Transtorno de Ansiedade",
    "Síndrome de Burnout",
    "Estresse Pós-Traumático",
    "Asma Ocupacional",
    "Dermatose Ocupacional",
}

var dictionary = compileDictionary(occupationalDiseases)

func compileDictionary(names []string) []*regexp.Regexp {
    out := make([]*regexp.Regexp, len(names))
    for i, n := range names {
        // Letters may not touch the match on either side, so "LER" does not
        // hit inside "VALER".
        out[i] = regexp.MustCompile(`(?:^|[^\pL])` + regexp.QuoteMeta(textutil.Fold(n)) + `(?:$|[^\pL])`)
    }
    return out
}

// Result is everything one extraction run found.
type Result struct {
    ProcessNumber        string
    Identification       record.Identification
    Diseases             []record.Disease
    OccupationalDiseases []string
    Benefits             []record.INSSBenefit
    Occupation           string
    CauseValue           float64
    // Warnings are human-readable notes about values that matched but could
    // not be used, such as impossible dates.
    Warnings []string
}

// Extract applies every pattern to text.
func Extract(text string) Result {
    var r Result
    r.ProcessNumber = first(reProcessNumber, text)
    r.Identification.ProcessNumber = r.ProcessNumber
    r.Identification.Claimant.Name = textutil.CollapseSpaces(first(reClaimant, text))
    r.Identification.Company.Name = textutil.CollapseSpaces(first(reCompany, text))
    r.Identification.Claimant.CPF = textutil.Digits(first(reCPF, text))
    r.Identification.Claimant.RG = strings.TrimSpace(first(reRG, text))
    r.Identification.Claimant.Address = textutil.CollapseSpaces(first(reAddress, text))
    r.Identification.Company.CNPJ = textutil.Digits(first(reCNPJ, text))
    r.Identification.LaborCourt = textutil.CollapseSpaces(first(reLaborCourt, text))
    r.Identification.County = textutil.CollapseSpaces(first(reCounty, text))
    if m := reOccupation.FindString(text); m != "" {
        r.Occupation = textutil.CollapseSpaces(m)
    }
    r.CauseValue = parseMoney(first(reCauseValue, text))
    r.Diseases = extractCIDs(text)
    r.OccupationalDiseases = matchDictionary(text)
    r.Benefits, r.Warnings = extractBenefits(text)
    return r
}

// first returns the first capture group of the first match, or "".
func first(re *regexp.Regexp, text string) string {
    m := re.FindStringSubmatch(text)
    if len(m) < 2 {
        return ""
    }
    return strings.TrimSpace(m[1])
}

// parseMoney reads a Brazilian amount such as "45.000,00".
func parseMoney(s string) float64 {
    if s == "" {
        return 0
    }
    s = strings.ReplaceAll(s, ".", "")
    s = strings.Replace(s, ",", ".", 1)
    s = strings.TrimRight(s, ".,")
    v, err := strconv.ParseFloat(s, 64)
    if err != nil {
        return 0
    }
    return v
}

// extractCIDs finds "<code> - <description>" pairs. Codes are deduplicated
// within one run, keeping the first description.
func extractCIDs(text string) []record.Disease {
    var out []record.Disease
    seen := map[string]bool{}
    for _, m := range reCID.FindAllStringSubmatch(text, -1) {
        cid := m[1]
        name := strings.NewReplacer("(", "", ")", "").Replace(m[2])
        name = textutil.CollapseSpaces(name)
        if len([]rune(name)) <= 5 || seen[cid] {
            continue
        }
        // Benefit codes followed by dates look like CIDs; they are not.
        if reBRDate.MatchString(name) || !hasLetters(name, 3) {
            continue
        }
        seen[cid] = true
        out = append(out, record.Disease{CID: cid, Name: name, Source: record.SourcePetition})
    }
    return out
}

func hasLetters(s string, n int) bool {
    c := 0
    for _, r := range s {
        if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r >= 0xC0 {
            c++
            if c >= n {
                return true
            }
        }
    }
    return false
}

func matchDictionary(text string) []string {
    folded := textutil.Fold(text)
    var out []string
    for i, re := range dictionary {
        if re.MatchString(folded) {
            out = append(out, occupationalDiseases[i])
        }
    }
    return out
}

// extractBenefits finds "<type> <start> ... a|até <end>" tuples. A date that
// does not exist on the calendar stays nil and yields a warning instead of
// being replaced by another date.
func extractBenefits(text string) ([]record.INSSBenefit, []string) {
    var (
        out      []record.INSSBenefit
        warnings []string
    )
    for _, m := range reBenefit.FindAllStringSubmatch(text, -1) {
        b := record.INSSBenefit{Type: record.BenefitType(strings.ToUpper(m[1])), CIDs: []string{}}
        if d, ok := record.ParseBR(m[2]); ok {
            b.StartDate = &d
        } else {
            warnings = append(warnings, "Data não reconhecida: "+m[2])
        }
        if d, ok := record.ParseBR(m[3]); ok {
            b.EndDate = &d
        } else {
            warnings = append(warnings, "Data não reconhecida: "+m[3])
        }
        out = append(out, b)
    }
    return out, warnings
}
