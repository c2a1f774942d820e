package extract

import (
    "errors"
    "math"
    "strings"
    "time"

    "github.com/hyperifyio/laudo/internal/record"
    "github.com/hyperifyio/laudo/internal/textutil"
)

// MinTextLen is the least number of non-space characters a case text must
// have before extraction is attempted.
const MinTextLen = 100

// ErrEmptyText rejects texts too short to hold a case file.
var ErrEmptyText = errors.New("PDF vazio ou sem texto extraível")

// Process extracts the case text of caseID into the cached extraction form.
func Process(caseID, text string) (record.ProcessedPDFData, error) {
    if textutil.NonSpaceLen(text) < MinTextLen {
        return record.ProcessedPDFData{}, ErrEmptyText
    }
    res := Extract(text)
    partial := res.Partial()
    partial.ID = caseID
    missing := MissingFields(partial)
    missing = append(missing, res.Warnings...)
    return record.ProcessedPDFData{
        ProcessID:            caseID,
        ExtractedData:        partial,
        OccupationalDiseases: res.OccupationalDiseases,
        CauseValue:           res.CauseValue,
        Confidence:           Confidence(partial),
        MissingFields:        missing,
        RawText:              text,
        Timestamp:            time.Now().UTC(),
    }, nil
}

// Partial turns the result into a partial case record. Blocks with nothing
// found stay nil so confidence and missing fields see them as absent.
func (r Result) Partial() record.CaseRecord {
    rec := record.CaseRecord{
        ProcessNumber:  r.ProcessNumber,
        Status:         record.StatusProcessing,
        Identification: r.Identification,
    }
    if len(r.Diseases) > 0 {
        rec.ExpertiseObjective = &record.ExpertiseObjective{
            AllegedDiseases:             r.Diseases,
            VerifyOccupationalNexus:     true,
            VerifyWorkCapacityReduction: true,
        }
    }
    if len(r.Benefits) > 0 {
        rec.MedicalHistory = &record.MedicalHistory{
            INSS: &record.INSSData{Benefits: r.Benefits},
        }
    }
    if r.Occupation != "" {
        rec.ProfessionalData = &record.ProfessionalData{Occupation: r.Occupation}
    }
    return rec
}

// Confidence scores each section as the rounded percentage of its populated
// sub-fields.
func Confidence(rec record.CaseRecord) record.Confidence {
    id := rec.Identification
    return record.Confidence{
        Identification: score(
            rec.DisplayProcessNumber() != "",
            present(id.Claimant.Name),
            present(id.Claimant.CPF),
            present(id.Company.Name),
        ),
        ExpertiseObjective: score(len(rec.Diseases()) > 0),
        MedicalHistory:     score(rec.MedicalHistory != nil && rec.MedicalHistory.INSS != nil),
        LaborHistory:       score(rec.ProfessionalData != nil),
    }
}

func present(s string) bool { return strings.TrimSpace(s) != "" }

func score(fields ...bool) int {
    if len(fields) == 0 {
        return 0
    }
    n := 0
    for _, f := range fields {
        if f {
            n++
        }
    }
    return int(math.Round(float64(n) * 100 / float64(len(fields))))
}

// MissingFields lists, in Portuguese, the fields a reviewer still has to fill.
func MissingFields(rec record.CaseRecord) []string {
    missing := []string{}
    id := rec.Identification
    if rec.DisplayProcessNumber() == "" {
        missing = append(missing, "Número do processo")
    }
    if !present(id.Claimant.Name) {
        missing = append(missing, "Nome do autor")
    }
    if !present(id.Company.Name) {
        missing = append(missing, "Nome do réu")
    }
    if !present(id.Claimant.CPF) {
        missing = append(missing, "CPF do periciado")
    }
    if len(rec.Diseases()) == 0 {
        missing = append(missing, "Doenças alegadas")
    }
    if rec.MedicalHistory == nil || rec.MedicalHistory.INSS == nil {
        missing = append(missing, "Histórico médico")
    }
    if rec.ProfessionalData == nil {
        missing = append(missing, "Histórico laboral")
    }
    return missing
}
