package prompt

import (
    "fmt"
    "strings"

    "github.com/hyperifyio/laudo/internal/record"
)

// CaseSummary renders the structured record as plain text. Empty blocks are
// left out.
func CaseSummary(rec record.CaseRecord) string {
    id := rec.Identification
    var b strings.Builder
    line := func(label, val string) {
        if strings.TrimSpace(val) != "" {
            fmt.Fprintf(&b, "%s: %s\n", label, val)
        }
    }
    line("Processo", rec.DisplayProcessNumber())
    line("Vara", id.LaborCourt)
    line("Comarca", id.County)
    line("Juiz(a)", id.JudgeName)
    line("Reclamante", id.Claimant.Name)
    line("CPF", id.Claimant.CPF)
    line("RG", id.Claimant.RG)
    line("Endereço do reclamante", id.Claimant.Address)
    line("Reclamada", id.Company.Name)
    line("CNPJ", id.Company.CNPJ)
    line("CNAE", id.Company.CNAE)

    if ds := rec.Diseases(); len(ds) > 0 {
        b.WriteString("Doenças alegadas:\n")
        for _, d := range ds {
            fmt.Fprintf(&b, "- %s - %s\n", d.CID, d.Name)
        }
    }
    if n := rec.NTEP; n != nil {
        status := "não identificado"
        if n.HasNTEP {
            status = "identificado"
        }
        fmt.Fprintf(&b, "NTEP: %s (%s)\n", status, n.RiskLevel.Label())
    }
    if h := rec.MedicalHistory; h != nil {
        if h.INSS != nil && len(h.INSS.Benefits) > 0 {
            b.WriteString("Benefícios INSS:\n")
            for _, ben := range h.INSS.Benefits {
                fmt.Fprintf(&b, "- %s: %s a %s\n", ben.Type.Label(), dateOr(ben.StartDate, "?"), dateOr(ben.EndDate, "atual"))
            }
        }
        for _, a := range h.ASOs {
            fmt.Fprintf(&b, "ASO %s em %s: %s\n", a.Type, a.Date.BR(), a.Result)
        }
        for _, l := range h.MedicalLeaves {
            fmt.Fprintf(&b, "Afastamento médico desde %s: %s\n", l.StartDate.BR(), l.Reason)
        }
    }
    if p := rec.ProfessionalData; p != nil {
        line("Função", p.CurrentPosition())
        line("Admissão", dateOr(p.AdmissionDate, ""))
        line("Demissão", dateOr(p.DismissalDate, ""))
    }
    return b.String()
}
