package extract

import (
    "errors"
    "os"
    "strings"
    "testing"

    "github.com/hyperifyio/laudo/internal/record"
)

func loadPetition(t *testing.T) string {
    t.Helper()
    b, err := os.ReadFile("testdata/peticao.txt")
    if err != nil {
        t.Fatalf("read fixture: %v", err)
    }
    return string(b)
}

func TestExtract_CPFOnly(t *testing.T) {
    res := Extract("CPF 123.456.789-00")
    c := res.Identification.Claimant
    if c.CPF != "12345678900" {
        t.Fatalf("cpf %q", c.CPF)
    }
    if c.Name != "" || c.RG != "" || c.Address != "" || c.Phone != "" || c.Email != "" {
        t.Fatalf("unexpected claimant fields: %+v", c)
    }
    if res.ProcessNumber != "" || len(res.Diseases) != 0 || len(res.Benefits) != 0 {
        t.Fatalf("unexpected matches: %+v", res)
    }
}

func TestExtract_Petition(t *testing.T) {
    res := Extract(loadPetition(t))
    id := res.Identification
    checks := map[string][2]string{
        "process":  {res.ProcessNumber, "0000442-27.2025.5.06.0024"},
        "claimant": {id.Claimant.Name, "MARIA RITA DE CASSIA DOS SANTOS"},
        "company":  {id.Company.Name, "SUPERMERCADOS BOM PRECO & CIA"},
        "cpf":      {id.Claimant.CPF, "80038131404"},
        "rg":       {id.Claimant.RG, "5.123.456"},
        "cnpj":     {id.Company.CNPJ, "12345678000190"},
        "county":   {id.County, "RECIFE"},
        "court":    {id.LaborCourt, "24ª VARA DO TRABALHO DE RECIFE"},
    }
    for name, c := range checks {
        if c[0] != c[1] {
            t.Errorf("%s = %q, want %q", name, c[0], c[1])
        }
    }
    if !strings.HasPrefix(id.Claimant.Address, "Rua das Flores, n° 120") || !strings.Contains(id.Claimant.Address, "CEP: 50050-000") {
        t.Errorf("address %q", id.Claimant.Address)
    }
    if res.Occupation != "auxiliar de serviços gerais" {
        t.Errorf("occupation %q", res.Occupation)
    }
    if res.CauseValue != 45000 {
        t.Errorf("cause value %v", res.CauseValue)
    }
}

func TestExtract_DiseasesDedupAndDictionary(t *testing.T) {
    text := loadPetition(t) + "\nCID G56.0 - Outra descrição repetida\n"
    res := Extract(text)
    var cids []string
    for _, d := range res.Diseases {
        cids = append(cids, d.CID)
        if d.Source != record.SourcePetition {
            t.Fatalf("source %q", d.Source)
        }
    }
    if strings.Join(cids, ",") != "G56.0,M65.4" {
        t.Fatalf("cids %v", cids)
    }
    if res.Diseases[0].Name != "Síndrome do túnel do carpo bilateral" {
        t.Fatalf("first description wins, got %q", res.Diseases[0].Name)
    }
    want := []string{"LER/DORT", "LER", "DORT", "Síndrome do Túnel do Carpo", "Tenossinovite", "Depressão"}
    if strings.Join(res.OccupationalDiseases, "|") != strings.Join(want, "|") {
        t.Fatalf("dictionary hits %v", res.OccupationalDiseases)
    }
}

func TestExtract_BenefitsKeepUnparsedDatesNil(t *testing.T) {
    res := Extract(loadPetition(t))
    if len(res.Benefits) != 2 {
        t.Fatalf("benefits %+v", res.Benefits)
    }
    b91, b31 := res.Benefits[0], res.Benefits[1]
    if b91.Type != record.BenefitB91 || b91.StartDate.BR() != "10/03/2023" || b91.EndDate.BR() != "15/06/2023" {
        t.Fatalf("b91 %+v", b91)
    }
    if b31.Type != record.BenefitB31 || b31.StartDate == nil || b31.EndDate != nil {
        t.Fatalf("b31 end date should stay nil: %+v", b31)
    }
    if len(res.Warnings) != 1 || res.Warnings[0] != "Data não reconhecida: 31/02/2024" {
        t.Fatalf("warnings %v", res.Warnings)
    }
}

func TestExtract_NoMatchesNeverFails(t *testing.T) {
    res := Extract("texto sem nenhum dado estruturado")
    if res.ProcessNumber != "" || res.Identification.Claimant.Name != "" || res.Diseases != nil || res.Benefits != nil {
        t.Fatalf("expected blanks, got %+v", res)
    }
}

func TestConfidence_HalfIdentification(t *testing.T) {
    rec := record.CaseRecord{}
    rec.Identification.ProcessNumber = "0000442-27.2025.5.06.0024"
    rec.Identification.Company.Name = "EMPRESA X"
    c := Confidence(rec)
    if c.Identification != 50 {
        t.Fatalf("identification %d", c.Identification)
    }
    if c.ExpertiseObjective != 0 || c.MedicalHistory != 0 || c.LaborHistory != 0 {
        t.Fatalf("got %+v", c)
    }
    rec.Identification.Claimant.Name = "MARIA"
    if got := Confidence(rec).Identification; got != 75 {
        t.Fatalf("3 of 4 = %d", got)
    }
}

func TestProcess(t *testing.T) {
    if _, err := Process("c1", "curto demais"); !errors.Is(err, ErrEmptyText) {
        t.Fatalf("got %v", err)
    }
    if _, err := Process("c1", strings.Repeat(" ", 500)+"x"); !errors.Is(err, ErrEmptyText) {
        t.Fatalf("whitespace does not count, got %v", err)
    }
    data, err := Process("c1", loadPetition(t))
    if err != nil {
        t.Fatalf("process: %v", err)
    }
    if data.ProcessID != "c1" || data.ExtractedData.ID != "c1" {
        t.Fatalf("ids %+v", data)
    }
    want := record.Confidence{Identification: 100, ExpertiseObjective: 100, MedicalHistory: 100, LaborHistory: 100}
    if data.Confidence != want {
        t.Fatalf("confidence %+v", data.Confidence)
    }
    if len(data.MissingFields) != 1 || !strings.HasPrefix(data.MissingFields[0], "Data não reconhecida") {
        t.Fatalf("missing %v", data.MissingFields)
    }
}

func TestMissingFields_Empty(t *testing.T) {
    got := MissingFields(record.CaseRecord{})
    want := []string{"Número do processo", "Nome do autor", "Nome do réu", "CPF do periciado", "Doenças alegadas", "Histórico médico", "Histórico laboral"}
    if strings.Join(got, "|") != strings.Join(want, "|") {
        t.Fatalf("got %v", got)
    }
}
