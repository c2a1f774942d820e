// Package record defines the case record edited while drafting a labor-law
// medical expert report, plus the cached extraction result derived from the
// case PDF text.
package record

import (
	"strings"
	"time"
)

// Status is the informal processing state of a case. No transition rules are
// enforced; any field may be edited in any status.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusError:
		return true
	}
	return false
}

// CaseRecord is one legal case under preparation.
type CaseRecord struct {
	ID            string    `json:"id"`
	ProcessNumber string    `json:"processNumber"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	Identification      Identification      `json:"identification"`
	NTEP                *NTEP               `json:"ntep,omitempty"`
	TechnicalAssistants TechnicalAssistants `json:"technicalAssistants"`
	ExpertiseObjective  *ExpertiseObjective `json:"expertiseObjective,omitempty"`
	MedicalHistory      *MedicalHistory     `json:"medicalOccupationalHistory,omitempty"`
	ProfessionalData    *ProfessionalData   `json:"professionalData,omitempty"`
	MedicalDocuments    MedicalDocuments    `json:"medicalDocuments"`
	Questionnaires      Questionnaires      `json:"questionnaires"`

	ExtractionProgress int    `json:"extractionProgress"`
	ReportGenerated    bool   `json:"reportGenerated"`
	FileName           string `json:"fileName,omitempty"`
}

// Identification holds the court, claimant and company blocks.
type Identification struct {
	LaborCourt    string   `json:"laborCourt"`
	County        string   `json:"county"`
	ProcessNumber string   `json:"processNumber"`
	JudgeName     string   `json:"judgeName"`
	Claimant      Claimant `json:"claimant"`
	Company       Company  `json:"company"`
}

type Claimant struct {
	Name    string `json:"name"`
	CPF     string `json:"cpf"`
	RG      string `json:"rg"`
	Address string `json:"address"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
}

// Empty reports whether no claimant field is populated.
func (c Claimant) Empty() bool {
	return c == Claimant{}
}

type Company struct {
	Name    string `json:"name"`
	CNPJ    string `json:"cnpj"`
	CNAE    string `json:"cnae,omitempty"`
	Address string `json:"address"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
}

// RiskLevel is the NTEP risk tier.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Label returns the Portuguese label used in forms and reports.
func (r RiskLevel) Label() string {
	switch r {
	case RiskLow:
		return "Baixo Risco"
	case RiskMedium:
		return "Médio Risco"
	case RiskHigh:
		return "Alto Risco"
	}
	return "Não verificado"
}

// NTEP is the result of crossing the company CNAE with the alleged CIDs.
type NTEP struct {
	HasNTEP     bool      `json:"hasNTEP"`
	CNAE        string    `json:"cnae"`
	CBO         string    `json:"cbo"`
	CIDs        []string  `json:"cids"`
	Explanation string    `json:"explanation,omitempty"`
	RiskLevel   RiskLevel `json:"riskLevel,omitempty"`
}

type Assistant struct {
	Name  string `json:"name"`
	CRM   string `json:"crm"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type TechnicalAssistants struct {
	Claimant  *Assistant `json:"claimantAssistant,omitempty"`
	Defendant *Assistant `json:"defendantAssistant,omitempty"`
}

// DiseaseSource tags where an alleged disease was found.
type DiseaseSource string

const (
	SourcePetition        DiseaseSource = "initial_petition"
	SourceMedicalDocument DiseaseSource = "medical_document"
	SourceINSS            DiseaseSource = "inss"
	SourceOther           DiseaseSource = "other"
)

// Disease is one alleged CID-10 coded condition. CID uniqueness inside a case
// is not enforced.
type Disease struct {
	CID        string        `json:"cid"`
	Name       string        `json:"name"`
	Source     DiseaseSource `json:"source"`
	DocumentID string        `json:"documentId,omitempty"`
	Verified   bool          `json:"verified"`
}

type ExpertiseObjective struct {
	AllegedDiseases             []Disease `json:"allegedDiseases"`
	VerifyOccupationalNexus     bool      `json:"verifyOccupationalNexus"`
	VerifyWorkCapacityReduction bool      `json:"verifyWorkCapacityReduction"`
	AdditionalObjectives        []string  `json:"additionalObjectives,omitempty"`
}

// Diseases returns the alleged diseases of rec, or nil.
func (rec *CaseRecord) Diseases() []Disease {
	if rec == nil || rec.ExpertiseObjective == nil {
		return nil
	}
	return rec.ExpertiseObjective.AllegedDiseases
}

// BenefitType is the INSS benefit species code. Codes other than B31/B91 are
// kept verbatim.
type BenefitType string

const (
	BenefitB31 BenefitType = "B31"
	BenefitB91 BenefitType = "B91"
)

var benefitLabels = map[BenefitType]string{
	"B31": "B31 - Auxílio-Doença Previdenciário",
	"B91": "B91 - Auxílio-Doença Acidentário",
	"B32": "B32 - Auxílio-Acidente",
	"B93": "B93 - Aposentadoria por Invalidez (Acidente de Trabalho)",
	"B36": "B36 - Auxílio-Doença por Incapacidade Temporária",
}

// Label returns the long description of the benefit code.
func (b BenefitType) Label() string {
	if l, ok := benefitLabels[BenefitType(strings.ToUpper(string(b)))]; ok {
		return l
	}
	return string(b)
}

// INSSBenefit is one leave period. Dates are optional: an unparsed date stays
// nil and is reported by the extractor. Overlaps are allowed.
type INSSBenefit struct {
	Type             BenefitType `json:"type"`
	StartDate        *Date       `json:"startDate,omitempty"`
	EndDate          *Date       `json:"endDate,omitempty"`
	CIDs             []string    `json:"cids"`
	DiseaseStartDate *Date       `json:"diseaseStartDate,omitempty"`
}

type INSSData struct {
	DocumentID                string        `json:"documentId,omitempty"`
	Benefits                  []INSSBenefit `json:"benefits"`
	HadFunctionChange         bool          `json:"hadFunctionChange"`
	HadRehabilitation         bool          `json:"hadRehabilitation"`
	CurrentlyReceivingBenefit bool          `json:"currentlyReceivingBenefit"`
}

// ASOType is the occupational-health exam kind.
type ASOType string

const (
	ASOAdmissional  ASOType = "admissional"
	ASODemissional  ASOType = "demissional"
	ASOPeriodic     ASOType = "periodic"
	ASOReturnToWork ASOType = "return_to_work"
)

type ASO struct {
	DocumentID   string  `json:"documentId,omitempty"`
	Type         ASOType `json:"type"`
	Date         Date    `json:"date"`
	Result       string  `json:"result"`
	Doctor       string  `json:"doctor,omitempty"`
	CRM          string  `json:"crm,omitempty"`
	Observations string  `json:"observations,omitempty"`
}

type MedicalLeave struct {
	StartDate  Date   `json:"startDate"`
	EndDate    *Date  `json:"endDate,omitempty"`
	CID        string `json:"cid,omitempty"`
	Reason     string `json:"reason"`
	DocumentID string `json:"documentId,omitempty"`
}

type MedicalHistory struct {
	INSS          *INSSData      `json:"inss,omitempty"`
	ASOs          []ASO          `json:"asos"`
	MedicalLeaves []MedicalLeave `json:"medicalLeaves"`
}

type Position struct {
	Title      string   `json:"title"`
	CBO        string   `json:"cbo,omitempty"`
	StartDate  *Date    `json:"startDate,omitempty"`
	EndDate    *Date    `json:"endDate,omitempty"`
	Activities []string `json:"activities,omitempty"`
}

type JobHistory struct {
	Company    string   `json:"company"`
	Position   string   `json:"position"`
	CBO        string   `json:"cbo,omitempty"`
	StartDate  *Date    `json:"startDate,omitempty"`
	EndDate    *Date    `json:"endDate,omitempty"`
	Activities []string `json:"activities,omitempty"`
}

type WorkSchedule struct {
	Contractual      string `json:"contractual"`
	ClaimantAlleged  string `json:"claimantAlleged"`
	DefendantAlleged string `json:"defendantAlleged"`
}

type ProfessionalData struct {
	AdmissionDate           *Date        `json:"admissionDate,omitempty"`
	DismissalDate           *Date        `json:"dismissalDate,omitempty"`
	Occupation              string       `json:"occupation,omitempty"`
	ProfessionalHistory     []JobHistory `json:"professionalHistory"`
	CurrentCompanyPositions []Position   `json:"currentCompanyPositions"`
	WorkSchedule            WorkSchedule `json:"workSchedule"`
}

// CurrentPosition returns the first listed position title, or "".
func (p *ProfessionalData) CurrentPosition() string {
	if p == nil {
		return ""
	}
	if len(p.CurrentCompanyPositions) > 0 {
		return p.CurrentCompanyPositions[0].Title
	}
	return p.Occupation
}

type MedicalReport struct {
	DocumentID string   `json:"documentId,omitempty"`
	Date       Date     `json:"date"`
	Doctor     string   `json:"doctor"`
	CRM        string   `json:"crm,omitempty"`
	CIDs       []string `json:"cids"`
	Diagnosis  string   `json:"diagnosis"`
}

type Prescription struct {
	DocumentID  string   `json:"documentId,omitempty"`
	Date        Date     `json:"date"`
	Doctor      string   `json:"doctor"`
	Medications []string `json:"medications"`
}

type MedicalCertificate struct {
	DocumentID string `json:"documentId,omitempty"`
	Date       Date   `json:"date"`
	StartDate  Date   `json:"startDate"`
	EndDate    Date   `json:"endDate"`
	CID        string `json:"cid,omitempty"`
	Doctor     string `json:"doctor"`
}

// CATType is the kind of workplace accident report.
type CATType string

var catLabels = map[CATType]string{
	"typical":              "Acidente Típico",
	"commute":              "Acidente de Trajeto",
	"occupational_disease": "Doença Ocupacional",
	"initial":              "CAT Inicial",
	"reopening":            "CAT de Reabertura",
	"death":                "CAT de Óbito",
}

// Label returns the Portuguese description of the CAT type.
func (t CATType) Label() string {
	if l, ok := catLabels[t]; ok {
		return l
	}
	return string(t)
}

type CAT struct {
	DocumentID   string  `json:"documentId,omitempty"`
	AccidentDate Date    `json:"accidentDate"`
	Description  string  `json:"description"`
	CID          string  `json:"cid"`
	Type         CATType `json:"type"`
}

type MedicalDocuments struct {
	Reports       []MedicalReport      `json:"reports"`
	Prescriptions []Prescription       `json:"prescriptions"`
	Certificates  []MedicalCertificate `json:"certificates"`
	CAT           *CAT                 `json:"cat,omitempty"`
}

type Question struct {
	ID       string `json:"id,omitempty"`
	Number   int    `json:"number"`
	Question string `json:"question"`
	Answer   string `json:"answer,omitempty"`
}

// Questionnaires are the questions submitted by each party.
type Questionnaires struct {
	Judge     []Question `json:"judge"`
	Claimant  []Question `json:"claimant"`
	Defendant []Question `json:"defendant"`
}

// Empty reports whether no party submitted questions.
func (q Questionnaires) Empty() bool {
	return len(q.Judge) == 0 && len(q.Claimant) == 0 && len(q.Defendant) == 0
}

// DisplayProcessNumber prefers the identification block's number.
func (rec *CaseRecord) DisplayProcessNumber() string {
	if n := strings.TrimSpace(rec.Identification.ProcessNumber); n != "" {
		return n
	}
	return rec.ProcessNumber
}
