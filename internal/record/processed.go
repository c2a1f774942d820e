package record

import "time"

// Confidence is the per-section share of populated sub-fields, 0..100.
type Confidence struct {
	Identification     int `json:"identification"`
	ExpertiseObjective int `json:"expertiseObjective"`
	MedicalHistory     int `json:"medicalHistory"`
	LaborHistory       int `json:"laborHistory"`
}

// ProcessedPDFData is the cached extraction result for one case. It is keyed
// by the same case id but stored apart from the CaseRecord, so the two may
// diverge after later edits.
type ProcessedPDFData struct {
	ProcessID     string     `json:"processId"`
	ExtractedData CaseRecord `json:"extractedData"`
	// OccupationalDiseases lists dictionary names found in the text.
	OccupationalDiseases []string   `json:"occupationalDiseases,omitempty"`
	CauseValue           float64    `json:"causeValue,omitempty"`
	Confidence           Confidence `json:"confidence"`
	MissingFields        []string   `json:"missingFields"`
	RawText              string     `json:"rawText"`
	Timestamp            time.Time  `json:"timestamp"`
}
