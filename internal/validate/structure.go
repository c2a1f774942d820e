package validate

import "regexp"

// Structure records which classic report sections a finished report, for
// instance one uploaded as a model to imitate, contains.
type Structure struct {
    Identification       bool `json:"identificacao"`
    History              bool `json:"historico"`
    PhysicalExam         bool `json:"exameFisico"`
    DocumentAnalysis     bool `json:"analiseDocumental"`
    Discussion           bool `json:"discussao"`
    Conclusion           bool `json:"conclusao"`
    QuestionnaireReplies bool `json:"respostasQuesitos"`
}

var (
    reIdentification = regexp.MustCompile(`(?i)IDENTIFICA[ÇC][ÃA]O`)
    reHistory        = regexp.MustCompile(`(?i)HIST[ÓO]RICO`)
    rePhysicalExam   = regexp.MustCompile(`(?i)EXAME\s+F[ÍI]SICO`)
    reDocAnalysis    = regexp.MustCompile(`(?i)AN[ÁA]LISE\s+DOCUMENTAL`)
    reDiscussion     = regexp.MustCompile(`(?i)DISCUSS[ÃA]O`)
    reConclusion     = regexp.MustCompile(`(?i)CONCLUS[ÃA]O`)
    reReplies        = regexp.MustCompile(`(?i)RESPOSTAS?\s+AOS?\s+QUESITOS`)
)

// AnalyzeStructure reports the sections present in text.
func AnalyzeStructure(text string) Structure {
    return Structure{
        Identification:       reIdentification.MatchString(text),
        History:              reHistory.MatchString(text),
        PhysicalExam:         rePhysicalExam.MatchString(text),
        DocumentAnalysis:     reDocAnalysis.MatchString(text),
        Discussion:           reDiscussion.MatchString(text),
        Conclusion:           reConclusion.MatchString(text),
        QuestionnaireReplies: reReplies.MatchString(text),
    }
}
