package transcript

import "strings"

// Assessment areas tagged onto classified questions. The tagging is
// rule-based and feeds the grading context; it makes no claim of semantic
// accuracy.
const (
	AreaAnswerStructure     = "answer_structure"
	AreaCareerAlignment     = "career_alignment"
	AreaSpecificExamples    = "specific_examples"
	AreaHandlingUncertainty = "handling_uncertainty"
	AreaQuestionsAsked      = "questions_asked"
	AreaPaceAndFlow         = "pace_and_flow"
)

// Classification is the outcome of inspecting one interviewer message.
type Classification struct {
	IsQuestion bool
	Areas      []string
}

// Classifier decides whether interviewer text counts as a question and which
// assessment areas it probes. The default is a keyword rule table; it can be
// swapped for a model-based classifier without touching the Log contract.
type Classifier interface {
	Classify(text string) Classification
}

// RuleClassifier is the default heuristic classifier. Text is a question if
// it contains a question mark, begins with a fixed set of interrogative or
// imperative openers, or contains "tell me about" anywhere.
type RuleClassifier struct{}

var questionOpeners = []string{
	"tell me",
	"what",
	"why",
	"how",
	"can you",
	"would you",
	"i see you",
}

var areaKeywords = map[string][]string{
	AreaCareerAlignment:     {"career", "your goals", "why this role", "why our company", "where do you see yourself"},
	AreaSpecificExamples:    {"tell me about a time", "give me an example", "describe a situation", "specific example", "walk me through"},
	AreaHandlingUncertainty: {"you didn't know", "unfamiliar", "uncertain", "ambiguous", "what would you do if"},
	AreaQuestionsAsked:      {"questions for me", "any questions", "anything you'd like to ask"},
	AreaPaceAndFlow:         {"in a minute or two", "briefly", "short version", "quickly summarize"},
}

func (RuleClassifier) Classify(text string) Classification {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return Classification{}
	}

	isQuestion := strings.Contains(lower, "?") || strings.Contains(lower, "tell me about")
	if !isQuestion {
		for _, opener := range questionOpeners {
			if strings.HasPrefix(lower, opener) {
				isQuestion = true
				break
			}
		}
	}
	if !isQuestion {
		return Classification{}
	}

	// answer_structure applies to every question; the rest are keyed off
	// the question wording.
	areas := []string{AreaAnswerStructure}
	for _, area := range []string{
		AreaCareerAlignment,
		AreaSpecificExamples,
		AreaHandlingUncertainty,
		AreaQuestionsAsked,
		AreaPaceAndFlow,
	} {
		for _, keyword := range areaKeywords[area] {
			if strings.Contains(lower, keyword) {
				areas = append(areas, area)
				break
			}
		}
	}
	return Classification{IsQuestion: true, Areas: areas}
}
