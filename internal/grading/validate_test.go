package grading

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dryrunhq/dryrun/internal/stage"
)

var hrCriteriaNames = []string{
	"communication_clarity",
	"answer_structure",
	"career_alignment",
	"specific_examples",
	"handling_uncertainty",
	"enthusiasm",
	"questions_asked_quality",
}

var hmCriteriaNames = []string{
	"technical_depth",
	"problem_solving",
	"ownership",
	"collaboration",
	"role_alignment",
	"communication",
}

func criteriaFromNames(names []string) []stage.Criterion {
	out := make([]stage.Criterion, 0, len(names))
	for _, name := range names {
		out = append(out, stage.Criterion{Name: name, Description: name, Weight: 1})
	}
	return out
}

func validHRScreenResponse(t *testing.T) map[string]any {
	t.Helper()
	scores := map[string]any{}
	feedback := map[string]any{}
	for _, name := range hrCriteriaNames {
		scores[name] = 7.0
		feedback[name] = "solid " + name
	}
	payload := map[string]any{
		"scores":            scores,
		"feedback":          feedback,
		"strengths":         []any{"clear communicator"},
		"weaknesses":        []any{"few concrete numbers"},
		"suggestions":       []any{"quantify outcomes"},
		"detailed_feedback": "Overall a solid screen.",
		"comparative_analysis": map[string]any{
			"percentile_estimate": 72.0,
			"standout_qualities":  []any{"calm under pressure"},
		},
		"overall_pace":    "well paced",
		"questions_asked": 2.0,
	}
	// Round-trip through JSON so types match what the pipeline parses.
	b, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}
	return out
}

func validHiringManagerResponse(t *testing.T) map[string]any {
	t.Helper()
	scores := map[string]any{}
	feedback := map[string]any{}
	for _, name := range hmCriteriaNames {
		scores[name] = 6.0
		feedback[name] = "adequate " + name
	}
	payload := map[string]any{
		"scores":            scores,
		"feedback":          feedback,
		"strengths":         []any{"deep systems knowledge"},
		"weaknesses":        []any{"vague on team process"},
		"suggestions":       []any{"prepare delivery stories"},
		"detailed_feedback": "Technically strong, light on leadership evidence.",
		"role_specific_criteria": map[string]any{
			"criteria_identified": []any{
				map[string]any{"name": "payments_domain", "score": 7.0, "feedback": "knows card networks"},
			},
		},
		"evidence_breakdown": map[string]any{
			"impact":                "led a latency reduction project",
			"scope_and_ownership":   "owned the billing service",
			"technical_judgment":    "argued tradeoffs well",
			"collaboration_signals": "mentioned pairing twice",
			"growth_mindset":        "asked for feedback",
			"delivery_track_record": "shipped three launches",
		},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}
	return out
}

func TestValidate_HRScreenAccepted(t *testing.T) {
	raw := validHRScreenResponse(t)
	if err := Validate(stage.HRScreen, criteriaFromNames(hrCriteriaNames), raw); err != nil {
		t.Fatalf("expected valid response, got %v", err)
	}
}

func TestValidate_RejectsEachMissingHRScreenCriterion(t *testing.T) {
	for _, missing := range hrCriteriaNames {
		raw := validHRScreenResponse(t)
		delete(raw["scores"].(map[string]any), missing)
		err := Validate(stage.HRScreen, criteriaFromNames(hrCriteriaNames), raw)
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("missing %s: expected ErrValidation, got %v", missing, err)
		}
		if !strings.Contains(err.Error(), missing) {
			t.Fatalf("missing %s: error should name the criterion, got %v", missing, err)
		}
	}
}

func TestValidate_RejectsUnknownCriterionInScores(t *testing.T) {
	raw := validHRScreenResponse(t)
	raw["scores"].(map[string]any)["vibes"] = 9.0
	if err := Validate(stage.HRScreen, criteriaFromNames(hrCriteriaNames), raw); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown criterion, got %v", err)
	}
}

func TestValidate_RejectsEmptyCriterionFeedback(t *testing.T) {
	raw := validHRScreenResponse(t)
	raw["feedback"].(map[string]any)["career_alignment"] = ""
	if err := Validate(stage.HRScreen, criteriaFromNames(hrCriteriaNames), raw); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty feedback, got %v", err)
	}
}

func TestValidate_PercentileBounds(t *testing.T) {
	for _, bad := range []float64{-1, 100.5} {
		raw := validHRScreenResponse(t)
		raw["comparative_analysis"].(map[string]any)["percentile_estimate"] = bad
		if err := Validate(stage.HRScreen, criteriaFromNames(hrCriteriaNames), raw); !errors.Is(err, ErrValidation) {
			t.Fatalf("percentile %g: expected ErrValidation, got %v", bad, err)
		}
	}
}

func TestValidate_PacingFeedbackAlternativeAccepted(t *testing.T) {
	raw := validHRScreenResponse(t)
	delete(raw, "overall_pace")
	raw["pacing_feedback"] = "rushed the middle section"
	if err := Validate(stage.HRScreen, criteriaFromNames(hrCriteriaNames), raw); err != nil {
		t.Fatalf("expected pacing_feedback to satisfy the pacing requirement, got %v", err)
	}
	delete(raw, "pacing_feedback")
	if err := Validate(stage.HRScreen, criteriaFromNames(hrCriteriaNames), raw); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation without any pacing field, got %v", err)
	}
}

func TestValidate_QuestionsAskedMustBeNumeric(t *testing.T) {
	raw := validHRScreenResponse(t)
	raw["questions_asked"] = "two"
	if err := Validate(stage.HRScreen, criteriaFromNames(hrCriteriaNames), raw); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestValidate_HiringManagerAccepted(t *testing.T) {
	raw := validHiringManagerResponse(t)
	if err := Validate(stage.HiringManager, criteriaFromNames(hmCriteriaNames), raw); err != nil {
		t.Fatalf("expected valid response, got %v", err)
	}
}

func TestValidate_HiringManagerRequiresIdentifiedCriteria(t *testing.T) {
	raw := validHiringManagerResponse(t)
	raw["role_specific_criteria"].(map[string]any)["criteria_identified"] = []any{}
	if err := Validate(stage.HiringManager, criteriaFromNames(hmCriteriaNames), raw); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty criteria_identified, got %v", err)
	}
}

func TestValidate_HiringManagerIdentifiedCriterionShape(t *testing.T) {
	raw := validHiringManagerResponse(t)
	raw["role_specific_criteria"].(map[string]any)["criteria_identified"] = []any{
		map[string]any{"name": "payments_domain", "score": "seven", "feedback": "ok"},
	}
	if err := Validate(stage.HiringManager, criteriaFromNames(hmCriteriaNames), raw); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for non-numeric identified score, got %v", err)
	}
}

func TestValidate_HiringManagerRequiresAllEvidenceAreas(t *testing.T) {
	for _, area := range evidenceAreas {
		raw := validHiringManagerResponse(t)
		delete(raw["evidence_breakdown"].(map[string]any), area)
		err := Validate(stage.HiringManager, criteriaFromNames(hmCriteriaNames), raw)
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("missing %s: expected ErrValidation, got %v", area, err)
		}
	}
}

func TestValidate_MissingTopLevelKey(t *testing.T) {
	for _, key := range []string{"scores", "feedback", "strengths", "detailed_feedback"} {
		raw := validHRScreenResponse(t)
		delete(raw, key)
		if err := Validate(stage.HRScreen, criteriaFromNames(hrCriteriaNames), raw); !errors.Is(err, ErrValidation) {
			t.Fatalf("missing %s: expected ErrValidation, got %v", key, err)
		}
	}
}

func TestValidate_ErrorsNameTheField(t *testing.T) {
	raw := validHRScreenResponse(t)
	raw["scores"].(map[string]any)["answer_structure"] = "high"
	err := Validate(stage.HRScreen, criteriaFromNames(hrCriteriaNames), raw)
	if err == nil || !strings.Contains(err.Error(), fmt.Sprintf("scores.%s", "answer_structure")) {
		t.Fatalf("expected error naming scores.answer_structure, got %v", err)
	}
}
