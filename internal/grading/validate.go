package grading

import (
	"errors"
	"fmt"

	"github.com/dryrunhq/dryrun/internal/stage"
)

// ErrValidation marks a grading response that breaks the structural
// contract. The attempt is discarded; malformed fields are never coerced.
var ErrValidation = errors.New("rubric validation failed")

// evidenceAreas is the six-area breakdown required from hiring_manager
// grading runs.
var evidenceAreas = []string{
	"impact",
	"scope_and_ownership",
	"technical_judgment",
	"collaboration_signals",
	"growth_mindset",
	"delivery_track_record",
}

// Validate checks the parsed grading response against the structural
// contract for the stage. The criteria set comes from the stage
// configuration; for hiring_manager the response additionally carries an
// open, model-identified criteria array, so the schema is partially dynamic.
func Validate(s stage.Stage, criteria []stage.Criterion, raw map[string]any) error {
	if err := validateCore(criteria, raw); err != nil {
		return err
	}
	switch s {
	case stage.HRScreen:
		return validateHRScreen(raw)
	case stage.HiringManager:
		return validateHiringManager(raw)
	}
	return nil
}

func validateCore(criteria []stage.Criterion, raw map[string]any) error {
	scores, err := requireObject(raw, "scores")
	if err != nil {
		return err
	}
	feedback, err := requireObject(raw, "feedback")
	if err != nil {
		return err
	}
	for _, key := range []string{"strengths", "weaknesses", "suggestions"} {
		if _, ok := raw[key].([]any); !ok {
			return fmt.Errorf("%w: %q must be an array", ErrValidation, key)
		}
	}
	if text, ok := raw["detailed_feedback"].(string); !ok || text == "" {
		return fmt.Errorf("%w: detailed_feedback must be a non-empty string", ErrValidation)
	}

	named := make(map[string]bool, len(criteria))
	for _, crit := range criteria {
		named[crit.Name] = true
		if _, ok := scores[crit.Name].(float64); !ok {
			return fmt.Errorf("%w: scores.%s must be numeric", ErrValidation, crit.Name)
		}
		if text, ok := feedback[crit.Name].(string); !ok || text == "" {
			return fmt.Errorf("%w: feedback.%s must be a non-empty string", ErrValidation, crit.Name)
		}
	}
	for key := range scores {
		if !named[key] {
			return fmt.Errorf("%w: scores contains unknown criterion %q", ErrValidation, key)
		}
	}
	return nil
}

func validateHRScreen(raw map[string]any) error {
	comparative, err := requireObject(raw, "comparative_analysis")
	if err != nil {
		return err
	}
	percentile, ok := comparative["percentile_estimate"].(float64)
	if !ok {
		return fmt.Errorf("%w: comparative_analysis.percentile_estimate must be numeric", ErrValidation)
	}
	if percentile < 0 || percentile > 100 {
		return fmt.Errorf("%w: comparative_analysis.percentile_estimate %g out of [0,100]", ErrValidation, percentile)
	}
	qualities, ok := comparative["standout_qualities"].([]any)
	if !ok || len(qualities) == 0 {
		return fmt.Errorf("%w: comparative_analysis.standout_qualities must be a non-empty array", ErrValidation)
	}
	if !hasNonEmptyString(raw, "overall_pace") && !hasNonEmptyString(raw, "pacing_feedback") {
		return fmt.Errorf("%w: either overall_pace or pacing_feedback is required", ErrValidation)
	}
	if _, ok := raw["questions_asked"].(float64); !ok {
		return fmt.Errorf("%w: questions_asked must be numeric", ErrValidation)
	}
	return nil
}

func validateHiringManager(raw map[string]any) error {
	role, err := requireObject(raw, "role_specific_criteria")
	if err != nil {
		return err
	}
	identified, ok := role["criteria_identified"].([]any)
	if !ok || len(identified) == 0 {
		return fmt.Errorf("%w: role_specific_criteria.criteria_identified must be a non-empty array", ErrValidation)
	}
	for i, entry := range identified {
		item, ok := entry.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: role_specific_criteria.criteria_identified[%d] must be an object", ErrValidation, i)
		}
		if name, ok := item["name"].(string); !ok || name == "" {
			return fmt.Errorf("%w: role_specific_criteria.criteria_identified[%d].name must be a non-empty string", ErrValidation, i)
		}
		if _, ok := item["score"].(float64); !ok {
			return fmt.Errorf("%w: role_specific_criteria.criteria_identified[%d].score must be numeric", ErrValidation, i)
		}
		if text, ok := item["feedback"].(string); !ok || text == "" {
			return fmt.Errorf("%w: role_specific_criteria.criteria_identified[%d].feedback must be a non-empty string", ErrValidation, i)
		}
	}

	breakdown, err := requireObject(raw, "evidence_breakdown")
	if err != nil {
		return err
	}
	for _, area := range evidenceAreas {
		if text, ok := breakdown[area].(string); !ok || text == "" {
			return fmt.Errorf("%w: evidence_breakdown.%s must be a non-empty string", ErrValidation, area)
		}
	}
	return nil
}

func requireObject(raw map[string]any, key string) (map[string]any, error) {
	obj, ok := raw[key].(map[string]any)
	if !ok || len(obj) == 0 {
		return nil, fmt.Errorf("%w: %q must be a non-empty object", ErrValidation, key)
	}
	return obj, nil
}

func hasNonEmptyString(raw map[string]any, key string) bool {
	text, ok := raw[key].(string)
	return ok && text != ""
}
