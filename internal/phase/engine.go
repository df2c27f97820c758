// Package phase decides how an interview stage moves through its scripted
// opening and when the free-form part of the stage should be wrapped up.
package phase

import (
	"fmt"
	"strings"

	"github.com/dryrunhq/dryrun/internal/stage"
)

// Phase is a sub-state within a stage's opening sequence. Transitions are
// monotonic forward-only; there are no backward transitions.
type Phase string

const (
	Opening           Phase = "opening"
	StructureOverview Phase = "structure_overview"
	CompanyIntro      Phase = "company_intro"
	Screening         Phase = "screening"
	QAndA             Phase = "q_and_a"
	Closing           Phase = "closing"

	// Conversation is the single implicit phase for stages without a staged
	// opening (hiring_manager, culture_fit, final).
	Conversation Phase = "conversation"
)

// confirmationWords is the fixed vocabulary that moves the candidate through
// the scripted hr_screen opening. Matching is case-insensitive substring.
var confirmationWords = []string{
	"yes",
	"sounds good",
	"perfect",
	"sure",
	"okay",
	"ok",
	"ready",
	"that works",
	"let's do it",
	"great",
}

// Initial returns the starting phase for a stage.
func Initial(s stage.Stage) (Phase, error) {
	switch s {
	case stage.HRScreen:
		return Opening, nil
	case stage.HiringManager, stage.CultureFit, stage.Final:
		return Conversation, nil
	}
	return "", fmt.Errorf("%w: %q", stage.ErrUnknownStage, s)
}

// Next decides the phase that follows a candidate utterance. Only the first
// two hr_screen transitions are candidate-driven: the candidate confirms the
// opening and the structure overview. Everything after company_intro advances
// on the interviewer's own replies (see InferFromReply) and is deliberately
// not decided here. An utterance that matches no known vocabulary holds the
// phase, as does an empty one.
func Next(s stage.Stage, current Phase, utterance string) (Phase, error) {
	switch s {
	case stage.HRScreen:
	case stage.HiringManager, stage.CultureFit, stage.Final:
		return current, nil
	default:
		return "", fmt.Errorf("%w: %q", stage.ErrUnknownStage, s)
	}

	switch current {
	case Opening:
		if isConfirmation(utterance) {
			return StructureOverview, nil
		}
	case StructureOverview:
		if isConfirmation(utterance) {
			return CompanyIntro, nil
		}
	}
	return current, nil
}

// InferFromReply advances the later hr_screen phases from the interviewer's
// generated reply. These transitions are heuristic, inferred from free-form
// model output rather than enforced: a reply the heuristics miss simply holds
// the phase until a later reply matches.
func InferFromReply(s stage.Stage, current Phase, reply string) Phase {
	if s != stage.HRScreen {
		return current
	}
	lower := strings.ToLower(reply)
	switch current {
	case CompanyIntro:
		if strings.Contains(lower, "?") {
			return Screening
		}
	case Screening:
		if strings.Contains(lower, "questions for me") || strings.Contains(lower, "any questions") {
			return QAndA
		}
	case QAndA:
		if strings.Contains(lower, "next steps") || strings.Contains(lower, "thank you for your time") {
			return Closing
		}
	}
	return current
}

// ShouldEndStage reports whether the stage should be wrapped up after the
// given number of completed exchanges. The final stage additionally requires
// the most recent interviewer reply to contain its wrap-up cue, so the
// candidate always gets a chance to ask their own questions.
func ShouldEndStage(s stage.Stage, def stage.Definition, exchanges int, lastReply string) (bool, error) {
	switch s {
	case stage.HRScreen, stage.HiringManager, stage.CultureFit:
		return exchanges >= def.MaxExchanges, nil
	case stage.Final:
		if exchanges < def.MaxExchanges {
			return false, nil
		}
		return strings.Contains(strings.ToLower(lastReply), strings.ToLower(def.WrapUpCue)), nil
	}
	return false, fmt.Errorf("%w: %q", stage.ErrUnknownStage, s)
}

func isConfirmation(utterance string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(utterance))
	if trimmed == "" {
		return false
	}
	for _, word := range confirmationWords {
		if strings.Contains(trimmed, word) {
			return true
		}
	}
	return false
}
