package stage

import (
	"errors"
	"fmt"
)

// Stage identifies one of the four interview types. Each stage has its own
// prompt template, rubric criteria and phase model.
type Stage string

const (
	HRScreen      Stage = "hr_screen"
	HiringManager Stage = "hiring_manager"
	CultureFit    Stage = "culture_fit"
	Final         Stage = "final"
)

var ErrUnknownStage = errors.New("unknown interview stage")

// All lists the stages in interview order.
func All() []Stage {
	return []Stage{HRScreen, HiringManager, CultureFit, Final}
}

// Parse validates a raw stage name. Unknown stages are a configuration
// error and must abort the operation, never be defaulted.
func Parse(raw string) (Stage, error) {
	s := Stage(raw)
	switch s {
	case HRScreen, HiringManager, CultureFit, Final:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStage, raw)
}

// Tone and depth select the interviewer persona modifiers.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneFriendly     Tone = "friendly"
	ToneChallenging  Tone = "challenging"
)

type Depth string

const (
	DepthBasic  Depth = "basic"
	DepthMedium Depth = "medium"
	DepthDeep   Depth = "deep"
)

// HonestyLevel governs how blunt the grading model is told to be.
type HonestyLevel string

const (
	HonestyLenient   HonestyLevel = "lenient"
	HonestyFair      HonestyLevel = "fair"
	HonestyTough     HonestyLevel = "tough"
	HonestyVeryTough HonestyLevel = "very_tough"
)
