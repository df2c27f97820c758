package stage

import (
	"errors"
	"fmt"
	"testing"
)

func criteria(n int) []Criterion {
	out := make([]Criterion, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Criterion{Name: fmt.Sprintf("criterion_%d", i+1), Weight: 1})
	}
	return out
}

func validStageConfig() *Config {
	cfg := &Config{
		Stages: map[Stage]Definition{
			HRScreen:      {BasePrompt: "hr", ObserverPrompt: "obs", MaxExchanges: 6, Free: true, Criteria: criteria(7)},
			HiringManager: {BasePrompt: "hm", ObserverPrompt: "obs", MaxExchanges: 8, Criteria: criteria(6)},
			CultureFit:    {BasePrompt: "cf", ObserverPrompt: "obs", MaxExchanges: 10, Criteria: criteria(5)},
			Final:         {BasePrompt: "fi", ObserverPrompt: "obs", MaxExchanges: 10, WrapUpCue: "questions for us", Criteria: criteria(5)},
		},
		Tones:  map[Tone]string{ToneProfessional: "p", ToneFriendly: "f", ToneChallenging: "c"},
		Depths: map[Depth]string{DepthBasic: "b", DepthMedium: "m", DepthDeep: "d"},
		HonestyLevels: map[HonestyLevel]string{
			HonestyLenient: "l", HonestyFair: "f", HonestyTough: "t", HonestyVeryTough: "vt",
		},
	}
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	if err := validStageConfig().Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidate_MissingStage(t *testing.T) {
	cfg := validStageConfig()
	delete(cfg.Stages, CultureFit)
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing stage")
	}
}

func TestValidate_WrongHRScreenCriteriaCount(t *testing.T) {
	cfg := validStageConfig()
	def := cfg.Stages[HRScreen]
	def.Criteria = criteria(6)
	cfg.Stages[HRScreen] = def
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for wrong hr_screen criteria count")
	}
}

func TestValidate_NonPositiveWeight(t *testing.T) {
	cfg := validStageConfig()
	def := cfg.Stages[HiringManager]
	def.Criteria[0].Weight = 0
	cfg.Stages[HiringManager] = def
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero criterion weight")
	}
}

func TestValidate_FinalNeedsWrapUpCue(t *testing.T) {
	cfg := validStageConfig()
	def := cfg.Stages[Final]
	def.WrapUpCue = ""
	cfg.Stages[Final] = def
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for final stage without wrap-up cue")
	}
}

func TestValidate_MissingHonestyLevel(t *testing.T) {
	cfg := validStageConfig()
	delete(cfg.HonestyLevels, HonestyTough)
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing honesty level")
	}
}

func TestParse(t *testing.T) {
	if _, err := Parse("hr_screen"); err != nil {
		t.Fatalf("expected hr_screen to parse, got %v", err)
	}
	if _, err := Parse("panel"); !errors.Is(err, ErrUnknownStage) {
		t.Fatalf("expected ErrUnknownStage, got %v", err)
	}
}

func TestDefinition_Unknown(t *testing.T) {
	cfg := validStageConfig()
	if _, err := cfg.Definition(Stage("panel")); !errors.Is(err, ErrUnknownStage) {
		t.Fatalf("expected ErrUnknownStage, got %v", err)
	}
}
