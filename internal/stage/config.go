package stage

import "fmt"

// Criterion is one weighted rubric criterion used when grading a transcript.
type Criterion struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Guidelines  string  `yaml:"guidelines"`
	Rubric      string  `yaml:"rubric"`
	Weight      float64 `yaml:"weight"`
}

// Definition holds everything stage-specific: the interviewer's base prompt,
// the observer's evaluation prompt, the exchange budget before the stage is
// wrapped up, and the rubric the grading pipeline scores against.
type Definition struct {
	BasePrompt     string      `yaml:"base_prompt"`
	ObserverPrompt string      `yaml:"observer_prompt"`
	MaxExchanges   int         `yaml:"max_exchanges"`
	Free           bool        `yaml:"free"`
	WrapUpCue      string      `yaml:"wrap_up_cue"`
	Criteria       []Criterion `yaml:"criteria"`
}

// Config is the full stage configuration loaded from the stages YAML file.
// It is passed into components at call time, never read as ambient state.
type Config struct {
	Stages        map[Stage]Definition    `yaml:"stages"`
	Tones         map[Tone]string         `yaml:"tones"`
	Depths        map[Depth]string        `yaml:"depths"`
	HonestyLevels map[HonestyLevel]string `yaml:"honesty_levels"`
	RedFlags      []string                `yaml:"red_flags"`
}

const (
	hrScreenCriteriaCount      = 7
	hiringManagerCriteriaCount = 6
)

// Validate checks structural completeness. A broken stage configuration is
// fatal: missing prompts or rubric definitions must never be defaulted.
func (c *Config) Validate() error {
	for _, s := range All() {
		def, ok := c.Stages[s]
		if !ok {
			return fmt.Errorf("stage %q is not configured", s)
		}
		if def.BasePrompt == "" {
			return fmt.Errorf("stage %q has no base_prompt", s)
		}
		if def.ObserverPrompt == "" {
			return fmt.Errorf("stage %q has no observer_prompt", s)
		}
		if def.MaxExchanges <= 0 {
			return fmt.Errorf("stage %q max_exchanges must be positive, got %d", s, def.MaxExchanges)
		}
		if len(def.Criteria) == 0 {
			return fmt.Errorf("stage %q has no rubric criteria", s)
		}
		for _, crit := range def.Criteria {
			if crit.Name == "" {
				return fmt.Errorf("stage %q has a rubric criterion without a name", s)
			}
			if crit.Weight <= 0 {
				return fmt.Errorf("stage %q criterion %q weight must be positive, got %g", s, crit.Name, crit.Weight)
			}
		}
	}
	if n := len(c.Stages[HRScreen].Criteria); n != hrScreenCriteriaCount {
		return fmt.Errorf("stage %q must define exactly %d criteria, got %d", HRScreen, hrScreenCriteriaCount, n)
	}
	if n := len(c.Stages[HiringManager].Criteria); n != hiringManagerCriteriaCount {
		return fmt.Errorf("stage %q must define exactly %d criteria, got %d", HiringManager, hiringManagerCriteriaCount, n)
	}
	if c.Stages[Final].WrapUpCue == "" {
		return fmt.Errorf("stage %q requires a wrap_up_cue", Final)
	}
	for _, tone := range []Tone{ToneProfessional, ToneFriendly, ToneChallenging} {
		if c.Tones[tone] == "" {
			return fmt.Errorf("tone %q is not configured", tone)
		}
	}
	for _, depth := range []Depth{DepthBasic, DepthMedium, DepthDeep} {
		if c.Depths[depth] == "" {
			return fmt.Errorf("depth %q is not configured", depth)
		}
	}
	for _, level := range []HonestyLevel{HonestyLenient, HonestyFair, HonestyTough, HonestyVeryTough} {
		if c.HonestyLevels[level] == "" {
			return fmt.Errorf("honesty level %q is not configured", level)
		}
	}
	return nil
}

// Definition returns the configured definition for a stage.
func (c *Config) Definition(s Stage) (Definition, error) {
	def, ok := c.Stages[s]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknownStage, s)
	}
	return def, nil
}
