package grading

import (
	"github.com/samber/do/v2"

	"github.com/dryrunhq/dryrun/internal/config"
	"github.com/dryrunhq/dryrun/internal/llm"
	"github.com/dryrunhq/dryrun/internal/observer"
	"github.com/dryrunhq/dryrun/internal/queue"
	"github.com/dryrunhq/dryrun/internal/repository"
	"github.com/dryrunhq/dryrun/internal/speech"
	"github.com/dryrunhq/dryrun/internal/stage"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Pipeline, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo := do.MustInvoke[repository.Repository](i)
		model := do.MustInvoke[llm.Client](i)
		obs := do.MustInvoke[*observer.Agent](i)
		return NewPipeline(repo, model, obs, WithMaxAttempts(cfg.GradingMaxAttempts)), nil
	})
	do.Provide(injector, func(i do.Injector) (*Worker, error) {
		cfg := do.MustInvoke[*config.Config](i)
		stageCfg := do.MustInvoke[*stage.Config](i)
		repo := do.MustInvoke[repository.Repository](i)
		consumer := do.MustInvoke[queue.Consumer](i)
		pipeline := do.MustInvoke[*Pipeline](i)
		synth := do.MustInvoke[speech.Synthesizer](i)
		opts := Options{
			Honesty:               stage.HonestyLevel(cfg.GradingHonestyLevel),
			RequireJobAlignment:   cfg.GradingRequireJobAlignment,
			RequireQuotedEvidence: cfg.GradingRequireQuotedEvidence,
		}
		return NewWorker(consumer, pipeline, repo, synth, stageCfg, opts), nil
	})
}
