package observer

import (
	"time"

	"github.com/samber/do/v2"

	"github.com/dryrunhq/dryrun/internal/config"
	"github.com/dryrunhq/dryrun/internal/llm"
	"github.com/dryrunhq/dryrun/internal/repository"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Agent, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo := do.MustInvoke[repository.Repository](i)
		model := do.MustInvoke[llm.Client](i)
		dispatcher := NewGoDispatcher(time.Duration(cfg.ObserverTimeoutSec) * time.Second)
		return NewAgent(repo, model, dispatcher), nil
	})
}
