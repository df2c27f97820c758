package interview

import (
	"github.com/samber/do/v2"

	"github.com/dryrunhq/dryrun/internal/llm"
	"github.com/dryrunhq/dryrun/internal/observer"
	"github.com/dryrunhq/dryrun/internal/queue"
	"github.com/dryrunhq/dryrun/internal/repository"
	"github.com/dryrunhq/dryrun/internal/speech"
	"github.com/dryrunhq/dryrun/internal/stage"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Manager, error) {
		stageCfg := do.MustInvoke[*stage.Config](i)
		repo := do.MustInvoke[repository.Repository](i)
		model := do.MustInvoke[llm.Client](i)
		obs := do.MustInvoke[*observer.Agent](i)
		transcriber := do.MustInvoke[speech.Transcriber](i)
		publisher := do.MustInvoke[queue.Publisher](i)
		return NewManager(stageCfg, repo, model, obs, transcriber, publisher), nil
	})
}
