package stageconfig

import (
	"github.com/samber/do/v2"

	"github.com/dryrunhq/dryrun/internal/config"
	"github.com/dryrunhq/dryrun/internal/stage"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*stage.Config, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return Load(cfg.StagesConfigPath)
	})
}
