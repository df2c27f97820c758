package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/samber/do/v2"

	"github.com/dryrunhq/dryrun/internal/config"
	"github.com/dryrunhq/dryrun/internal/interview"
	"github.com/dryrunhq/dryrun/internal/repository"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Handler, error) {
		manager := do.MustInvoke[*interview.Manager](i)
		repo := do.MustInvoke[repository.Repository](i)
		return NewHandler(manager, repo), nil
	})
	do.Provide(injector, func(i do.Injector) (*gin.Engine, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if !cfg.IsDevelopment() {
			gin.SetMode(gin.ReleaseMode)
		}
		engine := gin.New()
		engine.Use(gin.Recovery())
		do.MustInvoke[*Handler](i).Register(engine)
		return engine, nil
	})
}
