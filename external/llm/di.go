package llm

import (
	"time"

	"github.com/samber/do/v2"

	"github.com/dryrunhq/dryrun/internal/config"
	internalllm "github.com/dryrunhq/dryrun/internal/llm"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (internalllm.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, time.Duration(cfg.OpenAITimeoutSec)*time.Second), nil
	})
}
