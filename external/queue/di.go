package queue

import (
	"github.com/samber/do/v2"

	"github.com/dryrunhq/dryrun/internal/config"
	"github.com/dryrunhq/dryrun/internal/queue"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*RabbitMQ, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewRabbitMQ(cfg.RabbitMQURL)
	})
	do.Provide(injector, func(i do.Injector) (queue.Publisher, error) {
		return do.MustInvoke[*RabbitMQ](i), nil
	})
	do.Provide(injector, func(i do.Injector) (queue.Consumer, error) {
		return do.MustInvoke[*RabbitMQ](i), nil
	})
}
