package scheduler

import (
	"github.com/baulytics/baupreis/internal/config"
	"github.com/baulytics/baupreis/internal/ratelimit"
	"go.uber.org/fx"
)

var Module = fx.Module("scheduler",
	fx.Provide(ProvideConfig),
	fx.Provide(provideLocker),
	fx.Provide(New),
)

func ProvideConfig(cfg config.Config) Config {
	return Config{
		CollectInterval:   cfg.CollectInterval,
		IndexInterval:     cfg.IndexInterval,
		DowngradeInterval: cfg.DowngradeInterval,
	}.withDefaults()
}

// provideLocker narrows the redis locker to the lease surface the scheduler
// uses. A nil redis locker still satisfies it and grants every lease.
func provideLocker(l *ratelimit.Locker) JobLocker {
	return l
}
