package collector

import (
	"github.com/baulytics/baupreis/internal/collector/adapters/baumarkt"
	"github.com/baulytics/baupreis/internal/collector/adapters/destatis"
	"github.com/baulytics/baupreis/internal/collector/adapters/lme"
	"github.com/baulytics/baupreis/internal/collector/adapters/synthetic"
	collectordomain "github.com/baulytics/baupreis/internal/collector/domain"
	"github.com/baulytics/baupreis/internal/collector/service"
	"github.com/baulytics/baupreis/internal/config"
	materialdomain "github.com/baulytics/baupreis/internal/material/domain"
	"github.com/baulytics/baupreis/internal/ratelimit"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("collector",
	fx.Provide(
		fx.Annotate(provideAdapters, fx.ResultTags(`name:"priceAdapters"`)),
	),
	fx.Provide(service.New),
)

// provideAdapters assembles the adapter chain in merge priority order,
// lowest precedence first: synthetic baseline < statistical index < retail
// spot < metals exchange. The order matches real-world data freshness and
// must stay explicit because the merge depends on it.
func provideAdapters(cfg config.Config, db *gorm.DB, repo materialdomain.Repository, rdb *redis.Client, log *zap.Logger) []collectordomain.Adapter {
	return []collectordomain.Adapter{
		synthetic.New(db, repo),
		destatis.New(
			cfg.DestatisBaseURL,
			cfg.AdapterTimeout,
			ratelimit.NewSourceLimiter(rdb, destatis.SourceName, 0.5, 5),
			log,
		),
		baumarkt.New(
			cfg.BaumarktBaseURL,
			cfg.AdapterTimeout,
			ratelimit.NewSourceLimiter(rdb, baumarkt.SourceName, 1, 10),
			log,
		),
		lme.New(
			cfg.LMEBaseURL,
			cfg.LMEAPIKey,
			cfg.AdapterTimeout,
			db,
			repo,
			ratelimit.NewSourceLimiter(rdb, lme.SourceName, 1, 5),
			log,
		),
	}
}
