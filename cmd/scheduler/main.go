package main

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/baulytics/baupreis/internal/clock"
	"github.com/baulytics/baupreis/internal/collector"
	"github.com/baulytics/baupreis/internal/config"
	"github.com/baulytics/baupreis/internal/index"
	"github.com/baulytics/baupreis/internal/material"
	"github.com/baulytics/baupreis/internal/migration"
	"github.com/baulytics/baupreis/internal/observability"
	"github.com/baulytics/baupreis/internal/organization"
	"github.com/baulytics/baupreis/internal/price"
	"github.com/baulytics/baupreis/internal/ratelimit"
	"github.com/baulytics/baupreis/internal/scheduler"
	"github.com/baulytics/baupreis/pkg/db"
	"go.uber.org/fx"
)

// Headless job runner for deployments where HTTP triggers are not used.
func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		ratelimit.Module,
		migration.Module,

		// Domain services required by the jobs
		material.Module,
		price.Module,
		collector.Module,
		index.Module,
		organization.Module,
		scheduler.Module,

		// No server module!
		fx.Invoke(StartScheduler),
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

func StartScheduler(lc fx.Lifecycle, s *scheduler.Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go s.RunForever(context.Background())
			return nil
		},
	})
}
