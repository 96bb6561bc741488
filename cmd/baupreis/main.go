package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/baulytics/baupreis/internal/clock"
	"github.com/baulytics/baupreis/internal/collector"
	"github.com/baulytics/baupreis/internal/config"
	"github.com/baulytics/baupreis/internal/index"
	"github.com/baulytics/baupreis/internal/material"
	"github.com/baulytics/baupreis/internal/migration"
	"github.com/baulytics/baupreis/internal/notify"
	"github.com/baulytics/baupreis/internal/observability"
	"github.com/baulytics/baupreis/internal/organization"
	"github.com/baulytics/baupreis/internal/price"
	"github.com/baulytics/baupreis/internal/ratelimit"
	"github.com/baulytics/baupreis/internal/scheduler"
	"github.com/baulytics/baupreis/internal/server"
	"github.com/baulytics/baupreis/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		ratelimit.Module,
		migration.Module,

		// Functional domains
		material.Module,
		price.Module,
		collector.Module,
		index.Module,
		organization.Module,
		notify.Module,
		scheduler.Module,

		server.Module,
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
