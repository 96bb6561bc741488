package server

import (
	"context"
	"net/http"
	"time"

	"github.com/baulytics/baupreis/internal/clock"
	"github.com/baulytics/baupreis/internal/config"
	indexdomain "github.com/baulytics/baupreis/internal/index/domain"
	materialdomain "github.com/baulytics/baupreis/internal/material/domain"
	"github.com/baulytics/baupreis/internal/notify"
	obsmiddleware "github.com/baulytics/baupreis/internal/observability/logger"
	obsmetrics "github.com/baulytics/baupreis/internal/observability/metrics"
	pricedomain "github.com/baulytics/baupreis/internal/price/domain"
	"github.com/baulytics/baupreis/internal/scheduler"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(run),
)

func NewEngine(httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(httpMetrics)
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	DB           *gorm.DB
	Log          *zap.Logger
	Clock        clock.Clock
	IndexRepo    indexdomain.Repository
	MaterialRepo materialdomain.Repository
	PriceRepo    pricedomain.Repository
	Notifier     notify.Notifier
	Scheduler    *scheduler.Scheduler
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	db           *gorm.DB
	log          *zap.Logger
	clock        clock.Clock
	indexRepo    indexdomain.Repository
	materialRepo materialdomain.Repository
	priceRepo    pricedomain.Repository
	notifier     notify.Notifier
	scheduler    *scheduler.Scheduler
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		db:           p.DB,
		log:          p.Log.Named("server"),
		clock:        p.Clock,
		indexRepo:    p.IndexRepo,
		materialRepo: p.MaterialRepo,
		priceRepo:    p.PriceRepo,
		notifier:     p.Notifier,
		scheduler:    p.Scheduler,
	}

	svc.registerCronRoutes()
	svc.registerAPIRoutes()
	svc.registerHealthRoutes()

	return svc
}

func (s *Server) registerCronRoutes() {
	cron := s.engine.Group("/api/cron")
	cron.Use(s.CronAuthRequired())
	cron.POST("/collect-prices", s.TriggerCollect)
	cron.POST("/calculate-index", s.TriggerCalculateIndex)
	cron.POST("/downgrade-trials", s.TriggerDowngradeTrials)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.GET("/index/latest", s.GetLatestIndex)
	api.GET("/index/history", s.GetIndexHistory)
	api.GET("/materials", s.ListMaterials)
	api.GET("/materials/:code/prices", s.GetMaterialPrices)
}

func (s *Server) registerHealthRoutes() {
	s.engine.GET("/health", s.Health)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, _ *Server) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
