package index

import (
	"github.com/baulytics/baupreis/internal/index/repository"
	"github.com/baulytics/baupreis/internal/index/service"
	"go.uber.org/fx"
)

var Module = fx.Module("index",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
