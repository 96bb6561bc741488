package organization

import (
	"github.com/baulytics/baupreis/internal/organization/repository"
	"github.com/baulytics/baupreis/internal/organization/service"
	"go.uber.org/fx"
)

var Module = fx.Module("organization",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
