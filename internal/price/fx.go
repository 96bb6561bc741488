package price

import (
	"github.com/baulytics/baupreis/internal/price/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("price",
	fx.Provide(repository.Provide),
)
