package material

import (
	"github.com/baulytics/baupreis/internal/material/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("material",
	fx.Provide(repository.Provide),
)
