package migration

import (
	indexdomain "github.com/baulytics/baupreis/internal/index/domain"
	materialdomain "github.com/baulytics/baupreis/internal/material/domain"
	orgdomain "github.com/baulytics/baupreis/internal/organization/domain"
	pricedomain "github.com/baulytics/baupreis/internal/price/domain"
	"github.com/baulytics/baupreis/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB) error {
		if conn.Dialector.Name() == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// Local and test databases (sqlite, mysql) take the schema
			// straight from the models.
			if err := conn.AutoMigrate(
				&materialdomain.Material{},
				&pricedomain.PricePoint{},
				&indexdomain.IndexRecord{},
				&orgdomain.Organization{},
				&orgdomain.SelectedMaterial{},
				&orgdomain.AlertRule{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureMaterialCatalog(conn)
	}),
)
