package seed

import (
	"context"
	"errors"
	"time"

	materialdomain "github.com/baulytics/baupreis/internal/material/domain"
	"github.com/baulytics/baupreis/pkg/db"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type catalogEntry struct {
	Code      string
	Name      string
	Category  materialdomain.Category
	Unit      string
	LMESymbol string
}

// defaultCatalog is the material set the collectors and the index are built
// around. Codes are the stable keys every source adapter resolves against.
var defaultCatalog = []catalogEntry{
	{Code: "steel-rebar", Name: "Betonstahl B500", Category: materialdomain.CategorySteel, Unit: "EUR/t"},
	{Code: "steel-beam", Name: "Stahltraeger IPE", Category: materialdomain.CategorySteel, Unit: "EUR/t"},
	{Code: "steel-sheet", Name: "Warmband Stahlblech", Category: materialdomain.CategorySteel, Unit: "EUR/t"},

	{Code: "wood-spruce", Name: "Konstruktionsvollholz Fichte", Category: materialdomain.CategoryWood, Unit: "EUR/m3"},
	{Code: "wood-osb", Name: "OSB/3 Platte", Category: materialdomain.CategoryWood, Unit: "EUR/m3"},
	{Code: "wood-kvh", Name: "KVH NSi", Category: materialdomain.CategoryWood, Unit: "EUR/m3"},

	{Code: "concrete-c25", Name: "Transportbeton C25/30", Category: materialdomain.CategoryConcrete, Unit: "EUR/m3"},
	{Code: "cement-cem2", Name: "Zement CEM II", Category: materialdomain.CategoryConcrete, Unit: "EUR/t"},
	{Code: "gravel-16", Name: "Kies 0/16", Category: materialdomain.CategoryConcrete, Unit: "EUR/t"},

	{Code: "copper-cable", Name: "Kupfer Walzdraht", Category: materialdomain.CategoryMetals, Unit: "EUR/t", LMESymbol: "copper"},
	{Code: "aluminium-profile", Name: "Aluminiumprofil", Category: materialdomain.CategoryMetals, Unit: "EUR/t", LMESymbol: "aluminium"},
	{Code: "zinc-sheet", Name: "Zinkblech", Category: materialdomain.CategoryMetals, Unit: "EUR/t", LMESymbol: "zinc"},

	{Code: "diesel", Name: "Diesel", Category: materialdomain.CategoryEnergy, Unit: "EUR/l"},
	{Code: "bitumen", Name: "Bitumen", Category: materialdomain.CategoryEnergy, Unit: "EUR/t"},

	{Code: "insulation-eps", Name: "EPS Daemmplatte", Category: materialdomain.CategoryInsulation, Unit: "EUR/m3"},
	{Code: "insulation-rock", Name: "Steinwolle", Category: materialdomain.CategoryInsulation, Unit: "EUR/m3"},
}

// EnsureMaterialCatalog seeds the default material catalog for startup
// bootstrap. Existing codes are left untouched, so a renamed or deactivated
// material survives restarts.
func EnsureMaterialCatalog(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range defaultCatalog {
			if err := ensureMaterialTx(ctx, tx, node, entry); err != nil {
				return err
			}
		}
		return nil
	})
}

func ensureMaterialTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, entry catalogEntry) error {
	var existing materialdomain.Material
	err := tx.WithContext(ctx).Where("code = ?", entry.Code).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	material := materialdomain.Material{
		ID:        node.Generate(),
		Code:      entry.Code,
		Name:      entry.Name,
		Category:  entry.Category,
		Unit:      entry.Unit,
		LMESymbol: entry.LMESymbol,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(&material).Error; err != nil {
		// Two instances can bootstrap at the same time; losing the race on
		// the unique code is not a failure.
		if db.IsDuplicateKeyErr(err) {
			return nil
		}
		return err
	}
	return nil
}
