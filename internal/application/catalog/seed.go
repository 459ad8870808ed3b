package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/printshop-api/internal/domain/entity"
	"github.com/jhoicas/printshop-api/internal/domain/repository"
	"github.com/jhoicas/printshop-api/internal/domain/specification"
)

func boolPtr(b bool) *bool { return &b }

// DefaultServices son los servicios que se cargan junto con el catálogo incorporado.
func DefaultServices(now time.Time) []*entity.Service {
	return []*entity.Service{
		{
			ID:    "business-cards",
			Title: "Business Cards",
			Options: entity.ServiceOptions{
				FinishIDs: []string{"lamination", "embossing", "rounded_corners", "uv_coating", "foil_stamping"},
				Paper:     entity.PaperConstraints{Types: []string{"Cardstock", "Linen"}, WeightsGSM: []int{300, 350}},
				Sizing:    entity.SizingOptions{StandardPresets: []string{"Business Card"}, AllowCustom: boolPtr(false)},
			},
			Active: true, CreatedAt: now, UpdatedAt: now,
		},
		{
			ID:    "flyers",
			Title: "Flyers",
			Options: entity.ServiceOptions{
				FinishIDs: []string{"lamination", "uv_coating", "folding", "scoring"},
				Paper:     entity.PaperConstraints{Types: []string{"Glossy Paper", "Matte Paper", "Recycled Paper"}, WeightsGSM: []int{100, 120, 150, 200}},
				Sizing:    entity.SizingOptions{StandardPresets: []string{"A5", "A4", "Letter"}},
			},
			Active: true, CreatedAt: now, UpdatedAt: now,
		},
		{
			ID:    "booklets",
			Title: "Booklets",
			Options: entity.ServiceOptions{
				FinishIDs: []string{"saddle_stitch", "lamination", "folding", "scoring"},
				Paper:     entity.PaperConstraints{Types: []string{"Matte Paper", "Bond Paper"}},
				Sizing:    entity.SizingOptions{StandardPresets: []string{"A5", "A4"}, AllowCustom: boolPtr(false)},
			},
			Active: true, CreatedAt: now, UpdatedAt: now,
		},
		{
			ID:     "custom-print",
			Title:  "Custom Print",
			Active: true, CreatedAt: now, UpdatedAt: now,
		},
	}
}

// Seed escribe cat y services en las tablas de referencia. Hace upsert, así que repetirlo es seguro.
func Seed(ctx context.Context, repo repository.CatalogRepository, cat specification.Catalog, services []*entity.Service) error {
	for i, name := range cat.PaperTypes {
		if err := repo.SavePaperType(ctx, name, i); err != nil {
			return fmt.Errorf("seed paper type %s: %w", name, err)
		}
	}
	for _, gsm := range cat.PaperWeightsGSM {
		if err := repo.SavePaperWeight(ctx, gsm); err != nil {
			return fmt.Errorf("seed paper weight %d: %w", gsm, err)
		}
	}
	for i, p := range cat.SizePresets {
		if err := repo.SaveSizePreset(ctx, p, i); err != nil {
			return fmt.Errorf("seed size preset %s: %w", p.Name, err)
		}
	}
	for _, f := range cat.FinishOptions {
		if err := repo.SaveFinishOption(ctx, f); err != nil {
			return fmt.Errorf("seed finish %s: %w", f.ID, err)
		}
	}
	for _, svc := range services {
		if err := repo.SaveService(ctx, svc); err != nil {
			return fmt.Errorf("seed service %s: %w", svc.ID, err)
		}
	}
	return nil
}
