package service

import (
	"context"
	"errors"

	"github.com/ridha-415/filaops-sub000/internal/engine"
	"github.com/ridha-415/filaops-sub000/internal/entity"
	"github.com/ridha-415/filaops-sub000/internal/repository"
	"gorm.io/gorm"
)

// catalogAdapter 把仓库层适配为引擎的只读Store。
// 同时实现 engine.CatalogStore 和 engine.AvailabilityStore。
type catalogAdapter struct {
	productRepo   *repository.ProductRepository
	bomRepo       *repository.BOMRepository
	inventoryRepo *repository.InventoryRepository
}

func newCatalogAdapter(repos *repository.Repositories) *catalogAdapter {
	return &catalogAdapter{
		productRepo:   repos.Product,
		bomRepo:       repos.BOM,
		inventoryRepo: repos.Inventory,
	}
}

func (a *catalogAdapter) Component(ctx context.Context, id string) (*engine.Component, error) {
	p, err := a.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &engine.NotFoundError{Kind: "product", ID: id}
		}
		return nil, err
	}

	hasBOM, err := a.bomRepo.HasActiveBOM(ctx, id)
	if err != nil {
		return nil, err
	}

	return &engine.Component{
		ID:            p.ID,
		SKU:           p.SKU,
		Name:          p.Name,
		Unit:          p.Unit,
		IsRawMaterial: p.IsRawMaterial,
		HasBOM:        hasBOM,
		StandardCost:  p.StandardCost,
	}, nil
}

func (a *catalogAdapter) ActiveBOM(ctx context.Context, productID string) (*engine.BOMSnapshot, error) {
	bom, err := a.bomRepo.GetActiveByProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &engine.NotFoundError{Kind: "bom", ID: productID}
		}
		return nil, err
	}
	return snapshotFromBOM(bom), nil
}

func (a *catalogAdapter) Available(ctx context.Context, productID, location string) (float64, error) {
	return a.inventoryRepo.GetAvailable(ctx, productID, location)
}

// snapshotFromBOM 实体转引擎快照
func snapshotFromBOM(bom *entity.BOM) *engine.BOMSnapshot {
	snap := &engine.BOMSnapshot{
		ID:        bom.ID,
		ProductID: bom.ProductID,
		Code:      bom.Code,
		Version:   bom.Version,
		Lines:     make([]engine.LineSnapshot, 0, len(bom.Lines)),
	}
	for _, line := range bom.Lines {
		snap.Lines = append(snap.Lines, engine.LineSnapshot{
			ID:          line.ID,
			ComponentID: line.ComponentID,
			Quantity:    line.Quantity,
			ScrapFactor: line.ScrapFactor,
			Unit:        line.Unit,
			Sequence:    line.Sequence,
		})
	}
	return snap
}
