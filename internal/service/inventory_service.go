package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ridha-415/filaops-sub000/internal/engine"
	"github.com/ridha-415/filaops-sub000/internal/entity"
	"github.com/ridha-415/filaops-sub000/internal/repository"
	"gorm.io/gorm"
)

type InventoryService struct {
	repo        *repository.InventoryRepository
	productRepo *repository.ProductRepository
}

func NewInventoryService(repo *repository.InventoryRepository, productRepo *repository.ProductRepository) *InventoryService {
	return &InventoryService{repo: repo, productRepo: productRepo}
}

type SetInventoryRequest struct {
	ProductID    string  `json:"product_id" binding:"required"`
	Location     string  `json:"location"`
	Quantity     float64 `json:"quantity" binding:"gte=0"`
	AvailableQty float64 `json:"available_qty" binding:"gte=0"`
	Unit         string  `json:"unit"`
}

// Set 按产品+库位设置库存（存在则覆盖）
func (s *InventoryService) Set(ctx context.Context, req SetInventoryRequest) (*entity.Inventory, error) {
	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &engine.NotFoundError{Kind: "product", ID: req.ProductID}
		}
		return nil, err
	}

	if req.AvailableQty > req.Quantity {
		return nil, fmt.Errorf("可用数量不能大于在库数量")
	}

	location := req.Location
	if location == "" {
		location = "MAIN"
	}
	unit := req.Unit
	if unit == "" {
		unit = product.Unit
	}

	inv := &entity.Inventory{
		ID:           newID(),
		ProductID:    req.ProductID,
		Location:     location,
		Quantity:     req.Quantity,
		AvailableQty: req.AvailableQty,
		Unit:         unit,
	}
	if err := s.repo.Upsert(ctx, inv); err != nil {
		return nil, fmt.Errorf("写入库存失败: %w", err)
	}

	// Upsert命中已有记录时取回落库后的行
	stored, err := s.repo.Get(ctx, req.ProductID, location)
	if err != nil {
		return inv, nil
	}
	return stored, nil
}

func (s *InventoryService) GetAvailable(ctx context.Context, productID, location string) (float64, error) {
	return s.repo.GetAvailable(ctx, productID, location)
}

func (s *InventoryService) List(ctx context.Context, params repository.InventoryListParams) ([]entity.Inventory, int64, error) {
	return s.repo.List(ctx, params)
}
