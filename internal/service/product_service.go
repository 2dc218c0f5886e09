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

type ProductService struct {
	repo    *repository.ProductRepository
	bomRepo *repository.BOMRepository
}

func NewProductService(repo *repository.ProductRepository, bomRepo *repository.BOMRepository) *ProductService {
	return &ProductService{repo: repo, bomRepo: bomRepo}
}

type CreateProductRequest struct {
	SKU           string  `json:"sku" binding:"required"`
	Name          string  `json:"name" binding:"required"`
	Unit          string  `json:"unit"`
	IsRawMaterial bool    `json:"is_raw_material"`
	StandardCost  float64 `json:"standard_cost" binding:"gte=0"`
	Description   string  `json:"description"`
}

func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*entity.Product, error) {
	if _, err := s.repo.GetBySKU(ctx, req.SKU); err == nil {
		return nil, fmt.Errorf("SKU已存在: %s", req.SKU)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("查询产品失败: %w", err)
	}

	unit := req.Unit
	if unit == "" {
		unit = "pcs"
	}

	p := &entity.Product{
		ID:            newID(),
		SKU:           req.SKU,
		Name:          req.Name,
		Unit:          unit,
		IsRawMaterial: req.IsRawMaterial,
		StandardCost:  req.StandardCost,
		Status:        entity.ProductStatusActive,
		Description:   req.Description,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("创建产品失败: %w", err)
	}
	return p, nil
}

func (s *ProductService) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &engine.NotFoundError{Kind: "product", ID: id}
		}
		return nil, err
	}
	hasBOM, err := s.bomRepo.HasActiveBOM(ctx, id)
	if err != nil {
		return nil, err
	}
	p.HasBOM = hasBOM
	return p, nil
}

type UpdateProductRequest struct {
	Name         *string  `json:"name"`
	Unit         *string  `json:"unit"`
	StandardCost *float64 `json:"standard_cost"`
	Status       *string  `json:"status"`
	Description  *string  `json:"description"`
}

func (s *ProductService) Update(ctx context.Context, id string, req UpdateProductRequest) (*entity.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &engine.NotFoundError{Kind: "product", ID: id}
		}
		return nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Unit != nil {
		p.Unit = *req.Unit
	}
	if req.StandardCost != nil {
		if *req.StandardCost < 0 {
			return nil, fmt.Errorf("标准成本不能为负")
		}
		p.StandardCost = *req.StandardCost
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	if req.Description != nil {
		p.Description = *req.Description
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("更新产品失败: %w", err)
	}
	return p, nil
}

func (s *ProductService) List(ctx context.Context, params repository.ProductListParams) ([]entity.Product, int64, error) {
	products, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	for i := range products {
		hasBOM, bErr := s.bomRepo.HasActiveBOM(ctx, products[i].ID)
		if bErr != nil {
			return nil, 0, bErr
		}
		products[i].HasBOM = hasBOM
	}
	return products, total, nil
}
