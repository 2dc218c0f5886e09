package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ridha-415/filaops-sub000/internal/engine"
	"github.com/ridha-415/filaops-sub000/internal/entity"
	"github.com/ridha-415/filaops-sub000/internal/repository"
	"gorm.io/gorm"
)

// ErrInvalidState 状态机不允许的订单操作
var ErrInvalidState = errors.New("invalid order state")

type ProductionService struct {
	repo            *repository.ProductionRepository
	bomRepo         *repository.BOMRepository
	productRepo     *repository.ProductRepository
	inventoryRepo   *repository.InventoryRepository
	defaultLocation string
}

func NewProductionService(repo *repository.ProductionRepository, bomRepo *repository.BOMRepository,
	productRepo *repository.ProductRepository, inventoryRepo *repository.InventoryRepository,
	defaultLocation string) *ProductionService {
	return &ProductionService{
		repo:            repo,
		bomRepo:         bomRepo,
		productRepo:     productRepo,
		inventoryRepo:   inventoryRepo,
		defaultLocation: defaultLocation,
	}
}

type CreateProductionOrderRequest struct {
	ProductID    string `json:"product_id" binding:"required"`
	Quantity     int64  `json:"quantity" binding:"required,gt=0"`
	Location     string `json:"location"`
	AllowPartial bool   `json:"allow_partial"`
	Notes        string `json:"notes"`
}

// ProductionOrderResult 下单结果：订单 + 可行性明细
type ProductionOrderResult struct {
	Order       *entity.ProductionOrder   `json:"order"`
	Feasibility *engine.FeasibilityResult `json:"feasibility"`
}

// Create 创建生产订单。按产品激活BOM做单层可行性检查：
// 库存不足且不允许部分交付时拒单；允许时按最大可产量拆分，
// 差额记为缺货量，订单进入BACKORDERED状态。
// 库存为非预留模型，下单不扣减可用量。
func (s *ProductionService) Create(ctx context.Context, req CreateProductionOrderRequest, userID string) (*ProductionOrderResult, error) {
	if _, err := s.productRepo.GetByID(ctx, req.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &engine.NotFoundError{Kind: "product", ID: req.ProductID}
		}
		return nil, err
	}

	bom, err := s.bomRepo.GetActiveByProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &engine.NotFoundError{Kind: "bom", ID: req.ProductID}
		}
		return nil, err
	}

	location := req.Location
	if location == "" {
		location = s.defaultLocation
	}

	lines, err := feasibilityLines(ctx, bom, s.inventoryRepo, location)
	if err != nil {
		return nil, err
	}
	feasibility := engine.PlanFeasibility(lines, req.Quantity)

	if !feasibility.CanFulfillAll && !req.AllowPartial {
		return nil, &engine.InsufficientInventoryError{
			Requested:         float64(req.Quantity),
			MaxProducible:     float64(feasibility.MaxProducible),
			LimitingComponent: feasibility.LimitingComponentID,
		}
	}

	code, err := s.nextOrderCode(ctx)
	if err != nil {
		return nil, err
	}

	status := entity.POStatusCreated
	if feasibility.BackorderQty > 0 {
		status = entity.POStatusBackordered
	}

	order := &entity.ProductionOrder{
		ID:                 newID(),
		OrderCode:          code,
		ProductID:          req.ProductID,
		BOMID:              bom.ID,
		BOMVersion:         bom.Version,
		QuantityOrdered:    float64(req.Quantity),
		QuantityProducible: float64(feasibility.MaxProducible),
		BackorderQty:       float64(feasibility.BackorderQty),
		LimitingComponent:  feasibility.LimitingComponentID,
		Location:           location,
		Status:             status,
		Notes:              req.Notes,
		CreatedBy:          userID,
	}
	if feasibility.CanFulfillAll {
		order.QuantityProducible = float64(req.Quantity)
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("创建生产订单失败: %w", err)
	}
	return &ProductionOrderResult{Order: order, Feasibility: feasibility}, nil
}

// nextOrderCode 生成当日递增单号 MO-20060102-0001
func (s *ProductionService) nextOrderCode(ctx context.Context) (string, error) {
	prefix := "MO-" + time.Now().Format("20060102")
	count, err := s.repo.CountByPrefix(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("生成单号失败: %w", err)
	}
	return fmt.Sprintf("%s-%04d", prefix, count+1), nil
}

func (s *ProductionService) GetByID(ctx context.Context, id string) (*entity.ProductionOrder, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &engine.NotFoundError{Kind: "production_order", ID: id}
		}
		return nil, err
	}
	return order, nil
}

func (s *ProductionService) List(ctx context.Context, params repository.ProductionListParams) ([]entity.ProductionOrder, int64, error) {
	return s.repo.List(ctx, params)
}

// Release 下达订单。缺货单也可下达（按可产量投产）。
func (s *ProductionService) Release(ctx context.Context, id string) (*entity.ProductionOrder, error) {
	order, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != entity.POStatusCreated && order.Status != entity.POStatusBackordered {
		return nil, fmt.Errorf("%w: 状态 %s 不允许下达", ErrInvalidState, order.Status)
	}
	order.Status = entity.POStatusReleased
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("下达订单失败: %w", err)
	}
	return order, nil
}

func (s *ProductionService) Complete(ctx context.Context, id string) (*entity.ProductionOrder, error) {
	order, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != entity.POStatusReleased {
		return nil, fmt.Errorf("%w: 状态 %s 不允许完工", ErrInvalidState, order.Status)
	}
	order.Status = entity.POStatusCompleted
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("完工失败: %w", err)
	}
	return order, nil
}

func (s *ProductionService) Cancel(ctx context.Context, id string) (*entity.ProductionOrder, error) {
	order, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == entity.POStatusCompleted || order.Status == entity.POStatusCancelled {
		return nil, fmt.Errorf("%w: 状态 %s 不允许取消", ErrInvalidState, order.Status)
	}
	order.Status = entity.POStatusCancelled
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("取消失败: %w", err)
	}
	return order, nil
}
