package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ridha-415/filaops-sub000/internal/engine"
	"github.com/ridha-415/filaops-sub000/internal/entity"
	"github.com/ridha-415/filaops-sub000/internal/lock"
	"github.com/ridha-415/filaops-sub000/internal/repository"
	"gorm.io/gorm"
)

type RoutingService struct {
	repo        *repository.RoutingRepository
	productRepo *repository.ProductRepository
	locker      *lock.Locker
	db          *gorm.DB
}

func NewRoutingService(repo *repository.RoutingRepository, productRepo *repository.ProductRepository, locker *lock.Locker) *RoutingService {
	return &RoutingService{repo: repo, productRepo: productRepo, locker: locker, db: repo.DB()}
}

type OperationInput struct {
	WorkCenterID     string  `json:"work_center_id" binding:"required"`
	Name             string  `json:"name" binding:"required"`
	Code             string  `json:"code"`
	Sequence         int     `json:"sequence"`
	RunTimeMinutes   float64 `json:"run_time_minutes" binding:"gte=0"`
	SetupTimeMinutes float64 `json:"setup_time_minutes" binding:"gte=0"`
	Notes            string  `json:"notes"`
}

type CreateRoutingRequest struct {
	ProductID  string           `json:"product_id"`
	Code       string           `json:"code" binding:"required"`
	Revision   string           `json:"revision"`
	IsTemplate bool             `json:"is_template"`
	Notes      string           `json:"notes"`
	Operations []OperationInput `json:"operations"`
}

// Create 创建工艺路线。product_id为空时必须是模板；
// 产品路线创建即激活，旧激活版本停用。
func (s *RoutingService) Create(ctx context.Context, req CreateRoutingRequest, userID string) (*entity.Routing, error) {
	if req.ProductID == "" && !req.IsTemplate {
		return nil, fmt.Errorf("非模板工艺路线必须关联产品")
	}
	if req.ProductID != "" {
		if _, err := s.productRepo.GetByID(ctx, req.ProductID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &engine.NotFoundError{Kind: "product", ID: req.ProductID}
			}
			return nil, err
		}
	}

	routing := &entity.Routing{
		ID:         newID(),
		ProductID:  req.ProductID,
		Code:       req.Code,
		Version:    1,
		Revision:   req.Revision,
		IsTemplate: req.IsTemplate,
		IsActive:   !req.IsTemplate,
		Notes:      req.Notes,
		CreatedBy:  userID,
	}

	ops, err := s.buildOperations(ctx, routing.ID, req.Operations)
	if err != nil {
		return nil, err
	}
	routing.Operations = ops

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if req.ProductID != "" && !req.IsTemplate {
			maxVersion, vErr := s.repo.MaxVersion(ctx, req.ProductID)
			if vErr != nil {
				return vErr
			}
			routing.Version = maxVersion + 1
			if dErr := s.repo.Deactivate(ctx, tx, req.ProductID); dErr != nil {
				return fmt.Errorf("停用旧版本失败: %w", dErr)
			}
		}
		if cErr := tx.WithContext(ctx).Create(routing).Error; cErr != nil {
			return fmt.Errorf("创建工艺路线失败: %w", cErr)
		}
		return s.recomputeTotals(ctx, tx, routing.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, routing.ID)
}

// buildOperations 校验工作中心并按输入构造工序（成本即时计算）
func (s *RoutingService) buildOperations(ctx context.Context, routingID string, inputs []OperationInput) ([]entity.Operation, error) {
	ops := make([]entity.Operation, 0, len(inputs))
	for i, input := range inputs {
		wc, err := s.repo.GetWorkCenter(ctx, input.WorkCenterID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &engine.NotFoundError{Kind: "work_center", ID: input.WorkCenterID}
			}
			return nil, err
		}

		seq := input.Sequence
		if seq == 0 {
			seq = i + 1
		}
		op := entity.Operation{
			ID:               newID(),
			RoutingID:        routingID,
			Sequence:         seq,
			WorkCenterID:     input.WorkCenterID,
			Code:             input.Code,
			Name:             input.Name,
			RunTimeMinutes:   input.RunTimeMinutes,
			SetupTimeMinutes: input.SetupTimeMinutes,
			Notes:            input.Notes,
		}
		op.CalculatedCost = engine.OperationCost(operationSnapshot(&op, wc))
		ops = append(ops, op)
	}
	return ops, nil
}

func (s *RoutingService) GetByID(ctx context.Context, id string) (*entity.Routing, error) {
	routing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &engine.NotFoundError{Kind: "routing", ID: id}
		}
		return nil, err
	}
	return routing, nil
}

func (s *RoutingService) GetActiveByProduct(ctx context.Context, productID string) (*entity.Routing, error) {
	routing, err := s.repo.GetActiveByProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &engine.NotFoundError{Kind: "routing", ID: productID}
		}
		return nil, err
	}
	return routing, nil
}

func (s *RoutingService) List(ctx context.Context, params repository.RoutingListParams) ([]entity.Routing, int64, error) {
	return s.repo.List(ctx, params)
}

type ApplyTemplateRequest struct {
	TemplateID string `json:"template_id" binding:"required"`
	ProductID  string `json:"product_id" binding:"required"`
	Code       string `json:"code"`
	Revision   string `json:"revision"`
}

// ApplyTemplate 从模板克隆工序生成产品的新激活路线
func (s *RoutingService) ApplyTemplate(ctx context.Context, req ApplyTemplateRequest, userID string) (*entity.Routing, error) {
	template, err := s.GetByID(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}
	if !template.IsTemplate {
		return nil, fmt.Errorf("工艺路线 %s 不是模板", req.TemplateID)
	}
	if _, err = s.productRepo.GetByID(ctx, req.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &engine.NotFoundError{Kind: "product", ID: req.ProductID}
		}
		return nil, err
	}

	code := req.Code
	if code == "" {
		code = template.Code
	}

	routing := &entity.Routing{
		ID:        newID(),
		ProductID: req.ProductID,
		Code:      code,
		Version:   1,
		Revision:  req.Revision,
		IsActive:  true,
		Notes:     template.Notes,
		CreatedBy: userID,
	}
	for _, op := range template.Operations {
		routing.Operations = append(routing.Operations, entity.Operation{
			ID:               newID(),
			RoutingID:        routing.ID,
			Sequence:         op.Sequence,
			WorkCenterID:     op.WorkCenterID,
			Code:             op.Code,
			Name:             op.Name,
			RunTimeMinutes:   op.RunTimeMinutes,
			SetupTimeMinutes: op.SetupTimeMinutes,
			CalculatedCost:   op.CalculatedCost,
			Notes:            op.Notes,
		})
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		maxVersion, vErr := s.repo.MaxVersion(ctx, req.ProductID)
		if vErr != nil {
			return vErr
		}
		routing.Version = maxVersion + 1
		if dErr := s.repo.Deactivate(ctx, tx, req.ProductID); dErr != nil {
			return fmt.Errorf("停用旧版本失败: %w", dErr)
		}
		if cErr := tx.WithContext(ctx).Create(routing).Error; cErr != nil {
			return fmt.Errorf("创建工艺路线失败: %w", cErr)
		}
		return s.recomputeTotals(ctx, tx, routing.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, routing.ID)
}

// AddOperation 追加工序，逐工艺路线串行化
func (s *RoutingService) AddOperation(ctx context.Context, routingID string, input OperationInput) (*entity.Routing, error) {
	if _, err := s.GetByID(ctx, routingID); err != nil {
		return nil, err
	}

	err := s.locker.WithLock(ctx, lock.RoutingKey(routingID), func() error {
		wc, wErr := s.repo.GetWorkCenter(ctx, input.WorkCenterID)
		if wErr != nil {
			if errors.Is(wErr, gorm.ErrRecordNotFound) {
				return &engine.NotFoundError{Kind: "work_center", ID: input.WorkCenterID}
			}
			return wErr
		}

		return s.db.Transaction(func(tx *gorm.DB) error {
			existing, lErr := s.repo.ListOperations(ctx, tx, routingID)
			if lErr != nil {
				return lErr
			}

			seq := input.Sequence
			if seq == 0 {
				seq = len(existing) + 1
			}
			op := &entity.Operation{
				ID:               newID(),
				RoutingID:        routingID,
				Sequence:         seq,
				WorkCenterID:     input.WorkCenterID,
				Code:             input.Code,
				Name:             input.Name,
				RunTimeMinutes:   input.RunTimeMinutes,
				SetupTimeMinutes: input.SetupTimeMinutes,
				Notes:            input.Notes,
			}
			op.CalculatedCost = engine.OperationCost(operationSnapshot(op, wc))

			if cErr := s.repo.CreateOperation(ctx, tx, op); cErr != nil {
				return fmt.Errorf("创建工序失败: %w", cErr)
			}
			return s.recomputeTotals(ctx, tx, routingID)
		})
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, routingID)
}

type UpdateOperationRequest struct {
	WorkCenterID     *string  `json:"work_center_id"`
	Name             *string  `json:"name"`
	Code             *string  `json:"code"`
	Sequence         *int     `json:"sequence"`
	RunTimeMinutes   *float64 `json:"run_time_minutes"`
	SetupTimeMinutes *float64 `json:"setup_time_minutes"`
	Notes            *string  `json:"notes"`
}

func (s *RoutingService) UpdateOperation(ctx context.Context, routingID, operationID string, req UpdateOperationRequest) (*entity.Routing, error) {
	if _, err := s.GetByID(ctx, routingID); err != nil {
		return nil, err
	}

	err := s.locker.WithLock(ctx, lock.RoutingKey(routingID), func() error {
		op, oErr := s.repo.GetOperation(ctx, operationID)
		if oErr != nil {
			if errors.Is(oErr, gorm.ErrRecordNotFound) {
				return &engine.NotFoundError{Kind: "operation", ID: operationID}
			}
			return oErr
		}
		if op.RoutingID != routingID {
			return &engine.NotFoundError{Kind: "operation", ID: operationID}
		}

		if req.WorkCenterID != nil {
			op.WorkCenterID = *req.WorkCenterID
		}
		if req.Name != nil {
			op.Name = *req.Name
		}
		if req.Code != nil {
			op.Code = *req.Code
		}
		if req.Sequence != nil {
			op.Sequence = *req.Sequence
		}
		if req.RunTimeMinutes != nil {
			if *req.RunTimeMinutes < 0 {
				return fmt.Errorf("运行工时不能为负")
			}
			op.RunTimeMinutes = *req.RunTimeMinutes
		}
		if req.SetupTimeMinutes != nil {
			if *req.SetupTimeMinutes < 0 {
				return fmt.Errorf("准备工时不能为负")
			}
			op.SetupTimeMinutes = *req.SetupTimeMinutes
		}
		if req.Notes != nil {
			op.Notes = *req.Notes
		}

		wc, wErr := s.repo.GetWorkCenter(ctx, op.WorkCenterID)
		if wErr != nil {
			if errors.Is(wErr, gorm.ErrRecordNotFound) {
				return &engine.NotFoundError{Kind: "work_center", ID: op.WorkCenterID}
			}
			return wErr
		}
		op.CalculatedCost = engine.OperationCost(operationSnapshot(op, wc))

		return s.db.Transaction(func(tx *gorm.DB) error {
			if uErr := s.repo.UpdateOperation(ctx, tx, op); uErr != nil {
				return fmt.Errorf("更新工序失败: %w", uErr)
			}
			return s.recomputeTotals(ctx, tx, routingID)
		})
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, routingID)
}

// DeleteOperation 删除工序并把剩余工序序号压缩为连续的1..N
func (s *RoutingService) DeleteOperation(ctx context.Context, routingID, operationID string) (*entity.Routing, error) {
	if _, err := s.GetByID(ctx, routingID); err != nil {
		return nil, err
	}

	err := s.locker.WithLock(ctx, lock.RoutingKey(routingID), func() error {
		op, oErr := s.repo.GetOperation(ctx, operationID)
		if oErr != nil {
			if errors.Is(oErr, gorm.ErrRecordNotFound) {
				return &engine.NotFoundError{Kind: "operation", ID: operationID}
			}
			return oErr
		}
		if op.RoutingID != routingID {
			return &engine.NotFoundError{Kind: "operation", ID: operationID}
		}

		return s.db.Transaction(func(tx *gorm.DB) error {
			if dErr := s.repo.DeleteOperation(ctx, tx, operationID); dErr != nil {
				return fmt.Errorf("删除工序失败: %w", dErr)
			}
			remaining, lErr := s.repo.ListOperations(ctx, tx, routingID)
			if lErr != nil {
				return lErr
			}
			for i := range remaining {
				if remaining[i].Sequence != i+1 {
					remaining[i].Sequence = i + 1
					if uErr := s.repo.UpdateOperation(ctx, tx, &remaining[i]); uErr != nil {
						return fmt.Errorf("压缩工序序号失败: %w", uErr)
					}
				}
			}
			return s.recomputeTotals(ctx, tx, routingID)
		})
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, routingID)
}

// recomputeTotals 汇总工时与成本写回路线头
func (s *RoutingService) recomputeTotals(ctx context.Context, tx *gorm.DB, routingID string) error {
	ops, err := s.repo.ListOperations(ctx, tx, routingID)
	if err != nil {
		return err
	}

	snapshots := make([]engine.RoutingOperation, 0, len(ops))
	for i := range ops {
		snapshots = append(snapshots, operationSnapshot(&ops[i], ops[i].WorkCenter))
	}
	totals := engine.AggregateRouting(snapshots)
	return s.repo.UpdateTotals(ctx, tx, routingID, totals.TotalRunTimeMinutes, totals.TotalCost)
}

// operationSnapshot 工序实体转引擎快照
func operationSnapshot(op *entity.Operation, wc *entity.WorkCenter) engine.RoutingOperation {
	snap := engine.RoutingOperation{
		ID:               op.ID,
		Sequence:         op.Sequence,
		RunTimeMinutes:   op.RunTimeMinutes,
		SetupTimeMinutes: op.SetupTimeMinutes,
	}
	if wc != nil {
		snap.Rates = engine.WorkCenterRates{
			MachineRatePerHour:  wc.MachineRatePerHour,
			LaborRatePerHour:    wc.LaborRatePerHour,
			OverheadRatePerHour: wc.OverheadRatePerHour,
		}
	}
	return snap
}
