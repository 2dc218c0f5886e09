package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ridha-415/filaops-sub000/internal/engine"
	"github.com/ridha-415/filaops-sub000/internal/entity"
	"github.com/ridha-415/filaops-sub000/internal/lock"
	"github.com/ridha-415/filaops-sub000/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BOMService struct {
	repo            *repository.BOMRepository
	productRepo     *repository.ProductRepository
	inventoryRepo   *repository.InventoryRepository
	locker          *lock.Locker
	engine          *engine.Engine
	defaultLocation string
	db              *gorm.DB
}

func NewBOMService(repo *repository.BOMRepository, productRepo *repository.ProductRepository,
	inventoryRepo *repository.InventoryRepository, locker *lock.Locker,
	eng *engine.Engine, defaultLocation string) *BOMService {
	return &BOMService{
		repo:            repo,
		productRepo:     productRepo,
		inventoryRepo:   inventoryRepo,
		locker:          locker,
		engine:          eng,
		defaultLocation: defaultLocation,
		db:              repo.DB(),
	}
}

type BOMLineInput struct {
	ComponentID string  `json:"component_id" binding:"required"`
	Quantity    float64 `json:"quantity" binding:"required,gt=0"`
	Unit        string  `json:"unit"`
	ScrapFactor float64 `json:"scrap_factor" binding:"gte=0"`
	Sequence    int     `json:"sequence"`
	Notes       string  `json:"notes"`
}

type CreateBOMRequest struct {
	ProductID string         `json:"product_id" binding:"required"`
	Code      string         `json:"code"`
	Revision  string         `json:"revision"`
	Notes     string         `json:"notes"`
	Lines     []BOMLineInput `json:"lines"`
}

// Create 创建BOM并激活。产品已有激活版本时必须显式传force_new，
// 此时旧版本停用、版本号递增，保证同一产品同一时刻只有一个激活版本。
func (s *BOMService) Create(ctx context.Context, req CreateBOMRequest, forceNew bool, userID string) (*entity.BOM, error) {
	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &engine.NotFoundError{Kind: "product", ID: req.ProductID}
		}
		return nil, err
	}

	// 校验组件存在且不直接引用自身
	for _, input := range req.Lines {
		if input.ComponentID == req.ProductID {
			return nil, &engine.CyclicBOMError{Path: []string{req.ProductID, input.ComponentID}}
		}
		if _, cErr := s.productRepo.GetByID(ctx, input.ComponentID); cErr != nil {
			if errors.Is(cErr, gorm.ErrRecordNotFound) {
				return nil, &engine.NotFoundError{Kind: "product", ID: input.ComponentID}
			}
			return nil, cErr
		}
	}

	var bom *entity.BOM
	err = s.locker.WithLock(ctx, lock.ProductBOMKey(req.ProductID), func() error {
		active, aErr := s.repo.GetActiveByProduct(ctx, req.ProductID)
		hasActive := aErr == nil
		if aErr != nil && !errors.Is(aErr, gorm.ErrRecordNotFound) {
			return aErr
		}
		if hasActive && !forceNew {
			return &engine.InvalidVersionError{ProductID: req.ProductID, ActiveBOM: active.ID}
		}

		maxVersion, vErr := s.repo.MaxVersion(ctx, req.ProductID)
		if vErr != nil {
			return vErr
		}

		code := req.Code
		if code == "" {
			code = fmt.Sprintf("BOM-%s", product.SKU)
		}

		bom = &entity.BOM{
			ID:        newID(),
			ProductID: req.ProductID,
			Code:      code,
			Version:   maxVersion + 1,
			Revision:  req.Revision,
			Active:    true,
			Notes:     req.Notes,
			CreatedBy: userID,
		}
		for i, input := range req.Lines {
			seq := input.Sequence
			if seq == 0 {
				seq = (i + 1) * 10
			}
			bom.Lines = append(bom.Lines, entity.BOMLine{
				ID:          newID(),
				BOMID:       bom.ID,
				ComponentID: input.ComponentID,
				Quantity:    input.Quantity,
				Unit:        input.Unit,
				ScrapFactor: input.ScrapFactor,
				Sequence:    seq,
				Notes:       input.Notes,
			})
		}

		return s.db.Transaction(func(tx *gorm.DB) error {
			if hasActive {
				if dErr := s.repo.Deactivate(ctx, tx, req.ProductID); dErr != nil {
					return fmt.Errorf("停用旧版本失败: %w", dErr)
				}
			}
			if cErr := tx.WithContext(ctx).Create(bom).Error; cErr != nil {
				return fmt.Errorf("创建BOM失败: %w", cErr)
			}
			return s.recomputeTotalCost(ctx, tx, bom)
		})
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, bom.ID)
}

func (s *BOMService) GetByID(ctx context.Context, id string) (*entity.BOM, error) {
	bom, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &engine.NotFoundError{Kind: "bom", ID: id}
		}
		return nil, err
	}
	return bom, nil
}

func (s *BOMService) GetActiveByProduct(ctx context.Context, productID string) (*entity.BOM, error) {
	bom, err := s.repo.GetActiveByProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &engine.NotFoundError{Kind: "bom", ID: productID}
		}
		return nil, err
	}
	return bom, nil
}

func (s *BOMService) List(ctx context.Context, params repository.BOMListParams) ([]entity.BOM, int64, error) {
	return s.repo.List(ctx, params)
}

func (s *BOMService) ListVersions(ctx context.Context, productID string) ([]entity.BOM, error) {
	return s.repo.ListByProduct(ctx, productID)
}

// AddLine 追加BOM行，同一BOM的行变更逐BOM串行化
func (s *BOMService) AddLine(ctx context.Context, bomID string, input BOMLineInput) (*entity.BOM, error) {
	bom, err := s.GetByID(ctx, bomID)
	if err != nil {
		return nil, err
	}
	if input.ComponentID == bom.ProductID {
		return nil, &engine.CyclicBOMError{Path: []string{bom.ProductID, input.ComponentID}}
	}
	if _, err = s.productRepo.GetByID(ctx, input.ComponentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &engine.NotFoundError{Kind: "product", ID: input.ComponentID}
		}
		return nil, err
	}

	err = s.locker.WithLock(ctx, lock.BOMKey(bomID), func() error {
		seq := input.Sequence
		if seq == 0 {
			maxSeq, sErr := s.repo.MaxSequence(ctx, bomID)
			if sErr != nil {
				return sErr
			}
			seq = maxSeq + 10
		}

		line := &entity.BOMLine{
			ID:          newID(),
			BOMID:       bomID,
			ComponentID: input.ComponentID,
			Quantity:    input.Quantity,
			Unit:        input.Unit,
			ScrapFactor: input.ScrapFactor,
			Sequence:    seq,
			Notes:       input.Notes,
		}
		return s.db.Transaction(func(tx *gorm.DB) error {
			if cErr := s.repo.CreateLine(ctx, tx, line); cErr != nil {
				return fmt.Errorf("创建BOM行失败: %w", cErr)
			}
			return s.recomputeTotalCostByID(ctx, tx, bomID)
		})
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, bomID)
}

type UpdateBOMLineRequest struct {
	Quantity    *float64 `json:"quantity"`
	Unit        *string  `json:"unit"`
	ScrapFactor *float64 `json:"scrap_factor"`
	Sequence    *int     `json:"sequence"`
	Notes       *string  `json:"notes"`
}

func (s *BOMService) UpdateLine(ctx context.Context, bomID, lineID string, req UpdateBOMLineRequest) (*entity.BOM, error) {
	if _, err := s.GetByID(ctx, bomID); err != nil {
		return nil, err
	}

	err := s.locker.WithLock(ctx, lock.BOMKey(bomID), func() error {
		line, lErr := s.repo.GetLine(ctx, lineID)
		if lErr != nil {
			if errors.Is(lErr, gorm.ErrRecordNotFound) {
				return &engine.NotFoundError{Kind: "bom_line", ID: lineID}
			}
			return lErr
		}
		if line.BOMID != bomID {
			return &engine.NotFoundError{Kind: "bom_line", ID: lineID}
		}

		if req.Quantity != nil {
			if *req.Quantity <= 0 {
				return fmt.Errorf("数量必须大于0")
			}
			line.Quantity = *req.Quantity
		}
		if req.Unit != nil {
			line.Unit = *req.Unit
		}
		if req.ScrapFactor != nil {
			if *req.ScrapFactor < 0 {
				return fmt.Errorf("损耗率不能为负")
			}
			line.ScrapFactor = *req.ScrapFactor
		}
		if req.Sequence != nil {
			line.Sequence = *req.Sequence
		}
		if req.Notes != nil {
			line.Notes = *req.Notes
		}

		return s.db.Transaction(func(tx *gorm.DB) error {
			if uErr := s.repo.UpdateLine(ctx, tx, line); uErr != nil {
				return fmt.Errorf("更新BOM行失败: %w", uErr)
			}
			return s.recomputeTotalCostByID(ctx, tx, bomID)
		})
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, bomID)
}

func (s *BOMService) DeleteLine(ctx context.Context, bomID, lineID string) (*entity.BOM, error) {
	if _, err := s.GetByID(ctx, bomID); err != nil {
		return nil, err
	}

	err := s.locker.WithLock(ctx, lock.BOMKey(bomID), func() error {
		line, lErr := s.repo.GetLine(ctx, lineID)
		if lErr != nil {
			if errors.Is(lErr, gorm.ErrRecordNotFound) {
				return &engine.NotFoundError{Kind: "bom_line", ID: lineID}
			}
			return lErr
		}
		if line.BOMID != bomID {
			return &engine.NotFoundError{Kind: "bom_line", ID: lineID}
		}

		return s.db.Transaction(func(tx *gorm.DB) error {
			if dErr := s.repo.DeleteLine(ctx, tx, lineID); dErr != nil {
				return fmt.Errorf("删除BOM行失败: %w", dErr)
			}
			return s.recomputeTotalCostByID(ctx, tx, bomID)
		})
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, bomID)
}

// Explode 多级展开
func (s *BOMService) Explode(ctx context.Context, bomID string, quantity float64, location string) (*engine.ExplodeResult, error) {
	bom, err := s.GetByID(ctx, bomID)
	if err != nil {
		return nil, err
	}
	if location == "" {
		location = s.defaultLocation
	}
	return s.engine.Explode(ctx, snapshotFromBOM(bom), quantity, location)
}

// Rollup 成本卷积
func (s *BOMService) Rollup(ctx context.Context, bomID string) (*engine.CostRollup, error) {
	bom, err := s.GetByID(ctx, bomID)
	if err != nil {
		return nil, err
	}
	return s.engine.RollupCost(ctx, snapshotFromBOM(bom))
}

// Feasibility 基于当前库存的单层可行性
func (s *BOMService) Feasibility(ctx context.Context, bomID string, requested int64, location string) (*engine.FeasibilityResult, error) {
	bom, err := s.GetByID(ctx, bomID)
	if err != nil {
		return nil, err
	}
	if location == "" {
		location = s.defaultLocation
	}
	lines, err := feasibilityLines(ctx, bom, s.inventoryRepo, location)
	if err != nil {
		return nil, err
	}
	return engine.PlanFeasibility(lines, requested), nil
}

// feasibilityLines 组装可行性输入：BOM行 + 各组件当前可用量。
// 库存查询失败按零可用并打标，避免把不可达当作充足。
func feasibilityLines(ctx context.Context, bom *entity.BOM, invRepo *repository.InventoryRepository, location string) ([]engine.FeasibilityLine, error) {
	lines := make([]engine.FeasibilityLine, 0, len(bom.Lines))
	for _, line := range bom.Lines {
		avail, err := invRepo.GetAvailable(ctx, line.ComponentID, location)
		unknown := false
		if err != nil {
			avail = 0
			unknown = true
		}
		lines = append(lines, engine.FeasibilityLine{
			LineID:           line.ID,
			ComponentID:      line.ComponentID,
			Sequence:         line.Sequence,
			Quantity:         line.Quantity,
			ScrapFactor:      line.ScrapFactor,
			Available:        avail,
			InventoryUnknown: unknown,
		})
	}
	return lines, nil
}

// recomputeTotalCostByID 行变更后重算缓存的直接材料成本
func (s *BOMService) recomputeTotalCostByID(ctx context.Context, tx *gorm.DB, bomID string) error {
	var bom entity.BOM
	if err := tx.WithContext(ctx).
		Preload("Lines").
		Where("id = ?", bomID).
		First(&bom).Error; err != nil {
		return err
	}
	return s.recomputeTotalCost(ctx, tx, &bom)
}

// recomputeTotalCost 单层直接材料成本：Σ 数量×(1+损耗率)×组件标准成本
func (s *BOMService) recomputeTotalCost(ctx context.Context, tx *gorm.DB, bom *entity.BOM) error {
	total := decimal.Zero
	for _, line := range bom.Lines {
		var comp entity.Product
		if err := tx.WithContext(ctx).Where("id = ?", line.ComponentID).First(&comp).Error; err != nil {
			return fmt.Errorf("读取组件失败: %w", err)
		}
		per := decimal.NewFromFloat(line.Quantity).
			Mul(decimal.NewFromInt(1).Add(decimal.NewFromFloat(line.ScrapFactor)))
		total = total.Add(per.Mul(decimal.NewFromFloat(comp.StandardCost)))
	}
	return s.repo.UpdateTotalCost(ctx, tx, bom.ID, total.InexactFloat64())
}
