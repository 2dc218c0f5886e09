package repository

import (
	"context"

	"github.com/ridha-415/filaops-sub000/internal/entity"
	"gorm.io/gorm"
)

type RoutingRepository struct {
	db *gorm.DB
}

func NewRoutingRepository(db *gorm.DB) *RoutingRepository {
	return &RoutingRepository{db: db}
}

func (r *RoutingRepository) Create(ctx context.Context, routing *entity.Routing) error {
	return r.db.WithContext(ctx).Create(routing).Error
}

// GetByID 获取工艺路线及其按序号排序的工序
func (r *RoutingRepository) GetByID(ctx context.Context, id string) (*entity.Routing, error) {
	var routing entity.Routing
	err := r.db.WithContext(ctx).
		Preload("Operations", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Preload("Operations.WorkCenter").
		Where("id = ? AND deleted_at IS NULL", id).
		First(&routing).Error
	if err != nil {
		return nil, err
	}
	return &routing, nil
}

// GetActiveByProduct 获取产品当前激活的工艺路线
func (r *RoutingRepository) GetActiveByProduct(ctx context.Context, productID string) (*entity.Routing, error) {
	var routing entity.Routing
	err := r.db.WithContext(ctx).
		Preload("Operations", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Preload("Operations.WorkCenter").
		Where("product_id = ? AND is_active = ? AND deleted_at IS NULL", productID, true).
		Order("version DESC").
		First(&routing).Error
	if err != nil {
		return nil, err
	}
	return &routing, nil
}

type RoutingListParams struct {
	ProductID     string
	TemplatesOnly bool
	ActiveOnly    bool
	Page          int
	Size          int
}

func (r *RoutingRepository) List(ctx context.Context, params RoutingListParams) ([]entity.Routing, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Routing{}).Where("deleted_at IS NULL")
	if params.ProductID != "" {
		query = query.Where("product_id = ?", params.ProductID)
	}
	if params.TemplatesOnly {
		query = query.Where("is_template = ?", true)
	}
	if params.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var routings []entity.Routing
	err := query.Order("created_at DESC").Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&routings).Error
	return routings, total, err
}

// Deactivate 停用产品当前所有激活工艺路线
func (r *RoutingRepository) Deactivate(ctx context.Context, tx *gorm.DB, productID string) error {
	return tx.WithContext(ctx).Model(&entity.Routing{}).
		Where("product_id = ? AND is_active = ?", productID, true).
		Update("is_active", false).Error
}

// MaxVersion 获取产品工艺路线的最大版本号
func (r *RoutingRepository) MaxVersion(ctx context.Context, productID string) (int, error) {
	var maxVersion *int
	err := r.db.WithContext(ctx).Model(&entity.Routing{}).
		Where("product_id = ? AND deleted_at IS NULL", productID).
		Select("MAX(version)").
		Scan(&maxVersion).Error
	if err != nil {
		return 0, err
	}
	if maxVersion == nil {
		return 0, nil
	}
	return *maxVersion, nil
}

func (r *RoutingRepository) UpdateTotals(ctx context.Context, tx *gorm.DB, routingID string, runTimeMinutes, totalCost float64) error {
	return tx.WithContext(ctx).Model(&entity.Routing{}).
		Where("id = ?", routingID).
		Updates(map[string]interface{}{
			"total_run_time_minutes": runTimeMinutes,
			"total_cost":             totalCost,
		}).Error
}

func (r *RoutingRepository) GetOperation(ctx context.Context, operationID string) (*entity.Operation, error) {
	var op entity.Operation
	err := r.db.WithContext(ctx).Where("id = ?", operationID).First(&op).Error
	if err != nil {
		return nil, err
	}
	return &op, nil
}

func (r *RoutingRepository) CreateOperation(ctx context.Context, tx *gorm.DB, op *entity.Operation) error {
	return tx.WithContext(ctx).Create(op).Error
}

func (r *RoutingRepository) UpdateOperation(ctx context.Context, tx *gorm.DB, op *entity.Operation) error {
	return tx.WithContext(ctx).Save(op).Error
}

func (r *RoutingRepository) DeleteOperation(ctx context.Context, tx *gorm.DB, operationID string) error {
	return tx.WithContext(ctx).Where("id = ?", operationID).Delete(&entity.Operation{}).Error
}

// ListOperations 获取工艺路线全部工序按序号排序
func (r *RoutingRepository) ListOperations(ctx context.Context, tx *gorm.DB, routingID string) ([]entity.Operation, error) {
	var ops []entity.Operation
	err := tx.WithContext(ctx).
		Preload("WorkCenter").
		Where("routing_id = ?", routingID).
		Order("sequence ASC").
		Find(&ops).Error
	return ops, err
}

func (r *RoutingRepository) CreateWorkCenter(ctx context.Context, wc *entity.WorkCenter) error {
	return r.db.WithContext(ctx).Create(wc).Error
}

func (r *RoutingRepository) GetWorkCenter(ctx context.Context, id string) (*entity.WorkCenter, error) {
	var wc entity.WorkCenter
	err := r.db.WithContext(ctx).Where("id = ? AND deleted_at IS NULL", id).First(&wc).Error
	if err != nil {
		return nil, err
	}
	return &wc, nil
}

func (r *RoutingRepository) UpdateWorkCenter(ctx context.Context, wc *entity.WorkCenter) error {
	return r.db.WithContext(ctx).Save(wc).Error
}

type WorkCenterListParams struct {
	CenterType string
	Keyword    string
	Page       int
	Size       int
}

func (r *RoutingRepository) ListWorkCenters(ctx context.Context, params WorkCenterListParams) ([]entity.WorkCenter, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.WorkCenter{}).Where("deleted_at IS NULL")
	if params.CenterType != "" {
		query = query.Where("center_type = ?", params.CenterType)
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("code LIKE ? OR name LIKE ?", kw, kw)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var centers []entity.WorkCenter
	err := query.Order("code ASC").Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&centers).Error
	return centers, total, err
}

// DB 返回底层db用于事务
func (r *RoutingRepository) DB() *gorm.DB {
	return r.db
}
