package repository

import (
	"context"

	"github.com/ridha-415/filaops-sub000/internal/entity"
	"gorm.io/gorm"
)

type ProductionRepository struct {
	db *gorm.DB
}

func NewProductionRepository(db *gorm.DB) *ProductionRepository {
	return &ProductionRepository{db: db}
}

func (r *ProductionRepository) Create(ctx context.Context, order *entity.ProductionOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *ProductionRepository) GetByID(ctx context.Context, id string) (*entity.ProductionOrder, error) {
	var order entity.ProductionOrder
	err := r.db.WithContext(ctx).Where("id = ? AND deleted_at IS NULL", id).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *ProductionRepository) Update(ctx context.Context, order *entity.ProductionOrder) error {
	return r.db.WithContext(ctx).Save(order).Error
}

// CountByPrefix 统计单号前缀数量用于生成序号
func (r *ProductionRepository) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.ProductionOrder{}).
		Where("order_code LIKE ?", prefix+"%").
		Count(&count).Error
	return count, err
}

type ProductionListParams struct {
	ProductID string
	Status    string
	Page      int
	Size      int
}

func (r *ProductionRepository) List(ctx context.Context, params ProductionListParams) ([]entity.ProductionOrder, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.ProductionOrder{}).Where("deleted_at IS NULL")
	if params.ProductID != "" {
		query = query.Where("product_id = ?", params.ProductID)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var orders []entity.ProductionOrder
	err := query.Order("created_at DESC").Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&orders).Error
	return orders, total, err
}

// DB 返回底层db用于事务
func (r *ProductionRepository) DB() *gorm.DB {
	return r.db
}
