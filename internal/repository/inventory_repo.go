package repository

import (
	"context"
	"time"

	"github.com/ridha-415/filaops-sub000/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// GetAvailable 获取产品在指定库位的可用数量, location为空时汇总全部库位
func (r *InventoryRepository) GetAvailable(ctx context.Context, productID, location string) (float64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Inventory{}).
		Where("product_id = ?", productID)
	if location != "" {
		query = query.Where("location = ?", location)
	}
	var available *float64
	err := query.Select("SUM(available_qty)").Scan(&available).Error
	if err != nil {
		return 0, err
	}
	if available == nil {
		return 0, nil
	}
	return *available, nil
}

func (r *InventoryRepository) Get(ctx context.Context, productID, location string) (*entity.Inventory, error) {
	var inv entity.Inventory
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND location = ?", productID, location).
		First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Upsert 按产品+库位写入库存记录
func (r *InventoryRepository) Upsert(ctx context.Context, inv *entity.Inventory) error {
	now := time.Now()
	inv.LastMovedAt = &now
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "product_id"}, {Name: "location"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"quantity", "available_qty", "unit", "last_moved_at", "updated_at",
		}),
	}).Create(inv).Error
}

type InventoryListParams struct {
	ProductID string
	Location  string
	Page      int
	Size      int
}

func (r *InventoryRepository) List(ctx context.Context, params InventoryListParams) ([]entity.Inventory, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Inventory{})
	if params.ProductID != "" {
		query = query.Where("product_id = ?", params.ProductID)
	}
	if params.Location != "" {
		query = query.Where("location = ?", params.Location)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var records []entity.Inventory
	err := query.Order("product_id ASC, location ASC").Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&records).Error
	return records, total, err
}

// DB 返回底层db用于事务
func (r *InventoryRepository) DB() *gorm.DB {
	return r.db
}
