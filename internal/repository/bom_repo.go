package repository

import (
	"context"

	"github.com/ridha-415/filaops-sub000/internal/entity"
	"gorm.io/gorm"
)

type BOMRepository struct {
	db *gorm.DB
}

func NewBOMRepository(db *gorm.DB) *BOMRepository {
	return &BOMRepository{db: db}
}

func (r *BOMRepository) Create(ctx context.Context, bom *entity.BOM) error {
	return r.db.WithContext(ctx).Create(bom).Error
}

// GetByID 获取BOM及其按序号排序的明细行
func (r *BOMRepository) GetByID(ctx context.Context, id string) (*entity.BOM, error) {
	var bom entity.BOM
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Preload("Lines.Component").
		Where("id = ? AND deleted_at IS NULL", id).
		First(&bom).Error
	if err != nil {
		return nil, err
	}
	return &bom, nil
}

// GetActiveByProduct 获取产品当前激活版本的BOM
func (r *BOMRepository) GetActiveByProduct(ctx context.Context, productID string) (*entity.BOM, error) {
	var bom entity.BOM
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Preload("Lines.Component").
		Where("product_id = ? AND active = ? AND deleted_at IS NULL", productID, true).
		Order("version DESC").
		First(&bom).Error
	if err != nil {
		return nil, err
	}
	return &bom, nil
}

func (r *BOMRepository) ListByProduct(ctx context.Context, productID string) ([]entity.BOM, error) {
	var boms []entity.BOM
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND deleted_at IS NULL", productID).
		Order("version DESC").
		Find(&boms).Error
	return boms, err
}

type BOMListParams struct {
	ProductID  string
	ActiveOnly bool
	Page       int
	Size       int
}

func (r *BOMRepository) List(ctx context.Context, params BOMListParams) ([]entity.BOM, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.BOM{}).Where("deleted_at IS NULL")
	if params.ProductID != "" {
		query = query.Where("product_id = ?", params.ProductID)
	}
	if params.ActiveOnly {
		query = query.Where("active = ?", true)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var boms []entity.BOM
	err := query.Order("created_at DESC").Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&boms).Error
	return boms, total, err
}

// HasActiveBOM 判断产品是否已有激活BOM
func (r *BOMRepository) HasActiveBOM(ctx context.Context, productID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.BOM{}).
		Where("product_id = ? AND active = ? AND deleted_at IS NULL", productID, true).
		Count(&count).Error
	return count > 0, err
}

// MaxVersion 获取产品BOM的最大版本号
func (r *BOMRepository) MaxVersion(ctx context.Context, productID string) (int, error) {
	var maxVersion *int
	err := r.db.WithContext(ctx).Model(&entity.BOM{}).
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

// Deactivate 停用产品当前所有激活BOM
func (r *BOMRepository) Deactivate(ctx context.Context, tx *gorm.DB, productID string) error {
	return tx.WithContext(ctx).Model(&entity.BOM{}).
		Where("product_id = ? AND active = ?", productID, true).
		Update("active", false).Error
}

func (r *BOMRepository) UpdateTotalCost(ctx context.Context, tx *gorm.DB, bomID string, totalCost float64) error {
	return tx.WithContext(ctx).Model(&entity.BOM{}).
		Where("id = ?", bomID).
		Update("total_cost", totalCost).Error
}

func (r *BOMRepository) GetLine(ctx context.Context, lineID string) (*entity.BOMLine, error) {
	var line entity.BOMLine
	err := r.db.WithContext(ctx).Where("id = ?", lineID).First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *BOMRepository) CreateLine(ctx context.Context, tx *gorm.DB, line *entity.BOMLine) error {
	return tx.WithContext(ctx).Create(line).Error
}

func (r *BOMRepository) UpdateLine(ctx context.Context, tx *gorm.DB, line *entity.BOMLine) error {
	return tx.WithContext(ctx).Save(line).Error
}

func (r *BOMRepository) DeleteLine(ctx context.Context, tx *gorm.DB, lineID string) error {
	return tx.WithContext(ctx).Where("id = ?", lineID).Delete(&entity.BOMLine{}).Error
}

// MaxSequence 获取BOM明细行的最大序号
func (r *BOMRepository) MaxSequence(ctx context.Context, bomID string) (int, error) {
	var maxSeq *int
	err := r.db.WithContext(ctx).Model(&entity.BOMLine{}).
		Where("bom_id = ?", bomID).
		Select("MAX(sequence)").
		Scan(&maxSeq).Error
	if err != nil {
		return 0, err
	}
	if maxSeq == nil {
		return 0, nil
	}
	return *maxSeq, nil
}

// DB 返回底层db用于事务
func (r *BOMRepository) DB() *gorm.DB {
	return r.db
}
