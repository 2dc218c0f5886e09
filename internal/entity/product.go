package entity

import (
	"time"
)

// ProductStatus 产品状态
const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
)

// Product 产品（既是成品也可作为BOM组件）
type Product struct {
	ID            string     `json:"id" gorm:"primaryKey;size:32"`
	SKU           string     `json:"sku" gorm:"size:64;not null;uniqueIndex"`
	Name          string     `json:"name" gorm:"size:128;not null"`
	Unit          string     `json:"unit" gorm:"size:16;not null;default:pcs"`
	IsRawMaterial bool       `json:"is_raw_material" gorm:"not null;default:false"`
	StandardCost  float64    `json:"standard_cost" gorm:"type:decimal(15,4);default:0"`
	Status        string     `json:"status" gorm:"size:16;not null;default:active"`
	Description   string     `json:"description" gorm:"type:text"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty" gorm:"index"`

	// HasBOM 是否存在激活BOM（派生字段，查询时填充）
	HasBOM bool `json:"has_bom" gorm:"-"`
}

func (Product) TableName() string {
	return "products"
}
