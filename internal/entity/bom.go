package entity

import (
	"time"
)

// BOM 物料清单（每个产品同一时刻只有一个激活版本）
type BOM struct {
	ID        string     `json:"id" gorm:"primaryKey;size:32"`
	ProductID string     `json:"product_id" gorm:"size:32;not null;index"`
	Code      string     `json:"code" gorm:"size:64;not null"`
	Version   int        `json:"version" gorm:"not null;default:1"`
	Revision  string     `json:"revision" gorm:"size:32"`
	Active    bool       `json:"active" gorm:"not null;default:false;index"`
	TotalCost float64    `json:"total_cost" gorm:"type:decimal(15,4);default:0"` // 缓存的直接材料成本
	Notes     string     `json:"notes" gorm:"type:text"`
	CreatedBy string     `json:"created_by" gorm:"size:64"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" gorm:"index"`

	// 关联
	Product *Product  `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Lines   []BOMLine `json:"lines,omitempty" gorm:"foreignKey:BOMID"`
}

func (BOM) TableName() string {
	return "boms"
}

// BOMLine BOM行项（sequence在同一BOM内唯一）
type BOMLine struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	BOMID       string    `json:"bom_id" gorm:"size:32;not null;index"`
	ComponentID string    `json:"component_id" gorm:"size:32;not null;index"`
	Quantity    float64   `json:"quantity" gorm:"type:decimal(15,4);not null"`
	Unit        string    `json:"unit" gorm:"size:16"` // 为空时取组件默认单位
	ScrapFactor float64   `json:"scrap_factor" gorm:"type:decimal(8,4);default:0"`
	Sequence    int       `json:"sequence" gorm:"not null;default:0"`
	Notes       string    `json:"notes" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// 关联
	Component *Product `json:"component,omitempty" gorm:"foreignKey:ComponentID"`
}

func (BOMLine) TableName() string {
	return "bom_lines"
}

// RequiredPerUnit 含损耗的单件用量
func (l *BOMLine) RequiredPerUnit() float64 {
	return l.Quantity * (1 + l.ScrapFactor)
}
