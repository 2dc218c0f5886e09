package entity

import (
	"time"
)

// ProductionOrderStatus 生产订单状态
const (
	POStatusCreated     = "CREATED"
	POStatusBackordered = "BACKORDERED"
	POStatusReleased    = "RELEASED"
	POStatusCompleted   = "COMPLETED"
	POStatusCancelled   = "CANCELLED"
)

// ProductionOrder 生产订单（记录可行性拆分结果）
type ProductionOrder struct {
	ID                 string     `json:"id" gorm:"primaryKey;size:32"`
	OrderCode          string     `json:"order_code" gorm:"size:50;not null;uniqueIndex"`
	ProductID          string     `json:"product_id" gorm:"size:32;not null;index"`
	BOMID              string     `json:"bom_id" gorm:"size:32;not null"`
	BOMVersion         int        `json:"bom_version"`
	QuantityOrdered    float64    `json:"quantity_ordered" gorm:"type:decimal(15,4);not null"`
	QuantityProducible float64    `json:"quantity_producible" gorm:"type:decimal(15,4);default:0"`
	BackorderQty       float64    `json:"backorder_qty" gorm:"type:decimal(15,4);default:0"`
	LimitingComponent  string     `json:"limiting_component_id" gorm:"size:32"`
	Location           string     `json:"location" gorm:"size:64;default:MAIN"`
	Status             string     `json:"status" gorm:"size:20;not null;default:CREATED"`
	Notes              string     `json:"notes" gorm:"type:text"`
	CreatedBy          string     `json:"created_by" gorm:"size:64"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	DeletedAt          *time.Time `json:"deleted_at,omitempty" gorm:"index"`

	// 关联
	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

func (ProductionOrder) TableName() string {
	return "production_orders"
}
