package entity

import (
	"time"
)

// Inventory 库存记录（按产品+库位）
type Inventory struct {
	ID           string     `json:"id" gorm:"primaryKey;size:32"`
	ProductID    string     `json:"product_id" gorm:"size:32;not null;index:idx_inventory_product_location,unique"`
	Location     string     `json:"location" gorm:"size:64;not null;default:MAIN;index:idx_inventory_product_location,unique"`
	Quantity     float64    `json:"quantity" gorm:"type:decimal(15,4);not null;default:0"`
	AvailableQty float64    `json:"available_qty" gorm:"type:decimal(15,4);not null;default:0"`
	Unit         string     `json:"unit" gorm:"size:16;not null;default:pcs"`
	LastMovedAt  *time.Time `json:"last_moved_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (Inventory) TableName() string {
	return "inventory"
}
