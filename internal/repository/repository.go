package repository

import "gorm.io/gorm"

// Repositories 仓库集合
type Repositories struct {
	Product    *ProductRepository
	BOM        *BOMRepository
	Routing    *RoutingRepository
	Inventory  *InventoryRepository
	Production *ProductionRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Product:    NewProductRepository(db),
		BOM:        NewBOMRepository(db),
		Routing:    NewRoutingRepository(db),
		Inventory:  NewInventoryRepository(db),
		Production: NewProductionRepository(db),
	}
}
