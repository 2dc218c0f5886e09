package service

import (
	"strings"

	"github.com/google/uuid"
	"github.com/ridha-415/filaops-sub000/internal/config"
	"github.com/ridha-415/filaops-sub000/internal/engine"
	"github.com/ridha-415/filaops-sub000/internal/lock"
	"github.com/ridha-415/filaops-sub000/internal/repository"
)

// Services 服务集合
type Services struct {
	Product    *ProductService
	Inventory  *InventoryService
	BOM        *BOMService
	Routing    *RoutingService
	WorkCenter *WorkCenterService
	Production *ProductionService
}

func NewServices(repos *repository.Repositories, locker *lock.Locker, engineCfg config.EngineConfig) *Services {
	catalog := newCatalogAdapter(repos)
	eng := engine.New(catalog, catalog, engineCfg.MaxExplosionDepth)

	return &Services{
		Product:    NewProductService(repos.Product, repos.BOM),
		Inventory:  NewInventoryService(repos.Inventory, repos.Product),
		BOM:        NewBOMService(repos.BOM, repos.Product, repos.Inventory, locker, eng, engineCfg.DefaultLocation),
		Routing:    NewRoutingService(repos.Routing, repos.Product, locker),
		WorkCenter: NewWorkCenterService(repos.Routing),
		Production: NewProductionService(repos.Production, repos.BOM, repos.Product, repos.Inventory, engineCfg.DefaultLocation),
	}
}

// newID 生成32位无连字符ID，匹配表结构的size:32
func newID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
