package engine

import (
	"context"
)

// Component 引擎视角的组件（产品目录快照）
type Component struct {
	ID            string
	SKU           string
	Name          string
	Unit          string
	IsRawMaterial bool
	HasBOM        bool
	StandardCost  float64
}

// BOMSnapshot 引擎输入的BOM快照（一次请求内不变）
type BOMSnapshot struct {
	ID        string
	ProductID string
	Code      string
	Version   int
	Lines     []LineSnapshot
}

// LineSnapshot BOM行快照
type LineSnapshot struct {
	ID          string
	ComponentID string
	Quantity    float64
	ScrapFactor float64
	Unit        string
	Sequence    int
}

// CatalogStore 产品目录只读接口（引擎通过依赖注入获取，不触碰全局状态）
type CatalogStore interface {
	// Component 返回组件信息；不存在时返回 *NotFoundError
	Component(ctx context.Context, id string) (*Component, error)
	// ActiveBOM 返回产品当前激活BOM；无激活BOM时返回 *NotFoundError
	ActiveBOM(ctx context.Context, productID string) (*BOMSnapshot, error)
}

// AvailabilityStore 库存可用量查询接口
type AvailabilityStore interface {
	// Available 返回产品在指定库位的当前可用量；location为空表示全部库位
	Available(ctx context.Context, productID, location string) (float64, error)
}
