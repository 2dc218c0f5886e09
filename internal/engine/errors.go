package engine

import (
	"fmt"
	"strings"
)

// CyclicBOMError 组件图存在环，沿当前递归路径检出
type CyclicBOMError struct {
	// Path 根产品到重复组件的组件ID路径，末尾为重复出现的组件
	Path []string
}

func (e *CyclicBOMError) Error() string {
	return fmt.Sprintf("cyclic BOM detected: %s", strings.Join(e.Path, " -> "))
}

// MaxDepthExceededError 展开层级超过安全上限
type MaxDepthExceededError struct {
	MaxDepth int
	Path     []string
}

func (e *MaxDepthExceededError) Error() string {
	return fmt.Sprintf("BOM explosion exceeded max depth %d at %s", e.MaxDepth, strings.Join(e.Path, " -> "))
}

// NotFoundError 实体不存在
type NotFoundError struct {
	Kind string // product / bom / routing / operation / work_center / production_order
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// InvalidVersionError 产品已有激活BOM且未指定force_new
type InvalidVersionError struct {
	ProductID string
	ActiveBOM string
}

func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("product %s already has an active BOM %s (use force_new to supersede)", e.ProductID, e.ActiveBOM)
}

// InsufficientInventoryError 库存不足且调用方不允许部分交付
type InsufficientInventoryError struct {
	Requested         float64
	MaxProducible     float64
	LimitingComponent string
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory: requested %.4f, max producible %.4f (limiting component %s)",
		e.Requested, e.MaxProducible, e.LimitingComponent)
}
