package engine

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Engine BOM计算引擎：多级展开、成本卷积、工艺成本、可行性。
// 纯计算，不持有可变状态；数据全部来自注入的只读Store。
type Engine struct {
	catalog      CatalogStore
	availability AvailabilityStore
	maxDepth     int
}

func New(catalog CatalogStore, availability AvailabilityStore, maxDepth int) *Engine {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Engine{catalog: catalog, availability: availability, maxDepth: maxDepth}
}

// ExplodedLine 展开结果行（瞬态，按请求计算，不落库）
type ExplodedLine struct {
	Level              int     `json:"level"`
	LineID             string  `json:"line_id"`
	ComponentID        string  `json:"component_id"`
	ComponentSKU       string  `json:"component_sku"`
	ComponentName      string  `json:"component_name"`
	Unit               string  `json:"unit"`
	QuantityPerUnit    float64 `json:"quantity_per_unit"` // 相对根产品单件（含损耗）
	ExtendedQuantity   float64 `json:"extended_quantity"` // quantity_per_unit × 请求数量
	UnitCost           float64 `json:"unit_cost"`
	LineCost           float64 `json:"line_cost"`
	IsSubAssembly      bool    `json:"is_sub_assembly"`
	InventoryAvailable float64 `json:"inventory_available"`
	IsAvailable        bool    `json:"is_available"`
	Shortage           float64 `json:"shortage"`
	CostMissing        bool    `json:"cost_missing,omitempty"`
	InventoryUnknown   bool    `json:"inventory_unknown,omitempty"`
}

// ExplodeResult 展开汇总
type ExplodeResult struct {
	BOMID             string         `json:"bom_id"`
	ProductID         string         `json:"product_id"`
	RequestedQuantity float64        `json:"requested_quantity"`
	TotalComponents   int            `json:"total_components"`
	UniqueComponents  int            `json:"unique_components"`
	MaxDepth          int            `json:"max_depth"`
	TotalCost         float64        `json:"total_cost"`
	Lines             []ExplodedLine `json:"lines"`
	Warnings          []string       `json:"warnings,omitempty"`
}

// Explode 将多级BOM深度优先展开为带层级的组件列表。
// total_cost 只累计叶子行，子装配行仅作展示，避免重复计价；
// unique_components 统计不同的叶子组件数；max_depth 为观察到的最深层级。
func (e *Engine) Explode(ctx context.Context, bom *BOMSnapshot, quantity float64, location string) (*ExplodeResult, error) {
	if quantity <= 0 {
		quantity = 1
	}

	result := &ExplodeResult{
		BOMID:             bom.ID,
		ProductID:         bom.ProductID,
		RequestedQuantity: quantity,
	}

	reqQty := decimal.NewFromFloat(quantity)
	totalCost := decimal.Zero
	leafSeen := make(map[string]struct{})

	tr := newTraversal(e.catalog, e.maxDepth, bom.ProductID)
	err := tr.walk(ctx, bom, 0, one, func(line LineSnapshot, comp *Component, level int, qtyPer decimal.Decimal, sub *BOMSnapshot) error {
		extended := qtyPer.Mul(reqQty)

		out := ExplodedLine{
			Level:            level,
			LineID:           line.ID,
			ComponentID:      comp.ID,
			ComponentSKU:     comp.SKU,
			ComponentName:    comp.Name,
			Unit:             lineUnit(line, comp),
			QuantityPerUnit:  qtyPer.InexactFloat64(),
			ExtendedQuantity: extended.InexactFloat64(),
			IsSubAssembly:    sub != nil,
		}

		unitCost := decimal.NewFromFloat(comp.StandardCost)
		if sub == nil && unitCost.Sign() <= 0 {
			// 叶子无可用成本：按零计并标记，调用方可提示而非悄悄低估
			out.CostMissing = true
			unitCost = decimal.Zero
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("component %s has no resolvable unit cost, costed at zero", comp.SKU))
		}
		lineCost := extended.Mul(unitCost)
		out.UnitCost = unitCost.InexactFloat64()
		out.LineCost = lineCost.InexactFloat64()

		if sub == nil {
			totalCost = totalCost.Add(lineCost)
			leafSeen[comp.ID] = struct{}{}
		}

		avail, availErr := e.availability.Available(ctx, comp.ID, location)
		if availErr != nil {
			// 库存源不可达按零可用处理：宁可误报短缺，不可虚报充足
			out.InventoryUnknown = true
			avail = 0
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("inventory lookup failed for %s, availability treated as zero", comp.SKU))
		}
		availDec := decimal.NewFromFloat(avail)
		out.InventoryAvailable = avail
		out.IsAvailable = availDec.GreaterThanOrEqual(extended)
		shortage := extended.Sub(availDec)
		if shortage.Sign() > 0 {
			out.Shortage = shortage.InexactFloat64()
		}

		if level > result.MaxDepth {
			result.MaxDepth = level
		}
		result.Lines = append(result.Lines, out)
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.TotalComponents = len(result.Lines)
	result.UniqueComponents = len(leafSeen)
	result.TotalCost = totalCost.InexactFloat64()
	return result, nil
}

func lineUnit(line LineSnapshot, comp *Component) string {
	if line.Unit != "" {
		return line.Unit
	}
	return comp.Unit
}
