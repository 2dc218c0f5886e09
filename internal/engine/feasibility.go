package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// FeasibilityLine 可行性计算输入行（单层BOM行 + 当前可用库存）
type FeasibilityLine struct {
	LineID           string
	ComponentID      string
	Sequence         int
	Quantity         float64
	ScrapFactor      float64
	Available        float64
	InventoryUnknown bool
}

// FeasibilityLineResult 行级可行性明细
type FeasibilityLineResult struct {
	LineID           string  `json:"line_id"`
	ComponentID      string  `json:"component_id"`
	Sequence         int     `json:"sequence"`
	RequiredPerUnit  float64 `json:"required_per_unit"`
	Required         float64 `json:"required"`
	Available        float64 `json:"available"`
	UnitsSupportable int64   `json:"units_supportable"`
	Limiting         bool    `json:"limiting"`
	IsAvailable      bool    `json:"is_available"`
	Shortage         float64 `json:"shortage"`
	InventoryUnknown bool    `json:"inventory_unknown,omitempty"`
}

// FeasibilityResult 生产可行性结果
type FeasibilityResult struct {
	RequestedQuantity   int64                   `json:"requested_quantity"`
	MaxProducible       int64                   `json:"max_producible"`
	LimitingLineID      string                  `json:"limiting_line_id,omitempty"`
	LimitingComponentID string                  `json:"limiting_component_id,omitempty"`
	CanFulfillAll       bool                    `json:"can_fulfill_all"`
	BackorderQty        int64                   `json:"backorder_qty"`
	Lines               []FeasibilityLineResult `json:"lines"`
}

// PlanFeasibility 计算当前库存支持的最大可生产数量与限制组件。
// 单件用量为零的行不构成限制（视为无限）；无行的BOM按0处理——
// 没有定义物料的装配不可生产，这是保守约定而非“无限可产”。
// 限制组件取到达最小值的第一行，按sequence升序稳定决出。
// 引擎只计算部分交付拆分，落单/留底由调用方负责。
func PlanFeasibility(lines []FeasibilityLine, requested int64) *FeasibilityResult {
	result := &FeasibilityResult{RequestedQuantity: requested}

	if len(lines) == 0 {
		result.MaxProducible = 0
		result.CanFulfillAll = requested <= 0
		result.BackorderQty = maxInt64(0, requested)
		return result
	}

	sorted := make([]FeasibilityLine, len(lines))
	copy(sorted, lines)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Sequence < sorted[j].Sequence })

	reqQty := decimal.NewFromInt(requested)
	hasLimit := false
	var minUnits int64

	for _, line := range sorted {
		per := decimal.NewFromFloat(line.Quantity).Mul(one.Add(decimal.NewFromFloat(line.ScrapFactor)))
		avail := decimal.NewFromFloat(line.Available)
		required := per.Mul(reqQty)

		out := FeasibilityLineResult{
			LineID:           line.LineID,
			ComponentID:      line.ComponentID,
			Sequence:         line.Sequence,
			RequiredPerUnit:  per.InexactFloat64(),
			Required:         required.InexactFloat64(),
			Available:        line.Available,
			InventoryUnknown: line.InventoryUnknown,
			IsAvailable:      avail.GreaterThanOrEqual(required),
		}
		if shortage := required.Sub(avail); shortage.Sign() > 0 {
			out.Shortage = shortage.InexactFloat64()
		}

		if per.Sign() > 0 {
			units := avail.Div(per).Floor().IntPart()
			if units < 0 {
				units = 0
			}
			out.UnitsSupportable = units

			if !hasLimit || units < minUnits {
				hasLimit = true
				minUnits = units
				result.LimitingLineID = line.LineID
				result.LimitingComponentID = line.ComponentID
			}
		}

		result.Lines = append(result.Lines, out)
	}

	if hasLimit {
		result.MaxProducible = minUnits
		for i := range result.Lines {
			result.Lines[i].Limiting = result.Lines[i].LineID == result.LimitingLineID
		}
	} else {
		// 所有行都无限制：库存不约束生产
		result.MaxProducible = requested
		result.LimitingLineID = ""
		result.LimitingComponentID = ""
	}

	result.CanFulfillAll = result.MaxProducible >= requested
	result.BackorderQty = maxInt64(0, requested-result.MaxProducible)
	return result
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
