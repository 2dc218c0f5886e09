package engine

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// CostRollup 成本卷积结果（瞬态）
type CostRollup struct {
	BOMID            string   `json:"bom_id"`
	ProductID        string   `json:"product_id"`
	DirectCost       float64  `json:"direct_cost"`        // 顶层采购件/原材料行
	SubAssemblyCost  float64  `json:"sub_assembly_cost"`  // 顶层子装配行的递归卷积成本
	RolledUpCost     float64  `json:"rolled_up_cost"`     // direct + sub_assembly
	SubAssemblyCount int      `json:"sub_assembly_count"` // 各层级不同子装配组件数
	HasSubAssemblies bool     `json:"has_sub_assemblies"`
	Warnings         []string `json:"warnings,omitempty"`
}

// RollupCost 递归计算BOM的卷积成本。
// 与Explode共用遍历核心（同一套环检测与层级上限）：
// 子装配行的单位成本取其激活BOM的卷积成本，而非产品档案上的静态成本，
// 因此卷积总成本恒等于全部叶子行按累计用量计价之和。
func (e *Engine) RollupCost(ctx context.Context, bom *BOMSnapshot) (*CostRollup, error) {
	result := &CostRollup{
		BOMID:     bom.ID,
		ProductID: bom.ProductID,
	}

	direct := decimal.Zero
	subCost := decimal.Zero
	subSeen := make(map[string]struct{})

	tr := newTraversal(e.catalog, e.maxDepth, bom.ProductID)
	err := tr.walk(ctx, bom, 0, one, func(line LineSnapshot, comp *Component, level int, qtyPer decimal.Decimal, sub *BOMSnapshot) error {
		if sub != nil {
			subSeen[comp.ID] = struct{}{}
			return nil
		}

		unitCost := decimal.NewFromFloat(comp.StandardCost)
		if unitCost.Sign() <= 0 {
			unitCost = decimal.Zero
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("component %s has no resolvable unit cost, costed at zero", comp.SKU))
		}
		cost := qtyPer.Mul(unitCost)

		// level 0 的叶子是本BOM自身的材料行，更深的叶子都挂在某个顶层子装配之下
		if level == 0 {
			direct = direct.Add(cost)
		} else {
			subCost = subCost.Add(cost)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.DirectCost = direct.InexactFloat64()
	result.SubAssemblyCost = subCost.InexactFloat64()
	result.RolledUpCost = direct.Add(subCost).InexactFloat64()
	result.SubAssemblyCount = len(subSeen)
	result.HasSubAssemblies = len(subSeen) > 0
	return result, nil
}
