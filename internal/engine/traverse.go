package engine

import (
	"context"
	"errors"
	"sort"

	"github.com/shopspring/decimal"
)

// DefaultMaxDepth 展开层级安全上限（独立于环检测的第二道防线）
const DefaultMaxDepth = 20

var one = decimal.NewFromInt(1)

// visitFunc 共享遍历的行回调：叶子与子装配行都会进入。
// qtyPer 为相对根产品单件的累计用量（含各级损耗系数）；
// sub 非nil表示该组件有激活BOM，回调返回后遍历会下探一层。
type visitFunc func(line LineSnapshot, comp *Component, level int, qtyPer decimal.Decimal, sub *BOMSnapshot) error

// traversal 展开引擎与成本卷积引擎共用的递归核心。
// path 记录当前递归路径上的产品ID，用于环检测：
// 同一叶子组件允许出现在多个独立分支，只有路径上重复才是环。
type traversal struct {
	catalog  CatalogStore
	maxDepth int
	path     []string
	onPath   map[string]struct{}
}

func newTraversal(catalog CatalogStore, maxDepth int, rootProductID string) *traversal {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	t := &traversal{
		catalog:  catalog,
		maxDepth: maxDepth,
		onPath:   make(map[string]struct{}),
	}
	t.push(rootProductID)
	return t
}

func (t *traversal) push(productID string) {
	t.path = append(t.path, productID)
	t.onPath[productID] = struct{}{}
}

func (t *traversal) pop() {
	last := t.path[len(t.path)-1]
	t.path = t.path[:len(t.path)-1]
	delete(t.onPath, last)
}

func (t *traversal) cyclePath(repeated string) []string {
	p := make([]string, len(t.path), len(t.path)+1)
	copy(p, t.path)
	return append(p, repeated)
}

// walk 按sequence顺序深度优先遍历BOM行
func (t *traversal) walk(ctx context.Context, bom *BOMSnapshot, level int, mult decimal.Decimal, fn visitFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lines := make([]LineSnapshot, len(bom.Lines))
	copy(lines, bom.Lines)
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Sequence < lines[j].Sequence })

	for _, line := range lines {
		comp, err := t.catalog.Component(ctx, line.ComponentID)
		if err != nil {
			return err
		}

		perUnit := decimal.NewFromFloat(line.Quantity).Mul(one.Add(decimal.NewFromFloat(line.ScrapFactor)))
		qtyPer := mult.Mul(perUnit)

		var sub *BOMSnapshot
		if comp.HasBOM {
			if _, dup := t.onPath[comp.ID]; dup {
				return &CyclicBOMError{Path: t.cyclePath(comp.ID)}
			}
			sub, err = t.catalog.ActiveBOM(ctx, comp.ID)
			if err != nil {
				var nf *NotFoundError
				if errors.As(err, &nf) {
					// has_bom与目录不一致（激活BOM刚被停用），按叶子处理
					sub = nil
				} else {
					return err
				}
			}
		}

		if err := fn(line, comp, level, qtyPer, sub); err != nil {
			return err
		}

		if sub != nil {
			if level+1 >= t.maxDepth {
				return &MaxDepthExceededError{MaxDepth: t.maxDepth, Path: t.cyclePath(comp.ID)}
			}
			t.push(comp.ID)
			if err := t.walk(ctx, sub, level+1, qtyPer, fn); err != nil {
				return err
			}
			t.pop()
		}
	}

	return nil
}
