package service

import (
	"context"
	"testing"

	"github.com/ridha-415/filaops-sub000/internal/config"
	"github.com/ridha-415/filaops-sub000/internal/engine"
	"github.com/ridha-415/filaops-sub000/internal/lock"
	"github.com/ridha-415/filaops-sub000/internal/repository"
	"github.com/ridha-415/filaops-sub000/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestServices(t *testing.T) (*Services, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	services := NewServices(repos, lock.New(nil), config.EngineConfig{
		MaxExplosionDepth: 20,
		DefaultLocation:   "MAIN",
	})
	return services, db
}

func TestBOMServiceCreateComputesTotalCost(t *testing.T) {
	services, db := newTestServices(t)
	ctx := context.Background()

	testutil.SeedProduct(t, db, "prod-root", "ROOT", "Root Assembly", false, 0)
	testutil.SeedProduct(t, db, "prod-a", "COMP-A", "Component A", true, 2.5)
	testutil.SeedProduct(t, db, "prod-b", "COMP-B", "Component B", true, 10)

	bom, err := services.BOM.Create(ctx, CreateBOMRequest{
		ProductID: "prod-root",
		Code:      "BOM-ROOT",
		Lines: []BOMLineInput{
			{ComponentID: "prod-a", Quantity: 4},
			{ComponentID: "prod-b", Quantity: 2, ScrapFactor: 0.05},
		},
	}, false, "tester")
	require.NoError(t, err)

	assert.Equal(t, 1, bom.Version)
	assert.True(t, bom.Active)
	require.Len(t, bom.Lines, 2)
	// 4*2.5 + 2*1.05*10 = 31
	assert.InDelta(t, 31.0, bom.TotalCost, 1e-9)
	// 未显式给定序号时按行序分配
	assert.Equal(t, 10, bom.Lines[0].Sequence)
	assert.Equal(t, 20, bom.Lines[1].Sequence)
}

func TestBOMServiceCreateRejectsSecondActiveVersion(t *testing.T) {
	services, db := newTestServices(t)
	ctx := context.Background()

	testutil.SeedProduct(t, db, "prod-root", "ROOT", "Root Assembly", false, 0)
	testutil.SeedProduct(t, db, "prod-a", "COMP-A", "Component A", true, 1)

	_, err := services.BOM.Create(ctx, CreateBOMRequest{
		ProductID: "prod-root",
		Lines:     []BOMLineInput{{ComponentID: "prod-a", Quantity: 1}},
	}, false, "tester")
	require.NoError(t, err)

	_, err = services.BOM.Create(ctx, CreateBOMRequest{
		ProductID: "prod-root",
		Lines:     []BOMLineInput{{ComponentID: "prod-a", Quantity: 2}},
	}, false, "tester")
	var invalidVersion *engine.InvalidVersionError
	require.ErrorAs(t, err, &invalidVersion)
	assert.Equal(t, "prod-root", invalidVersion.ProductID)
}

func TestBOMServiceForceNewSupersedesActiveVersion(t *testing.T) {
	services, db := newTestServices(t)
	ctx := context.Background()

	testutil.SeedProduct(t, db, "prod-root", "ROOT", "Root Assembly", false, 0)
	testutil.SeedProduct(t, db, "prod-a", "COMP-A", "Component A", true, 1)

	v1, err := services.BOM.Create(ctx, CreateBOMRequest{
		ProductID: "prod-root",
		Lines:     []BOMLineInput{{ComponentID: "prod-a", Quantity: 1}},
	}, false, "tester")
	require.NoError(t, err)

	v2, err := services.BOM.Create(ctx, CreateBOMRequest{
		ProductID: "prod-root",
		Lines:     []BOMLineInput{{ComponentID: "prod-a", Quantity: 3}},
	}, true, "tester")
	require.NoError(t, err)

	assert.Equal(t, 2, v2.Version)
	assert.True(t, v2.Active)

	old, err := services.BOM.GetByID(ctx, v1.ID)
	require.NoError(t, err)
	assert.False(t, old.Active)

	active, err := services.BOM.GetActiveByProduct(ctx, "prod-root")
	require.NoError(t, err)
	assert.Equal(t, v2.ID, active.ID)

	versions, err := services.BOM.ListVersions(ctx, "prod-root")
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, 2, versions[0].Version)
}

func TestBOMServiceCreateRejectsDirectSelfReference(t *testing.T) {
	services, db := newTestServices(t)
	ctx := context.Background()

	testutil.SeedProduct(t, db, "prod-root", "ROOT", "Root Assembly", false, 0)

	_, err := services.BOM.Create(ctx, CreateBOMRequest{
		ProductID: "prod-root",
		Lines:     []BOMLineInput{{ComponentID: "prod-root", Quantity: 1}},
	}, false, "tester")
	var cyclic *engine.CyclicBOMError
	require.ErrorAs(t, err, &cyclic)
}

func TestBOMServiceLineMutationsRecomputeTotalCost(t *testing.T) {
	services, db := newTestServices(t)
	ctx := context.Background()

	testutil.SeedProduct(t, db, "prod-root", "ROOT", "Root Assembly", false, 0)
	testutil.SeedProduct(t, db, "prod-a", "COMP-A", "Component A", true, 2)
	testutil.SeedProduct(t, db, "prod-b", "COMP-B", "Component B", true, 5)

	bom, err := services.BOM.Create(ctx, CreateBOMRequest{
		ProductID: "prod-root",
		Lines:     []BOMLineInput{{ComponentID: "prod-a", Quantity: 3}},
	}, false, "tester")
	require.NoError(t, err)
	assert.InDelta(t, 6.0, bom.TotalCost, 1e-9)

	// 追加行：默认序号为当前最大值+10
	bom, err = services.BOM.AddLine(ctx, bom.ID, BOMLineInput{ComponentID: "prod-b", Quantity: 2})
	require.NoError(t, err)
	require.Len(t, bom.Lines, 2)
	assert.Equal(t, 20, bom.Lines[1].Sequence)
	assert.InDelta(t, 16.0, bom.TotalCost, 1e-9)

	// 修改数量
	qty := 5.0
	bom, err = services.BOM.UpdateLine(ctx, bom.ID, bom.Lines[0].ID, UpdateBOMLineRequest{Quantity: &qty})
	require.NoError(t, err)
	assert.InDelta(t, 20.0, bom.TotalCost, 1e-9)

	// 删除行
	bom, err = services.BOM.DeleteLine(ctx, bom.ID, bom.Lines[0].ID)
	require.NoError(t, err)
	require.Len(t, bom.Lines, 1)
	assert.InDelta(t, 10.0, bom.TotalCost, 1e-9)
}

func TestBOMServiceAddLineRejectsSelfReference(t *testing.T) {
	services, db := newTestServices(t)
	ctx := context.Background()

	testutil.SeedProduct(t, db, "prod-root", "ROOT", "Root Assembly", false, 0)
	testutil.SeedProduct(t, db, "prod-a", "COMP-A", "Component A", true, 1)

	bom, err := services.BOM.Create(ctx, CreateBOMRequest{
		ProductID: "prod-root",
		Lines:     []BOMLineInput{{ComponentID: "prod-a", Quantity: 1}},
	}, false, "tester")
	require.NoError(t, err)

	_, err = services.BOM.AddLine(ctx, bom.ID, BOMLineInput{ComponentID: "prod-root", Quantity: 1})
	var cyclic *engine.CyclicBOMError
	require.ErrorAs(t, err, &cyclic)
}

func TestBOMServiceExplodeMultiLevel(t *testing.T) {
	services, db := newTestServices(t)
	ctx := context.Background()

	testutil.SeedProduct(t, db, "prod-root", "ROOT", "Root Assembly", false, 0)
	testutil.SeedProduct(t, db, "prod-sub", "SUB", "Sub Assembly", false, 0)
	testutil.SeedProduct(t, db, "prod-a", "LEAF-A", "Leaf A", true, 1)
	testutil.SeedProduct(t, db, "prod-b", "LEAF-B", "Leaf B", true, 5)

	_, err := services.BOM.Create(ctx, CreateBOMRequest{
		ProductID: "prod-sub",
		Lines: []BOMLineInput{
			{ComponentID: "prod-a", Quantity: 3},
			{ComponentID: "prod-b", Quantity: 1},
		},
	}, false, "tester")
	require.NoError(t, err)

	rootBOM, err := services.BOM.Create(ctx, CreateBOMRequest{
		ProductID: "prod-root",
		Lines: []BOMLineInput{
			{ComponentID: "prod-sub", Quantity: 2},
			{ComponentID: "prod-a", Quantity: 4},
		},
	}, false, "tester")
	require.NoError(t, err)

	result, err := services.BOM.Explode(ctx, rootBOM.ID, 1, "")
	require.NoError(t, err)

	// SUB行 + 其2个子level以及顶层LEAF-A行
	assert.Equal(t, 4, result.TotalComponents)
	assert.Equal(t, 1, result.MaxDepth)
	assert.True(t, result.Lines[0].IsSubAssembly)
	// 叶子成本: 4*1 + 2*3*1 + 2*1*5 = 20
	assert.InDelta(t, 20.0, result.TotalCost, 1e-9)

	// 卷积与展开同源同结果
	rollup, err := services.BOM.Rollup(ctx, rootBOM.ID)
	require.NoError(t, err)
	assert.InDelta(t, result.TotalCost, rollup.RolledUpCost, 1e-9)
	assert.InDelta(t, 4.0, rollup.DirectCost, 1e-9)
	assert.InDelta(t, 16.0, rollup.SubAssemblyCost, 1e-9)
	assert.Equal(t, 1, rollup.SubAssemblyCount)
}

func TestBOMServiceFeasibility(t *testing.T) {
	services, db := newTestServices(t)
	ctx := context.Background()

	testutil.SeedProduct(t, db, "prod-root", "ROOT", "Root Assembly", false, 0)
	testutil.SeedProduct(t, db, "prod-a", "COMP-A", "Component A", true, 1)
	testutil.SeedProduct(t, db, "prod-b", "COMP-B", "Component B", true, 1)
	testutil.SeedInventory(t, db, "inv-a", "prod-a", "MAIN", 10)
	testutil.SeedInventory(t, db, "inv-b", "prod-b", "MAIN", 3)

	bom, err := services.BOM.Create(ctx, CreateBOMRequest{
		ProductID: "prod-root",
		Lines: []BOMLineInput{
			{ComponentID: "prod-a", Quantity: 2},
			{ComponentID: "prod-b", Quantity: 1},
		},
	}, false, "tester")
	require.NoError(t, err)

	result, err := services.BOM.Feasibility(ctx, bom.ID, 5, "")
	require.NoError(t, err)

	// A支持 floor(10/2)=5, B支持 floor(3/1)=3
	assert.Equal(t, int64(3), result.MaxProducible)
	assert.Equal(t, "prod-b", result.LimitingComponentID)
	assert.False(t, result.CanFulfillAll)
	assert.Equal(t, int64(2), result.BackorderQty)
}

func TestBOMServiceGetByIDNotFound(t *testing.T) {
	services, _ := newTestServices(t)

	_, err := services.BOM.GetByID(context.Background(), "missing")
	var notFound *engine.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "bom", notFound.Kind)
}
