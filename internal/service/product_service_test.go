package service

import (
	"context"
	"testing"

	"github.com/ridha-415/filaops-sub000/internal/engine"
	"github.com/ridha-415/filaops-sub000/internal/repository"
	"github.com/ridha-415/filaops-sub000/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductServiceCreateAndDuplicateSKU(t *testing.T) {
	services, _ := newTestServices(t)
	ctx := context.Background()

	p, err := services.Product.Create(ctx, CreateProductRequest{
		SKU:           "FIL-PLA-BLK",
		Name:          "PLA Filament Black",
		IsRawMaterial: true,
		StandardCost:  18.5,
	})
	require.NoError(t, err)
	assert.Equal(t, "pcs", p.Unit)
	assert.Len(t, p.ID, 32)

	_, err = services.Product.Create(ctx, CreateProductRequest{
		SKU:  "FIL-PLA-BLK",
		Name: "Duplicate",
	})
	require.Error(t, err)
}

func TestProductServiceHasBOMDerived(t *testing.T) {
	services, db := newTestServices(t)
	ctx := context.Background()

	testutil.SeedProduct(t, db, "prod-root", "ROOT", "Root Assembly", false, 0)
	testutil.SeedProduct(t, db, "prod-a", "COMP-A", "Component A", true, 1)

	p, err := services.Product.GetByID(ctx, "prod-root")
	require.NoError(t, err)
	assert.False(t, p.HasBOM)

	_, err = services.BOM.Create(ctx, CreateBOMRequest{
		ProductID: "prod-root",
		Lines:     []BOMLineInput{{ComponentID: "prod-a", Quantity: 1}},
	}, false, "tester")
	require.NoError(t, err)

	p, err = services.Product.GetByID(ctx, "prod-root")
	require.NoError(t, err)
	assert.True(t, p.HasBOM)
}

func TestProductServiceNotFound(t *testing.T) {
	services, _ := newTestServices(t)

	_, err := services.Product.GetByID(context.Background(), "missing")
	var notFound *engine.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestInventoryServiceSetAndAggregate(t *testing.T) {
	services, db := newTestServices(t)
	ctx := context.Background()

	testutil.SeedProduct(t, db, "prod-a", "COMP-A", "Component A", true, 1)

	_, err := services.Inventory.Set(ctx, SetInventoryRequest{
		ProductID:    "prod-a",
		Location:     "MAIN",
		Quantity:     50,
		AvailableQty: 40,
	})
	require.NoError(t, err)

	_, err = services.Inventory.Set(ctx, SetInventoryRequest{
		ProductID:    "prod-a",
		Location:     "WH2",
		Quantity:     10,
		AvailableQty: 10,
	})
	require.NoError(t, err)

	// 指定库位
	available, err := services.Inventory.GetAvailable(ctx, "prod-a", "MAIN")
	require.NoError(t, err)
	assert.InDelta(t, 40.0, available, 1e-9)

	// 空库位汇总全部
	available, err = services.Inventory.GetAvailable(ctx, "prod-a", "")
	require.NoError(t, err)
	assert.InDelta(t, 50.0, available, 1e-9)

	// 覆盖写
	_, err = services.Inventory.Set(ctx, SetInventoryRequest{
		ProductID:    "prod-a",
		Location:     "MAIN",
		Quantity:     60,
		AvailableQty: 60,
	})
	require.NoError(t, err)
	available, err = services.Inventory.GetAvailable(ctx, "prod-a", "MAIN")
	require.NoError(t, err)
	assert.InDelta(t, 60.0, available, 1e-9)

	items, total, err := services.Inventory.List(ctx, repository.InventoryListParams{ProductID: "prod-a"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items, 2)
}

func TestInventoryServiceSetRejectsAvailableAboveOnHand(t *testing.T) {
	services, db := newTestServices(t)
	testutil.SeedProduct(t, db, "prod-a", "COMP-A", "Component A", true, 1)

	_, err := services.Inventory.Set(context.Background(), SetInventoryRequest{
		ProductID:    "prod-a",
		Quantity:     5,
		AvailableQty: 6,
	})
	require.Error(t, err)
}

func TestInventoryServiceSetUnknownProduct(t *testing.T) {
	services, _ := newTestServices(t)

	_, err := services.Inventory.Set(context.Background(), SetInventoryRequest{
		ProductID: "missing",
		Quantity:  1,
	})
	var notFound *engine.NotFoundError
	require.ErrorAs(t, err, &notFound)
}
