package service

import (
	"context"
	"strings"
	"testing"

	"github.com/ridha-415/filaops-sub000/internal/engine"
	"github.com/ridha-415/filaops-sub000/internal/entity"
	"github.com/ridha-415/filaops-sub000/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedOrderFixtures(t *testing.T, services *Services, db *gorm.DB) {
	t.Helper()
	ctx := context.Background()

	testutil.SeedProduct(t, db, "prod-root", "ROOT", "Root Assembly", false, 0)
	testutil.SeedProduct(t, db, "prod-a", "COMP-A", "Component A", true, 1)
	testutil.SeedProduct(t, db, "prod-b", "COMP-B", "Component B", true, 1)
	testutil.SeedInventory(t, db, "inv-a", "prod-a", "MAIN", 10)
	testutil.SeedInventory(t, db, "inv-b", "prod-b", "MAIN", 3)

	_, err := services.BOM.Create(ctx, CreateBOMRequest{
		ProductID: "prod-root",
		Lines: []BOMLineInput{
			{ComponentID: "prod-a", Quantity: 2},
			{ComponentID: "prod-b", Quantity: 1},
		},
	}, false, "tester")
	require.NoError(t, err)
}

func TestProductionServiceCreateFulfillable(t *testing.T) {
	services, db := newTestServices(t)
	seedOrderFixtures(t, services, db)
	ctx := context.Background()

	result, err := services.Production.Create(ctx, CreateProductionOrderRequest{
		ProductID: "prod-root",
		Quantity:  3,
	}, "tester")
	require.NoError(t, err)

	order := result.Order
	assert.Equal(t, entity.POStatusCreated, order.Status)
	assert.InDelta(t, 3.0, order.QuantityOrdered, 1e-9)
	assert.InDelta(t, 3.0, order.QuantityProducible, 1e-9)
	assert.InDelta(t, 0.0, order.BackorderQty, 1e-9)
	assert.True(t, strings.HasPrefix(order.OrderCode, "MO-"))
	assert.Equal(t, 1, order.BOMVersion)
	assert.True(t, result.Feasibility.CanFulfillAll)
}

func TestProductionServiceCreateRejectsWithoutAllowPartial(t *testing.T) {
	services, db := newTestServices(t)
	seedOrderFixtures(t, services, db)
	ctx := context.Background()

	_, err := services.Production.Create(ctx, CreateProductionOrderRequest{
		ProductID: "prod-root",
		Quantity:  5,
	}, "tester")

	var insufficient *engine.InsufficientInventoryError
	require.ErrorAs(t, err, &insufficient)
	assert.InDelta(t, 5.0, insufficient.Requested, 1e-9)
	assert.InDelta(t, 3.0, insufficient.MaxProducible, 1e-9)
	assert.Equal(t, "prod-b", insufficient.LimitingComponent)
}

func TestProductionServiceCreatePartialSplit(t *testing.T) {
	services, db := newTestServices(t)
	seedOrderFixtures(t, services, db)
	ctx := context.Background()

	result, err := services.Production.Create(ctx, CreateProductionOrderRequest{
		ProductID:    "prod-root",
		Quantity:     5,
		AllowPartial: true,
	}, "tester")
	require.NoError(t, err)

	order := result.Order
	assert.Equal(t, entity.POStatusBackordered, order.Status)
	assert.InDelta(t, 5.0, order.QuantityOrdered, 1e-9)
	assert.InDelta(t, 3.0, order.QuantityProducible, 1e-9)
	assert.InDelta(t, 2.0, order.BackorderQty, 1e-9)
	assert.Equal(t, "prod-b", order.LimitingComponent)
}

func TestProductionServiceCreateWithoutActiveBOM(t *testing.T) {
	services, db := newTestServices(t)
	testutil.SeedProduct(t, db, "prod-x", "PROD-X", "No BOM", false, 0)

	_, err := services.Production.Create(context.Background(), CreateProductionOrderRequest{
		ProductID: "prod-x",
		Quantity:  1,
	}, "tester")
	var notFound *engine.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "bom", notFound.Kind)
}

func TestProductionServiceStateTransitions(t *testing.T) {
	services, db := newTestServices(t)
	seedOrderFixtures(t, services, db)
	ctx := context.Background()

	result, err := services.Production.Create(ctx, CreateProductionOrderRequest{
		ProductID: "prod-root",
		Quantity:  2,
	}, "tester")
	require.NoError(t, err)
	orderID := result.Order.ID

	// 未下达不能完工
	_, err = services.Production.Complete(ctx, orderID)
	require.ErrorIs(t, err, ErrInvalidState)

	order, err := services.Production.Release(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, entity.POStatusReleased, order.Status)

	order, err = services.Production.Complete(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, entity.POStatusCompleted, order.Status)

	// 完工后不可取消
	_, err = services.Production.Cancel(ctx, orderID)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestProductionServiceOrderCodesIncrement(t *testing.T) {
	services, db := newTestServices(t)
	seedOrderFixtures(t, services, db)
	ctx := context.Background()

	first, err := services.Production.Create(ctx, CreateProductionOrderRequest{ProductID: "prod-root", Quantity: 1}, "tester")
	require.NoError(t, err)
	second, err := services.Production.Create(ctx, CreateProductionOrderRequest{ProductID: "prod-root", Quantity: 1}, "tester")
	require.NoError(t, err)

	assert.NotEqual(t, first.Order.OrderCode, second.Order.OrderCode)
	assert.True(t, strings.HasSuffix(first.Order.OrderCode, "-0001"))
	assert.True(t, strings.HasSuffix(second.Order.OrderCode, "-0002"))
}
