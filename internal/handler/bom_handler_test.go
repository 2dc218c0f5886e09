package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ridha-415/filaops-sub000/internal/config"
	"github.com/ridha-415/filaops-sub000/internal/lock"
	"github.com/ridha-415/filaops-sub000/internal/repository"
	"github.com/ridha-415/filaops-sub000/internal/service"
	"github.com/ridha-415/filaops-sub000/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupBOMTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, lock.New(nil), config.EngineConfig{
		MaxExplosionDepth: 20,
		DefaultLocation:   "MAIN",
	})
	handlers := NewHandlers(services)

	r := testutil.SetupRouter()
	v1 := r.Group("/api/v1")
	boms := v1.Group("/boms")
	{
		boms.POST("", handlers.BOM.Create)
		boms.GET("/:id", handlers.BOM.Get)
		boms.POST("/:id/lines", handlers.BOM.AddLine)
		boms.GET("/:id/explode", handlers.BOM.Explode)
		boms.GET("/:id/cost-rollup", handlers.BOM.Rollup)
		boms.GET("/:id/feasibility", handlers.BOM.Feasibility)
	}
	orders := v1.Group("/production-orders")
	{
		orders.POST("", handlers.Production.Create)
	}
	return r, db
}

func seedBOMFixtures(t *testing.T, db *gorm.DB) {
	t.Helper()
	testutil.SeedProduct(t, db, "prod-root", "ROOT", "Root Assembly", false, 0)
	testutil.SeedProduct(t, db, "prod-a", "COMP-A", "Component A", true, 2.5)
	testutil.SeedProduct(t, db, "prod-b", "COMP-B", "Component B", true, 10)
	testutil.SeedInventory(t, db, "inv-a", "prod-a", "MAIN", 100)
	testutil.SeedInventory(t, db, "inv-b", "prod-b", "MAIN", 5)
}

func createBOMViaAPI(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/boms", map[string]interface{}{
		"product_id": "prod-root",
		"code":       "BOM-ROOT",
		"lines": []map[string]interface{}{
			{"component_id": "prod-a", "quantity": 4},
			{"component_id": "prod-b", "quantity": 2, "scrap_factor": 0.05},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	return data["id"].(string)
}

func TestBOMHandlerCreateAndGet(t *testing.T) {
	r, db := setupBOMTest(t)
	seedBOMFixtures(t, db)

	bomID := createBOMViaAPI(t, r)

	w := testutil.DoRequest(r, http.MethodGet, "/api/v1/boms/"+bomID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := testutil.ParseResponse(w)
	assert.Equal(t, float64(0), resp["code"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "BOM-ROOT", data["code"])
	assert.Equal(t, true, data["active"])
	assert.InDelta(t, 31.0, data["total_cost"].(float64), 1e-9)
	assert.Len(t, data["lines"].([]interface{}), 2)
}

func TestBOMHandlerGetNotFound(t *testing.T) {
	r, _ := setupBOMTest(t)

	w := testutil.DoRequest(r, http.MethodGet, "/api/v1/boms/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	resp := testutil.ParseResponse(w)
	assert.Equal(t, float64(10002), resp["code"])
}

func TestBOMHandlerCreateConflictWithoutForceNew(t *testing.T) {
	r, db := setupBOMTest(t)
	seedBOMFixtures(t, db)
	createBOMViaAPI(t, r)

	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/boms", map[string]interface{}{
		"product_id": "prod-root",
		"lines":      []map[string]interface{}{{"component_id": "prod-a", "quantity": 1}},
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// force_new替换激活版本
	w = testutil.DoRequest(r, http.MethodPost, "/api/v1/boms?force_new=true", map[string]interface{}{
		"product_id": "prod-root",
		"lines":      []map[string]interface{}{{"component_id": "prod-a", "quantity": 1}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["version"])
}

func TestBOMHandlerCreateMissingProduct(t *testing.T) {
	r, _ := setupBOMTest(t)

	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/boms", map[string]interface{}{
		"product_id": "missing",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBOMHandlerCreateValidation(t *testing.T) {
	r, _ := setupBOMTest(t)

	// 缺少product_id
	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/boms", map[string]interface{}{
		"code": "BOM-X",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	resp := testutil.ParseResponse(w)
	assert.Equal(t, float64(10001), resp["code"])
}

func TestBOMHandlerExplode(t *testing.T) {
	r, db := setupBOMTest(t)
	seedBOMFixtures(t, db)
	bomID := createBOMViaAPI(t, r)

	w := testutil.DoRequest(r, http.MethodGet, "/api/v1/boms/"+bomID+"/explode?quantity=10", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(10), data["requested_quantity"])
	assert.Equal(t, float64(2), data["total_components"])
	// 10 × (4*2.5 + 2*1.05*10) = 310
	assert.InDelta(t, 310.0, data["total_cost"].(float64), 1e-9)

	lines := data["lines"].([]interface{})
	require.Len(t, lines, 2)
	// COMP-B: 需求21 可用5 缺口16
	lineB := lines[1].(map[string]interface{})
	assert.Equal(t, "COMP-B", lineB["component_sku"])
	assert.Equal(t, false, lineB["is_available"])
	assert.InDelta(t, 16.0, lineB["shortage"].(float64), 1e-9)
}

func TestBOMHandlerRollup(t *testing.T) {
	r, db := setupBOMTest(t)
	seedBOMFixtures(t, db)
	bomID := createBOMViaAPI(t, r)

	w := testutil.DoRequest(r, http.MethodGet, "/api/v1/boms/"+bomID+"/cost-rollup", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	assert.InDelta(t, 31.0, data["rolled_up_cost"].(float64), 1e-9)
	assert.Equal(t, false, data["has_sub_assemblies"])
}

func TestBOMHandlerFeasibility(t *testing.T) {
	r, db := setupBOMTest(t)
	seedBOMFixtures(t, db)
	bomID := createBOMViaAPI(t, r)

	w := testutil.DoRequest(r, http.MethodGet, "/api/v1/boms/"+bomID+"/feasibility?quantity=10", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	// COMP-B: floor(5 / 2.1) = 2
	assert.Equal(t, float64(2), data["max_producible"])
	assert.Equal(t, "prod-b", data["limiting_component_id"])
	assert.Equal(t, false, data["can_fulfill_all"])
	assert.Equal(t, float64(8), data["backorder_qty"])
}

func TestProductionHandlerCreateInsufficientInventory(t *testing.T) {
	r, db := setupBOMTest(t)
	seedBOMFixtures(t, db)
	createBOMViaAPI(t, r)

	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/production-orders", map[string]interface{}{
		"product_id": "prod-root",
		"quantity":   10,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// 允许部分交付时按最大可产量拆单
	w = testutil.DoRequest(r, http.MethodPost, "/api/v1/production-orders", map[string]interface{}{
		"product_id":    "prod-root",
		"quantity":      10,
		"allow_partial": true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	order := data["order"].(map[string]interface{})
	assert.Equal(t, "BACKORDERED", order["status"])
	assert.InDelta(t, 2.0, order["quantity_producible"].(float64), 1e-9)
	assert.InDelta(t, 8.0, order["backorder_qty"].(float64), 1e-9)
}
