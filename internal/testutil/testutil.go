package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/ridha-415/filaops-sub000/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an isolated in-memory sqlite database with all tables migrated.
// Each test gets its own database; nothing to clean up.
var testDBSeq atomic.Int64

func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared-cache DSN keeps every pool connection on the same
	// in-memory database; a bare ":memory:" gives each connection its own.
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := entity.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	})

	return db
}

// SetupRouter creates a gin test router
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// DoRequest executes an HTTP request against the test router
func DoRequest(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON response body into a map
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// SeedProduct creates a product row
func SeedProduct(t *testing.T, db *gorm.DB, id, sku, name string, isRawMaterial bool, standardCost float64) *entity.Product {
	t.Helper()
	p := &entity.Product{
		ID:            id,
		SKU:           sku,
		Name:          name,
		Unit:          "pcs",
		IsRawMaterial: isRawMaterial,
		StandardCost:  standardCost,
		Status:        entity.ProductStatusActive,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("Failed to seed product: %v", err)
	}
	return p
}

// SeedInventory creates an inventory row with available quantity
func SeedInventory(t *testing.T, db *gorm.DB, id, productID, location string, available float64) *entity.Inventory {
	t.Helper()
	inv := &entity.Inventory{
		ID:           id,
		ProductID:    productID,
		Location:     location,
		Quantity:     available,
		AvailableQty: available,
		Unit:         "pcs",
	}
	if err := db.Create(inv).Error; err != nil {
		t.Fatalf("Failed to seed inventory: %v", err)
	}
	return inv
}

// SeedWorkCenter creates a work center row with hourly rates
func SeedWorkCenter(t *testing.T, db *gorm.DB, id, code string, machine, labor, overhead float64) *entity.WorkCenter {
	t.Helper()
	wc := &entity.WorkCenter{
		ID:                  id,
		Code:                code,
		Name:                "Center " + code,
		CenterType:          entity.WorkCenterTypeMachine,
		CapacityHoursPerDay: 8,
		MachineRatePerHour:  machine,
		LaborRatePerHour:    labor,
		OverheadRatePerHour: overhead,
		Status:              "active",
	}
	if err := db.Create(wc).Error; err != nil {
		t.Fatalf("Failed to seed work center: %v", err)
	}
	return wc
}
