package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ridha-415/filaops-sub000/internal/engine"
	"github.com/ridha-415/filaops-sub000/internal/service"
)

// Handlers HTTP处理器集合
type Handlers struct {
	Product    *ProductHandler
	Inventory  *InventoryHandler
	BOM        *BOMHandler
	Routing    *RoutingHandler
	WorkCenter *WorkCenterHandler
	Production *ProductionHandler
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Product:    NewProductHandler(services.Product),
		Inventory:  NewInventoryHandler(services.Inventory),
		BOM:        NewBOMHandler(services.BOM),
		Routing:    NewRoutingHandler(services.Routing),
		WorkCenter: NewWorkCenterHandler(services.WorkCenter),
		Production: NewProductionHandler(services.Production),
	}
}

// respondError 按错误类型映射HTTP状态码与业务码
func respondError(c *gin.Context, err error) {
	var notFound *engine.NotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, gin.H{"code": 10002, "message": err.Error()})
		return
	}

	var invalidVersion *engine.InvalidVersionError
	if errors.As(err, &invalidVersion) {
		c.JSON(http.StatusConflict, gin.H{"code": 10004, "message": err.Error()})
		return
	}

	var cyclic *engine.CyclicBOMError
	var maxDepth *engine.MaxDepthExceededError
	var insufficient *engine.InsufficientInventoryError
	if errors.As(err, &cyclic) || errors.As(err, &maxDepth) || errors.As(err, &insufficient) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"code": 10004, "message": err.Error()})
		return
	}

	if errors.Is(err, service.ErrInvalidState) {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10004, "message": err.Error()})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": data})
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
}

// currentUser 取请求方标识（无认证体系，仅透传审计字段）
func currentUser(c *gin.Context) string {
	return c.GetHeader("X-User-ID")
}
