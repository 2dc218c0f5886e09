package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ridha-415/filaops-sub000/internal/repository"
	"github.com/ridha-415/filaops-sub000/internal/service"
)

type InventoryHandler struct {
	svc *service.InventoryService
}

func NewInventoryHandler(svc *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// Set 设置产品在库位的库存
func (h *InventoryHandler) Set(c *gin.Context) {
	var req service.SetInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	inv, err := h.svc.Set(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, inv)
}

// Available 查询产品可用量（location为空汇总全部库位）
func (h *InventoryHandler) Available(c *gin.Context) {
	productID := c.Param("product_id")
	location := c.Query("location")
	available, err := h.svc.GetAvailable(c.Request.Context(), productID, location)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"product_id": productID, "location": location, "available": available})
}

func (h *InventoryHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	params := repository.InventoryListParams{
		ProductID: c.Query("product_id"),
		Location:  c.Query("location"),
		Page:      page,
		Size:      size,
	}
	records, total, err := h.svc.List(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"items": records, "total": total, "page": page, "size": size})
}
