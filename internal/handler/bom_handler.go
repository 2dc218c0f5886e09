package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ridha-415/filaops-sub000/internal/repository"
	"github.com/ridha-415/filaops-sub000/internal/service"
)

type BOMHandler struct {
	svc *service.BOMService
}

func NewBOMHandler(svc *service.BOMService) *BOMHandler {
	return &BOMHandler{svc: svc}
}

// Create 创建BOM，?force_new=true时替换现有激活版本
func (h *BOMHandler) Create(c *gin.Context) {
	var req service.CreateBOMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	forceNew := c.Query("force_new") == "true"
	bom, err := h.svc.Create(c.Request.Context(), req, forceNew, currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, bom)
}

func (h *BOMHandler) Get(c *gin.Context) {
	bom, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, bom)
}

func (h *BOMHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	params := repository.BOMListParams{
		ProductID:  c.Query("product_id"),
		ActiveOnly: c.Query("active") == "true",
		Page:       page,
		Size:       size,
	}
	boms, total, err := h.svc.List(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"items": boms, "total": total, "page": page, "size": size})
}

// Versions 产品全部BOM版本（新版本在前）
func (h *BOMHandler) Versions(c *gin.Context) {
	boms, err := h.svc.ListVersions(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, boms)
}

// Active 产品当前激活BOM
func (h *BOMHandler) Active(c *gin.Context) {
	bom, err := h.svc.GetActiveByProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, bom)
}

func (h *BOMHandler) AddLine(c *gin.Context) {
	var req service.BOMLineInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	bom, err := h.svc.AddLine(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, bom)
}

func (h *BOMHandler) UpdateLine(c *gin.Context) {
	var req service.UpdateBOMLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	bom, err := h.svc.UpdateLine(c.Request.Context(), c.Param("id"), c.Param("line_id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, bom)
}

func (h *BOMHandler) DeleteLine(c *gin.Context) {
	bom, err := h.svc.DeleteLine(c.Request.Context(), c.Param("id"), c.Param("line_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, bom)
}

// Explode 多级展开，?quantity=N&location=L
func (h *BOMHandler) Explode(c *gin.Context) {
	quantity, _ := strconv.ParseFloat(c.DefaultQuery("quantity", "1"), 64)
	result, err := h.svc.Explode(c.Request.Context(), c.Param("id"), quantity, c.Query("location"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

// Rollup 成本卷积
func (h *BOMHandler) Rollup(c *gin.Context) {
	result, err := h.svc.Rollup(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

// Feasibility 库存可行性，?quantity=N&location=L
func (h *BOMHandler) Feasibility(c *gin.Context) {
	quantity, _ := strconv.ParseInt(c.DefaultQuery("quantity", "1"), 10, 64)
	result, err := h.svc.Feasibility(c.Request.Context(), c.Param("id"), quantity, c.Query("location"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}
