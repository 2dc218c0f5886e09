package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ridha-415/filaops-sub000/internal/repository"
	"github.com/ridha-415/filaops-sub000/internal/service"
)

type RoutingHandler struct {
	svc *service.RoutingService
}

func NewRoutingHandler(svc *service.RoutingService) *RoutingHandler {
	return &RoutingHandler{svc: svc}
}

func (h *RoutingHandler) Create(c *gin.Context) {
	var req service.CreateRoutingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	routing, err := h.svc.Create(c.Request.Context(), req, currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, routing)
}

func (h *RoutingHandler) Get(c *gin.Context) {
	routing, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, routing)
}

func (h *RoutingHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	params := repository.RoutingListParams{
		ProductID:     c.Query("product_id"),
		TemplatesOnly: c.Query("templates") == "true",
		ActiveOnly:    c.Query("active") == "true",
		Page:          page,
		Size:          size,
	}
	routings, total, err := h.svc.List(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"items": routings, "total": total, "page": page, "size": size})
}

// Active 产品当前激活工艺路线
func (h *RoutingHandler) Active(c *gin.Context) {
	routing, err := h.svc.GetActiveByProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, routing)
}

// ApplyTemplate 从模板生成产品路线
func (h *RoutingHandler) ApplyTemplate(c *gin.Context) {
	var req service.ApplyTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	routing, err := h.svc.ApplyTemplate(c.Request.Context(), req, currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, routing)
}

func (h *RoutingHandler) AddOperation(c *gin.Context) {
	var req service.OperationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	routing, err := h.svc.AddOperation(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, routing)
}

func (h *RoutingHandler) UpdateOperation(c *gin.Context) {
	var req service.UpdateOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	routing, err := h.svc.UpdateOperation(c.Request.Context(), c.Param("id"), c.Param("op_id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, routing)
}

func (h *RoutingHandler) DeleteOperation(c *gin.Context) {
	routing, err := h.svc.DeleteOperation(c.Request.Context(), c.Param("id"), c.Param("op_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, routing)
}
