package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ZNilakshi/clothify/pkg/ctxmanage"
)

type addLineRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

func (h *Handler) AddCartLine(c *gin.Context) {
	traceID := ctxmanage.GetTraceIdOfRequest(c)
	customerID, ok := customerIDFromClaims(c)
	if !ok {
		return
	}

	var req addLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	snapshot, err := h.c.AddLine(c.Request.Context(), customerID, req.ProductID, req.Quantity)
	if err != nil {
		h.abortWithServiceError(c, traceID, err, "failed to add cart line")
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

type updateLineRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

func (h *Handler) UpdateCartLine(c *gin.Context) {
	traceID := ctxmanage.GetTraceIdOfRequest(c)
	customerID, ok := customerIDFromClaims(c)
	if !ok {
		return
	}
	lineID, ok := pathID(c, "lineID")
	if !ok {
		return
	}

	var req updateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	snapshot, err := h.c.UpdateLineQuantity(c.Request.Context(), customerID, lineID, req.Quantity)
	if err != nil {
		h.abortWithServiceError(c, traceID, err, "failed to update cart line")
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (h *Handler) RemoveCartLine(c *gin.Context) {
	traceID := ctxmanage.GetTraceIdOfRequest(c)
	customerID, ok := customerIDFromClaims(c)
	if !ok {
		return
	}
	lineID, ok := pathID(c, "lineID")
	if !ok {
		return
	}

	snapshot, err := h.c.RemoveLine(c.Request.Context(), customerID, lineID)
	if err != nil {
		h.abortWithServiceError(c, traceID, err, "failed to remove cart line")
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (h *Handler) ClearCart(c *gin.Context) {
	traceID := ctxmanage.GetTraceIdOfRequest(c)
	customerID, ok := customerIDFromClaims(c)
	if !ok {
		return
	}

	if err := h.c.Clear(c.Request.Context(), customerID); err != nil {
		h.abortWithServiceError(c, traceID, err, "failed to clear cart")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ViewCart(c *gin.Context) {
	traceID := ctxmanage.GetTraceIdOfRequest(c)
	customerID, ok := customerIDFromClaims(c)
	if !ok {
		return
	}

	snapshot, err := h.c.View(c.Request.Context(), customerID)
	if err != nil {
		h.abortWithServiceError(c, traceID, err, "failed to fetch cart")
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}
