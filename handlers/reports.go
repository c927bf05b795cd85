package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ZNilakshi/clothify/pkg/ctxmanage"
)

func (h *Handler) LowStock(c *gin.Context) {
	traceID := ctxmanage.GetTraceIdOfRequest(c)

	levels, err := h.inv.LowStock(c.Request.Context())
	if err != nil {
		h.abortWithServiceError(c, traceID, err, "failed to fetch low stock levels")
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": levels})
}

func (h *Handler) SalesReport(c *gin.Context) {
	traceID := ctxmanage.GetTraceIdOfRequest(c)

	now := time.Now().UTC()
	from := now.AddDate(0, -1, 0)
	to := now
	var err error
	if v := c.Query("from"); v != "" {
		if from, err = time.Parse(time.RFC3339, v); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from must be RFC 3339"})
			return
		}
	}
	if v := c.Query("to"); v != "" {
		if to, err = time.Parse(time.RFC3339, v); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "to must be RFC 3339"})
			return
		}
	}
	if !from.Before(to) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from must precede to"})
		return
	}

	report, err := h.reports.SalesReport(c.Request.Context(), from, to)
	if err != nil {
		h.abortWithServiceError(c, traceID, err, "failed to build sales report")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) TopProducts(c *gin.Context) {
	traceID := ctxmanage.GetTraceIdOfRequest(c)

	limit := 10
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return
		}
		limit = n
	}

	top, err := h.reports.TopProducts(c.Request.Context(), limit)
	if err != nil {
		h.abortWithServiceError(c, traceID, err, "failed to rank products")
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": top})
}
