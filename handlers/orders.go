package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ZNilakshi/clothify/internal/auth"
	"github.com/ZNilakshi/clothify/internal/orders"
	"github.com/ZNilakshi/clothify/internal/repository"
	"github.com/ZNilakshi/clothify/pkg/ctxmanage"
	"github.com/ZNilakshi/clothify/pkg/logkey"
)

type checkoutRequest struct {
	CityID         *int64 `json:"city_id"`
	PaymentMethod  string `json:"payment_method" binding:"required"`
	DeliveryMethod string `json:"delivery_method" binding:"required"`
	ContactEmail   string `json:"contact_email"`
	ContactPhone   string `json:"contact_phone"`
}

func (h *Handler) Checkout(c *gin.Context) {
	traceID := ctxmanage.GetTraceIdOfRequest(c)
	customerID, ok := customerIDFromClaims(c)
	if !ok {
		return
	}

	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("invalid checkout payload", slog.String(logkey.TraceID, traceID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	order, err := h.o.Checkout(c.Request.Context(), orders.CheckoutInput{
		CustomerID:     customerID,
		CityID:         req.CityID,
		PaymentMethod:  req.PaymentMethod,
		DeliveryMethod: req.DeliveryMethod,
		ContactEmail:   req.ContactEmail,
		ContactPhone:   req.ContactPhone,
	})
	if err != nil {
		if h.metrics != nil {
			h.metrics.Checkouts.WithLabelValues("failure").Inc()
		}
		h.abortWithServiceError(c, traceID, err, "checkout failed")
		return
	}
	if h.metrics != nil {
		h.metrics.Checkouts.WithLabelValues("success").Inc()
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) GetOrder(c *gin.Context) {
	traceID := ctxmanage.GetTraceIdOfRequest(c)
	customerID, ok := customerIDFromClaims(c)
	if !ok {
		return
	}

	order, err := h.o.GetOrder(c.Request.Context(), c.Param("orderID"))
	if err != nil {
		h.abortWithServiceError(c, traceID, err, "failed to fetch order")
		return
	}
	claims := claimsOf(c)
	if order.CustomerID != customerID && !claims.HasRole(auth.RoleAdmin) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) ListOrders(c *gin.Context) {
	traceID := ctxmanage.GetTraceIdOfRequest(c)
	customerID, ok := customerIDFromClaims(c)
	if !ok {
		return
	}

	list, err := h.o.ListOrdersByCustomer(c.Request.Context(), customerID)
	if err != nil {
		h.abortWithServiceError(c, traceID, err, "failed to list orders")
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list})
}

func (h *Handler) ListOrdersOfCustomer(c *gin.Context) {
	traceID := ctxmanage.GetTraceIdOfRequest(c)
	customerID, ok := pathID(c, "customerID")
	if !ok {
		return
	}

	list, err := h.o.ListOrdersByCustomer(c.Request.Context(), customerID)
	if err != nil {
		h.abortWithServiceError(c, traceID, err, "failed to list orders")
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list})
}

func (h *Handler) ListAllOrders(c *gin.Context) {
	traceID := ctxmanage.GetTraceIdOfRequest(c)

	list, err := h.o.ListAllOrders(c.Request.Context())
	if err != nil {
		h.abortWithServiceError(c, traceID, err, "failed to list orders")
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list})
}

type statusUpdateRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	traceID := ctxmanage.GetTraceIdOfRequest(c)

	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	order, err := h.o.UpdateStatus(c.Request.Context(), c.Param("orderID"), req.Status)
	if err != nil {
		h.abortWithServiceError(c, traceID, err, "status update failed")
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) CancelOrder(c *gin.Context) {
	traceID := ctxmanage.GetTraceIdOfRequest(c)
	customerID, ok := customerIDFromClaims(c)
	if !ok {
		return
	}

	existing, err := h.o.GetOrder(c.Request.Context(), c.Param("orderID"))
	if err != nil {
		h.abortWithServiceError(c, traceID, err, "failed to fetch order")
		return
	}
	claims := claimsOf(c)
	if existing.CustomerID != customerID && !claims.HasRole(auth.RoleAdmin) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}

	order, err := h.o.Cancel(c.Request.Context(), c.Param("orderID"))
	if err != nil {
		h.abortWithServiceError(c, traceID, err, "cancellation failed")
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) ProcessPayment(c *gin.Context) {
	traceID := ctxmanage.GetTraceIdOfRequest(c)

	order, err := h.o.ProcessPayment(c.Request.Context(), c.Param("orderID"))
	if err != nil {
		h.abortWithServiceError(c, traceID, err, "payment processing failed")
		return
	}
	c.JSON(http.StatusOK, order)
}

// abortWithServiceError translates service and repository errors into HTTP
// responses. Unrecognized errors stay opaque to the caller.
func (h *Handler) abortWithServiceError(c *gin.Context, traceID string, err error, msg string) {
	var stockErr *repository.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"error":      "insufficient stock",
			"product_id": stockErr.ProductID,
			"product":    stockErr.ProductName,
			"requested":  stockErr.Requested,
			"available":  stockErr.Available,
		})
	case errors.Is(err, repository.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "resource not found"})
	case errors.Is(err, orders.ErrBusinessRule):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		slog.Error(msg, slog.String(logkey.TraceID, traceID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

func claimsOf(c *gin.Context) auth.Claims {
	claims, _ := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	return claims
}

func customerIDFromClaims(c *gin.Context) (int64, bool) {
	traceID := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	if !ok {
		slog.Error("claims not found", slog.String(logkey.TraceID, traceID))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	customerID, err := claims.CustomerID()
	if err != nil {
		slog.Error("invalid subject claim", slog.String(logkey.TraceID, traceID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	return customerID, true
}
