package handlers

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ZNilakshi/clothify/internal/auth"
	"github.com/ZNilakshi/clothify/internal/cart"
	"github.com/ZNilakshi/clothify/internal/orders"
	"github.com/ZNilakshi/clothify/internal/repository"
	"github.com/ZNilakshi/clothify/middleware"
	"github.com/ZNilakshi/clothify/pkg/metrics"
)

type Handler struct {
	o       *orders.Service
	c       *cart.Service
	inv     repository.InventoryRepository
	reports repository.ReportRepository
	metrics *metrics.ServerMetrics
}

func NewHandler(o *orders.Service, c *cart.Service, inv repository.InventoryRepository,
	reports repository.ReportRepository, m *metrics.ServerMetrics) *Handler {
	return &Handler{
		o:       o,
		c:       c,
		inv:     inv,
		reports: reports,
		metrics: m,
	}
}

func API(endpointPrefix string, k *auth.Keys, o *orders.Service, c *cart.Service,
	inv repository.InventoryRepository, reports repository.ReportRepository,
	m *metrics.ServerMetrics) *gin.Engine {
	r := gin.New()
	mode := os.Getenv("GIN_MODE")
	if mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	mid, err := middleware.NewMid(k)
	if err != nil {
		panic(err)
	}

	h := NewHandler(o, c, inv, reports, m)
	r.Use(middleware.Logger(), gin.Recovery())
	if m != nil {
		r.Use(h.countRequests())
	}

	r.GET("/ping", HealthCheck)
	if m != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	v1 := r.Group(endpointPrefix)
	{
		v1.Use(mid.Authentication())

		v1.GET("/cart", h.ViewCart)
		v1.POST("/cart/items", h.AddCartLine)
		v1.PATCH("/cart/items/:lineID", h.UpdateCartLine)
		v1.DELETE("/cart/items/:lineID", h.RemoveCartLine)
		v1.DELETE("/cart", h.ClearCart)

		v1.POST("/orders/checkout", h.Checkout)
		v1.GET("/orders", h.ListOrders)
		v1.GET("/orders/:orderID", h.GetOrder)
		v1.POST("/orders/:orderID/cancel", h.CancelOrder)

		v1.GET("/admin/orders", mid.Authorize(h.ListAllOrders, auth.RoleAdmin))
		v1.GET("/admin/customers/:customerID/orders", mid.Authorize(h.ListOrdersOfCustomer, auth.RoleAdmin))
		v1.PATCH("/orders/:orderID/status", mid.Authorize(h.UpdateOrderStatus, auth.RoleAdmin))
		v1.POST("/orders/:orderID/payment", mid.Authorize(h.ProcessPayment, auth.RoleAdmin))

		v1.GET("/inventory/low-stock", mid.Authorize(h.LowStock, auth.RoleAdmin))
		v1.GET("/reports/sales", mid.Authorize(h.SalesReport, auth.RoleAdmin))
		v1.GET("/reports/top-products", mid.Authorize(h.TopProducts, auth.RoleAdmin))
	}
	return r
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

func (h *Handler) countRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		handler := c.FullPath()
		if handler == "" {
			handler = "unmatched"
		}
		h.metrics.Requests.WithLabelValues(handler, strconv.Itoa(c.Writer.Status())).Inc()
		h.metrics.LatencyMS.WithLabelValues(handler).Observe(float64(time.Since(start).Milliseconds()))
	}
}
