package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stockops/inventory-service/internal/core/domain"
	"github.com/stockops/inventory-service/internal/core/service"
	"github.com/stockops/inventory-service/internal/port"
)

type HTTPHandler struct {
	svc    *service.InventoryService
	ledger port.LedgerRepository
	cache  port.CacheRepository
}

func NewHTTPHandler(svc *service.InventoryService, ledger port.LedgerRepository, cache port.CacheRepository) *HTTPHandler {
	return &HTTPHandler{svc: svc, ledger: ledger, cache: cache}
}

// Register mounts all API routes.
func (h *HTTPHandler) Register(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.GET("/ready", h.Ready)

	v1 := e.Group("/api/v1/inventory")
	v1.GET("", h.List)
	v1.GET("/alerts", h.LowStock)
	v1.GET("/:sku", h.GetBySKU)
	v1.POST("/reserve", h.Reserve)
	v1.POST("/release", h.Release)
	v1.POST("/adjust", h.Adjust)
}

type ReserveRequest struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
	OrderID  string `json:"order_id"`
}

type ReleaseRequest struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
	OrderID  string `json:"order_id"`
}

type AdjustRequest struct {
	SKU    string `json:"sku"`
	Delta  int    `json:"delta"`
	Reason string `json:"reason"`
}

type ReleaseResponse struct {
	Status   string `json:"status"`
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

type ListResponse struct {
	Items   []domain.InventoryItem `json:"items"`
	Total   int64                  `json:"total"`
	Page    int                    `json:"page"`
	PerPage int                    `json:"per_page"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Available *int   `json:"available,omitempty"`
	Requested *int   `json:"requested,omitempty"`
}

func (h *HTTPHandler) Reserve(c echo.Context) error {
	var req ReserveRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.SKU == "" || req.Quantity <= 0 {
		return badRequest(c, "sku is required and quantity must be positive")
	}

	res, err := h.svc.Reserve(c.Request().Context(), req.SKU, req.Quantity, req.OrderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *HTTPHandler) Release(c echo.Context) error {
	var req ReleaseRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.SKU == "" || req.Quantity <= 0 {
		return badRequest(c, "sku is required and quantity must be positive")
	}

	if err := h.svc.Release(c.Request().Context(), req.SKU, req.Quantity, req.OrderID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, ReleaseResponse{
		Status:   "released",
		SKU:      req.SKU,
		Quantity: req.Quantity,
	})
}

func (h *HTTPHandler) Adjust(c echo.Context) error {
	var req AdjustRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.SKU == "" || req.Delta == 0 {
		return badRequest(c, "sku is required and delta must be non-zero")
	}

	item, err := h.svc.Adjust(c.Request().Context(), req.SKU, req.Delta, req.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *HTTPHandler) GetBySKU(c echo.Context) error {
	item, err := h.svc.GetBySKU(c.Request().Context(), c.Param("sku"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *HTTPHandler) List(c echo.Context) error {
	var params struct {
		Page    int `query:"page"`
		PerPage int `query:"per_page"`
	}
	if err := c.Bind(&params); err != nil {
		return badRequest(c, "invalid query parameters")
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PerPage < 1 {
		params.PerPage = 20
	}
	if params.PerPage > 100 {
		params.PerPage = 100
	}

	items, total, err := h.svc.List(c.Request().Context(), params.Page, params.PerPage)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, ListResponse{
		Items:   items,
		Total:   total,
		Page:    params.Page,
		PerPage: params.PerPage,
	})
}

func (h *HTTPHandler) LowStock(c echo.Context) error {
	alerts, err := h.svc.LowStock(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	if alerts == nil {
		alerts = []domain.LowStockAlert{}
	}
	return c.JSON(http.StatusOK, alerts)
}

func (h *HTTPHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "inventory-service",
	})
}

func (h *HTTPHandler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	dbOK := h.ledger.Ping(ctx) == nil
	// A disabled cache keeps the service ready; a configured one must answer.
	cacheOK := h.cache == nil || h.cache.Ping(ctx) == nil

	status := "ready"
	code := http.StatusOK
	if !dbOK || !cacheOK {
		status = "not_ready"
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, map[string]any{
		"status": status,
		"checks": map[string]bool{
			"database": dbOK,
			"cache":    cacheOK,
		},
	})
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "BAD_REQUEST", Message: message})
}

func writeError(c echo.Context, err error) error {
	var insufficient *domain.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		return c.JSON(http.StatusConflict, ErrorResponse{
			Error:     "INSUFFICIENT_STOCK",
			Message:   insufficient.Error(),
			Available: &insufficient.Available,
			Requested: &insufficient.Requested,
		})
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "NOT_FOUND",
			Message: "sku not found",
		})
	case errors.Is(err, domain.ErrNothingToRelease):
		return c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "NOTHING_TO_RELEASE",
			Message: "sku not found or insufficient reserved quantity",
		})
	default:
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "STORAGE_ERROR",
			Message: "a storage error occurred",
		})
	}
}
