package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flicky/aqua-storefront/internal/dto"
	"github.com/flicky/aqua-storefront/internal/middleware"
	"github.com/flicky/aqua-storefront/internal/service"
)

// CartHandler serves the cart of the browsing session named by X-Session-ID.
type CartHandler struct {
	svc *service.CartService
}

func NewCartHandler(svc *service.CartService) *CartHandler {
	return &CartHandler{svc: svc}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.GetCart(c.Request.Context(), middleware.GetSessionID(c)))
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cart, err := h.svc.AddItem(c.Request.Context(), middleware.GetSessionID(c), req.ProductID)
	if err != nil {
		writeCartError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cart)
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	var req dto.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cart, err := h.svc.UpdateItem(c.Request.Context(), middleware.GetSessionID(c), c.Param("id"), *req.Quantity)
	if err != nil {
		writeCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) DeleteItem(c *gin.Context) {
	cart, err := h.svc.DeleteItem(c.Request.Context(), middleware.GetSessionID(c), c.Param("id"))
	if err != nil {
		writeCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) Clear(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Clear(c.Request.Context(), middleware.GetSessionID(c)))
}

func writeCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
	case errors.Is(err, service.ErrCartItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "item not in cart"})
	case errors.Is(err, service.ErrOutOfStock):
		c.JSON(http.StatusConflict, gin.H{"error": "product is out of stock"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
