package shop

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"grocerbot/internal/cart"
	"grocerbot/internal/catalog"
	"grocerbot/internal/session"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type addRequest struct {
	ItemName string `json:"item_name" binding:"required"`
	Quantity *int   `json:"quantity" binding:"omitempty,min=1,max=1000"`
}

// GET /cart
func (h *Handler) GetCart(c *gin.Context) {
	sess, ok := current(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"session_id": sess.ID,
		"cart":       sess.Cart,
		"currency":   catalog.Currency,
	})
}

// POST /cart/add
func (h *Handler) Add(c *gin.Context) {
	sess, ok := current(c)
	if !ok {
		return
	}

	var req addRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "item_name required, " + cart.ErrInvalidQuantity.Error()})
		return
	}

	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	res, err := h.service.Add(sess, req.ItemName, qty)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": res.Message,
		"cart":    sess.Cart,
	})
}

// POST /cart/clear
func (h *Handler) Clear(c *gin.Context) {
	sess, ok := current(c)
	if !ok {
		return
	}

	res, err := h.service.Clear(sess)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": res.Message,
		"cart":    sess.Cart,
	})
}

// POST /cart/checkout
func (h *Handler) Checkout(c *gin.Context) {
	sess, ok := current(c)
	if !ok {
		return
	}

	order, err := h.service.Checkout(c.Request.Context(), sess)
	if err != nil {
		if errors.Is(err, ErrEmptyCart) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Cart is empty"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order placed",
		"order":   order,
	})
}

// GET /orders
func (h *Handler) Orders(c *gin.Context) {
	sess, ok := current(c)
	if !ok {
		return
	}

	orders, err := h.service.Orders(c.Request.Context(), sess.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	if orders == nil {
		orders = []*Order{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"session_id": sess.ID,
		"orders":     orders,
	})
}

func current(c *gin.Context) (*session.Session, bool) {
	sess := session.Current(c)
	if sess == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "no session"})
		return nil, false
	}
	return sess, true
}
