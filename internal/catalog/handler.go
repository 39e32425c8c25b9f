package catalog

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const Currency = "INR"

type Handler struct {
	catalog *Catalog
}

func NewHandler(c *Catalog) *Handler {
	return &Handler{catalog: c}
}

// GET /prices
func (h *Handler) Prices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"prices":   h.catalog,
		"currency": Currency,
	})
}

// GET /prices/lookup?item=
func (h *Handler) Lookup(c *gin.Context) {
	name := c.Query("item")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "item query parameter required"})
		return
	}

	m, ok := h.catalog.Lookup(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Item '" + name + "' not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "item": m, "currency": Currency})
}
