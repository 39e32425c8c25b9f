package session

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	manager *Manager
	cookies *Cookies
}

func NewHandler(manager *Manager, cookies *Cookies) *Handler {
	return &Handler{manager: manager, cookies: cookies}
}

// GET /history
func (h *Handler) History(c *gin.Context) {
	s := Current(c)
	if s == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "no session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"session_id": s.ID,
		"history":    s.History,
	})
}

// POST /session/reset
func (h *Handler) Reset(c *gin.Context) {
	fresh, err := h.manager.Reset(c.Request.Context(), Current(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	Attach(c, fresh)
	if err := h.cookies.Write(c, fresh.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Session reset",
		"session_id": fresh.ID,
	})
}

// GET /session/info
func (h *Handler) Info(c *gin.Context) {
	s := Current(c)
	if s == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "no session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"session_id":    s.ID,
		"created_at":    s.CreatedAt,
		"last_seen":     s.LastSeen,
		"expires_at":    s.LastSeen.Add(h.cookies.TTL).Format(time.RFC3339),
		"message_count": len(s.History),
		"cart_items":    len(s.Cart.Items),
		"item_count":    s.Cart.ItemCount,
		"subtotal":      s.Cart.Subtotal,
	})
}
