package chat

import (
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"grocerbot/internal/session"
)

type Handler struct {
	service *Service
	logger  *log.Logger
}

func NewHandler(service *Service, logger *log.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type askRequest struct {
	UserPrompt string `json:"user_prompt"`
}

// POST /ai
func (h *Handler) Ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.UserPrompt) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": ErrEmptyPrompt.Error()})
		return
	}

	sess := session.Current(c)
	if sess == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "no session"})
		return
	}

	reply, err := h.service.Respond(c.Request.Context(), sess, req.UserPrompt)
	if err != nil {
		var se *StageError
		failedAt := StageFailed
		if errors.As(err, &se) {
			failedAt = se.Stage
		}
		h.logger.Error("chat turn failed", "stage", StageFailed, "failed_at", failedAt, "session", sess.ID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"response":     reply.Text,
		"session_id":   sess.ID,
		"cart_summary": sess.Cart.Summary(),
	})
}
