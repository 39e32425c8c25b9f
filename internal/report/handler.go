package report

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"grocerbot/internal/session"
)

type Handler struct {
	generator *Generator
}

func NewHandler(g *Generator) *Handler {
	return &Handler{generator: g}
}

// GET /download-pdf
func (h *Handler) Download(c *gin.Context) {
	sess := session.Current(c)
	if sess == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "no session"})
		return
	}

	res, err := h.generator.Generate(c.Request.Context(), sess)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	if res.URL != "" {
		c.Header("X-Report-URL", res.URL)
	}
	c.Header("Content-Type", "application/pdf")
	c.FileAttachment(res.Path, res.DownloadName)
}
