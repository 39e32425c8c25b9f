package middleware

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"grocerbot/internal/metrics"
	"grocerbot/internal/session"
)

// Session binds the caller's session to the request, creating one when the
// cookie is missing, invalid or points at an expired session. Requests for
// the same session run one at a time. The session is saved after the
// handler unless the response is a server error.
func Session(manager *session.Manager, cookies *session.Cookies, logger *log.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		id, _ := cookies.Read(c)
		if id != "" {
			unlock := manager.Lock(id)
			defer unlock()
		}

		sess, created, err := manager.Open(ctx, id)
		if err != nil {
			logger.Error("open session", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "session unavailable"})
			return
		}
		if created {
			m.SessionCreated()
		}

		// refresh the sliding expiry on every request
		if err := cookies.Write(c, sess.ID); err != nil {
			logger.Error("write session cookie", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "session unavailable"})
			return
		}

		session.Attach(c, sess)
		c.Next()

		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn("request failed, session not saved", "session", sess.ID, "status", c.Writer.Status())
			return
		}

		current := session.Current(c)
		if current == nil {
			return
		}
		if err := manager.Save(ctx, current); err != nil {
			logger.Error("save session", "session", current.ID, "err", err)
		}
	}
}
