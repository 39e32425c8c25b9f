package session

import "github.com/gin-gonic/gin"

const contextKey = "grocer.session"

// Attach binds s to the request.
func Attach(c *gin.Context, s *Session) {
	c.Set(contextKey, s)
}

// Current returns the session bound to the request, or nil.
func Current(c *gin.Context) *Session {
	v, ok := c.Get(contextKey)
	if !ok {
		return nil
	}
	s, _ := v.(*Session)
	return s
}
