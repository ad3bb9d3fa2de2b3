package session

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// TokenFromRequest extracts a bearer session token, or "" when absent.
func TokenFromRequest(c *gin.Context) string {
	authz := c.GetHeader("Authorization")
	if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return ""
	}
	return strings.TrimSpace(authz[len("bearer "):])
}

// StaffRequired gates management routes. A request passes with either a
// matching X-Staff-Key header (when a staff key is configured) or a live
// teacher session token; everything else gets a 401 pointing at the teacher
// sign-in endpoint.
func StaffRequired(m *Manager, staffKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if staffKey != "" && c.GetHeader("X-Staff-Key") == staffKey {
			c.Set("staff", true)
			c.Next()
			return
		}
		token := TokenFromRequest(c)
		if token != "" {
			claims, err := m.Verify(c.Request.Context(), token)
			if err == nil {
				c.Set("teacher_id", claims.TeacherID)
				c.Set("teacher_name", claims.TeacherName)
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":   "teacher sign-in required",
			"sign_in": "/v1/teachers/sign-in",
		})
	}
}
