package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ragforge/pdfrag/types"
	"github.com/ragforge/pdfrag/utils"
)

const AdminContextKey = "admin"

// AdminAuthMiddleware guards the admin route group with a Bearer token
// signed by JWT_SECRET_ADMIN.
func AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, types.DataResponse{
				Status:  types.StatusFail,
				Message: "Authorization header is required",
			})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, types.DataResponse{
				Status:  types.StatusFail,
				Message: "Authorization header format must be Bearer {token}",
			})
			return
		}

		claims, err := utils.ParseAdminToken(parts[1])
		if err != nil || claims.Role != "admin" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, types.DataResponse{
				Status:  types.StatusFail,
				Message: "Invalid admin token",
			})
			return
		}

		c.Set(AdminContextKey, claims)
		c.Next()
	}
}
