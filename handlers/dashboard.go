package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gogotex/admin-service/internal/product/repository"
	"github.com/gogotex/admin-service/pkg/logger"
	"github.com/gogotex/admin-service/pkg/middleware"
)

// Dashboard lists the catalogue for a signed-in admin. Mount it behind
// AuthMiddleware and RequireRole(admin).
func Dashboard(products repository.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := products.List(c.Request.Context())
		if err != nil {
			logger.Errorf("dashboard products: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list products"})
			return
		}
		claims := middleware.ClaimsFrom(c)
		c.JSON(http.StatusOK, gin.H{
			"user":     claims.Username,
			"products": list,
			"signOut":  "/admin/sign/out",
		})
	}
}

// Me returns the identity carried by the verified session.
func Me(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":        claims.Subject,
		"username":  claims.Username,
		"email":     claims.Email,
		"role":      claims.Role,
		"expiresAt": claims.ExpiresAt,
	})
}
