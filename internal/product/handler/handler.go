package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gogotex/admin-service/internal/product/repository"
	"github.com/gogotex/admin-service/pkg/logger"
)

// ListProducts writes the full catalogue as JSON.
func ListProducts(repo repository.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := repo.List(c.Request.Context())
		if err != nil {
			logger.Errorf("list products: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list products"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": list})
	}
}

// RegisterProductRoutes mounts the catalogue API on rg; callers attach auth.
func RegisterProductRoutes(rg *gin.RouterGroup, repo repository.Repository) {
	rg.GET("/products", ListProducts(repo))
}
