package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/soilq/soilq-api/catalog"
	"github.com/soilq/soilq-api/config"
	"github.com/soilq/soilq-api/services"
)

// GetProducts handles GET /api/v1/products - lists the shop catalog, optionally by category
func GetProducts(c *gin.Context) {
	products, err := catalog.New(config.GetDB()).List(c.Request.Context(), c.Query("category"))
	if err != nil {
		zap.L().Error("failed to list products", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    products,
		"count":   len(products),
	})
}

// GetProduct handles GET /api/v1/products/:id
func GetProduct(c *gin.Context) {
	product, err := catalog.New(config.GetDB()).Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondError(c, http.StatusNotFound, services.CodeProductNotFound, "Product not found")
			return
		}
		zap.L().Error("failed to fetch product", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch product")
		return
	}
	respondOK(c, http.StatusOK, product)
}
