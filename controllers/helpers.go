package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/soilq/soilq-api/config"
	"github.com/soilq/soilq-api/middleware"
	"github.com/soilq/soilq-api/models"
	"github.com/soilq/soilq-api/services"
)

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func respondValidation(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"details": err.Error(),
		},
	})
}

// statusForKind maps a service error kind onto its HTTP status
func statusForKind(k services.Kind) int {
	switch k {
	case services.KindValidation, services.KindBusinessRule:
		return http.StatusBadRequest
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindForbidden:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// respondServiceError writes err in the error envelope. Internal causes are
// logged, never returned to the client.
func respondServiceError(c *gin.Context, err error) {
	se := services.AsServiceError(err)
	status := statusForKind(se.Kind)
	if status == http.StatusInternalServerError {
		zap.L().Error(se.Message,
			zap.String("path", c.FullPath()),
			zap.Error(se.Err),
		)
	}
	respondError(c, status, se.Code, se.Message)
}

// currentUser loads the profile of the signed-in user. On failure the
// response has been written and ok is false.
func currentUser(c *gin.Context) (user *models.User, ok bool) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return nil, false
	}

	var u models.User
	if err := config.GetDB().WithContext(c.Request.Context()).Where("auth0_id = ?", auth0ID).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, services.CodeUserNotFound, "User profile not found. Please create a profile first.")
			return nil, false
		}
		zap.L().Error("failed to load user", zap.String("auth0_id", auth0ID), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load user profile")
		return nil, false
	}
	return &u, true
}

// parseID reads a positive numeric path parameter
func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+param)
		return 0, false
	}
	return uint(id), true
}

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}
