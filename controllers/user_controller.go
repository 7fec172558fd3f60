package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/soilq/soilq-api/config"
	"github.com/soilq/soilq-api/middleware"
	"github.com/soilq/soilq-api/models"
	"github.com/soilq/soilq-api/services"
)

// CreateUserRequest is the optional body of POST /users
type CreateUserRequest struct {
	Language string `json:"language" binding:"omitempty,oneof=en hi te"`
}

// UpdateUserRequest represents the request body for updating a user profile
type UpdateUserRequest struct {
	Name     string `json:"name" binding:"omitempty"`
	Email    string `json:"email" binding:"omitempty,email"`
	Language string `json:"language" binding:"omitempty,oneof=en hi te"`
}

var (
	supportedLanguages = []string{models.LanguageEnglish, models.LanguageHindi, models.LanguageTelugu}
	languageMatcher    = language.NewMatcher([]language.Tag{language.English, language.Hindi, language.Telugu})
)

// preferredLanguage picks the profile language from the Accept-Language
// header, then the Auth0 locale, defaulting to English
func preferredLanguage(acceptLanguage, locale string) string {
	tags, _, _ := language.ParseAcceptLanguage(acceptLanguage)
	if locale != "" {
		if tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-")); err == nil {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		return models.LanguageEnglish
	}
	_, idx, confidence := languageMatcher.Match(tags...)
	if confidence == language.No {
		return models.LanguageEnglish
	}
	return supportedLanguages[idx]
}

// CreateUser handles POST /api/v1/users - creates a new user from Auth0 userinfo
// This endpoint requires authentication and fetches user data from Auth0's /userinfo endpoint
func CreateUser(c *gin.Context) {
	// Get the Auth0 user ID from the validated JWT
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user ID from token")
		return
	}

	// Get the access token to call Auth0's /userinfo endpoint
	accessToken, err := middleware.GetAccessToken(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "MISSING_TOKEN", "Access token not found")
		return
	}

	var req CreateUserRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidation(c, err)
			return
		}
	}

	// Fetch user info from Auth0
	auth0Service := services.NewAuth0Service(config.GetConfig())
	userInfo, err := auth0Service.GetUserInfo(c.Request.Context(), accessToken)
	if err != nil {
		zap.L().Warn("userinfo lookup failed", zap.String("auth0_id", auth0ID), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "AUTH0_ERROR", "Failed to fetch user information from Auth0")
		return
	}

	// Validate that required fields are present
	if userInfo.Email == "" {
		respondError(c, http.StatusBadRequest, "MISSING_EMAIL", "Email not provided by Auth0")
		return
	}
	if userInfo.Name == "" {
		respondError(c, http.StatusBadRequest, "MISSING_NAME", "Name not provided by Auth0")
		return
	}

	lang := req.Language
	if lang == "" {
		lang = preferredLanguage(c.GetHeader("Accept-Language"), userInfo.Locale)
	}

	user := models.User{
		Auth0ID:  auth0ID,
		Name:     userInfo.Name,
		Email:    userInfo.Email,
		Language: lang,
	}

	db := config.GetDB()
	if err := db.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			respondError(c, http.StatusConflict, "USER_EXISTS", "A user with this Auth0 ID or email already exists")
			return
		}
		zap.L().Error("failed to create user", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create user")
		return
	}

	zap.L().Info("user created", zap.Uint("user_id", user.ID), zap.String("language", user.Language))
	respondOK(c, http.StatusCreated, user)
}

// GetMyProfile handles GET /api/v1/users/me - gets current user's profile
func GetMyProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	respondOK(c, http.StatusOK, user)
}

// UpdateMyProfile handles PUT /api/v1/users/me - updates current user's profile
func UpdateMyProfile(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	user, ok := currentUser(c)
	if !ok {
		return
	}

	// Update fields if provided
	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.Language != "" {
		updates["language"] = req.Language
	}

	// If no fields to update, return current user
	if len(updates) == 0 {
		respondOK(c, http.StatusOK, user)
		return
	}

	db := config.GetDB().WithContext(c.Request.Context())
	if err := db.Model(user).Updates(updates).Error; err != nil {
		if isUniqueViolation(err) {
			respondError(c, http.StatusConflict, "EMAIL_EXISTS", "A user with this email already exists")
			return
		}
		zap.L().Error("failed to update user", zap.Uint("user_id", user.ID), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update user profile")
		return
	}

	// Fetch updated user to return
	if err := db.First(user, user.ID).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch updated profile")
		return
	}

	respondOK(c, http.StatusOK, user)
}

// isUniqueViolation works with both PostgreSQL and SQLite messages
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}
