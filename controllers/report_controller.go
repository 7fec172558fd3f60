package controllers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/soilq/soilq-api/config"
	"github.com/soilq/soilq-api/services"
	"github.com/soilq/soilq-api/utils"
)

// UploadReport handles POST /api/v1/reports - stores a lab report and reads
// soil values from the OCR text sent with it
func UploadReport(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "MISSING_FILE", "A report file is required in the 'file' field")
		return
	}

	svc := services.NewReportService(config.GetDB(), services.GetStorage())
	report, err := svc.Upload(c.Request.Context(), user.ID, fileHeader, c.PostForm("ocr_text"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	values := report.Values()
	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"data":     report,
		"prefill":  values,
		"complete": values.Complete(),
	})
}

// GetReport handles GET /api/v1/reports/:id - report metadata with a download URL
func GetReport(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	user, ok := currentUser(c)
	if !ok {
		return
	}

	report, err := services.NewReportService(config.GetDB(), services.GetStorage()).Get(c.Request.Context(), id, user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, report)
}

// GetUploadedReport handles GET /api/v1/uploads/:filename - serves reports kept on local disk
func GetUploadedReport(c *gin.Context) {
	filename := c.Param("filename")

	// Validate filename is not empty
	if filename == "" {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Filename is required")
		return
	}

	// Security: Prevent directory traversal attacks
	if strings.Contains(filename, "..") || strings.Contains(filename, "/") || strings.Contains(filename, "\\") {
		respondError(c, http.StatusBadRequest, "INVALID_FILENAME", "Invalid filename")
		return
	}

	contentType, ok := utils.ReportContentType(filename)
	if !ok {
		respondError(c, http.StatusBadRequest, "INVALID_FILE_TYPE", "Only PDF, PNG, JPG and JPEG reports are served")
		return
	}

	filePath := filepath.Join(utils.UploadDir, "reports", filename)
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		respondError(c, http.StatusNotFound, "FILE_NOT_FOUND", "Report not found")
		return
	}

	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "private, max-age=3600")
	c.File(filePath)
}
