package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// MaxFileSize is 10MB in bytes
	MaxFileSize = 10 * 1024 * 1024
)

// allowedReportTypes maps accepted lab report extensions to content types
var allowedReportTypes = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

var (
	// UploadDir is the directory where reports are stored when no S3 bucket
	// is configured. Can be overridden for testing
	UploadDir = "./uploads"
)

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// ValidateReportFile validates the uploaded lab report format and size
func ValidateReportFile(fileHeader *multipart.FileHeader) error {
	// Check file size
	if fileHeader.Size > MaxFileSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxFileSize/(1024*1024)),
		}
	}

	if fileHeader.Size == 0 {
		return &FileUploadError{
			Code:    "EMPTY_FILE",
			Message: "Uploaded file is empty",
		}
	}

	// Check file extension
	if _, ok := ReportContentType(fileHeader.Filename); !ok {
		return &FileUploadError{
			Code:    "INVALID_FILE_FORMAT",
			Message: "Only PDF, PNG, JPG and JPEG files are allowed",
		}
	}

	return nil
}

// ReportContentType returns the content type for an accepted report filename
func ReportContentType(filename string) (string, bool) {
	ct, ok := allowedReportTypes[strings.ToLower(filepath.Ext(filename))]
	return ct, ok
}

// ReportKey builds the storage key for a report: reports/{timestamp}_{filename}
func ReportKey(filename string, now time.Time) string {
	return fmt.Sprintf("reports/%d_%s", now.Unix(), filepath.Base(filename))
}

// SaveUploadedFile saves the uploaded file under uploadDir using key as the
// relative path. Returns the key
func SaveUploadedFile(fileHeader *multipart.FileHeader, uploadDir, key string) (saved string, err error) {
	fullPath := filepath.Join(uploadDir, filepath.FromSlash(key))

	// Create the target directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	// Open the uploaded file
	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer func() {
		if closeErr := src.Close(); closeErr != nil {
			zap.L().Warn("failed to close source file", zap.Error(closeErr))
		}
	}()

	// Create the destination file
	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer func() {
		if closeErr := dst.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close destination file: %w", closeErr)
		}
	}()

	// Copy the file
	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return key, nil
}

// GetUploadURL returns the URL path for a locally stored report
func GetUploadURL(key string) string {
	if key == "" {
		return ""
	}
	return fmt.Sprintf("/api/v1/uploads/%s", filepath.Base(key))
}
