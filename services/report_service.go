package services

import (
	"context"
	"errors"
	"mime/multipart"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/soilq/soilq-api/models"
	"github.com/soilq/soilq-api/soil"
	"github.com/soilq/soilq-api/utils"
)

// ReportService handles lab report uploads and the values read from them
type ReportService struct {
	db      *gorm.DB
	storage ReportStorage
	now     func() time.Time
}

// NewReportService creates a report service that keeps files in storage
func NewReportService(db *gorm.DB, storage ReportStorage) *ReportService {
	return &ReportService{db: db, storage: storage, now: time.Now}
}

// Upload validates and stores a lab report, parses the OCR text sent with it
// and records both. The returned report carries its URL.
func (s *ReportService) Upload(ctx context.Context, userID uint, fileHeader *multipart.FileHeader, ocrText string) (*models.LabReport, error) {
	if err := utils.ValidateReportFile(fileHeader); err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			return nil, validationError(uploadErr.Code, uploadErr.Message)
		}
		return nil, validationError(CodeValidation, err.Error())
	}
	contentType, _ := utils.ReportContentType(fileHeader.Filename)

	key := utils.ReportKey(fileHeader.Filename, s.now())
	if err := s.storage.Store(ctx, key, fileHeader); err != nil {
		return nil, internalError("Failed to store lab report", err)
	}

	report := models.LabReport{
		UserID:      userID,
		Filename:    fileHeader.Filename,
		S3Key:       key,
		ContentType: contentType,
		Size:        fileHeader.Size,
	}
	report.SetValues(soil.ParseReport(ocrText))

	if err := s.db.WithContext(ctx).Create(&report).Error; err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			zap.L().Warn("failed to remove orphaned report", zap.String("key", key), zap.Error(delErr))
		}
		return nil, internalError("Failed to save lab report", err)
	}

	s.attachURL(ctx, &report)
	zap.L().Info("lab report uploaded",
		zap.Uint("report_id", report.ID),
		zap.Uint("user_id", userID),
		zap.Bool("complete", report.Values().Complete()),
	)
	return &report, nil
}

// Get returns a report owned by userID with its URL
func (s *ReportService) Get(ctx context.Context, id, userID uint) (*models.LabReport, error) {
	var report models.LabReport
	if err := s.db.WithContext(ctx).First(&report, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(CodeReportNotFound, "Lab report not found")
		}
		return nil, internalError("Failed to fetch lab report", err)
	}
	if report.UserID != userID {
		return nil, forbidden("You can only access your own lab reports")
	}
	s.attachURL(ctx, &report)
	return &report, nil
}

func (s *ReportService) attachURL(ctx context.Context, report *models.LabReport) {
	url, err := s.storage.URL(ctx, report.S3Key)
	if err != nil {
		// the record is still useful without a link
		zap.L().Warn("failed to build report URL", zap.String("key", report.S3Key), zap.Error(err))
		return
	}
	if url != "" {
		report.URL = &url
	}
}
