package services

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/soilq/soilq-api/models"
	"github.com/soilq/soilq-api/soil"
)

// AnalysisInput is a new soil analysis as submitted by the user
type AnalysisInput struct {
	Measurement soil.Measurement
	Location    string
	Notes       string
}

// AnalysisUpdate carries the fields a user changed. Nil fields are kept
type AnalysisUpdate struct {
	Nitrogen   *float64
	Phosphorus *float64
	Potassium  *float64
	PH         *float64
	Moisture   *float64
	Location   *string
	Notes      *string
}

// SoilService stores assessed soil analyses
type SoilService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSoilService creates a soil service backed by db
func NewSoilService(db *gorm.DB) *SoilService {
	return &SoilService{db: db, now: time.Now}
}

// ValidateMeasurement checks the ranges the engine itself does not enforce
func ValidateMeasurement(m soil.Measurement) error {
	values := []struct {
		name     string
		v        float64
		min, max float64
	}{
		{"nitrogen", m.Nitrogen, 0, math.Inf(1)},
		{"phosphorus", m.Phosphorus, 0, math.Inf(1)},
		{"potassium", m.Potassium, 0, math.Inf(1)},
		{"ph", m.PH, 0, 14},
		{"moisture", m.Moisture, 0, 100},
	}
	for _, f := range values {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return validationError(CodeValidation, f.name+" must be a finite number")
		}
		if f.v < f.min || f.v > f.max {
			if math.IsInf(f.max, 1) {
				return validationError(CodeValidation, f.name+" must not be negative")
			}
			return validationError(CodeValidation, f.name+" is out of range")
		}
	}
	return nil
}

// Create assesses the measurement and saves it to the user's history.
// Status, recommendations and crops always come from the engine.
func (s *SoilService) Create(ctx context.Context, userID uint, in AnalysisInput) (*models.SoilAnalysis, error) {
	if err := ValidateMeasurement(in.Measurement); err != nil {
		return nil, err
	}

	analysis := models.SoilAnalysis{
		UserID:   userID,
		Date:     s.now(),
		Location: in.Location,
		Notes:    in.Notes,
	}
	analysis.SetMeasurement(in.Measurement)
	analysis.ApplyAssessment(soil.Assess(in.Measurement))

	if err := s.db.WithContext(ctx).Create(&analysis).Error; err != nil {
		return nil, internalError("Failed to save soil analysis", err)
	}

	zap.L().Info("soil analysis saved",
		zap.Uint("analysis_id", analysis.ID),
		zap.Uint("user_id", userID),
		zap.String("status", string(analysis.Status)),
	)
	return &analysis, nil
}

// List returns the user's analyses, newest first
func (s *SoilService) List(ctx context.Context, userID uint) ([]models.SoilAnalysis, error) {
	analyses := []models.SoilAnalysis{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC, id DESC").
		Find(&analyses).Error
	if err != nil {
		return nil, internalError("Failed to fetch soil analyses", err)
	}
	return analyses, nil
}

// Get returns one analysis owned by userID
func (s *SoilService) Get(ctx context.Context, id, userID uint) (*models.SoilAnalysis, error) {
	var analysis models.SoilAnalysis
	if err := s.db.WithContext(ctx).First(&analysis, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(CodeAnalysisNotFound, "Soil analysis not found")
		}
		return nil, internalError("Failed to fetch soil analysis", err)
	}
	if analysis.UserID != userID {
		return nil, forbidden("You can only access your own soil analyses")
	}
	return &analysis, nil
}

// Update applies upd to an analysis. A changed measurement is assessed again.
func (s *SoilService) Update(ctx context.Context, id, userID uint, upd AnalysisUpdate) (*models.SoilAnalysis, error) {
	analysis, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	before := analysis.Measurement()
	m := before
	setIf(&m.Nitrogen, upd.Nitrogen)
	setIf(&m.Phosphorus, upd.Phosphorus)
	setIf(&m.Potassium, upd.Potassium)
	setIf(&m.PH, upd.PH)
	setIf(&m.Moisture, upd.Moisture)

	if m != before {
		if err := ValidateMeasurement(m); err != nil {
			return nil, err
		}
		analysis.SetMeasurement(m)
		analysis.ApplyAssessment(soil.Assess(m))
	}
	if upd.Location != nil {
		analysis.Location = *upd.Location
	}
	if upd.Notes != nil {
		analysis.Notes = *upd.Notes
	}

	if err := s.db.WithContext(ctx).Save(analysis).Error; err != nil {
		return nil, internalError("Failed to update soil analysis", err)
	}
	return analysis, nil
}

// Delete removes an analysis owned by userID
func (s *SoilService) Delete(ctx context.Context, id, userID uint) error {
	analysis, err := s.Get(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(analysis).Error; err != nil {
		return internalError("Failed to delete soil analysis", err)
	}
	zap.L().Info("soil analysis deleted", zap.Uint("analysis_id", id), zap.Uint("user_id", userID))
	return nil
}

func setIf(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
