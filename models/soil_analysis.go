package models

import (
	"time"

	"github.com/soilq/soilq-api/soil"
)

// SoilAnalysis is one saved assessment in a user's history
type SoilAnalysis struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	UserID          uint        `gorm:"not null;index" json:"user_id"`
	Nitrogen        float64     `gorm:"not null" json:"nitrogen"`
	Phosphorus      float64     `gorm:"not null" json:"phosphorus"`
	Potassium       float64     `gorm:"not null" json:"potassium"`
	PH              float64     `gorm:"column:ph;not null" json:"ph"`
	Moisture        float64     `gorm:"not null" json:"moisture"`
	Status          soil.Status `gorm:"not null" json:"status"`
	Recommendations []string    `gorm:"serializer:json" json:"recommendations"`
	CropSuggestions []string    `gorm:"serializer:json" json:"crop_suggestions"`
	Date            time.Time   `gorm:"not null;index" json:"date"`
	Location        string      `json:"location"`
	Notes           string      `json:"notes"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// TableName specifies the table name for the SoilAnalysis model
func (SoilAnalysis) TableName() string {
	return "soil_analyses"
}

// Measurement returns the stored inputs in engine form
func (a *SoilAnalysis) Measurement() soil.Measurement {
	return soil.Measurement{
		Nitrogen:   a.Nitrogen,
		Phosphorus: a.Phosphorus,
		Potassium:  a.Potassium,
		PH:         a.PH,
		Moisture:   a.Moisture,
	}
}

// SetMeasurement copies m into the analysis inputs
func (a *SoilAnalysis) SetMeasurement(m soil.Measurement) {
	a.Nitrogen = m.Nitrogen
	a.Phosphorus = m.Phosphorus
	a.Potassium = m.Potassium
	a.PH = m.PH
	a.Moisture = m.Moisture
}

// ApplyAssessment copies the engine's derived fields into the analysis
func (a *SoilAnalysis) ApplyAssessment(res soil.Assessment) {
	a.Status = res.Status
	a.Recommendations = res.Recommendations
	a.CropSuggestions = res.CropSuggestions
}
