package models

import (
	"time"

	"github.com/soilq/soilq-api/soil"
)

// LabReport is an uploaded soil lab report and the values read from it
type LabReport struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Filename    string    `gorm:"not null" json:"filename"`
	S3Key       string    `gorm:"not null" json:"s3_key"`
	ContentType string    `gorm:"not null" json:"content_type"`
	Size        int64     `json:"size"`
	Nitrogen    *float64  `json:"nitrogen"`
	Phosphorus  *float64  `json:"phosphorus"`
	Potassium   *float64  `json:"potassium"`
	PH          *float64  `gorm:"column:ph" json:"ph"`
	Moisture    *float64  `json:"moisture"`
	URL         *string   `gorm:"-" json:"url,omitempty"` // computed field, presigned or local URL
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for the LabReport model
func (LabReport) TableName() string {
	return "lab_reports"
}

// SetValues stores the values parsed from the report text
func (r *LabReport) SetValues(v soil.ReportValues) {
	r.Nitrogen = v.Nitrogen
	r.Phosphorus = v.Phosphorus
	r.Potassium = v.Potassium
	r.PH = v.PH
	r.Moisture = v.Moisture
}

// Values returns the stored values in parser form
func (r *LabReport) Values() soil.ReportValues {
	return soil.ReportValues{
		Nitrogen:   r.Nitrogen,
		Phosphorus: r.Phosphorus,
		Potassium:  r.Potassium,
		PH:         r.PH,
		Moisture:   r.Moisture,
	}
}
