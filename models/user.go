package models

import (
	"time"

	"gorm.io/gorm"
)

// Supported profile languages
const (
	LanguageEnglish = "en"
	LanguageHindi   = "hi"
	LanguageTelugu  = "te"
)

// User represents a signed-in farmer
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Auth0ID   string         `gorm:"uniqueIndex;not null" json:"auth0_id"` // Auth0 user ID (from 'sub' claim)
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Language  string         `gorm:"not null;default:'en'" json:"language"` // en, hi or te
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// ValidLanguage reports whether lang is one of the supported profile languages
func ValidLanguage(lang string) bool {
	switch lang {
	case LanguageEnglish, LanguageHindi, LanguageTelugu:
		return true
	}
	return false
}
