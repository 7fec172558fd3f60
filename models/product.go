package models

import "time"

// Product is a catalog entry in the input shop
type Product struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	SKU           string    `gorm:"uniqueIndex;not null" json:"id" yaml:"id"`
	Name          string    `gorm:"not null" json:"name" yaml:"name"`
	Price         float64   `gorm:"not null" json:"price" yaml:"price"`
	Image         string    `json:"image" yaml:"image"`
	Description   string    `json:"description" yaml:"description"`
	Category      string    `gorm:"index" json:"category" yaml:"category"`
	Compatibility []string  `gorm:"serializer:json" json:"compatibility" yaml:"compatibility"`
	InStock       bool      `json:"in_stock" yaml:"in_stock"`
	Rating        float64   `json:"rating" yaml:"rating"`
	CreatedAt     time.Time `json:"-" yaml:"-"`
	UpdatedAt     time.Time `json:"-" yaml:"-"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}
