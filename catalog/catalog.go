// Package catalog serves the input shop's products. The product list ships
// with the binary and is copied into the database on first start.
package catalog

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/soilq/soilq-api/models"
)

//go:embed products.yaml
var seedFile []byte

// ErrNotFound is returned for an unknown product id
var ErrNotFound = errors.New("product not found")

type seed struct {
	Products []models.Product `yaml:"products"`
}

// Parse reads a product list in the products.yaml format
func Parse(data []byte) ([]models.Product, error) {
	var s seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse product catalog: %w", err)
	}
	for i, p := range s.Products {
		if p.SKU == "" || p.Name == "" {
			return nil, fmt.Errorf("product %d: id and name are required", i)
		}
		if p.Price < 0 {
			return nil, fmt.Errorf("product %s: price must not be negative", p.SKU)
		}
	}
	return s.Products, nil
}

// Defaults returns the built-in product list
func Defaults() ([]models.Product, error) {
	return Parse(seedFile)
}

// Catalog reads products from the database
type Catalog struct {
	db *gorm.DB
}

// New creates a catalog backed by db
func New(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

// Seed inserts the built-in products when the table is empty. It returns how
// many were inserted.
func (c *Catalog) Seed(ctx context.Context) (int, error) {
	db := c.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	products, err := Defaults()
	if err != nil {
		return 0, err
	}
	if err := db.Create(&products).Error; err != nil {
		return 0, fmt.Errorf("failed to seed products: %w", err)
	}

	zap.L().Info("product catalog seeded", zap.Int("count", len(products)))
	return len(products), nil
}

// List returns products ordered by name, optionally limited to one category
func (c *Catalog) List(ctx context.Context, category string) ([]models.Product, error) {
	products := []models.Product{}
	q := c.db.WithContext(ctx).Order("name ASC")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if err := q.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// Get returns the product with the given public id
func (c *Catalog) Get(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := c.db.WithContext(ctx).Where("sku = ?", id).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch product: %w", err)
	}
	return &product, nil
}
