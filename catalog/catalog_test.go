package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/soilq/soilq-api/models"
	"github.com/soilq/soilq-api/tests/testutil"
)

func setupDB(t *testing.T) *gorm.DB {
	return testutil.NewTestDB(t)
}

func TestDefaults(t *testing.T) {
	products, err := Defaults()
	require.NoError(t, err)
	require.Len(t, products, 8)

	urea := products[0]
	assert.Equal(t, "FRT-UREA-46", urea.SKU)
	assert.Equal(t, "Urea", urea.Name)
	assert.Equal(t, 268.0, urea.Price)
	assert.True(t, urea.InStock)
	assert.Contains(t, urea.Compatibility, "Wheat")
}

func TestParse_RejectsBadEntries(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing id", "products:\n  - name: Urea\n    price: 1\n"},
		{"negative price", "products:\n  - id: X\n    name: Urea\n    price: -1\n"},
		{"not yaml", "products: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestSeed_OnlyWhenEmpty(t *testing.T) {
	db := setupDB(t)
	c := New(db)
	ctx := context.Background()

	n, err := c.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	n, err = c.Seed(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	var count int64
	db.Model(&models.Product{}).Count(&count)
	assert.Equal(t, int64(8), count)
}

func TestListAndGet(t *testing.T) {
	c := New(setupDB(t))
	ctx := context.Background()
	_, err := c.Seed(ctx)
	require.NoError(t, err)

	all, err := c.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 8)
	assert.Equal(t, "Ammonium nitrate", all[0].Name)

	pesticides, err := c.List(ctx, "Pesticide")
	require.NoError(t, err)
	assert.Len(t, pesticides, 2)

	lime, err := c.Get(ctx, "AMD-LIME")
	require.NoError(t, err)
	assert.Equal(t, 15.99, lime.Price)
	assert.Equal(t, []string{"All Crops"}, lime.Compatibility)

	_, err = c.Get(ctx, "NOPE")
	assert.ErrorIs(t, err, ErrNotFound)
}
