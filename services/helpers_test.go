package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/soilq/soilq-api/gateway"
	"github.com/soilq/soilq-api/models"
	"github.com/soilq/soilq-api/tests/testutil"
)

var testPricing = Pricing{ShippingFee: 5.99, TaxRate: 0.08}

var testAddress = models.ShippingAddress{
	Name:    "Ravi Kumar",
	Address: "12 Canal Road",
	City:    "Guntur",
	State:   "Andhra Pradesh",
	Pincode: "522001",
	Phone:   "9000000000",
}

func testItems() []models.OrderItem {
	return []models.OrderItem{
		{ProductID: "AMD-LIME", Name: "pH Balancer - Lime", Price: 15.99, Quantity: 2},
		{ProductID: "FRT-AN-34", Name: "Ammonium nitrate", Price: 22.50, Quantity: 1},
	}
}

func orderInput(userID uint, method gateway.Method) CreateOrderInput {
	items := testItems()
	return CreateOrderInput{
		UserID:          userID,
		Items:           items,
		Totals:          testPricing.Quote(items),
		PaymentMethod:   method,
		ShippingAddress: testAddress,
	}
}

func fixedClock() func() time.Time {
	at := time.Date(2024, 3, 12, 9, 30, 0, 0, time.UTC)
	return func() time.Time { return at }
}

type fixture struct {
	db       *gorm.DB
	user     *models.User
	orders   *OrderService
	payments *PaymentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, "auth0|farmer", "farmer@example.com")

	gw := &gateway.Gateway{Now: fixedClock()}
	orders := NewOrderService(db)
	orders.now = gw.Now

	return &fixture{
		db:       db,
		user:     user,
		orders:   orders,
		payments: NewPaymentService(db, gw),
	}
}

func (f *fixture) placeOrder(t *testing.T, method gateway.Method) (*models.Order, *models.Payment) {
	t.Helper()
	order, payment, err := f.orders.CreateOrder(t.Context(), orderInput(f.user.ID, method))
	require.NoError(t, err)
	return order, payment
}

func (f *fixture) reloadOrder(t *testing.T, id uint) models.Order {
	t.Helper()
	var order models.Order
	require.NoError(t, f.db.First(&order, id).Error)
	return order
}

func (f *fixture) reloadPayment(t *testing.T, id uint) models.Payment {
	t.Helper()
	var payment models.Payment
	require.NoError(t, f.db.First(&payment, id).Error)
	return payment
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func assertServiceError(t *testing.T, err error, kind Kind, code string) {
	t.Helper()
	var se *ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, kind, se.Kind, "kind")
	assert.Equal(t, code, se.Code, "code")
}
