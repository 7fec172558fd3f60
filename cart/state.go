// Package cart holds a signed-in user's shopping cart. The cart is a plain
// value changed only through the reducers below; a Store keeps one per
// session between requests.
package cart

import (
	"math"

	"github.com/soilq/soilq-api/models"
)

// Item is one product line in the cart, priced when it was added
type Item struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image,omitempty"`
	Quantity  int     `json:"quantity"`
}

// State is the whole cart plus the sidebar flag the shop UI keeps with it
type State struct {
	Items       []Item `json:"items"`
	SidebarOpen bool   `json:"sidebar_open"`
}

// Empty returns a cart with no items
func Empty() State {
	return State{Items: []Item{}}
}

// AddItem adds qty of product, merging with an existing line
func AddItem(s State, p models.Product, qty int) State {
	if qty <= 0 {
		return s
	}
	items := clone(s.Items)
	for i := range items {
		if items[i].ProductID == p.SKU {
			items[i].Quantity += qty
			s.Items = items
			return s
		}
	}
	s.Items = append(items, Item{
		ProductID: p.SKU,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
		Quantity:  qty,
	})
	return s
}

// UpdateQuantity sets the quantity of a line. Zero or less removes it
func UpdateQuantity(s State, productID string, qty int) State {
	if qty <= 0 {
		return RemoveItem(s, productID)
	}
	items := clone(s.Items)
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity = qty
		}
	}
	s.Items = items
	return s
}

// RemoveItem drops a line from the cart
func RemoveItem(s State, productID string) State {
	items := make([]Item, 0, len(s.Items))
	for _, it := range s.Items {
		if it.ProductID != productID {
			items = append(items, it)
		}
	}
	s.Items = items
	return s
}

// Clear empties the cart and keeps the sidebar flag
func Clear(s State) State {
	s.Items = []Item{}
	return s
}

// SetSidebar opens or closes the cart sidebar
func SetSidebar(s State, open bool) State {
	s.SidebarOpen = open
	return s
}

// Subtotal is the sum of price times quantity, rounded to cents
func Subtotal(s State) float64 {
	var total float64
	for _, it := range s.Items {
		total += it.Price * float64(it.Quantity)
	}
	return math.Round(total*100) / 100
}

// Count is the number of units in the cart
func Count(s State) int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

// OrderItems snapshots the cart lines for an order
func OrderItems(s State) []models.OrderItem {
	out := make([]models.OrderItem, 0, len(s.Items))
	for _, it := range s.Items {
		out = append(out, models.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Image:     it.Image,
		})
	}
	return out
}

func clone(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
