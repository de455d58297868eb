package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one line entry in the cart. Price is snapshotted from the menu
// at add time and does not track later catalog changes.
type CartItem struct {
	ID          string          `json:"id"`
	MenuItemID  string          `json:"menuItemId"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
}

// Cart is the active order: line items in insertion order plus metadata.
// There is a single cart per deployment; no per-user partitioning.
type Cart struct {
	Items       []CartItem `json:"items"`
	LastUpdated *time.Time `json:"lastUpdated"`
	SessionID   *string    `json:"sessionId"`
}

// EmptyCart returns a cart with no items and no timestamp.
func EmptyCart() Cart {
	return Cart{Items: []CartItem{}}
}

// FindByMenuItemID returns the index of the line item referencing the given
// menu item, or -1. At most one line item per menu item exists at a time.
func (c Cart) FindByMenuItemID(menuItemID string) int {
	for i := range c.Items {
		if c.Items[i].MenuItemID == menuItemID {
			return i
		}
	}
	return -1
}

// FindByID returns the index of the line item with the given cart-local id,
// or -1.
func (c Cart) FindByID(id string) int {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// TotalPrice sums price * quantity over all line items.
func (c Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Items {
		line := c.Items[i].Price.Mul(decimal.NewFromInt(int64(c.Items[i].Quantity)))
		total = total.Add(line)
	}
	return total
}

// TotalItems sums quantities over all line items.
func (c Cart) TotalItems() int {
	total := 0
	for i := range c.Items {
		total += c.Items[i].Quantity
	}
	return total
}
