// Package cart implements the single active order: a JSON-file-backed record
// of line items with add, remove and clear operations.
package cart

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"remy/internal/models"
)

// Observer is called with a snapshot of the cart after every successful
// mutation. Used to push live updates to connected UI clients.
type Observer func(models.Cart)

// Store persists the cart to a JSON file at a fixed path, or keeps it in a
// process-wide variable when the deployment filesystem is read-only. The
// in-memory mode does not survive process restarts; that is a documented
// limitation of read-only targets, not a bug.
//
// The store assumes a single logical writer. Concurrent mutations
// read-modify-write the same snapshot and the second write wins (lost
// update). Acceptable for a single-user demo; left unresolved on purpose.
// The mutex below only keeps the in-process snapshot race-detector clean,
// it is not a transaction boundary.
type Store struct {
	path       string
	memoryOnly bool

	mu        sync.Mutex
	memory    models.Cart
	observers []Observer
}

// NewStore creates a store persisting to path. If memoryOnly is set, the
// filesystem is never touched and state lives in the process.
func NewStore(path string, memoryOnly bool) *Store {
	return &Store{
		path:       path,
		memoryOnly: memoryOnly,
		memory:     models.EmptyCart(),
	}
}

// OnChange registers an observer notified after every mutation.
func (s *Store) OnChange(fn Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// ReadCart returns the current cart. Any read failure degrades to an empty
// cart; persistence errors never reach the caller.
func (s *Store) ReadCart() models.Cart {
	if s.memoryOnly {
		s.mu.Lock()
		defer s.mu.Unlock()
		return cloneCart(s.memory)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("cart: error reading %s: %v", s.path, err)
		}
		return models.EmptyCart()
	}

	var c models.Cart
	if err := json.Unmarshal(data, &c); err != nil {
		log.Printf("cart: error parsing %s: %v", s.path, err)
		return models.EmptyCart()
	}
	if c.Items == nil {
		c.Items = []models.CartItem{}
	}
	return c
}

// WriteCart stamps lastUpdated and persists the full snapshot, overwriting
// prior state. Write failures are logged and swallowed.
func (s *Store) WriteCart(c models.Cart) {
	now := time.Now()
	c.LastUpdated = &now

	if s.memoryOnly {
		s.mu.Lock()
		s.memory = cloneCart(c)
		s.mu.Unlock()
	} else {
		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			log.Printf("cart: error encoding cart: %v", err)
			return
		}
		if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
			log.Printf("cart: error creating data dir: %v", err)
			return
		}
		if err := os.WriteFile(s.path, data, 0o644); err != nil {
			log.Printf("cart: error writing %s: %v", s.path, err)
			return
		}
	}

	s.notify(c)
}

// AddToCart merges by menu item id: an existing line item gets its quantity
// incremented, otherwise a new line item is appended with a fresh id. The
// returned item reflects the persisted state. Callers validate quantity > 0
// before invoking.
func (s *Store) AddToCart(menuItemID, name string, price decimal.Decimal, quantity int, description, category string) models.CartItem {
	c := s.ReadCart()

	if i := c.FindByMenuItemID(menuItemID); i >= 0 {
		c.Items[i].Quantity += quantity
		s.WriteCart(c)
		return c.Items[i]
	}

	item := models.CartItem{
		ID:          uuid.NewString(),
		MenuItemID:  menuItemID,
		Name:        name,
		Price:       price,
		Quantity:    quantity,
		Description: description,
		Category:    category,
	}
	c.Items = append(c.Items, item)
	s.WriteCart(c)
	return item
}

// RemoveFromCart resolves the target by cart-local id first, then by menu
// item id. A quantity below the item's current quantity decrements in place;
// anything else removes the line entirely. Returns false when nothing
// matched. quantity <= 0 means remove the line.
func (s *Store) RemoveFromCart(itemID, menuItemID string, quantity int) bool {
	c := s.ReadCart()

	idx := -1
	if itemID != "" {
		idx = c.FindByID(itemID)
	}
	if idx < 0 && menuItemID != "" {
		idx = c.FindByMenuItemID(menuItemID)
	}
	if idx < 0 {
		return false
	}

	if quantity > 0 && quantity < c.Items[idx].Quantity {
		c.Items[idx].Quantity -= quantity
	} else {
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	}

	s.WriteCart(c)
	return true
}

// UpdateItemQuantity sets a line item's quantity directly. Quantity <= 0 is
// a removal request, not an error. Returns false when the item is unknown.
func (s *Store) UpdateItemQuantity(itemID string, quantity int) bool {
	c := s.ReadCart()

	idx := c.FindByID(itemID)
	if idx < 0 {
		return false
	}

	if quantity <= 0 {
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	} else {
		c.Items[idx].Quantity = quantity
	}

	s.WriteCart(c)
	return true
}

// ClearCart replaces the cart with an empty one.
func (s *Store) ClearCart() {
	s.WriteCart(models.EmptyCart())
}

func (s *Store) notify(c models.Cart) {
	s.mu.Lock()
	observers := make([]Observer, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	snapshot := cloneCart(c)
	for _, fn := range observers {
		fn(snapshot)
	}
}

func cloneCart(c models.Cart) models.Cart {
	out := c
	out.Items = make([]models.CartItem, len(c.Items))
	copy(out.Items, c.Items)
	return out
}
