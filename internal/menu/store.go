// Package menu provides read-only querying of the static catalog.
package menu

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"remy/internal/models"
)

// Store holds the catalog loaded at startup. It is immutable for the process
// lifetime, so lookups need no locking.
type Store struct {
	menu models.Menu
}

// Load reads and validates the catalog document from the given path.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read menu file: %w", err)
	}

	var m models.Menu
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse menu file: %w", err)
	}

	for _, cat := range m.Categories {
		for i := range cat.Items {
			if err := models.ValidateMenuItem(&cat.Items[i]); err != nil {
				return nil, fmt.Errorf("invalid menu item in category %q: %w", cat.Name, err)
			}
		}
	}

	return &Store{menu: m}, nil
}

// Restaurant returns the venue display information.
func (s *Store) Restaurant() models.Restaurant {
	return s.menu.Restaurant
}

// Menu returns the full catalog document.
func (s *Store) Menu() models.Menu {
	return s.menu
}

// Categories returns all menu categories in catalog order.
func (s *Store) Categories() []models.MenuCategory {
	return s.menu.Categories
}

// CategoryNames returns the display names of all categories.
func (s *Store) CategoryNames() []string {
	names := make([]string, 0, len(s.menu.Categories))
	for _, cat := range s.menu.Categories {
		names = append(names, cat.Name)
	}
	return names
}

// TotalItems returns the number of items across all categories.
func (s *Store) TotalItems() int {
	total := 0
	for _, cat := range s.menu.Categories {
		total += len(cat.Items)
	}
	return total
}

// Category looks up a category by id or display name, case-insensitively.
func (s *Store) Category(query string) (models.MenuCategory, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	for _, cat := range s.menu.Categories {
		if strings.ToLower(cat.ID) == q || strings.ToLower(cat.Name) == q {
			return cat, true
		}
	}
	return models.MenuCategory{}, false
}

// FindItem searches all categories for an item matching the spoken name.
// Matching is bidirectional substring containment (see MenuItem.MatchesName).
// Returns the item and the name of the category it was found in.
func (s *Store) FindItem(name string) (models.MenuItem, string, bool) {
	for _, cat := range s.menu.Categories {
		for i := range cat.Items {
			if cat.Items[i].MatchesName(name) {
				return cat.Items[i], cat.Name, true
			}
		}
	}
	return models.MenuItem{}, "", false
}

// ItemByID looks up an item by its catalog id. Returns the item and the name
// of the category it belongs to.
func (s *Store) ItemByID(id string) (models.MenuItem, string, bool) {
	for _, cat := range s.menu.Categories {
		for i := range cat.Items {
			if cat.Items[i].ID == id {
				return cat.Items[i], cat.Name, true
			}
		}
	}
	return models.MenuItem{}, "", false
}

// FilterAllergies retains only items sharing no allergy tag with the
// exclusion set. An empty exclusion set retains everything.
func FilterAllergies(items []models.MenuItem, exclude []string) []models.MenuItem {
	if len(exclude) == 0 {
		return items
	}

	filtered := make([]models.MenuItem, 0, len(items))
	for i := range items {
		excluded := false
		for _, allergy := range exclude {
			if items[i].HasAllergen(allergy) {
				excluded = true
				break
			}
		}
		if !excluded {
			filtered = append(filtered, items[i])
		}
	}
	return filtered
}
