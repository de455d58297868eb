package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// Menu and cart documents carry prices as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Menu is the full catalog document served to the assistant and the UI.
type Menu struct {
	Restaurant Restaurant     `json:"restaurant"`
	Categories []MenuCategory `json:"categories"`
}

// Restaurant holds the display information for the venue.
type Restaurant struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// MenuCategory groups items under a section of the menu.
type MenuCategory struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Items []MenuItem `json:"items"`
}

// MenuItem represents a dish on the menu. Items are loaded once from the
// catalog file and never mutated afterwards.
type MenuItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"`
	Allergies   []string        `json:"allergies,omitempty"`
	Options     []ItemOption    `json:"options,omitempty"`
}

// OptionType distinguishes pick-one from pick-many item options.
type OptionType string

const (
	OptionTypeSingle   OptionType = "single"
	OptionTypeMultiple OptionType = "multiple"
)

// ItemOption is a configurable choice on a menu item, like a side or a
// protein swap.
type ItemOption struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Type          OptionType     `json:"type"`
	Required      bool           `json:"required"`
	MaxSelections int            `json:"maxSelections,omitempty"`
	Choices       []OptionChoice `json:"choices"`
}

// OptionChoice is one selectable value within an ItemOption.
type OptionChoice struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// ValidateMenuItem validates a catalog entry at load time.
func ValidateMenuItem(item *MenuItem) error {
	if item.ID == "" {
		return fmt.Errorf("menu item id is required")
	}
	if item.Name == "" {
		return fmt.Errorf("menu item name is required")
	}
	if item.Price.IsNegative() {
		return fmt.Errorf("menu item %q price must not be negative", item.Name)
	}
	for _, opt := range item.Options {
		if opt.Type != OptionTypeSingle && opt.Type != OptionTypeMultiple {
			return fmt.Errorf("menu item %q option %q has unknown type %q", item.Name, opt.Name, opt.Type)
		}
		if len(opt.Choices) == 0 {
			return fmt.Errorf("menu item %q option %q has no choices", item.Name, opt.Name)
		}
	}
	return nil
}

// HasAllergen checks whether the item is tagged with the given allergy,
// case-insensitively.
func (mi *MenuItem) HasAllergen(allergen string) bool {
	for _, a := range mi.Allergies {
		if strings.EqualFold(a, allergen) {
			return true
		}
	}
	return false
}

// MatchesName reports whether the item matches a spoken query. Containment is
// checked in both directions to tolerate imprecise voice transcription:
// "the oldtimer burger please" should still find "Oldtimer Burger", and so
// should plain "oldtimer".
func (mi *MenuItem) MatchesName(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}
	name := strings.ToLower(mi.Name)
	return strings.Contains(name, q) || strings.Contains(q, name)
}
