package menu

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = `{
  "restaurant": {
    "name": "Remy Bistro",
    "description": "A cozy neighborhood bistro."
  },
  "categories": [
    {
      "id": "mains",
      "name": "Main Courses",
      "items": [
        {
          "id": "main-1",
          "name": "Oldtimer Burger",
          "description": "Half-pound patty on a brioche bun",
          "price": 14.99,
          "allergies": ["gluten", "dairy"]
        },
        {
          "id": "main-4",
          "name": "Thai Peanut Bowl",
          "description": "Rice noodles with peanut sauce",
          "price": 15.99,
          "allergies": ["nuts", "soy"]
        }
      ]
    },
    {
      "id": "drinks",
      "name": "Drinks",
      "items": [
        {
          "id": "dr-1",
          "name": "Fresh Lemonade",
          "description": "House-squeezed lemonade",
          "price": 3.99
        }
      ]
    }
  ]
}`

func loadTestStore(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "menu.json")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	return s
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "menu.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestCategoryLookup(t *testing.T) {
	s := loadTestStore(t)

	tests := []struct {
		query string
		want  string
		found bool
	}{
		{"mains", "Main Courses", true},
		{"Main Courses", "Main Courses", true},
		{"MAIN COURSES", "Main Courses", true},
		{"drinks", "Drinks", true},
		{"main", "", false}, // exact match only, no substrings
		{"dessert", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			cat, ok := s.Category(tt.query)
			require.Equal(t, tt.found, ok)
			if ok {
				assert.Equal(t, tt.want, cat.Name)
			}
		})
	}
}

func TestFindItemBidirectionalMatch(t *testing.T) {
	s := loadTestStore(t)

	tests := []struct {
		name  string
		query string
		want  string
		found bool
	}{
		{"exact", "Oldtimer Burger", "Oldtimer Burger", true},
		{"case-insensitive", "oldtimer burger", "Oldtimer Burger", true},
		{"substring of item name", "oldtimer", "Oldtimer Burger", true},
		{"superstring of item name", "the oldtimer burger please", "Oldtimer Burger", true},
		{"another item", "peanut bowl", "Thai Peanut Bowl", true},
		{"no match", "pizza", "", false},
		{"empty query", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, category, ok := s.FindItem(tt.query)
			require.Equal(t, tt.found, ok)
			if ok {
				assert.Equal(t, tt.want, item.Name)
				assert.NotEmpty(t, category)
			}
		})
	}
}

func TestItemByID(t *testing.T) {
	s := loadTestStore(t)

	item, category, ok := s.ItemByID("dr-1")
	require.True(t, ok)
	assert.Equal(t, "Fresh Lemonade", item.Name)
	assert.Equal(t, "Drinks", category)

	_, _, ok = s.ItemByID("nope")
	assert.False(t, ok)
}

func TestFilterAllergies(t *testing.T) {
	s := loadTestStore(t)
	mains, ok := s.Category("mains")
	require.True(t, ok)

	tests := []struct {
		name    string
		exclude []string
		want    []string
	}{
		{"no exclusions retains all", nil, []string{"Oldtimer Burger", "Thai Peanut Bowl"}},
		{"nuts excluded", []string{"nuts"}, []string{"Oldtimer Burger"}},
		{"case-insensitive", []string{"NUTS"}, []string{"Oldtimer Burger"}},
		{"multiple tags", []string{"nuts", "gluten"}, []string{}},
		{"unrelated tag retains all", []string{"fish"}, []string{"Oldtimer Burger", "Thai Peanut Bowl"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filtered := FilterAllergies(mains.Items, tt.exclude)
			names := make([]string, 0, len(filtered))
			for _, item := range filtered {
				names = append(names, item.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestSummaryHelpers(t *testing.T) {
	s := loadTestStore(t)

	assert.Equal(t, "Remy Bistro", s.Restaurant().Name)
	assert.Equal(t, []string{"Main Courses", "Drinks"}, s.CategoryNames())
	assert.Equal(t, 3, s.TotalItems())
}

func TestLoadRejectsInvalidItems(t *testing.T) {
	bad := `{
  "restaurant": {"name": "X", "description": ""},
  "categories": [
    {"id": "c", "name": "C", "items": [{"id": "", "name": "No ID", "price": 1.0}]}
  ]
}`
	path := filepath.Join(t.TempDir(), "menu.json")
	require.NoError(t, os.WriteFile(path, []byte(bad), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
