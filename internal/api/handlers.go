package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"remy/internal/menu"
	"remy/internal/models"
	"remy/internal/monitoring"
	"remy/internal/notify"
	"remy/internal/tools"
	"remy/internal/weather"
)

// respondData replies with the success envelope.
func respondData(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// respondError replies with the structured error envelope. Tool-facing
// errors ride on 200 so the dispatcher reads the envelope, validation
// errors use 400.
func respondError(c *gin.Context, status int, apiErr models.APIError) {
	c.JSON(status, gin.H{"success": false, "error": apiErr})
}

func validationError(content string) models.APIError {
	return models.APIError{
		Error:   "Invalid parameters",
		Code:    "validation_error",
		Level:   models.ErrorLevelWarn,
		Content: content,
	}
}

// toolRequest is the body shape every tool endpoint accepts:
// {"parameters": {...}}. The dispatcher normalizes string-encoded
// parameters before they get here.
type toolRequest[T any] struct {
	Parameters T `json:"parameters"`
}

// handleGetMenu serves the catalog: by category, by spoken item name, or the
// full menu summary, optionally filtered by excluded allergies. Category and
// item misses are spoken redirections, not errors.
func (s *Server) handleGetMenu(c *gin.Context) {
	var req toolRequest[struct {
		Category         string   `json:"category"`
		ItemName         string   `json:"itemName"`
		ExcludeAllergies []string `json:"excludeAllergies"`
	}]
	// An empty or absent body means the full menu.
	_ = c.ShouldBindJSON(&req)
	params := req.Parameters

	restaurant := s.menu.Restaurant()
	categoryNames := strings.Join(s.menu.CategoryNames(), ", ")

	if params.Category != "" {
		category, ok := s.menu.Category(params.Category)
		if !ok {
			respondData(c, gin.H{
				"message": fmt.Sprintf("Sorry, I couldn't find that category. Our available categories are: %s", categoryNames),
			})
			return
		}

		items := menu.FilterAllergies(category.Items, params.ExcludeAllergies)
		message := fmt.Sprintf("Here are the %s items available at %s", category.Name, restaurant.Name)
		if len(params.ExcludeAllergies) > 0 {
			message += fmt.Sprintf(" (filtered to exclude: %s)", strings.Join(params.ExcludeAllergies, ", "))
		}

		respondData(c, gin.H{
			"category": category.Name,
			"items":    items,
			"message":  message,
		})
		return
	}

	if params.ItemName != "" {
		item, categoryName, ok := s.menu.FindItem(params.ItemName)
		if !ok {
			respondData(c, gin.H{
				"message": fmt.Sprintf("Sorry, I couldn't find %q on our menu. Let me tell you about our available categories: %s", params.ItemName, categoryNames),
			})
			return
		}

		respondData(c, gin.H{
			"item":     item,
			"category": categoryName,
			"message": fmt.Sprintf("Found %s in our %s section. %s - $%s",
				item.Name, categoryName, item.Description, item.Price.StringFixed(2)),
		})
		return
	}

	full := s.menu.Menu()
	if len(params.ExcludeAllergies) > 0 {
		filtered := make([]models.MenuCategory, 0, len(full.Categories))
		for _, cat := range full.Categories {
			cat.Items = menu.FilterAllergies(cat.Items, params.ExcludeAllergies)
			filtered = append(filtered, cat)
		}
		full.Categories = filtered
	}

	totalItems := 0
	for _, cat := range full.Categories {
		totalItems += len(cat.Items)
	}

	summary := gin.H{
		"restaurantName": restaurant.Name,
		"description":    restaurant.Description,
		"categories":     s.menu.CategoryNames(),
		"totalItems":     totalItems,
	}

	message := fmt.Sprintf("Welcome to %s! %s We have %d items across %d categories: %s",
		restaurant.Name, restaurant.Description, totalItems, len(full.Categories), categoryNames)
	if len(params.ExcludeAllergies) > 0 {
		message += fmt.Sprintf(" (filtered to exclude: %s)", strings.Join(params.ExcludeAllergies, ", "))
	}

	respondData(c, gin.H{
		"summary":  summary,
		"fullMenu": full,
		"message":  message,
	})
}

// handleAddToCart adds a line item. The canonical form references a menu item
// by id and snapshots its price; the legacy voice form carries name, price
// and quantity directly.
func (s *Server) handleAddToCart(c *gin.Context) {
	var req toolRequest[struct {
		ItemID      string           `json:"itemId"`
		Name        string           `json:"name"`
		Price       *decimal.Decimal `json:"price"`
		Quantity    int              `json:"quantity"`
		Description string           `json:"description"`
	}]
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, validationError("Request body must be JSON with a parameters object"))
		return
	}
	params := req.Parameters

	if params.Quantity <= 0 {
		respondError(c, http.StatusBadRequest, validationError("Quantity must be positive"))
		return
	}

	var item models.CartItem
	switch {
	case params.ItemID != "":
		menuItem, categoryName, ok := s.menu.ItemByID(params.ItemID)
		if !ok {
			respondError(c, http.StatusOK, models.APIError{
				Error:   "Item not found",
				Code:    "item_not_found",
				Level:   models.ErrorLevelWarn,
				Content: fmt.Sprintf("No menu item with id %q", params.ItemID),
			})
			return
		}
		item = s.cart.AddToCart(menuItem.ID, menuItem.Name, menuItem.Price, params.Quantity, menuItem.Description, categoryName)

	case params.Name != "":
		if params.Price == nil || params.Price.IsNegative() {
			respondError(c, http.StatusBadRequest, validationError("Price must be non-negative and quantity must be positive"))
			return
		}
		// Voice gives us a spoken name; resolve it against the catalog so
		// repeat adds merge onto the same line item.
		menuItemID := params.Name
		description := params.Description
		category := ""
		if menuItem, categoryName, ok := s.menu.FindItem(params.Name); ok {
			menuItemID = menuItem.ID
			category = categoryName
			if description == "" {
				description = menuItem.Description
			}
		}
		item = s.cart.AddToCart(menuItemID, params.Name, *params.Price, params.Quantity, description, category)

	default:
		respondError(c, http.StatusBadRequest, validationError("Required: itemId (string) and quantity (number), or name (string), price (number) and quantity (number)"))
		return
	}

	monitoring.CartOperations.WithLabelValues("add").Inc()

	plural := ""
	if params.Quantity > 1 {
		plural = "s"
	}
	lineTotal := item.Price.Mul(decimal.NewFromInt(int64(params.Quantity)))
	respondData(c, gin.H{
		"item": item,
		"message": fmt.Sprintf("Added %d %s%s to your cart for $%s",
			params.Quantity, item.Name, plural, lineTotal.StringFixed(2)),
	})
}

// handleRemoveFromCart removes or decrements a line item, resolving the
// target by cart id, then by spoken name against the cart and the catalog.
func (s *Server) handleRemoveFromCart(c *gin.Context) {
	var req toolRequest[struct {
		ItemID   string `json:"itemId"`
		ItemName string `json:"itemName"`
		Name     string `json:"name"` // legacy alias for itemName
		Quantity int    `json:"quantity"`
	}]
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, validationError("Request body must be JSON with a parameters object"))
		return
	}
	params := req.Parameters

	name := params.ItemName
	if name == "" {
		name = params.Name
	}
	if params.ItemID == "" && name == "" {
		respondError(c, http.StatusBadRequest, validationError("Required: itemId (string) or itemName (string)"))
		return
	}
	if params.Quantity < 0 {
		respondError(c, http.StatusBadRequest, validationError("Quantity must not be negative"))
		return
	}

	// The voice integration sometimes hands back the menu item id where the
	// cart-local id is expected; the store resolves id first, then menu id.
	menuItemID := params.ItemID
	removedName := name
	if params.ItemID == "" {
		// Prefer a direct match against what is already in the cart, the
		// catalog resolves transcriptions that never made it into the cart
		// verbatim.
		current := s.cart.ReadCart()
		for i := range current.Items {
			if nameMatches(current.Items[i].Name, name) {
				menuItemID = current.Items[i].MenuItemID
				removedName = current.Items[i].Name
				break
			}
		}
		if menuItemID == "" {
			if menuItem, _, ok := s.menu.FindItem(name); ok {
				menuItemID = menuItem.ID
				removedName = menuItem.Name
			}
		}
		if menuItemID == "" {
			respondError(c, http.StatusOK, models.APIError{
				Error:   "Item not found",
				Code:    "item_not_found",
				Level:   models.ErrorLevelWarn,
				Content: fmt.Sprintf("Couldn't find %q in your cart", name),
			})
			return
		}
	}

	if removedName == "" {
		current := s.cart.ReadCart()
		if i := current.FindByID(params.ItemID); i >= 0 {
			removedName = current.Items[i].Name
		} else if i := current.FindByMenuItemID(menuItemID); i >= 0 {
			removedName = current.Items[i].Name
		}
	}

	if !s.cart.RemoveFromCart(params.ItemID, menuItemID, params.Quantity) {
		identifier := params.ItemID
		if identifier == "" {
			identifier = name
		}
		respondError(c, http.StatusOK, models.APIError{
			Error:   "Item not found",
			Code:    "item_not_found",
			Level:   models.ErrorLevelWarn,
			Content: fmt.Sprintf("Couldn't find %q in your cart", identifier),
		})
		return
	}

	monitoring.CartOperations.WithLabelValues("remove").Inc()

	quantity := params.Quantity
	if quantity == 0 {
		respondData(c, gin.H{
			"message": fmt.Sprintf("Removed %s from your cart", removedName),
		})
		return
	}
	plural := ""
	if quantity > 1 {
		plural = "s"
	}
	respondData(c, gin.H{
		"message": fmt.Sprintf("Removed %d %s%s from your cart", quantity, removedName, plural),
	})
}

// handleGetCart returns the cart with its totals.
func (s *Server) handleGetCart(c *gin.Context) {
	current := s.cart.ReadCart()
	respondData(c, gin.H{
		"items":       current.Items,
		"totalPrice":  current.TotalPrice(),
		"totalItems":  current.TotalItems(),
		"lastUpdated": current.LastUpdated,
		"sessionId":   current.SessionID,
	})
}

// handleCartAction handles POSTs to the cart resource. The get_cart tool
// POSTs {"parameters": {...}} with no action, which is a plain cart read;
// "clear" is the only mutating action.
func (s *Server) handleCartAction(c *gin.Context) {
	var req struct {
		Action string `json:"action"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Action == "" {
		s.handleGetCart(c)
		return
	}
	if req.Action != "clear" {
		respondError(c, http.StatusOK, models.APIError{
			Error:   "Invalid action",
			Code:    "invalid_action",
			Level:   models.ErrorLevelWarn,
			Content: fmt.Sprintf("Unknown cart action %q", req.Action),
		})
		return
	}

	s.cart.ClearCart()
	monitoring.CartOperations.WithLabelValues("clear").Inc()
	respondData(c, "Cart cleared successfully")
}

// handleUpdateCartItem sets a line item's quantity directly; zero or less
// removes the line. Called by the UI's quantity steppers, not by voice.
func (s *Server) handleUpdateCartItem(c *gin.Context) {
	var req struct {
		ItemID   string `json:"itemId"`
		Quantity int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ItemID == "" {
		respondError(c, http.StatusBadRequest, validationError("Required: itemId (string) and quantity (number)"))
		return
	}

	if !s.cart.UpdateItemQuantity(req.ItemID, req.Quantity) {
		respondError(c, http.StatusOK, models.APIError{
			Error:   "Item not found",
			Code:    "item_not_found",
			Level:   models.ErrorLevelWarn,
			Content: fmt.Sprintf("No cart item with id %q", req.ItemID),
		})
		return
	}

	monitoring.CartOperations.WithLabelValues("update").Inc()
	respondData(c, gin.H{"message": "Cart item updated"})
}

// handleNotifyWaiter relays a staff alert over SMS.
func (s *Server) handleNotifyWaiter(c *gin.Context) {
	var req toolRequest[notify.Request]
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, validationError("Request body must be JSON with a parameters object"))
		return
	}

	confirmation, apiErr := s.notifier.Notify(c.Request.Context(), req.Parameters)
	if apiErr != nil {
		outcome := "delivery_error"
		if apiErr.Code == "twilio_config_error" {
			outcome = "config_error"
		}
		monitoring.Notifications.WithLabelValues(outcome).Inc()
		respondError(c, http.StatusOK, *apiErr)
		return
	}

	monitoring.Notifications.WithLabelValues("sent").Inc()
	respondData(c, confirmation)
}

// handleWeather serves the assistant's current-conditions tool.
func (s *Server) handleWeather(c *gin.Context) {
	var req toolRequest[weather.Request]
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, validationError("Request body must be JSON with a parameters object"))
		return
	}

	report, err := s.weather.Current(c.Request.Context(), req.Parameters)
	if err != nil {
		respondError(c, http.StatusOK, models.APIError{
			Error:   "Weather lookup failed",
			Code:    "weather_error",
			Level:   models.ErrorLevelWarn,
			Content: "Unable to retrieve current weather",
		})
		return
	}

	respondData(c, report)
}

// handleToolCall is the dispatcher ingress for the voice integration.
func (s *Server) handleToolCall(c *gin.Context) {
	var call tools.Call
	if err := c.ShouldBindJSON(&call); err != nil || call.Name == "" {
		respondError(c, http.StatusBadRequest, validationError("Required: name (string) and parameters (object or JSON string)"))
		return
	}

	result := s.dispatch(c.Request.Context(), call)
	c.JSON(http.StatusOK, result)
}

// handleMetrics returns operational values for the UI dashboard. Prometheus
// scraping uses the dedicated metrics port instead.
func (s *Server) handleMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, s.monitor.Snapshot())
}

// nameMatches applies the same bidirectional containment rule the menu uses
// to line items already in the cart.
func nameMatches(itemName, query string) bool {
	a := strings.ToLower(strings.TrimSpace(itemName))
	b := strings.ToLower(strings.TrimSpace(query))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
