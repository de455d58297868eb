// Package api wires the ordering backend's HTTP surface: menu and cart
// endpoints, the tool-call dispatcher ingress, the staff notification relay
// and the live WebSocket channel for the UI.
package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"remy/internal/cart"
	"remy/internal/menu"
	"remy/internal/models"
	"remy/internal/monitoring"
	"remy/internal/notify"
	"remy/internal/tools"
	"remy/internal/weather"
)

// Server is the main API handler for the ordering backend.
type Server struct {
	router     *gin.Engine
	menu       *menu.Store
	cart       *cart.Store
	notifier   *notify.Relay
	weather    *weather.Client
	dispatcher *tools.Dispatcher
	monitor    *monitoring.Monitor
	hub        *Hub
}

// NewServer creates the API server and registers its routes. The dispatcher
// is attached separately once the server's own base URL is known.
func NewServer(menuStore *menu.Store, cartStore *cart.Store, notifier *notify.Relay, weatherClient *weather.Client) *Server {
	s := &Server{
		router:   gin.Default(),
		menu:     menuStore,
		cart:     cartStore,
		notifier: notifier,
		weather:  weatherClient,
		monitor:  monitoring.NewMonitor(),
		hub:      NewHub(),
	}

	// Startup metadata for the dashboard's metrics view.
	s.monitor.Record("restaurant", menuStore.Restaurant().Name)
	s.monitor.Record("menu_items", menuStore.TotalItems())

	// Push cart changes to connected UI clients and the dashboard.
	cartStore.OnChange(func(c models.Cart) {
		s.monitor.RecordCartState(c.TotalItems(), c.TotalPrice().StringFixed(2))
		s.hub.BroadcastCart(c)
	})

	s.setupRoutes()
	return s
}

// AttachDispatcher points the tool dispatcher at this server's own base URL.
// Tool calls are forwarded over loopback HTTP so every tool goes through the
// same endpoint code path the UI uses.
func (s *Server) AttachDispatcher(baseURL string) {
	s.dispatcher = tools.NewDispatcher(baseURL, nil)
	log.Printf("Tool dispatcher ready: %s", s.dispatcher)
}

// Router returns the gin router, used by tests and the HTTP server.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Monitor returns the operational value store.
func (s *Server) Monitor() *monitoring.Monitor {
	return s.monitor
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Remy Bistro ordering API is running"})
	})

	s.router.GET("/ws", s.handleWebSocket)

	api := s.router.Group("/api")
	{
		api.POST("/get-menu", s.handleGetMenu)
		api.POST("/add-to-cart", s.handleAddToCart)
		api.POST("/remove-from-cart", s.handleRemoveFromCart)
		api.GET("/get-cart", s.handleGetCart)
		api.POST("/get-cart", s.handleCartAction)
		api.POST("/update-cart-item", s.handleUpdateCartItem)
		api.POST("/notify-waiter", s.handleNotifyWaiter)
		api.POST("/weather", s.handleWeather)
		api.POST("/tool-call", s.handleToolCall)
		api.GET("/metrics", s.handleMetrics)
	}
}

// dispatch runs a tool call through the dispatcher and records metrics. Used
// by both the HTTP ingress and the WebSocket channel.
func (s *Server) dispatch(ctx context.Context, call tools.Call) tools.Result {
	start := time.Now()
	result := s.dispatcher.Dispatch(ctx, call)

	outcome := "success"
	if result.Err != nil {
		outcome = "error"
		if result.Err.Code == "tool_not_found" {
			outcome = "not_found"
		}
	}

	monitoring.ToolCalls.WithLabelValues(call.Name, outcome).Inc()
	monitoring.ToolCallDuration.WithLabelValues(call.Name).Observe(time.Since(start).Seconds())
	s.monitor.RecordToolCall(call.Name, outcome)

	return result
}
