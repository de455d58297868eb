// Package tools bridges the voice assistant's tool-call protocol and the
// backend's own HTTP endpoints.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"remy/internal/models"
)

// Call is a structured request from the voice/LLM integration naming an
// action and carrying parameters. Parameters may arrive either as an object
// or as a JSON-encoded string; NormalizedParameters resolves both to the
// inner object.
type Call struct {
	Name       string          `json:"name"`
	Parameters json.RawMessage `json:"parameters"`
}

// NormalizedParameters unwraps string-encoded parameters once at ingress so
// downstream code only ever sees the structured form.
func (c Call) NormalizedParameters() json.RawMessage {
	if len(c.Parameters) == 0 {
		return json.RawMessage(`{}`)
	}

	var inner string
	if err := json.Unmarshal(c.Parameters, &inner); err == nil {
		if inner == "" || !json.Valid([]byte(inner)) {
			return json.RawMessage(`{}`)
		}
		return json.RawMessage(inner)
	}
	return c.Parameters
}

// Result is the dispatch outcome surfaced back to the voice integration:
// either Data on success or Err on failure, never both.
type Result struct {
	Success bool             `json:"success"`
	Data    json.RawMessage  `json:"data,omitempty"`
	Err     *models.APIError `json:"error,omitempty"`
}

// tool maps a tool name to the endpoint serving it plus the fallback error
// reported when the endpoint cannot be reached or answers garbage.
type tool struct {
	endpoint string
	fallback models.APIError
}

var errToolNotFound = models.APIError{
	Error:   "Tool not found",
	Code:    "tool_not_found",
	Level:   models.ErrorLevelWarn,
	Content: "The tool you requested was not found",
}

// Dispatcher forwards tool calls to the backend's endpoints over HTTP and
// translates the endpoint envelope back into a Result. Stateless per call.
type Dispatcher struct {
	baseURL string
	client  *http.Client
	table   map[string]tool
}

// NewDispatcher creates a dispatcher targeting the server at baseURL. A nil
// client gets a default with a request timeout.
func NewDispatcher(baseURL string, client *http.Client) *Dispatcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &Dispatcher{
		baseURL: baseURL,
		client:  client,
		table: map[string]tool{
			"get_menu": {
				endpoint: "/api/get-menu",
				fallback: models.APIError{
					Error:   "Menu tool error",
					Code:    "menu_tool_error",
					Level:   models.ErrorLevelWarn,
					Content: "There was an error retrieving the menu",
				},
			},
			"add_to_cart": {
				endpoint: "/api/add-to-cart",
				fallback: models.APIError{
					Error:   "Cart tool error",
					Code:    "cart_tool_error",
					Level:   models.ErrorLevelWarn,
					Content: "There was an error adding item to cart",
				},
			},
			"remove_from_cart": {
				endpoint: "/api/remove-from-cart",
				fallback: models.APIError{
					Error:   "Cart tool error",
					Code:    "cart_tool_error",
					Level:   models.ErrorLevelWarn,
					Content: "There was an error removing item from cart",
				},
			},
			"get_cart": {
				endpoint: "/api/get-cart",
				fallback: models.APIError{
					Error:   "Cart tool error",
					Code:    "cart_tool_error",
					Level:   models.ErrorLevelWarn,
					Content: "There was an error reading the cart",
				},
			},
			"notify_waiter": {
				endpoint: "/api/notify-waiter",
				fallback: models.APIError{
					Error:   "Notification tool error",
					Code:    "notification_tool_error",
					Level:   models.ErrorLevelError,
					Content: "There was an error notifying the waiter",
				},
			},
			"get_current_weather": {
				endpoint: "/api/weather",
				fallback: models.APIError{
					Error:   "Weather tool error",
					Code:    "weather_tool_error",
					Level:   models.ErrorLevelWarn,
					Content: "There was an error with the weather tool",
				},
			},
		},
	}
}

// Tools returns the names of all dispatchable tools.
func (d *Dispatcher) Tools() []string {
	names := make([]string, 0, len(d.table))
	for name := range d.table {
		names = append(names, name)
	}
	return names
}

// Dispatch forwards a tool call to its endpoint. Unknown names and transport
// failures never return a Go error; they come back as structured Results so
// the voice layer always has something it can speak.
func (d *Dispatcher) Dispatch(ctx context.Context, call Call) Result {
	t, ok := d.table[call.Name]
	if !ok {
		log.Printf("tools: unknown tool %q", call.Name)
		e := errToolNotFound
		return Result{Err: &e}
	}

	body, err := json.Marshal(map[string]json.RawMessage{
		"parameters": call.NormalizedParameters(),
	})
	if err != nil {
		e := t.fallback
		return Result{Err: &e}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+t.endpoint, bytes.NewReader(body))
	if err != nil {
		e := t.fallback
		return Result{Err: &e}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		log.Printf("tools: %s transport failure: %v", call.Name, err)
		e := t.fallback
		return Result{Err: &e}
	}
	defer resp.Body.Close()

	var envelope struct {
		Success bool             `json:"success"`
		Data    json.RawMessage  `json:"data"`
		Error   *models.APIError `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		log.Printf("tools: %s returned non-JSON response: %v", call.Name, err)
		e := t.fallback
		return Result{Err: &e}
	}

	if !envelope.Success {
		if envelope.Error == nil {
			e := t.fallback
			return Result{Err: &e}
		}
		return Result{Err: envelope.Error}
	}

	return Result{Success: true, Data: envelope.Data}
}

// String implements fmt.Stringer for debug logging.
func (d *Dispatcher) String() string {
	return fmt.Sprintf("Dispatcher(%s, %d tools)", d.baseURL, len(d.table))
}
