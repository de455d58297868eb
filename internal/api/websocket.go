package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"remy/internal/models"
	"remy/internal/tools"
)

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// Hub tracks connected UI clients so cart changes made by voice show up in
// the browser without polling.
type Hub struct {
	mu      sync.Mutex
	clients map[*wsConnection]struct{}
}

// NewHub creates an empty client hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*wsConnection]struct{})}
}

func (h *Hub) add(c *wsConnection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) remove(c *wsConnection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

// BroadcastCart pushes a cart snapshot to every connected client.
func (h *Hub) BroadcastCart(c models.Cart) {
	payload, err := json.Marshal(gin.H{
		"type":       "cart_updated",
		"items":      c.Items,
		"totalPrice": c.TotalPrice(),
		"totalItems": c.TotalItems(),
	})
	if err != nil {
		log.Printf("ws: error marshaling cart update: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.enqueue(payload)
	}
}

// wsConnection maintains one WebSocket connection with a UI client. Inbound
// frames are tool calls, outbound frames are tool results and cart updates.
type wsConnection struct {
	conn   *websocket.Conn
	send   chan []byte
	mu     sync.Mutex
	server *Server
}

// handleWebSocket upgrades the voice-session channel.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws: failed to upgrade connection: %v", err)
		return
	}

	wsConn := &wsConnection{
		conn:   conn,
		send:   make(chan []byte, 256),
		server: s,
	}
	s.hub.add(wsConn)

	go wsConn.writePump()
	go wsConn.readPump()
}

// readPump pumps tool calls from the WebSocket connection to the dispatcher.
func (c *wsConnection) readPump() {
	defer func() {
		c.server.hub.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(64 * 1024)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("ws: connection error: %v", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps queued frames to the WebSocket connection.
func (c *wsConnection) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage treats each inbound frame as a tool call and sends the
// dispatch result back on the same connection.
func (c *wsConnection) handleMessage(message []byte) {
	var call tools.Call
	if err := json.Unmarshal(message, &call); err != nil || call.Name == "" {
		c.sendError("Expected a tool call: {name, parameters}")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		result := c.server.dispatch(ctx, call)
		payload, err := json.Marshal(gin.H{
			"type":   "tool_result",
			"tool":   call.Name,
			"result": result,
		})
		if err != nil {
			log.Printf("ws: error marshaling tool result: %v", err)
			return
		}
		c.enqueue(payload)
	}()
}

// enqueue queues a frame for delivery, dropping it when the client is slow.
func (c *wsConnection) enqueue(payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case c.send <- payload:
	default:
		log.Println("ws: buffer full, dropping message")
	}
}

// sendError sends an error frame to the client.
func (c *wsConnection) sendError(message string) {
	payload, _ := json.Marshal(gin.H{"type": "error", "error": message})
	c.enqueue(payload)
}
