package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// GlobalHub is the single hub instance for the whole process.
var GlobalHub = NewHub()

// notification is pushed to every connected view after a successful mutation
// so it can re-fetch its visible date range.
type notification struct {
	Type string `json:"type"`
}

type hubClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub fans change notifications out to connected websocket clients. Clients
// never send application data; the read side exists only to notice closes.
type Hub struct {
	clients    map[*hubClient]bool
	broadcast  chan []byte
	register   chan *hubClient
	unregister chan *hubClient
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan []byte, 8),
		register:   make(chan *hubClient),
		unregister: make(chan *hubClient),
		clients:    make(map[*hubClient]bool),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			slog.Info("View connected", "clients", count)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			slog.Info("View disconnected", "clients", count)

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// NotifyEventsChanged tells every connected view the event set changed.
func (h *Hub) NotifyEventsChanged() {
	msg, err := json.Marshal(notification{Type: "events_changed"})
	if err != nil {
		slog.Error("Failed to marshal notification", "error", err)
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		slog.Warn("Notification dropped, hub is backed up")
	}
}

// ServeWS upgrades the connection and attaches it to the hub.
func ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("Websocket upgrade failed", "error", err)
		return
	}

	client := &hubClient{hub: GlobalHub, conn: conn, send: make(chan []byte, 8)}
	GlobalHub.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *hubClient) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (c *hubClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
