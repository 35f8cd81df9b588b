package api

import (
	"log"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/printdesk/print-agent/internal/agent"
	"github.com/printdesk/print-agent/internal/usb"
	"github.com/printdesk/print-agent/pkg/printjob"
)

// WebSocket event types
const (
	EventJobCompleted   = "job_completed"
	EventJobFailed      = "job_failed"
	EventPrinterAdded   = "printer_added"
	EventPrinterRemoved = "printer_removed"
)

// WSMessage represents a WebSocket event message
type WSMessage struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data"`
}

// hub tracks connected listen-only clients for event broadcasts
type hub struct {
	mu      sync.RWMutex
	clients map[*wsClient]bool
}

func newHub() *hub {
	return &hub{clients: make(map[*wsClient]bool)}
}

func (h *hub) add(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
}

func (h *hub) remove(c *wsClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

func (h *hub) broadcast(msg WSMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			// Client send buffer full, skip
		}
	}
}

type wsClient struct {
	conn *websocket.Conn
	send chan WSMessage
	hub  *hub
}

// handleWebSocket upgrades the connection and streams agent events
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &wsClient{
		conn: conn,
		send: make(chan WSMessage, 64),
		hub:  s.hub,
	}

	go client.writePump()
	go client.readPump()
}

func (c *wsClient) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			log.Printf("WebSocket write error: %v", err)
			return
		}
	}
}

// readPump keeps the connection alive and tears the client down on close.
// Clients are listen-only; inbound frames are discarded.
func (c *wsClient) readPump() {
	c.hub.add(c)
	defer func() {
		c.hub.remove(c)
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}
	}
}

func (s *Server) broadcastJob(res agent.Result, info *printjob.PrintInfo) {
	event := EventJobCompleted
	if !res.OK {
		event = EventJobFailed
	}

	s.hub.broadcast(WSMessage{
		Event: event,
		Data: map[string]any{
			"job_id": res.JobID,
			"name":   info.Name,
			"vid":    info.VID,
			"pid":    info.PID,
			"kind":   res.Kind,
			"status": res.Status,
		},
	})
}

// BroadcastPrinterAdded announces a newly attached device to all clients
func (s *Server) BroadcastPrinterAdded(dev usb.DeviceInfo) {
	s.hub.broadcast(WSMessage{
		Event: EventPrinterAdded,
		Data: map[string]any{
			"vid":         dev.VID,
			"pid":         dev.PID,
			"description": dev.Description,
		},
	})
}

// BroadcastPrinterRemoved announces a detached device to all clients
func (s *Server) BroadcastPrinterRemoved(dev usb.DeviceInfo) {
	s.hub.broadcast(WSMessage{
		Event: EventPrinterRemoved,
		Data: map[string]any{
			"vid":         dev.VID,
			"pid":         dev.PID,
			"description": dev.Description,
		},
	})
}
