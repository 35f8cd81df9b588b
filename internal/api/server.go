// Package api exposes the HTTP and WebSocket surface of the print agent
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/printdesk/print-agent/internal/agent"
	"github.com/printdesk/print-agent/internal/registry"
	"github.com/printdesk/print-agent/internal/usb"
	"github.com/printdesk/print-agent/pkg/printjob"
)

// Default device used by the GET /print smoke test.
const (
	testPrintVID = 0x0FE6
	testPrintPID = 0x811E
)

// Server is the API server
type Server struct {
	router   *gin.Engine
	service  *agent.Service
	registry *registry.Registry
	hub      *hub
	upgrader websocket.Upgrader

	// discover is swapped in tests so handlers never touch real hardware
	discover func() ([]usb.DeviceInfo, error)
}

// NewServer creates a new API server
func NewServer(service *agent.Service, reg *registry.Registry) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.Default()
	router.Use(corsMiddleware())

	server := &Server{
		router:   router,
		service:  service,
		registry: reg,
		hub:      newHub(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins
			},
		},
		discover: usb.Discover,
	}

	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	s.router.GET("/print", s.handleTestPrint)
	s.router.POST("/print", s.handlePrint)

	s.router.GET("/printers", s.handleGetPrinters)
	s.router.POST("/printer/:id/name", s.handleSetPrinterName)

	s.router.GET("/ws", s.handleWebSocket)
}

// Run starts the server on addr, blocking until it exits
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

func (s *Server) handleIndex(c *gin.Context) {
	c.String(200, "Hello, world!")
}

// handleTestPrint fires a minimal job (init + reset + cut) at the default
// device, useful for checking the cable without a payload
func (s *Server) handleTestPrint(c *gin.Context) {
	info := &printjob.PrintInfo{
		Name: "oscar",
		VID:  testPrintVID,
		PID:  testPrintPID,
	}

	res := s.service.Submit(c.Request.Context(), info)
	s.broadcastJob(res, info)

	c.String(200, res.Status)
}

// handlePrint accepts a full print job
func (s *Server) handlePrint(c *gin.Context) {
	var info printjob.PrintInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	if err := printjob.Validate(&info); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	res := s.service.Submit(c.Request.Context(), &info)
	s.broadcastJob(res, &info)

	status := 200
	if !res.OK {
		status = 502
	}
	c.JSON(status, res)
}

// handleGetPrinters lists attached USB devices with their stable IDs
func (s *Server) handleGetPrinters(c *gin.Context) {
	devices, err := s.discover()
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	type printerView struct {
		ID          string `json:"id"`
		VID         uint16 `json:"vid"`
		PID         uint16 `json:"pid"`
		Description string `json:"description"`
		Name        string `json:"name,omitempty"`
	}

	printers := make([]printerView, 0, len(devices))
	for _, dev := range devices {
		id := s.registry.PrinterID(dev)
		printers = append(printers, printerView{
			ID:          id,
			VID:         dev.VID,
			PID:         dev.PID,
			Description: dev.Description,
			Name:        s.registry.PrinterName(id),
		})
	}

	c.JSON(200, gin.H{"printers": printers})
}

// handleSetPrinterName stores a custom name for a printer
func (s *Server) handleSetPrinterName(c *gin.Context) {
	printerID := c.Param("id")

	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "name is required"})
		return
	}

	if !s.registry.SetPrinterName(printerID, req.Name) {
		c.JSON(404, gin.H{"error": "printer not found"})
		return
	}

	c.JSON(200, gin.H{"success": true})
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
