package main

import (
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/printdesk/print-agent/internal/agent"
	"github.com/printdesk/print-agent/internal/api"
	"github.com/printdesk/print-agent/internal/registry"
	"github.com/printdesk/print-agent/internal/usb"
)

// Version is set during build via ldflags
var Version = "dev"

func main() {
	var (
		host         = flag.String("host", "127.0.0.1", "Address to bind")
		port         = flag.String("port", getPort(), "Port to listen on")
		registryPath = flag.String("registry", getRegistryPath(), "Printer registry file")
	)
	flag.Parse()

	reg, err := registry.New(*registryPath)
	if err != nil {
		log.Fatalf("Failed to create printer registry: %v", err)
	}

	transport := usb.NewTransport()
	service := agent.New(transport)
	server := api.NewServer(service, reg)

	monitor := usb.NewMonitor(2 * time.Second)
	monitor.OnAdded(func(dev usb.DeviceInfo) {
		log.Printf("Device attached: %s", dev.Description)
		server.BroadcastPrinterAdded(dev)
	})
	monitor.OnRemoved(func(dev usb.DeviceInfo) {
		log.Printf("Device detached: %s", dev.Description)
		server.BroadcastPrinterRemoved(dev)
	})
	monitor.Start()
	defer monitor.Stop()

	addr := net.JoinHostPort(*host, *port)
	log.Printf("print-agent %s listening on %s", Version, addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run(addr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("Server error: %v", err)
	case sig := <-sigCh:
		log.Printf("Received %v, shutting down", sig)
	}
}

func getPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "5978"
}

func getRegistryPath() string {
	if path := os.Getenv("PRINT_AGENT_REGISTRY"); path != "" {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "printers.json"
	}

	dir := filepath.Join(home, ".print-agent")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "printers.json"
	}
	return filepath.Join(dir, "printers.json")
}
