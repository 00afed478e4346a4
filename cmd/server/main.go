package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avvvet/n8n-conversation/internal/config"
	"github.com/avvvet/n8n-conversation/internal/exposure"
	"github.com/avvvet/n8n-conversation/internal/handlers"
	"github.com/avvvet/n8n-conversation/internal/hass"
	"github.com/avvvet/n8n-conversation/internal/transport"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (for development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	log.Println("🚀 Starting n8n conversation bridge...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	log.Printf("📋 Service: %s", cfg.ServiceName)
	log.Printf("📡 NATS URL: %s", cfg.NatsURL)
	for _, inst := range cfg.Installations {
		log.Printf("🔗 Installation %q -> %s (ai_task: %t, timeout: %ds)", inst.Name, inst.WebhookURL, inst.HasAITask(), inst.Timeout)
	}

	// Host registries
	registry, closeRegistry, err := openRegistry(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to open host registry: %v", err)
	}
	defer closeRegistry()

	installations := handlers.NewInstallations(cfg.Installations, exposure.NewCollector(registry))
	log.Println("✅ Agents initialized")

	// Initialize NATS transport
	log.Println("📡 Connecting to NATS...")
	natsTransport, err := transport.NewNATSTransport(cfg, installations)
	if err != nil {
		log.Fatalf("❌ Failed to initialize NATS transport: %v", err)
	}
	defer natsTransport.Close()

	// Start listening for requests
	if err := natsTransport.Start(); err != nil {
		log.Fatalf("❌ Failed to start NATS transport: %v", err)
	}

	// Optional HTTP ingress
	httpServer := transport.NewHTTPServer(installations)
	if cfg.HTTPAddr != "" {
		go func() {
			log.Printf("🌐 HTTP ingress listening on %s", cfg.HTTPAddr)
			if err := httpServer.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("⚠️ HTTP ingress stopped: %v", err)
			}
		}()
	}

	log.Println("✅ n8n conversation bridge is running!")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Block until signal received
	sig := <-sigChan
	log.Printf("🛑 Received signal: %v", sig)
	log.Println("🔄 Shutting down gracefully...")

	if cfg.HTTPAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := httpServer.Shutdown(ctx); err != nil {
			log.Printf("⚠️ Error shutting down HTTP ingress: %v", err)
		}
		cancel()
	}

	if err := natsTransport.Close(); err != nil {
		log.Printf("⚠️ Error closing NATS transport: %v", err)
	}

	log.Println("👋 n8n conversation bridge stopped")
}

// openRegistry picks the Redis mirror, then a YAML snapshot, then an empty registry
func openRegistry(cfg *config.Config) (hass.Registry, func(), error) {
	switch {
	case cfg.RedisURL != "":
		log.Printf("💾 Redis URL: %s", cfg.RedisURL)
		store, err := hass.NewRedisStore(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		log.Println("✅ Redis connected")
		return store, func() {
			if err := store.Close(); err != nil {
				log.Printf("⚠️ Error closing Redis: %v", err)
			}
		}, nil

	case cfg.SnapshotFile != "":
		snap, err := hass.LoadSnapshot(cfg.SnapshotFile)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("📂 Loaded registry snapshot %s (%d states)", cfg.SnapshotFile, len(snap.StateList))
		return snap, func() {}, nil

	default:
		log.Println("⚠️ No host registry configured, no entities will be exposed")
		return &hass.Snapshot{}, func() {}, nil
	}
}
