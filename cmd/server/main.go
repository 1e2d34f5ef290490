// cmd/server/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/zageabb/reflex-AgentDemo/internal/app"
	"github.com/zageabb/reflex-AgentDemo/internal/config"
)

func main() {
	log.Println("🚀 starting reflex player server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	log.Printf("✅ config loaded, port: %s", cfg.Server.Port)

	application := app.New(cfg)
	if err := application.Initialize(); err != nil {
		log.Fatalf("failed to initialize: %v", err)
	}
	log.Println("✅ services initialized")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		log.Printf("❌ server stopped with error: %v", err)
		os.Exit(1)
	}
	log.Println("👋 server stopped")
}
