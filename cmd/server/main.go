package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"catch/internal/api"
	"catch/internal/config"
	"catch/internal/mapmodel"
	"catch/internal/serverside"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("💡 No .env file found, using environment variables only")
	}

	log.Println("🎮 ================================")
	log.Println("🎮  CATCH - GAME SERVER")
	log.Println("🎮 ================================")

	cfg := config.Load()
	log.Printf("🛡️ Resource limits: %d players, %d projectiles, %d enemies, %d items",
		cfg.Limits.MaxPlayers, cfg.Limits.MaxProjectiles, cfg.Limits.MaxEnemies, cfg.Limits.MaxItems)
	log.Printf("⏱️  Simulation: %d ticks/s, map %q, respawn delay %.1fs",
		cfg.Sim.TicksPerSecond, cfg.Sim.MapName, cfg.Sim.RespawnDelayS)

	gameMap := mapmodel.NewTestMap()
	srv := serverside.NewServer(cfg, gameMap)

	debugCfg := api.DefaultObservabilityConfig()
	if os.Getenv("DISABLE_DEBUG_SERVER") != "true" {
		if err := api.StartDebugServer(debugCfg); err != nil {
			log.Printf("⚠️ Debug server disabled: %v", err)
		}
	}

	adminServer := api.NewServer(srv)
	adminAddr := os.Getenv("ADMIN_API_ADDR")
	if adminAddr == "" {
		adminAddr = ":8090"
	}
	go func() {
		if err := adminServer.Start(adminAddr); err != nil {
			log.Printf("⚠️ admin API exited: %v", err)
		}
	}()

	go func() {
		if err := srv.Start(cfg.Transport.ListenAddr, cfg.Limits.MaxPlayers); err != nil {
			log.Fatalf("❌ game server exited: %v", err)
		}
	}()

	log.Println("✅ Server ready! Press Ctrl+C to stop.")
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down...")
	adminServer.Stop()
	log.Println("👋 Goodbye!")
}
