package main

import (
	"context"
	"flag"
	"log"
	"time"

	"catch/internal/clientside"
	"catch/internal/playerinput"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("💡 No .env file found, using environment variables only")
	}

	host := flag.String("host", "localhost", "server host")
	port := flag.Int("port", 8080, "server port")
	name := flag.String("name", "reference-client", "player name sent at connect")
	flag.Parse()

	log.Println("🎮 ================================")
	log.Println("🎮  CATCH - REFERENCE CLIENT")
	log.Println("🎮 ================================")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := clientside.Connect(ctx, 5*time.Second, *host, *port, *name)
	if err != nil {
		log.Fatalf("❌ connect failed: %v", err)
	}
	defer client.Close()

	log.Printf("✅ connected as player_id=%d, map=%q, tick_rate=%d",
		client.YourID(), client.GameInfo().MapName, client.GameInfo().TicksPerSecond)

	gs := clientside.NewGameState(256)

	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		if _, err := client.Service(); err != nil {
			log.Printf("⚠️ disconnected: %v", err)
			return
		}
		if client.Disconnected() {
			log.Println("🛑 server closed the connection")
			return
		}

		for client.NumTicks() > 0 {
			recvTime, t, ok := client.PopNextTick()
			if !ok {
				continue
			}
			gs.ApplyTick(recvTime, t)
		}

		if err := client.SendInput(playerinput.TimedPlayerInput{}); err != nil {
			log.Printf("⚠️ send input failed: %v", err)
		}
	}
}
