package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/example/studysync/internal/remote"
	"github.com/example/studysync/internal/scheduler"
	"github.com/example/studysync/internal/store"
	enginesync "github.com/example/studysync/internal/sync"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := store.Connect(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	course := os.Getenv("COURSE_SLUG")
	if course == "" {
		log.Fatal("COURSE_SLUG environment variable is not set")
	}
	syncURL := os.Getenv("SYNC_URL")
	if syncURL == "" {
		log.Fatal("SYNC_URL environment variable is not set")
	}
	token := os.Getenv("SYNC_TOKEN")
	if token == "" {
		log.Fatal("SYNC_TOKEN environment variable is not set")
	}

	client, err := remote.NewClient(syncURL, token)
	if err != nil {
		log.Fatalf("Failed to create record service client: %v", err)
	}

	gateway := store.NewGateway(course)
	engine := enginesync.New(gateway, client, enginesync.DefaultConfig())
	engine.Start(ctx)

	background := scheduler.New(engine)
	background.Start()

	log.Printf("Sync engine started for course %s (user %s). Press Ctrl+C to stop.", course, client.UserID())

	<-sigChan
	log.Println("Shutting down...")
	cancel()
	background.Stop()

	// One final best-effort push of anything still dirty
	engine.Stop()
	log.Println("Sync engine stopped")
}
