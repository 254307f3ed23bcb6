package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/VotaMatch/VM-Backend/internal/db"
	"github.com/VotaMatch/VM-Backend/internal/embedding"
	"github.com/VotaMatch/VM-Backend/internal/match"
	"github.com/joho/godotenv"
	"github.com/lib/pq"
	"golang.org/x/time/rate"
)

// Backfills embeddings for opinions that are missing one, so the matching
// engine never has to hit the embedding provider on the request path.
func main() {
	_ = godotenv.Load(".env.local")

	db.Connect()
	match.Init()

	client, err := embedding.NewClient(embedding.LoadFromEnv())
	if err != nil {
		log.Fatalf("Embedding client init failed: %v", err)
	}

	dryRun := false
	for _, arg := range os.Args[1:] {
		if arg == "--dry-run" {
			dryRun = true
			fmt.Println("Mode: DRY RUN (no database writes)")
		}
	}
	if !dryRun {
		fmt.Println("Mode: LIVE (will write to database)")
	}
	fmt.Println()

	var pending []match.Opinion
	if err := db.DB.Where("embedding IS NULL").Find(&pending).Error; err != nil {
		log.Fatalf("Failed to load opinions: %v", err)
	}
	if len(pending) == 0 {
		fmt.Println("Nothing to do: every opinion already has an embedding.")
		return
	}
	fmt.Printf("Found %d opinions without embeddings\n", len(pending))

	// Stay well inside the provider's rate limits.
	limiter := rate.NewLimiter(rate.Every(200*time.Millisecond), 1)
	ctx := context.Background()

	embedded := 0
	failed := 0
	for _, opinion := range pending {
		if err := limiter.Wait(ctx); err != nil {
			log.Fatalf("Rate limiter: %v", err)
		}

		callCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		vec, err := client.Embed(callCtx, opinion.Statement())
		cancel()
		if err != nil {
			log.Printf("✗ Opinion %s: %v", opinion.ID, err)
			failed++
			continue
		}

		if dryRun {
			fmt.Printf("Would embed opinion %s (%d dims)\n", opinion.ID, len(vec))
			embedded++
			continue
		}

		err = db.DB.Model(&match.Opinion{}).
			Where("id = ?", opinion.ID).
			Update("embedding", pq.Float64Array(vec)).Error
		if err != nil {
			log.Printf("✗ Opinion %s: failed to save embedding: %v", opinion.ID, err)
			failed++
			continue
		}
		embedded++
	}

	fmt.Printf("\nDone: %d embedded, %d failed\n", embedded, failed)
}
