package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"

	"route-segment-cache/internal/adapters/cache"
	"route-segment-cache/internal/adapters/distance"
	"route-segment-cache/internal/adapters/repositories"
	"route-segment-cache/internal/config"
	"route-segment-cache/internal/platform/db"
	"route-segment-cache/internal/services"
)

// Batch reconciliation over every historical record. Takes no arguments;
// prints a textual summary report on completion. Provider calls are paced to
// respect external rate limits.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	mapsKey := os.Getenv("GOOGLE_MAPS_API_KEY")
	if strings.TrimSpace(mapsKey) == "" {
		log.Fatal("GOOGLE_MAPS_API_KEY is required")
	}

	redisAddr := config.Get("REDIS_ADDR", "localhost:6379")

	paceMs, err := strconv.Atoi(config.Get("BACKFILL_PACE_MS", "500"))
	if err != nil || paceMs < 0 {
		log.Fatal("BACKFILL_PACE_MS must be a non-negative integer")
	}

	pg, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer pg.Close()

	if err := repositories.InitSchema(pg); err != nil {
		log.Fatal(err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer rdb.Close()

	provider, err := distance.NewGoogleRouteProvider(mapsKey)
	if err != nil {
		log.Fatal(err)
	}

	distanceCache := cache.NewRedisDistanceCache(rdb)
	distanceService := services.NewDistanceService(distanceCache, provider)

	repo := repositories.NewPostgresRecordRepository(pg)
	backfill := services.NewBackfill(repo, distanceService, time.Duration(paceMs)*time.Millisecond)

	log.Println("Starting backfill...")
	report, err := backfill.Run(context.Background())
	if err != nil {
		log.Fatalf("backfill aborted: %v", err)
	}

	fmt.Println("Backfill complete.")
	fmt.Print(report.Summary())
}
