package main

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"

	"route-segment-cache/internal/adapters/cache"
	"route-segment-cache/internal/adapters/distance"
	"route-segment-cache/internal/adapters/repositories"
	"route-segment-cache/internal/api"
	"route-segment-cache/internal/config"
	"route-segment-cache/internal/platform/db"
	"route-segment-cache/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, Redis, Google Maps) behind ports and
// starts the HTTP server.
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
	port := config.Get("PORT", "8080")

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

	// Distance results are cached in Redis for 30 days to avoid repeated
	// provider calls for the same rounded coordinate pairs.
	distanceCache := cache.NewRedisDistanceCache(rdb)
	distanceService := services.NewDistanceService(distanceCache, provider)
	reconciler := services.NewReconciler(distanceService)

	repo := repositories.NewPostgresRecordRepository(pg)
	router := api.NewRouter(repo, reconciler)

	// Write timeout allows for cold-cache reconciliations (external API latency).
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}
