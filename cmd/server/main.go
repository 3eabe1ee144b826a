package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"courier-route-service/internal/adapters/cache"
	"courier-route-service/internal/adapters/directions"
	"courier-route-service/internal/adapters/repositories"
	"courier-route-service/internal/api"
	"courier-route-service/internal/config"
	"courier-route-service/internal/metrics"
	"courier-route-service/internal/platform/db"
	"courier-route-service/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, Google, Redis/SQLite caches)
// behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	apiKey := os.Getenv("GOOGLE_MAPS_API_KEY")
	if strings.TrimSpace(apiKey) == "" {
		log.Fatal("GOOGLE_MAPS_API_KEY is required")
	}

	port := config.Get("PORT", "8080")

	pg, err := db.OpenPostgres(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer pg.Close()

	if err := repositories.InitSchema(pg); err != nil {
		log.Fatal(err)
	}

	geocodeCache, timeCache, err := buildCaches(pg)
	if err != nil {
		log.Fatal(err)
	}

	provider, err := directions.NewGoogleDirectionsProvider(apiKey, geocodeCache, timeCache)
	if err != nil {
		log.Fatal(err)
	}

	// The delay model is optional: without an artifact every stop gets
	// the neutral priority.
	var model *services.DelayModel
	if path := config.Get("DELAY_MODEL_PATH", ""); path != "" {
		model, err = services.LoadDelayModel(path)
		if err != nil {
			log.Fatalf("delay model: %v", err)
		}
		log.Printf("delay model loaded path=%s nodes=%d", path, len(model.Nodes))
	} else {
		log.Println("DELAY_MODEL_PATH not set, scoring with neutral priority")
	}

	couriers := repositories.NewPostgresCourierRepository(pg)
	shipments := repositories.NewPostgresShipmentRepository(pg)
	routes := repositories.NewPostgresRouteRepository(pg)

	optimizer := &services.Optimizer{
		Couriers:  couriers,
		Shipments: shipments,
		Routes:    routes,
		Provider:  provider,
		Model:     model,
	}

	metrics.RegisterDefault()
	router := api.NewRouter(optimizer, couriers, routes)

	// Timeouts are tuned for cold-cache optimization (external API latency).
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// buildCaches selects the provider cache backend. Postgres keeps cache
// rows next to the operational data; sqlite keeps them in a local file
// for single-node runs; redis adds expiry for shared deployments.
func buildCaches(pg *sql.DB) (directions.GeocodeCache, directions.TravelTimeCache, error) {
	backend := config.Get("CACHE_BACKEND", "postgres")

	switch backend {
	case "postgres":
		return cache.NewSQLGeocodeCache(pg), cache.NewSQLTravelTimeCache(pg), nil

	case "sqlite":
		path := config.Get("CACHE_DB_PATH", "data/cache.db")
		local, err := db.OpenSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		if err := repositories.InitSqliteCacheSchema(local); err != nil {
			return nil, nil, err
		}
		return cache.NewSqliteGeocodeCache(local), cache.NewSqliteTravelTimeCache(local), nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr: config.Get("REDIS_ADDR", "localhost:6379"),
			DB:   config.GetInt("REDIS_DB", 0),
		})
		ttl := time.Duration(config.GetInt("CACHE_TTL_HOURS", 24)) * time.Hour
		return cache.NewRedisGeocodeCache(client, ttl), cache.NewRedisTravelTimeCache(client, ttl), nil

	default:
		return nil, nil, fmt.Errorf("unknown CACHE_BACKEND %q (want postgres, sqlite, or redis)", backend)
	}
}
