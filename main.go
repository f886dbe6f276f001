package main

import (
	"context"
	"log"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/zuzivian/sgraphs/adapters/db/postgres"
	"github.com/zuzivian/sgraphs/adapters/opendata"
	"github.com/zuzivian/sgraphs/app"
	"github.com/zuzivian/sgraphs/internal/config"
	"github.com/zuzivian/sgraphs/internal/errors"
	"github.com/zuzivian/sgraphs/ui"
)

// initDatabase opens the optional catalog cache connection.
func initDatabase(appConfig *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}
	return db, nil
}

// refreshCatalogCache snapshots the first listing pages into the cache
// so the explorer keeps serving the catalog when the upstream is down.
func refreshCatalogCache(client *opendata.Client, repo *postgres.CatalogRepository) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	const pages = 5
	for page := 1; page <= pages; page++ {
		listing, err := client.ListDatasets(ctx, "", page, 100)
		if err != nil {
			log.Printf("[CacheRefresh] listing page %d failed: %v", page, err)
			return
		}
		if err := repo.UpsertDatasets(ctx, listing.Datasets); err != nil {
			log.Printf("[CacheRefresh] upsert failed: %v", err)
			return
		}
		if page*listing.PageSize >= listing.Total {
			break
		}
	}
	log.Printf("[CacheRefresh] catalog cache refreshed")
}

// startDebugServer exposes pprof on a separate listener.
func startDebugServer(port string) {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/debug/pprof", func(r chi.Router) {
		r.Get("/", pprof.Index)
		r.Get("/cmdline", pprof.Cmdline)
		r.Get("/profile", pprof.Profile)
		r.Get("/symbol", pprof.Symbol)
		r.Get("/trace", pprof.Trace)
		r.Get("/heap", pprof.Handler("heap").ServeHTTP)
		r.Get("/goroutine", pprof.Handler("goroutine").ServeHTTP)
		r.Get("/block", pprof.Handler("block").ServeHTTP)
		r.Get("/allocs", pprof.Handler("allocs").ServeHTTP)
	})

	go func() {
		addr := "localhost:" + port
		log.Printf("[Debug] pprof listening on http://%s/debug/pprof", addr)
		if err := http.ListenAndServe(addr, r); err != nil {
			log.Printf("[Debug] pprof server stopped: %v", err)
		}
	}()
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	client := opendata.NewClient(opendata.Config{
		BaseURL:       appConfig.OpenData.BaseURL,
		Timeout:       appConfig.OpenData.Timeout,
		PageSize:      appConfig.OpenData.PageSize,
		MaxRecords:    appConfig.OpenData.MaxRecords,
		MaxConcurrent: appConfig.OpenData.MaxConcurrent,
		RetryAttempts: appConfig.OpenData.RetryAttempts,
		RetryBackoff:  500 * time.Millisecond,
	})

	// Optional catalog cache
	var catalog ui.CatalogSource = client
	if appConfig.Database.Enabled {
		db, err := initDatabase(appConfig)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()

		repo := postgres.NewCatalogRepository(db)
		if err := repo.EnsureSchema(context.Background()); err != nil {
			log.Fatalf("Failed to prepare catalog cache: %v", err)
		}
		catalog = postgres.NewCachedCatalog(client, repo)
		go refreshCatalogCache(client, repo)
	} else {
		log.Println("DATABASE_URL not set, catalog cache disabled")
	}

	if appConfig.Profiling.Enabled {
		startDebugServer(appConfig.Profiling.Port)
	}

	server, err := ui.NewServer(catalog, app.NewChartService())
	if err != nil {
		log.Fatalf("Failed to initialize web server: %v", err)
	}
	if err := server.Start(":" + appConfig.Server.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
