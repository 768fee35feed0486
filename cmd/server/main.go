package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"supply-chain-optimizer/internal/adapters/cache"
	"supply-chain-optimizer/internal/adapters/language"
	"supply-chain-optimizer/internal/adapters/repositories"
	"supply-chain-optimizer/internal/adapters/solver"
	"supply-chain-optimizer/internal/api"
	"supply-chain-optimizer/internal/platform/config"
	"supply-chain-optimizer/internal/platform/db"
	"supply-chain-optimizer/internal/platform/sysinfo"
	"supply-chain-optimizer/internal/ports"
	"supply-chain-optimizer/internal/services"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// main is the application composition root.
// It wires concrete adapters (Postgres or JSON dataset with SQLite history,
// Redis, nextmv/HiGHS, language service) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	settings, err := config.Load(config.Get("SETTINGS_PATH", "config/settings.yaml"))
	if err != nil {
		log.Fatal(err)
	}

	svc := &services.OptimizationService{
		Host: sysinfo.Collect(),
		Defaults: ports.SolveOptions{
			TimeLimit: settings.TimeLimit,
			MIPGap:    settings.MIPGap,
		},
	}

	if settings.DatabaseURL != "" {
		conn, err := db.Open(settings.DatabaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer conn.Close()

		if err := repositories.InitSchema(conn); err != nil {
			log.Fatal(err)
		}
		svc.Datasets = repositories.NewPostgresDatasetRepository(conn)
		svc.Runs = repositories.NewPostgresRunRepository(conn)
		svc.Cache = cache.NewSQLSolutionCache(conn, settings.CacheTTL)
	} else {
		svc.Datasets = repositories.NewJSONDatasetRepository(settings.SeedPath)

		if settings.SQLitePath == "" {
			log.Printf("DATABASE_URL not set, serving dataset from %s without run history", settings.SeedPath)
		} else {
			conn, err := db.OpenSQLite(settings.SQLitePath)
			if err != nil {
				log.Fatal(err)
			}
			defer conn.Close()

			if err := repositories.InitSQLiteSchema(conn); err != nil {
				log.Fatal(err)
			}
			svc.Runs = repositories.NewSQLiteRunRepository(conn)
			svc.Cache = cache.NewSQLiteSolutionCache(conn, settings.CacheTTL)
			log.Printf("DATABASE_URL not set, serving dataset from %s, run history in sqlite path=%s", settings.SeedPath, settings.SQLitePath)
		}
	}

	if settings.RedisAddr != "" {
		client, err := openRedis(settings.RedisAddr)
		if err != nil {
			log.Fatal(err)
		}
		defer client.Close()
		svc.Cache = cache.NewRedisSolutionCache(client, settings.CacheTTL)
		log.Printf("solution cache=redis addr=%s ttl=%s", settings.RedisAddr, settings.CacheTTL)
	}

	mipSolver, err := solver.NewNextmvSolver(config.Get("SOLVER_PROVIDER", solver.DefaultProvider))
	if err != nil {
		log.Fatal(err)
	}
	svc.Solver = mipSolver

	if settings.LanguageServiceURL != "" {
		parser, err := language.NewHTTPScenarioParser(
			settings.LanguageServiceURL,
			os.Getenv("LANGUAGE_SERVICE_API_KEY"),
			settings.LanguageTimeout,
		)
		if err != nil {
			log.Fatal(err)
		}
		svc.Parser = parser
	}

	router := api.NewRouter(svc)

	// A scenario request runs up to two solves plus a language call.
	writeTimeout := 2*settings.TimeLimit + settings.LanguageTimeout + 30*time.Second

	log.Printf("Server listening addr=:%s host=%q cpu=%q", settings.Port, svc.Host.Platform, svc.Host.CPUModel)
	srv := &http.Server{
		Addr:              ":" + settings.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func openRedis(addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("open redis: ping %s: %w", addr, err)
	}
	return client, nil
}

