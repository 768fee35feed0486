package main

import (
	"database/sql"
	"flag"
	"log"
	"strings"
	"supply-chain-optimizer/internal/adapters/repositories"
	"supply-chain-optimizer/internal/platform/config"
	"supply-chain-optimizer/internal/platform/db"
	"supply-chain-optimizer/internal/services"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	seedPath := flag.String("seed", config.Get("SEED_PATH", "data/seeds/dataset.json"), "dataset document to load")
	checkOnly := flag.Bool("check", false, "validate the document and run the feasibility pre-check without touching the database")
	flag.Parse()

	if *checkOnly {
		if err := checkDataset(*seedPath); err != nil {
			log.Fatal(err)
		}
		return
	}

	databaseURL := config.Get("DATABASE_URL", "")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	if err := initAndSeed(conn, *seedPath); err != nil {
		log.Fatal(err)
	}
}

func initAndSeed(conn *sql.DB, seedPath string) error {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(conn); err != nil {
		return err
	}
	log.Println("Schema ready.")

	log.Printf("Seeding dataset from %s...", seedPath)
	if err := repositories.SeedFromJSON(conn, seedPath); err != nil {
		return err
	}
	log.Println("Seeding complete.")

	return nil
}

func checkDataset(seedPath string) error {
	data, err := repositories.ReadDatasetFile(seedPath)
	if err != nil {
		return err
	}
	log.Printf("dataset ok: sites=%d ports=%d target=%.2f", len(data.CollectionPoints), len(data.Ports), data.Production.TargetTons)

	for _, exclude := range []bool{true, false} {
		f, err := services.CheckFeasibility(data, exclude)
		if err != nil {
			return err
		}
		log.Printf("feasible exclude_special=%t achievable=%.2f margin=%.2f", exclude, f.Achievable, f.Margin)
	}
	return nil
}
