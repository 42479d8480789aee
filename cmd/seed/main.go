package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/globetrotter/api/internal/config"
	"github.com/globetrotter/api/internal/database"
	"github.com/globetrotter/api/internal/model"
	"github.com/globetrotter/api/internal/repository"
	"github.com/globetrotter/api/internal/service"
)

func main() {
	// Flags for customization
	filePath := flag.String("file", "./data/destinations.json", "Path to destination dataset (JSON array)")
	timeout := flag.Duration("timeout", 60*time.Second, "Import timeout")
	outputJSON := flag.Bool("json", false, "Output as JSON")

	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	data, err := os.ReadFile(*filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading dataset: %v\n", err)
		os.Exit(1)
	}

	var records []model.DestinationRecord
	if err := json.Unmarshal(data, &records); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing dataset: %v\n", err)
		os.Exit(1)
	}

	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
	})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to database: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	destService := service.NewDestinationService(service.DestinationServiceConfig{
		Repo: repository.NewDestinationRepository(db),
	})

	inserted, err := destService.Import(ctx, records)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing destinations: %v\n", err)
		os.Exit(1)
	}
	skipped := len(records) - inserted

	if *outputJSON {
		output := map[string]any{
			"inserted": inserted,
			"skipped":  skipped,
			"source":   *filePath,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(output)
	} else {
		fmt.Println("Destination Catalog Seeded")
		fmt.Println("==========================")
		fmt.Printf("Source:    %s\n", *filePath)
		fmt.Printf("Inserted:  %d\n", inserted)
		fmt.Printf("Skipped:   %d\n", skipped)
	}
}
