package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/adastrum/photogate/internal/config"
	"github.com/adastrum/photogate/internal/database"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Flags
	action := flag.String("action", "up", "Migration action: up, down, version, force")
	version := flag.Int("version", 0, "Target version (for force action)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for migrations")
	}

	db, err := database.NewSQLDB(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	log.Println("Connected to database")

	migrator, err := database.NewMigrator(db, "photogate")
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer func() { _ = migrator.Close() }()

	switch *action {
	case "up":
		log.Println("Running migrations...")
		if err := migrator.Up(); err != nil {
			return err
		}
		log.Println("Migrations applied")

	case "down":
		log.Println("Rolling back last migration...")
		if err := migrator.Down(); err != nil {
			return err
		}
		log.Println("Rollback complete")

	case "version":
		v, dirty, err := migrator.Version()
		if err != nil {
			return err
		}
		log.Printf("Version: %d, dirty: %v", v, dirty)

	case "force":
		log.Printf("Forcing version %d...", *version)
		if err := migrator.Force(*version); err != nil {
			return err
		}
		log.Println("Version forced")

	default:
		return fmt.Errorf("unknown action: %s", *action)
	}

	return nil
}
