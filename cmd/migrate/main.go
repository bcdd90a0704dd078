package main

import (
	"flag"
	"fmt"
	"log"

	"greek-row/chapterhouse/internal/config"
	"greek-row/chapterhouse/internal/db"
)

func main() {
	direction := flag.String("direction", "up", "up, down or version")
	steps := flag.Int("steps", 1, "number of migrations to roll back with -direction=down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.Database.Driver != "postgres" {
		log.Fatalf("migrations only apply to postgres; sqlite is auto-migrated on startup")
	}
	dsn := cfg.Database.DSN()

	switch *direction {
	case "up":
		if err := db.MigrateUp(dsn); err != nil {
			log.Fatalf("%v", err)
		}
		fmt.Println("Migrations applied")
	case "down":
		if err := db.MigrateDown(dsn, *steps); err != nil {
			log.Fatalf("%v", err)
		}
		fmt.Printf("Rolled back %d migration(s)\n", *steps)
	case "version":
		v, dirty, err := db.MigrationVersion(dsn)
		if err != nil {
			log.Fatalf("%v", err)
		}
		fmt.Printf("Version %d (dirty=%v)\n", v, dirty)
	default:
		log.Fatalf("unknown direction %q", *direction)
	}
}
