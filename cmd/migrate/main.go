package main

import (
	"flag"
	"log"

	"pivot-graph-be/internal/config"
	"pivot-graph-be/internal/model"
	"pivot-graph-be/pkg/database"
)

// graphModels are migrated in order and dropped in reverse.
var graphModels = []interface{}{
	&model.Pivot{},
	&model.Investigation{},
	&model.User{},
}

func main() {
	drop := flag.Bool("drop", false, "drop the graph tables before migrating")
	flag.Parse()

	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.App.Environment != "production")
	if err != nil {
		log.Fatalf("connect: %v", err)
	}

	if *drop {
		log.Println("Dropping graph tables")
		for i := len(graphModels) - 1; i >= 0; i-- {
			if err := db.Migrator().DropTable(graphModels[i]); err != nil {
				log.Fatalf("drop %T: %v", graphModels[i], err)
			}
		}
	}

	if err := db.AutoMigrate(graphModels...); err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}
	log.Printf("Migrated %d graph tables", len(graphModels))
}
