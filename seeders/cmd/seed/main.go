package main

import (
	"context"
	"flag"
	"log"

	"quipus-system/pkg/config"
	"quipus-system/pkg/database/postgresql"
	"quipus-system/seeders"
)

func main() {
	runAdmin := flag.Bool("admin", false, "create the default administrator account")
	runDevices := flag.Bool("devices", false, "register the initial device batch")
	deviceCount := flag.Int("device-count", 30, "how many devices to register with -devices")
	runAll := flag.Bool("all", false, "run every seeder")

	flag.Parse()

	if !*runAdmin && !*runDevices && !*runAll {
		log.Println("no seeder selected")
		flag.PrintDefaults()
		return
	}

	cfg := config.New()
	dbPool := postgresql.ConnectDB(cfg.Postgres.DSN)
	defer dbPool.Close()

	ctx := context.Background()

	if *runAdmin || *runAll {
		if err := seeders.SeedDefaultAdmin(ctx, dbPool); err != nil {
			log.Fatalf("admin seeder failed: %v", err)
		}
	}
	if *runDevices || *runAll {
		if err := seeders.SeedDevices(ctx, dbPool, *deviceCount); err != nil {
			log.Fatalf("device seeder failed: %v", err)
		}
	}

	log.Println("seeding complete")
}
