package seeders

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedDevices registers an initial batch of device codes. Existing codes
// are left untouched.
func SeedDevices(ctx context.Context, db *pgxpool.Pool, count int) error {
	log.Printf("  - registering %d devices...", count)

	inserted := 0
	for i := 1; i <= count; i++ {
		code := fmt.Sprintf("Q-%03d", i)
		tag, err := db.Exec(ctx,
			"INSERT INTO devices (code) VALUES ($1) ON CONFLICT (code) DO NOTHING", code)
		if err != nil {
			return fmt.Errorf("failed to insert device %s: %w", code, err)
		}
		inserted += int(tag.RowsAffected())
	}

	log.Printf("    - %d new devices registered", inserted)
	return nil
}
