package seeders

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"quipus-system/pkg/utils"
)

// SeedDefaultAdmin creates the bootstrap administrator account if no
// administrators exist yet.
func SeedDefaultAdmin(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - checking for existing administrators...")

	var count int64
	if err := db.QueryRow(ctx, "SELECT COUNT(*) FROM administrators").Scan(&count); err != nil {
		return fmt.Errorf("failed to count administrators: %w", err)
	}
	if count > 0 {
		log.Println("    - administrators already exist, skipping")
		return nil
	}

	hash, err := utils.HashPassword("admin123")
	if err != nil {
		return fmt.Errorf("failed to hash default password: %w", err)
	}

	_, err = db.Exec(ctx,
		`INSERT INTO administrators (name, username, role, password_hash)
		 VALUES ('Administrator', 'admin', 'administrator', $1)`, hash)
	if err != nil {
		return fmt.Errorf("failed to insert default administrator: %w", err)
	}

	log.Println("    - default administrator 'admin' created (change the password!)")
	return nil
}
