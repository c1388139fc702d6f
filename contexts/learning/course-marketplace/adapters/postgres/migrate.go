package postgresadapter

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Migrate creates the course id sequence and the module tables. It is safe
// to run on every start.
func Migrate(ctx context.Context, db *gorm.DB) error {
	tx := db.WithContext(ctx)
	// gorm-postgres-enforcer: allow-raw-sql sequence DDL has no gorm builder
	if err := tx.Exec("CREATE SEQUENCE IF NOT EXISTS " + courseIDSequence + " MINVALUE 0 START WITH 0").Error; err != nil {
		return fmt.Errorf("create %s: %w", courseIDSequence, err)
	}
	if err := tx.AutoMigrate(
		&courseModel{},
		&userModel{},
		&transactionModel{},
		&outboxModel{},
	); err != nil {
		return fmt.Errorf("auto migrate course marketplace: %w", err)
	}
	return nil
}
