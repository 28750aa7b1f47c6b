package postgresql

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cmlabs-hris/hris-notify/internal/pkg/database"
)

//go:embed schema.sql
var schemaSQL string

// ApplySchema creates any missing tables and indexes. It is safe to run repeatedly.
func ApplySchema(ctx context.Context, db *database.DB) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
