package postgresql_test

import (
	"context"
	"fmt"
	"os"

	"github.com/cmlabs-hris/hris-notify/internal/pkg/database"
	"github.com/cmlabs-hris/hris-notify/internal/repository/postgresql"
)

// TestDatabaseSetup wraps the database used by the integration tests.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and applies the schema.
// ok is false when the variable is unset.
func NewTestDatabase(ctx context.Context) (setup *TestDatabaseSetup, ok bool, err error) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		return nil, false, nil
	}

	db, err := database.NewPostgreSQLDB(ctx, dsn)
	if err != nil {
		return nil, true, fmt.Errorf("failed to connect to test database: %w", err)
	}
	if err := postgresql.ApplySchema(ctx, db); err != nil {
		db.Close()
		return nil, true, err
	}

	return &TestDatabaseSetup{DB: db}, true, nil
}

// TruncateAllTables empties every table the schema creates.
func (t *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tables := []string{
		"notifications",
		"devices",
		"attendance_records",
		"reconciliations",
		"employees",
		"users",
		"notification_templates",
		"email_profiles",
		"whatsapp_gateways",
		"telegram_settings",
		"advance_salary_requests",
		"visit_requests",
		"tasks",
	}

	for _, table := range tables {
		if _, err := t.DB.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}
	return nil
}

func (t *TestDatabaseSetup) Close() {
	t.DB.Close()
}
