package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/corvidhq/copilot-api/internal/config"
	"github.com/corvidhq/copilot-api/internal/pkg/database"
)

// getTestDB returns a database connection for integration tests.
// Tests are skipped if the database is not available.
func getTestDB(t *testing.T) *database.PostgresDB {
	if os.Getenv("POSTGRES_TEST_HOST") == "" {
		t.Skip("Skipping integration test: POSTGRES_TEST_HOST not set")
		return nil
	}

	cfg := config.PostgresConfig{
		Host:     os.Getenv("POSTGRES_TEST_HOST"),
		Port:     5432,
		User:     os.Getenv("POSTGRES_TEST_USER"),
		Password: os.Getenv("POSTGRES_TEST_PASS"),
		Database: os.Getenv("POSTGRES_TEST_DB"),
		SSLMode:  "disable",
		MaxConns: 5,
		MinConns: 1,
	}

	if cfg.Database == "" {
		cfg.Database = "test_copilot"
	}
	if cfg.User == "" {
		cfg.User = "postgres"
	}

	db, err := database.NewPostgres(context.Background(), cfg)
	if err != nil {
		t.Skipf("Skipping integration test: failed to connect to PostgreSQL: %v", err)
		return nil
	}

	return db
}

// cleanupAPIKeys removes test API keys by prefix
func cleanupAPIKeys(t *testing.T, db *database.PostgresDB, prefixes ...string) {
	ctx := context.Background()
	for _, prefix := range prefixes {
		if _, err := db.Pool.Exec(ctx, "DELETE FROM api_keys WHERE prefix = $1", prefix); err != nil {
			t.Logf("failed to clean up api key %s: %v", prefix, err)
		}
	}
}

// cleanupCandidates removes test candidates by email
func cleanupCandidates(t *testing.T, db *database.PostgresDB, emails ...string) {
	ctx := context.Background()
	for _, email := range emails {
		if _, err := db.Pool.Exec(ctx, "DELETE FROM candidates WHERE email = $1", email); err != nil {
			t.Logf("failed to clean up candidate %s: %v", email, err)
		}
	}
}

// cleanupRoles removes test roles by ID
func cleanupRoles(t *testing.T, db *database.PostgresDB, ids ...uuid.UUID) {
	ctx := context.Background()
	for _, id := range ids {
		if _, err := db.Pool.Exec(ctx, "DELETE FROM roles WHERE id = $1", id); err != nil {
			t.Logf("failed to clean up role %s: %v", id, err)
		}
	}
}
