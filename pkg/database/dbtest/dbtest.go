// Package dbtest provisions a migrated PostgreSQL database for integration tests.
//
// TEST_DATABASE_URL points the tests at an existing database. Without it the
// tests start a throwaway postgres container when INTEGRATION is set and skip
// otherwise, so `go test ./...` stays hermetic on machines without Docker.
package dbtest

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ghuser/orderdesk/migrations/orderdesk"
	"github.com/ghuser/orderdesk/pkg/database"
	"github.com/ghuser/orderdesk/pkg/logger"
	"github.com/ghuser/orderdesk/pkg/migrator"
)

var (
	once      sync.Once
	sharedURL string
	setupErr  error
)

// Open returns a pool on a migrated database. Packages run in parallel against
// the same database, so tests must create their own companies and never rely
// on tables being empty.
func Open(t testing.TB) *database.Database {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" && os.Getenv("INTEGRATION") == "" {
		t.Skip("set TEST_DATABASE_URL or INTEGRATION=1 to run PostgreSQL integration tests")
	}

	once.Do(func() {
		if url == "" {
			url, setupErr = startContainer(context.Background())
			if setupErr != nil {
				return
			}
		}
		sharedURL = url
		setupErr = migrator.RunMigrations(context.Background(), sharedURL, orderdesk.FS)
	})
	if setupErr != nil {
		t.Fatalf("dbtest: setup: %v", setupErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	db, err := database.NewPool(ctx, sharedURL, logger.Nop())
	if err != nil {
		t.Fatalf("dbtest: connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// URL returns the connection string of the shared test database. Open must run first.
func URL() string {
	return sharedURL
}

// The container lives for the whole test binary; ryuk reaps it afterwards.
func startContainer(ctx context.Context) (string, error) {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "orderdesk",
			"POSTGRES_PASSWORD": "orderdesk",
			"POSTGRES_DB":       "orderdesk_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(90 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("start postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("container port: %w", err)
	}
	return fmt.Sprintf("postgres://orderdesk:orderdesk@%s:%s/orderdesk_test?sslmode=disable", host, port.Port()), nil
}
