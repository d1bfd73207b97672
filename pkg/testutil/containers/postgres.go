//go:build integration

package containers

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"deedgate/internal/platform/database"
)

// PostgresContainer is a migrated Postgres shared by the integration suites of one package.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB
}

// NewPostgresContainer starts Postgres 17, opens a pool through database.New and
// applies the embedded schema. Ryuk reaps the container when the test binary exits,
// so no t.Cleanup is registered.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:17-alpine",
		postgres.WithDatabase("deedgate_test"),
		postgres.WithUsername("deedgate"),
		postgres.WithPassword("deedgate"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	fail := func(step string, err error) {
		_ = container.Terminate(ctx)
		t.Fatalf("%s: %v", step, err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		fail("postgres dsn", err)
	}
	pool, err := database.New(ctx, database.Config{URL: dsn, MaxOpenConns: 10, MaxIdleConns: 5})
	if err != nil {
		fail("open postgres", err)
	}
	if err := database.Migrate(ctx, pool.DB()); err != nil {
		_ = pool.Close()
		fail("migrate", err)
	}

	return &PostgresContainer{Container: container, DSN: dsn, DB: pool.DB()}
}

// TruncateTables empties the named tables in one statement so suites start clean
// without restarting the container.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	_, err := p.DB.ExecContext(ctx, "TRUNCATE TABLE "+strings.Join(tables, ", ")+" CASCADE")
	return err
}
