package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"gamblelog/database"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const defaultPostgresImage = "postgres:16-alpine"

// TestDatabase is a migrated Postgres running in a throwaway container
type TestDatabase struct {
	Container *postgres.PostgresContainer
	DB        *database.DB
	URL       string
}

// SetupTestDatabase starts Postgres, applies every migration and connects a pool.
// The container is removed when the test ends. Skipped with -short.
// TEST_POSTGRES_IMAGE overrides the image.
func SetupTestDatabase(t *testing.T) *TestDatabase {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	image := os.Getenv("TEST_POSTGRES_IMAGE")
	if image == "" {
		image = defaultPostgresImage
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx, image,
		postgres.WithDatabase("gamblelog_test"),
		postgres.WithUsername("gamblelog"),
		postgres.WithPassword("gamblelog"),
		postgres.BasicWaitStrategies(),
		testcontainers.WithLabels(map[string]string{
			"app":       "gamblelog",
			"test-name": t.Name(),
		}),
	)
	require.NoError(t, err)

	testDB := &TestDatabase{Container: container}
	t.Cleanup(func() { testDB.teardown(t) })

	testDB.URL, err = container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, database.RunMigrationsWithURL(testDB.URL))

	testDB.DB, err = database.NewConnection(ctx, testDB.URL, database.PoolOptions{MaxConns: 4})
	require.NoError(t, err)

	return testDB
}

// teardown closes the pool and terminates the container. Failures are logged so
// they never mask the test result.
func (td *TestDatabase) teardown(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Logf("recovered during container teardown: %v", r)
		}
	}()

	if td.DB != nil {
		td.DB.Close()
	}
	if td.Container == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := td.Container.Terminate(ctx); err != nil {
		t.Logf("failed to terminate test container: %v", err)
	}
}
