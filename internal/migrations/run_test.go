package migrations

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func getTestDSN(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var exists bool
	err := db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1
		)`, name).Scan(&exists)
	require.NoError(t, err)
	return exists
}

func TestLatestVersion(t *testing.T) {
	latest, err := latestVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(3), latest)
}

func TestMigrator_UpDownCheck(t *testing.T) {
	dsn := getTestDSN(t)

	mg, err := New(dsn)
	require.NoError(t, err)
	defer mg.Close()

	require.ErrorIs(t, mg.Check(), ErrNotMigrated)

	v, dirty, err := mg.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(0), v)
	assert.False(t, dirty)

	require.NoError(t, mg.Up())
	require.NoError(t, mg.Up(), "second Up must be a no-op")
	require.NoError(t, mg.Check())

	state, err := mg.State()
	require.NoError(t, err)
	assert.Equal(t, uint(3), state.Version)
	assert.Equal(t, uint(3), state.Latest)
	assert.False(t, state.Dirty)

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"users", "plan_choices", "subscriptions", "articles", "sessions", "payment_events"} {
		assert.True(t, tableExists(t, db, table), "table %s should exist", table)
	}

	var plans int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM plan_choices WHERE code IN ('ST', 'PR')`).Scan(&plans))
	assert.Equal(t, 2, plans)

	require.NoError(t, mg.Down(1))
	assert.False(t, tableExists(t, db, "payment_events"))
	assert.ErrorIs(t, mg.Check(), ErrNotMigrated)

	require.NoError(t, mg.Down(0))
	assert.False(t, tableExists(t, db, "users"))

	v, _, err = mg.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(0), v)
}
