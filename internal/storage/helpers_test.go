package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/contrarian-report/internal/migrations"
	"github.com/magabrotheeeer/contrarian-report/internal/models"
)

// testDataFactory создает тестовые данные напрямую через SQL.
type testDataFactory struct {
	storage *Storage
}

func (f *testDataFactory) createUser(t *testing.T, username string, role models.Role) string {
	t.Helper()
	uid := uuid.NewString()
	_, err := f.storage.DB.Exec(`INSERT INTO users (uid, username, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)`,
		uid, username, username+"@example.com", "hashedpassword", role)
	require.NoError(t, err)
	return uid
}

func (f *testDataFactory) planID(t *testing.T, code string) int64 {
	t.Helper()
	var id int64
	require.NoError(t, f.storage.DB.QueryRow(`SELECT id FROM plan_choices WHERE code = $1`, code).Scan(&id))
	return id
}

func (f *testDataFactory) createSubscription(t *testing.T, userUID, code, externalID string, active bool, next time.Time) int64 {
	t.Helper()
	var id int64
	err := f.storage.DB.QueryRow(`INSERT INTO subscriptions
		(user_uid, plan_choice_id, cost, external_subscription_id, is_active, next_payment_date)
		SELECT $1, id, cost, $3, $4, $5 FROM plan_choices WHERE code = $2
		RETURNING id`, userUID, code, externalID, active, next).Scan(&id)
	require.NoError(t, err)
	return id
}

func (f *testDataFactory) count(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, f.storage.DB.QueryRow(query, args...).Scan(&n))
	return n
}

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет все миграции.
func setupTestDatabase(t *testing.T) (*Storage, *testDataFactory) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	ctx := context.Background()
	pgPort := nat.Port("5432/tcp")

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{string(pgPort)},
		Env: map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(pgPort),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(3 * time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, pgPort)
	require.NoError(t, err, "failed to get port")

	dsn := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())

	var storage *Storage
	for range 10 {
		storage, err = New(dsn)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")
	t.Cleanup(func() {
		_ = storage.Close()
	})

	mg, err := migrations.New(dsn)
	require.NoError(t, err)
	require.NoError(t, mg.Up())
	require.NoError(t, mg.Close())

	return storage, &testDataFactory{storage: storage}
}
