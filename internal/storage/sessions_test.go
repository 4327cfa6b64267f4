package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/contrarian-report/internal/models"
)

func TestStorage_Sessions(t *testing.T) {
	s, f := setupTestDatabase(t)
	ctx := context.Background()
	now := nowUTC()

	uid := f.createUser(t, "sessioned", models.RoleWriter)
	live := models.Session{ID: uuid.NewString(), UserUID: uid, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	stale := models.Session{ID: uuid.NewString(), UserUID: uid, CreatedAt: now, ExpiresAt: now.Add(-time.Minute)}
	require.NoError(t, s.CreateSession(ctx, live))
	require.NoError(t, s.CreateSession(ctx, stale))

	t.Run("get joins user", func(t *testing.T) {
		got, err := s.GetSession(ctx, live.ID)
		require.NoError(t, err)
		assert.Equal(t, "sessioned", got.Username)
		assert.Equal(t, models.RoleWriter, got.Role)
		assert.False(t, got.Expired(now))
	})

	t.Run("extend", func(t *testing.T) {
		require.NoError(t, s.ExtendSession(ctx, live.ID, now.Add(2*time.Hour)))
		got, err := s.GetSession(ctx, live.ID)
		require.NoError(t, err)
		assert.WithinDuration(t, now.Add(2*time.Hour), got.ExpiresAt, time.Millisecond)
	})

	t.Run("delete expired", func(t *testing.T) {
		n, err := s.DeleteExpiredSessions(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		_, err = s.GetSession(ctx, stale.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete all for user", func(t *testing.T) {
		second := models.Session{ID: uuid.NewString(), UserUID: uid, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
		require.NoError(t, s.CreateSession(ctx, second))

		listed, err := s.ListUserSessionIDs(ctx, uid)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{live.ID, second.ID}, listed)

		ids, err := s.DeleteUserSessions(ctx, uid)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{live.ID, second.ID}, ids)

		require.NoError(t, s.DeleteSession(ctx, live.ID), "deleting a missing session is not an error")
	})
}

func TestStorage_ListTables(t *testing.T) {
	s, _ := setupTestDatabase(t)

	tables, err := s.ListTables(context.Background())
	require.NoError(t, err)

	byName := make(map[string]models.TableInfo)
	for _, tbl := range tables {
		byName[tbl.Name] = tbl
	}
	for _, name := range []string{"users", "plan_choices", "subscriptions", "articles", "sessions", "payment_events", "schema_migrations"} {
		assert.Contains(t, byName, name)
	}

	articles := byName["articles"]
	require.NotEmpty(t, articles.Columns)
	assert.Equal(t, "id", articles.Columns[0].Name)
	assert.Equal(t, "bigint", articles.Columns[0].Type)
	assert.False(t, articles.Columns[0].Nullable)
	require.NotNil(t, articles.Columns[0].Default)
	assert.Contains(t, *articles.Columns[0].Default, "nextval")
}
