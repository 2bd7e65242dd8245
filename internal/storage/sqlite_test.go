package storage

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roeezolantz/errdex/internal/errordb"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "errdex.db"), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func sampleRecords() []errordb.Record {
	return []errordb.Record{
		{Name: "Locked", Signature: "Locked()", Inputs: []string{}, InputTypes: []string{}, Source: "Vault.sol", Selector: "0x0f2e5b6c"},
		{Name: "Unauthorized", Signature: "Unauthorized(address)", Inputs: []string{"caller"}, InputTypes: []string{"address"}, Source: "Ownable.sol", Selector: "0x8e4a23d6"},
	}
}

func TestSQLiteDatabaseLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	db := &Database{ID: uuid.New().String(), Name: "protocol-errors", Version: "0.1.0", Description: "core errors"}
	require.NoError(t, store.CreateDatabase(ctx, db, sampleRecords()))

	t.Run("get", func(t *testing.T) {
		got, err := store.GetDatabase(ctx, "protocol-errors", "0.1.0")
		require.NoError(t, err)
		assert.Equal(t, db.ID, got.ID)
		assert.Equal(t, "core errors", got.Description)
		assert.Equal(t, 2, got.RecordCount)
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := store.GetDatabase(ctx, "protocol-errors", "9.9.9")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("records come back in selector order", func(t *testing.T) {
		records, err := store.GetRecords(ctx, db.ID)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "Locked", records[0].Name)
		assert.Equal(t, []string{"caller"}, records[1].Inputs)
		assert.NotNil(t, records[0].Inputs)
	})

	t.Run("duplicate version rejected", func(t *testing.T) {
		dup := &Database{ID: uuid.New().String(), Name: "protocol-errors", Version: "0.1.0"}
		err := store.CreateDatabase(ctx, dup, nil)
		assert.ErrorIs(t, err, ErrVersionExists)
	})

	t.Run("exists", func(t *testing.T) {
		ok, err := store.DatabaseExists(ctx, "protocol-errors", "0.1.0")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.DatabaseExists(ctx, "protocol-errors", "0.2.0")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("versions", func(t *testing.T) {
		next := &Database{ID: uuid.New().String(), Name: "protocol-errors", Version: "0.1.1"}
		require.NoError(t, store.CreateDatabase(ctx, next, sampleRecords()))

		versions, err := store.GetVersions(ctx, "protocol-errors")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"0.1.0", "0.1.1"}, versions)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.DeleteDatabase(ctx, "protocol-errors", "0.1.1"))
		_, err := store.GetDatabase(ctx, "protocol-errors", "0.1.1")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSQLiteLookupAndSearch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	db := &Database{ID: uuid.New().String(), Name: "lookup-db", Version: "1.0.0"}
	require.NoError(t, store.CreateDatabase(ctx, db, sampleRecords()))

	t.Run("lookup hit", func(t *testing.T) {
		r, err := store.LookupSelector(ctx, db.ID, "0x8e4a23d6")
		require.NoError(t, err)
		assert.Equal(t, "Unauthorized", r.Name)
		assert.Equal(t, []string{"address"}, r.InputTypes)
	})

	t.Run("lookup miss", func(t *testing.T) {
		_, err := store.LookupSelector(ctx, db.ID, "0xffffffff")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("search case-insensitive", func(t *testing.T) {
		records, err := store.SearchRecords(ctx, db.ID, "UNAUTH")
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Unauthorized", records[0].Name)
	})

	t.Run("search no match", func(t *testing.T) {
		records, err := store.SearchRecords(ctx, db.ID, "nothing")
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestSQLiteListDatabases(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"alpha", "beta", "gamma"} {
		db := &Database{ID: uuid.New().String(), Name: name, Version: "1.0.0"}
		require.NoError(t, store.CreateDatabase(ctx, db, sampleRecords()))
	}

	t.Run("pagination", func(t *testing.T) {
		page, err := store.ListDatabases(ctx, DatabaseFilter{}, PaginationParams{Limit: 2})
		require.NoError(t, err)
		require.Len(t, page.Data, 2)
		assert.True(t, page.HasMore)
		assert.Equal(t, "beta", page.NextCursor)

		rest, err := store.ListDatabases(ctx, DatabaseFilter{}, PaginationParams{Limit: 2, Cursor: page.NextCursor})
		require.NoError(t, err)
		require.Len(t, rest.Data, 1)
		assert.Equal(t, "gamma", rest.Data[0].Name)
		assert.False(t, rest.HasMore)
	})

	t.Run("filter", func(t *testing.T) {
		page, err := store.ListDatabases(ctx, DatabaseFilter{Query: "amm"}, PaginationParams{Limit: 10})
		require.NoError(t, err)
		require.Len(t, page.Data, 1)
		assert.Equal(t, "gamma", page.Data[0].Name)
	})
}

func TestSQLiteOwnership(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	owner, err := store.GetDatabaseOwner(ctx, "fresh")
	require.NoError(t, err)
	assert.Empty(t, owner)

	key, err := store.CreateAPIKey(ctx, "ci")
	require.NoError(t, err)
	ak, err := store.ValidateAPIKey(ctx, key)
	require.NoError(t, err)

	require.NoError(t, store.SetDatabaseOwner(ctx, "fresh", ak.ID))
	owner, err = store.GetDatabaseOwner(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, ak.ID, owner)

	// First owner wins.
	require.NoError(t, store.SetDatabaseOwner(ctx, "fresh", "someone-else"))
	owner, err = store.GetDatabaseOwner(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, ak.ID, owner)
}

func TestSQLiteAPIKeys(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	key, err := store.CreateAPIKey(ctx, "deploy-bot")
	require.NoError(t, err)
	assert.Contains(t, key, "edx_key_")

	t.Run("validate", func(t *testing.T) {
		ak, err := store.ValidateAPIKey(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "deploy-bot", ak.Name)
	})

	t.Run("validate unknown", func(t *testing.T) {
		_, err := store.ValidateAPIKey(ctx, "edx_key_bogus")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("revoke", func(t *testing.T) {
		ak, err := store.ValidateAPIKey(ctx, key)
		require.NoError(t, err)
		require.NoError(t, store.RevokeAPIKey(ctx, ak.ID))

		_, err = store.ValidateAPIKey(ctx, key)
		assert.ErrorIs(t, err, ErrNotFound)

		keys, err := store.ListAPIKeys(ctx)
		require.NoError(t, err)
		assert.Empty(t, keys)
	})

	t.Run("validate surfaces query errors", func(t *testing.T) {
		closed, err := NewSQLiteStore(filepath.Join(t.TempDir(), "closed.db"), slog.New(slog.DiscardHandler))
		require.NoError(t, err)
		require.NoError(t, closed.Migrate(context.Background()))
		key, err := closed.CreateAPIKey(context.Background(), "gone")
		require.NoError(t, err)
		require.NoError(t, closed.Close())

		ak, err := closed.ValidateAPIKey(context.Background(), key)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
		assert.Nil(t, ak)
	})
}
