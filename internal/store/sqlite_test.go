package store_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sankalp-SISL/agentspace/internal/store"
)

const (
	selectQuery = "SELECT value FROM kv WHERE key = ?"
	upsertQuery = "INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at"
	deleteQuery = "DELETE FROM kv WHERE key = ?"
)

func setupSQLiteStore(t *testing.T) (store.Store, sqlmock.Sqlmock) {
	db, mockDB, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return store.NewSQLite(db), mockDB
}

func TestSQLite_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		s, mockDB := setupSQLiteStore(t)
		mockDB.ExpectQuery(selectQuery).
			WithArgs("k").
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(`{"name":"a","count":3}`))

		var out payload
		require.NoError(t, s.Get(ctx, "k", &out))
		assert.Equal(t, payload{Name: "a", Count: 3}, out)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("Missing key maps to ErrNotFound", func(t *testing.T) {
		s, mockDB := setupSQLiteStore(t)
		mockDB.ExpectQuery(selectQuery).
			WithArgs("k").
			WillReturnRows(sqlmock.NewRows([]string{"value"}))

		var out payload
		assert.ErrorIs(t, s.Get(ctx, "k", &out), store.ErrNotFound)
	})

	t.Run("Broken JSON maps to ErrCorrupted", func(t *testing.T) {
		s, mockDB := setupSQLiteStore(t)
		mockDB.ExpectQuery(selectQuery).
			WithArgs("k").
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("{not json"))

		var out payload
		assert.ErrorIs(t, s.Get(ctx, "k", &out), store.ErrCorrupted)
	})
}

func TestSQLite_Set(t *testing.T) {
	s, mockDB := setupSQLiteStore(t)
	mockDB.ExpectExec(upsertQuery).
		WithArgs("k", `{"name":"a","count":1}`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Set(context.Background(), "k", payload{Name: "a", Count: 1}))
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestSQLite_Delete(t *testing.T) {
	s, mockDB := setupSQLiteStore(t)
	mockDB.ExpectExec(deleteQuery).
		WithArgs("k").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Delete(context.Background(), "k"))
	assert.NoError(t, mockDB.ExpectationsWereMet())
}
