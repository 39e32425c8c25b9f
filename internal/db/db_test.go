package db

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectPostgres(t *testing.T) {
	logger := log.New(io.Discard)

	t.Run("missing DATABASE_URL", func(t *testing.T) {
		_, err := ConnectPostgres(context.Background(), "", logger)
		assert.ErrorIs(t, err, ErrNoDSN)
	})

	t.Run("valid DATABASE_URL should connect", func(t *testing.T) {
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			t.Skip("DATABASE_URL not set, skipping integration test")
		}

		pool, err := ConnectPostgres(context.Background(), dsn, logger)
		require.NoError(t, err)
		defer pool.Close()

		var n int
		err = pool.QueryRow(context.Background(), `SELECT count(*) FROM orders`).Scan(&n)
		require.NoError(t, err)
	})
}

func TestOpenSQLite_CreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "orders.db")

	db, err := OpenSQLite(path)
	require.NoError(t, err)
	defer db.Close()

	var name string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='orders'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "orders", name)

	// reopening is idempotent
	db2, err := OpenSQLite(path)
	require.NoError(t, err)
	db2.Close()
}
