package db

import (
	"os"
	"testing"

	"bookminder/storetest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Needs a disposable postgres, e.g.
// BOOKMINDER_TEST_DATABASE_URL="host=localhost user=bm password=bm dbname=bm_test sslmode=disable"
func TestRepo_Postgres(t *testing.T) {
	dsn := os.Getenv("BOOKMINDER_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("BOOKMINDER_TEST_DATABASE_URL not set")
	}

	conn, err := ConnectDB(dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, Migrate(conn))
	// a second run must be a no-op
	require.NoError(t, Migrate(conn))

	repo := NewRepo(conn)
	storetest.Run(t, storetest.Stores{Catalog: repo, Lending: repo, NewID: uuid.NewString})
}
