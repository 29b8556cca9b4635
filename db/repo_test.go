package db

import (
	"context"
	"errors"
	"testing"

	"bookminder/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// dryRun renders SQL without a server.
func dryRun(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=bm dbname=bm sslmode=disable"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return conn
}

func TestNotFound(t *testing.T) {
	assert.ErrorIs(t, notFound(gorm.ErrRecordNotFound), models.ErrNotFound)

	other := errors.New("boom")
	assert.Equal(t, other, notFound(other))
}

func TestInvalidIDsNeverReachTheDatabase(t *testing.T) {
	r := NewRepo(nil)
	ctx := context.Background()

	_, err := r.FindBookByID(ctx, "64f0c2a1e4b0a1b2c3d4e5f6")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = r.ReplaceBook(ctx, "nope", &models.Book{Name: "Dune"})
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = r.FindBorrowByID(ctx, "nope")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAdjustQuantityIsConditional(t *testing.T) {
	sql := adjustQuantity(dryRun(t), "Dune", -1).Statement.SQL.String()

	assert.Contains(t, sql, `UPDATE "bm_books" SET "quantity"=quantity + $1`)
	assert.Contains(t, sql, "WHERE name = $")
	assert.Contains(t, sql, ">= 0")
}

func TestBookForUpdateLocksRow(t *testing.T) {
	sql := bookForUpdate(dryRun(t), "Dune").First(&models.Book{}).Statement.SQL.String()

	assert.Contains(t, sql, `FROM "bm_books"`)
	assert.Contains(t, sql, "FOR UPDATE")
}
