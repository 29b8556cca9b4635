// Package storetest checks a CatalogStore/LendingStore pair against the
// lending workflow. The memory, postgres and mongo stores all run it.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"bookminder/models"
	"bookminder/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type Stores struct {
	Catalog services.CatalogStore
	Lending services.LendingStore
	// NewID returns an id the store accepts but has not issued.
	NewID func() string
}

type fixture struct {
	catalog *services.Catalog
	lending *services.Lending
	stores  Stores
	// tag keeps names and emails unique across runs on a shared database
	tag string
}

func (f *fixture) name(s string) string  { return s + " " + f.tag }
func (f *fixture) email(s string) string { return s + "+" + f.tag + "@example.com" }

func (f *fixture) addBook(t *testing.T, name string, qty int) *models.Book {
	t.Helper()
	b := &models.Book{Name: name, Author: "someone", Quantity: qty}
	_, err := f.catalog.CreateBook(context.Background(), b)
	require.NoError(t, err)
	return b
}

func (f *fixture) quantity(t *testing.T, name string) int {
	t.Helper()
	b, err := f.stores.Catalog.FindBookByName(context.Background(), name)
	require.NoError(t, err)
	return b.Quantity
}

func (f *fixture) borrows(t *testing.T, email string) []models.BorrowRecord {
	t.Helper()
	rs, err := f.stores.Lending.ListBorrows(context.Background(), email)
	require.NoError(t, err)
	return rs
}

// Run executes every store check as a subtest of t.
func Run(t *testing.T, s Stores) {
	newFixture := func() *fixture {
		return &fixture{
			catalog: services.NewCatalog(s.Catalog, zap.NewNop()),
			lending: services.NewLending(s.Lending, zap.NewNop()),
			stores:  s,
			tag:     uuid.NewString()[:8],
		}
	}

	t.Run("borrow and return restock", func(t *testing.T) { testBorrowReturn(t, newFixture()) })
	t.Run("duplicate borrow is refused by the store", func(t *testing.T) { testDuplicateBorrow(t, newFixture()) })
	t.Run("put upserts and writes zero values", func(t *testing.T) { testReplaceBook(t, newFixture()) })
	t.Run("duplicate book name", func(t *testing.T) { testDuplicateName(t, newFixture()) })
	t.Run("concurrent borrowers never overdraw", func(t *testing.T) { testConcurrentBorrowers(t, newFixture()) })
	t.Run("unknown ids", func(t *testing.T) { testUnknownIDs(t, newFixture()) })
}

func testBorrowReturn(t *testing.T, f *fixture) {
	ctx := context.Background()
	dune := f.name("Dune")
	f.addBook(t, dune, 1)
	alice, bob := f.email("alice"), f.email("bob")

	res, err := f.lending.BorrowBook(ctx, &models.BorrowRecord{Email: alice, BookName: dune, Name: "Alice", Quantity: 7})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.UpdateResult.ModifiedCount)
	assert.Equal(t, 0, f.quantity(t, dune))

	rec, err := f.lending.GetBorrow(ctx, res.InsertResult.InsertedID)
	require.NoError(t, err)
	assert.Equal(t, alice, rec.Email)
	assert.Equal(t, 7, rec.Quantity)

	_, err = f.lending.BorrowBook(ctx, &models.BorrowRecord{Email: bob, BookName: dune})
	assert.ErrorIs(t, err, models.ErrOutOfStock)
	assert.Empty(t, f.borrows(t, bob))

	ret, err := f.lending.ReturnBook(ctx, res.InsertResult.InsertedID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), ret.DeleteResult.DeletedCount)
	assert.Equal(t, int64(1), ret.UpdateResult.ModifiedCount)
	assert.Equal(t, 1, f.quantity(t, dune))

	_, err = f.lending.ReturnBook(ctx, res.InsertResult.InsertedID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Equal(t, 1, f.quantity(t, dune))

	_, err = f.lending.BorrowBook(ctx, &models.BorrowRecord{Email: f.email("carol"), BookName: f.name("Missing")})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func testDuplicateBorrow(t *testing.T, f *fixture) {
	ctx := context.Background()
	dune := f.name("Dune")
	f.addBook(t, dune, 5)
	alice := f.email("alice")

	_, err := f.lending.BorrowBook(ctx, &models.BorrowRecord{Email: alice, BookName: dune})
	require.NoError(t, err)
	_, err = f.lending.BorrowBook(ctx, &models.BorrowRecord{Email: alice, BookName: dune})
	assert.ErrorIs(t, err, models.ErrAlreadyBorrowed)

	assert.Equal(t, 4, f.quantity(t, dune))
	assert.Len(t, f.borrows(t, alice), 1)

	// the unique index alone, without the service's stock check in front
	err = f.stores.Lending.WithinTx(ctx, func(ctx context.Context, tx services.LendingTx) error {
		return tx.CreateBorrow(ctx, &models.BorrowRecord{Email: alice, BookName: dune})
	})
	assert.ErrorIs(t, err, models.ErrAlreadyBorrowed)
	assert.Len(t, f.borrows(t, alice), 1)
}

func testReplaceBook(t *testing.T, f *fixture) {
	ctx := context.Background()
	id := f.stores.NewID()
	emma := f.name("Emma")

	res, err := f.catalog.UpdateBook(ctx, id, &models.Book{Name: emma, Author: "Austen", Quantity: 2, Description: "novel"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.UpsertedCount)
	assert.Equal(t, id, res.UpsertedID)

	got, err := f.catalog.GetBook(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, emma, got.Name)
	assert.Equal(t, 2, got.Quantity)

	res, err = f.catalog.UpdateBook(ctx, id, &models.Book{Name: emma, Author: "Jane Austen", Quantity: 0})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.MatchedCount)
	assert.Zero(t, res.UpsertedCount)

	got, err = f.catalog.GetBook(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Jane Austen", got.Author)
	assert.Zero(t, got.Quantity, "zero quantity is written")
	assert.Empty(t, got.Description, "empty description is written")

	other := f.addBook(t, f.name("Persuasion"), 1)
	_, err = f.catalog.UpdateBook(ctx, other.ID, &models.Book{Name: emma, Quantity: 1})
	assert.ErrorIs(t, err, models.ErrDuplicateName)
}

func testDuplicateName(t *testing.T, f *fixture) {
	ctx := context.Background()
	dune := f.name("Dune")
	f.addBook(t, dune, 1)

	_, err := f.catalog.CreateBook(ctx, &models.Book{Name: dune, Quantity: 3})
	assert.ErrorIs(t, err, models.ErrDuplicateName)

	// straight to the store, past the service's name lookup
	err = f.stores.Catalog.CreateBook(ctx, &models.Book{Name: dune, Quantity: 3})
	assert.ErrorIs(t, err, models.ErrDuplicateName)
	assert.Equal(t, 1, f.quantity(t, dune))
}

func testConcurrentBorrowers(t *testing.T, f *fixture) {
	const copies, borrowers = 3, 12
	ctx := context.Background()
	dune := f.name("Dune")
	f.addBook(t, dune, copies)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok      int
		refused int
	)
	for i := 0; i < borrowers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.lending.BorrowBook(ctx, &models.BorrowRecord{Email: f.email(fmt.Sprintf("reader%d", i)), BookName: dune})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case assert.True(t, errors.Is(err, models.ErrOutOfStock) || errors.Is(err, models.ErrNotEnoughStock), "%v", err):
				refused++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, copies, ok)
	assert.Equal(t, borrowers-copies, refused)
	assert.Equal(t, 0, f.quantity(t, dune))

	all, err := f.stores.Lending.ListBorrows(ctx, "")
	require.NoError(t, err)
	n := 0
	for _, r := range all {
		if r.BookName == dune {
			n++
		}
	}
	assert.Equal(t, copies, n, "no borrow record outlives a refused borrow")
}

func testUnknownIDs(t *testing.T, f *fixture) {
	ctx := context.Background()

	_, err := f.catalog.GetBook(ctx, f.stores.NewID())
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = f.catalog.GetBook(ctx, "not-an-id")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = f.lending.GetBorrow(ctx, f.stores.NewID())
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = f.lending.ReturnBook(ctx, "not-an-id")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
