package services

import (
	"context"

	"bookminder/models"
)

// CatalogStore is the record store as seen by the catalog.
// Lookups return models.ErrNotFound for missing records and malformed ids.
type CatalogStore interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) error
	ListBooks(ctx context.Context) ([]models.Book, error)
	FindBookByID(ctx context.Context, id string) (*models.Book, error)
	FindBookByName(ctx context.Context, name string) (*models.Book, error)
	// CreateBook assigns b.ID. A name collision yields models.ErrDuplicateName.
	CreateBook(ctx context.Context, b *models.Book) error
	// ReplaceBook overwrites the mutable fields of the book with id, or
	// inserts b under id when no such book exists.
	ReplaceBook(ctx context.Context, id string, b *models.Book) (models.UpdateResult, error)
}

// LendingStore is the record store as seen by the lending workflow.
type LendingStore interface {
	ListBorrows(ctx context.Context, email string) ([]models.BorrowRecord, error)
	FindBorrowByID(ctx context.Context, id string) (*models.BorrowRecord, error)
	// WithinTx runs fn as one unit. Stores with transactions commit or roll
	// back as a whole; the others run fn directly. fn must use the ctx it is
	// handed.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx LendingTx) error) error
}

// LendingTx holds the steps of a borrow or return.
type LendingTx interface {
	// LockBookByName loads the book and, where supported, locks it until the
	// unit ends.
	LockBookByName(ctx context.Context, name string) (*models.Book, error)
	FindBorrowByID(ctx context.Context, id string) (*models.BorrowRecord, error)
	// CreateBorrow assigns r.ID. A second outstanding record for the same
	// (email, bookName) yields models.ErrAlreadyBorrowed.
	CreateBorrow(ctx context.Context, r *models.BorrowRecord) error
	DeleteBorrow(ctx context.Context, id string) (int64, error)
	// AdjustQuantity adds delta to the book's quantity unless the result
	// would be negative, and reports how many books changed.
	AdjustQuantity(ctx context.Context, bookName string, delta int) (int64, error)
}
