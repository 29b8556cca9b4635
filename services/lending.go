package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bookminder/models"

	"go.uber.org/zap"
)

// Lending runs the borrow/return workflow and keeps Book.Quantity in step
// with the outstanding borrow records.
type Lending struct {
	store  LendingStore
	logger *zap.Logger
}

func NewLending(store LendingStore, logger *zap.Logger) *Lending {
	return &Lending{store: store, logger: logger}
}

// ListBorrows returns every record, or only those of filterEmail. A filter
// naming someone other than identity is refused.
func (l *Lending) ListBorrows(ctx context.Context, identity, filterEmail string) ([]models.BorrowRecord, error) {
	if filterEmail != "" && filterEmail != identity {
		return nil, models.ErrForbidden
	}
	rs, err := l.store.ListBorrows(ctx, filterEmail)
	if err != nil {
		return nil, fmt.Errorf("list borrows: %w", err)
	}
	return rs, nil
}

func (l *Lending) GetBorrow(ctx context.Context, id string) (*models.BorrowRecord, error) {
	r, err := l.store.FindBorrowByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("find borrow %s: %w", id, err)
	}
	return r, nil
}

// BorrowBook records the loan and takes one copy off the shelf.
//
// The book must exist and have stock. The record is inserted before the
// decrement so the (email, bookName) index rejects a second outstanding
// loan; if the decrement then finds no stock the record is deleted again.
func (l *Lending) BorrowBook(ctx context.Context, rec *models.BorrowRecord) (*models.BorrowResult, error) {
	rec.Email = strings.TrimSpace(rec.Email)
	rec.BookName = strings.TrimSpace(rec.BookName)
	if rec.Email == "" || rec.BookName == "" {
		return nil, fmt.Errorf("%w: email and bookName are required", models.ErrInvalidInput)
	}

	var res models.BorrowResult
	err := l.store.WithinTx(ctx, func(ctx context.Context, tx LendingTx) error {
		book, err := tx.LockBookByName(ctx, rec.BookName)
		if err != nil {
			return err
		}
		if book.Quantity <= 0 {
			return models.ErrOutOfStock
		}

		if err := tx.CreateBorrow(ctx, rec); err != nil {
			return err
		}

		n, err := tx.AdjustQuantity(ctx, book.Name, -1)
		if err != nil || n == 0 {
			if _, derr := tx.DeleteBorrow(ctx, rec.ID); derr != nil {
				l.logger.Warn("borrow rollback failed", zap.String("id", rec.ID), zap.Error(derr))
			}
			if err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
			return models.ErrNotEnoughStock
		}

		res = models.BorrowResult{
			InsertResult: models.InsertResult{Acknowledged: true, InsertedID: rec.ID},
			UpdateResult: models.StockUpdate(n),
		}
		return nil
	})
	if err != nil {
		l.logger.Debug("borrow refused",
			zap.String("book", rec.BookName),
			zap.String("email", rec.Email),
			zap.Error(err),
		)
		return nil, err
	}

	l.logger.Info("book borrowed", zap.String("id", rec.ID), zap.String("book", rec.BookName), zap.String("email", rec.Email))
	return &res, nil
}

// ReturnBook deletes the borrow record and puts the copy back on the shelf.
// A book that has since disappeared from the catalog is not restocked.
func (l *Lending) ReturnBook(ctx context.Context, id string) (*models.ReturnResult, error) {
	var res models.ReturnResult
	var bookName string
	err := l.store.WithinTx(ctx, func(ctx context.Context, tx LendingTx) error {
		rec, err := tx.FindBorrowByID(ctx, id)
		if err != nil {
			return err
		}
		bookName = rec.BookName

		// Lock the book before touching the record, same order as BorrowBook.
		if _, err := tx.LockBookByName(ctx, rec.BookName); err != nil && !errors.Is(err, models.ErrNotFound) {
			return err
		}

		deleted, err := tx.DeleteBorrow(ctx, rec.ID)
		if err != nil {
			return fmt.Errorf("delete borrow: %w", err)
		}
		if deleted == 0 {
			// returned concurrently
			return models.ErrNotFound
		}

		n, err := tx.AdjustQuantity(ctx, rec.BookName, 1)
		if err != nil {
			return fmt.Errorf("restock: %w", err)
		}

		res = models.ReturnResult{
			DeleteResult: models.DeleteResult{Acknowledged: true, DeletedCount: deleted},
			UpdateResult: models.StockUpdate(n),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res.UpdateResult.MatchedCount == 0 {
		l.logger.Warn("returned book missing from catalog", zap.String("id", id), zap.String("book", bookName))
	}
	l.logger.Info("book returned", zap.String("id", id), zap.String("book", bookName))
	return &res, nil
}
