package db

import (
	"context"
	"errors"

	"bookminder/models"
	"bookminder/services"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Borrow records

func (r *Repo) ListBorrows(ctx context.Context, email string) ([]models.BorrowRecord, error) {
	q := r.DB.WithContext(ctx).Model(&models.BorrowRecord{}).Order("created_at")
	if email != "" {
		q = q.Where("email = ?", email)
	}
	var rs []models.BorrowRecord
	if err := q.Find(&rs).Error; err != nil {
		return nil, err
	}
	return rs, nil
}

func (r *Repo) FindBorrowByID(ctx context.Context, id string) (*models.BorrowRecord, error) {
	if !validID(id) {
		return nil, models.ErrNotFound
	}
	return findBorrow(r.DB.WithContext(ctx), id)
}

// WithinTx: borrow/return run in one transaction; a returned error rolls back.
func (r *Repo) WithinTx(ctx context.Context, fn func(ctx context.Context, tx services.LendingTx) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &lendingTx{tx: tx})
	})
}

type lendingTx struct{ tx *gorm.DB }

// LockBookByName holds the book row until commit, serializing borrows of the same title.
func (t *lendingTx) LockBookByName(ctx context.Context, name string) (*models.Book, error) {
	var b models.Book
	if err := bookForUpdate(t.tx.WithContext(ctx), name).First(&b).Error; err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (t *lendingTx) FindBorrowByID(ctx context.Context, id string) (*models.BorrowRecord, error) {
	if !validID(id) {
		return nil, models.ErrNotFound
	}
	return findBorrow(t.tx.WithContext(ctx), id)
}

func (t *lendingTx) CreateBorrow(ctx context.Context, rec *models.BorrowRecord) error {
	rec.ID = uuid.NewString()
	err := t.tx.WithContext(ctx).Create(rec).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return models.ErrAlreadyBorrowed
	}
	return err
}

func (t *lendingTx) DeleteBorrow(ctx context.Context, id string) (int64, error) {
	res := t.tx.WithContext(ctx).Where("id = ?", id).Delete(&models.BorrowRecord{})
	return res.RowsAffected, res.Error
}

func (t *lendingTx) AdjustQuantity(ctx context.Context, bookName string, delta int) (int64, error) {
	res := adjustQuantity(t.tx.WithContext(ctx), bookName, delta)
	return res.RowsAffected, res.Error
}

func bookForUpdate(q *gorm.DB, name string) *gorm.DB {
	return q.Clauses(clause.Locking{Strength: "UPDATE"}).Where("name = ?", name)
}

// adjustQuantity never takes quantity below zero; RowsAffected is 0 instead.
func adjustQuantity(q *gorm.DB, bookName string, delta int) *gorm.DB {
	return q.Model(&models.Book{}).
		Where("name = ? AND quantity + ? >= 0", bookName, delta).
		Update("quantity", gorm.Expr("quantity + ?", delta))
}

func findBorrow(q *gorm.DB, id string) (*models.BorrowRecord, error) {
	var rec models.BorrowRecord
	if err := q.First(&rec, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &rec, nil
}
