package db

import (
	"bookminder/models"
	"bookminder/services"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repo struct{ DB *gorm.DB }

var (
	_ services.CatalogStore = (*Repo)(nil)
	_ services.LendingStore = (*Repo)(nil)
)

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

// bookColumns are the fields a PUT replaces.
var bookColumns = []string{"image", "name", "quantity", "author", "category", "rating", "description", "updated_at"}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// notFound maps gorm's missing-row error onto the domain one.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ErrNotFound
	}
	return err
}

// Categories

func (r *Repo) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cs []models.Category
	err := r.DB.WithContext(ctx).Order("created_at").Find(&cs).Error
	return cs, err
}

func (r *Repo) CreateCategory(ctx context.Context, c *models.Category) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	err := r.DB.WithContext(ctx).Create(c).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return models.ErrDuplicateName
	}
	return err
}

// Books

func (r *Repo) ListBooks(ctx context.Context) ([]models.Book, error) {
	var bs []models.Book
	err := r.DB.WithContext(ctx).Order("created_at").Find(&bs).Error
	return bs, err
}

func (r *Repo) FindBookByID(ctx context.Context, id string) (*models.Book, error) {
	if !validID(id) {
		return nil, models.ErrNotFound
	}
	var b models.Book
	if err := r.DB.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (r *Repo) FindBookByName(ctx context.Context, name string) (*models.Book, error) {
	var b models.Book
	if err := r.DB.WithContext(ctx).Where("name = ?", name).First(&b).Error; err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (r *Repo) CreateBook(ctx context.Context, b *models.Book) error {
	b.ID = uuid.NewString()
	err := r.DB.WithContext(ctx).Create(b).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return models.ErrDuplicateName
	}
	return err
}

// ReplaceBook = lock the row if it exists → update every mutable column, or insert under id
func (r *Repo) ReplaceBook(ctx context.Context, id string, b *models.Book) (models.UpdateResult, error) {
	if !validID(id) {
		return models.UpdateResult{}, models.ErrNotFound
	}
	var res models.UpdateResult
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur models.Book
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", id).
			Take(&cur).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		b.ID = id
		if err != nil {
			if err := tx.Create(b).Error; err != nil {
				return err
			}
			res = models.UpdateResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: id}
			return nil
		}

		b.UpdatedAt = time.Now()
		// Select forces zero values (quantity 0, empty description) to be written.
		upd := tx.Model(&models.Book{ID: id}).Select(bookColumns).Updates(b)
		if upd.Error != nil {
			return upd.Error
		}
		res = models.UpdateResult{Acknowledged: true, MatchedCount: upd.RowsAffected, ModifiedCount: upd.RowsAffected}
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return models.UpdateResult{}, models.ErrDuplicateName
	}
	return res, err
}
