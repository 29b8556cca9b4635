package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bookminder/models"

	"go.uber.org/zap"
)

type Catalog struct {
	store  CatalogStore
	logger *zap.Logger
}

func NewCatalog(store CatalogStore, logger *zap.Logger) *Catalog {
	return &Catalog{store: store, logger: logger}
}

func (c *Catalog) ListCategories(ctx context.Context) ([]models.Category, error) {
	cs, err := c.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cs, nil
}

func (c *Catalog) ListBooks(ctx context.Context) ([]models.Book, error) {
	bs, err := c.store.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return bs, nil
}

func (c *Catalog) GetBook(ctx context.Context, id string) (*models.Book, error) {
	b, err := c.store.FindBookByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("find book %s: %w", id, err)
	}
	return b, nil
}

// CreateBook inserts b unless another book already carries its name.
func (c *Catalog) CreateBook(ctx context.Context, b *models.Book) (models.InsertResult, error) {
	if err := validateBook(b); err != nil {
		return models.InsertResult{}, err
	}
	_, err := c.store.FindBookByName(ctx, b.Name)
	switch {
	case err == nil:
		return models.InsertResult{}, models.ErrDuplicateName
	case !errors.Is(err, models.ErrNotFound):
		return models.InsertResult{}, fmt.Errorf("find book by name: %w", err)
	}

	if err := c.store.CreateBook(ctx, b); err != nil {
		if errors.Is(err, models.ErrDuplicateName) {
			return models.InsertResult{}, models.ErrDuplicateName
		}
		return models.InsertResult{}, fmt.Errorf("insert book: %w", err)
	}
	c.logger.Info("book created", zap.String("id", b.ID), zap.String("book", b.Name), zap.Int("quantity", b.Quantity))
	return models.InsertResult{Acknowledged: true, InsertedID: b.ID}, nil
}

// UpdateBook replaces the book with id, creating it when absent.
func (c *Catalog) UpdateBook(ctx context.Context, id string, b *models.Book) (models.UpdateResult, error) {
	if err := validateBook(b); err != nil {
		return models.UpdateResult{}, err
	}
	other, err := c.store.FindBookByName(ctx, b.Name)
	switch {
	case err == nil && other.ID != id:
		return models.UpdateResult{}, models.ErrDuplicateName
	case err != nil && !errors.Is(err, models.ErrNotFound):
		return models.UpdateResult{}, fmt.Errorf("find book by name: %w", err)
	}

	res, err := c.store.ReplaceBook(ctx, id, b)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrDuplicateName) {
			return models.UpdateResult{}, err
		}
		return models.UpdateResult{}, fmt.Errorf("replace book %s: %w", id, err)
	}
	c.logger.Info("book replaced",
		zap.String("id", id),
		zap.String("book", b.Name),
		zap.Int64("matched", res.MatchedCount),
		zap.Int64("upserted", res.UpsertedCount),
	)
	return res, nil
}

// CreateCategory is only reachable from the seed command.
func (c *Catalog) CreateCategory(ctx context.Context, cat *models.Category) error {
	if strings.TrimSpace(cat.Name) == "" {
		return fmt.Errorf("%w: category name is required", models.ErrInvalidInput)
	}
	if err := c.store.CreateCategory(ctx, cat); err != nil {
		if errors.Is(err, models.ErrDuplicateName) {
			return models.ErrDuplicateName
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func validateBook(b *models.Book) error {
	b.Name = strings.TrimSpace(b.Name)
	if b.Name == "" {
		return fmt.Errorf("%w: name is required", models.ErrInvalidInput)
	}
	if b.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", models.ErrInvalidInput)
	}
	return nil
}
