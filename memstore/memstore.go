// Package memstore keeps the catalog and borrow records in process memory.
// It backs the "memory" store mode and the workflow tests.
package memstore

import (
	"context"
	"sync"
	"time"

	"bookminder/models"
	"bookminder/services"

	"github.com/google/uuid"
)

type Store struct {
	mu         sync.Mutex
	categories []models.Category
	books      []models.Book
	borrows    []models.BorrowRecord
	now        func() time.Time
}

var (
	_ services.CatalogStore = (*Store)(nil)
	_ services.LendingStore = (*Store)(nil)
)

func New() *Store { return &Store{now: time.Now} }

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Categories

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(make([]models.Category, 0, len(s.categories)), s.categories...), nil
}

func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, have := range s.categories {
		if have.Name == c.Name {
			return models.ErrDuplicateName
		}
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = s.now()
	s.categories = append(s.categories, *c)
	return nil
}

// Books

func (s *Store) ListBooks(ctx context.Context) ([]models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(make([]models.Book, 0, len(s.books)), s.books...), nil
}

func (s *Store) FindBookByID(ctx context.Context, id string) (*models.Book, error) {
	if !validID(id) {
		return nil, models.ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.bookIndex(func(b *models.Book) bool { return b.ID == id }); i >= 0 {
		b := s.books[i]
		return &b, nil
	}
	return nil, models.ErrNotFound
}

func (s *Store) FindBookByName(ctx context.Context, name string) (*models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bookByName(name)
}

func (s *Store) CreateBook(ctx context.Context, b *models.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.bookByName(b.Name); err == nil {
		return models.ErrDuplicateName
	}
	b.ID = uuid.NewString()
	b.CreatedAt = s.now()
	b.UpdatedAt = b.CreatedAt
	s.books = append(s.books, *b)
	return nil
}

func (s *Store) ReplaceBook(ctx context.Context, id string, b *models.Book) (models.UpdateResult, error) {
	if !validID(id) {
		return models.UpdateResult{}, models.ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if other, err := s.bookByName(b.Name); err == nil && other.ID != id {
		return models.UpdateResult{}, models.ErrDuplicateName
	}

	now := s.now()
	if i := s.bookIndex(func(have *models.Book) bool { return have.ID == id }); i >= 0 {
		cur := &s.books[i]
		cur.Image = b.Image
		cur.Name = b.Name
		cur.Quantity = b.Quantity
		cur.Author = b.Author
		cur.Category = b.Category
		cur.Rating = b.Rating
		cur.Description = b.Description
		cur.UpdatedAt = now
		*b = *cur
		return models.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
	}

	b.ID = id
	b.CreatedAt = now
	b.UpdatedAt = now
	s.books = append(s.books, *b)
	return models.UpdateResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: id}, nil
}

// Borrow records

func (s *Store) ListBorrows(ctx context.Context, email string) ([]models.BorrowRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.BorrowRecord, 0, len(s.borrows))
	for _, r := range s.borrows {
		if email == "" || r.Email == email {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) FindBorrowByID(ctx context.Context, id string) (*models.BorrowRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.borrowByID(id)
}

// WithinTx runs fn with the store locked and restores the previous contents
// when fn fails.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx services.LendingTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	books := append([]models.Book(nil), s.books...)
	borrows := append([]models.BorrowRecord(nil), s.borrows...)
	if err := fn(ctx, &memTx{s: s}); err != nil {
		s.books = books
		s.borrows = borrows
		return err
	}
	return nil
}

// Counts reports how many books and borrow records are stored.
func (s *Store) Counts() (books, borrows int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.books), len(s.borrows)
}

// helpers, callers hold s.mu

func (s *Store) bookIndex(match func(*models.Book) bool) int {
	for i := range s.books {
		if match(&s.books[i]) {
			return i
		}
	}
	return -1
}

func (s *Store) bookByName(name string) (*models.Book, error) {
	if i := s.bookIndex(func(b *models.Book) bool { return b.Name == name }); i >= 0 {
		b := s.books[i]
		return &b, nil
	}
	return nil, models.ErrNotFound
}

func (s *Store) borrowByID(id string) (*models.BorrowRecord, error) {
	if !validID(id) {
		return nil, models.ErrNotFound
	}
	for _, r := range s.borrows {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, models.ErrNotFound
}

type memTx struct{ s *Store }

func (t *memTx) LockBookByName(ctx context.Context, name string) (*models.Book, error) {
	return t.s.bookByName(name)
}

func (t *memTx) FindBorrowByID(ctx context.Context, id string) (*models.BorrowRecord, error) {
	return t.s.borrowByID(id)
}

func (t *memTx) CreateBorrow(ctx context.Context, r *models.BorrowRecord) error {
	for _, have := range t.s.borrows {
		if have.Email == r.Email && have.BookName == r.BookName {
			return models.ErrAlreadyBorrowed
		}
	}
	r.ID = uuid.NewString()
	r.CreatedAt = t.s.now()
	t.s.borrows = append(t.s.borrows, *r)
	return nil
}

func (t *memTx) DeleteBorrow(ctx context.Context, id string) (int64, error) {
	for i, r := range t.s.borrows {
		if r.ID == id {
			t.s.borrows = append(t.s.borrows[:i:i], t.s.borrows[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (t *memTx) AdjustQuantity(ctx context.Context, bookName string, delta int) (int64, error) {
	i := t.s.bookIndex(func(b *models.Book) bool { return b.Name == bookName })
	if i < 0 || t.s.books[i].Quantity+delta < 0 {
		return 0, nil
	}
	t.s.books[i].Quantity += delta
	t.s.books[i].UpdatedAt = t.s.now()
	return 1, nil
}
