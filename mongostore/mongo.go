// Package mongostore keeps the catalog and borrow records in MongoDB,
// using the bookMinderDB collection layout the web client was built against.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"bookminder/services"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	CategoryCollection = "category"
	BookCollection     = "books"
	BorrowCollection   = "borrowBooks"
)

type Store struct {
	client     *mongo.Client
	categories *mongo.Collection
	books      *mongo.Collection
	borrows    *mongo.Collection
	// transactions needs a replica set or sharded cluster
	transactions bool
}

var (
	_ services.CatalogStore = (*Store)(nil)
	_ services.LendingStore = (*Store)(nil)
)

func Connect(ctx context.Context, uri, database string, transactions bool) (*Store, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
		SetConnectTimeout(10 * time.Second)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return New(client, database, transactions), nil
}

func New(client *mongo.Client, database string, transactions bool) *Store {
	db := client.Database(database)
	return &Store{
		client:       client,
		categories:   db.Collection(CategoryCollection),
		books:        db.Collection(BookCollection),
		borrows:      db.Collection(BorrowCollection),
		transactions: transactions,
	}
}

func (s *Store) Close(ctx context.Context) error { return s.client.Disconnect(ctx) }

// EnsureIndexes creates the unique indexes the workflow depends on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	if _, err := s.books.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: unique,
	}); err != nil {
		return fmt.Errorf("books name index: %w", err)
	}
	if _, err := s.categories.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: unique,
	}); err != nil {
		return fmt.Errorf("category name index: %w", err)
	}
	// one outstanding borrow per (borrower, book)
	if _, err := s.borrows.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}, {Key: "bookName", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_bookName_unique"),
	}); err != nil {
		return fmt.Errorf("borrow index: %w", err)
	}
	return nil
}
