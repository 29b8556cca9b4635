package mongostore

import (
	"context"
	"fmt"

	"bookminder/models"
	"bookminder/services"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func (s *Store) ListBorrows(ctx context.Context, email string) ([]models.BorrowRecord, error) {
	filter := bson.M{}
	if email != "" {
		filter["email"] = email
	}
	cur, err := s.borrows.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var docs []borrowDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.BorrowRecord, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (s *Store) FindBorrowByID(ctx context.Context, id string) (*models.BorrowRecord, error) {
	return lendingTx{s}.FindBorrowByID(ctx, id)
}

// WithinTx runs fn in a multi-document transaction when enabled. Without
// one, the conditional decrement and the compensating delete in the lending
// service keep stock and records consistent.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx services.LendingTx) error) error {
	if !s.transactions {
		return fn(ctx, lendingTx{s})
	}
	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, lendingTx{s})
	})
	return err
}

type lendingTx struct{ s *Store }

func (t lendingTx) LockBookByName(ctx context.Context, name string) (*models.Book, error) {
	return t.s.FindBookByName(ctx, name)
}

func (t lendingTx) FindBorrowByID(ctx context.Context, id string) (*models.BorrowRecord, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}
	var d borrowDoc
	if err := t.s.borrows.FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		return nil, notFound(err)
	}
	r := d.model()
	return &r, nil
}

func (t lendingTx) CreateBorrow(ctx context.Context, r *models.BorrowRecord) error {
	res, err := t.s.borrows.InsertOne(ctx, borrowDocFrom(r))
	if err != nil {
		return duplicate(err, models.ErrAlreadyBorrowed)
	}
	r.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (t lendingTx) DeleteBorrow(ctx context.Context, id string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, nil
	}
	res, err := t.s.borrows.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (t lendingTx) AdjustQuantity(ctx context.Context, bookName string, delta int) (int64, error) {
	res, err := t.s.books.UpdateOne(ctx, stockFilter(bookName, delta), bson.M{"$inc": bson.M{"quantity": delta}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// stockFilter matches the book only while quantity+delta stays non-negative.
func stockFilter(bookName string, delta int) bson.M {
	filter := bson.M{"name": bookName}
	if delta < 0 {
		filter["quantity"] = bson.M{"$gte": -delta}
	}
	return filter
}
