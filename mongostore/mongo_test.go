package mongostore

import (
	"context"
	"errors"
	"testing"

	"bookminder/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestDuplicateKeyTranslation(t *testing.T) {
	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}

	assert.ErrorIs(t, duplicate(dup, models.ErrAlreadyBorrowed), models.ErrAlreadyBorrowed)
	assert.ErrorIs(t, duplicate(dup, models.ErrDuplicateName), models.ErrDuplicateName)

	other := errors.New("socket closed")
	assert.Equal(t, other, duplicate(other, models.ErrDuplicateName))
}

func TestNotFoundTranslation(t *testing.T) {
	assert.ErrorIs(t, notFound(mongo.ErrNoDocuments), models.ErrNotFound)
}

func TestStockFilter(t *testing.T) {
	assert.Equal(t, bson.M{"name": "Dune", "quantity": bson.M{"$gte": 1}}, stockFilter("Dune", -1))
	assert.Equal(t, bson.M{"name": "Dune"}, stockFilter("Dune", 1))
}

func TestMalformedObjectIDs(t *testing.T) {
	s := &Store{}
	ctx := context.Background()

	_, err := s.FindBookByID(ctx, "not-hex")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = s.ReplaceBook(ctx, "not-hex", &models.Book{Name: "Dune"})
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = s.FindBorrowByID(ctx, "7f1c3c4e-8a52-4a53-9a4a-1f2b7c9d0e11")
	assert.ErrorIs(t, err, models.ErrNotFound)

	n, err := lendingTx{s}.DeleteBorrow(ctx, "not-hex")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDocumentRoundTrip(t *testing.T) {
	oid := primitive.NewObjectID()
	in := models.BorrowRecord{
		Email: "alice@example.com", BookName: "Dune", Name: "Alice",
		BorrowedDate: "2023-11-10", ReturnDate: "2023-11-24", Quantity: 3,
	}
	d := borrowDocFrom(&in)
	d.ID = oid

	out := d.model()
	in.ID = oid.Hex()
	assert.Equal(t, in, out)
}
