package mongostore

import (
	"context"
	"errors"

	"bookminder/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ErrNotFound
	}
	return err
}

func duplicate(err error, as error) error {
	if mongo.IsDuplicateKeyError(err) {
		return as
	}
	return err
}

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	cur, err := s.categories.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	var docs []categoryDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.Category, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	res, err := s.categories.InsertOne(ctx, categoryDoc{Name: c.Name, Image: c.Image, Description: c.Description})
	if err != nil {
		return duplicate(err, models.ErrDuplicateName)
	}
	c.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (s *Store) ListBooks(ctx context.Context) ([]models.Book, error) {
	cur, err := s.books.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	var docs []bookDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.Book, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (s *Store) FindBookByID(ctx context.Context, id string) (*models.Book, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}
	return s.findBook(ctx, bson.M{"_id": oid})
}

func (s *Store) FindBookByName(ctx context.Context, name string) (*models.Book, error) {
	return s.findBook(ctx, bson.M{"name": name})
}

func (s *Store) findBook(ctx context.Context, filter bson.M) (*models.Book, error) {
	var d bookDoc
	if err := s.books.FindOne(ctx, filter).Decode(&d); err != nil {
		return nil, notFound(err)
	}
	b := d.model()
	return &b, nil
}

func (s *Store) CreateBook(ctx context.Context, b *models.Book) error {
	res, err := s.books.InsertOne(ctx, bookDoc{
		Name:        b.Name,
		Author:      b.Author,
		Category:    b.Category,
		Image:       b.Image,
		Rating:      b.Rating,
		Description: b.Description,
		Quantity:    b.Quantity,
	})
	if err != nil {
		return duplicate(err, models.ErrDuplicateName)
	}
	b.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (s *Store) ReplaceBook(ctx context.Context, id string, b *models.Book) (models.UpdateResult, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.UpdateResult{}, models.ErrNotFound
	}
	res, err := s.books.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bookFields(b)},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return models.UpdateResult{}, duplicate(err, models.ErrDuplicateName)
	}
	b.ID = id
	out := models.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
	}
	if res.UpsertedCount > 0 {
		out.UpsertedID = id
	}
	return out, nil
}
