package mongostore

import (
	"bookminder/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type categoryDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Image       string             `bson:"image,omitempty"`
	Description string             `bson:"description,omitempty"`
}

type bookDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Author      string             `bson:"author"`
	Category    string             `bson:"category"`
	Image       string             `bson:"image"`
	Rating      float64            `bson:"rating"`
	Description string             `bson:"description"`
	Quantity    int                `bson:"quantity"`
}

type borrowDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	BookName     string             `bson:"bookName"`
	Name         string             `bson:"name"`
	BorrowedDate string             `bson:"borrowedDate"`
	ReturnDate   string             `bson:"returnDate"`
	Image        string             `bson:"image"`
	Category     string             `bson:"category"`
	Quantity     int                `bson:"quantity"`
}

func (d categoryDoc) model() models.Category {
	return models.Category{ID: d.ID.Hex(), Name: d.Name, Image: d.Image, Description: d.Description}
}

func (d bookDoc) model() models.Book {
	return models.Book{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Author:      d.Author,
		Category:    d.Category,
		Image:       d.Image,
		Rating:      d.Rating,
		Description: d.Description,
		Quantity:    d.Quantity,
	}
}

func (d borrowDoc) model() models.BorrowRecord {
	return models.BorrowRecord{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		BookName:     d.BookName,
		Name:         d.Name,
		BorrowedDate: d.BorrowedDate,
		ReturnDate:   d.ReturnDate,
		Image:        d.Image,
		Category:     d.Category,
		Quantity:     d.Quantity,
	}
}

func borrowDocFrom(r *models.BorrowRecord) borrowDoc {
	return borrowDoc{
		Email:        r.Email,
		BookName:     r.BookName,
		Name:         r.Name,
		BorrowedDate: r.BorrowedDate,
		ReturnDate:   r.ReturnDate,
		Image:        r.Image,
		Category:     r.Category,
		Quantity:     r.Quantity,
	}
}

// bookFields is the $set document of a book replacement.
func bookFields(b *models.Book) bson.M {
	return bson.M{
		"image":       b.Image,
		"name":        b.Name,
		"quantity":    b.Quantity,
		"author":      b.Author,
		"category":    b.Category,
		"rating":      b.Rating,
		"description": b.Description,
	}
}
