// models/book.go
package models

import "time"

const BookTable = "bm_books"
const CategoryTable = "bm_categories"

// Book is one catalog title. Quantity is the number of copies on the shelf.
type Book struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"_id"`
	Name        string    `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Author      string    `gorm:"size:255" json:"author"`
	Category    string    `gorm:"size:120;index" json:"category"`
	Image       string    `gorm:"size:1024" json:"image"`
	Rating      float64   `gorm:"not null;default:0" json:"rating"`
	Description string    `gorm:"type:text" json:"description"`
	Quantity    int       `gorm:"not null;default:0;check:quantity >= 0" json:"quantity"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

type Category struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"_id"`
	Name        string    `gorm:"size:120;uniqueIndex;not null" json:"name"`
	Image       string    `gorm:"size:1024" json:"image"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"-"`
}

func (Book) TableName() string     { return BookTable }
func (Category) TableName() string { return CategoryTable }
