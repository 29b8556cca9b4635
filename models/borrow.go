package models

import "time"

const BorrowTable = "bm_borrow_records"

// BorrowRecord is an outstanding loan of one book to one borrower.
// BookName refers to Book.Name; (Email, BookName) is unique.
type BorrowRecord struct {
	ID           string `gorm:"type:uuid;primaryKey" json:"_id"`
	Email        string `gorm:"size:255;not null;index" json:"email"`
	BookName     string `gorm:"size:255;not null" json:"bookName"`
	Name         string `gorm:"size:255" json:"name"`
	BorrowedDate string `gorm:"size:64" json:"borrowedDate"`
	ReturnDate   string `gorm:"size:64" json:"returnDate"`
	Image        string `gorm:"size:1024" json:"image"`
	Category     string `gorm:"size:120" json:"category"`
	// Carried through from the client, unrelated to Book.Quantity.
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"-"`
}

func (BorrowRecord) TableName() string { return BorrowTable }
