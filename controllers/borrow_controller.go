package controllers

import (
	"net/http"

	"bookminder/app"
	"bookminder/models"

	"github.com/gin-gonic/gin"
)

type BorrowController struct{ *Srv }

func NewBorrowController(s *Srv) *BorrowController { return &BorrowController{Srv: s} }

type borrowPayload struct {
	BookName     string `json:"bookName" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Name         string `json:"name"`
	BorrowedDate string `json:"borrowedDate"`
	ReturnDate   string `json:"returnDate"`
	Image        string `json:"image"`
	Category     string `json:"category"`
	Quantity     int    `json:"quantity"`
}

// GET /api/v1/borrow-book?email=
func (bc *BorrowController) ListBorrows(c *gin.Context) {
	identity, _ := app.Identity(c)
	rs, err := bc.Lending.ListBorrows(c.Request.Context(), identity, c.Query("email"))
	if err != nil {
		bc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rs)
}

// GET /api/v1/borrow-book/:id
func (bc *BorrowController) GetBorrow(c *gin.Context) {
	r, err := bc.Lending.GetBorrow(c.Request.Context(), c.Param("id"))
	if err != nil {
		bc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// POST /api/v1/borrow-book
func (bc *BorrowController) Borrow(c *gin.Context) {
	var in borrowPayload
	if err := c.ShouldBindJSON(&in); err != nil {
		bc.Metrics.ObserveBorrow(models.ErrInvalidInput)
		c.JSON(http.StatusBadRequest, app.H{"message": err.Error()})
		return
	}

	res, err := bc.Lending.BorrowBook(c.Request.Context(), &models.BorrowRecord{
		Email:        in.Email,
		BookName:     in.BookName,
		Name:         in.Name,
		BorrowedDate: in.BorrowedDate,
		ReturnDate:   in.ReturnDate,
		Image:        in.Image,
		Category:     in.Category,
		Quantity:     in.Quantity,
	})
	bc.Metrics.ObserveBorrow(err)
	if err != nil {
		bc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// DELETE /api/v1/borrow-book/:id
func (bc *BorrowController) Return(c *gin.Context) {
	res, err := bc.Lending.ReturnBook(c.Request.Context(), c.Param("id"))
	bc.Metrics.ObserveReturn(err)
	if err != nil {
		bc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
