package controllers

import (
	"net/http"

	"bookminder/app"
	"bookminder/models"

	"github.com/gin-gonic/gin"
)

type BookController struct{ *Srv }

func NewBookController(s *Srv) *BookController { return &BookController{Srv: s} }

type bookPayload struct {
	Name        string  `json:"name" binding:"required"`
	Author      string  `json:"author"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Rating      float64 `json:"rating"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity" binding:"min=0"`
}

func (p bookPayload) book() *models.Book {
	return &models.Book{
		Name:        p.Name,
		Author:      p.Author,
		Category:    p.Category,
		Image:       p.Image,
		Rating:      p.Rating,
		Description: p.Description,
		Quantity:    p.Quantity,
	}
}

// GET /api/v1/category
func (bc *BookController) ListCategories(c *gin.Context) {
	cs, err := bc.Catalog.ListCategories(c.Request.Context())
	if err != nil {
		bc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cs)
}

// GET /api/v1/books
func (bc *BookController) ListBooks(c *gin.Context) {
	bs, err := bc.Catalog.ListBooks(c.Request.Context())
	if err != nil {
		bc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bs)
}

// GET /api/v1/books/:id
func (bc *BookController) GetBook(c *gin.Context) {
	b, err := bc.Catalog.GetBook(c.Request.Context(), c.Param("id"))
	if err != nil {
		bc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// POST /api/v1/books
func (bc *BookController) CreateBook(c *gin.Context) {
	var in bookPayload
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"message": err.Error()})
		return
	}
	res, err := bc.Catalog.CreateBook(c.Request.Context(), in.book())
	if err != nil {
		bc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// PUT /api/v1/books/:id
func (bc *BookController) UpdateBook(c *gin.Context) {
	var in bookPayload
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"message": err.Error()})
		return
	}
	res, err := bc.Catalog.UpdateBook(c.Request.Context(), c.Param("id"), in.book())
	if err != nil {
		bc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
