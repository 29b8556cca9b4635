package routes

import (
	"bookminder/app"
	"bookminder/controllers"
	"net/http"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(a *app.App) {
	r := a.Router

	// 控制器与依赖
	s := controllers.GetSrv(a)
	bookCtl := controllers.NewBookController(s)
	borrowCtl := controllers.NewBorrowController(s)
	authCtl := controllers.NewAuthController(s)

	authMW := app.AuthRequired(a.Tokens, a.Revocations, a.Logger)

	r.GET("/", func(c *app.Ctx) { c.String(http.StatusOK, "book minder server is running") })
	r.GET("/healthz", func(c *app.Ctx) { c.JSON(http.StatusOK, app.H{"ok": true}) })
	r.GET("/metrics", gin.WrapH(a.Metrics.Handler()))

	v1 := r.Group("/api/v1")
	{
		// ------------------------------
		// Catalog
		// ------------------------------
		v1.GET("/category", bookCtl.ListCategories)
		v1.GET("/books", bookCtl.ListBooks)
		v1.GET("/books/:id", bookCtl.GetBook)
		v1.POST("/books", bookCtl.CreateBook)
		v1.PUT("/books/:id", bookCtl.UpdateBook)

		// ------------------------------
		// Lending
		// ------------------------------
		v1.GET("/borrow-book", authMW, borrowCtl.ListBorrows) // ?email=
		v1.GET("/borrow-book/:id", borrowCtl.GetBorrow)
		v1.POST("/borrow-book", borrowCtl.Borrow)
		v1.DELETE("/borrow-book/:id", borrowCtl.Return)

		// ------------------------------
		// Session cookie
		// ------------------------------
		v1.POST("/jwt", authCtl.IssueToken)
		v1.POST("/logout", authCtl.Logout)
	}
}
