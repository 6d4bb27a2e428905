package echoServer

import (
	"net/http"

	"bookledger/app/echoServer/controller/analytics"
	"bookledger/app/echoServer/controller/auth"
	"bookledger/app/echoServer/controller/book"
	"bookledger/app/echoServer/controller/checkout"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type C struct {
	Auth      *auth.Controller
	Book      *book.Controller
	Checkout  *checkout.Controller
	Analytics *analytics.Controller

	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public reads
	pub := e.Group("/v1")
	pub.POST("/auth/token", c.Auth.Token)

	pub.GET("/books", c.Book.List)
	pub.GET("/books/search", c.Book.Search)
	pub.GET("/books/:id", c.Book.Detail)
	pub.GET("/books/:id/history", c.Checkout.History)
	pub.GET("/checkouts", c.Checkout.HistoryAll)

	pub.GET("/analytics/average-price", c.Analytics.AveragePrice)
	pub.GET("/analytics/top-rated", c.Analytics.TopRated)
	pub.GET("/analytics/value-scores", c.Analytics.ValueScores)
	pub.GET("/analytics/price-by-genre", c.Analytics.PriceByGenre)
	pub.GET("/analytics/popular-genre", c.Analytics.PopularGenre)

	// Lifecycle: any patron with the app may check books in and out.
	pub.POST("/books/:id/checkout", c.Checkout.CheckOut)
	pub.POST("/books/:id/checkin", c.Checkout.CheckIn)

	// Admin: inventory mutation and bulk seeding
	admin := e.Group("/v1")
	admin.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(c.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization:Bearer ",
	}))
	admin.Use(requireAdmin)

	admin.POST("/books", c.Book.Create)
	admin.PATCH("/books/:id", c.Book.Update)
	admin.DELETE("/books/:id", c.Book.Delete)
	admin.POST("/books/generate", c.Book.Generate)
	admin.POST("/checkouts/seed", c.Checkout.Seed)
}

func requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		tok, ok := ctx.Get("user").(*jwt.Token)
		if !ok || tok == nil {
			return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		}
		claims, ok := tok.Claims.(jwt.MapClaims)
		if !ok {
			return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		}
		if role, _ := claims["role"].(string); role != "admin" {
			return ctx.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		}
		return next(ctx)
	}
}
