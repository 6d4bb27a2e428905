package analytics

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	svc "bookledger/service/analytics"
	booksvc "bookledger/service/book"

	"github.com/labstack/echo/v4"
)

// Controller materializes an inventory snapshot and feeds it to the pure
// analytics functions. Analytics itself never touches storage.
type Controller struct {
	Books booksvc.Service
	Log   *slog.Logger
}

// GET /v1/analytics/average-price
func (h *Controller) AveragePrice(c echo.Context) error {
	books, err := h.Books.All(c.Request().Context())
	if err != nil {
		h.Log.Error("snapshot", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	avg := svc.AveragePrice(books)
	if math.IsNaN(avg) {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "no priced books"})
	}
	return c.JSON(http.StatusOK, echo.Map{"average_price": avg})
}

// GET /v1/analytics/top-rated?min_ratings=500&limit=10
func (h *Controller) TopRated(c echo.Context) error {
	minRatings, err := queryInt(c, "min_ratings", 500)
	if err != nil || minRatings < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid min_ratings"})
	}
	limit, err := queryInt(c, "limit", 10)
	if err != nil || limit < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid limit"})
	}
	books, err := h.Books.All(c.Request().Context())
	if err != nil {
		h.Log.Error("snapshot", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": svc.TopRated(books, minRatings, int(limit))})
}

// GET /v1/analytics/value-scores
func (h *Controller) ValueScores(c echo.Context) error {
	books, err := h.Books.All(c.Request().Context())
	if err != nil {
		h.Log.Error("snapshot", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": svc.ValueScores(books)})
}

// GET /v1/analytics/price-by-genre
func (h *Controller) PriceByGenre(c echo.Context) error {
	books, err := h.Books.All(c.Request().Context())
	if err != nil {
		h.Log.Error("snapshot", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": svc.MeanPriceByGenre(books)})
}

// GET /v1/analytics/popular-genre?year=2026
func (h *Controller) PopularGenre(c echo.Context) error {
	year, err := queryInt(c, "year", int64(time.Now().UTC().Year()))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid year"})
	}
	books, err := h.Books.All(c.Request().Context())
	if err != nil {
		h.Log.Error("snapshot", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	genre, err := svc.MostPopularGenre(books, int(year))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "no checkouts in that year"})
	}
	return c.JSON(http.StatusOK, echo.Map{"year": year, "genre": genre})
}

func queryInt(c echo.Context, name string, def int64) (int64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}
