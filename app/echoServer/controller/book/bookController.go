package book

import (
	"log/slog"
	"net/http"

	"bookledger/model"
	booksvc "bookledger/service/book"
	seedsvc "bookledger/service/seed"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc  booksvc.Service
	Seed seedsvc.Service
	V    *validator.Validate
	Log  *slog.Logger
}

// GET /v1/books
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.All(c.Request().Context())
	if err != nil {
		h.Log.Error("book list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/books/:id
func (h *Controller) Detail(c echo.Context) error {
	row, err := h.Svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.mapErr(c, "book detail", err)
	}
	return c.JSON(http.StatusOK, row)
}

// GET /v1/books/search?title=...
func (h *Controller) Search(c echo.Context) error {
	rows, err := h.Svc.FindByTitle(c.Request().Context(), c.QueryParam("title"))
	if err != nil {
		return h.mapErr(c, "book search", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// POST /v1/books  (admin)
func (h *Controller) Create(c echo.Context) error {
	var req CreateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	id, err := h.Svc.Add(c.Request().Context(), req.toModel())
	if err != nil {
		return h.mapErr(c, "book create", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"book_id": id})
}

// PATCH /v1/books/:id  (admin)
func (h *Controller) Update(c echo.Context) error {
	var changes model.BookChanges
	if err := c.Bind(&changes); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	applied, err := h.Svc.Update(c.Request().Context(), c.Param("id"), changes)
	if err != nil {
		return h.mapErr(c, "book update", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": applied})
}

// DELETE /v1/books/:id  (admin)
func (h *Controller) Delete(c echo.Context) error {
	if err := h.Svc.Remove(c.Request().Context(), c.Param("id")); err != nil {
		return h.mapErr(c, "book delete", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}

// POST /v1/books/generate  (admin)
func (h *Controller) Generate(c echo.Context) error {
	req := GenerateReq{Count: 50}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	res, err := h.Seed.Generate(c.Request().Context(), req.Count)
	if err != nil {
		h.Log.Error("seed generate", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *Controller) mapErr(c echo.Context, op string, err error) error {
	switch booksvc.Code(err) {
	case booksvc.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
	case booksvc.ErrValidation:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	case booksvc.ErrDuplicate:
		return c.JSON(http.StatusConflict, echo.Map{"message": "book id already exists"})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}
