package checkout

import (
	"log/slog"
	"net/http"

	cs "bookledger/service/checkout"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc cs.Service
	Log *slog.Logger
}

// POST /v1/books/:id/checkout
func (h *Controller) CheckOut(c echo.Context) error {
	rec, err := h.Svc.CheckOut(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.mapErr(c, "check out", c.Param("id"), err)
	}
	return c.JSON(http.StatusCreated, rec)
}

// POST /v1/books/:id/checkin
func (h *Controller) CheckIn(c echo.Context) error {
	rec, err := h.Svc.CheckIn(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.mapErr(c, "check in", c.Param("id"), err)
	}
	return c.JSON(http.StatusOK, rec)
}

// GET /v1/books/:id/history
func (h *Controller) History(c echo.Context) error {
	rows, err := h.Svc.HistoryForBook(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.mapErr(c, "history", c.Param("id"), err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/checkouts
func (h *Controller) HistoryAll(c echo.Context) error {
	rows, err := h.Svc.HistoryAll(c.Request().Context())
	if err != nil {
		h.Log.Error("history all", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// POST /v1/checkouts/seed  (admin)
func (h *Controller) Seed(c echo.Context) error {
	var req SeedRecordsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	if err := h.Svc.AddSeedRecords(c.Request().Context(), req.toModels()); err != nil {
		h.Log.Error("seed records", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"seeded": len(req.Records)})
}

func (h *Controller) mapErr(c echo.Context, op, bookID string, err error) error {
	switch cs.Code(err) {
	case cs.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
	case cs.ErrAlreadyCheckedOut:
		return c.JSON(http.StatusConflict, echo.Map{"message": "book is already checked out"})
	case cs.ErrAlreadyAvailable:
		return c.JSON(http.StatusConflict, echo.Map{"message": "book is already available"})
	case cs.ErrValidation:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "malformed book id"})
	case cs.ErrDanglingState:
		// Data-integrity alert: book state disagrees with its ledger.
		h.Log.Error("ledger state disagrees with book state", "op", op, "book_id", bookID)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "inventory state corrupt"})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}
