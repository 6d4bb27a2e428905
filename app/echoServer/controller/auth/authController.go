package auth

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	jwtutil "bookledger/util/jwt"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type TokenReq struct {
	AdminKey string `json:"admin_key" validate:"required"`
}

type Controller struct {
	JWTSecret string
	AdminKey  string
	V         *validator.Validate
	Log       *slog.Logger
}

// POST /v1/auth/token
// Exchanges the configured admin key for a short-lived admin token.
func (h *Controller) Token(c echo.Context) error {
	var req TokenReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}
	if subtle.ConstantTimeCompare([]byte(req.AdminKey), []byte(h.AdminKey)) != 1 {
		h.Log.Warn("admin token rejected", "ip", c.RealIP())
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	tok, err := jwtutil.IssueAdmin(h.JWTSecret, 12*time.Hour)
	if err != nil {
		h.Log.Error("token issue", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"token": tok, "expires_in": int((12 * time.Hour).Seconds())})
}
