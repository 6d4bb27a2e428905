// Package main book ledger API.
//
// @title           Book Ledger API
// @version         1.0
// @description     Library inventory, checkout ledger and analytics.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"bookledger/app/echoServer"
	analyticsctrl "bookledger/app/echoServer/controller/analytics"
	authctrl "bookledger/app/echoServer/controller/auth"
	bookctrl "bookledger/app/echoServer/controller/book"
	checkoutctrl "bookledger/app/echoServer/controller/checkout"
	"bookledger/app/echoServer/validation"
	"bookledger/config"
	bookrepo "bookledger/repository/book"
	ledgerrepo "bookledger/repository/ledger"
	booksvc "bookledger/service/book"
	checkoutsvc "bookledger/service/checkout"
	seedsvc "bookledger/service/seed"
	"bookledger/util/database"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {

	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	// DB
	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	br := bookrepo.New(db)
	lr := ledgerrepo.New(db)

	// services
	txr := database.NewTxRunner(db)
	bs := booksvc.New(br)
	chs := checkoutsvc.New(txr, br, lr)
	sds := seedsvc.New(bs, chs)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{JWTSecret: cfg.JWTSecret, AdminKey: cfg.AdminKey, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, Seed: sds, V: v, Log: log}
	checkoutC := &checkoutctrl.Controller{Svc: chs, Log: log}
	analyticsC := &analyticsctrl.Controller{Books: bs, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:      authC,
		Book:      bookC,
		Checkout:  checkoutC,
		Analytics: analyticsC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	slog.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
