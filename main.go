// Package main bookstore API.
//
// @title           Bookstore API
// @version         1.0
// @description     Catalog, cart, checkout and order history.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookstore/app/echoServer"
	authctrl "bookstore/app/echoServer/controller/auth"
	bookctrl "bookstore/app/echoServer/controller/book"
	cartctrl "bookstore/app/echoServer/controller/cart"
	txctrl "bookstore/app/echoServer/controller/transaction"
	userctrl "bookstore/app/echoServer/controller/user"
	"bookstore/app/echoServer/validation"
	"bookstore/config"
	bookrepo "bookstore/repository/book"
	cartrepo "bookstore/repository/cart"
	"bookstore/repository/inventory"
	"bookstore/repository/outbox"
	txrepo "bookstore/repository/transaction"
	userrepo "bookstore/repository/user"
	authsvc "bookstore/service/auth"
	booksvc "bookstore/service/book"
	cartsvc "bookstore/service/cart"
	checkoutsvc "bookstore/service/checkout"
	"bookstore/service/events"
	ordersvc "bookstore/service/order"
	usersvc "bookstore/service/user"
	"bookstore/util/database"
	"bookstore/util/kafka"
	"bookstore/util/metrics"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {

	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		log.Error("db migrate failed", "err", err)
		os.Exit(1)
	}

	m := metrics.NewServerMetrics(prometheus.DefaultRegisterer)

	// repos
	ur := userrepo.New(db)
	br := bookrepo.New(db)
	cr := cartrepo.New(db)
	ir := inventory.New()
	tr := txrepo.New(db)
	or := outbox.New(db)

	// services
	as := authsvc.New(ur, cfg.JWTSecret, cfg.JWTTTL)
	bs := booksvc.New(br)
	cs := cartsvc.New(db.Pool, cr, br, ir)
	ors := ordersvc.New(db.Pool, tr)
	us := usersvc.New(ur)

	checkoutOpts := []checkoutsvc.Option{checkoutsvc.WithLogger(log), checkoutsvc.WithMetrics(m)}
	if kc := kafka.NewClient(cfg.KafkaBrokers); kc.Enabled() {
		w := kc.NewWriter(cfg.OrderEventsTopic)
		defer w.Close()
		relay := events.NewRelay(w, or, log)
		if n, err := relay.Flush(ctx); err != nil {
			log.Warn("outbox flush at startup failed", "sent", n, "err", err)
		}
		go relay.Run(ctx, cfg.OutboxSweep)
		checkoutOpts = append(checkoutOpts, checkoutsvc.WithOutbox(or, cfg.OrderEventsTopic, relay))
		log.Info("order events enabled", "brokers", kc.Brokers, "topic", cfg.OrderEventsTopic)
	} else {
		// rows still land in the outbox and wait for a relay
		checkoutOpts = append(checkoutOpts, checkoutsvc.WithOutbox(or, cfg.OrderEventsTopic, nil))
	}
	ck := checkoutsvc.New(db.Pool, cr, ir, tr, checkoutOpts...)

	// controllers
	v := validation.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	cartC := &cartctrl.Controller{Svc: cs, V: v, Log: log}
	txC := &txctrl.Controller{CheckoutSvc: ck, OrderSvc: ors, Log: log}
	userC := &userctrl.Controller{Svc: us, V: v, Log: log}

	// echo
	e := echo.New()
	e.HideBanner = true
	echoServer.RegisterMiddlewares(e, m)
	e.Validator = validation.NewEcho(v)

	e.GET("/health", func(c echo.Context) error {
		if err := db.Pool.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "degraded", "message": "database unreachable"})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:        authC,
		Book:        bookC,
		Cart:        cartC,
		Transaction: txC,
		User:        userC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	go func() {
		log.Info("starting server", "port", port, "env", cfg.Env)
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "err", err)
	}
}
