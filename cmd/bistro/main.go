package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/crypto/bcrypt"

	"bistro/internal/config"
	"bistro/internal/database"
	"bistro/internal/handler"
	"bistro/internal/metrics"
	"bistro/internal/mw"
	"bistro/internal/service"
)

func main() {
	cfg := config.New()

	db, err := database.NewDB(cfg.DatabaseURI)
	if err != nil {
		slog.Error("failed to connect to DB", "error", err)
		os.Exit(1)
	}
	defer database.CloseDB(db)

	if err := database.InitSchema(db); err != nil {
		slog.Error("failed to init DB schema", "error", err)
		os.Exit(1)
	}

	// Services
	orderSvc := service.NewOrderService(db)
	promoSvc := service.NewPromoService(db)
	dishSvc := service.NewDishService(db)

	if err := dishSvc.Seed(context.Background()); err != nil {
		slog.Error("failed to seed dishes", "error", err)
		os.Exit(1)
	}

	adminHash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("failed to hash admin password", "error", err)
		os.Exit(1)
	}

	// Router
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes
	r.Get("/api/dishes", handler.ListDishesHandler(dishSvc))
	r.Get("/api/dishes/{id}", handler.GetDishHandler(dishSvc))

	r.Post("/api/orders", handler.CreateOrderHandler(orderSvc))
	r.Get("/api/orders/{orderNumber}", handler.GetOrderHandler(orderSvc))
	r.Post("/api/orders/{orderNumber}/cancel", handler.CancelOrderHandler(orderSvc))

	r.Post("/api/promo-check", handler.CheckPromoHandler(promoSvc))

	r.Post("/api/admin/login", handler.AdminLoginHandler(cfg.AdminUsername, adminHash, cfg.JWTSecret))
	r.Get("/api/admin/check", handler.AdminCheckHandler(cfg.JWTSecret))

	r.Handle("/metrics", metrics.Handler())

	// Privileged routes
	r.Group(func(r chi.Router) {
		r.Use(mw.AdminMiddleware(cfg.JWTSecret))

		r.Get("/api/admin/orders", handler.ListOrdersHandler(orderSvc))
		r.Put("/api/admin/orders/{id}", handler.UpdateOrderStatusHandler(orderSvc))
		r.Delete("/api/admin/orders/{id}", handler.DeleteOrderHandler(orderSvc))

		r.Get("/api/admin/promo-codes", handler.ListPromosHandler(promoSvc))
		r.Post("/api/admin/promo-codes", handler.CreatePromoHandler(promoSvc))
		r.Put("/api/admin/promo-codes/{id}", handler.UpdatePromoHandler(promoSvc))
		r.Delete("/api/admin/promo-codes/{id}", handler.DeletePromoHandler(promoSvc))

		r.Post("/api/admin/dishes", handler.CreateDishHandler(dishSvc))
		r.Put("/api/admin/dishes/{id}", handler.UpdateDishHandler(dishSvc))
		r.Delete("/api/admin/dishes/{id}", handler.DeleteDishHandler(dishSvc))
	})

	srv := &http.Server{
		Addr:         cfg.RunAddress,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	slog.Info("starting server", "addr", cfg.RunAddress)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-quit
	slog.Info("shutting down...")

	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := srv.Shutdown(ctxShut); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	slog.Info("server stopped")
}
