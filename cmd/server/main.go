package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"

	"github.com/buensabor/storefront/internal/adapter/client"
	"github.com/buensabor/storefront/internal/adapter/handler"
	"github.com/buensabor/storefront/internal/adapter/storage"
	"github.com/buensabor/storefront/internal/config"
	"github.com/buensabor/storefront/internal/core/service"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		logger.Error("failed to connect mysql", "error", err)
		os.Exit(1)
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		logger.Error("failed to ping mysql", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to mysql")

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect redis", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to redis")

	// Initialize adapters
	redisAdapter := storage.NewRedisAdapter(rdb)
	mysqlAdapter := storage.NewMySQLAdapter(db)
	catalogClient := client.NewCatalogHTTPClient(cfg.CatalogBaseURL, cfg.APIToken, cfg.ClientTimeout)
	paymentClient := client.NewPaymentHTTPClient(cfg.PaymentBaseURL, cfg.APIToken, cfg.ClientTimeout)

	// Initialize services
	catalogService := service.NewCatalogService(catalogClient)
	cartRegistry := service.NewCartRegistry()
	checkoutService := service.NewCheckoutService(paymentClient, mysqlAdapter, redisAdapter, cfg.DeliveryFee, logger)

	// Warm the catalog. A failure is not fatal: menu requests retry the
	// load and serve 503 until the catalog service recovers.
	if err := catalogService.Load(ctx); err != nil {
		logger.Warn("initial catalog load failed", "error", err)
	} else {
		logger.Info("catalog loaded", "products", len(catalogService.Products()))
	}

	// Initialize HTTP server
	httpHandler := handler.NewHTTPHandler(catalogService, cartRegistry, checkoutService, redisAdapter, logger)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", httpHandler.HealthCheck)
	mux.HandleFunc("GET /api/menu", httpHandler.Menu)
	mux.HandleFunc("GET /api/cart", httpHandler.GetCart)
	mux.HandleFunc("POST /api/cart/items", httpHandler.AddCartItem)
	mux.HandleFunc("PUT /api/cart/items/{id}", httpHandler.UpdateCartItem)
	mux.HandleFunc("DELETE /api/cart/items/{id}", httpHandler.RemoveCartItem)
	mux.HandleFunc("DELETE /api/cart", httpHandler.ClearCart)
	mux.HandleFunc("GET /api/checkout/summary", httpHandler.CheckoutSummary)
	mux.HandleFunc("POST /api/checkout", httpHandler.SubmitCheckout)
	mux.HandleFunc("GET /api/profile", httpHandler.GetProfile)
	mux.HandleFunc("PUT /api/profile", httpHandler.SaveProfile)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	go func() {
		logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	logger.Info("HTTP server stopped")

	rdb.Close()
	db.Close()
	logger.Info("connections closed")
}
