package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solemate-backend/config"
	"solemate-backend/internal/delivery/http/middleware"
	v1 "solemate-backend/internal/delivery/http/v1"
	"solemate-backend/internal/domain"
	"solemate-backend/internal/infrastructure/cache"
	"solemate-backend/internal/infrastructure/razorpay"
	"solemate-backend/internal/infrastructure/session"
	pgrepo "solemate-backend/internal/repository/postgres"
	"solemate-backend/internal/usecase"
	"solemate-backend/pkg/logger"
	"solemate-backend/pkg/metrics"
	"solemate-backend/pkg/migrate"
	"solemate-backend/pkg/storage"
	"solemate-backend/pkg/utils"

	"github.com/NYTimes/gziphandler"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.LoadConfig()
	utils.SetSecret(cfg.JWTSecret)

	// Initialize Logger
	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	ctx := context.Background()

	pgxPool, err := pgrepo.NewPgxPool(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pgxPool.Close()
	log.Info().Msg("Successfully connected to PostgreSQL via pgx")

	if cfg.AutoMigrate {
		db := stdlib.OpenDBFromPool(pgxPool)
		if err := migrate.Up(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
		_ = db.Close()
		log.Info().Msg("Database migrations applied")
	}

	// Metrics. A nil registerer turns every collector into a no-op.
	var reg prometheus.Registerer
	var gatherer prometheus.Gatherer
	if cfg.MetricsEnabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		reg, gatherer = registry, registry
	}
	commerceMetrics := metrics.NewCommerceMetrics(reg)
	httpMetrics := metrics.NewHTTPMetrics(reg)

	// Repositories
	userRepo := pgrepo.NewUserRepository(pgxPool)
	productRepo := pgrepo.NewProductRepository(pgxPool)
	cartRepo := pgrepo.NewCartRepository(pgxPool)
	offerRepo := pgrepo.NewOfferRepository(pgxPool)
	couponRepo := pgrepo.NewCouponRepository(pgxPool)
	walletRepo := pgrepo.NewWalletRepository(pgxPool)
	orderRepo := pgrepo.NewOrderRepository(pgxPool)
	reportRepo := pgrepo.NewReportRepository(pgxPool)
	txManager := pgrepo.NewTransactionManager(pgxPool)

	// Initialize Cache (In-Memory)
	// Default expiration 30m, cleanup every 60m
	memCache := cache.NewMemoryCache(30*time.Minute, 60*time.Minute)

	// Checkout sessions: Redis when configured so pending coupons survive restarts and scale out.
	var sessions domain.CheckoutSessionStore
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = session.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()
		sessions = session.NewRedisStore(redisClient, cfg.CheckoutSessionTTL)
		log.Info().Msg("Checkout sessions stored in Redis")
	} else {
		sessions = session.NewMemoryStore(memCache, cfg.CheckoutSessionTTL)
		log.Warn().Msg("REDIS_URL not set, checkout sessions kept in process memory")
	}

	// Report exports go to R2 only when a bucket is configured.
	var reportStorage domain.ReportStorage
	if cfg.R2Enabled() {
		r2Storage, err := storage.NewR2Storage(
			ctx,
			cfg.R2AccountID,
			cfg.R2AccessKeyID,
			cfg.R2AccessKeySecret,
			cfg.R2BucketName,
			cfg.R2PublicURL,
			cfg.R2UploadTimeout,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize R2 Storage")
		}
		reportStorage = r2Storage
	}

	gateway := razorpay.NewClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.RazorpayBaseURL, cfg.PaymentTimeout)

	// --- Modules Initialization ---

	pricingRules := usecase.PricingRules{
		FreeShippingThreshold: cfg.FreeShippingThreshold,
		FlatShippingFee:       cfg.FlatShippingFee,
		TaxRate:               cfg.TaxRate,
		MaxCartQuantity:       cfg.MaxCartQuantity,
		Currency:              cfg.Currency,
	}
	pricingUC := usecase.NewPricingUsecase(cartRepo, offerRepo, pricingRules)
	couponUC := usecase.NewCouponUsecase(couponRepo, pricingUC, sessions)
	offerUC := usecase.NewOfferUsecase(offerRepo)
	walletUC := usecase.NewWalletUsecase(walletRepo, txManager)
	orderUC := usecase.NewOrderUsecase(usecase.OrderUsecaseDeps{
		OrderRepo:   orderRepo,
		CartRepo:    cartRepo,
		ProductRepo: productRepo,
		UserRepo:    userRepo,
		CouponRepo:  couponRepo,
		TxManager:   txManager,
		Pricing:     pricingUC,
		Coupons:     couponUC,
		Wallet:      walletUC,
		Gateway:     gateway,
		Metrics:     commerceMetrics,
	})
	paymentUC := usecase.NewPaymentUsecase(orderUC, gateway, cfg.RazorpayKeySecret)
	reportUC := usecase.NewReportUsecase(reportRepo, memCache, reportStorage, cfg.ReportCacheTTL)

	configHandler := v1.NewConfigHandler(memCache, pricingRules)
	cartHandler := v1.NewCartHandler(orderUC, couponUC)
	orderHandler := v1.NewOrderHandler(orderUC, paymentUC, cfg.RazorpayKeyID)
	walletHandler := v1.NewWalletHandler(walletUC)
	adminOrderHandler := v1.NewAdminOrderHandler(orderUC, reportUC.InvalidateSalesReports)
	adminCouponHandler := v1.NewAdminCouponHandler(couponUC)
	adminOfferHandler := v1.NewAdminOfferHandler(offerUC)
	adminReportHandler := v1.NewAdminReportHandler(reportUC)

	// Initialize Rate Limiter with lifecycle management
	// 50 req/s, burst 100, cleanup every minute, TTL 3 minutes
	rateLimiter := middleware.NewRateLimiter(
		context.Background(),
		50,            // requests per second
		100,           // burst
		time.Minute,   // cleanup period
		3*time.Minute, // client TTL
	)
	// Checkout and payment verification hit the provider; tighter per-user budget.
	paymentLimiter := middleware.NewRateLimiter(context.Background(), 1, 5, time.Minute, 10*time.Minute)

	// Set up Router
	mux := http.NewServeMux()

	protected := func(h http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(h)
	}
	paymentProtected := func(h http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(paymentLimiter.Limit(h))
	}
	adminMiddleware := func(h http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(middleware.AdminMiddleware(h))
	}

	// Config (Public)
	mux.HandleFunc("GET /api/v1/config/enums", configHandler.GetEnums)

	// Cart & Coupon (Protected)
	mux.Handle("GET /api/v1/cart", protected(cartHandler.GetCart))
	mux.Handle("POST /api/v1/cart/items", protected(cartHandler.AddToCart))
	mux.Handle("PUT /api/v1/cart/items", protected(cartHandler.UpdateCart))
	mux.Handle("DELETE /api/v1/cart/items/{variantId}", protected(cartHandler.RemoveFromCart))
	mux.Handle("GET /api/v1/cart/summary", protected(cartHandler.Summary))
	mux.Handle("POST /api/v1/cart/coupon", protected(cartHandler.ApplyCoupon))
	mux.Handle("DELETE /api/v1/cart/coupon", protected(cartHandler.RemoveCoupon))

	// Orders & Payments (Protected)
	mux.Handle("GET /api/v1/addresses", protected(orderHandler.ListAddresses))
	mux.Handle("POST /api/v1/checkout", paymentProtected(orderHandler.Checkout))
	mux.Handle("GET /api/v1/orders", protected(orderHandler.ListMyOrders))
	mux.Handle("GET /api/v1/orders/{id}", protected(orderHandler.GetOrder))
	mux.Handle("POST /api/v1/orders/{id}/cancel", protected(orderHandler.CancelOrder))
	mux.Handle("POST /api/v1/orders/{id}/items/{itemId}/return", protected(orderHandler.RequestReturn))
	mux.Handle("POST /api/v1/orders/{id}/payment/retry", paymentProtected(orderHandler.RetryPayment))
	mux.Handle("POST /api/v1/payments/verify", paymentProtected(orderHandler.VerifyPayment))

	// Wallet
	mux.Handle("GET /api/v1/wallet", protected(walletHandler.GetWallet))

	// Admin Orders
	mux.Handle("GET /api/v1/admin/orders", adminMiddleware(adminOrderHandler.ListOrders))
	mux.Handle("GET /api/v1/admin/orders/{id}", adminMiddleware(adminOrderHandler.GetOrder))
	mux.Handle("GET /api/v1/admin/orders/{id}/history", adminMiddleware(adminOrderHandler.GetHistory))
	mux.Handle("PUT /api/v1/admin/orders/{id}/status", adminMiddleware(adminOrderHandler.UpdateStatus))
	mux.Handle("POST /api/v1/admin/orders/{id}/cancel", adminMiddleware(adminOrderHandler.CancelOrder))
	mux.Handle("POST /api/v1/admin/orders/{id}/items/{itemId}/return", adminMiddleware(adminOrderHandler.ResolveReturn))
	mux.Handle("POST /api/v1/admin/orders/{id}/payment/collected", adminMiddleware(adminOrderHandler.MarkCollected))
	mux.Handle("GET /api/v1/admin/inventory/{variantId}/logs", adminMiddleware(adminOrderHandler.GetInventoryLogs))
	mux.Handle("POST /api/v1/admin/users/{id}/wallet/recompute", adminMiddleware(walletHandler.RecomputeBalance))

	// Admin Coupons
	mux.Handle("GET /api/v1/admin/coupons", adminMiddleware(adminCouponHandler.ListCoupons))
	mux.Handle("GET /api/v1/admin/coupons/{id}", adminMiddleware(adminCouponHandler.GetCoupon))
	mux.Handle("POST /api/v1/admin/coupons", adminMiddleware(adminCouponHandler.CreateCoupon))
	mux.Handle("PUT /api/v1/admin/coupons/{id}", adminMiddleware(adminCouponHandler.UpdateCoupon))
	mux.Handle("DELETE /api/v1/admin/coupons/{id}", adminMiddleware(adminCouponHandler.DeleteCoupon))

	// Admin Offers
	mux.Handle("GET /api/v1/admin/offers", adminMiddleware(adminOfferHandler.ListOffers))
	mux.Handle("GET /api/v1/admin/offers/{id}", adminMiddleware(adminOfferHandler.GetOffer))
	mux.Handle("POST /api/v1/admin/offers", adminMiddleware(adminOfferHandler.CreateOffer))
	mux.Handle("PUT /api/v1/admin/offers/{id}", adminMiddleware(adminOfferHandler.UpdateOffer))
	mux.Handle("DELETE /api/v1/admin/offers/{id}", adminMiddleware(adminOfferHandler.DeleteOffer))

	// Admin Reports
	mux.Handle("GET /api/v1/admin/reports/sales", adminMiddleware(adminReportHandler.SalesReport))
	mux.Handle("POST /api/v1/admin/reports/sales/export", adminMiddleware(adminReportHandler.ExportSalesReport))

	if gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	// Health Check
	healthHandler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok"}`))
	}
	mux.HandleFunc("GET /api/v1/health", healthHandler)
	mux.HandleFunc("GET /health", healthHandler) // Support root health check for Load Balancers

	mux.HandleFunc("GET /api/v1/ready", func(w http.ResponseWriter, r *http.Request) {
		pingCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		status := map[string]string{"db": "ok"}
		code := http.StatusOK
		if err := pgxPool.Ping(pingCtx); err != nil {
			status["db"] = "unavailable"
			code = http.StatusServiceUnavailable
		}
		if redisClient != nil {
			status["redis"] = "ok"
			if err := redisClient.Ping(pingCtx).Err(); err != nil {
				status["redis"] = "unavailable"
				code = http.StatusServiceUnavailable
			}
		}
		utils.WriteJSON(w, code, status)
	})

	// Apply CORS (with config injection), Request Logger, Rate Limit, and Gzip
	handler := middleware.NewCORSMiddleware(cfg)(mux)
	handler = middleware.NewRequestLogger(httpMetrics)(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = gziphandler.GzipHandler(handler)

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful Shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	log.Info().Msgf("Server starting on %s", addr)

	// Wait for interrupt signal via channel
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	rateLimiter.Shutdown()
	paymentLimiter.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
