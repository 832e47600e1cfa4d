package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	appCart "github.com/totemfood/orders/internal/application/cart"
	appOrder "github.com/totemfood/orders/internal/application/order"
	appPayment "github.com/totemfood/orders/internal/application/payment"
	appProduct "github.com/totemfood/orders/internal/application/product"
	"github.com/totemfood/orders/internal/config"
	"github.com/totemfood/orders/internal/domain/customer"
	"github.com/totemfood/orders/internal/infrastructure/customerapi"
	"github.com/totemfood/orders/internal/infrastructure/gormstore"
	"github.com/totemfood/orders/internal/infrastructure/id"
	"github.com/totemfood/orders/internal/infrastructure/mercadopago"
	infraobs "github.com/totemfood/orders/internal/infrastructure/observability"
	"github.com/totemfood/orders/internal/infrastructure/observability/oteltrace"
	"github.com/totemfood/orders/internal/infrastructure/observability/prometrics"
	"github.com/totemfood/orders/internal/infrastructure/observability/zaplogger"
	"github.com/totemfood/orders/internal/infrastructure/rediscache"
	"github.com/totemfood/orders/internal/observability"
	httppresentation "github.com/totemfood/orders/internal/presentation/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	baseLogger := zaplogger.New(
		observability.F("service", cfg.ServiceName),
		observability.F("env", cfg.Environment),
	)

	registry := prometrics.New("totemfood", "orders")
	counters := map[observability.MetricKey]observability.Counter{
		observability.MUsecaseRequests: registry.Counter(
			string(observability.MUsecaseRequests),
			"Total number of use case invocations.",
			"use_case", "outcome",
		),
		observability.MHTTPRequests: registry.Counter(
			string(observability.MHTTPRequests),
			"Total number of HTTP requests.",
			"method", "route", "status",
		),
		observability.MExternalRequests: registry.Counter(
			string(observability.MExternalRequests),
			"Total number of outbound requests to external services.",
			"target", "outcome",
		),
		observability.MNotificationsProcessed: registry.Counter(
			string(observability.MNotificationsProcessed),
			"Total number of processed payment notifications.",
			"state", "outcome",
		),
	}
	histograms := map[observability.MetricKey]observability.Histogram{
		observability.MUsecaseDuration: registry.Histogram(
			string(observability.MUsecaseDuration),
			"Duration of use case execution in seconds.",
			nil,
			"use_case",
		),
		observability.MHTTPRequestDuration: registry.Histogram(
			string(observability.MHTTPRequestDuration),
			"Duration of HTTP request handling in seconds.",
			nil,
			"method", "route", "status",
		),
		observability.MExternalRequestDuration: registry.Histogram(
			string(observability.MExternalRequestDuration),
			"Duration of outbound requests in seconds.",
			nil,
			"target",
		),
	}

	obs := infraobs.New(
		oteltrace.New(cfg.ServiceName),
		baseLogger,
		counters,
		histograms,
	)
	systemLogger := obs.Logger().With(observability.F("component", "main"))

	db, err := gormstore.Open(cfg.DBPath)
	if err != nil {
		systemLogger.Error("db_open_failed", observability.F("error", err.Error()))
		os.Exit(1)
	}

	orderRepo := gormstore.NewOrderRepository(db)
	cartRepo := gormstore.NewCartRepository(db)
	productRepo := gormstore.NewProductRepository(db)
	paymentRepo := gormstore.NewPaymentOrderRepository(db)

	var customers customer.API = customerapi.NewClient(cfg.CustomerAPIURL, nil, obs)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		customers = rediscache.NewCustomerCache(customers, rdb, cfg.CustomerCacheTTL, obs)
	}

	gateway := mercadopago.NewClient(mercadopago.Config{
		BaseURL: cfg.MercadoPagoBaseURL,
		Token:   cfg.MercadoPagoToken,
		UserID:  cfg.MercadoPagoUserID,
		PosID:   cfg.MercadoPagoPosID,
	}, obs)

	idGenerator := id.NewUUIDGenerator()

	orderService := appOrder.NewService(orderRepo, cartRepo, customers, paymentRepo, idGenerator, obs)
	cartService := appCart.NewService(cartRepo, orderRepo, productRepo, idGenerator, obs)
	productService := appProduct.NewService(productRepo, idGenerator, obs)
	paymentService := appPayment.NewService(
		paymentRepo, orderService, orderRepo, cartRepo, productRepo, gateway, idGenerator, obs,
	)

	handler := httppresentation.NewHandler(orderService, cartService, productService, paymentService, obs)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", handler.Router())

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		systemLogger.Info("http_server_start",
			observability.F("addr", server.Addr),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			systemLogger.Error("http_server_error",
				observability.F("error", err.Error()),
			)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		systemLogger.Error("http_server_shutdown_error",
			observability.F("error", err.Error()),
		)
	} else {
		systemLogger.Info("http_server_stopped")
	}
}
