package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"procurement-be/internal/cart"
	"procurement-be/internal/category"
	"procurement-be/internal/config"
	"procurement-be/internal/db"
	"procurement-be/internal/httpx"
	"procurement-be/internal/inventory"
	"procurement-be/internal/logger"
	"procurement-be/internal/middleware"
	"procurement-be/internal/notify"
	"procurement-be/internal/order"
	"procurement-be/internal/product"
	"procurement-be/internal/profile"
	"procurement-be/internal/redisx"
	"procurement-be/internal/user"

	"go.uber.org/zap"
)

const (
	importTimeout   = 30 * time.Second
	shutdownTimeout = 5 * time.Second
	notifyBuffer    = 1024
)

var (
	initDBFunc      = db.InitDB
	startServerFunc = func(srv *http.Server) error { return srv.ListenAndServe() }
)

// extras are the optional collaborators that depend on outside services.
type extras struct {
	Notifier notify.Notifier
	Idem     httpx.Idempotency
	Limiter  *middleware.Limiter
}

func newServer(cfg *config.Config, database *sql.DB, ex extras) http.Handler {
	tx := db.NewTxRunner(database)
	tokens := user.NewTokens(cfg.JWTSecret, 0)

	notifier := ex.Notifier
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}

	userRepo := user.NewRepository(database)
	profileRepo := profile.NewRepository(database)
	cartRepo := cart.NewRepository(database)
	stockRepo := inventory.NewRepository(database)
	orderRepo := order.NewRepository(database)

	ledger := inventory.NewLedger(stockRepo)
	importer := inventory.NewImporter(inventory.NewCatalogRepository(database), tx, inventory.NewHTTPFetcher(importTimeout))
	profileSvc := profile.NewService(profileRepo, cartRepo, tx)

	h := &httpx.Handler{
		Users:      user.NewService(userRepo, tokens),
		Profiles:   profileSvc,
		Categories: category.NewService(category.NewRepository(database)),
		Products:   product.NewService(product.NewRepository(database)),
		Stocks:     inventory.NewService(stockRepo, importer),
		Carts:      cart.NewService(cartRepo, stockRepo, ledger, tx),
		Orders: order.NewService(orderRepo, cartRepo, ledger, tx, profileRepo, notifier,
			order.PolicyFor(cfg.DeliveryRequiresConfirmation)),
		Idem:     ex.Idem,
		TokenTTL: tokens.TTL(),
	}

	return httpx.NewRouter(h, httpx.RouterDeps{
		Tokens:   tokens,
		Profiles: profileSvc,
		Limiter:  ex.Limiter,
	})
}

func run() error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	lg := logger.L()

	database := initDBFunc(cfg)
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var ex extras

	if len(cfg.KafkaBrokers) > 0 {
		kn := notify.NewKafkaNotifier(cfg.KafkaBrokers, cfg.NotifyTopic, cfg.ServiceName, notifyBuffer)
		kn.Start()
		defer kn.Close()
		ex.Notifier = kn
	}

	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		if err := redisx.Ping(ctx, rdb); err != nil {
			lg.Warn("redis ping failed, orders are placed without idempotency while it is down", zap.Error(err))
		}
		ex.Idem = redisx.NewIdempotency(rdb)
	}

	ex.Limiter = middleware.NewLimiter(cfg.InternalSecretKey)
	go ex.Limiter.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           newServer(cfg, database, ex),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info("http server listening", zap.String("addr", srv.Addr))
		errCh <- startServerFunc(srv)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	lg.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("server: %v", err)
	}
}
