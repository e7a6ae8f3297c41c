package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/giglane/giglane-backend/api/controllers"
	"github.com/giglane/giglane-backend/api/routes"
	"github.com/giglane/giglane-backend/internal/coworkers"
	"github.com/giglane/giglane-backend/internal/disputes"
	"github.com/giglane/giglane-backend/internal/mailer"
	"github.com/giglane/giglane-backend/internal/notifications"
	"github.com/giglane/giglane-backend/internal/orders"
	"github.com/giglane/giglane-backend/internal/payments"
	"github.com/giglane/giglane-backend/internal/users"
	"github.com/giglane/giglane-backend/internal/wallet"
	"github.com/giglane/giglane-backend/pkg/config"
	"github.com/giglane/giglane-backend/pkg/db"
	"github.com/giglane/giglane-backend/pkg/logger"
	"github.com/giglane/giglane-backend/pkg/migrate"
	"github.com/giglane/giglane-backend/pkg/redis"
	"github.com/giglane/giglane-backend/pkg/storage/gcs"
	"github.com/giglane/giglane-backend/pkg/stripe"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	var gcsClient *gcs.Client
	if cfg.GCS.BucketName != "" {
		gcsClient, err = gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap gcs", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "gcs bucket not configured, file uploads disabled")
	}

	mail, err := mailer.New(cfg.Mailer)
	if err != nil {
		logg.Warn(context.Background(), "mailer not configured, emails disabled")
		mail = mailer.NewNoop()
	}

	usersRepo := users.NewRepository(dbClient.DB())
	notifRepo := notifications.NewRepository(dbClient.DB())

	dispatcher, err := notifications.NewDispatcher(notifRepo, mail, usersRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification dispatcher", err)
		os.Exit(1)
	}

	notifSvc, err := notifications.NewService(notifRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	walletRepo := wallet.NewRepository(dbClient.DB())
	walletSvc, err := wallet.NewService(walletRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create wallet service", err)
		os.Exit(1)
	}

	paySvc, err := payments.NewService(walletRepo, walletSvc, stripeClient, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	reward, err := decimal.NewFromString(cfg.Orders.ReferralReward)
	if err != nil {
		logg.Warn(context.Background(), "invalid referral reward value, using default")
		reward = decimal.Zero
	}

	var fileStore orders.FileStore
	if gcsClient != nil {
		fileStore = gcsClient
	}

	ordersRepo := orders.NewRepository(dbClient.DB())
	ordersSvc, err := orders.NewService(orders.ServiceParams{
		Repo:            ordersRepo,
		Tx:              dbClient,
		Capturer:        paySvc,
		Wallets:         walletSvc,
		Users:           usersRepo,
		Notifier:        dispatcher,
		Files:           fileStore,
		Logger:          logg,
		CustomRevisions: cfg.Orders.CustomPackageRevisions,
		ReferralReward:  reward,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	disputesSvc, err := disputes.NewService(disputes.ServiceParams{
		Repo:     disputes.NewRepository(dbClient.DB()),
		Tx:       dbClient,
		Notifier: dispatcher,
		Wallets:  walletSvc,
		Refunder: stripeClient,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create disputes service", err)
		os.Exit(1)
	}

	coworkersSvc, err := coworkers.NewService(coworkers.NewRepository(dbClient.DB()), dbClient, usersRepo, dispatcher, nil)
	if err != nil {
		logg.Error(context.Background(), "failed to create coworkers service", err)
		os.Exit(1)
	}

	readiness := map[string]controllers.Pinger{
		"database": dbClient,
		"redis":    redisClient,
	}
	var uploader controllers.Uploader
	if gcsClient != nil {
		readiness["storage"] = gcsClient
		uploader = gcsClient
	}

	handler := routes.NewRouter(routes.Deps{
		Config:        cfg,
		Logger:        logg,
		Readiness:     readiness,
		Orders:        ordersSvc,
		Wallet:        walletSvc,
		Payments:      paySvc,
		Notifications: notifSvc,
		Disputes:      disputesSvc,
		Coworkers:     coworkersSvc,
		Files:         uploader,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
			os.Exit(1)
		}
		logg.Info(ctx, "api server shut down gracefully")
	}
}
