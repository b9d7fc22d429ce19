package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/familyplate/recipebox/cmd/mainconfig"
	"github.com/familyplate/recipebox/internal/api/router"
	appconfig "github.com/familyplate/recipebox/internal/config"
	"github.com/familyplate/recipebox/internal/contributors"
	"github.com/familyplate/recipebox/internal/gallery"
	"github.com/familyplate/recipebox/internal/ingest"
	"github.com/familyplate/recipebox/internal/media"
	"github.com/familyplate/recipebox/internal/notify"
	observemetrics "github.com/familyplate/recipebox/internal/observability/metrics"
	"github.com/familyplate/recipebox/pkg/logging"
)

func main() {
	// Load .env if present; real deployments configure through the environment.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting recipebox API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	awsCfg, err := mainconfig.LoadAWSConfig(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	s3Client := s3.NewFromConfig(awsCfg)
	dynamoClient := dynamodb.NewFromConfig(awsCfg)

	contributorRepo := contributors.NewRepository(dynamoClient, cfg.ContributorsTable, cfg.ContributorsPhoneIndex)
	resolver := contributors.NewResolver(contributorRepo, logger)

	fetcher := media.NewFetcher(media.Config{
		Timeout:  cfg.MediaFetchTimeout,
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
		Logger:   logger,
	})

	writer := gallery.NewWriter(gallery.WriterConfig{
		S3:            s3Client,
		DB:            dynamoClient,
		Bucket:        cfg.GalleryBucket,
		GalleryTable:  cfg.GalleryTable,
		HistoryTable:  cfg.HistoryTable,
		PublicBaseURL: cfg.MediaPublicBaseURL,
		Logger:        logger,
	})

	var notifier *notify.Service
	if cfg.OwnerNotifyEmail != "" && cfg.SESFromEmail != "" {
		sesSender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger)
		notifier = notify.NewService(sesSender, cfg.OwnerNotifyEmail, logger)
		logger.Info("owner notifications enabled", "owner", cfg.OwnerNotifyEmail)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	ingestMetrics := observemetrics.NewIngestMetrics(registry)

	handlerCfg := ingest.HandlerConfig{
		AuthToken:     cfg.TwilioAuthToken,
		PublicBaseURL: cfg.PublicBaseURL,
		Resolver:      resolver,
		Fetcher:       fetcher,
		Archive:       writer,
		Logger:        logger,
		Metrics:       ingestMetrics,
	}
	if notifier != nil {
		handlerCfg.Notifier = notifier
	}
	mmsHandler := ingest.NewHandler(handlerCfg)

	r := router.New(&router.Config{
		Logger:            logger,
		MMSHandler:        mmsHandler,
		MetricsHandler:    promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		WebhookRatePerSec: float64(cfg.WebhookRatePerSec),
		WebhookBurst:      cfg.WebhookBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}
