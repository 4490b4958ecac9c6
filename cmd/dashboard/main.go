package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jaspervdheide/google-ads-dashboard-sub001/internal/ads"
	"github.com/jaspervdheide/google-ads-dashboard-sub001/internal/api"
	"github.com/jaspervdheide/google-ads-dashboard-sub001/internal/notification"
	"github.com/jaspervdheide/google-ads-dashboard-sub001/internal/platform/aws"
	"github.com/jaspervdheide/google-ads-dashboard-sub001/internal/platform/cache"
	"github.com/jaspervdheide/google-ads-dashboard-sub001/internal/platform/config"
	"github.com/jaspervdheide/google-ads-dashboard-sub001/internal/platform/observability"
	"github.com/jaspervdheide/google-ads-dashboard-sub001/internal/reports"
	"golang.org/x/sync/errgroup"
)

const serviceName = "ads-dashboard"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Println("Loading configuration...")
	cfg := config.MustLoad("config.yaml")

	// Observability first, everything else logs through it
	logger := observability.NewLogger(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)

	metrics, err := observability.NewMetrics(serviceName, cfg.Observability.Metrics.Enabled)
	if err != nil {
		log.Fatalf("Failed to create metrics: %v", err)
	}

	tracerProvider, err := observability.NewTracerProvider(ctx, serviceName, cfg.Observability.Tracing.Endpoint, cfg.Observability.Tracing.Enabled)
	if err != nil {
		log.Fatalf("Failed to create tracer: %v", err)
	}
	defer tracerProvider.Shutdown(ctx)

	logger.Info("observability setup complete")

	// Response cache
	responseCache := cache.NewResponseCache(cfg.Cache.MaxEntries)

	// Quota alerts go to SNS when enabled, otherwise just the log
	var alerts notification.AlertPublisher = notification.NewNoOpPublisher(logger)
	if cfg.Alerts.Enabled {
		awsCfg, err := aws.LoadAWSConfig(ctx, aws.Config{Region: cfg.Alerts.AWSRegion})
		if err != nil {
			logger.LogError(ctx, "failed to load AWS config", err)
			log.Fatalf("Failed to load AWS config: %v", err)
		}

		snsClient := aws.NewSNSClient(aws.SNSClientConfig{
			AWSConfig: awsCfg,
			Logger:    logger,
			Metrics:   metrics,
		})

		publisher, err := notification.NewPublisher(notification.PublisherConfig{
			SNSClient: snsClient,
			TopicARN:  cfg.Alerts.SNSTopicARN,
			Logger:    logger,
			Tracer:    observability.NewTracer(serviceName),
		})
		if err != nil {
			log.Fatalf("Failed to create alert publisher: %v", err)
		}
		alerts = publisher
	}

	// Google Ads client
	logger.Info("creating Google Ads client...")
	adsClient, err := ads.NewHTTPClient(ads.HTTPClientConfig{
		BaseURL:         cfg.GoogleAds.BaseURL,
		DeveloperToken:  cfg.GoogleAds.DeveloperToken,
		AccessToken:     cfg.GoogleAds.AccessToken,
		LoginCustomerID: cfg.GoogleAds.LoginCustomerID,
		RateLimitRPM:    cfg.GoogleAds.RateLimit.RequestsPerMinute,
		RateLimitBurst:  cfg.GoogleAds.RateLimit.Burst,
		Timeout:         cfg.GoogleAds.Timeout,
		Logger:          logger,
		Metrics:         metrics,
	})
	if err != nil {
		logger.LogError(ctx, "failed to create ads client", err)
		log.Fatalf("Failed to create ads client: %v", err)
	}

	// Report service
	service, err := reports.NewService(reports.ServiceConfig{
		Client:   adsClient,
		Cache:    responseCache,
		Accounts: cfg.Accounts,
		Alerts:   alerts,
		Logger:   logger,
		Metrics:  metrics,
		Tracer:   observability.NewTracer(serviceName),
	})
	if err != nil {
		log.Fatalf("Failed to create report service: %v", err)
	}

	// HTTP API
	handler, err := api.NewHandler(api.HandlerConfig{
		Service:        service,
		Logger:         logger,
		MetricsHandler: metrics.Handler(),
	})
	if err != nil {
		log.Fatalf("Failed to create API handler: %v", err)
	}

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: handler.Routes(),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening",
			"address", addr,
			"countries", len(cfg.Accounts.Countries),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Periodic cache eviction
	g.Go(func() error {
		service.RunCacheMaintenance(gctx, 10*time.Minute)
		return nil
	})

	// Shutdown on signal or first group error
	g.Go(func() error {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case <-sigCh:
			logger.Info("shutdown signal received, gracefully stopping...")
		case <-gctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.LogError(ctx, "application exited with error", err)
		os.Exit(1)
	}

	logger.Info("application stopped")
}
