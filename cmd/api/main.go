package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/complyward/kyc-review-platform/cmd/mainconfig"
	"github.com/complyward/kyc-review-platform/internal/api/router"
	"github.com/complyward/kyc-review-platform/internal/assist"
	appconfig "github.com/complyward/kyc-review-platform/internal/config"
	"github.com/complyward/kyc-review-platform/internal/llm"
	"github.com/complyward/kyc-review-platform/internal/notify"
	"github.com/complyward/kyc-review-platform/internal/observability/metrics"
	"github.com/complyward/kyc-review-platform/internal/review"
	"github.com/complyward/kyc-review-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting kyc-review-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// AWS clients are only initialized when a configured backend uses them.
	needsAWS := cfg.ResumeStoreBackend == "dynamodb" ||
		cfg.ReflectionProvider == "bedrock" ||
		cfg.EmailProvider == "ses"
	var bedrockClient *bedrockruntime.Client
	var dynamoClient *dynamodb.Client
	var sesClient *sesv2.Client
	if needsAWS {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		bedrockClient = bedrockruntime.NewFromConfig(awsCfg)
		dynamoClient = dynamodb.NewFromConfig(awsCfg)
		sesClient = sesv2.NewFromConfig(awsCfg)
	}

	var store review.ResumeStore
	switch cfg.ResumeStoreBackend {
	case "redis":
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		store = review.NewRedisResumeStore(redis.NewClient(opts), cfg.ResumeSnapshotTTL, nil)
		logger.Info("using redis resume store", "addr", cfg.RedisAddr)
	case "dynamodb":
		store = review.NewDynamoResumeStore(dynamoClient, cfg.ResumeTableName, cfg.ResumeSnapshotTTL, logger)
		logger.Info("using dynamodb resume store", "table", cfg.ResumeTableName)
	default:
		store = review.NewMemoryResumeStore()
		logger.Warn("using in-memory resume store: paused runs are lost on restart")
	}

	var llmClient llm.Client
	var llmModel string
	switch cfg.ReflectionProvider {
	case "bedrock":
		if bedrockClient == nil {
			logger.Error("bedrock provider requires AWS config")
			os.Exit(1)
		}
		llmClient = llm.NewBedrockClient(bedrockClient)
		llmModel = cfg.BedrockModelID
	case "gemini":
		gc, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to create gemini client", "error", err)
			os.Exit(1)
		}
		defer gc.Close()
		llmClient = gc
		llmModel = cfg.GeminiModelID
	}

	var provider review.ReflectionProvider = review.MockReflectionProvider{}
	if llmClient != nil {
		provider = review.NewLLMReflectionProvider(llmClient, llmModel)
	}
	logger.Info("reflection provider selected", "provider", provider.Name())

	var sender notify.EmailSender
	switch cfg.EmailProvider {
	case "sendgrid":
		sender = notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
	case "ses":
		sender = notify.NewSESSender(sesClient, notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger)
	default:
		sender = notify.NewStubEmailSender(logger)
	}

	var notifier review.GateNotifier
	if n := notify.NewApprovalNotifier(sender, cfg.ApprovalRecipient, cfg.PublicBaseURL, logger); n != nil {
		notifier = n
	}

	reviewMetrics := metrics.NewReviewMetrics(prometheus.DefaultRegisterer)

	orchestrator := review.NewOrchestrator(review.Triage, store, provider, logger,
		review.WithMetrics(reviewMetrics),
		review.WithReflectionEnabled(cfg.ReflectionEnabled),
	)
	reviewHandler := review.NewHandler(orchestrator, notifier, logger)

	var assistHandler *assist.Handler
	if llmClient != nil {
		assistHandler = assist.NewHandler(assist.NewService(llmClient, llmModel, logger), logger)
	}

	r := router.New(&router.Config{
		Logger:          logger,
		ReviewHandler:   reviewHandler,
		AssistHandler:   assistHandler,
		MetricsHandler:  promhttp.Handler(),
		ReviewRateLimit: 5,
		ReviewRateBurst: 10,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
