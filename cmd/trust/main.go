package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/richxcame/crediscore/internal/documents"
	"github.com/richxcame/crediscore/internal/fraud"
	"github.com/richxcame/crediscore/internal/llm"
	"github.com/richxcame/crediscore/internal/ocr"
	"github.com/richxcame/crediscore/internal/reputation"
	"github.com/richxcame/crediscore/internal/reviews"
	"github.com/richxcame/crediscore/internal/trustscore"
	"github.com/richxcame/crediscore/pkg/common"
	"github.com/richxcame/crediscore/pkg/config"
	"github.com/richxcame/crediscore/pkg/database"
	"github.com/richxcame/crediscore/pkg/eventbus"
	"github.com/richxcame/crediscore/pkg/health"
	"github.com/richxcame/crediscore/pkg/httpclient"
	"github.com/richxcame/crediscore/pkg/logger"
	"github.com/richxcame/crediscore/pkg/redis"
	"github.com/richxcame/crediscore/pkg/resilience"
	"github.com/richxcame/crediscore/pkg/secrets"
	"github.com/richxcame/crediscore/pkg/storage"
	"github.com/richxcame/crediscore/pkg/tracing"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load(serviceName)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	resolver, err := secrets.NewResolverFromConfig(ctx, cfg.Secrets)
	if err != nil {
		logger.Fatal("failed to initialize secrets provider", zap.Error(err))
	}
	if err := secrets.Apply(ctx, resolver, cfg); err != nil {
		logger.Fatal("failed to resolve secrets", zap.Error(err))
	}

	var extra []gin.HandlerFunc
	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Server.Environment,
			Release:          serviceName + "@" + serviceVersion,
			AttachStacktrace: true,
		}); err != nil {
			logger.Warn("failed to initialize sentry", zap.Error(err))
		} else {
			defer sentry.Flush(2 * time.Second)
			extra = append(extra, sentrygin.New(sentrygin.Options{Repanic: true}))
		}
	}

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, serviceName, cfg.Server.Environment)
	if err != nil {
		logger.Fatal("failed to initialize tracing", zap.Error(err))
	}

	// Postgres
	pool, err := database.NewPostgresPool(&cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close(pool)

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(cfg.Database.URL(), cfg.Database.MigrationsPath); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
		logger.Info("database migrations applied")
	}

	// Redis
	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Event bus
	var bus eventbus.Bus = eventbus.NewMemoryBus()
	if cfg.NATS.Enabled {
		natsBus, err := eventbus.NewNATSBus(cfg.NATS.URL, serviceName)
		if err != nil {
			logger.Fatal("failed to connect to nats", zap.Error(err))
		}
		bus = natsBus
	}
	defer bus.Close()

	breaker := func(name string) *resilience.CircuitBreaker {
		b := cfg.Breaker
		return resilience.NewCircuitBreaker(
			resilience.BuildSettings(name, b.IntervalSeconds, b.TimeoutSeconds, b.FailureThreshold, b.SuccessThreshold),
			resilience.GracefulDegradation(name),
		)
	}

	// Document verification pipeline
	extractor := ocr.NewExtractor(
		ocr.NewOCRSpaceProvider(ocr.OCRSpaceConfig{
			Endpoint: cfg.OCR.Endpoint,
			APIKey:   cfg.OCR.APIKey,
			Engine:   cfg.OCR.PrimaryEngine,
			Timeout:  cfg.OCR.Timeout,
		}, breaker("ocr-primary")),
		ocr.NewOCRSpaceProvider(ocr.OCRSpaceConfig{
			Endpoint: cfg.OCR.Endpoint,
			APIKey:   cfg.OCR.APIKey,
			Engine:   cfg.OCR.SecondaryEngine,
			Timeout:  cfg.OCR.Timeout,
		}, breaker("ocr-secondary")),
	)
	analyzer := documents.NewAnalyzer(llm.NewOpenAICompleter(cfg.Completion, breaker("completion"), httpclient.WithDefaultRetry()))

	docOpts := []documents.ServiceOption{documents.WithEventBus(bus)}
	if cfg.Storage.Enabled {
		store, err := storage.NewS3Storage(ctx, storage.S3Config{
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			BaseURL:   cfg.Storage.BaseURL,
		})
		if err != nil {
			logger.Fatal("failed to initialize object storage", zap.Error(err))
		}
		docOpts = append(docOpts, documents.WithStorage(store, cfg.Storage.PresignTTL))
	}
	documentService := documents.NewService(documents.NewRepository(pool), extractor, analyzer, docOpts...)

	// Reviews, reputation and trust scores
	detector := fraud.NewDetector(cfg.FraudService, breaker("fraud-service"))
	reputationService := reputation.NewService(reputation.NewRepository(pool), bus)
	reviewService := reviews.NewService(reviews.NewRepository(pool), detector, reputationService, bus)
	trustService := trustscore.NewService(trustscore.NewRepository(pool), trustscore.NewCache(redisClient))

	for _, subject := range eventbus.TrustSubjects {
		if err := bus.Subscribe(subject, trustService.RecomputeOnEvent); err != nil {
			logger.Fatal("failed to subscribe trust score recomputation", zap.String("subject", subject), zap.Error(err))
		}
	}

	router := setupRouter(routerDeps{
		corsOrigins: cfg.Server.CORSOrigins,
		handlers: []routeRegistrar{
			documents.NewHandler(documentService),
			reputation.NewHandler(reputationService),
			reviews.NewHandler(reviewService),
			trustscore.NewHandler(trustService),
		},
		checks: map[string]common.CheckFunc{
			"database":      health.PostgresChecker(pool),
			"redis":         health.RedisChecker(redisClient.Client),
			"fraud_service": remoteCheck(detector.Ping),
		},
		optional: []string{"fraud_service"},
		extra:    extra,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("trust engine starting",
			zap.String("port", cfg.Server.Port),
			zap.Bool("nats", cfg.NATS.Enabled),
			zap.Bool("object_storage", cfg.Storage.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down trust engine")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("failed to flush traces", zap.Error(err))
	}
}
