package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/mocapkit/skeleton-processing-service/internal/infra/config"
	"github.com/mocapkit/skeleton-processing-service/internal/infra/detector"
	"github.com/mocapkit/skeleton-processing-service/internal/infra/email"
	"github.com/mocapkit/skeleton-processing-service/internal/infra/ffmpeg"
	"github.com/mocapkit/skeleton-processing-service/internal/infra/metrics"
	miniostorage "github.com/mocapkit/skeleton-processing-service/internal/infra/minio"
	"github.com/mocapkit/skeleton-processing-service/internal/infra/postgres"
	"github.com/mocapkit/skeleton-processing-service/internal/infra/rabbitmq"
	"github.com/mocapkit/skeleton-processing-service/internal/infra/render"
	"github.com/mocapkit/skeleton-processing-service/internal/infra/session"
	"github.com/mocapkit/skeleton-processing-service/internal/infra/tracing"
	"github.com/mocapkit/skeleton-processing-service/internal/usecase"
	"github.com/mocapkit/skeleton-processing-service/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	fatalOnErr(err, "load config")

	log, err := logger.New(cfg.LogLevel)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	log.Info("starting skeleton-processing-service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing (non-fatal if Jaeger unavailable)
	tp, err := tracing.InitTracer(ctx, cfg.JaegerEndpoint)
	if err != nil {
		log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
	} else {
		defer tp.Shutdown(ctx)
	}

	// Database
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	fatalOnErr(err, "connect to postgres")
	defer pool.Close()

	// Migrations
	err = postgres.RunMigrations(cfg.DatabaseURL, "migrations")
	if err != nil {
		log.Warn("migration warning", zap.Error(err))
	}

	// MinIO
	storage, err := miniostorage.NewStorage(miniostorage.StorageConfig{
		Endpoint:         cfg.MinIOEndpoint,
		AccessKey:        cfg.MinIOAccessKey,
		SecretKey:        cfg.MinIOSecretKey,
		UseSSL:           cfg.MinIOUseSSL,
		RecordingsBucket: cfg.MinIORecordingsBucket,
		OutputsBucket:    cfg.MinIOOutputsBucket,
	})
	fatalOnErr(err, "create minio storage")
	fatalOnErr(storage.EnsureBuckets(ctx), "ensure minio buckets")

	// RabbitMQ publisher connection
	rmqConn, err := amqp.Dial(cfg.RabbitMQURL)
	fatalOnErr(err, "connect to rabbitmq for publisher")
	defer rmqConn.Close()

	pub, err := rabbitmq.NewPublisher(rmqConn, cfg.RabbitMQExchange)
	fatalOnErr(err, "create rabbitmq publisher")

	statusPub := rabbitmq.NewStatusPublisher(pub)
	dlqPub := rabbitmq.NewDLQPublisher(pub, cfg.RabbitMQDLQ)

	// Infra adapters
	repo := postgres.NewJobRepository(pool)
	locator := session.NewLocator(cfg.SessionsDir)
	opener := ffmpeg.NewOpener(log)
	sink := ffmpeg.NewSink(log)
	overlay := render.NewOverlay()
	notifier := email.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, log)

	// The detector sidecar holds the model weights; one client handle is
	// shared by every frame of every session.
	pose := detector.NewClient(cfg.DetectorURL, time.Duration(cfg.DetectorTimeoutMs)*time.Millisecond, log)

	// Use case
	uc := usecase.NewProcessSessionUseCase(
		repo, storage, locator, opener, pose, overlay, sink,
		statusPub, dlqPub, notifier,
		log,
		usecase.ProcessSessionConfig{
			MaxRetries:      cfg.MaxRetries,
			RenderAnnotated: cfg.RenderAnnotated,
		},
	)

	// Metrics server
	metricsSrv := metrics.StartMetricsServer(ctx, cfg.MetricsPort, log)

	// Consumer (worker pool)
	consumer, err := rabbitmq.NewConsumer(rabbitmq.ConsumerConfig{
		URL:         cfg.RabbitMQURL,
		Queue:       cfg.RabbitMQProcessingQueue,
		Exchange:    cfg.RabbitMQExchange,
		DLQ:         cfg.RabbitMQDLQ,
		StatusQueue: cfg.RabbitMQStatusQueue,
		Prefetch:    cfg.RabbitMQPrefetch,
		WorkerCount: cfg.WorkerCount,
		BaseDelayMs: cfg.RetryBaseDelayMs,
	}, uc.Execute, log)
	fatalOnErr(err, "create consumer")

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	log.Info("skeleton-processing-service started, consuming session jobs")

	if err := consumer.Start(ctx); err != nil {
		log.Error("consumer error", zap.Error(err))
	}

	// Shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	metricsSrv.Shutdown(shutdownCtx)

	consumer.Close()
	log.Info("skeleton-processing-service stopped")
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		panic(msg + ": " + err.Error())
	}
}
