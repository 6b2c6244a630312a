package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcminio "github.com/testcontainers/testcontainers-go/modules/minio"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcrabbitmq "github.com/testcontainers/testcontainers-go/modules/rabbitmq"

	"github.com/mocapkit/skeleton-processing-service/internal/domain/entity"
	"github.com/mocapkit/skeleton-processing-service/internal/infra/detector"
	"github.com/mocapkit/skeleton-processing-service/internal/infra/email"
	"github.com/mocapkit/skeleton-processing-service/internal/infra/ffmpeg"
	miniostorage "github.com/mocapkit/skeleton-processing-service/internal/infra/minio"
	"github.com/mocapkit/skeleton-processing-service/internal/infra/postgres"
	"github.com/mocapkit/skeleton-processing-service/internal/infra/rabbitmq"
	"github.com/mocapkit/skeleton-processing-service/internal/infra/render"
	"github.com/mocapkit/skeleton-processing-service/internal/infra/session"
	"github.com/mocapkit/skeleton-processing-service/internal/npy"
	"github.com/mocapkit/skeleton-processing-service/internal/skeleton"
	"github.com/mocapkit/skeleton-processing-service/internal/usecase"
	"github.com/mocapkit/skeleton-processing-service/pkg/logger"
)

// detectorStub answers every frame with a full body detection so the
// pipeline exercises real coordinate scaling without the model sidecar.
func detectorStub(t *testing.T) *httptest.Server {
	t.Helper()
	body := make([]entity.Landmark, skeleton.PointCount(skeleton.Body))
	for i := range body {
		body[i] = entity.Landmark{
			X:          0.1 + 0.8*float64(i)/float64(len(body)),
			Y:          0.5,
			Visibility: 0.9,
		}
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(entity.LandmarkSet{Body: body})
	}))
}

// makeTestVideo renders a short synthetic clip. Skips the test when
// ffmpeg is not installed.
func makeTestVideo(t *testing.T, dir string) string {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed, skipping integration test")
	}
	path := filepath.Join(dir, "cam_a.mp4")
	cmd := exec.Command("ffmpeg",
		"-f", "lavfi", "-i", "testsrc=duration=1:size=320x240:rate=3",
		"-c:v", "libx264", "-pix_fmt", "yuv420p", "-y", path,
	)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "generate test video: %s", out)
	return path
}

func TestProcessSessionEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// Start PostgreSQL container
	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("sessions"),
		tcpostgres.WithUsername("session_user"),
		tcpostgres.WithPassword("session_pass"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	defer pgContainer.Terminate(ctx)

	pgConnStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Start RabbitMQ container
	rmqContainer, err := tcrabbitmq.Run(ctx,
		"rabbitmq:3.12-management-alpine",
	)
	require.NoError(t, err)
	defer rmqContainer.Terminate(ctx)

	rmqURL, err := rmqContainer.AmqpURL(ctx)
	require.NoError(t, err)

	// Start MinIO container
	minioContainer, err := tcminio.Run(ctx,
		"minio/minio:latest",
		tcminio.WithUsername("minioadmin"),
		tcminio.WithPassword("minioadmin"),
	)
	require.NoError(t, err)
	defer minioContainer.Terminate(ctx)

	minioEndpoint, err := minioContainer.ConnectionString(ctx)
	require.NoError(t, err)

	// Run migrations
	err = postgres.RunMigrations(pgConnStr, "../../migrations")
	require.NoError(t, err)

	// Setup MinIO storage
	storage, err := miniostorage.NewStorage(miniostorage.StorageConfig{
		Endpoint:         minioEndpoint,
		AccessKey:        "minioadmin",
		SecretKey:        "minioadmin",
		UseSSL:           false,
		RecordingsBucket: "recordings",
		OutputsBucket:    "outputs",
	})
	require.NoError(t, err)
	require.NoError(t, storage.EnsureBuckets(ctx))

	// Upload one camera video for the session
	sessionID := "sess-integration"
	videoPath := makeTestVideo(t, t.TempDir())

	minioClient, err := miniogo.New(minioEndpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	require.NoError(t, err)

	_, err = minioClient.FPutObject(ctx, "recordings", sessionID+"/cam_a.mp4", videoPath, miniogo.PutObjectOptions{
		ContentType: "video/mp4",
	})
	require.NoError(t, err)

	// Detector stub
	detectorSrv := detectorStub(t)
	defer detectorSrv.Close()

	// Setup RabbitMQ publisher connection
	rmqConn, err := amqp.Dial(rmqURL)
	require.NoError(t, err)
	defer rmqConn.Close()

	pub, err := rabbitmq.NewPublisher(rmqConn, "mocapkit.session")
	require.NoError(t, err)

	statusPub := rabbitmq.NewStatusPublisher(pub)
	dlqPub := rabbitmq.NewDLQPublisher(pub, "session.processing.dlq")

	// Setup DB pool
	pool, err := pgxpool.New(ctx, pgConnStr)
	require.NoError(t, err)
	defer pool.Close()

	// Setup use case with real adapters
	log, _ := logger.New("debug")
	repo := postgres.NewJobRepository(pool)
	locator := session.NewLocator(t.TempDir())
	opener := ffmpeg.NewOpener(log)
	sink := ffmpeg.NewSink(log)
	pose := detector.NewClient(detectorSrv.URL, 30*time.Second, log)
	notifier := email.NewSMTPNotifier("localhost", 1025, "test@test.local", log)

	uc := usecase.NewProcessSessionUseCase(
		repo, storage, locator, opener, pose, render.NewOverlay(), sink,
		statusPub, dlqPub, notifier,
		log,
		usecase.ProcessSessionConfig{
			MaxRetries:      3,
			RenderAnnotated: true,
		},
	)

	// Setup consumer
	consumer, err := rabbitmq.NewConsumer(rabbitmq.ConsumerConfig{
		URL:         rmqURL,
		Queue:       "session.processing",
		Exchange:    "mocapkit.session",
		DLQ:         "session.processing.dlq",
		StatusQueue: "session.status",
		Prefetch:    1,
		WorkerCount: 1,
		BaseDelayMs: 100,
	}, uc.Execute, log)
	require.NoError(t, err)
	defer consumer.Close()

	consumerCtx, consumerCancel := context.WithCancel(ctx)
	defer consumerCancel()

	go func() {
		consumer.Start(consumerCtx)
	}()

	// Give consumer time to start
	time.Sleep(500 * time.Millisecond)

	// Publish processing message
	jobID := uuid.New()
	processingMsg := entity.SessionProcessingMessage{
		JobID:     jobID,
		SessionID: sessionID,
		UserEmail: "test@test.local",
	}
	msgBody, err := json.Marshal(processingMsg)
	require.NoError(t, err)

	pubCh, err := rmqConn.Channel()
	require.NoError(t, err)
	err = pubCh.PublishWithContext(ctx,
		"mocapkit.session",
		"session.processing",
		false, false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        msgBody,
		},
	)
	require.NoError(t, err)
	pubCh.Close()

	// Wait for status message on session.status queue
	statusCh, err := rmqConn.Channel()
	require.NoError(t, err)
	defer statusCh.Close()

	statusMsgs, err := statusCh.Consume("session.status", "", true, false, false, false, nil)
	require.NoError(t, err)

	var statusMsg entity.SessionStatusMessage
	select {
	case delivery := <-statusMsgs:
		err = json.Unmarshal(delivery.Body, &statusMsg)
		require.NoError(t, err)
	case <-time.After(2 * time.Minute):
		t.Fatal("timeout waiting for status message")
	}

	// Assert status
	assert.Equal(t, jobID, statusMsg.JobID)
	assert.Equal(t, entity.SessionJobStatusCompleted, statusMsg.Status)
	assert.Equal(t, 1, statusMsg.CameraCount)
	assert.Greater(t, statusMsg.FrameCount, 0)
	assert.Equal(t, skeleton.TotalPoints(), statusMsg.PointCount)
	assert.NotEmpty(t, statusMsg.ArtifactKey)

	// Verify the stacked array artifact in MinIO
	tmpNpy := filepath.Join(t.TempDir(), "stacked.npy")
	err = minioClient.FGetObject(ctx, "outputs", statusMsg.ArtifactKey, tmpNpy, miniogo.GetObjectOptions{})
	require.NoError(t, err)

	shape, _, err := npy.ReadFile(tmpNpy)
	require.NoError(t, err)
	require.Len(t, shape, 4)
	assert.Equal(t, 1, shape[0], "one camera")
	assert.Equal(t, statusMsg.FrameCount, shape[1])
	assert.Equal(t, skeleton.TotalPoints(), shape[2])
	assert.Equal(t, 2, shape[3])

	// Verify job record in database
	var dbStatus string
	var dbFrameCount int
	err = pool.QueryRow(ctx,
		"SELECT status, frame_count FROM session_jobs WHERE id=$1", jobID,
	).Scan(&dbStatus, &dbFrameCount)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", dbStatus)
	assert.Equal(t, statusMsg.FrameCount, dbFrameCount)

	consumerCancel()

	t.Logf("Test passed: %d frames, artifact at %s", statusMsg.FrameCount, statusMsg.ArtifactKey)
}

func TestProcessSessionMalformedMessage(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// Start RabbitMQ
	rmqContainer, err := tcrabbitmq.Run(ctx,
		"rabbitmq:3.12-management-alpine",
	)
	require.NoError(t, err)
	defer rmqContainer.Terminate(ctx)

	rmqURL, err := rmqContainer.AmqpURL(ctx)
	require.NoError(t, err)

	// Start PostgreSQL
	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("sessions"),
		tcpostgres.WithUsername("session_user"),
		tcpostgres.WithPassword("session_pass"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	defer pgContainer.Terminate(ctx)

	pgConnStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	err = postgres.RunMigrations(pgConnStr, "../../migrations")
	require.NoError(t, err)

	// MinIO (no objects needed for this test)
	minioContainer, err := tcminio.Run(ctx,
		"minio/minio:latest",
		tcminio.WithUsername("minioadmin"),
		tcminio.WithPassword("minioadmin"),
	)
	require.NoError(t, err)
	defer minioContainer.Terminate(ctx)

	minioEndpoint, err := minioContainer.ConnectionString(ctx)
	require.NoError(t, err)

	storage, err := miniostorage.NewStorage(miniostorage.StorageConfig{
		Endpoint:         minioEndpoint,
		AccessKey:        "minioadmin",
		SecretKey:        "minioadmin",
		UseSSL:           false,
		RecordingsBucket: "recordings",
		OutputsBucket:    "outputs",
	})
	require.NoError(t, err)
	require.NoError(t, storage.EnsureBuckets(ctx))

	pool, err := pgxpool.New(ctx, pgConnStr)
	require.NoError(t, err)
	defer pool.Close()

	log, _ := logger.New("debug")
	rmqConn, err := amqp.Dial(rmqURL)
	require.NoError(t, err)
	defer rmqConn.Close()

	pub, err := rabbitmq.NewPublisher(rmqConn, "mocapkit.session")
	require.NoError(t, err)

	statusPub := rabbitmq.NewStatusPublisher(pub)
	dlqPub := rabbitmq.NewDLQPublisher(pub, "session.processing.dlq")

	detectorSrv := detectorStub(t)
	defer detectorSrv.Close()

	repo := postgres.NewJobRepository(pool)
	locator := session.NewLocator(t.TempDir())
	opener := ffmpeg.NewOpener(log)
	sink := ffmpeg.NewSink(log)
	pose := detector.NewClient(detectorSrv.URL, 30*time.Second, log)
	notifier := email.NewSMTPNotifier("localhost", 1025, "test@test.local", log)

	uc := usecase.NewProcessSessionUseCase(
		repo, storage, locator, opener, pose, render.NewOverlay(), sink,
		statusPub, dlqPub, notifier,
		log,
		usecase.ProcessSessionConfig{
			MaxRetries:      3,
			RenderAnnotated: false,
		},
	)

	consumer, err := rabbitmq.NewConsumer(rabbitmq.ConsumerConfig{
		URL:         rmqURL,
		Queue:       "session.processing",
		Exchange:    "mocapkit.session",
		DLQ:         "session.processing.dlq",
		StatusQueue: "session.status",
		Prefetch:    1,
		WorkerCount: 1,
		BaseDelayMs: 100,
	}, uc.Execute, log)
	require.NoError(t, err)
	defer consumer.Close()

	consumerCtx, consumerCancel := context.WithCancel(ctx)
	defer consumerCancel()

	go func() {
		consumer.Start(consumerCtx)
	}()
	time.Sleep(500 * time.Millisecond)

	// Publish malformed message
	pubCh, err := rmqConn.Channel()
	require.NoError(t, err)
	err = pubCh.PublishWithContext(ctx,
		"mocapkit.session",
		"session.processing",
		false, false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        []byte(`{invalid json`),
		},
	)
	require.NoError(t, err)
	pubCh.Close()

	// Wait and verify message landed in DLQ
	time.Sleep(2 * time.Second)

	dlqCh, err := rmqConn.Channel()
	require.NoError(t, err)
	defer dlqCh.Close()

	dlqMsg, ok, err := dlqCh.Get("session.processing.dlq", true)
	require.NoError(t, err)
	assert.True(t, ok, "malformed message should be in DLQ")
	assert.Equal(t, `{invalid json`, string(dlqMsg.Body))

	consumerCancel()
	t.Log("Test passed: malformed message sent to DLQ")
}
