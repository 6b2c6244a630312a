package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/mocapkit/skeleton-processing-service/internal/domain/entity"
	"github.com/mocapkit/skeleton-processing-service/internal/domain/port"
	"github.com/mocapkit/skeleton-processing-service/internal/infra/metrics"
	"github.com/mocapkit/skeleton-processing-service/internal/npy"
	"github.com/mocapkit/skeleton-processing-service/internal/skeleton"
)

// ArtifactFileName encodes the stacked array's axis semantics:
// cameras, frames, tracked points, pixel XY.
const ArtifactFileName = "mediapipe_2dData_numCams_numFrames_numTrackedPoints_pixelXY.npy"

// annotatedSuffix is appended to a video's stem when saving its overlay
// copy.
const annotatedSuffix = "_mediapipe"

// defaultFPS is used for annotated output when the probe reports no
// usable frame rate.
const defaultFPS = 30.0

// ProcessSessionUseCase runs skeleton detection over every synchronized
// video of a session and persists the stacked 2D landmark array.
type ProcessSessionUseCase struct {
	repo      port.JobRepository
	storage   port.SessionStorage
	locator   port.SessionLocator
	opener    port.VideoOpener
	detector  port.Detector
	renderer  port.Renderer
	sink      port.VideoSink
	publisher port.StatusPublisher
	dlq       port.DLQPublisher
	notifier  port.FailureNotifier
	logger    *zap.Logger
	maxRetry  int
	annotate  bool
}

type ProcessSessionConfig struct {
	MaxRetries      int
	RenderAnnotated bool
}

func NewProcessSessionUseCase(
	repo port.JobRepository,
	storage port.SessionStorage,
	locator port.SessionLocator,
	opener port.VideoOpener,
	detector port.Detector,
	renderer port.Renderer,
	sink port.VideoSink,
	publisher port.StatusPublisher,
	dlq port.DLQPublisher,
	notifier port.FailureNotifier,
	logger *zap.Logger,
	cfg ProcessSessionConfig,
) *ProcessSessionUseCase {
	return &ProcessSessionUseCase{
		repo:      repo,
		storage:   storage,
		locator:   locator,
		opener:    opener,
		detector:  detector,
		renderer:  renderer,
		sink:      sink,
		publisher: publisher,
		dlq:       dlq,
		notifier:  notifier,
		logger:    logger,
		maxRetry:  cfg.MaxRetries,
		annotate:  cfg.RenderAnnotated,
	}
}

func (uc *ProcessSessionUseCase) Execute(ctx context.Context, rawMsg []byte) error {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "ProcessSessionUseCase.Execute")
	defer span.End()

	totalTimer := time.Now()

	var msg entity.SessionProcessingMessage
	if err := json.Unmarshal(rawMsg, &msg); err != nil {
		uc.logger.Error("failed to unmarshal message", zap.Error(err), zap.ByteString("body", rawMsg))
		_ = uc.dlq.PublishToDLQ(ctx, rawMsg, "unmarshal_error: "+err.Error())
		return nil
	}

	span.SetAttributes(
		attribute.String("job.id", msg.JobID.String()),
		attribute.String("job.session_id", msg.SessionID),
	)

	log := uc.logger.With(zap.String("job_id", msg.JobID.String()), zap.String("session_id", msg.SessionID))

	job, err := uc.repo.FindByID(ctx, msg.JobID)
	if err != nil {
		job = entity.NewSessionJob(msg.SessionID, uc.maxRetry)
		job.ID = msg.JobID
		if err := uc.repo.Create(ctx, job); err != nil {
			log.Error("failed to create job record", zap.Error(err))
			return fmt.Errorf("create job: %w", err)
		}
	}

	if !job.CanRetry() {
		log.Warn("job exhausted retries, sending to DLQ")
		_ = uc.handlePermanentFailure(ctx, job, msg, rawMsg, "max retries exceeded")
		return nil
	}

	job.MarkProcessing()
	if err := uc.repo.Update(ctx, job); err != nil {
		log.Error("failed to update job to PROCESSING", zap.Error(err))
		return fmt.Errorf("update job: %w", err)
	}

	metrics.ActiveWorkers.Inc()
	defer metrics.ActiveWorkers.Dec()

	if err := uc.processSession(ctx, job, msg, rawMsg, log); err != nil {
		return err
	}

	metrics.SessionsProcessedTotal.WithLabelValues("completed").Inc()
	metrics.SessionStageDuration.WithLabelValues("total").Observe(time.Since(totalTimer).Seconds())

	return nil
}

func (uc *ProcessSessionUseCase) processSession(
	ctx context.Context,
	job *entity.SessionJob,
	msg entity.SessionProcessingMessage,
	rawMsg []byte,
	log *zap.Logger,
) error {
	tracer := otel.Tracer("usecase")

	// Fetch the session's synchronized videos from object storage into
	// the local session layout.
	dlStart := time.Now()
	ctx2, spanDl := tracer.Start(ctx, "download_videos")
	syncDir, err := uc.locator.SynchronizedVideosDir(msg.SessionID)
	if err != nil {
		spanDl.End()
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "resolve_videos_dir: "+err.Error(), log)
	}
	if _, err := uc.storage.DownloadVideos(ctx2, msg.SessionID, syncDir); err != nil {
		spanDl.End()
		log.Error("failed to download session videos", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "download_videos: "+err.Error(), log)
	}
	spanDl.End()
	metrics.SessionStageDuration.WithLabelValues("download").Observe(time.Since(dlStart).Seconds())

	// Camera identity is fixed by filename sort, not listing order.
	videos, err := uc.locator.SynchronizedVideos(msg.SessionID)
	if err != nil {
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "list_videos: "+err.Error(), log)
	}
	if len(videos) == 0 {
		return uc.handlePermanentFailure(ctx, job, msg, rawMsg, "no synchronized videos found for session")
	}

	detectStart := time.Now()
	perCamera := make([]*skeleton.PerCameraArrays, 0, len(videos))
	for camIdx, videoPath := range videos {
		ctx3, spanCam := tracer.Start(ctx, "detect_video")
		spanCam.SetAttributes(
			attribute.Int("camera.index", camIdx),
			attribute.String("camera.video", filepath.Base(videoPath)),
		)
		arrays, err := uc.processVideo(ctx3, msg.SessionID, videoPath, camIdx, log)
		spanCam.End()
		if err != nil {
			var firstFrame *FirstFrameError
			if errors.As(err, &firstFrame) {
				// Fatal IO precondition: retrying will not make frame 0
				// decodable.
				log.Error("first frame decode failed, aborting session", zap.Error(err))
				return uc.handlePermanentFailure(ctx, job, msg, rawMsg, err.Error())
			}
			log.Error("video processing failed", zap.Int("camera", camIdx), zap.Error(err))
			return uc.handleRetryableFailure(ctx, job, msg, rawMsg,
				fmt.Sprintf("process_video[%d]: %v", camIdx, err), log)
		}
		perCamera = append(perCamera, arrays)
	}
	metrics.SessionStageDuration.WithLabelValues("detect").Observe(time.Since(detectStart).Seconds())

	// Stack cameras. A shape disagreement is a precondition failure, not
	// something a redelivery can fix.
	_, spanStack := tracer.Start(ctx, "stack_cameras")
	stacked, err := skeleton.Stack(perCamera)
	spanStack.End()
	if err != nil {
		var mismatch *skeleton.ShapeMismatchError
		if errors.As(err, &mismatch) {
			log.Error("camera shape mismatch", zap.Int("camera", mismatch.Camera),
				zap.String("expected", mismatch.Expected.String()),
				zap.String("actual", mismatch.Actual.String()))
			return uc.handlePermanentFailure(ctx, job, msg, rawMsg, err.Error())
		}
		return uc.handlePermanentFailure(ctx, job, msg, rawMsg, "stack_cameras: "+err.Error())
	}

	// Persist the stacked array locally, then upload it.
	persistStart := time.Now()
	ctx4, spanPersist := tracer.Start(ctx, "persist_artifact")
	artifactKey, err := uc.persistStacked(ctx4, msg.SessionID, stacked)
	spanPersist.End()
	if err != nil {
		log.Error("failed to persist stacked array", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "persist_artifact: "+err.Error(), log)
	}
	metrics.SessionStageDuration.WithLabelValues("persist").Observe(time.Since(persistStart).Seconds())

	shape := stacked.Shape()
	job.MarkCompleted(artifactKey, shape[0], shape[1], shape[2])
	if err := uc.repo.Update(ctx, job); err != nil {
		log.Error("failed to update job to COMPLETED", zap.Error(err))
		return fmt.Errorf("update job completed: %w", err)
	}

	uc.publishStatus(ctx, job, log)

	log.Info("session completed",
		zap.Int("cameras", shape[0]),
		zap.Int("frames", shape[1]),
		zap.Int("tracked_points", shape[2]),
		zap.String("artifact_key", artifactKey),
	)

	return nil
}

// processVideo decodes one camera's video sequentially, runs the detector
// on every frame and aggregates the results. The annotated-video side
// channel is best effort: its failures are logged and never abort the
// numeric pipeline.
func (uc *ProcessSessionUseCase) processVideo(
	ctx context.Context,
	sessionID string,
	videoPath string,
	camIdx int,
	log *zap.Logger,
) (*skeleton.PerCameraArrays, error) {
	src, err := uc.opener.Open(ctx, videoPath)
	if err != nil {
		return nil, &FirstFrameError{Video: videoPath, Err: err}
	}
	defer src.Close()

	meta := src.Meta()
	log.Info("running skeleton detection on video",
		zap.Int("camera", camIdx),
		zap.String("video", filepath.Base(videoPath)),
		zap.Int("width", meta.Width),
		zap.Int("height", meta.Height),
		zap.Float64("fps", meta.FPS),
	)

	var sets []entity.LandmarkSet
	var annotated []*entity.Frame

	for frameIdx := 0; ; frameIdx++ {
		frame, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			if frameIdx == 0 {
				return nil, &FirstFrameError{Video: videoPath, Err: err}
			}
			// Mid-stream decode failure ends the readable prefix of the
			// video, mirroring a capture loop that stops on the first
			// failed read.
			log.Warn("frame decode failed mid-video, truncating",
				zap.Int("camera", camIdx), zap.Int("frame", frameIdx), zap.Error(err))
			break
		}

		detectTimer := time.Now()
		set, err := uc.detector.Detect(ctx, frame)
		if err != nil {
			return nil, fmt.Errorf("detect frame %d: %w", frameIdx, err)
		}
		metrics.DetectionDuration.Observe(time.Since(detectTimer).Seconds())
		metrics.FramesProcessedTotal.Inc()

		sets = append(sets, set)
		if uc.annotate {
			annotated = append(annotated, uc.renderer.Annotate(frame, set))
		}
	}

	if len(sets) == 0 {
		return nil, &FirstFrameError{Video: videoPath, Err: io.ErrUnexpectedEOF}
	}

	if uc.annotate {
		uc.saveAnnotatedVideo(ctx, sessionID, videoPath, annotated, meta.FPS, log)
	}

	arrays := skeleton.Aggregate(sets, meta.Width, meta.Height)
	log.Info("video aggregated",
		zap.Int("camera", camIdx),
		zap.Int("frames", arrays.Frames()),
		zap.Int("tracked_points", arrays.TotalPoints()),
	)
	return arrays, nil
}

// saveAnnotatedVideo encodes and uploads the overlay copy. Failures here
// are isolated from the numeric pipeline.
func (uc *ProcessSessionUseCase) saveAnnotatedVideo(
	ctx context.Context,
	sessionID string,
	videoPath string,
	frames []*entity.Frame,
	fps float64,
	log *zap.Logger,
) {
	outDir, err := uc.locator.AnnotatedVideosDir(sessionID)
	if err != nil {
		log.Warn("annotated videos dir unavailable", zap.Error(err))
		return
	}

	if fps <= 0 {
		fps = defaultFPS
	}
	stem := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	outPath := filepath.Join(outDir, stem+annotatedSuffix+filepath.Ext(videoPath))

	if err := uc.sink.WriteVideo(ctx, outPath, frames, fps); err != nil {
		log.Warn("annotated video encode failed", zap.String("video", outPath), zap.Error(err))
		return
	}
	if err := uc.storage.UploadAnnotatedVideo(ctx, sessionID, outPath); err != nil {
		log.Warn("annotated video upload failed", zap.String("video", outPath), zap.Error(err))
		return
	}
	log.Info("annotated video saved", zap.String("video", outPath))
}

func (uc *ProcessSessionUseCase) persistStacked(ctx context.Context, sessionID string, stacked *skeleton.Stacked) (string, error) {
	outDir, err := uc.locator.OutputDataDir(sessionID)
	if err != nil {
		return "", fmt.Errorf("resolve output dir: %w", err)
	}

	outPath := filepath.Join(outDir, ArtifactFileName)
	shape := stacked.Shape()
	if err := npy.WriteFile(outPath, shape[:], stacked.Data); err != nil {
		return "", err
	}

	f, err := os.Open(outPath)
	if err != nil {
		return "", fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat artifact: %w", err)
	}

	key, err := uc.storage.UploadArtifact(ctx, sessionID, ArtifactFileName, f, stat.Size())
	if err != nil {
		return "", fmt.Errorf("upload artifact: %w", err)
	}
	return key, nil
}

func (uc *ProcessSessionUseCase) handleRetryableFailure(
	ctx context.Context,
	job *entity.SessionJob,
	msg entity.SessionProcessingMessage,
	rawMsg []byte,
	errMsg string,
	log *zap.Logger,
) error {
	job.MarkFailed(errMsg)
	_ = uc.repo.Update(ctx, job)

	if !job.CanRetry() {
		return uc.handlePermanentFailure(ctx, job, msg, rawMsg, errMsg)
	}

	metrics.RetryTotal.WithLabelValues(strconv.Itoa(job.Attempt)).Inc()
	uc.publishStatus(ctx, job, log)

	return fmt.Errorf("retryable failure (attempt %d/%d): %s", job.Attempt, job.MaxAttempts, errMsg)
}

func (uc *ProcessSessionUseCase) handlePermanentFailure(
	ctx context.Context,
	job *entity.SessionJob,
	msg entity.SessionProcessingMessage,
	rawMsg []byte,
	errMsg string,
) error {
	job.MarkFailed(errMsg)
	_ = uc.repo.Update(ctx, job)

	_ = uc.dlq.PublishToDLQ(ctx, rawMsg, errMsg)

	uc.publishStatus(ctx, job, uc.logger)

	metrics.SessionsProcessedTotal.WithLabelValues("dlq").Inc()

	if msg.UserEmail != "" {
		_ = uc.notifier.NotifyFailure(ctx, msg.UserEmail, job.ID.String(), msg.SessionID, errMsg)
	}

	return nil
}

func (uc *ProcessSessionUseCase) publishStatus(ctx context.Context, job *entity.SessionJob, log *zap.Logger) {
	statusMsg := entity.SessionStatusMessage{
		JobID:        job.ID,
		SessionID:    job.SessionID,
		Status:       job.Status,
		ArtifactKey:  job.ArtifactKey,
		CameraCount:  job.CameraCount,
		FrameCount:   job.FrameCount,
		PointCount:   job.PointCount,
		ErrorMessage: job.ErrorMessage,
		Attempt:      job.Attempt,
		MaxAttempts:  job.MaxAttempts,
	}
	data, _ := json.Marshal(statusMsg)
	if err := uc.publisher.PublishStatus(ctx, data); err != nil {
		log.Error("failed to publish status", zap.Error(err))
	}
}
