package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skeleton_sessions_processed_total",
		Help: "Total number of session jobs processed, by status",
	}, []string{"status"})

	SessionStageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "skeleton_session_stage_duration_seconds",
		Help:    "Duration of session pipeline stages",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
	}, []string{"stage"})

	FramesProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skeleton_frames_processed_total",
		Help: "Total number of frames run through the detector",
	})

	DetectionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "skeleton_detection_duration_seconds",
		Help:    "Per-frame detector call latency",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
	})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "skeleton_active_workers",
		Help: "Number of currently active workers processing session jobs",
	})

	RetryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skeleton_retry_total",
		Help: "Total number of retries",
	}, []string{"attempt"})
)
