// Package detector talks to the pose-estimation sidecar. The sidecar
// holds the holistic model weights and is expensive to start, so the
// worker keeps one long-lived client per process and posts raw frames
// to it.
package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mocapkit/skeleton-processing-service/internal/domain/entity"
)

const detectPath = "/v1/detect"

type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Detect posts one RGB24 frame and decodes the landmark groups the model
// found. Parts the model did not find are simply absent from the JSON
// and decode to nil slices.
func (c *Client) Detect(ctx context.Context, frame *entity.Frame) (entity.LandmarkSet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+detectPath, bytes.NewReader(frame.Pixels))
	if err != nil {
		return entity.LandmarkSet{}, fmt.Errorf("build detect request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("X-Frame-Width", strconv.Itoa(frame.Width))
	req.Header.Set("X-Frame-Height", strconv.Itoa(frame.Height))
	req.Header.Set("X-Pixel-Format", "rgb24")

	resp, err := c.http.Do(req)
	if err != nil {
		return entity.LandmarkSet{}, fmt.Errorf("detect frame %d: %w", frame.Index, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return entity.LandmarkSet{}, fmt.Errorf("detector returned %d: %s", resp.StatusCode, body)
	}

	var set entity.LandmarkSet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return entity.LandmarkSet{}, fmt.Errorf("decode detector response: %w", err)
	}
	return set, nil
}
