package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/devotionalai/api/internal/config"
	"github.com/devotionalai/api/internal/model"
)

// VideoComposer defines the interface for lyric-video composition
type VideoComposer interface {
	ComposeLyricVideo(ctx context.Context, req *ComposeRequest) (string, error)
}

// ComposeRequest carries one composition call. AudioURL points at the
// already-uploaded narration; cues are ordered caption lines.
type ComposeRequest struct {
	AudioURL string               `json:"audio_url"`
	Lyrics   []model.LyricCue     `json:"lyrics"`
	Template *model.VideoTemplate `json:"template,omitempty"`
}

// VideoClient implements VideoComposer against the ffmpeg-based
// composition microservice.
type VideoClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewVideoClient creates a new video composition client
func NewVideoClient(cfg *config.VideoConfig) *VideoClient {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 600 * time.Second
	}
	return &VideoClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.ServiceURL,
	}
}

// ComposeLyricVideo renders the captions over the template background and
// returns the path of a local temporary MP4. The caller owns the file.
func (c *VideoClient) ComposeLyricVideo(ctx context.Context, req *ComposeRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", &ProductionError{Stage: "video", Message: "failed to encode request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/compose", bytes.NewReader(body))
	if err != nil {
		return "", &ProductionError{Stage: "video", Message: "failed to build request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "video/mp4")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &ProductionError{Stage: "video", Message: "video service unreachable", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &ProductionError{
			Stage:   "video",
			Message: fmt.Sprintf("video service returned status %d: %s", resp.StatusCode, readErrorDetail(resp.Body)),
		}
	}

	tmp, err := os.CreateTemp("", "lyricvideo-*.mp4")
	if err != nil {
		return "", &ProductionError{Stage: "video", Message: "failed to create temp file", Err: err}
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", &ProductionError{Stage: "video", Message: "failed to write video", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", &ProductionError{Stage: "video", Message: "failed to close video file", Err: err}
	}

	return tmp.Name(), nil
}
