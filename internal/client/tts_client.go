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

// Synthesizer defines the interface for speech synthesis
type Synthesizer interface {
	SynthesizeSpeech(ctx context.Context, req *SynthesisRequest) (string, error)
}

// SynthesisRequest carries the parameters for one synthesis call
type SynthesisRequest struct {
	Text        string           `json:"text"`
	Language    model.Language   `json:"language"`
	VoiceStyle  model.VoiceStyle `json:"voice_style"`
	VoicePreset string           `json:"voice_preset"`
}

// TTSClient implements Synthesizer against the model-serving microservice.
// The service loads the acoustic model once at its own startup, so this
// client is a thin, stateless HTTP wrapper constructed once per process
// and injected into the worker.
type TTSClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewTTSClient creates a new TTS service client
func NewTTSClient(cfg *config.TTSConfig) *TTSClient {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 300 * time.Second
	}
	return &TTSClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.ServiceURL,
	}
}

// SynthesizeSpeech sends the text to the synthesis service and writes the
// returned WAV to a temporary file, whose path is returned. The caller owns
// the file and is responsible for removing it.
func (c *TTSClient) SynthesizeSpeech(ctx context.Context, req *SynthesisRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", &ProductionError{Stage: "synthesis", Message: "failed to encode request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/synthesize", bytes.NewReader(body))
	if err != nil {
		return "", &ProductionError{Stage: "synthesis", Message: "failed to build request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/wav")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &ProductionError{Stage: "synthesis", Message: "speech service unreachable", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &ProductionError{
			Stage:   "synthesis",
			Message: fmt.Sprintf("speech service returned status %d: %s", resp.StatusCode, readErrorDetail(resp.Body)),
		}
	}

	tmp, err := os.CreateTemp("", "tts-*.wav")
	if err != nil {
		return "", &ProductionError{Stage: "synthesis", Message: "failed to create temp file", Err: err}
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", &ProductionError{Stage: "synthesis", Message: "failed to write audio", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", &ProductionError{Stage: "synthesis", Message: "failed to close audio file", Err: err}
	}

	return tmp.Name(), nil
}

// readErrorDetail extracts a short error message from a failed response body.
func readErrorDetail(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil || len(data) == 0 {
		return "no detail"
	}
	var body struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil {
		if body.Detail != "" {
			return body.Detail
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return string(data)
}
