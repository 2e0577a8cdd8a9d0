// Package render talks to the external animation service: one call turns a
// prompt into scene code, a second call renders that code into a video.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/romariotrain/animation-platform/internal/animation/models"
)

const (
	generatePath = "/generate-manim"
	renderPath   = "/render-animation"

	maxErrorBody = 64 << 10
)

var (
	errMissingCode      = errors.New("response has no manim_code")
	errMissingVideoPath = errors.New("response has no video_path")
)

type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	// Timeout bounds each call when HTTPClient is nil.
	Timeout time.Duration
	Logger  zerolog.Logger
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

type generateRequest struct {
	Prompt          string            `json:"prompt"`
	Duration        float64           `json:"duration"`
	Resolution      models.Resolution `json:"resolution"`
	FrameRate       int               `json:"frame_rate"`
	BackgroundColor string            `json:"background_color"`
}

type generateResponse struct {
	ManimCode string `json:"manim_code"`
}

type renderSettings struct {
	Duration        float64           `json:"duration"`
	Resolution      models.Resolution `json:"resolution"`
	FrameRate       int               `json:"frame_rate"`
	BackgroundColor string            `json:"background_color"`
}

type renderRequest struct {
	ManimCode   string         `json:"manim_code"`
	AnimationID string         `json:"animation_id"`
	Settings    renderSettings `json:"settings"`
}

type renderResponse struct {
	VideoPath string `json:"video_path"`
}

type errorResponse struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

func NewClient(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("render: base url is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Minute
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     opts.Logger.With().Str("component", "render_client").Logger(),
	}, nil
}

// GenerateCode asks the service for scene code matching prompt and settings.
func (c *Client) GenerateCode(ctx context.Context, prompt string, s models.Settings) (string, error) {
	payload := generateRequest{
		Prompt:          prompt,
		Duration:        s.Duration,
		Resolution:      s.Resolution,
		FrameRate:       s.FrameRate,
		BackgroundColor: s.BackgroundColor,
	}
	var out generateResponse
	if err := c.post(ctx, models.StageCodegen, generatePath, payload, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.ManimCode) == "" {
		return "", &Error{Stage: models.StageCodegen, Kind: KindPayload, Err: errMissingCode}
	}
	return out.ManimCode, nil
}

// Render submits generated code and returns the rendered artifact location.
func (c *Client) Render(ctx context.Context, code string, animationID uuid.UUID, s models.Settings) (string, error) {
	payload := renderRequest{
		ManimCode:   code,
		AnimationID: animationID.String(),
		Settings: renderSettings{
			Duration:        s.Duration,
			Resolution:      s.Resolution,
			FrameRate:       s.FrameRate,
			BackgroundColor: s.BackgroundColor,
		},
	}
	var out renderResponse
	if err := c.post(ctx, models.StageRender, renderPath, payload, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.VideoPath) == "" {
		return "", &Error{Stage: models.StageRender, Kind: KindPayload, Err: errMissingVideoPath}
	}
	return out.VideoPath, nil
}

func (c *Client) post(ctx context.Context, stage models.Stage, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &Error{Stage: stage, Kind: KindTransport, Err: fmt.Errorf("encode request: %w", err)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return &Error{Stage: stage, Kind: KindTransport, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Stage: stage, Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("stage", string(stage)).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("render service call finished")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &Error{
			Stage:      stage,
			Kind:       KindStatus,
			StatusCode: resp.StatusCode,
			Detail:     extractDetail(raw),
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Stage: stage, Kind: KindPayload, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// extractDetail reads the service's error body. detail may be a plain string
// or a structured validation list; the latter is kept as compact JSON.
func extractDetail(raw []byte) string {
	var er errorResponse
	if err := json.Unmarshal(raw, &er); err != nil {
		return ""
	}
	if len(er.Detail) > 0 && string(er.Detail) != "null" {
		var s string
		if err := json.Unmarshal(er.Detail, &s); err == nil {
			return strings.TrimSpace(s)
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, er.Detail); err == nil {
			return buf.String()
		}
	}
	return strings.TrimSpace(er.Message)
}
