package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/FloatingDust36/siyensyago/internal/types"
)

// Client is the Anthropic-backed implementation of Detector and Analyzer.
// All calls go through the retry/circuit-breaker layer in retry.go and are
// paced by a shared rate limiter, so bursts from batch learning don't trip
// provider rate limits.
type Client struct {
	client         *anthropic.Client
	model          string
	retry          RetryConfig
	circuitBreaker *CircuitBreaker
	concurrencySem *semaphore.Weighted
	rateLimiter    *rate.Limiter
}

// Compile-time checks that Client implements the capability interfaces
var (
	_ Detector = (*Client)(nil)
	_ Analyzer = (*Client)(nil)
)

// Config holds AI client configuration
type Config struct {
	APIKey string      // Anthropic API key (if empty, reads from ANTHROPIC_API_KEY env var)
	Model  string      // Model to use (default: from GetDefaultModel)
	Retry  RetryConfig // Retry configuration (uses defaults if not specified)
}

// NewClient creates an AI client for object detection and content generation
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
	}

	model := cfg.Model
	if model == "" {
		model = GetDefaultModel()
	}

	retry := cfg.Retry
	if retry.MaxRetries == 0 {
		retry = DefaultRetryConfig()
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	var circuitBreaker *CircuitBreaker
	if retry.CircuitBreakerEnabled {
		circuitBreaker = NewCircuitBreaker(
			retry.FailureThreshold,
			retry.SuccessThreshold,
			retry.OpenTimeout,
		)
	}

	var concurrencySem *semaphore.Weighted
	if retry.MaxConcurrentCalls > 0 {
		concurrencySem = semaphore.NewWeighted(int64(retry.MaxConcurrentCalls))
	}

	var limiter *rate.Limiter
	if retry.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(retry.RequestsPerSecond), 1)
	}

	return &Client{
		client:         &client,
		model:          model,
		retry:          retry,
		circuitBreaker: circuitBreaker,
		concurrencySem: concurrencySem,
		rateLimiter:    limiter,
	}, nil
}

// HealthCheck reports whether the client can currently reach the provider.
// Returns an error if the circuit breaker is open.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.circuitBreaker != nil {
		state, failures, _ := c.circuitBreaker.GetMetrics()
		if state == CircuitOpen {
			return fmt.Errorf("AI client unavailable: %w (failures=%d, retry in %v)",
				ErrCircuitOpen, failures, c.retry.OpenTimeout)
		}
	}
	return nil
}

// Model returns the model identifier this client sends requests with.
func (c *Client) Model() string {
	return c.model
}

// detectionPayload is the wire shape the detection prompt asks for.
// Object IDs are assigned locally after parsing; the model is not trusted
// to produce unique ones.
type detectionPayload struct {
	SceneContext *types.SceneContext `json:"scene_context"`
	Objects      []struct {
		Name        string            `json:"name"`
		Confidence  float64           `json:"confidence"`
		Category    string            `json:"category"`
		BoundingBox types.BoundingBox `json:"bounding_box"`
	} `json:"objects"`
}

// DetectObjects analyzes the photo at imagePath and returns detected objects
// plus scene context. An empty result is valid: not every photo has science
// in it.
func (c *Client) DetectObjects(ctx context.Context, imagePath string, grade types.GradeLevel) (*types.DetectionResult, error) {
	startTime := time.Now()

	mediaType, data, err := encodeImage(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	prompt := buildDetectionPrompt(grade)

	var response *anthropic.Message
	err = c.retryWithBackoff(ctx, "detect_objects", func(attemptCtx context.Context) error {
		resp, apiErr := c.client.Messages.New(attemptCtx, anthropic.MessageNewParams{
			Model:     anthropic.Model(c.model),
			MaxTokens: 4096,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(
					anthropic.NewImageBlockBase64(mediaType, data),
					anthropic.NewTextBlock(prompt),
				),
			},
		})
		if apiErr != nil {
			return apiErr
		}
		response = resp
		return nil
	})
	if err != nil {
		return nil, &CapabilityError{Operation: "detect_objects", Err: err}
	}

	responseText := extractText(response)
	parseResult := Parse[detectionPayload](responseText, ParseOptions{Context: "detection response"})
	if !parseResult.Success {
		return nil, &CapabilityError{
			Operation: "detect_objects",
			Err:       fmt.Errorf("failed to parse detection response: %s (response: %s)", parseResult.Error, truncate(responseText, 200)),
		}
	}

	result := &types.DetectionResult{
		SceneContext: parseResult.Data.SceneContext,
		Objects:      make([]types.DetectedObject, 0, len(parseResult.Data.Objects)),
	}
	for i, raw := range parseResult.Data.Objects {
		obj := types.DetectedObject{
			ID:          fmt.Sprintf("obj-%d", i+1),
			Name:        raw.Name,
			Confidence:  clampConfidence(raw.Confidence),
			Category:    types.ParseCategory(raw.Category),
			BoundingBox: clampBox(raw.BoundingBox),
		}
		if err := obj.Validate(); err != nil {
			slog.Warn("Dropping malformed detected object", "name", raw.Name, "error", err)
			continue
		}
		result.Objects = append(result.Objects, obj)
	}

	slog.Info("Object detection complete",
		"objects", len(result.Objects),
		"duration", time.Since(startTime))
	return result, nil
}

// AnalyzeObject generates grade-tailored educational content for one object.
// The full photo is re-sent with the object's bounding box described in the
// prompt, so the model sees the object in its scene.
func (c *Client) AnalyzeObject(ctx context.Context, imagePath string, object types.DetectedObject, sceneCtx *types.SceneContext, grade types.GradeLevel) (*types.AnalysisResult, error) {
	startTime := time.Now()

	mediaType, data, err := encodeImage(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	prompt := buildAnalysisPrompt(object, sceneCtx, grade)

	var response *anthropic.Message
	err = c.retryWithBackoff(ctx, "analyze_object", func(attemptCtx context.Context) error {
		resp, apiErr := c.client.Messages.New(attemptCtx, anthropic.MessageNewParams{
			Model:     anthropic.Model(c.model),
			MaxTokens: 2048,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(
					anthropic.NewImageBlockBase64(mediaType, data),
					anthropic.NewTextBlock(prompt),
				),
			},
		})
		if apiErr != nil {
			return apiErr
		}
		response = resp
		return nil
	})
	if err != nil {
		return nil, &CapabilityError{Operation: "analyze_object", Err: err}
	}

	responseText := extractText(response)
	parseResult := Parse[types.AnalysisResult](responseText, ParseOptions{Context: "analysis response"})
	if !parseResult.Success {
		return nil, &CapabilityError{
			Operation: "analyze_object",
			Err:       fmt.Errorf("failed to parse analysis response: %s (response: %s)", parseResult.Error, truncate(responseText, 200)),
		}
	}

	result := parseResult.Data
	// The model sometimes omits echo-back fields; fill them from the request
	if result.ObjectName == "" {
		result.ObjectName = object.Name
	}
	if !result.Category.IsValid() {
		result.Category = object.Category
	}
	if result.Confidence == 0 {
		result.Confidence = object.Confidence
	}
	if err := result.Validate(); err != nil {
		return nil, &CapabilityError{
			Operation: "analyze_object",
			Err:       fmt.Errorf("analysis response invalid: %w", err),
		}
	}

	slog.Info("Object analysis complete",
		"object", object.Name,
		"grade", string(grade),
		"duration", time.Since(startTime))
	return &result, nil
}

// extractText concatenates the text blocks of a model response
func extractText(response *anthropic.Message) string {
	var sb strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String()
}

// encodeImage reads an image file and returns its media type and base64 data
func encodeImage(path string) (mediaType, data string, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	return mediaTypeFor(path), base64.StdEncoding.EncodeToString(raw), nil
}

// mediaTypeFor maps a file extension to the media type the API expects.
// Unknown extensions fall back to JPEG, the overwhelmingly common case for
// phone camera output.
func mediaTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

func clampConfidence(v float64) float64 {
	// Models occasionally answer on a 0-1 scale despite the prompt
	if v > 0 && v <= 1 {
		v *= 100
	}
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// clampBox forces a bounding box into the 0-100 percent coordinate space
func clampBox(b types.BoundingBox) types.BoundingBox {
	clamp := func(v, lo, hi float64) float64 {
		if v < lo {
			return lo
		}
		if v > hi {
			return hi
		}
		return v
	}
	b.X = clamp(b.X, 0, 100)
	b.Y = clamp(b.Y, 0, 100)
	b.Width = clamp(b.Width, 0, 100-b.X)
	b.Height = clamp(b.Height, 0, 100-b.Y)
	return b
}
