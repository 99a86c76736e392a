package clients

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/spacesedan/judgeflow/config"
	"github.com/spacesedan/judgeflow/internal/logging"
)

// ErrUpstreamCallFailed is the only error the model clients return. The
// vendor cause is logged, never wrapped.
var ErrUpstreamCallFailed = errors.New("upstream model call failed")

// ModelClient is the contract shared by the online and offline clients.
type ModelClient interface {
	Invoke(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	HealthCheck(ctx context.Context) error
}

type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// OpenAIClient is safe for concurrent use; it holds only read-only settings
// and the SDK client.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
}

// NewModelClient picks the offline or online client from settings. Online
// mode without a credential fails with config.ErrMissingAPIKey.
func NewModelClient(s config.Settings) (ModelClient, error) {
	if err := s.RequireAPIKey(); err != nil {
		slog.Error("[ModelClient] Missing OPENAI_API_KEY in environment variables")
		return nil, err
	}
	if s.OfflineMode {
		slog.Info("[ModelClient] Offline mode enabled, no network calls will be made")
		return NewOfflineClient(), nil
	}
	return NewOpenAIClient(OpenAIConfig{
		APIKey:      s.OpenAIAPIKey,
		BaseURL:     s.OpenAIBaseURL,
		Model:       s.Model,
		Temperature: s.Temperature,
		Timeout:     s.Timeout,
	}), nil
}

func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DEFAULT_MODEL_TIMEOUT
	}

	sdkConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		sdkConfig.BaseURL = cfg.BaseURL
	}
	sdkConfig.HTTPClient = &http.Client{
		Timeout:   timeout,
		Transport: userAgentTransport{base: http.DefaultTransport},
	}

	slog.Info("[OpenAIClient] OpenAI client initialized with custom HTTP timeout",
		slog.Duration("timeout", timeout),
		slog.String("model", cfg.Model))

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(sdkConfig),
		model:       cfg.Model,
		temperature: wireTemperature(cfg.Temperature),
		timeout:     timeout,
	}
}

// Invoke sends one system/user exchange and returns the raw completion text,
// which may or may not be JSON.
func (c *OpenAIClient) Invoke(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	logger := logging.FromContext(ctx)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	latency := time.Since(start)
	if err != nil {
		logger.Error("[OpenAIClient] Chat completion failed",
			slog.Duration("latency", latency),
			slog.String("error", err.Error()))
		return "", ErrUpstreamCallFailed
	}
	if len(resp.Choices) == 0 {
		logger.Error("[OpenAIClient] Chat completion returned no choices",
			slog.Duration("latency", latency))
		return "", ErrUpstreamCallFailed
	}

	text := resp.Choices[0].Message.Content
	logger.Info("[OpenAIClient] Chat completion succeeded",
		slog.Duration("latency", latency),
		slog.Int("chars", len(text)),
		slog.String("finish_reason", string(resp.Choices[0].FinishReason)))
	return text, nil
}

// HealthCheck verifies the credential and model without spending tokens.
func (c *OpenAIClient) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if _, err := c.client.GetModel(ctx, c.model); err != nil {
		slog.Warn("[OpenAIClient] Health check failed",
			slog.String("model", c.model),
			slog.String("error", err.Error()))
		return ErrUpstreamCallFailed
	}
	return nil
}

type userAgentTransport struct {
	base http.RoundTripper
}

func (t userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", USER_AGENT)
	return t.base.RoundTrip(req)
}

// wireTemperature keeps an explicit 0 on the wire; go-openai omits a zero
// temperature and the backend would fall back to its own default.
func wireTemperature(t float64) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}
