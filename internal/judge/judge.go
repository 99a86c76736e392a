// Package judge orchestrates one evaluation: build prompts, call the model,
// interpret its output and, when the output is unusable, spend the repair
// budget before failing.
//
// A Judge holds only read-only configuration and a client that is safe for
// concurrent use, so one instance serves every request.
package judge

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spacesedan/judgeflow/config"
	"github.com/spacesedan/judgeflow/internal/clients"
	"github.com/spacesedan/judgeflow/internal/content"
	"github.com/spacesedan/judgeflow/internal/logging"
	"github.com/spacesedan/judgeflow/internal/models"
	"github.com/spacesedan/judgeflow/internal/prompts"
	"github.com/spacesedan/judgeflow/internal/sentiment"
)

const (
	MetadataVideoNotes     = "video_normalization_notes"
	MetadataLexicalSignals = "lexical_signals"

	DefaultRetryBudget = 1
)

// ModelClient is the part of the model adapter the judge depends on.
type ModelClient interface {
	Invoke(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

type Judge struct {
	client         ModelClient
	retryBudget    int
	lexicalSignals bool
	newRequestID   func() string
}

type Option func(*Judge)

// WithRetryBudget sets how many repair attempts follow an unusable answer.
// Negative values disable repair.
func WithRetryBudget(n int) Option {
	return func(j *Judge) {
		if n < 0 {
			n = 0
		}
		j.retryBudget = n
	}
}

// WithLexicalSignals attaches sentiment signals to the prompt metadata.
func WithLexicalSignals(enabled bool) Option {
	return func(j *Judge) {
		j.lexicalSignals = enabled
	}
}

// New builds the model client from settings. It fails with a
// *config.ConfigurationError when online mode has no credential.
func New(s config.Settings) (*Judge, error) {
	client, err := clients.NewModelClient(s)
	if err != nil {
		return nil, err
	}
	return NewWithClient(client,
		WithRetryBudget(s.MaxRetries),
		WithLexicalSignals(s.LexicalSignals),
	), nil
}

func NewWithClient(client ModelClient, opts ...Option) *Judge {
	j := &Judge{
		client:       client,
		retryBudget:  DefaultRetryBudget,
		newRequestID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Run dispatches a validated request on its content type.
func (j *Judge) Run(ctx context.Context, req models.EvaluationRequest) (*models.EvaluationResult, error) {
	switch req.Type {
	case models.ContentText:
		return j.Evaluate(ctx, req.Content, req.Metadata.Map())
	case models.ContentVideo:
		return j.EvaluateVideo(ctx, req.Content, req.Metadata.Map())
	default:
		return nil, ErrInvalidContentType
	}
}

// Evaluate judges text content. Upstream failures end the evaluation at once;
// only unusable output spends the repair budget. Every failure is an
// *EvaluationError carrying the request id used in the logs.
func (j *Judge) Evaluate(ctx context.Context, text string, metadata map[string]any) (*models.EvaluationResult, error) {
	requestID := j.newRequestID()
	ctx = logging.WithAttrs(ctx, slog.String("request_id", requestID))
	logger := logging.FromContext(ctx)

	systemPrompt := prompts.BuildSystemPrompt()
	userPrompt := prompts.BuildUserPrompt(text, j.enrich(text, metadata))

	logger.Info("[Judge] Evaluation started",
		slog.Int("content_chars", len(text)),
		slog.Int("retry_budget", j.retryBudget))

	raw, err := j.client.Invoke(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, j.fail(ctx, requestID, ReasonUpstreamCallFailed, err)
	}
	if result := j.interpret(ctx, raw); result != nil {
		logger.Info("[Judge] Evaluation succeeded", slog.Int("attempts", 1))
		return result, nil
	}

	for attempt := 1; attempt <= j.retryBudget; attempt++ {
		retryCtx := logging.WithAttrs(ctx, slog.Bool("retry", true), slog.Int("repair_attempt", attempt))
		logging.FromContext(retryCtx).Warn("[Judge] Output failed validation, requesting repair")

		raw, err = j.client.Invoke(retryCtx, systemPrompt, prompts.BuildRepairPrompt(raw))
		if err != nil {
			return nil, j.fail(retryCtx, requestID, ReasonUpstreamCallFailed, err)
		}
		if result := j.interpret(retryCtx, raw); result != nil {
			logger.Info("[Judge] Evaluation succeeded after repair", slog.Int("attempts", attempt+1))
			return result, nil
		}
	}

	return nil, j.fail(ctx, requestID, ReasonInvalidOutput, nil)
}

// EvaluateVideo normalizes the content into a transcript, records the
// normalization notes in a copy of the metadata and judges the transcript.
// An empty transcript is judged like any other text.
func (j *Judge) EvaluateVideo(ctx context.Context, raw string, metadata map[string]any) (*models.EvaluationResult, error) {
	transcript, md := normalizeVideo(raw, metadata)
	return j.Evaluate(ctx, transcript, md)
}

// Prompts returns the system and user prompts the first model call for req
// would carry, without calling the model.
func (j *Judge) Prompts(req models.EvaluationRequest) (string, string, error) {
	text, metadata := req.Content, req.Metadata.Map()
	switch req.Type {
	case models.ContentText:
	case models.ContentVideo:
		text, metadata = normalizeVideo(text, metadata)
	default:
		return "", "", ErrInvalidContentType
	}
	return prompts.BuildSystemPrompt(), prompts.BuildUserPrompt(text, j.enrich(text, metadata)), nil
}

func normalizeVideo(raw string, metadata map[string]any) (string, map[string]any) {
	normalized := content.NormalizeVideo(raw, metadata)

	md := copyMetadata(metadata)
	md[MetadataVideoNotes] = normalized.Notes
	return normalized.Transcript, md
}

func (j *Judge) interpret(ctx context.Context, raw string) *models.EvaluationResult {
	result, err := interpret(raw)
	if err != nil {
		logging.FromContext(ctx).Warn("[Judge] Could not interpret model output",
			slog.String("error", err.Error()),
			slog.String("raw_snippet", snippet(raw)))
		return nil
	}
	return result
}

func (j *Judge) fail(ctx context.Context, requestID, reason string, cause error) error {
	logging.FromContext(ctx).Error("[Judge] Evaluation failed", slog.String("reason", reason))
	return &EvaluationError{RequestID: requestID, Reason: reason, Err: cause}
}

func (j *Judge) enrich(text string, metadata map[string]any) map[string]any {
	if !j.lexicalSignals {
		return metadata
	}
	md := copyMetadata(metadata)
	md[MetadataLexicalSignals] = sentiment.Analyze(text).Map()
	return md
}

func copyMetadata(metadata map[string]any) map[string]any {
	out := make(map[string]any, len(metadata)+1)
	for k, v := range metadata {
		out[k] = v
	}
	return out
}
