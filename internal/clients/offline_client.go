package clients

import (
	"context"
	"log/slog"

	"github.com/spacesedan/judgeflow/internal/logging"
)

// OfflineResponse is returned verbatim in offline mode. It satisfies the
// evaluation schema.
const OfflineResponse = `{
  "generation_prediction": {
    "label": "Human",
    "confidence": 0.62,
    "reasoning": "Contains personal narrative cues and emotionally specific phrasing; less uniformly polished."
  },
  "virality": {
    "score": 68,
    "confidence": 0.6,
    "reasoning": "Relatable theme with moderate emotional intensity; clear and shareable framing."
  },
  "distribution_analysis": {
    "likely_audiences": [
      {"community": "LinkedIn professionals", "why": "Career and learning narratives perform well."},
      {"community": "Startup builders", "why": "Build and ship stories resonate with builders."}
    ],
    "reasoning": "Topic aligns with career growth and builder communities; metadata can refine this further."
  },
  "meta_explanation": "Offline development mode: deterministic canned output used to exercise the pipeline and schema."
}`

// OfflineClient never touches the network.
type OfflineClient struct{}

func NewOfflineClient() *OfflineClient {
	return &OfflineClient{}
}

func (c *OfflineClient) Invoke(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	logging.FromContext(ctx).Info("[OfflineClient] Returning canned response",
		slog.Int("chars", len(OfflineResponse)))
	return OfflineResponse, nil
}

func (c *OfflineClient) HealthCheck(ctx context.Context) error {
	return nil
}
