package judge

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/spacesedan/judgeflow/config"
	"github.com/spacesedan/judgeflow/internal/clients"
	"github.com/spacesedan/judgeflow/internal/content"
	"github.com/spacesedan/judgeflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reply struct {
	raw string
	err error
}

type call struct {
	systemPrompt string
	userPrompt   string
}

// scriptedClient answers each Invoke with the next scripted reply and records
// the prompts it was given.
type scriptedClient struct {
	mu      sync.Mutex
	replies []reply
	calls   []call
}

func (c *scriptedClient) Invoke(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call{systemPrompt: systemPrompt, userPrompt: userPrompt})
	if len(c.calls) > len(c.replies) {
		return "", errors.New("unexpected call")
	}
	r := c.replies[len(c.calls)-1]
	return r.raw, r.err
}

func script(replies ...reply) *scriptedClient {
	return &scriptedClient{replies: replies}
}

func TestEvaluateFirstAttemptSucceeds(t *testing.T) {
	client := script(reply{raw: validOutput})
	j := NewWithClient(client)

	result, err := j.Evaluate(context.Background(), "Test content", map[string]any{"platform": "linkedin"})
	require.NoError(t, err)

	assert.Equal(t, "Retry succeeded.", result.MetaExplanation)
	require.Len(t, client.calls, 1)
	assert.Contains(t, client.calls[0].userPrompt, "Test content")
	assert.Contains(t, client.calls[0].userPrompt, `{"platform":"linkedin"}`)
}

func TestEvaluateRepairsOnce(t *testing.T) {
	client := script(reply{raw: "INVALID JSON"}, reply{raw: validOutput})
	j := NewWithClient(client)

	result, err := j.Evaluate(context.Background(), "Test content", nil)
	require.NoError(t, err)

	assert.Equal(t, "Human", result.GenerationPrediction.Label)
	require.Len(t, client.calls, 2)
	assert.Equal(t, client.calls[0].systemPrompt, client.calls[1].systemPrompt)
	assert.Contains(t, client.calls[1].userPrompt, "INVALID JSON")
	assert.NotContains(t, client.calls[1].userPrompt, "Test content")
}

func TestEvaluateRetryExhausted(t *testing.T) {
	client := script(reply{raw: "INVALID JSON"}, reply{raw: `{"still":"wrong"}`}, reply{raw: validOutput})
	j := NewWithClient(client)

	result, err := j.Evaluate(context.Background(), "Test content", nil)
	assert.Nil(t, result)
	require.ErrorIs(t, err, ErrEvaluationFailed)

	var evalErr *EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, ReasonInvalidOutput, evalErr.Reason)
	_, parseErr := uuid.Parse(evalErr.RequestID)
	assert.NoError(t, parseErr)
	assert.Len(t, client.calls, 2)
}

func TestEvaluateUpstreamShortCircuits(t *testing.T) {
	client := script(reply{err: clients.ErrUpstreamCallFailed}, reply{raw: validOutput})
	j := NewWithClient(client)

	result, err := j.Evaluate(context.Background(), "Test content", nil)
	assert.Nil(t, result)
	require.ErrorIs(t, err, ErrEvaluationFailed)
	assert.ErrorIs(t, err, clients.ErrUpstreamCallFailed)

	var evalErr *EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, ReasonUpstreamCallFailed, evalErr.Reason)
	assert.Len(t, client.calls, 1)
}

func TestEvaluateUpstreamFailureDuringRepair(t *testing.T) {
	client := script(reply{raw: "nope"}, reply{err: clients.ErrUpstreamCallFailed})
	j := NewWithClient(client)

	_, err := j.Evaluate(context.Background(), "Test content", nil)
	require.ErrorIs(t, err, ErrEvaluationFailed)

	var evalErr *EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, ReasonUpstreamCallFailed, evalErr.Reason)
	assert.Len(t, client.calls, 2)
}

func TestEvaluateRetryBudget(t *testing.T) {
	t.Run("zero budget fails after one call", func(t *testing.T) {
		client := script(reply{raw: "bad"}, reply{raw: validOutput})
		_, err := NewWithClient(client, WithRetryBudget(0)).Evaluate(context.Background(), "x", nil)
		assert.ErrorIs(t, err, ErrEvaluationFailed)
		assert.Len(t, client.calls, 1)
	})

	t.Run("negative budget is zero", func(t *testing.T) {
		client := script(reply{raw: "bad"})
		_, err := NewWithClient(client, WithRetryBudget(-3)).Evaluate(context.Background(), "x", nil)
		assert.ErrorIs(t, err, ErrEvaluationFailed)
		assert.Len(t, client.calls, 1)
	})

	t.Run("larger budget repairs from the latest output", func(t *testing.T) {
		client := script(reply{raw: "first bad"}, reply{raw: "second bad"}, reply{raw: validOutput})
		result, err := NewWithClient(client, WithRetryBudget(2)).Evaluate(context.Background(), "x", nil)
		require.NoError(t, err)
		assert.NotNil(t, result)
		require.Len(t, client.calls, 3)
		assert.Contains(t, client.calls[2].userPrompt, "second bad")
	})
}

func TestEvaluateFreshRequestIDs(t *testing.T) {
	client := script(reply{raw: "bad"}, reply{raw: "bad"}, reply{raw: "bad"}, reply{raw: "bad"})
	j := NewWithClient(client)

	var first, second *EvaluationError
	_, err := j.Evaluate(context.Background(), "x", nil)
	require.ErrorAs(t, err, &first)
	_, err = j.Evaluate(context.Background(), "x", nil)
	require.ErrorAs(t, err, &second)

	assert.NotEqual(t, first.RequestID, second.RequestID)
}

func TestEvaluateVideoEmptyContent(t *testing.T) {
	client := script(reply{raw: validOutput})
	j := NewWithClient(client)
	metadata := map[string]any{"platform": "youtube"}

	result, err := j.EvaluateVideo(context.Background(), "", metadata)
	require.NoError(t, err)
	assert.NotNil(t, result)

	require.Len(t, client.calls, 1)
	prompt := client.calls[0].userPrompt
	assert.True(t, strings.HasPrefix(prompt, "CONTENT:\n\n\nMETADATA"), prompt)
	assert.Contains(t, prompt, `"video_normalization_notes":"`+content.NoteEmptyVideo+`"`)
	assert.Equal(t, map[string]any{"platform": "youtube"}, metadata)
}

func TestEvaluateVideoTranscript(t *testing.T) {
	client := script(reply{raw: validOutput})
	j := NewWithClient(client)

	_, err := j.EvaluateVideo(context.Background(), "  so we shipped it  ", nil)
	require.NoError(t, err)

	prompt := client.calls[0].userPrompt
	assert.Contains(t, prompt, "CONTENT:\nso we shipped it\n")
	assert.Contains(t, prompt, content.NoteTranscriptFirst)
}

func TestEvaluateLexicalSignals(t *testing.T) {
	client := script(reply{raw: validOutput})
	j := NewWithClient(client, WithLexicalSignals(true))
	metadata := map[string]any{"platform": "x"}

	_, err := j.Evaluate(context.Background(), "I love this, it is wonderful!", metadata)
	require.NoError(t, err)

	prompt := client.calls[0].userPrompt
	assert.Contains(t, prompt, `"lexical_signals":{`)
	assert.Contains(t, prompt, `"sentiment_label":"positive"`)
	assert.NotContains(t, metadata, MetadataLexicalSignals)
}

func TestRun(t *testing.T) {
	platform := "linkedin"
	req := models.EvaluationRequest{
		Type:     models.ContentText,
		Content:  "I built this startup after failing twice.",
		Metadata: models.Metadata{Platform: &platform},
	}

	t.Run("text", func(t *testing.T) {
		client := script(reply{raw: validOutput})
		_, err := NewWithClient(client).Run(context.Background(), req)
		require.NoError(t, err)
		assert.NotContains(t, client.calls[0].userPrompt, MetadataVideoNotes)
	})

	t.Run("video", func(t *testing.T) {
		client := script(reply{raw: validOutput})
		video := req
		video.Type = models.ContentVideo
		_, err := NewWithClient(client).Run(context.Background(), video)
		require.NoError(t, err)
		assert.Contains(t, client.calls[0].userPrompt, MetadataVideoNotes)
	})

	t.Run("unknown type", func(t *testing.T) {
		client := script()
		bad := req
		bad.Type = "audio"
		_, err := NewWithClient(client).Run(context.Background(), bad)
		assert.ErrorIs(t, err, ErrInvalidContentType)
		assert.Empty(t, client.calls)
	})
}

func TestPromptsMatchFirstCall(t *testing.T) {
	platform := "youtube"
	req := models.EvaluationRequest{
		Type:     models.ContentVideo,
		Content:  " so we shipped it ",
		Metadata: models.Metadata{Platform: &platform},
	}
	client := script(reply{raw: validOutput})
	j := NewWithClient(client, WithLexicalSignals(true))

	system, user, err := j.Prompts(req)
	require.NoError(t, err)
	_, err = j.Run(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, client.calls, 1)
	assert.Equal(t, client.calls[0].systemPrompt, system)
	assert.Equal(t, client.calls[0].userPrompt, user)

	req.Type = "audio"
	_, _, err = j.Prompts(req)
	assert.ErrorIs(t, err, ErrInvalidContentType)
}

func TestNew(t *testing.T) {
	t.Run("online without key", func(t *testing.T) {
		j, err := New(config.Settings{MaxRetries: 1})
		assert.Nil(t, j)
		var cfgErr *config.ConfigurationError
		assert.ErrorAs(t, err, &cfgErr)
	})

	t.Run("offline", func(t *testing.T) {
		j, err := New(config.Settings{OfflineMode: true, MaxRetries: 1})
		require.NoError(t, err)

		result, err := j.Evaluate(context.Background(), "I built this startup after failing twice.", nil)
		require.NoError(t, err)
		assert.Equal(t, 68, result.Virality.Score)
	})
}

func TestEvaluateConcurrent(t *testing.T) {
	j := NewWithClient(clients.NewOfflineClient())

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := j.Evaluate(context.Background(), "content", map[string]any{"i": 1})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}
