package consumers

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/google/uuid"
	"github.com/spacesedan/judgeflow/internal/clients/kafka_client"
	"github.com/spacesedan/judgeflow/internal/judge"
	"github.com/spacesedan/judgeflow/internal/models"
)

type Evaluator interface {
	Run(ctx context.Context, req models.EvaluationRequest) (*models.EvaluationResult, error)
}

type Publisher interface {
	Publish(ctx context.Context, topic string, key []byte, value any) error
}

// offsetSeeker is the part of *kafka.Consumer used to rewind a partition.
type offsetSeeker interface {
	Seek(partition kafka.TopicPartition, timeoutMs int) error
}

type offsetCommitter interface {
	Commit(msg *kafka.Message) error
}

// EvaluationConsumer reads evaluation requests, judges them and publishes one
// envelope per message before committing its offset.
type EvaluationConsumer struct {
	evaluator   Evaluator
	publisher   Publisher
	resultTopic string
	pauseDelay  time.Duration
	retryDelay  time.Duration
}

func NewEvaluationConsumer(evaluator Evaluator, publisher Publisher, resultTopic string) *EvaluationConsumer {
	return &EvaluationConsumer{
		evaluator:   evaluator,
		publisher:   publisher,
		resultTopic: resultTopic,
		pauseDelay:  PAUSE_DELAY,
		retryDelay:  kafka_client.RETRY_DELAY,
	}
}

func (ec *EvaluationConsumer) Start(ctx context.Context, consumer *kafka.Consumer, health ...*atomic.Bool) {
	iterator := kafka_client.NewKafkaMessageIterator(ctx, consumer)
	committer := kafka_client.NewCommitHandler(ctx, consumer)

	slog.Info("[EvaluationConsumer] Listening for messages...")

	for {
		select {
		case <-ctx.Done():
			slog.Warn("[EvaluationConsumer] Stopping consumer...")
			return
		default:
			if !waitUntilHealthy(ctx, ec.pauseDelay, health...) {
				continue
			}

			msg, err := iterator.Next()
			if err != nil {
				if ctx.Err() == nil {
					slog.Error("[EvaluationConsumer] Failed to read message",
						slog.String("error", err.Error()))
				}
				continue
			}

			if !ec.deliver(ctx, msg, consumer, committer) {
				return
			}
		}
	}
}

// deliver processes msg and commits it once its envelope is published. When
// publishing fails the partition is rewound to msg so the next read returns it
// again; committing a later offset would otherwise skip it for good. It
// returns false when the consumer has to stop because the rewind failed.
func (ec *EvaluationConsumer) deliver(ctx context.Context, msg *kafka.Message, seeker offsetSeeker, committer offsetCommitter) bool {
	if err := ec.Process(ctx, msg.Key, msg.Value); err != nil {
		if ctx.Err() != nil {
			return false
		}
		if err := seeker.Seek(msg.TopicPartition, int(SEEK_TIMEOUT.Milliseconds())); err != nil {
			slog.Error("[EvaluationConsumer] Failed to rewind to unpublished message, stopping",
				slog.Int("partition", int(msg.TopicPartition.Partition)),
				slog.String("offset", msg.TopicPartition.Offset.String()),
				slog.String("error", err.Error()))
			return false
		}
		slog.Warn("[EvaluationConsumer] Rewound to unpublished message",
			slog.Int("partition", int(msg.TopicPartition.Partition)),
			slog.String("offset", msg.TopicPartition.Offset.String()))
		return true
	}

	if err := committer.Commit(msg); err != nil {
		slog.Warn("[EvaluationConsumer] Failed to commit offset",
			slog.String("error", err.Error()))
	}
	return true
}

// Process judges one message and publishes the envelope, retrying the publish
// a few times. An error means nothing was published.
func (ec *EvaluationConsumer) Process(ctx context.Context, key, value []byte) error {
	envelope := ec.HandleMessage(ctx, key, value)

	var err error
	for i := 0; i < 3; i++ {
		err = ec.publisher.Publish(ctx, ec.resultTopic, key, envelope)
		if err == nil {
			return nil
		}
		slog.Warn("[EvaluationConsumer] Result publishing failed",
			slog.Int("attempt", i+1),
			slog.String("key", string(key)),
			slog.String("error", err.Error()))
		if i == 2 {
			break
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(ec.retryDelay):
		}
	}
	return err
}

// HandleMessage never fails: every outcome, including malformed input, is an
// envelope.
func (ec *EvaluationConsumer) HandleMessage(ctx context.Context, key, value []byte) models.EvaluationEnvelope {
	envelope := models.EvaluationEnvelope{Key: string(key)}

	req, err := models.DecodeEvaluationRequest(value)
	if err != nil {
		resp := &models.ErrorResponse{
			Error:     models.ErrorInvalidRequest,
			Detail:    "Malformed request.",
			RequestID: uuid.NewString(),
		}
		var reqErr *models.RequestError
		if errors.As(err, &reqErr) {
			resp.Error, resp.Detail = reqErr.Code, reqErr.Detail
		}
		envelope.RequestID, envelope.Error = resp.RequestID, resp
		slog.Warn("[EvaluationConsumer] Rejected malformed request",
			slog.String("key", envelope.Key),
			slog.String("error", string(resp.Error)))
		return envelope
	}

	result, err := ec.evaluator.Run(ctx, req)
	if err == nil {
		envelope.Result = result
		return envelope
	}

	var evalErr *judge.EvaluationError
	switch {
	case errors.As(err, &evalErr):
		envelope.RequestID = evalErr.RequestID
		envelope.Error = &models.ErrorResponse{
			Error:     models.ErrorEvaluationFailed,
			Detail:    "Model output invalid after retry or upstream call failed.",
			RequestID: evalErr.RequestID,
		}
	case errors.Is(err, judge.ErrInvalidContentType):
		envelope.RequestID = uuid.NewString()
		envelope.Error = &models.ErrorResponse{
			Error:     models.ErrorInvalidType,
			Detail:    "Invalid type. Must be 'text' or 'video'.",
			RequestID: envelope.RequestID,
		}
	default:
		envelope.RequestID = uuid.NewString()
		slog.Error("[EvaluationConsumer] Unexpected evaluation error",
			slog.String("request_id", envelope.RequestID),
			slog.String("error", err.Error()))
		envelope.Error = &models.ErrorResponse{
			Error:     models.ErrorUnexpected,
			Detail:    "Unexpected server error.",
			RequestID: envelope.RequestID,
		}
	}
	return envelope
}
