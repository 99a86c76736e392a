package judge

import (
	"errors"
	"fmt"
)

var (
	// ErrEvaluationFailed matches every terminal evaluation failure via errors.Is.
	ErrEvaluationFailed   = errors.New("evaluation failed")
	ErrInvalidContentType = errors.New("invalid content type: must be text or video")
)

const (
	ReasonUpstreamCallFailed = "upstream_call_failed"
	ReasonInvalidOutput      = "invalid_output"
)

// EvaluationError is the only failure Evaluate returns. Err is either
// clients.ErrUpstreamCallFailed or nil; it never carries vendor detail.
type EvaluationError struct {
	RequestID string
	Reason    string
	Err       error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation failed (request_id=%s, reason=%s)", e.RequestID, e.Reason)
}

func (e *EvaluationError) Is(target error) bool {
	return target == ErrEvaluationFailed
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}
