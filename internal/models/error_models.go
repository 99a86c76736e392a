package models

// ErrorCode is the stable, user-visible failure code.
type ErrorCode string

const (
	ErrorInvalidType          ErrorCode = "invalid_type"
	ErrorInvalidRequest       ErrorCode = "invalid_request"
	ErrorInitializationFailed ErrorCode = "initialization_failed"
	ErrorEvaluationFailed     ErrorCode = "evaluation_failed"
	ErrorUnexpected           ErrorCode = "unexpected_error"
)

// ErrorResponse is the only failure shape callers ever see. It never carries
// stack traces or vendor payloads.
type ErrorResponse struct {
	Error     ErrorCode `json:"error"`
	Detail    string    `json:"detail,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

// EvaluationEnvelope is published on the results topic for every consumed
// evaluation request.
type EvaluationEnvelope struct {
	Key       string            `json:"key"`
	RequestID string            `json:"request_id,omitempty"`
	Result    *EvaluationResult `json:"result,omitempty"`
	Error     *ErrorResponse    `json:"error,omitempty"`
}
