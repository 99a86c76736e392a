package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/spacesedan/judgeflow/internal/judge"
	"github.com/spacesedan/judgeflow/internal/models"
)

// MaxRequestBodyBytes caps the /evaluate body.
const MaxRequestBodyBytes = 1 << 20

type handler struct {
	evaluator Evaluator
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handler) evaluate(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxRequestBodyBytes)
	body, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, http.StatusRequestEntityTooLarge, models.ErrorInvalidRequest,
				"Request body too large.", uuid.NewString())
			return
		}
		writeError(c, http.StatusBadRequest, models.ErrorInvalidRequest, "Could not read request body.", uuid.NewString())
		return
	}

	req, err := models.DecodeEvaluationRequest(body)
	if err != nil {
		var reqErr *models.RequestError
		if errors.As(err, &reqErr) {
			writeError(c, http.StatusUnprocessableEntity, reqErr.Code, reqErr.Detail, uuid.NewString())
			return
		}
		writeError(c, http.StatusUnprocessableEntity, models.ErrorInvalidRequest, "Malformed request.", uuid.NewString())
		return
	}

	if h.evaluator == nil {
		writeError(c, http.StatusServiceUnavailable, models.ErrorInitializationFailed,
			"Judge failed to initialize.", uuid.NewString())
		return
	}

	result, err := h.evaluator.Run(c.Request.Context(), req)
	if err == nil {
		c.JSON(http.StatusOK, result)
		return
	}

	var evalErr *judge.EvaluationError
	switch {
	case errors.As(err, &evalErr):
		writeError(c, http.StatusBadGateway, models.ErrorEvaluationFailed,
			"Model output invalid after retry or upstream call failed.", evalErr.RequestID)
	case errors.Is(err, judge.ErrInvalidContentType):
		writeError(c, http.StatusUnprocessableEntity, models.ErrorInvalidType,
			"Invalid type. Must be 'text' or 'video'.", uuid.NewString())
	default:
		requestID := uuid.NewString()
		slog.Error("[HTTPServer] Unexpected evaluation error",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()))
		writeError(c, http.StatusInternalServerError, models.ErrorUnexpected, "Unexpected server error.", requestID)
	}
}

func writeError(c *gin.Context, status int, code models.ErrorCode, detail, requestID string) {
	c.JSON(status, models.ErrorResponse{Error: code, Detail: detail, RequestID: requestID})
}
