package judge

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spacesedan/judgeflow/internal/models"
)

var (
	errMissingBraces = errors.New("no JSON object found in output")
	errMalformedJSON = errors.New("extracted object is not valid JSON")
)

// Interpret turns raw model output into a validated result, or nil when that
// is not possible. It never panics or returns an error: absence is the
// signal to repair or give up.
func Interpret(raw string) *models.EvaluationResult {
	result, _ := interpret(raw)
	return result
}

func interpret(raw string) (*models.EvaluationResult, error) {
	candidate := strings.TrimSpace(raw)

	// Models sometimes wrap the object in prose or code fences despite the
	// instructions; fall back to the outermost braces.
	if !json.Valid([]byte(candidate)) {
		start := strings.Index(candidate, "{")
		end := strings.LastIndex(candidate, "}")
		if start == -1 || end <= start {
			return nil, errMissingBraces
		}
		candidate = candidate[start : end+1]
		if !json.Valid([]byte(candidate)) {
			return nil, errMalformedJSON
		}
	}

	result, err := models.ParseEvaluationResult([]byte(candidate))
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}
	return result, nil
}

func snippet(content string) string {
	clean := strings.Join(strings.Fields(content), " ")
	if clean == "" {
		return "<empty>"
	}
	const limit = 160
	runes := []rune(clean)
	if len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}
