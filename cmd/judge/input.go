package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spacesedan/judgeflow/internal/models"
)

type inputFlags struct {
	contentType string
	content     string
	file        string
	metadata    string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.contentType, "type", "t", string(models.ContentText), "Content type: text or video")
	cmd.Flags().StringVar(&f.content, "content", "", "Content to judge")
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "Read content from a file")
	cmd.Flags().StringVarP(&f.metadata, "metadata", "m", "", "Metadata as a JSON object")
	cmd.MarkFlagsMutuallyExclusive("content", "file")
}

// request runs the flags through the same decoder the HTTP surface uses.
func (f *inputFlags) request() (models.EvaluationRequest, error) {
	content := f.content
	if f.file != "" {
		data, err := os.ReadFile(f.file)
		if err != nil {
			return models.EvaluationRequest{}, fmt.Errorf("read content file: %w", err)
		}
		content = string(data)
	}

	payload := map[string]any{
		"type":    f.contentType,
		"content": content,
	}
	if f.metadata != "" {
		if !json.Valid([]byte(f.metadata)) {
			return models.EvaluationRequest{}, errors.New("--metadata is not valid JSON")
		}
		payload["metadata"] = json.RawMessage(f.metadata)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return models.EvaluationRequest{}, err
	}

	req, err := models.DecodeEvaluationRequest(body)
	if err != nil {
		var reqErr *models.RequestError
		if errors.As(err, &reqErr) {
			return models.EvaluationRequest{}, fmt.Errorf("%s: %s", reqErr.Code, reqErr.Detail)
		}
		return models.EvaluationRequest{}, err
	}
	return req, nil
}
