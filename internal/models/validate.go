package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// RequestError is a request-boundary rejection. It never reaches the judge.
type RequestError struct {
	Code   ErrorCode
	Detail string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

// DecodeEvaluationRequest strictly decodes and validates an inbound request.
func DecodeEvaluationRequest(data []byte) (EvaluationRequest, error) {
	var req EvaluationRequest
	if err := decodeStrict(data, &req); err != nil {
		code := ErrorInvalidRequest
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "type" {
			code = ErrorInvalidType
		}
		return EvaluationRequest{}, &RequestError{Code: code, Detail: err.Error()}
	}

	if err := validate.Struct(req); err != nil {
		code := ErrorInvalidRequest
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				if fe.Field() == "type" {
					code = ErrorInvalidType
					break
				}
			}
		}
		if code == ErrorInvalidType {
			return EvaluationRequest{}, &RequestError{Code: code, Detail: "Invalid type. Must be 'text' or 'video'."}
		}
		return EvaluationRequest{}, &RequestError{Code: code, Detail: describe(err)}
	}
	return req, nil
}

type resultPayload struct {
	GenerationPrediction *generationPayload   `json:"generation_prediction" validate:"required"`
	Virality             *viralityPayload     `json:"virality" validate:"required"`
	DistributionAnalysis *distributionPayload `json:"distribution_analysis" validate:"required"`
	MetaExplanation      *string              `json:"meta_explanation" validate:"required,min=1"`
}

type generationPayload struct {
	Label      *string  `json:"label" validate:"required,oneof=AI Human"`
	Confidence *float64 `json:"confidence" validate:"required,min=0,max=1"`
	Reasoning  *string  `json:"reasoning" validate:"required,min=1"`
}

type viralityPayload struct {
	Score      *int     `json:"score" validate:"required,min=0,max=100"`
	Confidence *float64 `json:"confidence" validate:"required,min=0,max=1"`
	Reasoning  *string  `json:"reasoning" validate:"required,min=1"`
}

type audiencePayload struct {
	Community *string `json:"community" validate:"required,min=1"`
	Why       *string `json:"why" validate:"required,min=1"`
}

type distributionPayload struct {
	LikelyAudiences []audiencePayload `json:"likely_audiences" validate:"required,min=1,max=6,dive"`
	Reasoning       *string           `json:"reasoning" validate:"required,min=1"`
}

// ParseEvaluationResult decodes data as an EvaluationResult and enforces every
// invariant of the closed shape. Nothing is clamped or coerced: a value that
// is out of range, missing, null, of the wrong JSON type or accompanied by an
// unknown key makes the whole object invalid.
func ParseEvaluationResult(data []byte) (*EvaluationResult, error) {
	var payload resultPayload
	if err := decodeStrict(data, &payload); err != nil {
		return nil, err
	}
	if err := validate.Struct(payload); err != nil {
		return nil, errors.New(describe(err))
	}

	audiences := make([]AudienceSegment, 0, len(payload.DistributionAnalysis.LikelyAudiences))
	for _, a := range payload.DistributionAnalysis.LikelyAudiences {
		audiences = append(audiences, AudienceSegment{Community: *a.Community, Why: *a.Why})
	}

	return &EvaluationResult{
		GenerationPrediction: GenerationPrediction{
			Label:      *payload.GenerationPrediction.Label,
			Confidence: *payload.GenerationPrediction.Confidence,
			Reasoning:  *payload.GenerationPrediction.Reasoning,
		},
		Virality: ViralityAssessment{
			Score:      *payload.Virality.Score,
			Confidence: *payload.Virality.Confidence,
			Reasoning:  *payload.Virality.Reasoning,
		},
		DistributionAnalysis: DistributionAnalysis{
			LikelyAudiences: audiences,
			Reasoning:       *payload.DistributionAnalysis.Reasoning,
		},
		MetaExplanation: *payload.MetaExplanation,
	}, nil
}

// decodeStrict decodes exactly one JSON value into target. encoding/json
// matches keys case-insensitively, so keys are first checked for an exact
// match against the target's json tags.
func decodeStrict(data []byte, target any) error {
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return err
	}
	if err := checkExactKeys(generic, reflect.TypeOf(target), "$"); err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after top-level value")
	}
	return nil
}

var unmarshalerType = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()

func checkExactKeys(value any, t reflect.Type, path string) error {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	// Types that decode themselves own their key policy.
	if reflect.PointerTo(t).Implements(unmarshalerType) {
		return nil
	}

	switch t.Kind() {
	case reflect.Struct:
		obj, ok := value.(map[string]any)
		if !ok {
			// Shape mismatches are reported by the decoder.
			return nil
		}
		fields := jsonFields(t)
		for key, child := range obj {
			ft, known := fields[key]
			if !known {
				return fmt.Errorf("%s: unknown field %q", path, key)
			}
			if err := checkExactKeys(child, ft, path+"."+key); err != nil {
				return err
			}
		}
	case reflect.Slice:
		items, ok := value.([]any)
		if !ok {
			return nil
		}
		for i, item := range items {
			if err := checkExactKeys(item, t.Elem(), fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	}
	return nil
}

func jsonFields(t reflect.Type) map[string]reflect.Type {
	fields := make(map[string]reflect.Type, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		fields[name] = f.Type
	}
	return fields
}

func describe(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
