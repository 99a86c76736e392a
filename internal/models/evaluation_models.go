package models

const (
	LabelAI    = "AI"
	LabelHuman = "Human"
)

// EvaluationResult is the terminal success value of an evaluation. Its JSON
// form is closed: exactly these four top-level keys.
type EvaluationResult struct {
	GenerationPrediction GenerationPrediction `json:"generation_prediction"`
	Virality             ViralityAssessment   `json:"virality"`
	DistributionAnalysis DistributionAnalysis `json:"distribution_analysis"`
	MetaExplanation      string               `json:"meta_explanation"`
}

type GenerationPrediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

type ViralityAssessment struct {
	Score      int     `json:"score"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

type AudienceSegment struct {
	Community string `json:"community"`
	Why       string `json:"why"`
}

type DistributionAnalysis struct {
	LikelyAudiences []AudienceSegment `json:"likely_audiences"`
	Reasoning       string            `json:"reasoning"`
}
