// Package sentiment derives cheap lexical signals from content. They are
// attached to the prompt metadata as extra evidence when enabled.
package sentiment

import (
	"html"
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"
)

var (
	analyzer    = govader.NewSentimentIntensityAnalyzer()
	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
	tagPattern  = regexp.MustCompile(`<[^>]*>`)
)

const (
	LabelPositive = "positive"
	LabelNegative = "negative"
	LabelNeutral  = "neutral"
)

// Signals is safe to embed in prompt metadata.
type Signals struct {
	Compound  float64 `json:"sentiment_compound"`
	Label     string  `json:"sentiment_label"`
	WordCount int     `json:"word_count"`
}

// Map renders the signals with the same keys as their JSON form.
func (s Signals) Map() map[string]any {
	return map[string]any{
		"sentiment_compound": s.Compound,
		"sentiment_label":    s.Label,
		"word_count":         s.WordCount,
	}
}

func RemoveLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1")
	return urlPattern.ReplaceAllString(input, "")
}

// ConvertMarkdownToText renders markdown and strips the resulting markup and
// links, collapsing whitespace.
func ConvertMarkdownToText(input string) string {
	output := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	plain := tagPattern.ReplaceAllString(string(output), " ")
	plain = RemoveLinks(html.UnescapeString(plain))
	return strings.Join(strings.Fields(plain), " ")
}

func Analyze(text string) Signals {
	plain := ConvertMarkdownToText(text)
	if plain == "" {
		return Signals{Label: LabelNeutral}
	}
	score := analyzer.PolarityScores(plain).Compound

	label := LabelNeutral
	if score >= 0.20 {
		label = LabelPositive
	} else if score <= -0.20 {
		label = LabelNegative
	}

	return Signals{
		Compound:  score,
		Label:     label,
		WordCount: len(strings.Fields(plain)),
	}
}
