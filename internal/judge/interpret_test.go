package judge

import (
	"strings"
	"testing"

	"github.com/spacesedan/judgeflow/internal/clients"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validOutput = `{"generation_prediction":{"label":"Human","confidence":0.7,"reasoning":"Personal tone."},` +
	`"virality":{"score":60,"confidence":0.6,"reasoning":"Relatable."},` +
	`"distribution_analysis":{"likely_audiences":[{"community":"Startup founders","why":"Career topic."}],"reasoning":"Founder-focused content."},` +
	`"meta_explanation":"Retry succeeded."}`

func TestInterpretDirect(t *testing.T) {
	result := Interpret("\n  " + validOutput + "  \n")
	require.NotNil(t, result)
	assert.Equal(t, "Human", result.GenerationPrediction.Label)
	assert.Equal(t, 60, result.Virality.Score)
}

func TestInterpretExtractsBraces(t *testing.T) {
	cases := map[string]string{
		"surrounding prose": "here you go: " + validOutput + " thanks",
		"code fence":        "```json\n" + validOutput + "\n```",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			result := Interpret(raw)
			require.NotNil(t, result)
			assert.Equal(t, "Retry succeeded.", result.MetaExplanation)
		})
	}
}

func TestInterpretAbsent(t *testing.T) {
	cases := map[string]string{
		"empty":                 "",
		"no braces":             "INVALID JSON",
		"closing before open":   "} nothing here {",
		"broken object":         "prefix {\"generation_prediction\": } suffix",
		"schema violation":      `{"generation_prediction":{"label":"Robot","confidence":0.7,"reasoning":"x"}}`,
		"valid json wrong type": `[1, 2, 3]`,
		"two objects":           validOutput + " and " + validOutput,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Nil(t, Interpret(raw))
		})
	}
}

func TestInterpretOfflineResponse(t *testing.T) {
	assert.NotNil(t, Interpret(clients.OfflineResponse))
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "<empty>", snippet("  \n"))
	assert.Equal(t, "a b", snippet("a\n\tb"))
	assert.Len(t, []rune(snippet(strings.Repeat("x", 200))), 163)
}
