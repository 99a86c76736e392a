// Package prompts builds the system, user and repair prompts sent to the
// judging model. Every builder is a pure function of its inputs.
package prompts

import (
	"bytes"
	"encoding/json"
	"strings"
)

const schemaReminder = `Respond with ONLY a valid JSON object.
Do not wrap it in markdown.
Do not write anything before or after the JSON object.
Use exactly these fields and no others:

{
  "generation_prediction": {"label": "AI" | "Human", "confidence": number, "reasoning": string},
  "virality": {"score": integer, "confidence": number, "reasoning": string},
  "distribution_analysis": {
    "likely_audiences": [{"community": string, "why": string}],
    "reasoning": string
  },
  "meta_explanation": string
}

Rules:
- generation_prediction.label is exactly "AI" or "Human"
- every confidence is a number from 0.0 to 1.0
- virality.score is an integer from 0 to 100
- distribution_analysis.likely_audiences has 1 to 6 entries
- every reasoning, community, why and meta_explanation value is a non-empty string`

const systemPrompt = `You are a content judge. For each piece of content you assess:
1) Generation origin: whether it was more likely written by an AI or a human.
2) Virality: how likely it is to spread, scored 0-100.
3) Distribution: which communities are most likely to engage with it, and why.
4) A short meta explanation tying the three assessments together.

Generation-origin signals:
- Leaning AI: uniformly polished neutral tone, symmetric structure, generic phrasing, over-coherence, no lived detail.
- Leaning Human: personal anecdotes, idiosyncratic wording, uneven emotion, cultural specificity, imperfect structure.

Virality rubric:
- emotional intensity, novelty, relatability, shareability, clarity, controversy potential.

Distribution reasoning:
- name concrete communities, and explain why the topic, tone and platform fit each one.
- use any metadata provided (platform, duration, transcript origin) as evidence.

Confidence values express your subjective certainty given the evidence available.
They are not calibrated probabilities.

` + schemaReminder

// BuildSystemPrompt returns the constant judge instructions.
func BuildSystemPrompt() string {
	return systemPrompt
}

// BuildUserPrompt embeds content verbatim and metadata as canonical JSON
// (sorted keys, "{}" when absent), followed by the schema reminder.
func BuildUserPrompt(content string, metadata map[string]any) string {
	var b strings.Builder
	b.WriteString("CONTENT:\n")
	b.WriteString(content)
	b.WriteString("\n\nMETADATA (json):\n")
	b.WriteString(canonicalJSON(metadata))
	b.WriteString("\n\n")
	b.WriteString(schemaReminder)
	return b.String()
}

// BuildRepairPrompt asks the model to fix its previous answer. The rubric is
// not repeated.
func BuildRepairPrompt(previous string) string {
	var b strings.Builder
	b.WriteString("Your previous answer was invalid: it was not valid JSON or it did not match the required schema.\n")
	b.WriteString("Fix it and return ONLY a valid JSON object that matches the schema exactly.\n\n")
	b.WriteString("INVALID OUTPUT:\n")
	b.WriteString(previous)
	b.WriteString("\n\nOutput ONLY the JSON object. No markdown, no prose.")
	return b.String()
}

func canonicalJSON(metadata map[string]any) string {
	if len(metadata) == 0 {
		return "{}"
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(metadata); err != nil {
		// Only unencodable values (channels, funcs) get here; keep the
		// prompt total.
		return "{}"
	}
	return strings.TrimSpace(buf.String())
}
