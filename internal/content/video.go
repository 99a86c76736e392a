// Package content turns non-text inputs into the text form the judge
// consumes.
package content

import "strings"

const (
	NoteEmptyVideo      = "Empty video content provided; expected transcript string in request.content."
	NoteTranscriptFirst = "Transcript-first normalization: treated request.content as transcript."
)

// NormalizedVideo is the transcript handed to the judge plus a short note on
// what normalization did, kept for traceability.
type NormalizedVideo struct {
	Transcript string
	Notes      string
}

// NormalizeVideo never fails. Video content is expected to already be a
// transcript; empty input yields an empty transcript and an explanatory note.
func NormalizeVideo(content string, metadata map[string]any) NormalizedVideo {
	transcript := strings.TrimSpace(content)
	if transcript == "" {
		return NormalizedVideo{Transcript: "", Notes: NoteEmptyVideo}
	}
	return NormalizedVideo{Transcript: transcript, Notes: NoteTranscriptFirst}
}
