// Package recommend maps page text to audio cue recommendations. Two
// interchangeable producers implement the same interface: a deterministic
// keyword heuristic and an adapter for a generative text-understanding API.
// All producer output passes through Validate before it may be scheduled.
package recommend

import (
	"context"
	"errors"
	"strings"

	"sonicpdf/model"
)

// Reading speed assumed when converting word offsets into timeline seconds.
const WordsPerMinute = 155

// Bounds on the heuristic's effect list. When more trigger keywords match
// than MaxEffects, a random subset of MinEffects..MaxEffects is kept so that
// repeat readings of the same page vary.
const (
	MinEffects = 2
	MaxEffects = 5
)

// MinTimelineSeconds floors every heuristic effect cue so nothing fires at
// the instant the page appears.
const MinTimelineSeconds = 1

// MaxExcerptChars caps the text sent to the generative API.
const MaxExcerptChars = 1500

// ErrRecommendationUnavailable signals that the generative producer fell back
// to the default recommendation. Callers can use the default result as-is;
// the error is advisory and must never surface to the end user.
var ErrRecommendationUnavailable = errors.New("recommendation service unavailable")

// Recommender produces an unvalidated recommendation for a block of page
// text. Implementations must always return a usable recommendation even on
// error (the default one at worst).
type Recommender interface {
	Recommend(ctx context.Context, text string) (model.Recommendation, error)
}

// wordCount counts whitespace-separated words.
func wordCount(text string) int {
	return len(strings.Fields(text))
}

// wordsBefore counts the words preceding byte offset in text.
func wordsBefore(text string, offset int) int {
	if offset <= 0 {
		return 0
	}
	if offset > len(text) {
		offset = len(text)
	}
	return len(strings.Fields(text[:offset]))
}

// offsetToTimeline converts a byte offset into seconds on the reading clock,
// clamped to MinTimelineSeconds.
func offsetToTimeline(text string, offset int) float64 {
	seconds := float64(wordsBefore(text, offset)) / WordsPerMinute * 60
	if seconds < MinTimelineSeconds {
		return MinTimelineSeconds
	}
	return seconds
}
