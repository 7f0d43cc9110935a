package model

import "sonicpdf/catalog"

// EffectCue is a single timed sound effect within a recommendation. Timeline
// is the offset in seconds from the start of the page's reading clock.
type EffectCue struct {
	ID       catalog.EffectID `json:"id"`
	Timeline float64          `json:"timeline"`
}

// Recommendation pairs one background music id with an ordered list of timed
// effect cues for a page of text. Producers (heuristic or generative) emit
// unvalidated recommendations; only recommend.Validate output is safe to
// schedule.
type Recommendation struct {
	BackgroundMusic catalog.MusicID `json:"backgroundMusic"`
	Effects         []EffectCue     `json:"effects"`
}

// DefaultRecommendation is the safe fallback used whenever a producer fails:
// neutral music, no effects.
func DefaultRecommendation() Recommendation {
	return Recommendation{
		BackgroundMusic: catalog.DefaultMusicID,
		Effects:         []EffectCue{},
	}
}
