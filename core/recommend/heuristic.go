package recommend

import (
	"context"
	"math/rand"
	"sort"
	"strings"

	"sonicpdf/catalog"
	"sonicpdf/logger"
	"sonicpdf/model"
)

// HeuristicRecommender maps text to cues with keyword matching, no network.
// Used for non-premium accounts and as the offline fallback.
//
// The effect subset selection is deliberately randomized: when more triggers
// match than MaxEffects, a random MinEffects..MaxEffects subset is kept so
// that repeat readings of the same page vary. The RNG is injected so tests
// can pin the outcome.
type HeuristicRecommender struct {
	rng *rand.Rand
}

// NewHeuristicRecommender creates a heuristic recommender seeded with seed.
func NewHeuristicRecommender(seed int64) *HeuristicRecommender {
	return &HeuristicRecommender{rng: rand.New(rand.NewSource(seed))}
}

// Recommend scans the text for mood and effect trigger keywords. It never
// fails; text with no matching keywords yields the default music and no
// effects.
func (h *HeuristicRecommender) Recommend(_ context.Context, text string) (model.Recommendation, error) {
	lower := strings.ToLower(text)

	rec := model.DefaultRecommendation()
	rec.BackgroundMusic = matchMood(lower)
	rec.Effects = h.matchEffects(lower)

	logger.Debug("heuristic recommendation produced",
		logger.String("music", string(rec.BackgroundMusic)),
		logger.Int("effects", len(rec.Effects)))
	return rec, nil
}

// matchMood returns the music id of the first mood rule with any keyword
// present in the lower-cased text. Rule order is the fixed mood priority.
func matchMood(lower string) catalog.MusicID {
	for _, rule := range moodRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.music
			}
		}
	}
	return catalog.DefaultMusicID
}

// matchEffects builds the candidate effect list. Each candidate's timeline is
// derived from the byte offset of its earliest keyword occurrence.
func (h *HeuristicRecommender) matchEffects(lower string) []model.EffectCue {
	var candidates []model.EffectCue
	for _, rule := range effectRules {
		offset := -1
		for _, kw := range rule.keywords {
			if idx := strings.Index(lower, kw); idx >= 0 && (offset < 0 || idx < offset) {
				offset = idx
			}
		}
		if offset < 0 {
			continue
		}
		candidates = append(candidates, model.EffectCue{
			ID:       rule.effect,
			Timeline: offsetToTimeline(lower, offset),
		})
	}

	if len(candidates) == 0 {
		return []model.EffectCue{}
	}

	if len(candidates) > MaxEffects {
		h.rng.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
		n := MinEffects + h.rng.Intn(MaxEffects-MinEffects+1)
		candidates = candidates[:n]
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Timeline < candidates[j].Timeline
	})
	return candidates
}
