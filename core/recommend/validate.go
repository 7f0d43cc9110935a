package recommend

import (
	"math"
	"sort"

	"sonicpdf/catalog"
	"sonicpdf/logger"
	"sonicpdf/model"
)

// Validate sanitizes a recommendation against the catalogs. It is total and
// idempotent: an unknown music id becomes the default, effects with unknown
// ids or invalid timelines are dropped, and the survivors are stable-sorted
// ascending by timeline. Duplicate effect ids at the same timeline are kept;
// a sound may legitimately repeat.
//
// This is the only gate between untrusted producer output and the playback
// scheduler.
func Validate(raw model.Recommendation) model.Recommendation {
	music := raw.BackgroundMusic
	if !catalog.IsValidMusic(music) {
		if music != "" {
			logger.Debug("invalid music id replaced with default",
				logger.String("music", string(music)))
		}
		music = catalog.DefaultMusicID
	}

	effects := make([]model.EffectCue, 0, len(raw.Effects))
	for _, e := range raw.Effects {
		if !catalog.IsValidEffect(e.ID) {
			logger.Debug("dropping unknown effect id", logger.String("effect", string(e.ID)))
			continue
		}
		if math.IsNaN(e.Timeline) || math.IsInf(e.Timeline, 0) || e.Timeline < 0 {
			logger.Debug("dropping effect with invalid timeline",
				logger.String("effect", string(e.ID)),
				logger.Float64("timeline", e.Timeline))
			continue
		}
		effects = append(effects, e)
	}

	sort.SliceStable(effects, func(i, j int) bool {
		return effects[i].Timeline < effects[j].Timeline
	})

	return model.Recommendation{BackgroundMusic: music, Effects: effects}
}
