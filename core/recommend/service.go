package recommend

import (
	"context"
	"errors"

	"sonicpdf/cache"
	"sonicpdf/logger"
	"sonicpdf/model"
)

// Service is the recommendation pipeline the API serves: cache lookup, then
// the generative backend, then the keyword matcher when the backend is down,
// with every result validated before it leaves.
type Service struct {
	primary  Recommender // generative backend, may be nil
	fallback Recommender
	cache    *cache.RecommendationCache
}

// NewService assembles the pipeline. primary may be nil when no generative
// backend is configured; fallback must not be. cache may be nil.
func NewService(primary, fallback Recommender, c *cache.RecommendationCache) *Service {
	return &Service{primary: primary, fallback: fallback, cache: c}
}

// ForPage returns the validated recommendation for one page of a document.
// docID 0 marks ad-hoc text that is never cached. The generative backend
// serves premium accounts only; everyone else gets the keyword matcher.
func (s *Service) ForPage(ctx context.Context, docID int64, page int, text string, premium bool) (model.Recommendation, error) {
	if wordCount(text) == 0 {
		// Nothing to set a mood from.
		return model.DefaultRecommendation(), nil
	}

	if s.cache != nil && docID > 0 {
		if rec, err := s.cache.Get(ctx, docID, page); err == nil {
			return Validate(rec), nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			logger.Warn("recommendation cache read failed", logger.ErrorField(err))
		}
	}

	rec := s.generate(ctx, text, premium)
	rec = Validate(rec)

	if s.cache != nil && docID > 0 {
		if err := s.cache.Put(ctx, docID, page, rec); err != nil {
			logger.Warn("recommendation cache write failed", logger.ErrorField(err))
		}
	}
	return rec, nil
}

// generate asks the generative backend first and falls back to the keyword
// matcher when it cannot serve.
func (s *Service) generate(ctx context.Context, text string, premium bool) model.Recommendation {
	if s.primary != nil && premium {
		rec, err := s.primary.Recommend(ctx, text)
		if err == nil {
			return rec
		}
		logger.Warn("generative recommendation unavailable, using keyword matcher",
			logger.ErrorField(err))
	}

	rec, err := s.fallback.Recommend(ctx, text)
	if err != nil {
		logger.Error("keyword matcher failed", logger.ErrorField(err))
		return model.DefaultRecommendation()
	}
	return rec
}
