package recommend

import (
	"context"
	"errors"
	"testing"

	"sonicpdf/catalog"
	"sonicpdf/model"
)

// stubRecommender returns a fixed result or error.
type stubRecommender struct {
	rec   model.Recommendation
	err   error
	calls int
}

func (s *stubRecommender) Recommend(ctx context.Context, text string) (model.Recommendation, error) {
	s.calls++
	return s.rec, s.err
}

func TestServicePrefersPrimary(t *testing.T) {
	primary := &stubRecommender{rec: model.Recommendation{BackgroundMusic: "M5"}}
	fallback := &stubRecommender{rec: model.Recommendation{BackgroundMusic: "M10"}}
	svc := NewService(primary, fallback, nil)

	rec, err := svc.ForPage(context.Background(), 0, 1, "a happy story", true)
	if err != nil {
		t.Fatalf("ForPage: %v", err)
	}
	if rec.BackgroundMusic != "M5" {
		t.Errorf("music = %s, want the primary's M5", rec.BackgroundMusic)
	}
	if fallback.calls != 0 {
		t.Error("fallback consulted although primary succeeded")
	}
}

func TestServiceFallsBackWhenPrimaryFails(t *testing.T) {
	primary := &stubRecommender{
		rec: model.DefaultRecommendation(),
		err: ErrRecommendationUnavailable,
	}
	fallback := &stubRecommender{rec: model.Recommendation{BackgroundMusic: "M10"}}
	svc := NewService(primary, fallback, nil)

	rec, err := svc.ForPage(context.Background(), 0, 1, "a dark and stormy night", true)
	if err != nil {
		t.Fatalf("ForPage: %v", err)
	}
	if rec.BackgroundMusic != "M10" {
		t.Errorf("music = %s, want the fallback's M10", rec.BackgroundMusic)
	}
}

func TestServiceNonPremiumSkipsGenerative(t *testing.T) {
	primary := &stubRecommender{rec: model.Recommendation{BackgroundMusic: "M5"}}
	fallback := &stubRecommender{rec: model.Recommendation{BackgroundMusic: "M10"}}
	svc := NewService(primary, fallback, nil)

	rec, err := svc.ForPage(context.Background(), 0, 1, "a happy story", false)
	if err != nil {
		t.Fatalf("ForPage: %v", err)
	}
	if primary.calls != 0 {
		t.Error("generative backend consulted for a non-premium account")
	}
	if rec.BackgroundMusic != "M10" {
		t.Errorf("music = %s, want the keyword matcher's M10", rec.BackgroundMusic)
	}
}

func TestServiceNoPrimaryConfigured(t *testing.T) {
	fallback := &stubRecommender{rec: model.Recommendation{BackgroundMusic: "M7"}}
	svc := NewService(nil, fallback, nil)

	rec, err := svc.ForPage(context.Background(), 0, 1, "some page text", true)
	if err != nil {
		t.Fatalf("ForPage: %v", err)
	}
	if rec.BackgroundMusic != "M7" {
		t.Errorf("music = %s, want M7", rec.BackgroundMusic)
	}
}

func TestServiceValidatesResults(t *testing.T) {
	primary := &stubRecommender{rec: model.Recommendation{
		BackgroundMusic: "NOT_A_TRACK",
		Effects: []model.EffectCue{
			{ID: "BOGUS", Timeline: 3},
			{ID: "E1b", Timeline: 5},
		},
	}}
	svc := NewService(primary, &stubRecommender{}, nil)

	rec, err := svc.ForPage(context.Background(), 0, 1, "rainy text", true)
	if err != nil {
		t.Fatalf("ForPage: %v", err)
	}
	if rec.BackgroundMusic != catalog.DefaultMusicID {
		t.Errorf("unknown music survived validation: %s", rec.BackgroundMusic)
	}
	if len(rec.Effects) != 1 || rec.Effects[0].ID != "E1b" {
		t.Errorf("effects = %v, want only E1b", rec.Effects)
	}
}

func TestServiceEmptyText(t *testing.T) {
	primary := &stubRecommender{rec: model.Recommendation{BackgroundMusic: "M5"}}
	svc := NewService(primary, &stubRecommender{}, nil)

	rec, err := svc.ForPage(context.Background(), 0, 1, "   \n ", true)
	if err != nil {
		t.Fatalf("ForPage: %v", err)
	}
	if rec.BackgroundMusic != catalog.DefaultMusicID || len(rec.Effects) != 0 {
		t.Errorf("empty page should get the default recommendation, got %+v", rec)
	}
	if primary.calls != 0 {
		t.Error("backends consulted for empty text")
	}
}

func TestServiceFallbackErrorYieldsDefault(t *testing.T) {
	fallback := &stubRecommender{err: errors.New("boom")}
	svc := NewService(nil, fallback, nil)

	rec, err := svc.ForPage(context.Background(), 0, 1, "words on a page", true)
	if err != nil {
		t.Fatalf("ForPage: %v", err)
	}
	if rec.BackgroundMusic != catalog.DefaultMusicID {
		t.Errorf("music = %s, want the default", rec.BackgroundMusic)
	}
}
