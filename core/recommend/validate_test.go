package recommend

import (
	"math"
	"reflect"
	"testing"

	"sonicpdf/catalog"
	"sonicpdf/model"
)

func TestValidateReplacesUnknownMusic(t *testing.T) {
	tests := []struct {
		name  string
		music catalog.MusicID
		want  catalog.MusicID
	}{
		{name: "unknown id", music: "NOT_REAL", want: catalog.DefaultMusicID},
		{name: "empty id", music: "", want: catalog.DefaultMusicID},
		{name: "valid id kept", music: "M5", want: "M5"},
		{name: "default kept", music: catalog.DefaultMusicID, want: catalog.DefaultMusicID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(model.Recommendation{BackgroundMusic: tt.music})
			if got.BackgroundMusic != tt.want {
				t.Errorf("music = %s, want %s", got.BackgroundMusic, tt.want)
			}
		})
	}
}

func TestValidateFiltersAndSortsEffects(t *testing.T) {
	raw := model.Recommendation{
		BackgroundMusic: "NOT_REAL",
		Effects: []model.EffectCue{
			{ID: "E1b", Timeline: 5},
			{ID: "BOGUS", Timeline: 1},
			{ID: "E1a", Timeline: -3},
			{ID: "E3a", Timeline: math.NaN()},
			{ID: "E4a", Timeline: math.Inf(1)},
			{ID: "E2c", Timeline: 2},
		},
	}

	got := Validate(raw)

	want := model.Recommendation{
		BackgroundMusic: catalog.DefaultMusicID,
		Effects: []model.EffectCue{
			{ID: "E2c", Timeline: 2},
			{ID: "E1b", Timeline: 5},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Validate() = %+v, want %+v", got, want)
	}
}

func TestValidateKeepsDuplicates(t *testing.T) {
	raw := model.Recommendation{
		BackgroundMusic: "M1",
		Effects: []model.EffectCue{
			{ID: "E2b", Timeline: 4},
			{ID: "E2b", Timeline: 4},
		},
	}
	got := Validate(raw)
	if len(got.Effects) != 2 {
		t.Errorf("expected duplicates preserved, got %d effects", len(got.Effects))
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	raw := model.Recommendation{
		BackgroundMusic: "garbage",
		Effects: []model.EffectCue{
			{ID: "E5c", Timeline: 9},
			{ID: "E1b", Timeline: 0},
			{ID: "nope", Timeline: 3},
		},
	}
	once := Validate(raw)
	twice := Validate(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Validate not idempotent: %+v != %+v", once, twice)
	}
}

func TestValidateOrderingNonDecreasing(t *testing.T) {
	raw := model.Recommendation{
		BackgroundMusic: "M3",
		Effects: []model.EffectCue{
			{ID: "E1a", Timeline: 30},
			{ID: "E1b", Timeline: 2},
			{ID: "E2e", Timeline: 17},
			{ID: "E3b", Timeline: 2},
		},
	}
	got := Validate(raw)
	for i := 1; i < len(got.Effects); i++ {
		if got.Effects[i].Timeline < got.Effects[i-1].Timeline {
			t.Fatalf("effects out of order at %d: %+v", i, got.Effects)
		}
	}
	// Stable sort keeps the E1b/E3b input order at equal timelines.
	if got.Effects[0].ID != "E1b" || got.Effects[1].ID != "E3b" {
		t.Errorf("stable ordering violated: %+v", got.Effects)
	}
}
