package recommend

import (
	"context"
	"strings"
	"testing"

	"sonicpdf/catalog"
)

func TestHeuristicNoKeywords(t *testing.T) {
	h := NewHeuristicRecommender(1)
	rec, err := h.Recommend(context.Background(), "lorem ipsum dolor sit amet consectetur")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.BackgroundMusic != catalog.DefaultMusicID {
		t.Errorf("music = %s, want default %s", rec.BackgroundMusic, catalog.DefaultMusicID)
	}
	if len(rec.Effects) != 0 {
		t.Errorf("expected no effects, got %+v", rec.Effects)
	}
}

func TestHeuristicMoodPriority(t *testing.T) {
	tests := []struct {
		name string
		text string
		want catalog.MusicID
	}{
		{name: "happy", text: "they began to laugh and celebrate", want: "M5"},
		{name: "sad", text: "she could not stop the tears of grief", want: "M7"},
		{name: "horror", text: "a creepy figure filled her with dread", want: "M10"},
		{name: "heroic", text: "the brave knight rode into battle", want: "M9"},
		{name: "curiosity", text: "the research revealed a new discovery", want: "M1"},
		{name: "philosophical", text: "ponder the meaning of it all", want: "M4"},
		{name: "nostalgic", text: "a memory from her childhood", want: "M13"},
		{name: "happy beats sad when both present", text: "a happy smile hid the sorrow", want: "M5"},
		{name: "horror beats pessimistic on shared keyword", text: "the dark hallway", want: "M10"},
	}

	h := NewHeuristicRecommender(42)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := h.Recommend(context.Background(), tt.text)
			if rec.BackgroundMusic != tt.want {
				t.Errorf("music = %s, want %s", rec.BackgroundMusic, tt.want)
			}
		})
	}
}

func TestHeuristicRainEffect(t *testing.T) {
	h := NewHeuristicRecommender(7)
	rec, _ := h.Recommend(context.Background(), "Outside the window the rain kept falling")

	if len(rec.Effects) == 0 {
		t.Fatal("expected a non-empty effect list for rain text")
	}
	found := false
	for _, e := range rec.Effects {
		if e.ID == "E1b" {
			found = true
			if e.Timeline < 1 {
				t.Errorf("rain timeline = %v, want >= 1", e.Timeline)
			}
		}
	}
	if !found {
		t.Errorf("expected rain effect E1b, got %+v", rec.Effects)
	}
}

func TestHeuristicThunderAndRainSorted(t *testing.T) {
	h := NewHeuristicRecommender(3)
	rec, _ := h.Recommend(context.Background(), "The thunder roared as she ran through the rain")

	var hasThunder, hasRain bool
	for _, e := range rec.Effects {
		switch e.ID {
		case "E1a":
			hasThunder = true
		case "E1b":
			hasRain = true
		}
		if e.Timeline < 1 {
			t.Errorf("effect %s timeline = %v, want >= 1", e.ID, e.Timeline)
		}
	}
	if !hasThunder || !hasRain {
		t.Fatalf("expected thunder and rain effects, got %+v", rec.Effects)
	}
	for i := 1; i < len(rec.Effects); i++ {
		if rec.Effects[i].Timeline < rec.Effects[i-1].Timeline {
			t.Fatalf("effects not sorted ascending: %+v", rec.Effects)
		}
	}
}

func TestHeuristicTimelineFromWordOffset(t *testing.T) {
	// "rain" is the 32nd word; 31 words before it at 155 wpm = 12 seconds.
	words := make([]string, 31)
	for i := range words {
		words[i] = "word"
	}
	text := strings.Join(words, " ") + " rain"

	h := NewHeuristicRecommender(5)
	rec, _ := h.Recommend(context.Background(), text)

	if len(rec.Effects) != 1 {
		t.Fatalf("expected one effect, got %+v", rec.Effects)
	}
	want := float64(31) / WordsPerMinute * 60
	if got := rec.Effects[0].Timeline; got != want {
		t.Errorf("timeline = %v, want %v", got, want)
	}
}

func TestHeuristicSubsetBound(t *testing.T) {
	// Text with more than MaxEffects trigger categories.
	text := "rain thunder wind snow market knock glass water cup breath dog horse"
	h := NewHeuristicRecommender(11)

	for i := 0; i < 20; i++ {
		rec, _ := h.Recommend(context.Background(), text)
		if n := len(rec.Effects); n < MinEffects || n > MaxEffects {
			t.Fatalf("effect count %d outside [%d, %d]", n, MinEffects, MaxEffects)
		}
		for j := 1; j < len(rec.Effects); j++ {
			if rec.Effects[j].Timeline < rec.Effects[j-1].Timeline {
				t.Fatalf("subset not re-sorted: %+v", rec.Effects)
			}
		}
	}
}

func TestHeuristicSeedPinsSubset(t *testing.T) {
	text := "rain thunder wind snow market knock glass water cup breath dog horse"

	a, _ := NewHeuristicRecommender(99).Recommend(context.Background(), text)
	b, _ := NewHeuristicRecommender(99).Recommend(context.Background(), text)

	if len(a.Effects) != len(b.Effects) {
		t.Fatalf("same seed produced different counts: %d vs %d", len(a.Effects), len(b.Effects))
	}
	for i := range a.Effects {
		if a.Effects[i] != b.Effects[i] {
			t.Fatalf("same seed produced different effects: %+v vs %+v", a.Effects, b.Effects)
		}
	}
}
